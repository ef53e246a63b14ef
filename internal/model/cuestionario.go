package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

const (
	CuestionarioStatusDraft    = "draft"
	CuestionarioStatusActive   = "active"
	CuestionarioStatusArchived = "archived"
)

const (
	QuestionTypeMultipleChoice = "multiple_choice"
	QuestionTypeForcedChoice   = "forced_choice"
)

// Option is one selectable answer for a question.
type Option struct {
	OptionKey  string  `json:"option_key"`
	OptionText string  `json:"option_text"`
	Score      float64 `json:"score"`
}

// Question is one ordered item of a cuestionario definition.
type Question struct {
	QuestionNumber int      `json:"question_number"`
	Text           string   `json:"text"`
	QuestionType   string   `json:"question_type"` // "multiple_choice", "forced_choice"
	Options        []Option `json:"options"`
}

// Cuestionario is a questionnaire definition. The ID is supplied by the
// uploaded document, not generated. Content is immutable once active; only
// the status moves between draft, active and archived.
type Cuestionario struct {
	ID             string `json:"id" gorm:"primarykey"`
	Version        string `json:"version" gorm:"not null"`
	Title          string `json:"title" gorm:"not null"`
	Description    string `json:"description,omitempty"`
	TotalQuestions int    `json:"total_questions" gorm:"not null"`
	CreadoPor      string `json:"creado_por,omitempty"`
	Status         string `json:"status" gorm:"not null;default:'draft';index"` // "draft", "active", "archived"
	QuestionsJSON  string `json:"-" gorm:"type:jsonb;not null"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Questions decodes the stored question list. A malformed column yields an
// empty list rather than an error so that legacy rows keep rendering.
func (c *Cuestionario) Questions() []Question {
	if c.QuestionsJSON == "" {
		return nil
	}
	var questions []Question
	if err := json.Unmarshal([]byte(c.QuestionsJSON), &questions); err != nil {
		return nil
	}
	return questions
}

// SetQuestions encodes the question list into the JSON column.
func (c *Cuestionario) SetQuestions(questions []Question) error {
	raw, err := json.Marshal(questions)
	if err != nil {
		return err
	}
	c.QuestionsJSON = string(raw)
	return nil
}
