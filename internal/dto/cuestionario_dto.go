package dto

import "time"

// OptionDTO mirrors one option of the uploaded cuestionario document.
type OptionDTO struct {
	OptionKey  string  `json:"option_key"`
	OptionText string  `json:"option_text"`
	Score      float64 `json:"score"`
}

// QuestionDTO mirrors one question of the uploaded cuestionario document.
type QuestionDTO struct {
	QuestionNumber int         `json:"question_number"`
	Text           string      `json:"text"`
	QuestionType   string      `json:"question_type"`
	Options        []OptionDTO `json:"options"`
}

// CuestionarioUploadDTO is the uploaded definition document. It is decoded
// only after the schema validator has accepted the raw JSON.
type CuestionarioUploadDTO struct {
	IDCuestionario string        `json:"id_cuestionario"`
	Version        string        `json:"version"`
	Title          string        `json:"title"`
	Description    string        `json:"description"`
	TotalQuestions int           `json:"total_questions"`
	CreadoPor      string        `json:"creado_por"`
	Status         string        `json:"status"`
	Questions      []QuestionDTO `json:"questions"`
}

// CuestionarioDTO is the outward representation of a definition.
type CuestionarioDTO struct {
	ID             string        `json:"id"`
	Version        string        `json:"version"`
	Title          string        `json:"title"`
	Description    string        `json:"description,omitempty"`
	TotalQuestions int           `json:"total_questions"`
	CreadoPor      string        `json:"creado_por,omitempty"`
	Status         string        `json:"status"`
	Questions      []QuestionDTO `json:"questions,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
}

// CuestionarioSummaryDTO lists definitions without their question bodies.
type CuestionarioSummaryDTO struct {
	ID             string    `json:"id"`
	Version        string    `json:"version"`
	Title          string    `json:"title"`
	Description    string    `json:"description,omitempty"`
	TotalQuestions int       `json:"total_questions"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// CuestionarioStatusUpdateDTO changes a definition's lifecycle status.
type CuestionarioStatusUpdateDTO struct {
	Status string `json:"status" binding:"required,oneof=draft active archived"`
}
