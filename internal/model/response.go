package model

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

const (
	ResponseStatusInProgress = "in_progress"
	ResponseStatusCompleted  = "completed"
	ResponseStatusAbandoned  = "abandoned"
)

const (
	DownloadStatusPending    = "pending"
	DownloadStatusDownloaded = "downloaded"
)

// EnrichedAnswer is a raw answer augmented with resolved display text and
// popup-adjusted timing. The JSON tags match the exported wire format.
type EnrichedAnswer struct {
	QuestionNumber     int    `json:"question_number"`
	QuestionText       string `json:"question_text"`
	SelectedOptionKey  string `json:"selected_option_key"`
	SelectedOptionText string `json:"selected_option_text"`
	TimeToAnswerMs     int64  `json:"time_to_answer_ms"`
	TimeAdjustedMs     int64  `json:"time_adjusted_ms"`
	ChangedAnswer      bool   `json:"changed_answer"`
	ChangeCount        int    `json:"change_count"`
	HadBadgePopup      bool   `json:"had_badge_popup"`
}

// Response is the artifact of one token redemption, completed or abandoned.
// Responses are never deleted by the normal flow; they are only mutated to
// attach feedback or to flip the download status.
type Response struct {
	ID                  string     `json:"id" gorm:"type:uuid;primarykey"`
	TokenID             string     `json:"token_id" gorm:"not null;index"`
	CuestionarioID      string     `json:"cuestionario_id" gorm:"not null;index"`
	CuestionarioVersion string     `json:"cuestionario_version"`
	CuestionarioTitle   *string    `json:"cuestionario_title,omitempty"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	TotalTimeMs         *int64     `json:"total_time_ms,omitempty"`
	TotalTimeAdjustedMs *int64     `json:"total_time_adjusted_ms,omitempty"`
	AnswersJSON         string     `json:"-" gorm:"type:jsonb;not null"`
	Status              string     `json:"status" gorm:"not null;index"`                             // "in_progress", "completed", "abandoned"
	DownloadStatus      string     `json:"download_status" gorm:"not null;default:'pending';index"` // "pending", "downloaded"
	DownloadedAt        *time.Time `json:"downloaded_at,omitempty"`
	DownloadedBy        *string    `json:"downloaded_by,omitempty"`

	// Respondent identity, only present for assisted entry.
	RespondentName  *string `json:"respondent_name,omitempty"`
	RespondentEmail *string `json:"respondent_email,omitempty"`
	RespondentCuil  *string `json:"respondent_cuil,omitempty"`

	// Administrator that assisted the session, if any.
	AdministeredBy      *string `json:"administered_by,omitempty"`
	AdministeredByEmail *string `json:"administered_by_email,omitempty" gorm:"index"`

	// Post-hoc respondent feedback.
	FeedbackEaseOfUse        *int       `json:"feedback_ease_of_use,omitempty"`
	FeedbackSurveyLength     *int       `json:"feedback_survey_length,omitempty"`
	FeedbackWillingToReceive *bool      `json:"feedback_willing_to_receive,omitempty"`
	FeedbackSubmittedAt      *time.Time `json:"feedback_submitted_at,omitempty"`

	// Abandonment details.
	AbandonedAtQuestion *int    `json:"abandoned_at_question,omitempty"`
	AbandonReason       *string `json:"abandon_reason,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Answers decodes the stored answer list, tolerating a malformed column.
func (r *Response) Answers() []EnrichedAnswer {
	if r.AnswersJSON == "" {
		return nil
	}
	var answers []EnrichedAnswer
	if err := json.Unmarshal([]byte(r.AnswersJSON), &answers); err != nil {
		return nil
	}
	return answers
}

// SetAnswers encodes the answer list into the JSON column.
func (r *Response) SetAnswers(answers []EnrichedAnswer) error {
	raw, err := json.Marshal(answers)
	if err != nil {
		return err
	}
	r.AnswersJSON = string(raw)
	return nil
}
