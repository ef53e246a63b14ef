package dto

import "time"

// AnswerMetricsDTO is the raw per-question telemetry produced by the client.
type AnswerMetricsDTO struct {
	QuestionNumber int    `json:"question_number" binding:"required,min=1"`
	SelectedOption string `json:"selected_option" binding:"required"`
	TimeToAnswerMs int64  `json:"time_to_answer_ms" binding:"min=0"`
	ChangedAnswer  bool   `json:"changed_answer"`
	ChangeCount    int    `json:"change_count"`
}

// EnrichedAnswerDTO is an answer with resolved text and adjusted timing.
type EnrichedAnswerDTO struct {
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

// ResponseSubmitDTO is a completed session submission.
type ResponseSubmitDTO struct {
	StartedAt     time.Time          `json:"started_at" binding:"required"`
	FinishedAt    time.Time          `json:"finished_at" binding:"required"`
	TotalTimeMs   int64              `json:"total_time_ms" binding:"min=0"`
	Answers       []AnswerMetricsDTO `json:"answers" binding:"required,min=1,dive"`
	Respondent    *RespondentDTO     `json:"respondent"`
	Administrator *AdministratorDTO  `json:"administrator"`
}

// ResponseAbandonDTO is a partial session that the respondent walked away
// from. Abandonment is itself a terminal redemption of the token.
type ResponseAbandonDTO struct {
	StartedAt   time.Time          `json:"started_at" binding:"required"`
	AbandonedAt time.Time          `json:"abandoned_at" binding:"required"`
	Answers     []AnswerMetricsDTO `json:"answers" binding:"dive"`
}

// FeedbackDTO is the optional post-submission feedback block.
type FeedbackDTO struct {
	EaseOfUse        int  `json:"ease_of_use" binding:"required,min=1,max=5"`
	SurveyLength     int  `json:"survey_length" binding:"required,min=1,max=5"`
	WillingToReceive bool `json:"willing_to_receive"`
}

// AbandonFeedbackDTO records why a session was abandoned, with optional
// feedback ratings.
type AbandonFeedbackDTO struct {
	AbandonedAtQuestion int    `json:"abandoned_at_question" binding:"required,min=1"`
	AbandonReason       string `json:"abandon_reason" binding:"required"`
	EaseOfUse           *int   `json:"ease_of_use"`
	SurveyLength        *int   `json:"survey_length"`
	WillingToReceive    *bool  `json:"willing_to_receive"`
}

// ResponseDTO is the outward representation of a stored response.
type ResponseDTO struct {
	ID                  string              `json:"id"`
	TokenID             string              `json:"token_id"`
	CuestionarioID      string              `json:"cuestionario_id"`
	CuestionarioVersion string              `json:"cuestionario_version"`
	CuestionarioTitle   *string             `json:"cuestionario_title,omitempty"`
	StartedAt           time.Time           `json:"started_at"`
	FinishedAt          *time.Time          `json:"finished_at,omitempty"`
	TotalTimeMs         *int64              `json:"total_time_ms,omitempty"`
	TotalTimeAdjustedMs *int64              `json:"total_time_adjusted_ms,omitempty"`
	Answers             []EnrichedAnswerDTO `json:"answers,omitempty"`
	Status              string              `json:"status"`
	DownloadStatus      string              `json:"download_status"`
	DownloadedAt        *time.Time          `json:"downloaded_at,omitempty"`
	DownloadedBy        *string             `json:"downloaded_by,omitempty"`

	RespondentName  *string `json:"respondent_name,omitempty"`
	RespondentEmail *string `json:"respondent_email,omitempty"`
	RespondentCuil  *string `json:"respondent_cuil,omitempty"`

	AdministeredBy      *string `json:"administered_by,omitempty"`
	AdministeredByEmail *string `json:"administered_by_email,omitempty"`

	FeedbackEaseOfUse        *int       `json:"feedback_ease_of_use,omitempty"`
	FeedbackSurveyLength     *int       `json:"feedback_survey_length,omitempty"`
	FeedbackWillingToReceive *bool      `json:"feedback_willing_to_receive,omitempty"`
	FeedbackSubmittedAt      *time.Time `json:"feedback_submitted_at,omitempty"`

	AbandonedAtQuestion *int    `json:"abandoned_at_question,omitempty"`
	AbandonReason       *string `json:"abandon_reason,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ResponseSummaryDTO is the export listing shape: no answer bodies, no
// respondent identity.
type ResponseSummaryDTO struct {
	ID                  string     `json:"id"`
	TokenID             string     `json:"token_id"`
	CuestionarioID      string     `json:"cuestionario_id"`
	CuestionarioVersion string     `json:"cuestionario_version"`
	CuestionarioTitle   *string    `json:"cuestionario_title,omitempty"`
	StartedAt           time.Time  `json:"started_at"`
	FinishedAt          *time.Time `json:"finished_at,omitempty"`
	TotalTimeMs         *int64     `json:"total_time_ms,omitempty"`
	TotalTimeAdjustedMs *int64     `json:"total_time_adjusted_ms,omitempty"`
	Status              string     `json:"status"`
	DownloadStatus      string     `json:"download_status"`
	DownloadedAt        *time.Time `json:"downloaded_at,omitempty"`
	DownloadedBy        *string    `json:"downloaded_by,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ResponseListDTO wraps an export listing with its count.
type ResponseListDTO struct {
	Count     int                  `json:"count"`
	Responses []ResponseSummaryDTO `json:"responses"`
}

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}
