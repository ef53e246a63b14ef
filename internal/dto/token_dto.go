package dto

import "time"

// RespondentDTO carries respondent identity for assisted entry.
type RespondentDTO struct {
	Name  string `json:"name" binding:"required"`
	Email string `json:"email" binding:"required"`
	Cuil  string `json:"cuil" binding:"required"`
}

// AdministratorDTO identifies the administrator running an assisted session.
type AdministratorDTO struct {
	Email string `json:"email" binding:"required"`
	Name  string `json:"name,omitempty"`
}

// TokenCreateDTO is the admin request to issue a single token.
type TokenCreateDTO struct {
	CuestionarioID string         `json:"cuestionario_id" binding:"required"`
	ExpiresAt      *time.Time     `json:"expires_at"`
	Respondent     *RespondentDTO `json:"respondent"`
	CreatedBy      *string        `json:"created_by"`
}

// TokenBatchCreateDTO is the admin request to issue tokens in bulk.
type TokenBatchCreateDTO struct {
	CuestionarioID string     `json:"cuestionario_id" binding:"required"`
	Count          int        `json:"count" binding:"required,min=1,max=1000"`
	ExpiresAt      *time.Time `json:"expires_at"`
	CreatedBy      *string    `json:"created_by"`
}

// TokenDTO is the outward representation of a token.
type TokenDTO struct {
	ID              string     `json:"id"`
	CuestionarioID  string     `json:"cuestionario_id"`
	Status          string     `json:"status"`
	ExpiresAt       *time.Time `json:"expires_at,omitempty"`
	UsedAt          *time.Time `json:"used_at,omitempty"`
	RespondentName  *string    `json:"respondent_name,omitempty"`
	RespondentEmail *string    `json:"respondent_email,omitempty"`
	RespondentCuil  *string    `json:"respondent_cuil,omitempty"`
	IsAssistedEntry bool       `json:"is_assisted_entry"`
	CreatedBy       *string    `json:"created_by,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Reason codes for an invalid token, stable for client routing.
const (
	TokenReasonNotFound = "not_found"
	TokenReasonUsed     = "used"
	TokenReasonExpired  = "expired"
	TokenReasonRevoked  = "revoked"
)

// TokenValidationDTO is the result of validating a token before a session.
type TokenValidationDTO struct {
	Valid   bool      `json:"valid"`
	Token   *TokenDTO `json:"token,omitempty"`
	Reason  string    `json:"reason,omitempty"`
	Message string    `json:"message"`
}
