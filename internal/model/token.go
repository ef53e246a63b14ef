package model

import (
	"time"

	"gorm.io/gorm"
)

const (
	TokenStatusActive  = "active"
	TokenStatusUsed    = "used"
	TokenStatusExpired = "expired"
	TokenStatusRevoked = "revoked"
)

// Token is a single-use access grant for one cuestionario. The ID doubles as
// the capability secret handed to the respondent.
type Token struct {
	ID             string     `json:"id" gorm:"type:uuid;primarykey"`
	CuestionarioID string     `json:"cuestionario_id" gorm:"not null;index"`
	Status         string     `json:"status" gorm:"not null;default:'active';index"` // "active", "used", "expired", "revoked"
	ExpiresAt      *time.Time `json:"expires_at,omitempty"`
	UsedAt         *time.Time `json:"used_at,omitempty"`

	// Respondent identity, only present for assisted entry.
	RespondentName  *string `json:"respondent_name,omitempty"`
	RespondentEmail *string `json:"respondent_email,omitempty"`
	RespondentCuil  *string `json:"respondent_cuil,omitempty"`
	IsAssistedEntry bool    `json:"is_assisted_entry"`
	CreatedBy       *string `json:"created_by,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsExpired reports whether the token's expiry has passed at the given
// instant. Expiry is computed, never written back to the stored status.
func (t *Token) IsExpired(now time.Time) bool {
	return t.ExpiresAt != nil && t.ExpiresAt.Before(now)
}
