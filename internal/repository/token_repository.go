package repository

import (
	"time"

	"github.com/mparedes/cuestionario-api/internal/model"
	"gorm.io/gorm"
)

type TokenRepository interface {
	Create(token *model.Token) error
	FindByID(id string) (*model.Token, error)
	FindAll(status string) ([]model.Token, error)
	// MarkUsed transitions active -> used and reports whether this call won
	// the transition. The guard on the current status makes the redeem a
	// compare-and-set: two concurrent redemptions cannot both see true.
	MarkUsed(id string, usedAt time.Time) (bool, error)
	// Revoke transitions active -> revoked, same conditional semantics.
	Revoke(id string) (bool, error)
}

type tokenRepository struct {
	db *gorm.DB
}

func NewTokenRepository(db *gorm.DB) TokenRepository {
	return &tokenRepository{db: db}
}

func (r *tokenRepository) Create(token *model.Token) error {
	return r.db.Create(token).Error
}

func (r *tokenRepository) FindByID(id string) (*model.Token, error) {
	var token model.Token
	if err := r.db.First(&token, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *tokenRepository) FindAll(status string) ([]model.Token, error) {
	var tokens []model.Token
	query := r.db.Order("created_at DESC")
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Find(&tokens).Error; err != nil {
		return nil, err
	}
	return tokens, nil
}

func (r *tokenRepository) MarkUsed(id string, usedAt time.Time) (bool, error) {
	tx := r.db.Model(&model.Token{}).
		Where("id = ? AND status = ?", id, model.TokenStatusActive).
		Updates(map[string]any{
			"status":  model.TokenStatusUsed,
			"used_at": usedAt,
		})
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}

func (r *tokenRepository) Revoke(id string) (bool, error) {
	tx := r.db.Model(&model.Token{}).
		Where("id = ? AND status = ?", id, model.TokenStatusActive).
		Update("status", model.TokenStatusRevoked)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected == 1, nil
}
