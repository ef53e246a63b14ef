package repository

import (
	"github.com/mparedes/cuestionario-api/internal/model"
	"gorm.io/gorm"
)

type ResponseRepository interface {
	Create(response *model.Response) error
	FindByID(id string) (*model.Response, error)
	FindAll() ([]model.Response, error)
	FindByDownloadStatus(status string) ([]model.Response, error)
	FindByAdministrator(email string) ([]model.Response, error)
	// UpdateFields applies a partial update. Feedback attachment and
	// download marking overwrite previous values, they never append.
	UpdateFields(id string, fields map[string]any) error
}

type responseRepository struct {
	db *gorm.DB
}

func NewResponseRepository(db *gorm.DB) ResponseRepository {
	return &responseRepository{db: db}
}

func (r *responseRepository) Create(response *model.Response) error {
	return r.db.Create(response).Error
}

func (r *responseRepository) FindByID(id string) (*model.Response, error) {
	var response model.Response
	if err := r.db.First(&response, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &response, nil
}

func (r *responseRepository) FindAll() ([]model.Response, error) {
	var responses []model.Response
	if err := r.db.Order("created_at DESC").Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) FindByDownloadStatus(status string) ([]model.Response, error) {
	var responses []model.Response
	if err := r.db.Where("download_status = ?", status).Order("created_at DESC").Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) FindByAdministrator(email string) ([]model.Response, error) {
	var responses []model.Response
	if err := r.db.Where("administered_by_email = ?", email).Order("created_at DESC").Find(&responses).Error; err != nil {
		return nil, err
	}
	return responses, nil
}

func (r *responseRepository) UpdateFields(id string, fields map[string]any) error {
	return r.db.Model(&model.Response{}).Where("id = ?", id).Updates(fields).Error
}
