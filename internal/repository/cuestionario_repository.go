package repository

import (
	"github.com/mparedes/cuestionario-api/internal/model"
	"gorm.io/gorm"
)

type CuestionarioRepository interface {
	Create(cuestionario *model.Cuestionario) error
	FindByID(id string) (*model.Cuestionario, error)
	FindAll() ([]model.Cuestionario, error)
	FindActive() (*model.Cuestionario, error)
	UpdateStatus(id string, status string) error
	Delete(id string) error
}

type cuestionarioRepository struct {
	db *gorm.DB
}

func NewCuestionarioRepository(db *gorm.DB) CuestionarioRepository {
	return &cuestionarioRepository{db: db}
}

func (r *cuestionarioRepository) Create(cuestionario *model.Cuestionario) error {
	return r.db.Create(cuestionario).Error
}

func (r *cuestionarioRepository) FindByID(id string) (*model.Cuestionario, error) {
	var cuestionario model.Cuestionario
	if err := r.db.First(&cuestionario, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &cuestionario, nil
}

func (r *cuestionarioRepository) FindAll() ([]model.Cuestionario, error) {
	var cuestionarios []model.Cuestionario
	if err := r.db.Order("created_at DESC").Find(&cuestionarios).Error; err != nil {
		return nil, err
	}
	return cuestionarios, nil
}

func (r *cuestionarioRepository) FindActive() (*model.Cuestionario, error) {
	var cuestionario model.Cuestionario
	if err := r.db.First(&cuestionario, "status = ?", model.CuestionarioStatusActive).Error; err != nil {
		return nil, err
	}
	return &cuestionario, nil
}

func (r *cuestionarioRepository) UpdateStatus(id string, status string) error {
	return r.db.Model(&model.Cuestionario{}).Where("id = ?", id).Update("status", status).Error
}

func (r *cuestionarioRepository) Delete(id string) error {
	return r.db.Delete(&model.Cuestionario{}, "id = ?", id).Error
}
