package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/model"
	"github.com/mparedes/cuestionario-api/internal/repository"
	"github.com/mparedes/cuestionario-api/internal/schema"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// CuestionarioService manages questionnaire definitions: schema-validated
// upload, listing, and the draft/active/archived lifecycle.
type CuestionarioService interface {
	Create(ctx context.Context, raw []byte) (*dto.CuestionarioDTO, error)
	List(ctx context.Context) ([]dto.CuestionarioSummaryDTO, error)
	Get(ctx context.Context, id string) (*dto.CuestionarioDTO, error)
	GetActive(ctx context.Context) (*dto.CuestionarioDTO, error)
	UpdateStatus(ctx context.Context, id string, status string) error
	Delete(ctx context.Context, id string) error
}

type cuestionarioService struct {
	repo repository.CuestionarioRepository
}

func NewCuestionarioService(repo repository.CuestionarioRepository) CuestionarioService {
	return &cuestionarioService{repo: repo}
}

// Create validates the uploaded document and persists it. The definition is
// stored as draft unless the document says otherwise.
func (s *cuestionarioService) Create(ctx context.Context, raw []byte) (*dto.CuestionarioDTO, error) {
	result := schema.ValidateJSON(raw)
	if !result.Valid {
		log.Warn().Int("errors", len(result.Errors)).Msg("Rejected cuestionario upload")
		return nil, &InvalidCuestionarioError{Errors: result.Errors}
	}

	var upload dto.CuestionarioUploadDTO
	if err := json.Unmarshal(raw, &upload); err != nil {
		return nil, fmt.Errorf("error decoding cuestionario: %w", err)
	}

	status := upload.Status
	if status == "" {
		status = model.CuestionarioStatusDraft
	}

	var questions []model.Question
	if err := copier.Copy(&questions, &upload.Questions); err != nil {
		return nil, fmt.Errorf("error preparing questions: %w", err)
	}

	cuestionario := model.Cuestionario{
		ID:             upload.IDCuestionario,
		Version:        upload.Version,
		Title:          upload.Title,
		Description:    upload.Description,
		TotalQuestions: upload.TotalQuestions,
		CreadoPor:      upload.CreadoPor,
		Status:         status,
	}
	if err := cuestionario.SetQuestions(questions); err != nil {
		return nil, fmt.Errorf("error encoding questions: %w", err)
	}

	if err := storeCall(ctx, func() error { return s.repo.Create(&cuestionario) }); err != nil {
		log.Error().Err(err).Str("cuestionarioID", cuestionario.ID).Msg("Failed to create cuestionario")
		return nil, fmt.Errorf("error creating cuestionario: %w", err)
	}

	log.Info().Str("cuestionarioID", cuestionario.ID).Str("version", cuestionario.Version).Msg("Cuestionario created")
	return mapCuestionario(&cuestionario), nil
}

func (s *cuestionarioService) List(ctx context.Context) ([]dto.CuestionarioSummaryDTO, error) {
	var cuestionarios []model.Cuestionario
	err := storeCall(ctx, func() error {
		var listErr error
		cuestionarios, listErr = s.repo.FindAll()
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("error listing cuestionarios: %w", err)
	}

	summaries := make([]dto.CuestionarioSummaryDTO, 0, len(cuestionarios))
	for i := range cuestionarios {
		var summary dto.CuestionarioSummaryDTO
		if err := copier.Copy(&summary, &cuestionarios[i]); err != nil {
			log.Error().Err(err).Str("cuestionarioID", cuestionarios[i].ID).Msg("Failed to map cuestionario summary")
			continue
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func (s *cuestionarioService) Get(ctx context.Context, id string) (*dto.CuestionarioDTO, error) {
	var cuestionario *model.Cuestionario
	err := storeCall(ctx, func() error {
		var findErr error
		cuestionario, findErr = s.repo.FindByID(id)
		return findErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCuestionarioNotFound
		}
		return nil, fmt.Errorf("error fetching cuestionario %s: %w", id, err)
	}
	return mapCuestionario(cuestionario), nil
}

func (s *cuestionarioService) GetActive(ctx context.Context) (*dto.CuestionarioDTO, error) {
	var cuestionario *model.Cuestionario
	err := storeCall(ctx, func() error {
		var findErr error
		cuestionario, findErr = s.repo.FindActive()
		return findErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCuestionarioNotFound
		}
		return nil, fmt.Errorf("error fetching active cuestionario: %w", err)
	}
	return mapCuestionario(cuestionario), nil
}

// UpdateStatus moves a definition through its lifecycle. Activating a
// definition archives whichever one is currently active, keeping at most one
// active at a time.
func (s *cuestionarioService) UpdateStatus(ctx context.Context, id string, status string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if status == model.CuestionarioStatusActive {
		current, err := s.repo.FindActive()
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("error checking active cuestionario: %w", err)
		}
		if current != nil && current.ID != id {
			if err := storeCall(ctx, func() error {
				return s.repo.UpdateStatus(current.ID, model.CuestionarioStatusArchived)
			}); err != nil {
				return fmt.Errorf("error archiving cuestionario %s: %w", current.ID, err)
			}
			log.Info().Str("cuestionarioID", current.ID).Msg("Previously active cuestionario archived")
		}
	}

	if err := storeCall(ctx, func() error { return s.repo.UpdateStatus(id, status) }); err != nil {
		log.Error().Err(err).Str("cuestionarioID", id).Str("status", status).Msg("Failed to update cuestionario status")
		return fmt.Errorf("error updating cuestionario status: %w", err)
	}

	log.Info().Str("cuestionarioID", id).Str("status", status).Msg("Cuestionario status updated")
	return nil
}

func (s *cuestionarioService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := storeCall(ctx, func() error { return s.repo.Delete(id) }); err != nil {
		return fmt.Errorf("error deleting cuestionario %s: %w", id, err)
	}
	log.Info().Str("cuestionarioID", id).Msg("Cuestionario deleted")
	return nil
}

func mapCuestionario(cuestionario *model.Cuestionario) *dto.CuestionarioDTO {
	var out dto.CuestionarioDTO
	if err := copier.Copy(&out, cuestionario); err != nil {
		log.Error().Err(err).Str("cuestionarioID", cuestionario.ID).Msg("Failed to map cuestionario to DTO")
	}
	var questions []dto.QuestionDTO
	if err := copier.Copy(&questions, cuestionario.Questions()); err == nil {
		out.Questions = questions
	}
	return &out
}
