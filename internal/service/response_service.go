package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/mparedes/cuestionario-api/config"
	"github.com/mparedes/cuestionario-api/internal/cuil"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/model"
	"github.com/mparedes/cuestionario-api/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// badgeQuestionNumbers is the fixed set of questions after which the
// gamification badge popup interrupts the respondent. Time spent looking at
// the popup is discounted from those answers.
var badgeQuestionNumbers = map[int]bool{11: true, 21: true, 31: true, 41: true, 51: true}

// ResponseService is the submission pipeline: it enriches raw answer
// telemetry, adjusts elapsed time for popup interruptions and persists the
// result. It never redeems the token itself; the caller redeems after the
// submission is durable.
type ResponseService interface {
	EnrichAnswers(answers []dto.AnswerMetricsDTO, questions []model.Question) []model.EnrichedAnswer
	SubmitCompleted(ctx context.Context, tokenID string, req dto.ResponseSubmitDTO) (*dto.ResponseDTO, error)
	SubmitAbandoned(ctx context.Context, tokenID string, req dto.ResponseAbandonDTO) (*dto.ResponseDTO, error)
	AttachFeedback(ctx context.Context, responseID string, feedback dto.FeedbackDTO) error
	AttachAbandonFeedback(ctx context.Context, responseID string, feedback dto.AbandonFeedbackDTO) error
	MarkDownloaded(ctx context.Context, responseID string, downloadedBy string) (*dto.ResponseDTO, error)
	Unmark(ctx context.Context, responseID string) error
	Get(ctx context.Context, responseID string) (*dto.ResponseDTO, error)
	ListAll(ctx context.Context) ([]dto.ResponseDTO, error)
	ListPending(ctx context.Context) ([]dto.ResponseDTO, error)
	ListByAdministrator(ctx context.Context, email string) ([]dto.ResponseDTO, error)
}

type responseService struct {
	responseRepo     repository.ResponseRepository
	tokenRepo        repository.TokenRepository
	cuestionarioRepo repository.CuestionarioRepository
	popupDurationMs  int64
	now              func() time.Time
}

func NewResponseService(
	responseRepo repository.ResponseRepository,
	tokenRepo repository.TokenRepository,
	cuestionarioRepo repository.CuestionarioRepository,
	cfg *config.Config,
) ResponseService {
	return &responseService{
		responseRepo:     responseRepo,
		tokenRepo:        tokenRepo,
		cuestionarioRepo: cuestionarioRepo,
		popupDurationMs:  cfg.Badge.PopupDurationMs,
		now:              time.Now,
	}
}

// EnrichAnswers resolves question and option display text for each raw
// answer and computes popup-adjusted timing. When a lookup fails the raw
// key/text is kept as-is: malformed or legacy data must not block
// submission (tolerant enrichment, deliberate and not an error path).
func (s *responseService) EnrichAnswers(answers []dto.AnswerMetricsDTO, questions []model.Question) []model.EnrichedAnswer {
	questionsByNumber := make(map[int]model.Question, len(questions))
	for _, q := range questions {
		questionsByNumber[q.QuestionNumber] = q
	}

	enriched := make([]model.EnrichedAnswer, 0, len(answers))
	for _, answer := range answers {
		questionText := ""
		selectedOptionText := answer.SelectedOption

		if question, ok := questionsByNumber[answer.QuestionNumber]; ok {
			questionText = question.Text
			for _, option := range question.Options {
				if option.OptionKey == answer.SelectedOption {
					selectedOptionText = fmt.Sprintf("%s. %s", option.OptionKey, option.OptionText)
					break
				}
			}
		}

		hadBadgePopup := badgeQuestionNumbers[answer.QuestionNumber]
		timeAdjusted := answer.TimeToAnswerMs
		if hadBadgePopup {
			timeAdjusted = answer.TimeToAnswerMs - s.popupDurationMs
			if timeAdjusted < 0 {
				timeAdjusted = 0
			}
		}

		enriched = append(enriched, model.EnrichedAnswer{
			QuestionNumber:     answer.QuestionNumber,
			QuestionText:       questionText,
			SelectedOptionKey:  answer.SelectedOption,
			SelectedOptionText: selectedOptionText,
			TimeToAnswerMs:     answer.TimeToAnswerMs,
			TimeAdjustedMs:     timeAdjusted,
			ChangedAnswer:      answer.ChangedAnswer,
			ChangeCount:        answer.ChangeCount,
			HadBadgePopup:      hadBadgePopup,
		})
	}
	return enriched
}

// SubmitCompleted enriches and persists a completed session. The caller is
// responsible for redeeming the token afterwards, which keeps submission
// idempotent before redemption.
func (s *responseService) SubmitCompleted(ctx context.Context, tokenID string, req dto.ResponseSubmitDTO) (*dto.ResponseDTO, error) {
	token, cuestionario, err := s.loadSessionContext(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	enriched := s.EnrichAnswers(req.Answers, cuestionario.Questions())

	popupCount := int64(0)
	for _, answer := range enriched {
		if answer.HadBadgePopup {
			popupCount++
		}
	}
	totalTimeAdjusted := req.TotalTimeMs - popupCount*s.popupDurationMs
	if totalTimeAdjusted < 0 {
		totalTimeAdjusted = 0
	}

	response := model.Response{
		ID:                  uuid.NewString(),
		TokenID:             tokenID,
		CuestionarioID:      cuestionario.ID,
		CuestionarioVersion: cuestionario.Version,
		CuestionarioTitle:   &cuestionario.Title,
		StartedAt:           req.StartedAt,
		FinishedAt:          &req.FinishedAt,
		TotalTimeMs:         &req.TotalTimeMs,
		TotalTimeAdjustedMs: &totalTimeAdjusted,
		Status:              model.ResponseStatusCompleted,
		DownloadStatus:      model.DownloadStatusPending,
	}
	if err := response.SetAnswers(enriched); err != nil {
		return nil, fmt.Errorf("error encoding answers: %w", err)
	}

	if req.Respondent != nil {
		cuilResult := cuil.Validate(req.Respondent.Cuil)
		if !cuilResult.Valid {
			return nil, fmt.Errorf("%s", cuilResult.Error)
		}
		response.RespondentName = &req.Respondent.Name
		response.RespondentEmail = &req.Respondent.Email
		response.RespondentCuil = &cuilResult.Formatted
	} else {
		// Assisted-entry tokens already carry the respondent identity.
		response.RespondentName = token.RespondentName
		response.RespondentEmail = token.RespondentEmail
		response.RespondentCuil = token.RespondentCuil
	}
	if req.Administrator != nil {
		if req.Administrator.Name != "" {
			response.AdministeredBy = &req.Administrator.Name
		}
		response.AdministeredByEmail = &req.Administrator.Email
	}

	if err := storeCall(ctx, func() error { return s.responseRepo.Create(&response) }); err != nil {
		log.Error().Err(err).Str("tokenID", tokenID).Msg("Failed to persist completed response")
		return nil, fmt.Errorf("error submitting response: %w", err)
	}

	log.Info().
		Str("responseID", response.ID).
		Str("tokenID", tokenID).
		Int("answers", len(enriched)).
		Int64("totalTimeAdjustedMs", totalTimeAdjusted).
		Msg("Completed response submitted")
	return mapResponse(&response), nil
}

// SubmitAbandoned persists a partial session and marks the token used at the
// moment of abandonment. Abandoning is itself a terminal redemption.
func (s *responseService) SubmitAbandoned(ctx context.Context, tokenID string, req dto.ResponseAbandonDTO) (*dto.ResponseDTO, error) {
	_, cuestionario, err := s.loadSessionContext(ctx, tokenID)
	if err != nil {
		return nil, err
	}

	enriched := s.EnrichAnswers(req.Answers, cuestionario.Questions())
	totalTimeMs := req.AbandonedAt.Sub(req.StartedAt).Milliseconds()

	response := model.Response{
		ID:                  uuid.NewString(),
		TokenID:             tokenID,
		CuestionarioID:      cuestionario.ID,
		CuestionarioVersion: cuestionario.Version,
		CuestionarioTitle:   &cuestionario.Title,
		StartedAt:           req.StartedAt,
		TotalTimeMs:         &totalTimeMs,
		Status:              model.ResponseStatusAbandoned,
		DownloadStatus:      model.DownloadStatusPending,
	}
	if err := response.SetAnswers(enriched); err != nil {
		return nil, fmt.Errorf("error encoding answers: %w", err)
	}

	if err := storeCall(ctx, func() error { return s.responseRepo.Create(&response) }); err != nil {
		log.Error().Err(err).Str("tokenID", tokenID).Msg("Failed to persist abandoned response")
		return nil, fmt.Errorf("error submitting abandoned response: %w", err)
	}

	var won bool
	err = storeCall(ctx, func() error {
		var markErr error
		won, markErr = s.tokenRepo.MarkUsed(tokenID, req.AbandonedAt)
		return markErr
	})
	if err != nil {
		// The response is durable; losing the token update means the token
		// stays redeemable, which an admin can reconcile from the audit log.
		log.Error().Err(err).Str("tokenID", tokenID).Str("responseID", response.ID).Msg("Failed to mark token used after abandonment")
	} else if !won {
		log.Warn().Str("tokenID", tokenID).Str("responseID", response.ID).Msg("Token was no longer active when abandonment was recorded")
	}

	log.Info().Str("responseID", response.ID).Str("tokenID", tokenID).Msg("Abandoned response submitted")
	return mapResponse(&response), nil
}

// AttachFeedback overwrites the feedback block on a response. Re-submitting
// replaces previous values, it never appends.
func (s *responseService) AttachFeedback(ctx context.Context, responseID string, feedback dto.FeedbackDTO) error {
	if _, err := s.fetch(ctx, responseID); err != nil {
		return err
	}
	now := s.now()
	return s.update(ctx, responseID, map[string]any{
		"feedback_ease_of_use":        feedback.EaseOfUse,
		"feedback_survey_length":      feedback.SurveyLength,
		"feedback_willing_to_receive": feedback.WillingToReceive,
		"feedback_submitted_at":       now,
	})
}

func (s *responseService) AttachAbandonFeedback(ctx context.Context, responseID string, feedback dto.AbandonFeedbackDTO) error {
	if _, err := s.fetch(ctx, responseID); err != nil {
		return err
	}
	now := s.now()
	return s.update(ctx, responseID, map[string]any{
		"status":                      model.ResponseStatusAbandoned,
		"abandoned_at_question":       feedback.AbandonedAtQuestion,
		"abandon_reason":              feedback.AbandonReason,
		"feedback_ease_of_use":        feedback.EaseOfUse,
		"feedback_survey_length":      feedback.SurveyLength,
		"feedback_willing_to_receive": feedback.WillingToReceive,
		"feedback_submitted_at":       now,
	})
}

// MarkDownloaded fetches a response and flips it to downloaded, returning
// the full record for export.
func (s *responseService) MarkDownloaded(ctx context.Context, responseID string, downloadedBy string) (*dto.ResponseDTO, error) {
	response, err := s.fetch(ctx, responseID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	err = s.update(ctx, responseID, map[string]any{
		"download_status": model.DownloadStatusDownloaded,
		"downloaded_at":   now,
		"downloaded_by":   downloadedBy,
	})
	if err != nil {
		return nil, err
	}

	response.DownloadStatus = model.DownloadStatusDownloaded
	response.DownloadedAt = &now
	response.DownloadedBy = &downloadedBy
	return mapResponse(response), nil
}

func (s *responseService) Unmark(ctx context.Context, responseID string) error {
	if _, err := s.fetch(ctx, responseID); err != nil {
		return err
	}
	return s.update(ctx, responseID, map[string]any{
		"download_status": model.DownloadStatusPending,
		"downloaded_at":   nil,
		"downloaded_by":   nil,
	})
}

func (s *responseService) Get(ctx context.Context, responseID string) (*dto.ResponseDTO, error) {
	response, err := s.fetch(ctx, responseID)
	if err != nil {
		return nil, err
	}
	return mapResponse(response), nil
}

func (s *responseService) ListAll(ctx context.Context) ([]dto.ResponseDTO, error) {
	return s.list(ctx, func() ([]model.Response, error) { return s.responseRepo.FindAll() })
}

func (s *responseService) ListPending(ctx context.Context) ([]dto.ResponseDTO, error) {
	return s.list(ctx, func() ([]model.Response, error) {
		return s.responseRepo.FindByDownloadStatus(model.DownloadStatusPending)
	})
}

func (s *responseService) ListByAdministrator(ctx context.Context, email string) ([]dto.ResponseDTO, error) {
	return s.list(ctx, func() ([]model.Response, error) { return s.responseRepo.FindByAdministrator(email) })
}

func (s *responseService) loadSessionContext(ctx context.Context, tokenID string) (*model.Token, *model.Cuestionario, error) {
	var token *model.Token
	err := storeCall(ctx, func() error {
		var findErr error
		token, findErr = s.tokenRepo.FindByID(tokenID)
		return findErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrTokenNotFound
		}
		return nil, nil, fmt.Errorf("error fetching token %s: %w", tokenID, err)
	}

	var cuestionario *model.Cuestionario
	err = storeCall(ctx, func() error {
		var findErr error
		cuestionario, findErr = s.cuestionarioRepo.FindByID(token.CuestionarioID)
		return findErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrCuestionarioNotFound
		}
		return nil, nil, fmt.Errorf("error fetching cuestionario %s: %w", token.CuestionarioID, err)
	}

	return token, cuestionario, nil
}

func (s *responseService) fetch(ctx context.Context, responseID string) (*model.Response, error) {
	var response *model.Response
	err := storeCall(ctx, func() error {
		var findErr error
		response, findErr = s.responseRepo.FindByID(responseID)
		return findErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrResponseNotFound
		}
		return nil, fmt.Errorf("error fetching response %s: %w", responseID, err)
	}
	return response, nil
}

func (s *responseService) update(ctx context.Context, responseID string, fields map[string]any) error {
	if err := storeCall(ctx, func() error { return s.responseRepo.UpdateFields(responseID, fields) }); err != nil {
		log.Error().Err(err).Str("responseID", responseID).Msg("Failed to update response")
		return fmt.Errorf("error updating response %s: %w", responseID, err)
	}
	return nil
}

func (s *responseService) list(ctx context.Context, find func() ([]model.Response, error)) ([]dto.ResponseDTO, error) {
	var responses []model.Response
	err := storeCall(ctx, func() error {
		var listErr error
		responses, listErr = find()
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("error listing responses: %w", err)
	}

	dtos := make([]dto.ResponseDTO, 0, len(responses))
	for i := range responses {
		dtos = append(dtos, *mapResponse(&responses[i]))
	}
	return dtos, nil
}

func mapResponse(response *model.Response) *dto.ResponseDTO {
	var out dto.ResponseDTO
	if err := copier.Copy(&out, response); err != nil {
		log.Error().Err(err).Str("responseID", response.ID).Msg("Failed to map response to DTO")
	}
	var answers []dto.EnrichedAnswerDTO
	if err := copier.Copy(&answers, response.Answers()); err == nil {
		out.Answers = answers
	}
	return &out
}
