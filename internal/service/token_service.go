package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"github.com/mparedes/cuestionario-api/internal/cuil"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/model"
	"github.com/mparedes/cuestionario-api/internal/repository"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// batchChunkSize bounds how many token creations run against the store at
// once during a batch. Chunks are awaited before the next one starts.
const batchChunkSize = 10

// TokenService manages the single-use token lifecycle:
// active -> used | expired | revoked, with active as the only non-terminal
// state.
type TokenService interface {
	Create(ctx context.Context, req dto.TokenCreateDTO) (*dto.TokenDTO, error)
	CreateBatch(ctx context.Context, req dto.TokenBatchCreateDTO) ([]dto.TokenDTO, error)
	Validate(ctx context.Context, tokenID string) (*dto.TokenValidationDTO, error)
	Redeem(ctx context.Context, tokenID string, usedAt time.Time) error
	Revoke(ctx context.Context, tokenID string) error
	List(ctx context.Context, status string) ([]dto.TokenDTO, error)
}

type tokenService struct {
	tokenRepo        repository.TokenRepository
	cuestionarioRepo repository.CuestionarioRepository
	now              func() time.Time
}

func NewTokenService(tokenRepo repository.TokenRepository, cuestionarioRepo repository.CuestionarioRepository) TokenService {
	return &tokenService{
		tokenRepo:        tokenRepo,
		cuestionarioRepo: cuestionarioRepo,
		now:              time.Now,
	}
}

func (s *tokenService) Create(ctx context.Context, req dto.TokenCreateDTO) (*dto.TokenDTO, error) {
	err := storeCall(ctx, func() error {
		_, err := s.cuestionarioRepo.FindByID(req.CuestionarioID)
		return err
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCuestionarioNotFound
		}
		return nil, fmt.Errorf("error verifying cuestionario %s: %w", req.CuestionarioID, err)
	}

	token := model.Token{
		ID:             uuid.NewString(),
		CuestionarioID: req.CuestionarioID,
		Status:         model.TokenStatusActive,
		ExpiresAt:      req.ExpiresAt,
		CreatedBy:      req.CreatedBy,
	}

	if req.Respondent != nil {
		if err := cuil.ValidateRespondentName(req.Respondent.Name); err != nil {
			return nil, err
		}
		if err := cuil.ValidateEmail(req.Respondent.Email); err != nil {
			return nil, err
		}
		cuilResult := cuil.Validate(req.Respondent.Cuil)
		if !cuilResult.Valid {
			return nil, fmt.Errorf("%s", cuilResult.Error)
		}
		token.RespondentName = &req.Respondent.Name
		token.RespondentEmail = &req.Respondent.Email
		token.RespondentCuil = &cuilResult.Formatted
		token.IsAssistedEntry = true
	}

	if err := storeCall(ctx, func() error { return s.tokenRepo.Create(&token) }); err != nil {
		log.Error().Err(err).Str("cuestionarioID", req.CuestionarioID).Msg("Failed to create token")
		return nil, fmt.Errorf("error creating token: %w", err)
	}

	return mapToken(&token), nil
}

// CreateBatch issues tokens in parallel chunks of batchChunkSize, bounding
// concurrent load on the store while avoiding serial latency for large
// batches.
func (s *tokenService) CreateBatch(ctx context.Context, req dto.TokenBatchCreateDTO) ([]dto.TokenDTO, error) {
	single := dto.TokenCreateDTO{
		CuestionarioID: req.CuestionarioID,
		ExpiresAt:      req.ExpiresAt,
		CreatedBy:      req.CreatedBy,
	}

	tokens := make([]dto.TokenDTO, req.Count)
	for start := 0; start < req.Count; start += batchChunkSize {
		end := start + batchChunkSize
		if end > req.Count {
			end = req.Count
		}

		g, gctx := errgroup.WithContext(ctx)
		for i := start; i < end; i++ {
			g.Go(func() error {
				token, err := s.Create(gctx, single)
				if err != nil {
					return err
				}
				tokens[i] = *token
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			log.Error().Err(err).Int("requested", req.Count).Int("created", start).Msg("Batch token creation aborted")
			return nil, fmt.Errorf("batch creation failed after %d tokens: %w", start, err)
		}
	}

	log.Info().Int("count", req.Count).Str("cuestionarioID", req.CuestionarioID).Msg("Token batch created")
	return tokens, nil
}

// Validate resolves a token to a reason-coded result. The check order is
// fixed (not found, used, expired, revoked) so error messages stay
// deterministic even when a token satisfies several terminal conditions.
func (s *tokenService) Validate(ctx context.Context, tokenID string) (*dto.TokenValidationDTO, error) {
	var token *model.Token
	err := storeCall(ctx, func() error {
		var findErr error
		token, findErr = s.tokenRepo.FindByID(tokenID)
		return findErr
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &dto.TokenValidationDTO{
				Valid:   false,
				Reason:  dto.TokenReasonNotFound,
				Message: "Token no encontrado",
			}, nil
		}
		log.Error().Err(err).Str("tokenID", tokenID).Msg("Failed to fetch token for validation")
		return nil, fmt.Errorf("error validating token: %w", err)
	}

	if token.Status == model.TokenStatusUsed {
		return &dto.TokenValidationDTO{
			Valid:   false,
			Token:   mapToken(token),
			Reason:  dto.TokenReasonUsed,
			Message: "Este token ya ha sido utilizado",
		}, nil
	}

	// Expiry is computed against the stored timestamp, independent of the
	// stored status.
	if token.IsExpired(s.now()) {
		return &dto.TokenValidationDTO{
			Valid:   false,
			Token:   mapToken(token),
			Reason:  dto.TokenReasonExpired,
			Message: "Este token ha expirado",
		}, nil
	}

	if token.Status == model.TokenStatusRevoked {
		return &dto.TokenValidationDTO{
			Valid:   false,
			Token:   mapToken(token),
			Reason:  dto.TokenReasonRevoked,
			Message: "Este token ha sido revocado",
		}, nil
	}

	return &dto.TokenValidationDTO{
		Valid:   true,
		Token:   mapToken(token),
		Message: "Token válido",
	}, nil
}

// Redeem transitions active -> used. It must only be called after the
// response has been durably submitted; a failed submission leaves the token
// active for retry. Redeeming a non-active token returns ErrTokenNotActive.
func (s *tokenService) Redeem(ctx context.Context, tokenID string, usedAt time.Time) error {
	var won bool
	err := storeCall(ctx, func() error {
		var markErr error
		won, markErr = s.tokenRepo.MarkUsed(tokenID, usedAt)
		return markErr
	})
	if err != nil {
		log.Error().Err(err).Str("tokenID", tokenID).Msg("Failed to mark token as used")
		return fmt.Errorf("error redeeming token: %w", err)
	}
	if won {
		log.Info().Str("tokenID", tokenID).Time("usedAt", usedAt).Msg("Token redeemed")
		return nil
	}

	// Lost the conditional update: distinguish a missing token from one
	// already in a terminal state.
	if _, findErr := s.tokenRepo.FindByID(tokenID); findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("error redeeming token: %w", findErr)
	}
	return ErrTokenNotActive
}

func (s *tokenService) Revoke(ctx context.Context, tokenID string) error {
	var won bool
	err := storeCall(ctx, func() error {
		var revokeErr error
		won, revokeErr = s.tokenRepo.Revoke(tokenID)
		return revokeErr
	})
	if err != nil {
		log.Error().Err(err).Str("tokenID", tokenID).Msg("Failed to revoke token")
		return fmt.Errorf("error revoking token: %w", err)
	}
	if won {
		log.Info().Str("tokenID", tokenID).Msg("Token revoked")
		return nil
	}

	if _, findErr := s.tokenRepo.FindByID(tokenID); findErr != nil {
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return ErrTokenNotFound
		}
		return fmt.Errorf("error revoking token: %w", findErr)
	}
	return ErrTokenNotActive
}

func (s *tokenService) List(ctx context.Context, status string) ([]dto.TokenDTO, error) {
	var tokens []model.Token
	err := storeCall(ctx, func() error {
		var listErr error
		tokens, listErr = s.tokenRepo.FindAll(status)
		return listErr
	})
	if err != nil {
		return nil, fmt.Errorf("error listing tokens: %w", err)
	}

	dtos := make([]dto.TokenDTO, 0, len(tokens))
	for i := range tokens {
		dtos = append(dtos, *mapToken(&tokens[i]))
	}
	return dtos, nil
}

func mapToken(token *model.Token) *dto.TokenDTO {
	var out dto.TokenDTO
	if err := copier.Copy(&out, token); err != nil {
		log.Error().Err(err).Str("tokenID", token.ID).Msg("Failed to map token to DTO")
	}
	return &out
}
