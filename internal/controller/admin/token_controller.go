package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/service"
	"github.com/rs/zerolog/log"
)

type TokenController struct {
	tokenService service.TokenService
}

func NewTokenController(tokenService service.TokenService) *TokenController {
	return &TokenController{tokenService: tokenService}
}

// CreateToken godoc
// @Summary (Admin) Issue a single access token
// @Description Issues one single-use token for a cuestionario, optionally bound to a respondent for assisted entry.
// @Tags Admin - Tokens
// @Accept json
// @Produce json
// @Param token_data body dto.TokenCreateDTO true "Token creation data"
// @Success 201 {object} dto.TokenDTO
// @Failure 400 {object} dto.ErrorResponse "Invalid request body or respondent data"
// @Failure 404 {object} dto.ErrorResponse "Cuestionario not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/tokens [post]
func (c *TokenController) CreateToken(ctx *gin.Context) {
	var req dto.TokenCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateToken: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	token, err := c.tokenService.Create(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrCuestionarioNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Cuestionario not found"})
			return
		}
		log.Error().Err(err).Msg("Admin CreateToken: Service error")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Failed to create token", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, token)
}

// CreateTokenBatch godoc
// @Summary (Admin) Issue tokens in bulk
// @Description Issues up to 1000 tokens for a cuestionario. Creations run in bounded parallel chunks.
// @Tags Admin - Tokens
// @Accept json
// @Produce json
// @Param batch_data body dto.TokenBatchCreateDTO true "Batch creation data"
// @Success 201 {array} dto.TokenDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Cuestionario not found"
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/tokens/batch [post]
func (c *TokenController) CreateTokenBatch(ctx *gin.Context) {
	var req dto.TokenBatchCreateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("Admin CreateTokenBatch: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	tokens, err := c.tokenService.CreateBatch(ctx.Request.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrCuestionarioNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Cuestionario not found"})
			return
		}
		log.Error().Err(err).Int("count", req.Count).Msg("Admin CreateTokenBatch: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create token batch", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, tokens)
}

// ListTokens godoc
// @Summary (Admin) List tokens
// @Tags Admin - Tokens
// @Produce json
// @Param status query string false "Filter by status (active, used, expired, revoked)"
// @Success 200 {array} dto.TokenDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/tokens [get]
func (c *TokenController) ListTokens(ctx *gin.Context) {
	tokens, err := c.tokenService.List(ctx.Request.Context(), ctx.Query("status"))
	if err != nil {
		log.Error().Err(err).Msg("Admin ListTokens: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list tokens", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, tokens)
}

// RevokeToken godoc
// @Summary (Admin) Revoke an active token
// @Description Transitions an active token to revoked. Tokens in any other state are rejected.
// @Tags Admin - Tokens
// @Produce json
// @Param token_id path string true "Token ID"
// @Success 204 "Token revoked"
// @Failure 404 {object} dto.ErrorResponse "Token not found"
// @Failure 409 {object} dto.ErrorResponse "Token is not active"
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/tokens/{token_id}/revoke [post]
func (c *TokenController) RevokeToken(ctx *gin.Context) {
	tokenID := ctx.Param("token_id")

	err := c.tokenService.Revoke(ctx.Request.Context(), tokenID)
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrTokenNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Token not found"})
	case errors.Is(err, service.ErrTokenNotActive):
		ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Token is not active"})
	default:
		log.Error().Err(err).Str("tokenID", tokenID).Msg("Admin RevokeToken: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to revoke token", Details: []string{err.Error()}})
	}
}
