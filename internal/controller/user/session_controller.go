package user

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/service"
	"github.com/rs/zerolog/log"
)

// SessionController is the public, token-gated surface: validate a token,
// fetch the active cuestionario, submit or abandon a session and attach
// feedback afterwards.
type SessionController struct {
	tokenService        service.TokenService
	cuestionarioService service.CuestionarioService
	responseService     service.ResponseService
}

func NewSessionController(
	tokenService service.TokenService,
	cuestionarioService service.CuestionarioService,
	responseService service.ResponseService,
) *SessionController {
	return &SessionController{
		tokenService:        tokenService,
		cuestionarioService: cuestionarioService,
		responseService:     responseService,
	}
}

// ValidateToken godoc
// @Summary Validate an access token
// @Description Resolves a token to a reason-coded validity result. Invalid tokens report not_found, used, expired or revoked.
// @Tags Public - Sessions
// @Produce json
// @Param token_id path string true "Token ID"
// @Success 200 {object} dto.TokenValidationDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /tokens/{token_id}/validate [get]
func (c *SessionController) ValidateToken(ctx *gin.Context) {
	result, err := c.tokenService.Validate(ctx.Request.Context(), ctx.Param("token_id"))
	if err != nil {
		log.Error().Err(err).Msg("ValidateToken: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Error al validar el token"})
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// GetActiveCuestionario godoc
// @Summary Get the active cuestionario
// @Tags Public - Sessions
// @Produce json
// @Success 200 {object} dto.CuestionarioDTO
// @Failure 404 {object} dto.ErrorResponse "No active cuestionario"
// @Failure 500 {object} dto.ErrorResponse
// @Router /cuestionarios/active [get]
func (c *SessionController) GetActiveCuestionario(ctx *gin.Context) {
	cuestionario, err := c.cuestionarioService.GetActive(ctx.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrCuestionarioNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "No hay cuestionario activo"})
			return
		}
		log.Error().Err(err).Msg("GetActiveCuestionario: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch active cuestionario"})
		return
	}
	ctx.JSON(http.StatusOK, cuestionario)
}

// SubmitResponse godoc
// @Summary Submit a completed session
// @Description Validates the token, persists the enriched response, then redeems the token. The token is only burned once the response is durable.
// @Tags Public - Sessions
// @Accept json
// @Produce json
// @Param token_id path string true "Token ID"
// @Param submission body dto.ResponseSubmitDTO true "Completed session payload"
// @Success 201 {object} dto.ResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.TokenValidationDTO "Token is not redeemable"
// @Failure 409 {object} dto.ErrorResponse "Token was redeemed concurrently"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tokens/{token_id}/responses [post]
func (c *SessionController) SubmitResponse(ctx *gin.Context) {
	tokenID := ctx.Param("token_id")

	var req dto.ResponseSubmitDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		log.Warn().Err(err).Msg("SubmitResponse: Failed to bind JSON")
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	validation, err := c.tokenService.Validate(ctx.Request.Context(), tokenID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Error al validar el token"})
		return
	}
	if !validation.Valid {
		ctx.JSON(http.StatusForbidden, validation)
		return
	}

	response, err := c.responseService.SubmitCompleted(ctx.Request.Context(), tokenID, req)
	if err != nil {
		log.Error().Err(err).Str("tokenID", tokenID).Msg("SubmitResponse: Submission failed, token left active")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to submit response", Details: []string{err.Error()}})
		return
	}

	// The response is durable; burn the token. Losing the conditional
	// update means another submission redeemed it concurrently.
	if err := c.tokenService.Redeem(ctx.Request.Context(), tokenID, time.Now()); err != nil {
		if errors.Is(err, service.ErrTokenNotActive) {
			ctx.JSON(http.StatusConflict, dto.ErrorResponse{Message: "Este token ya ha sido utilizado"})
			return
		}
		log.Error().Err(err).Str("tokenID", tokenID).Str("responseID", response.ID).Msg("SubmitResponse: Redeem failed after durable submission")
	}

	ctx.JSON(http.StatusCreated, response)
}

// AbandonResponse godoc
// @Summary Record an abandoned session
// @Description Persists the partial answers and marks the token used. Abandonment is a terminal redemption.
// @Tags Public - Sessions
// @Accept json
// @Produce json
// @Param token_id path string true "Token ID"
// @Param abandonment body dto.ResponseAbandonDTO true "Partial session payload"
// @Success 201 {object} dto.ResponseDTO
// @Failure 400 {object} dto.ErrorResponse
// @Failure 403 {object} dto.TokenValidationDTO "Token is not redeemable"
// @Failure 500 {object} dto.ErrorResponse
// @Router /tokens/{token_id}/abandon [post]
func (c *SessionController) AbandonResponse(ctx *gin.Context) {
	tokenID := ctx.Param("token_id")

	var req dto.ResponseAbandonDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	validation, err := c.tokenService.Validate(ctx.Request.Context(), tokenID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Error al validar el token"})
		return
	}
	if !validation.Valid {
		ctx.JSON(http.StatusForbidden, validation)
		return
	}

	response, err := c.responseService.SubmitAbandoned(ctx.Request.Context(), tokenID, req)
	if err != nil {
		log.Error().Err(err).Str("tokenID", tokenID).Msg("AbandonResponse: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to record abandonment", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, response)
}

// SubmitFeedback godoc
// @Summary Attach feedback to a response
// @Description Idempotent: re-submitting overwrites the previous feedback block.
// @Tags Public - Sessions
// @Accept json
// @Produce json
// @Param response_id path string true "Response ID"
// @Param feedback body dto.FeedbackDTO true "Feedback block"
// @Success 204 "Feedback stored"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /responses/{response_id}/feedback [post]
func (c *SessionController) SubmitFeedback(ctx *gin.Context) {
	var req dto.FeedbackDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	err := c.responseService.AttachFeedback(ctx.Request.Context(), ctx.Param("response_id"), req)
	if err != nil {
		if errors.Is(err, service.ErrResponseNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Response not found"})
			return
		}
		log.Error().Err(err).Msg("SubmitFeedback: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to store feedback"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

// SubmitAbandonFeedback godoc
// @Summary Attach abandonment details to a response
// @Tags Public - Sessions
// @Accept json
// @Produce json
// @Param response_id path string true "Response ID"
// @Param feedback body dto.AbandonFeedbackDTO true "Abandonment details"
// @Success 204 "Stored"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /responses/{response_id}/abandon-feedback [post]
func (c *SessionController) SubmitAbandonFeedback(ctx *gin.Context) {
	var req dto.AbandonFeedbackDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	err := c.responseService.AttachAbandonFeedback(ctx.Request.Context(), ctx.Param("response_id"), req)
	if err != nil {
		if errors.Is(err, service.ErrResponseNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Response not found"})
			return
		}
		log.Error().Err(err).Msg("SubmitAbandonFeedback: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to store abandonment details"})
		return
	}
	ctx.Status(http.StatusNoContent)
}
