package consumer

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jinzhu/copier"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/service"
	"github.com/rs/zerolog/log"
)

// ExportController is the back-office integration surface. Every route
// except the health check sits behind the API-key guard; the download
// endpoints implement at-most-once export semantics with a manual reset.
type ExportController struct {
	responseService service.ResponseService
}

func NewExportController(responseService service.ResponseService) *ExportController {
	return &ExportController{responseService: responseService}
}

// Health godoc
// @Summary Liveness check
// @Tags Export
// @Produce json
// @Success 200 {object} map[string]string
// @Router /export/health [get]
func (c *ExportController) Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ListPending godoc
// @Summary List responses not yet downloaded
// @Tags Export
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.ResponseListDTO
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /export/responses/pending [get]
func (c *ExportController) ListPending(ctx *gin.Context) {
	log.Info().Str("tag", "AUDIT").Msg("Listing pending responses")
	responses, err := c.responseService.ListPending(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Export ListPending: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, toListDTO(responses))
}

// ListAll godoc
// @Summary List all responses
// @Tags Export
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} dto.ResponseListDTO
// @Failure 401 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /export/responses/all [get]
func (c *ExportController) ListAll(ctx *gin.Context) {
	log.Info().Str("tag", "AUDIT").Msg("Listing all responses")
	responses, err := c.responseService.ListAll(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Export ListAll: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, toListDTO(responses))
}

// Download godoc
// @Summary Fetch one response and mark it downloaded
// @Tags Export
// @Produce json
// @Security ApiKeyAuth
// @Param response_id path string true "Response ID"
// @Success 200 {object} dto.ResponseDTO
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /export/responses/{response_id}/download [get]
func (c *ExportController) Download(ctx *gin.Context) {
	responseID := ctx.Param("response_id")
	log.Info().Str("tag", "AUDIT").Str("responseID", responseID).Msg("Downloading response")

	response, err := c.responseService.MarkDownloaded(ctx.Request.Context(), responseID, "consumer-api")
	if err != nil {
		if errors.Is(err, service.ErrResponseNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Response not found"})
			return
		}
		log.Error().Err(err).Str("responseID", responseID).Msg("Export Download: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// Unmark godoc
// @Summary Reset a response to pending for re-download
// @Tags Export
// @Produce json
// @Security ApiKeyAuth
// @Param response_id path string true "Response ID"
// @Success 204 "Reset"
// @Failure 401 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Router /export/responses/{response_id}/unmark [post]
func (c *ExportController) Unmark(ctx *gin.Context) {
	responseID := ctx.Param("response_id")
	log.Info().Str("tag", "AUDIT").Str("responseID", responseID).Msg("Unmarking response")

	if err := c.responseService.Unmark(ctx.Request.Context(), responseID); err != nil {
		if errors.Is(err, service.ErrResponseNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Response not found"})
			return
		}
		log.Error().Err(err).Str("responseID", responseID).Msg("Export Unmark: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Internal server error"})
		return
	}
	ctx.Status(http.StatusNoContent)
}

func toListDTO(responses []dto.ResponseDTO) dto.ResponseListDTO {
	summaries := make([]dto.ResponseSummaryDTO, 0, len(responses))
	for i := range responses {
		var summary dto.ResponseSummaryDTO
		if err := copier.Copy(&summary, &responses[i]); err != nil {
			log.Error().Err(err).Str("responseID", responses[i].ID).Msg("Failed to map response summary")
			continue
		}
		summaries = append(summaries, summary)
	}
	return dto.ResponseListDTO{Count: len(summaries), Responses: summaries}
}
