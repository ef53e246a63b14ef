package admin

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/service"
	"github.com/rs/zerolog/log"
)

type ResponseController struct {
	responseService service.ResponseService
}

func NewResponseController(responseService service.ResponseService) *ResponseController {
	return &ResponseController{responseService: responseService}
}

// ListResponses godoc
// @Summary (Admin) List submitted responses
// @Description Lists all responses, or only those administered by a given admin when administered_by is set.
// @Tags Admin - Responses
// @Produce json
// @Param administered_by query string false "Filter by administrator email"
// @Success 200 {array} dto.ResponseDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/responses [get]
func (c *ResponseController) ListResponses(ctx *gin.Context) {
	var (
		responses []dto.ResponseDTO
		err       error
	)
	if email := ctx.Query("administered_by"); email != "" {
		responses, err = c.responseService.ListByAdministrator(ctx.Request.Context(), email)
	} else {
		responses, err = c.responseService.ListAll(ctx.Request.Context())
	}
	if err != nil {
		log.Error().Err(err).Msg("Admin ListResponses: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list responses", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, responses)
}

// GetResponse godoc
// @Summary (Admin) Get one response with its enriched answers
// @Tags Admin - Responses
// @Produce json
// @Param response_id path string true "Response ID"
// @Success 200 {object} dto.ResponseDTO
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/responses/{response_id} [get]
func (c *ResponseController) GetResponse(ctx *gin.Context) {
	response, err := c.responseService.Get(ctx.Request.Context(), ctx.Param("response_id"))
	if err != nil {
		if errors.Is(err, service.ErrResponseNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Response not found"})
			return
		}
		log.Error().Err(err).Msg("Admin GetResponse: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch response", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, response)
}
