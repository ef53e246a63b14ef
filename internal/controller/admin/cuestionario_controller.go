package admin

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mparedes/cuestionario-api/internal/dto"
	"github.com/mparedes/cuestionario-api/internal/service"
	"github.com/rs/zerolog/log"
)

type CuestionarioController struct {
	cuestionarioService service.CuestionarioService
}

func NewCuestionarioController(cuestionarioService service.CuestionarioService) *CuestionarioController {
	return &CuestionarioController{cuestionarioService: cuestionarioService}
}

// CreateCuestionario godoc
// @Summary (Admin) Upload a cuestionario definition
// @Description Validates the uploaded JSON document structurally and stores it as a definition. All field-scoped validation errors are returned at once.
// @Tags Admin - Cuestionarios
// @Accept json
// @Produce json
// @Success 201 {object} dto.CuestionarioDTO
// @Failure 400 {object} dto.ErrorResponse "Document failed structural validation"
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/cuestionarios [post]
func (c *CuestionarioController) CreateCuestionario(ctx *gin.Context) {
	raw, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Unable to read request body"})
		return
	}

	cuestionario, err := c.cuestionarioService.Create(ctx.Request.Context(), raw)
	if err != nil {
		var invalid *service.InvalidCuestionarioError
		if errors.As(err, &invalid) {
			details := make([]string, 0, len(invalid.Errors))
			for _, e := range invalid.Errors {
				details = append(details, e.Field+": "+e.Message)
			}
			ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Cuestionario inválido", Details: details})
			return
		}
		log.Error().Err(err).Msg("Admin CreateCuestionario: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to create cuestionario", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusCreated, cuestionario)
}

// ListCuestionarios godoc
// @Summary (Admin) List cuestionario definitions
// @Tags Admin - Cuestionarios
// @Produce json
// @Success 200 {array} dto.CuestionarioSummaryDTO
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/cuestionarios [get]
func (c *CuestionarioController) ListCuestionarios(ctx *gin.Context) {
	cuestionarios, err := c.cuestionarioService.List(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("Admin ListCuestionarios: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to list cuestionarios", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, cuestionarios)
}

// GetCuestionario godoc
// @Summary (Admin) Get a cuestionario definition
// @Tags Admin - Cuestionarios
// @Produce json
// @Param cuestionario_id path string true "Cuestionario ID"
// @Success 200 {object} dto.CuestionarioDTO
// @Failure 404 {object} dto.ErrorResponse
// @Router /admin/cuestionarios/{cuestionario_id} [get]
func (c *CuestionarioController) GetCuestionario(ctx *gin.Context) {
	cuestionario, err := c.cuestionarioService.Get(ctx.Request.Context(), ctx.Param("cuestionario_id"))
	if err != nil {
		if errors.Is(err, service.ErrCuestionarioNotFound) {
			ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Cuestionario not found"})
			return
		}
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to fetch cuestionario", Details: []string{err.Error()}})
		return
	}
	ctx.JSON(http.StatusOK, cuestionario)
}

// UpdateCuestionarioStatus godoc
// @Summary (Admin) Change a definition's lifecycle status
// @Description Moves a definition between draft, active and archived. Activating a definition archives the currently active one.
// @Tags Admin - Cuestionarios
// @Accept json
// @Produce json
// @Param cuestionario_id path string true "Cuestionario ID"
// @Param status_data body dto.CuestionarioStatusUpdateDTO true "New status"
// @Success 204 "Status updated"
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/cuestionarios/{cuestionario_id}/status [put]
func (c *CuestionarioController) UpdateCuestionarioStatus(ctx *gin.Context) {
	var req dto.CuestionarioStatusUpdateDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, dto.ErrorResponse{Message: "Invalid request body", Details: []string{err.Error()}})
		return
	}

	err := c.cuestionarioService.UpdateStatus(ctx.Request.Context(), ctx.Param("cuestionario_id"), req.Status)
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrCuestionarioNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Cuestionario not found"})
	default:
		log.Error().Err(err).Msg("Admin UpdateCuestionarioStatus: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to update status", Details: []string{err.Error()}})
	}
}

// DeleteCuestionario godoc
// @Summary (Admin) Delete a cuestionario definition
// @Tags Admin - Cuestionarios
// @Produce json
// @Param cuestionario_id path string true "Cuestionario ID"
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /admin/cuestionarios/{cuestionario_id} [delete]
func (c *CuestionarioController) DeleteCuestionario(ctx *gin.Context) {
	err := c.cuestionarioService.Delete(ctx.Request.Context(), ctx.Param("cuestionario_id"))
	switch {
	case err == nil:
		ctx.Status(http.StatusNoContent)
	case errors.Is(err, service.ErrCuestionarioNotFound):
		ctx.JSON(http.StatusNotFound, dto.ErrorResponse{Message: "Cuestionario not found"})
	default:
		log.Error().Err(err).Msg("Admin DeleteCuestionario: Service error")
		ctx.JSON(http.StatusInternalServerError, dto.ErrorResponse{Message: "Failed to delete cuestionario", Details: []string{err.Error()}})
	}
}
