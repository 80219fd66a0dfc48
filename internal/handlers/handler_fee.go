package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/afripay/conversion_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// feeHandler handles HTTP requests related to fee structures.
type feeHandler struct {
	feeService portssvc.FeeSvcFacade
}

func newFeeHandler(fs portssvc.FeeSvcFacade) *feeHandler {
	return &feeHandler{feeService: fs}
}

// registerFeeRoutes registers routes related to fee structures.
func registerFeeRoutes(rg *gin.RouterGroup, feeService portssvc.FeeSvcFacade) {
	h := newFeeHandler(feeService)

	fees := rg.Group("/fees")
	{
		fees.POST("", h.createFeeStructure)
		fees.GET("", h.listFeeStructures)
		fees.POST("/calculate", h.calculateFee)
		fees.POST("/:id/deactivate", h.deactivateFeeStructure)
	}
}

// createFeeStructure godoc
// @Summary Create a fee structure
// @Description Adds a new fee structure (bps + flat, clamped to [min, max]) effective over a window.
// @Tags fees
// @Accept  json
// @Produce  json
// @Param   fee body dto.CreateFeeStructureRequest true "Fee structure"
// @Success 201 {object} dto.FeeStructureResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /fees [post]
func (h *feeHandler) createFeeStructure(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateFeeStructureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateFeeStructure", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	structure, err := h.feeService.CreateFeeStructure(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create fee structure")
		return
	}

	logger.Info("Fee structure created", slog.String("fee_id", structure.FeeID), slog.String("fee_type", string(structure.FeeType)))
	c.JSON(http.StatusCreated, dto.ToFeeStructureResponse(structure))
}

// calculateFee godoc
// @Summary Quote a fee
// @Description Resolves the active structure for the type at the instant and returns the clamped fee.
// @Tags fees
// @Accept  json
// @Produce  json
// @Param   quote body dto.CalculateFeeRequest true "Amount and fee type"
// @Success 200 {object} dto.FeeQuoteResponse
// @Failure 404 {object} ErrorResponse "No active structure covers the instant"
// @Security BearerAuth
// @Router /fees/calculate [post]
func (h *feeHandler) calculateFee(c *gin.Context) {
	var req dto.CalculateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	at := time.Now().UTC()
	if req.At != nil {
		at = *req.At
	}

	quote, err := h.feeService.CalculateFee(c.Request.Context(), domain.FeeType(req.FeeType), req.Amount, at)
	if err != nil {
		respondWithError(c, err, "Failed to calculate fee")
		return
	}
	c.JSON(http.StatusOK, dto.ToFeeQuoteResponse(quote))
}

// deactivateFeeStructure godoc
// @Summary Deactivate a fee structure
// @Tags fees
// @Produce  json
// @Param   id path string true "Fee structure ID"
// @Success 200 {object} dto.FeeStructureResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /fees/{id}/deactivate [post]
func (h *feeHandler) deactivateFeeStructure(c *gin.Context) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	structure, err := h.feeService.DeactivateFeeStructure(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to deactivate fee structure")
		return
	}
	c.JSON(http.StatusOK, dto.ToFeeStructureResponse(structure))
}

// listFeeStructures godoc
// @Summary List fee structures of a type
// @Tags fees
// @Produce  json
// @Param   type query string true "Fee type"
// @Param   limit query int false "Max rows (default 50)"
// @Success 200 {array} dto.FeeStructureResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /fees [get]
func (h *feeHandler) listFeeStructures(c *gin.Context) {
	feeType := domain.FeeType(c.Query("type"))
	if !feeType.IsValid() {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown fee type: " + c.Query("type")})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	structures, err := h.feeService.ListFeeStructures(c.Request.Context(), feeType, limit)
	if err != nil {
		respondWithError(c, err, "Failed to list fee structures")
		return
	}
	c.JSON(http.StatusOK, dto.ToFeeStructureResponses(structures))
}
