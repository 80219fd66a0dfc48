package handlers

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/afripay/conversion_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// rateHandler handles HTTP requests related to rate windows.
type rateHandler struct {
	rateService portssvc.RateSvcFacade
}

func newRateHandler(rs portssvc.RateSvcFacade) *rateHandler {
	return &rateHandler{rateService: rs}
}

// registerRateRoutes registers routes related to exchange rates.
func registerRateRoutes(rg *gin.RouterGroup, rateService portssvc.RateSvcFacade) {
	h := newRateHandler(rateService)

	rates := rg.Group("/rates")
	{
		rates.POST("", h.createRate)
		rates.GET("", h.listRates)
		rates.GET("/resolve", h.resolveRate)
		rates.GET("/:id", h.getRate)
	}
}

// createRate godoc
// @Summary Ingest a rate window
// @Description Adds a new exchange rate window for a currency pair. Windows for a pair must not intersect.
// @Tags rates
// @Accept  json
// @Produce  json
// @Param   rate body dto.CreateRateRequest true "Rate window"
// @Success 201 {object} dto.RateResponse
// @Failure 400 {object} ErrorResponse "Invalid payload or intersecting window"
// @Security BearerAuth
// @Router /rates [post]
func (h *rateHandler) createRate(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateRate", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	rate, err := h.rateService.CreateRate(c.Request.Context(), req, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to create rate")
		return
	}

	logger.Info("Rate window created", slog.String("rate_id", rate.RateID),
		slog.String("from", rate.FromCurrencyCode), slog.String("to", rate.ToCurrencyCode))
	c.JSON(http.StatusCreated, dto.ToRateResponse(rate))
}

// resolveRate godoc
// @Summary Resolve the rate at an instant
// @Description Returns the single rate whose validity window contains the instant (default now).
// @Tags rates
// @Produce  json
// @Param   from query string true "From currency code"
// @Param   to query string true "To currency code"
// @Param   at query string false "RFC3339 instant, defaults to now"
// @Success 200 {object} dto.RateResponse
// @Failure 404 {object} ErrorResponse "No window covers the instant"
// @Failure 500 {object} ErrorResponse "Overlapping windows detected"
// @Security BearerAuth
// @Router /rates/resolve [get]
func (h *rateHandler) resolveRate(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from and to query parameters are required"})
		return
	}

	at := time.Now().UTC()
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "at must be RFC3339"})
			return
		}
		at = parsed
	}

	rate, err := h.rateService.ResolveRate(c.Request.Context(), from, to, at)
	if err != nil {
		respondWithError(c, err, "Failed to resolve rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponse(rate))
}

// getRate godoc
// @Summary Get a rate window
// @Tags rates
// @Produce  json
// @Param   id path string true "Rate ID"
// @Success 200 {object} dto.RateResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /rates/{id} [get]
func (h *rateHandler) getRate(c *gin.Context) {
	rate, err := h.rateService.GetRateByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to get rate")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponse(rate))
}

// listRates godoc
// @Summary List rate windows for a pair
// @Tags rates
// @Produce  json
// @Param   from query string true "From currency code"
// @Param   to query string true "To currency code"
// @Param   limit query int false "Max rows (default 50)"
// @Success 200 {array} dto.RateResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /rates [get]
func (h *rateHandler) listRates(c *gin.Context) {
	from := c.Query("from")
	to := c.Query("to")
	if from == "" || to == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "from and to query parameters are required"})
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

	rates, err := h.rateService.ListRates(c.Request.Context(), from, to, limit)
	if err != nil {
		respondWithError(c, err, "Failed to list rates")
		return
	}
	c.JSON(http.StatusOK, dto.ToRateResponses(rates))
}
