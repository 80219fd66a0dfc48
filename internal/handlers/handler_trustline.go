package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/afripay/conversion_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// trustlineHandler handles HTTP requests for trustline operation tracking.
type trustlineHandler struct {
	trustlineService portssvc.TrustlineSvcFacade
}

func newTrustlineHandler(ts portssvc.TrustlineSvcFacade) *trustlineHandler {
	return &trustlineHandler{trustlineService: ts}
}

// registerTrustlineRoutes registers routes related to trustline operations.
func registerTrustlineRoutes(rg *gin.RouterGroup, trustlineService portssvc.TrustlineSvcFacade) {
	h := newTrustlineHandler(trustlineService)

	trustlines := rg.Group("/trustlines")
	{
		trustlines.POST("", h.requestTrustline)
		trustlines.GET("", h.listTrustlineOperations)
		trustlines.GET("/current", h.currentTrustlineState)
		trustlines.GET("/:id", h.getTrustlineOperation)
		trustlines.POST("/:id/status", h.transitionTrustline)
	}
}

// requestTrustline godoc
// @Summary Record a trustline operation
// @Description Tracks the intent to establish, update or remove a trustline. The operation starts in REQUESTED.
// @Tags trustlines
// @Accept  json
// @Produce  json
// @Param   operation body dto.RequestTrustlineRequest true "Operation details"
// @Success 201 {object} dto.TrustlineOperationResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /trustlines [post]
func (h *trustlineHandler) requestTrustline(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.RequestTrustlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RequestTrustline", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	op, err := h.trustlineService.RequestTrustline(c.Request.Context(),
		req.WalletAddress, req.AssetCode, req.AssetIssuer, domain.TrustlineKind(req.Kind), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to record trustline operation")
		return
	}

	logger.Info("Trustline operation recorded", slog.String("operation_id", op.OperationID))
	c.JSON(http.StatusCreated, dto.ToTrustlineOperationResponse(op))
}

// transitionTrustline godoc
// @Summary Transition a trustline operation
// @Description Compare-and-set status update: the transition applies only if the stored status still matches expectedStatus.
// @Tags trustlines
// @Accept  json
// @Produce  json
// @Param   id path string true "Operation ID"
// @Param   transition body dto.TransitionTrustlineRequest true "Expected and next status"
// @Success 200 {object} dto.TrustlineOperationResponse
// @Failure 409 {object} ErrorResponse "Disallowed transition or lost race"
// @Security BearerAuth
// @Router /trustlines/{id}/status [post]
func (h *trustlineHandler) transitionTrustline(c *gin.Context) {
	var req dto.TransitionTrustlineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	op, err := h.trustlineService.TransitionTrustline(c.Request.Context(), c.Param("id"),
		domain.TrustlineStatus(req.ExpectedStatus), domain.TrustlineStatus(req.NextStatus),
		portsrepo.TrustlineUpdate{TransactionHash: req.TransactionHash, ErrorMessage: req.ErrorMessage},
		actorID)
	if err != nil {
		respondWithError(c, err, "Failed to transition trustline operation")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrustlineOperationResponse(op))
}

// getTrustlineOperation godoc
// @Summary Get a trustline operation
// @Tags trustlines
// @Produce  json
// @Param   id path string true "Operation ID"
// @Success 200 {object} dto.TrustlineOperationResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /trustlines/{id} [get]
func (h *trustlineHandler) getTrustlineOperation(c *gin.Context) {
	op, err := h.trustlineService.GetTrustlineOperation(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to get trustline operation")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrustlineOperationResponse(op))
}

// currentTrustlineState godoc
// @Summary Current trustline state for a wallet/asset pair
// @Description Returns the most recent operation recorded for the pair.
// @Tags trustlines
// @Produce  json
// @Param   wallet query string true "Wallet address"
// @Param   asset query string true "Asset code"
// @Success 200 {object} dto.TrustlineOperationResponse
// @Failure 404 {object} ErrorResponse "No history for the pair"
// @Security BearerAuth
// @Router /trustlines/current [get]
func (h *trustlineHandler) currentTrustlineState(c *gin.Context) {
	wallet := c.Query("wallet")
	asset := c.Query("asset")
	if wallet == "" || asset == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "wallet and asset query parameters are required"})
		return
	}

	op, err := h.trustlineService.CurrentTrustlineState(c.Request.Context(), wallet, asset)
	if err != nil {
		respondWithError(c, err, "Failed to resolve trustline state")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrustlineOperationResponse(op))
}

// listTrustlineOperations godoc
// @Summary List a wallet's trustline operations
// @Tags trustlines
// @Produce  json
// @Param   wallet query string true "Wallet address"
// @Param   limit query int false "Max rows (default 50)"
// @Success 200 {array} dto.TrustlineOperationResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /trustlines [get]
func (h *trustlineHandler) listTrustlineOperations(c *gin.Context) {
	wallet := c.Query("wallet")
	if wallet == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "wallet query parameter is required"})
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

	ops, err := h.trustlineService.ListTrustlineOperations(c.Request.Context(), wallet, limit)
	if err != nil {
		respondWithError(c, err, "Failed to list trustline operations")
		return
	}
	c.JSON(http.StatusOK, dto.ToTrustlineOperationResponses(ops))
}
