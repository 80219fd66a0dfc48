package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/afripay/conversion_backend/internal/middleware"
	"github.com/gin-gonic/gin"
)

// conversionHandler handles HTTP requests for the conversion lifecycle.
type conversionHandler struct {
	conversionService portssvc.ConversionSvcFacade
	ledgerService     portssvc.AuditLedgerSvcFacade
}

func newConversionHandler(cs portssvc.ConversionSvcFacade, ls portssvc.AuditLedgerSvcFacade) *conversionHandler {
	return &conversionHandler{
		conversionService: cs,
		ledgerService:     ls,
	}
}

// RegisterConversionRoutes registers routes related to conversions.
func RegisterConversionRoutes(rg *gin.RouterGroup, conversionService portssvc.ConversionSvcFacade, ledgerService portssvc.AuditLedgerSvcFacade) {
	h := newConversionHandler(conversionService, ledgerService)

	conversions := rg.Group("/conversions")
	{
		conversions.POST("", h.startConversion)
		conversions.GET("", h.listConversions)
		conversions.POST("/expire", h.expireOverdue)
		conversions.GET("/:id", h.getConversion)
		conversions.POST("/:id/submitted", h.markSubmitted)
		conversions.POST("/:id/settled", h.completeSettlement)
		conversions.POST("/:id/fail", h.failConversion)
		conversions.POST("/:id/resume", h.resumeConversion)
	}
}

// startConversion godoc
// @Summary Start a conversion
// @Description Resolves rate and fee, opens the audit record and locks the rate or parks the conversion behind a trustline. Repeating an idempotency key returns the original record with 200.
// @Tags conversions
// @Accept  json
// @Produce  json
// @Param   conversion body dto.StartConversionRequest true "Conversion details"
// @Success 201 {object} dto.ConversionResponse
// @Success 200 {object} dto.ConversionResponse "Idempotency key already used"
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "No rate or fee structure covers the instant"
// @Security BearerAuth
// @Router /conversions [post]
func (h *conversionHandler) startConversion(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.StartConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for StartConversion", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		logger.Error("Actor ID not found in context")
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	record, err := h.conversionService.StartConversion(c.Request.Context(), req, actorID)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) && record != nil {
			c.JSON(http.StatusOK, dto.ToConversionResponse(record, time.Now().UTC()))
			return
		}
		respondWithError(c, err, "Failed to start conversion")
		return
	}

	logger.Info("Conversion started", slog.String("conversion_id", record.ConversionID), slog.String("status", string(record.Status)))
	c.JSON(http.StatusCreated, dto.ToConversionResponse(record, time.Now().UTC()))
}

// getConversion godoc
// @Summary Get a conversion
// @Description Retrieves one audit record; in-flight records include elapsed seconds.
// @Tags conversions
// @Produce  json
// @Param   id path string true "Conversion ID"
// @Success 200 {object} dto.ConversionResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /conversions/{id} [get]
func (h *conversionHandler) getConversion(c *gin.Context) {
	record, err := h.ledgerService.GetConversion(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err, "Failed to get conversion")
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(record, time.Now().UTC()))
}

// listConversions godoc
// @Summary Query the conversion ledger
// @Description Lists audit records newest first, filtered and keyset-paginated.
// @Tags conversions
// @Produce  json
// @Param   userID query string false "Filter by user"
// @Param   walletAddress query string false "Filter by wallet"
// @Param   status query string false "Filter by status"
// @Param   createdAfter query string false "RFC3339 lower bound"
// @Param   createdBefore query string false "RFC3339 upper bound"
// @Param   limit query int false "Page size (default 50)"
// @Param   pageToken query string false "Keyset token from previous page"
// @Success 200 {object} dto.ListConversionsResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /conversions [get]
func (h *conversionHandler) listConversions(c *gin.Context) {
	var req dto.ListConversionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query parameters: " + err.Error()})
		return
	}

	if req.Status != "" && !isKnownConversionStatus(req.Status) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unknown status filter: " + req.Status})
		return
	}

	filter := portsrepo.ConversionFilter{
		UserID:        req.UserID,
		WalletAddress: req.WalletAddress,
		Status:        domain.ConversionStatus(req.Status),
		CreatedAfter:  req.CreatedAfter,
		CreatedBefore: req.CreatedBefore,
	}

	records, nextToken, err := h.ledgerService.ListConversions(c.Request.Context(), filter, req.Limit, req.PageToken)
	if err != nil {
		respondWithError(c, err, "Failed to list conversions")
		return
	}

	c.JSON(http.StatusOK, dto.ListConversionsResponse{
		Conversions:   dto.ToConversionResponses(records, time.Now().UTC()),
		NextPageToken: nextToken,
	})
}

// markSubmitted godoc
// @Summary Record settlement submission
// @Description Settlement callback: RateLocked -> Settling with the blockchain transaction reference.
// @Tags conversions
// @Accept  json
// @Produce  json
// @Param   id path string true "Conversion ID"
// @Param   submission body dto.MarkSubmittedRequest true "Transaction reference"
// @Success 200 {object} dto.ConversionResponse
// @Failure 409 {object} ErrorResponse "Not in RateLocked"
// @Security BearerAuth
// @Router /conversions/{id}/submitted [post]
func (h *conversionHandler) markSubmitted(c *gin.Context) {
	var req dto.MarkSubmittedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	record, err := h.conversionService.MarkSubmitted(c.Request.Context(), c.Param("id"), req.TransactionRef, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to mark conversion submitted")
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(record, time.Now().UTC()))
}

// completeSettlement godoc
// @Summary Record settlement confirmation
// @Description Settlement callback: Settling -> Completed.
// @Tags conversions
// @Produce  json
// @Param   id path string true "Conversion ID"
// @Success 200 {object} dto.ConversionResponse
// @Failure 409 {object} ErrorResponse "Not in Settling"
// @Security BearerAuth
// @Router /conversions/{id}/settled [post]
func (h *conversionHandler) completeSettlement(c *gin.Context) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	record, err := h.conversionService.CompleteSettlement(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to complete settlement")
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(record, time.Now().UTC()))
}

// failConversion godoc
// @Summary Fail a conversion
// @Description Drives a non-terminal conversion to Failed with the given reason.
// @Tags conversions
// @Accept  json
// @Produce  json
// @Param   id path string true "Conversion ID"
// @Param   failure body dto.FailConversionRequest true "Failure reason and detail"
// @Success 200 {object} dto.ConversionResponse
// @Failure 409 {object} ErrorResponse "Already terminal"
// @Security BearerAuth
// @Router /conversions/{id}/fail [post]
func (h *conversionHandler) failConversion(c *gin.Context) {
	var req dto.FailConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request format: " + err.Error()})
		return
	}

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	record, err := h.conversionService.FailConversion(c.Request.Context(), c.Param("id"), domain.FailureReason(req.Reason), req.Detail, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to fail conversion")
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(record, time.Now().UTC()))
}

// resumeConversion godoc
// @Summary Resume a parked conversion
// @Description Re-checks an AwaitingTrustline conversion: locks the rate when the trustline confirmed, or fails it.
// @Tags conversions
// @Produce  json
// @Param   id path string true "Conversion ID"
// @Success 200 {object} dto.ConversionResponse
// @Failure 400 {object} ErrorResponse "Trustline still pending"
// @Failure 409 {object} ErrorResponse "Not in AwaitingTrustline"
// @Security BearerAuth
// @Router /conversions/{id}/resume [post]
func (h *conversionHandler) resumeConversion(c *gin.Context) {
	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	record, err := h.conversionService.ResumeAfterTrustline(c.Request.Context(), c.Param("id"), actorID)
	if err != nil {
		respondWithError(c, err, "Failed to resume conversion")
		return
	}
	c.JSON(http.StatusOK, dto.ToConversionResponse(record, time.Now().UTC()))
}

// expireOverdue godoc
// @Summary Expire overdue conversions
// @Description Poller hook: fails every non-terminal conversion past its deadline with Timeout.
// @Tags conversions
// @Produce  json
// @Param   limit query int false "Max records to sweep (default 100)"
// @Success 200 {object} map[string]int
// @Security BearerAuth
// @Router /conversions/expire [post]
func (h *conversionHandler) expireOverdue(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	actorID, ok := middleware.GetActorIDFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Unauthorized"})
		return
	}

	limit := 100
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = parsed
	}

	expired, err := h.conversionService.ExpireOverdue(c.Request.Context(), limit, actorID)
	if err != nil {
		respondWithError(c, err, "Failed to expire overdue conversions")
		return
	}

	logger.Info("Expiry sweep finished", slog.Int("expired", expired))
	c.JSON(http.StatusOK, gin.H{"expired": expired})
}

func isKnownConversionStatus(s string) bool {
	switch domain.ConversionStatus(s) {
	case domain.ConversionPending, domain.ConversionAwaitingTrustline, domain.ConversionRateLocked,
		domain.ConversionSettling, domain.ConversionCompleted, domain.ConversionFailed:
		return true
	}
	return false
}
