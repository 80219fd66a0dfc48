package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/afripay/conversion_backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// rateService provides rate resolution and rate-window ingestion.
type rateService struct {
	rateRepo portsrepo.RateRepositoryFacade
}

// NewRateService creates a new rate service.
func NewRateService(rateRepo portsrepo.RateRepositoryFacade) portssvc.RateSvcFacade {
	return &rateService{rateRepo: rateRepo}
}

var _ portssvc.RateSvcFacade = (*rateService)(nil)

// CreateRate validates and persists a new rate window. The repository guards
// the non-overlap invariant inside the insert transaction; validation here
// catches malformed requests before they reach storage.
func (s *rateService) CreateRate(ctx context.Context, req dto.CreateRateRequest, creatorID string) (*domain.ExchangeRate, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.Rate.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: exchange rate must be positive", apperrors.ErrValidation)
	}
	fromCode := strings.ToUpper(req.FromCurrencyCode)
	toCode := strings.ToUpper(req.ToCurrencyCode)
	if fromCode == toCode {
		return nil, fmt.Errorf("%w: from and to currency codes cannot be the same", apperrors.ErrValidation)
	}
	if req.ValidUntil != nil && req.ValidUntil.Before(req.ValidFrom) {
		return nil, fmt.Errorf("%w: validUntil must not precede validFrom", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	rate := domain.ExchangeRate{
		RateID:           uuid.NewString(),
		FromCurrencyCode: fromCode,
		ToCurrencyCode:   toCode,
		Rate:             req.Rate,
		ValidFrom:        req.ValidFrom,
		ValidUntil:       req.ValidUntil,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.rateRepo.SaveRate(ctx, rate); err != nil {
		logger.Error("Failed to save rate window",
			slog.String("from", fromCode), slog.String("to", toCode), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create rate: %w", err)
	}

	logger.Info("Rate window created",
		slog.String("rate_id", rate.RateID), slog.String("from", fromCode), slog.String("to", toCode))
	return &rate, nil
}

// ResolveRate returns the single rate valid at the instant. A detected
// overlap (more than one matching window) is a data-integrity failure and is
// logged with full context before being surfaced.
func (s *rateService) ResolveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, at time.Time) (*domain.ExchangeRate, error) {
	fromCode := strings.ToUpper(fromCurrencyCode)
	toCode := strings.ToUpper(toCurrencyCode)
	if len(fromCode) < 3 || len(fromCode) > 12 || len(toCode) < 3 || len(toCode) > 12 {
		return nil, fmt.Errorf("%w: currency codes must be 3 to 12 letters", apperrors.ErrValidation)
	}

	rate, err := s.rateRepo.ResolveRate(ctx, fromCode, toCode, at)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rate for %s/%s: %w", fromCode, toCode, err)
	}
	return rate, nil
}

// GetRateByID retrieves a single rate row.
func (s *rateService) GetRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	rate, err := s.rateRepo.FindRateByID(ctx, rateID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rate %s: %w", rateID, err)
	}
	return rate, nil
}

// ListRates returns the windows for a pair, newest first.
func (s *rateService) ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int) ([]domain.ExchangeRate, error) {
	if limit <= 0 {
		limit = 50
	}
	rates, err := s.rateRepo.ListRates(ctx, strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates: %w", err)
	}
	return rates, nil
}
