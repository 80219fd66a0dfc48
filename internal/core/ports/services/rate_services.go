package services

import (
	"context"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/afripay/conversion_backend/internal/dto"
)

// RateResolverSvc resolves the rate applicable to a currency pair at an instant.
type RateResolverSvc interface {
	// ResolveRate returns the single rate valid at the instant, or
	// apperrors.ErrNotFound when no validity window contains it.
	ResolveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, at time.Time) (*domain.ExchangeRate, error)
}

// RateIngestionSvc accepts new rate windows from the ingestion feed.
type RateIngestionSvc interface {
	// CreateRate validates and persists a new rate window.
	CreateRate(ctx context.Context, req dto.CreateRateRequest, creatorID string) (*domain.ExchangeRate, error)
}

// RateSvcFacade combines rate resolution and ingestion plus lookups.
type RateSvcFacade interface {
	RateResolverSvc
	RateIngestionSvc

	// GetRateByID retrieves a single rate row.
	GetRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// ListRates returns the windows for a pair, newest first.
	ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int) ([]domain.ExchangeRate, error)
}
