package repositories

import (
	"context"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
)

// RateReader defines read operations over the time-windowed rate table.
type RateReader interface {
	// ResolveRate returns the single rate whose validity window contains the
	// instant. Returns apperrors.ErrNotFound when no window covers it and
	// apperrors.ErrDataIntegrity when more than one does (overlap violation).
	ResolveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, at time.Time) (*domain.ExchangeRate, error)

	// FindRateByID retrieves a rate row by its identifier.
	FindRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error)

	// ListRates returns rate rows for a pair ordered by valid_from descending.
	ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int) ([]domain.ExchangeRate, error)
}

// RateWriter defines write operations for rate ingestion.
type RateWriter interface {
	// SaveRate inserts a new rate row after checking that its validity window
	// does not intersect any existing window for the pair. Rows are never
	// updated; supersession means inserting a new window.
	SaveRate(ctx context.Context, rate domain.ExchangeRate) error
}

// RateRepositoryFacade combines all rate repository interfaces.
type RateRepositoryFacade interface {
	RateReader
	RateWriter
}
