package repositories

import (
	"context"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
)

// FeeReader defines read operations over fee structures.
type FeeReader interface {
	// FindActiveFeeStructure returns the active structure for the type whose
	// effective window contains the instant. Overlapping windows tie-break to
	// the highest effective_from, then the latest created_at. Returns
	// apperrors.ErrNotFound when nothing covers the instant.
	FindActiveFeeStructure(ctx context.Context, feeType domain.FeeType, at time.Time) (*domain.FeeStructure, error)

	// FindFeeStructureByID retrieves a structure by its identifier.
	FindFeeStructureByID(ctx context.Context, feeID string) (*domain.FeeStructure, error)

	// ListFeeStructures returns structures of a type ordered by effective_from descending.
	ListFeeStructures(ctx context.Context, feeType domain.FeeType, limit int) ([]domain.FeeStructure, error)
}

// FeeWriter defines write operations for fee structure management.
type FeeWriter interface {
	// SaveFeeStructure inserts a new structure.
	SaveFeeStructure(ctx context.Context, structure domain.FeeStructure) error

	// DeactivateFeeStructure flags a structure inactive. Returns the updated row.
	DeactivateFeeStructure(ctx context.Context, feeID string, updaterID string, at time.Time) (*domain.FeeStructure, error)
}

// FeeRepositoryFacade combines all fee repository interfaces.
type FeeRepositoryFacade interface {
	FeeReader
	FeeWriter
}
