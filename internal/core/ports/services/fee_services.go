package services

import (
	"context"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/shopspring/decimal"
)

// FeeResolverSvc computes the fee applicable to a conversion at an instant.
type FeeResolverSvc interface {
	// CalculateFee resolves the active structure for the type at the instant
	// and returns the clamped fee. apperrors.ErrNotFound when no active
	// structure covers the instant.
	CalculateFee(ctx context.Context, feeType domain.FeeType, amount decimal.Decimal, at time.Time) (*domain.FeeQuote, error)
}

// FeeSvcFacade combines fee resolution with structure management.
type FeeSvcFacade interface {
	FeeResolverSvc

	// CreateFeeStructure validates and persists a new structure.
	CreateFeeStructure(ctx context.Context, req dto.CreateFeeStructureRequest, creatorID string) (*domain.FeeStructure, error)

	// DeactivateFeeStructure flags a structure inactive.
	DeactivateFeeStructure(ctx context.Context, feeID string, updaterID string) (*domain.FeeStructure, error)

	// ListFeeStructures returns structures of a type, newest window first.
	ListFeeStructures(ctx context.Context, feeType domain.FeeType, limit int) ([]domain.FeeStructure, error)
}
