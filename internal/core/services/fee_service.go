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

// feeService provides fee structure management and fee calculation.
type feeService struct {
	feeRepo portsrepo.FeeRepositoryFacade
}

// NewFeeService creates a new fee service.
func NewFeeService(feeRepo portsrepo.FeeRepositoryFacade) portssvc.FeeSvcFacade {
	return &feeService{feeRepo: feeRepo}
}

var _ portssvc.FeeSvcFacade = (*feeService)(nil)

// CreateFeeStructure validates and persists a new structure.
func (s *feeService) CreateFeeStructure(ctx context.Context, req dto.CreateFeeStructureRequest, creatorID string) (*domain.FeeStructure, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	feeType := domain.FeeType(strings.ToLower(req.FeeType))
	if !feeType.IsValid() {
		return nil, fmt.Errorf("%w: unknown fee type '%s'", apperrors.ErrValidation, req.FeeType)
	}
	if req.RateBps < 0 {
		return nil, fmt.Errorf("%w: rateBps cannot be negative", apperrors.ErrValidation)
	}
	if req.FlatFee.IsNegative() {
		return nil, fmt.Errorf("%w: flat fee cannot be negative", apperrors.ErrValidation)
	}
	if req.MinFee != nil && req.MaxFee != nil && req.MinFee.GreaterThan(*req.MaxFee) {
		return nil, fmt.Errorf("%w: minFee must not exceed maxFee", apperrors.ErrValidation)
	}
	if req.EffectiveUntil != nil && req.EffectiveUntil.Before(req.EffectiveFrom) {
		return nil, fmt.Errorf("%w: effectiveUntil must not precede effectiveFrom", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	structure := domain.FeeStructure{
		FeeID:          uuid.NewString(),
		FeeType:        feeType,
		RateBps:        req.RateBps,
		FlatFee:        req.FlatFee,
		MinFee:         req.MinFee,
		MaxFee:         req.MaxFee,
		CurrencyCode:   strings.ToUpper(req.CurrencyCode),
		IsActive:       true,
		EffectiveFrom:  req.EffectiveFrom,
		EffectiveUntil: req.EffectiveUntil,
		Metadata:       req.Metadata,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorID,
		},
	}

	if err := s.feeRepo.SaveFeeStructure(ctx, structure); err != nil {
		logger.Error("Failed to save fee structure",
			slog.String("fee_type", string(feeType)), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create fee structure: %w", err)
	}

	logger.Info("Fee structure created",
		slog.String("fee_id", structure.FeeID), slog.String("fee_type", string(feeType)))
	return &structure, nil
}

// CalculateFee resolves the active structure covering the instant and
// computes the clamped fee. Pure read; safe to call concurrently.
func (s *feeService) CalculateFee(ctx context.Context, feeType domain.FeeType, amount decimal.Decimal, at time.Time) (*domain.FeeQuote, error) {
	if !feeType.IsValid() {
		return nil, fmt.Errorf("%w: unknown fee type '%s'", apperrors.ErrValidation, feeType)
	}
	if amount.IsNegative() {
		return nil, fmt.Errorf("%w: amount cannot be negative", apperrors.ErrValidation)
	}

	structure, err := s.feeRepo.FindActiveFeeStructure(ctx, feeType, at)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve fee structure for %s: %w", feeType, err)
	}

	return &domain.FeeQuote{
		Fee:          structure.ComputeFee(amount),
		RateBps:      structure.RateBps,
		FlatFee:      structure.FlatFee,
		MinFee:       structure.MinFee,
		MaxFee:       structure.MaxFee,
		CurrencyCode: structure.CurrencyCode,
		FeeID:        structure.FeeID,
	}, nil
}

// DeactivateFeeStructure flags a structure inactive.
func (s *feeService) DeactivateFeeStructure(ctx context.Context, feeID string, updaterID string) (*domain.FeeStructure, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if _, err := uuid.Parse(feeID); err != nil {
		return nil, fmt.Errorf("%w: invalid fee structure id", apperrors.ErrValidation)
	}

	structure, err := s.feeRepo.DeactivateFeeStructure(ctx, feeID, updaterID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to deactivate fee structure %s: %w", feeID, err)
	}

	logger.Info("Fee structure deactivated", slog.String("fee_id", feeID))
	return structure, nil
}

// ListFeeStructures returns structures of a type, newest window first.
func (s *feeService) ListFeeStructures(ctx context.Context, feeType domain.FeeType, limit int) ([]domain.FeeStructure, error) {
	if !feeType.IsValid() {
		return nil, fmt.Errorf("%w: unknown fee type '%s'", apperrors.ErrValidation, feeType)
	}
	if limit <= 0 {
		limit = 50
	}
	structures, err := s.feeRepo.ListFeeStructures(ctx, feeType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list fee structures: %w", err)
	}
	return structures, nil
}
