package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/middleware"
	"github.com/google/uuid"
)

type trustlineService struct {
	trustlineRepo portsrepo.TrustlineRepositoryFacade
}

// NewTrustlineService creates a new trustline tracking service.
func NewTrustlineService(trustlineRepo portsrepo.TrustlineRepositoryFacade) portssvc.TrustlineSvcFacade {
	return &trustlineService{trustlineRepo: trustlineRepo}
}

var _ portssvc.TrustlineSvcFacade = (*trustlineService)(nil)

// RequestTrustline records the intent to establish, update or remove a
// trustline. The operation starts in Requested and only moves forward via
// TransitionTrustline once the network submission is observed.
func (s *trustlineService) RequestTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string, kind domain.TrustlineKind, actorID string) (*domain.TrustlineOperation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if walletAddress == "" || assetCode == "" {
		return nil, fmt.Errorf("%w: wallet address and asset code are required", apperrors.ErrValidation)
	}
	if !kind.IsValid() {
		return nil, fmt.Errorf("%w: unknown trustline kind %q", apperrors.ErrValidation, kind)
	}

	now := time.Now().UTC()
	op := domain.TrustlineOperation{
		OperationID:     uuid.NewString(),
		WalletAddress:   walletAddress,
		AssetCode:       assetCode,
		AssetIssuer:     assetIssuer,
		Kind:            kind,
		Status:          domain.TrustlineRequested,
		StatusChangedAt: now,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actorID,
			LastUpdatedAt: now,
			LastUpdatedBy: actorID,
		},
	}

	if err := s.trustlineRepo.CreateTrustlineOperation(ctx, op); err != nil {
		logger.Error("Failed to create trustline operation",
			slog.String("wallet_address", walletAddress),
			slog.String("asset_code", assetCode), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to create trustline operation: %w", err)
	}

	logger.Info("Trustline operation requested",
		slog.String("operation_id", op.OperationID),
		slog.String("wallet_address", walletAddress),
		slog.String("asset_code", assetCode), slog.String("kind", string(kind)))
	return &op, nil
}

// TransitionTrustline advances an operation. Requested -> Submitted ->
// {Confirmed, Failed}; anything else is rejected up front, and the repository
// write is a compare-and-set so a stale expected status loses cleanly.
func (s *trustlineService) TransitionTrustline(ctx context.Context, operationID string, expected, next domain.TrustlineStatus, update portsrepo.TrustlineUpdate, actorID string) (*domain.TrustlineOperation, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !expected.CanTransitionTo(next) {
		logger.Error("Disallowed trustline transition requested",
			slog.String("operation_id", operationID),
			slog.String("from", string(expected)), slog.String("to", string(next)))
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, expected, next)
	}
	if next == domain.TrustlineFailed && update.ErrorMessage == "" {
		return nil, fmt.Errorf("%w: failed status requires an error message", apperrors.ErrValidation)
	}

	updated, err := s.trustlineRepo.UpdateTrustlineStatus(ctx, operationID, expected, next, update, actorID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to transition trustline operation %s: %w", operationID, err)
	}

	logger.Info("Trustline operation transitioned",
		slog.String("operation_id", operationID),
		slog.String("from", string(expected)), slog.String("to", string(next)))
	return updated, nil
}

// GetTrustlineOperation retrieves one operation.
func (s *trustlineService) GetTrustlineOperation(ctx context.Context, operationID string) (*domain.TrustlineOperation, error) {
	op, err := s.trustlineRepo.FindTrustlineOperationByID(ctx, operationID)
	if err != nil {
		return nil, fmt.Errorf("failed to get trustline operation %s: %w", operationID, err)
	}
	return op, nil
}

// CurrentTrustlineState returns the most recent operation for a wallet/asset
// pair. The latest operation is the tracker's view of the trustline.
func (s *trustlineService) CurrentTrustlineState(ctx context.Context, walletAddress, assetCode string) (*domain.TrustlineOperation, error) {
	if walletAddress == "" || assetCode == "" {
		return nil, fmt.Errorf("%w: wallet address and asset code are required", apperrors.ErrValidation)
	}
	op, err := s.trustlineRepo.FindLatestTrustlineOperation(ctx, walletAddress, assetCode)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve trustline state for %s/%s: %w", walletAddress, assetCode, err)
	}
	return op, nil
}

// ListTrustlineOperations returns a wallet's operations, newest first.
func (s *trustlineService) ListTrustlineOperations(ctx context.Context, walletAddress string, limit int) ([]domain.TrustlineOperation, error) {
	if walletAddress == "" {
		return nil, fmt.Errorf("%w: wallet address is required", apperrors.ErrValidation)
	}
	if limit <= 0 {
		limit = 50
	}
	ops, err := s.trustlineRepo.ListTrustlineOperations(ctx, walletAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trustline operations for %s: %w", walletAddress, err)
	}
	return ops, nil
}
