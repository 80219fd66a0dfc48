package repositories

import (
	"context"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
)

// TrustlineUpdate carries the optional fields a trustline transition may set.
type TrustlineUpdate struct {
	TransactionHash *string
	ErrorMessage    string
}

// TrustlineReader defines read operations over trustline operations.
type TrustlineReader interface {
	// FindTrustlineOperationByID retrieves one operation.
	FindTrustlineOperationByID(ctx context.Context, operationID string) (*domain.TrustlineOperation, error)

	// FindLatestTrustlineOperation returns the most recent operation for a
	// wallet/asset pair, or apperrors.ErrNotFound when none exists.
	FindLatestTrustlineOperation(ctx context.Context, walletAddress, assetCode string) (*domain.TrustlineOperation, error)

	// ListTrustlineOperations returns operations for a wallet ordered by
	// created_at descending.
	ListTrustlineOperations(ctx context.Context, walletAddress string, limit int) ([]domain.TrustlineOperation, error)
}

// TrustlineWriter defines write operations for trustline tracking.
type TrustlineWriter interface {
	// CreateTrustlineOperation inserts a new operation in Requested status.
	CreateTrustlineOperation(ctx context.Context, op domain.TrustlineOperation) error

	// UpdateTrustlineStatus compare-and-sets the status with the same
	// discipline as the audit ledger.
	UpdateTrustlineStatus(ctx context.Context, operationID string, expected, next domain.TrustlineStatus, update TrustlineUpdate, updaterID string, at time.Time) (*domain.TrustlineOperation, error)
}

// TrustlineRepositoryFacade combines all trustline repository interfaces.
type TrustlineRepositoryFacade interface {
	TrustlineReader
	TrustlineWriter
}
