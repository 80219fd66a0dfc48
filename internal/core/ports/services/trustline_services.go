package services

import (
	"context"

	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
)

// TrustlineSvcFacade tracks the lifecycle of trustline operations. It records
// intent and observed outcome only; network submission is the blockchain
// client's job.
type TrustlineSvcFacade interface {
	// RequestTrustline creates an operation in Requested status.
	RequestTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string, kind domain.TrustlineKind, actorID string) (*domain.TrustlineOperation, error)

	// TransitionTrustline advances an operation with the same compare-and-set
	// discipline as the audit ledger.
	TransitionTrustline(ctx context.Context, operationID string, expected, next domain.TrustlineStatus, update portsrepo.TrustlineUpdate, actorID string) (*domain.TrustlineOperation, error)

	// GetTrustlineOperation retrieves one operation.
	GetTrustlineOperation(ctx context.Context, operationID string) (*domain.TrustlineOperation, error)

	// CurrentTrustlineState returns the latest operation for a wallet/asset
	// pair, or apperrors.ErrNotFound when the pair has no history.
	CurrentTrustlineState(ctx context.Context, walletAddress, assetCode string) (*domain.TrustlineOperation, error)

	// ListTrustlineOperations returns a wallet's operations, newest first.
	ListTrustlineOperations(ctx context.Context, walletAddress string, limit int) ([]domain.TrustlineOperation, error)
}
