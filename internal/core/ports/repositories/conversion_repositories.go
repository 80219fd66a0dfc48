package repositories

import (
	"context"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
)

// ConversionFilter narrows ListConversions. Zero values mean "any".
type ConversionFilter struct {
	UserID        string
	WalletAddress string
	Status        domain.ConversionStatus
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
}

// TransitionDetail carries the optional fields a status transition may set.
type TransitionDetail struct {
	FailureReason  *domain.FailureReason
	FailureDetail  string
	TransactionRef *string
	TrustlineOpID  *string
}

// ConversionAuditReader defines read operations over the audit ledger.
type ConversionAuditReader interface {
	// FindConversionByID retrieves one audit record.
	FindConversionByID(ctx context.Context, conversionID string) (*domain.ConversionAudit, error)

	// FindConversionByIdempotencyKey retrieves the record opened under a key.
	FindConversionByIdempotencyKey(ctx context.Context, key string) (*domain.ConversionAudit, error)

	// ListConversions returns records matching the filter ordered by
	// created_at descending, restartable via the keyset token. Returns the
	// page and the token for the next page ("" when exhausted).
	ListConversions(ctx context.Context, filter ConversionFilter, limit int, pageToken string) ([]domain.ConversionAudit, string, error)

	// ListOverdueConversions returns non-terminal records whose deadline has
	// passed, oldest first.
	ListOverdueConversions(ctx context.Context, now time.Time, limit int) ([]domain.ConversionAudit, error)
}

// ConversionAuditWriter defines the two durable writes of the ledger.
type ConversionAuditWriter interface {
	// CreateConversion atomically inserts the record if its idempotency key is
	// absent. On a key hit nothing is written and the existing record is
	// returned together with apperrors.ErrDuplicate.
	CreateConversion(ctx context.Context, audit domain.ConversionAudit) (*domain.ConversionAudit, error)

	// UpdateConversionStatus compare-and-sets the status: the update applies
	// only while the stored status still equals expected. Zero rows updated
	// maps to apperrors.ErrNotFound for an unknown id, otherwise
	// apperrors.ErrConcurrentModification.
	UpdateConversionStatus(ctx context.Context, conversionID string, expected, next domain.ConversionStatus, detail TransitionDetail, updaterID string, at time.Time) (*domain.ConversionAudit, error)
}

// ConversionAuditRepositoryFacade combines all audit repository interfaces.
type ConversionAuditRepositoryFacade interface {
	ConversionAuditReader
	ConversionAuditWriter
}
