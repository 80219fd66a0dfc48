package services

import (
	"context"
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	"github.com/afripay/conversion_backend/internal/dto"
)

// AuditLedgerSvcFacade is the append-only ledger of conversion attempts.
// Every open and transition is a durable atomic write; terminal records are
// never mutated.
type AuditLedgerSvcFacade interface {
	// OpenConversion creates a record in Pending status with the resolved
	// rate and fee snapshots already set by the caller. On an idempotency-key
	// hit the record opened first is returned with apperrors.ErrDuplicate.
	OpenConversion(ctx context.Context, audit domain.ConversionAudit) (*domain.ConversionAudit, error)

	// TransitionConversion advances a record through the state machine with a
	// compare-and-set against the expected current status.
	TransitionConversion(ctx context.Context, conversionID string, expected, next domain.ConversionStatus, detail portsrepo.TransitionDetail, actorID string) (*domain.ConversionAudit, error)

	// GetConversion retrieves one record.
	GetConversion(ctx context.Context, conversionID string) (*domain.ConversionAudit, error)

	// ListConversions queries the ledger for reporting; ordered created_at
	// descending and restartable via the returned page token.
	ListConversions(ctx context.Context, filter portsrepo.ConversionFilter, limit int, pageToken string) ([]domain.ConversionAudit, string, error)

	// ListOverdueConversions returns non-terminal records past their deadline.
	ListOverdueConversions(ctx context.Context, now time.Time, limit int) ([]domain.ConversionAudit, error)
}

// ConversionSvcFacade is the orchestrator: it composes rate and fee
// resolution, the audit ledger, the trustline tracker and the blockchain
// client to drive a conversion to a terminal state.
type ConversionSvcFacade interface {
	// StartConversion resolves rate and fee, opens the audit record, handles
	// the trustline requirement per the configured policy and locks the rate.
	// A duplicate idempotency key returns the existing record, not an error
	// for the end user.
	StartConversion(ctx context.Context, req dto.StartConversionRequest, actorID string) (*domain.ConversionAudit, error)

	// MarkSubmitted records the blockchain submission: RateLocked -> Settling.
	MarkSubmitted(ctx context.Context, conversionID, transactionRef, actorID string) (*domain.ConversionAudit, error)

	// CompleteSettlement records confirmation: Settling -> Completed.
	CompleteSettlement(ctx context.Context, conversionID, actorID string) (*domain.ConversionAudit, error)

	// FailConversion drives a non-terminal record to Failed with a reason.
	FailConversion(ctx context.Context, conversionID string, reason domain.FailureReason, detail string, actorID string) (*domain.ConversionAudit, error)

	// ResumeAfterTrustline re-checks a record parked in AwaitingTrustline once
	// its trustline operation has reached a terminal state, locking the rate
	// or failing with TrustlineDenied / RateExpired.
	ResumeAfterTrustline(ctx context.Context, conversionID, actorID string) (*domain.ConversionAudit, error)

	// ExpireOverdue drives non-terminal records past their deadline to
	// Failed(Timeout). Invoked by the external poller. Returns how many
	// records were expired.
	ExpireOverdue(ctx context.Context, limit int, actorID string) (int, error)
}
