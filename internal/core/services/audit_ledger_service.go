package services

import (
	"context"
	"errors"
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

// auditLedgerService is the append-only record of conversion attempts. It
// owns ConversionAudit rows exclusively: all writes flow through OpenConversion
// and TransitionConversion, both durable atomic operations.
type auditLedgerService struct {
	auditRepo portsrepo.ConversionAuditRepositoryFacade
}

// NewAuditLedgerService creates a new audit ledger service.
func NewAuditLedgerService(auditRepo portsrepo.ConversionAuditRepositoryFacade) portssvc.AuditLedgerSvcFacade {
	return &auditLedgerService{auditRepo: auditRepo}
}

var _ portssvc.AuditLedgerSvcFacade = (*auditLedgerService)(nil)

// OpenConversion creates a new record in Pending status. The rate and fee on
// the incoming audit are immutable snapshots taken by the caller at
// resolution time. Idempotency-key uniqueness rides on the repository's
// insert-if-absent; a key hit returns the record opened first together with
// apperrors.ErrDuplicate so callers can hand the caller the original record.
func (s *auditLedgerService) OpenConversion(ctx context.Context, audit domain.ConversionAudit) (*domain.ConversionAudit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if audit.IdempotencyKey == "" {
		return nil, fmt.Errorf("%w: idempotency key is required", apperrors.ErrValidation)
	}
	if audit.FromAmount.IsNegative() || audit.FromAmount.IsZero() {
		return nil, fmt.Errorf("%w: conversion amount must be positive", apperrors.ErrValidation)
	}

	now := time.Now().UTC()
	audit.ConversionID = uuid.NewString()
	audit.Status = domain.ConversionPending
	audit.CreatedAt = now
	audit.LastUpdatedAt = now

	created, err := s.auditRepo.CreateConversion(ctx, audit)
	if err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			logger.Info("Idempotency key already opened, returning existing record",
				slog.String("idempotency_key", audit.IdempotencyKey),
				slog.String("existing_conversion_id", created.ConversionID))
			return created, err
		}
		logger.Error("Failed to open conversion audit",
			slog.String("idempotency_key", audit.IdempotencyKey), slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to open conversion audit: %w", err)
	}

	logger.Info("Conversion audit opened",
		slog.String("conversion_id", created.ConversionID),
		slog.String("idempotency_key", created.IdempotencyKey))
	return created, nil
}

// TransitionConversion advances a record through the state machine. The
// transition table is the single dispatch point: pairs not listed there fail
// with ErrInvalidTransition before any write. The write itself is a
// compare-and-set against the expected status, so a concurrent actor's
// transition surfaces as ErrConcurrentModification rather than being
// overwritten.
func (s *auditLedgerService) TransitionConversion(ctx context.Context, conversionID string, expected, next domain.ConversionStatus, detail portsrepo.TransitionDetail, actorID string) (*domain.ConversionAudit, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if expected.IsTerminal() {
		logger.Error("Transition attempted from terminal status",
			slog.String("conversion_id", conversionID),
			slog.String("from", string(expected)), slog.String("to", string(next)))
		return nil, fmt.Errorf("%w: %s is terminal", apperrors.ErrInvalidTransition, expected)
	}
	if !expected.CanTransitionTo(next) {
		logger.Error("Disallowed status transition requested",
			slog.String("conversion_id", conversionID),
			slog.String("from", string(expected)), slog.String("to", string(next)))
		return nil, fmt.Errorf("%w: %s -> %s", apperrors.ErrInvalidTransition, expected, next)
	}
	if next == domain.ConversionFailed && detail.FailureReason == nil {
		return nil, fmt.Errorf("%w: failed status requires a failure reason", apperrors.ErrValidation)
	}

	updated, err := s.auditRepo.UpdateConversionStatus(ctx, conversionID, expected, next, detail, actorID, time.Now().UTC())
	if err != nil {
		if errors.Is(err, apperrors.ErrConcurrentModification) {
			logger.Warn("Conversion transition lost compare-and-set race",
				slog.String("conversion_id", conversionID),
				slog.String("expected", string(expected)), slog.String("next", string(next)))
		}
		return nil, fmt.Errorf("failed to transition conversion %s: %w", conversionID, err)
	}

	logger.Info("Conversion transitioned",
		slog.String("conversion_id", conversionID),
		slog.String("from", string(expected)), slog.String("to", string(next)))
	return updated, nil
}

// GetConversion retrieves one record.
func (s *auditLedgerService) GetConversion(ctx context.Context, conversionID string) (*domain.ConversionAudit, error) {
	record, err := s.auditRepo.FindConversionByID(ctx, conversionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get conversion %s: %w", conversionID, err)
	}
	return record, nil
}

// ListConversions queries the ledger for reporting.
func (s *auditLedgerService) ListConversions(ctx context.Context, filter portsrepo.ConversionFilter, limit int, pageToken string) ([]domain.ConversionAudit, string, error) {
	if limit <= 0 {
		limit = 50
	}
	records, nextToken, err := s.auditRepo.ListConversions(ctx, filter, limit, pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list conversions: %w", err)
	}
	return records, nextToken, nil
}

// ListOverdueConversions returns non-terminal records past their deadline.
func (s *auditLedgerService) ListOverdueConversions(ctx context.Context, now time.Time, limit int) ([]domain.ConversionAudit, error) {
	if limit <= 0 {
		limit = 100
	}
	records, err := s.auditRepo.ListOverdueConversions(ctx, now, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue conversions: %w", err)
	}
	return records, nil
}
