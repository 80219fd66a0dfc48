package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	"github.com/afripay/conversion_backend/internal/models"
	"github.com/afripay/conversion_backend/internal/utils/mapping"
	"github.com/afripay/conversion_backend/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const conversionColumns = `conversion_id, idempotency_key, user_id, wallet_address,
		from_currency_code, to_currency_code, from_amount, to_amount, rate, rate_id,
		fee_amount, fee_currency_code, provider, status, failure_reason, failure_detail,
		transaction_ref, trustline_operation_id, metadata, deadline,
		created_at, created_by, last_updated_at, last_updated_by`

// PgxConversionAuditRepository implements the audit ledger ports using pgxpool.
type PgxConversionAuditRepository struct {
	BaseRepository
}

func newPgxConversionAuditRepository(db *pgxpool.Pool) *PgxConversionAuditRepository {
	return &PgxConversionAuditRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.ConversionAuditRepositoryFacade = (*PgxConversionAuditRepository)(nil)

func scanConversionAudit(row pgx.Row) (models.ConversionAudit, error) {
	var m models.ConversionAudit
	err := row.Scan(
		&m.ConversionID,
		&m.IdempotencyKey,
		&m.UserID,
		&m.WalletAddress,
		&m.FromCurrencyCode,
		&m.ToCurrencyCode,
		&m.FromAmount,
		&m.ToAmount,
		&m.Rate,
		&m.RateID,
		&m.FeeAmount,
		&m.FeeCurrencyCode,
		&m.Provider,
		&m.Status,
		&m.FailureReason,
		&m.FailureDetail,
		&m.TransactionRef,
		&m.TrustlineOperationID,
		&m.Metadata,
		&m.Deadline,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateConversion atomically inserts the record if its idempotency key is
// absent. ON CONFLICT DO NOTHING makes concurrent duplicate submissions
// create exactly one row; the loser reads the winner's row back and reports
// apperrors.ErrDuplicate.
func (r *PgxConversionAuditRepository) CreateConversion(ctx context.Context, audit domain.ConversionAudit) (*domain.ConversionAudit, error) {
	m := mapping.ToModelConversionAudit(audit)

	tag, err := r.Pool.Exec(ctx, `
		INSERT INTO conversion_audits (
			conversion_id, idempotency_key, user_id, wallet_address,
			from_currency_code, to_currency_code, from_amount, to_amount, rate, rate_id,
			fee_amount, fee_currency_code, provider, status, failure_reason, failure_detail,
			transaction_ref, trustline_operation_id, metadata, deadline,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		m.ConversionID, m.IdempotencyKey, m.UserID, m.WalletAddress,
		m.FromCurrencyCode, m.ToCurrencyCode, m.FromAmount, m.ToAmount, m.Rate, m.RateID,
		m.FeeAmount, m.FeeCurrencyCode, m.Provider, m.Status, m.FailureReason, m.FailureDetail,
		m.TransactionRef, m.TrustlineOperationID, m.Metadata, m.Deadline,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert conversion audit: %w", err)
	}

	if tag.RowsAffected() == 0 {
		existing, err := r.FindConversionByIdempotencyKey(ctx, audit.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch conversion for duplicate key %s: %w", audit.IdempotencyKey, err)
		}
		return existing, fmt.Errorf("%w: idempotency key %s already used", apperrors.ErrDuplicate, audit.IdempotencyKey)
	}

	return &audit, nil
}

// UpdateConversionStatus compare-and-sets the status. The WHERE clause pins
// both id and the expected status: zero rows means either the record is gone
// or someone transitioned it first, disambiguated with a follow-up read.
func (r *PgxConversionAuditRepository) UpdateConversionStatus(ctx context.Context, conversionID string, expected, next domain.ConversionStatus, detail portsrepo.TransitionDetail, updaterID string, at time.Time) (*domain.ConversionAudit, error) {
	var failureReason *string
	if detail.FailureReason != nil {
		reason := string(*detail.FailureReason)
		failureReason = &reason
	}
	var failureDetail *string
	if detail.FailureDetail != "" {
		failureDetail = &detail.FailureDetail
	}

	row := r.Pool.QueryRow(ctx, `
		UPDATE conversion_audits
		SET status = $3,
			failure_reason = COALESCE($4, failure_reason),
			failure_detail = COALESCE($5, failure_detail),
			transaction_ref = COALESCE($6, transaction_ref),
			trustline_operation_id = COALESCE($7, trustline_operation_id),
			last_updated_at = $8,
			last_updated_by = $9
		WHERE conversion_id = $1 AND status = $2
		RETURNING `+conversionColumns,
		conversionID, string(expected), string(next),
		failureReason, failureDetail, detail.TransactionRef, detail.TrustlineOpID,
		at, updaterID,
	)

	m, err := scanConversionAudit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, findErr := r.FindConversionByID(ctx, conversionID); errors.Is(findErr, apperrors.ErrNotFound) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("%w: conversion %s is no longer %s", apperrors.ErrConcurrentModification, conversionID, expected)
		}
		return nil, fmt.Errorf("failed to update conversion %s status: %w", conversionID, err)
	}

	updated := mapping.ToDomainConversionAudit(m)
	return &updated, nil
}

// FindConversionByID retrieves one audit record.
func (r *PgxConversionAuditRepository) FindConversionByID(ctx context.Context, conversionID string) (*domain.ConversionAudit, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+conversionColumns+`
		FROM conversion_audits
		WHERE conversion_id = $1`, conversionID)

	m, err := scanConversionAudit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find conversion by ID %s: %w", conversionID, err)
	}

	record := mapping.ToDomainConversionAudit(m)
	return &record, nil
}

// FindConversionByIdempotencyKey retrieves the record opened under a key.
func (r *PgxConversionAuditRepository) FindConversionByIdempotencyKey(ctx context.Context, key string) (*domain.ConversionAudit, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+conversionColumns+`
		FROM conversion_audits
		WHERE idempotency_key = $1`, key)

	m, err := scanConversionAudit(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find conversion by idempotency key: %w", err)
	}

	record := mapping.ToDomainConversionAudit(m)
	return &record, nil
}

// ListConversions returns records matching the filter ordered by created_at
// descending, restartable via a keyset token on (created_at, conversion_id).
func (r *PgxConversionAuditRepository) ListConversions(ctx context.Context, filter portsrepo.ConversionFilter, limit int, pageToken string) ([]domain.ConversionAudit, string, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `SELECT ` + conversionColumns + ` FROM conversion_audits WHERE 1=1`
	args := []any{}
	argPos := 1

	addArg := func(clause string, value any) {
		query += fmt.Sprintf(" AND "+clause, argPos)
		args = append(args, value)
		argPos++
	}

	if filter.UserID != "" {
		addArg("user_id = $%d", filter.UserID)
	}
	if filter.WalletAddress != "" {
		addArg("wallet_address = $%d", filter.WalletAddress)
	}
	if filter.Status != "" {
		addArg("status = $%d", string(filter.Status))
	}
	if filter.CreatedAfter != nil {
		addArg("created_at >= $%d", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		addArg("created_at <= $%d", *filter.CreatedBefore)
	}

	if pageToken != "" {
		cursorCreatedAt, cursorID, err := pagination.DecodeCursor(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
		}
		query += fmt.Sprintf(" AND (created_at, conversion_id) < ($%d, $%d)", argPos, argPos+1)
		args = append(args, cursorCreatedAt, cursorID)
		argPos += 2
	}

	// Fetch one extra row to know whether a next page exists.
	query += fmt.Sprintf(" ORDER BY created_at DESC, conversion_id DESC LIMIT $%d", argPos)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list conversions: %w", err)
	}

	modelRecords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ConversionAudit, error) {
		return scanConversionAudit(row)
	})
	if err != nil {
		return nil, "", fmt.Errorf("failed to scan conversion rows: %w", err)
	}

	nextToken := ""
	if len(modelRecords) > limit {
		modelRecords = modelRecords[:limit]
		last := modelRecords[limit-1]
		nextToken = pagination.EncodeCursor(last.CreatedAt, last.ConversionID)
	}

	records := make([]domain.ConversionAudit, len(modelRecords))
	for i, m := range modelRecords {
		records[i] = mapping.ToDomainConversionAudit(m)
	}
	return records, nextToken, nil
}

// ListOverdueConversions returns non-terminal records whose deadline has
// passed, oldest deadline first so the sweep drains the longest-waiting ones.
func (r *PgxConversionAuditRepository) ListOverdueConversions(ctx context.Context, now time.Time, limit int) ([]domain.ConversionAudit, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+conversionColumns+`
		FROM conversion_audits
		WHERE status NOT IN ($1, $2) AND deadline < $3
		ORDER BY deadline ASC
		LIMIT $4`,
		string(domain.ConversionCompleted), string(domain.ConversionFailed), now, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list overdue conversions: %w", err)
	}

	modelRecords, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ConversionAudit, error) {
		return scanConversionAudit(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan overdue conversion rows: %w", err)
	}

	records := make([]domain.ConversionAudit, len(modelRecords))
	for i, m := range modelRecords {
		records[i] = mapping.ToDomainConversionAudit(m)
	}
	return records, nil
}
