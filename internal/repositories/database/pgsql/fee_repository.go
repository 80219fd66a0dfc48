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
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const feeColumns = `fee_id, fee_type, rate_bps, flat_fee, min_fee, max_fee, currency_code,
		is_active, effective_from, effective_until, metadata,
		created_at, created_by, last_updated_at, last_updated_by`

// PgxFeeRepository implements the fee repository ports using pgxpool.
type PgxFeeRepository struct {
	BaseRepository
}

func newPgxFeeRepository(db *pgxpool.Pool) *PgxFeeRepository {
	return &PgxFeeRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.FeeRepositoryFacade = (*PgxFeeRepository)(nil)

func scanFeeStructure(row pgx.Row) (models.FeeStructure, error) {
	var m models.FeeStructure
	err := row.Scan(
		&m.FeeID,
		&m.FeeType,
		&m.RateBps,
		&m.FlatFee,
		&m.MinFee,
		&m.MaxFee,
		&m.CurrencyCode,
		&m.IsActive,
		&m.EffectiveFrom,
		&m.EffectiveUntil,
		&m.Metadata,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveFeeStructure inserts a new structure. Structures are never updated in
// place; replacing pricing means inserting a new row and deactivating the old one.
func (r *PgxFeeRepository) SaveFeeStructure(ctx context.Context, structure domain.FeeStructure) error {
	m := mapping.ToModelFeeStructure(structure)

	_, err := r.Pool.Exec(ctx, `
		INSERT INTO fee_structures (
			fee_id, fee_type, rate_bps, flat_fee, min_fee, max_fee, currency_code,
			is_active, effective_from, effective_until, metadata,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		m.FeeID, m.FeeType, m.RateBps, m.FlatFee, m.MinFee, m.MaxFee, m.CurrencyCode,
		m.IsActive, m.EffectiveFrom, m.EffectiveUntil, m.Metadata,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert fee structure: %w", err)
	}
	return nil
}

// FindActiveFeeStructure returns the active structure covering the instant.
// Effective windows of fee structures may legitimately overlap; the winner is
// the highest effective_from, then the latest created_at.
func (r *PgxFeeRepository) FindActiveFeeStructure(ctx context.Context, feeType domain.FeeType, at time.Time) (*domain.FeeStructure, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+feeColumns+`
		FROM fee_structures
		WHERE fee_type = $1 AND is_active = TRUE
		  AND effective_from <= $2
		  AND (effective_until IS NULL OR $2 <= effective_until)
		ORDER BY effective_from DESC, created_at DESC
		LIMIT 1`,
		string(feeType), at,
	)

	m, err := scanFeeStructure(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find active %s fee structure: %w", feeType, err)
	}

	structure := mapping.ToDomainFeeStructure(m)
	return &structure, nil
}

// FindFeeStructureByID retrieves a structure by its identifier.
func (r *PgxFeeRepository) FindFeeStructureByID(ctx context.Context, feeID string) (*domain.FeeStructure, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+feeColumns+`
		FROM fee_structures
		WHERE fee_id = $1`, feeID)

	m, err := scanFeeStructure(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find fee structure by ID %s: %w", feeID, err)
	}

	structure := mapping.ToDomainFeeStructure(m)
	return &structure, nil
}

// ListFeeStructures returns structures of a type, newest window first.
func (r *PgxFeeRepository) ListFeeStructures(ctx context.Context, feeType domain.FeeType, limit int) ([]domain.FeeStructure, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+feeColumns+`
		FROM fee_structures
		WHERE fee_type = $1
		ORDER BY effective_from DESC, created_at DESC
		LIMIT $2`,
		string(feeType), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s fee structures: %w", feeType, err)
	}

	modelStructures, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.FeeStructure, error) {
		return scanFeeStructure(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan fee structure rows: %w", err)
	}

	structures := make([]domain.FeeStructure, len(modelStructures))
	for i, m := range modelStructures {
		structures[i] = mapping.ToDomainFeeStructure(m)
	}
	return structures, nil
}

// DeactivateFeeStructure flags a structure inactive and returns the updated row.
func (r *PgxFeeRepository) DeactivateFeeStructure(ctx context.Context, feeID string, updaterID string, at time.Time) (*domain.FeeStructure, error) {
	row := r.Pool.QueryRow(ctx, `
		UPDATE fee_structures
		SET is_active = FALSE, last_updated_at = $2, last_updated_by = $3
		WHERE fee_id = $1
		RETURNING `+feeColumns,
		feeID, at, updaterID,
	)

	m, err := scanFeeStructure(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to deactivate fee structure %s: %w", feeID, err)
	}

	structure := mapping.ToDomainFeeStructure(m)
	return &structure, nil
}
