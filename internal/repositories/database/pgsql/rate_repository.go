package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	"github.com/afripay/conversion_backend/internal/models"
	"github.com/afripay/conversion_backend/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rateColumns = `rate_id, from_currency_code, to_currency_code, rate, valid_from, valid_until,
		created_at, created_by, last_updated_at, last_updated_by`

// PgxRateRepository implements the rate repository ports using pgxpool.
type PgxRateRepository struct {
	BaseRepository
}

func newPgxRateRepository(db *pgxpool.Pool) *PgxRateRepository {
	return &PgxRateRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.RateRepositoryFacade = (*PgxRateRepository)(nil)

func scanRate(row pgx.Row) (models.ExchangeRate, error) {
	var m models.ExchangeRate
	err := row.Scan(
		&m.RateID,
		&m.FromCurrencyCode,
		&m.ToCurrencyCode,
		&m.Rate,
		&m.ValidFrom,
		&m.ValidUntil,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveRate inserts a new rate row. Non-overlap of windows for a pair is
// enforced by the exchange_rates_no_window_overlap exclusion constraint, so
// two concurrent ingests of intersecting windows cannot both land; the loser
// gets a validation error.
func (r *PgxRateRepository) SaveRate(ctx context.Context, rate domain.ExchangeRate) error {
	modelRate := mapping.ToModelExchangeRate(rate)
	modelRate.FromCurrencyCode = strings.ToUpper(modelRate.FromCurrencyCode)
	modelRate.ToCurrencyCode = strings.ToUpper(modelRate.ToCurrencyCode)

	_, err := r.Pool.Exec(ctx, `
		INSERT INTO exchange_rates (
			rate_id, from_currency_code, to_currency_code, rate, valid_from, valid_until,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		modelRate.RateID, modelRate.FromCurrencyCode, modelRate.ToCurrencyCode,
		modelRate.Rate, modelRate.ValidFrom, modelRate.ValidUntil,
		modelRate.CreatedAt, modelRate.CreatedBy, modelRate.LastUpdatedAt, modelRate.LastUpdatedBy,
	)
	if err != nil {
		if isWindowOverlapViolation(err) {
			return fmt.Errorf("%w: validity window intersects an existing rate for %s/%s",
				apperrors.ErrValidation, modelRate.FromCurrencyCode, modelRate.ToCurrencyCode)
		}
		return fmt.Errorf("failed to insert exchange rate: %w", err)
	}
	return nil
}

// isWindowOverlapViolation reports whether err is the
// exchange_rates_no_window_overlap exclusion constraint firing.
func isWindowOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23P01" // exclusion_violation
}

// ResolveRate returns the single rate whose window contains the instant.
// Fetching two rows distinguishes "none" from "exactly one" from the overlap
// violation, which is reported loudly instead of being resolved by a
// tie-break.
func (r *PgxRateRepository) ResolveRate(ctx context.Context, fromCurrencyCode, toCurrencyCode string, at time.Time) (*domain.ExchangeRate, error) {
	rows, err := r.Pool.Query(ctx, `
		SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2
		  AND valid_from <= $3
		  AND (valid_until IS NULL OR $3 < valid_until)
		LIMIT 2`,
		strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), at,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve rate for %s/%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}

	modelRates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		return scanRate(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan resolved rates: %w", err)
	}

	switch len(modelRates) {
	case 0:
		return nil, apperrors.ErrNotFound
	case 1:
		domainRate := mapping.ToDomainExchangeRate(modelRates[0])
		return &domainRate, nil
	default:
		return nil, fmt.Errorf("%w: multiple rate windows cover %s for %s/%s",
			apperrors.ErrDataIntegrity, at.Format(time.RFC3339), fromCurrencyCode, toCurrencyCode)
	}
}

// FindRateByID retrieves a rate row by its identifier.
func (r *PgxRateRepository) FindRateByID(ctx context.Context, rateID string) (*domain.ExchangeRate, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE rate_id = $1`, rateID)

	m, err := scanRate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find rate by ID %s: %w", rateID, err)
	}

	domainRate := mapping.ToDomainExchangeRate(m)
	return &domainRate, nil
}

// ListRates returns rate rows for a pair ordered by valid_from descending.
func (r *PgxRateRepository) ListRates(ctx context.Context, fromCurrencyCode, toCurrencyCode string, limit int) ([]domain.ExchangeRate, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+rateColumns+`
		FROM exchange_rates
		WHERE from_currency_code = $1 AND to_currency_code = $2
		ORDER BY valid_from DESC
		LIMIT $3`,
		strings.ToUpper(fromCurrencyCode), strings.ToUpper(toCurrencyCode), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list rates for %s/%s: %w", fromCurrencyCode, toCurrencyCode, err)
	}

	modelRates, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.ExchangeRate, error) {
		return scanRate(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan rate rows: %w", err)
	}

	domainRates := make([]domain.ExchangeRate, len(modelRates))
	for i, m := range modelRates {
		domainRates[i] = mapping.ToDomainExchangeRate(m)
	}
	return domainRates, nil
}
