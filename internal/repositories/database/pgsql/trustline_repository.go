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

const trustlineColumns = `operation_id, wallet_address, asset_code, asset_issuer, kind, status,
		transaction_hash, error_message, metadata, status_changed_at,
		created_at, created_by, last_updated_at, last_updated_by`

// PgxTrustlineRepository implements the trustline repository ports using pgxpool.
type PgxTrustlineRepository struct {
	BaseRepository
}

func newPgxTrustlineRepository(db *pgxpool.Pool) *PgxTrustlineRepository {
	return &PgxTrustlineRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.TrustlineRepositoryFacade = (*PgxTrustlineRepository)(nil)

func scanTrustlineOperation(row pgx.Row) (models.TrustlineOperation, error) {
	var m models.TrustlineOperation
	err := row.Scan(
		&m.OperationID,
		&m.WalletAddress,
		&m.AssetCode,
		&m.AssetIssuer,
		&m.Kind,
		&m.Status,
		&m.TransactionHash,
		&m.ErrorMessage,
		&m.Metadata,
		&m.StatusChangedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// CreateTrustlineOperation inserts a new operation row.
func (r *PgxTrustlineRepository) CreateTrustlineOperation(ctx context.Context, op domain.TrustlineOperation) error {
	m := mapping.ToModelTrustlineOperation(op)

	_, err := r.Pool.Exec(ctx, `
		INSERT INTO trustline_operations (
			operation_id, wallet_address, asset_code, asset_issuer, kind, status,
			transaction_hash, error_message, metadata, status_changed_at,
			created_at, created_by, last_updated_at, last_updated_by
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		m.OperationID, m.WalletAddress, m.AssetCode, m.AssetIssuer, m.Kind, m.Status,
		m.TransactionHash, m.ErrorMessage, m.Metadata, m.StatusChangedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert trustline operation: %w", err)
	}
	return nil
}

// UpdateTrustlineStatus compare-and-sets the status with the same discipline
// as the audit ledger.
func (r *PgxTrustlineRepository) UpdateTrustlineStatus(ctx context.Context, operationID string, expected, next domain.TrustlineStatus, update portsrepo.TrustlineUpdate, updaterID string, at time.Time) (*domain.TrustlineOperation, error) {
	var errorMessage *string
	if update.ErrorMessage != "" {
		errorMessage = &update.ErrorMessage
	}

	row := r.Pool.QueryRow(ctx, `
		UPDATE trustline_operations
		SET status = $3,
			transaction_hash = COALESCE($4, transaction_hash),
			error_message = COALESCE($5, error_message),
			status_changed_at = $6,
			last_updated_at = $6,
			last_updated_by = $7
		WHERE operation_id = $1 AND status = $2
		RETURNING `+trustlineColumns,
		operationID, string(expected), string(next),
		update.TransactionHash, errorMessage, at, updaterID,
	)

	m, err := scanTrustlineOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, findErr := r.FindTrustlineOperationByID(ctx, operationID); errors.Is(findErr, apperrors.ErrNotFound) {
				return nil, apperrors.ErrNotFound
			}
			return nil, fmt.Errorf("%w: trustline operation %s is no longer %s", apperrors.ErrConcurrentModification, operationID, expected)
		}
		return nil, fmt.Errorf("failed to update trustline operation %s status: %w", operationID, err)
	}

	updated := mapping.ToDomainTrustlineOperation(m)
	return &updated, nil
}

// FindTrustlineOperationByID retrieves one operation.
func (r *PgxTrustlineRepository) FindTrustlineOperationByID(ctx context.Context, operationID string) (*domain.TrustlineOperation, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+trustlineColumns+`
		FROM trustline_operations
		WHERE operation_id = $1`, operationID)

	m, err := scanTrustlineOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find trustline operation by ID %s: %w", operationID, err)
	}

	op := mapping.ToDomainTrustlineOperation(m)
	return &op, nil
}

// FindLatestTrustlineOperation returns the most recent operation for a
// wallet/asset pair.
func (r *PgxTrustlineRepository) FindLatestTrustlineOperation(ctx context.Context, walletAddress, assetCode string) (*domain.TrustlineOperation, error) {
	row := r.Pool.QueryRow(ctx, `
		SELECT `+trustlineColumns+`
		FROM trustline_operations
		WHERE wallet_address = $1 AND asset_code = $2
		ORDER BY created_at DESC, operation_id DESC
		LIMIT 1`, walletAddress, assetCode)

	m, err := scanTrustlineOperation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find latest trustline operation for %s/%s: %w", walletAddress, assetCode, err)
	}

	op := mapping.ToDomainTrustlineOperation(m)
	return &op, nil
}

// ListTrustlineOperations returns operations for a wallet, newest first.
func (r *PgxTrustlineRepository) ListTrustlineOperations(ctx context.Context, walletAddress string, limit int) ([]domain.TrustlineOperation, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.Pool.Query(ctx, `
		SELECT `+trustlineColumns+`
		FROM trustline_operations
		WHERE wallet_address = $1
		ORDER BY created_at DESC, operation_id DESC
		LIMIT $2`, walletAddress, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list trustline operations for %s: %w", walletAddress, err)
	}

	modelOps, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.TrustlineOperation, error) {
		return scanTrustlineOperation(row)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan trustline operation rows: %w", err)
	}

	ops := make([]domain.TrustlineOperation, len(modelOps))
	for i, m := range modelOps {
		ops[i] = mapping.ToDomainTrustlineOperation(m)
	}
	return ops, nil
}
