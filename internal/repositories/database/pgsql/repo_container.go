package pgsql

import (
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		RateRepo:      newPgxRateRepository(dbPool),
		FeeRepo:       newPgxFeeRepository(dbPool),
		AuditRepo:     newPgxConversionAuditRepository(dbPool),
		TrustlineRepo: newPgxTrustlineRepository(dbPool),
	}
}
