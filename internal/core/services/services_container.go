package services

import (
	portsrepo "github.com/afripay/conversion_backend/internal/core/ports/repositories"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
	"github.com/afripay/conversion_backend/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, horizon portssvc.HorizonClient) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Rate = NewRateService(repos.RateRepo)
	container.Fee = NewFeeService(repos.FeeRepo)
	container.Ledger = NewAuditLedgerService(repos.AuditRepo)
	container.Trustline = NewTrustlineService(repos.TrustlineRepo)
	container.Horizon = horizon

	// The orchestrator composes everything above; it goes last.
	container.Conversion = NewConversionService(
		container.Ledger,
		container.Rate,
		container.Fee,
		container.Trustline,
		container.Horizon,
		TrustlinePolicy(cfg.TrustlinePolicy),
		cfg.ConversionMaxWait,
	)

	return container
}
