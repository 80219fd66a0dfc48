package services

import (
	"context"

	"github.com/afripay/conversion_backend/internal/core/domain"
)

// HorizonClient is the wire-level boundary to the Stellar network. The core
// only reads account/trustline state and forwards submission intents; it
// never builds or signs transactions itself.
type HorizonClient interface {
	// GetAccount fetches account state including balances and trustlines.
	GetAccount(ctx context.Context, accountID string) (*domain.StellarAccount, error)

	// HasTrustline reports whether the wallet carries an authorized trustline
	// for the asset.
	HasTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string) (bool, error)

	// SubmitTrustline forwards a trustline change intent to the external
	// signer and returns the operation handle (transaction hash).
	SubmitTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string, kind domain.TrustlineKind) (string, error)
}
