package stellar

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/afripay/conversion_backend/internal/apperrors"
	"github.com/afripay/conversion_backend/internal/core/domain"
	portssvc "github.com/afripay/conversion_backend/internal/core/ports/services"
)

// HorizonClient talks to a Stellar Horizon instance for account reads and
// forwards trustline change intents to an external signing service. This
// process never holds keys or builds transactions.
type HorizonClient struct {
	horizonURL string
	signerURL  string
	httpClient *http.Client
}

// NewHorizonClient creates a Horizon client. signerURL may be empty, in which
// case trustline submission fails with a configuration error.
func NewHorizonClient(horizonURL, signerURL string) *HorizonClient {
	return &HorizonClient{
		horizonURL: horizonURL,
		signerURL:  signerURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ portssvc.HorizonClient = (*HorizonClient)(nil)

// horizonAccount is the subset of Horizon's account resource we read.
type horizonAccount struct {
	AccountID string           `json:"account_id"`
	Sequence  string           `json:"sequence"`
	Balances  []horizonBalance `json:"balances"`
}

type horizonBalance struct {
	Balance      string `json:"balance"`
	Limit        string `json:"limit"`
	AssetType    string `json:"asset_type"`
	AssetCode    string `json:"asset_code"`
	AssetIssuer  string `json:"asset_issuer"`
	IsAuthorized *bool  `json:"is_authorized"`
}

// GetAccount fetches account state including balances and trustlines.
func (c *HorizonClient) GetAccount(ctx context.Context, accountID string) (*domain.StellarAccount, error) {
	endpoint := fmt.Sprintf("%s/accounts/%s", c.horizonURL, url.PathEscape(accountID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build horizon account request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("horizon account request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: account %s not found on horizon", apperrors.ErrNotFound, accountID)
	case resp.StatusCode != http.StatusOK:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("horizon returned %d for account %s: %s", resp.StatusCode, accountID, string(body))
	}

	var ha horizonAccount
	if err := json.NewDecoder(resp.Body).Decode(&ha); err != nil {
		return nil, fmt.Errorf("failed to decode horizon account response: %w", err)
	}

	account := &domain.StellarAccount{
		AccountID: ha.AccountID,
		Sequence:  ha.Sequence,
		Balances:  make([]domain.StellarBalance, len(ha.Balances)),
	}
	for i, b := range ha.Balances {
		// Horizon omits is_authorized for assets without auth flags; those
		// trustlines are usable.
		authorized := b.IsAuthorized == nil || *b.IsAuthorized
		account.Balances[i] = domain.StellarBalance{
			AssetType:   b.AssetType,
			AssetCode:   b.AssetCode,
			AssetIssuer: b.AssetIssuer,
			Balance:     b.Balance,
			Authorized:  authorized,
		}
	}
	return account, nil
}

// HasTrustline reports whether the wallet carries an authorized trustline for
// the asset. An account missing on Horizon simply has no trustlines.
func (c *HorizonClient) HasTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string) (bool, error) {
	account, err := c.GetAccount(ctx, walletAddress)
	if errors.Is(err, apperrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return account.HasTrustline(assetCode, assetIssuer), nil
}

// trustlineIntent is the payload sent to the external signer.
type trustlineIntent struct {
	WalletAddress string `json:"wallet_address"`
	AssetCode     string `json:"asset_code"`
	AssetIssuer   string `json:"asset_issuer"`
	Kind          string `json:"kind"`
}

type trustlineSubmission struct {
	TransactionHash string `json:"transaction_hash"`
}

// SubmitTrustline forwards a trustline change intent to the external signer
// and returns the transaction hash it reports.
func (c *HorizonClient) SubmitTrustline(ctx context.Context, walletAddress, assetCode, assetIssuer string, kind domain.TrustlineKind) (string, error) {
	if c.signerURL == "" {
		return "", fmt.Errorf("%w: no signer service configured", apperrors.ErrInternal)
	}

	payload, err := json.Marshal(trustlineIntent{
		WalletAddress: walletAddress,
		AssetCode:     assetCode,
		AssetIssuer:   assetIssuer,
		Kind:          string(kind),
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal trustline intent: %w", err)
	}

	endpoint := c.signerURL + "/trustlines"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to build signer request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("signer request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("signer returned %d for %s trustline on %s: %s", resp.StatusCode, kind, walletAddress, string(body))
	}

	var submission trustlineSubmission
	if err := json.NewDecoder(resp.Body).Decode(&submission); err != nil {
		return "", fmt.Errorf("failed to decode signer response: %w", err)
	}
	if submission.TransactionHash == "" {
		return "", fmt.Errorf("signer response missing transaction hash")
	}
	return submission.TransactionHash, nil
}
