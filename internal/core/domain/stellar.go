package domain

// StellarBalance is one balance line from a Horizon account, including
// trustlines to non-native assets.
type StellarBalance struct {
	AssetType   string `json:"assetType"` // "native" or "credit_alphanum4"/"credit_alphanum12"
	AssetCode   string `json:"assetCode,omitempty"`
	AssetIssuer string `json:"assetIssuer,omitempty"`
	Balance     string `json:"balance"`
	Authorized  bool   `json:"authorized"`
}

// StellarAccount is the subset of Horizon account state this backend reads.
type StellarAccount struct {
	AccountID string           `json:"accountID"`
	Sequence  string           `json:"sequence"`
	Balances  []StellarBalance `json:"balances"`
}

// HasTrustline reports whether the account carries an authorized trustline
// for the given asset code (and issuer, when one is specified).
func (a StellarAccount) HasTrustline(assetCode, assetIssuer string) bool {
	for _, b := range a.Balances {
		if b.AssetType == "native" {
			continue
		}
		if b.AssetCode != assetCode {
			continue
		}
		if assetIssuer != "" && b.AssetIssuer != assetIssuer {
			continue
		}
		return b.Authorized
	}
	return false
}
