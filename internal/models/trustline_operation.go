package models

import "time"

// TrustlineOperation is the row shape of the trustline_operations table.
type TrustlineOperation struct {
	OperationID     string         `json:"operationID"`
	WalletAddress   string         `json:"walletAddress"`
	AssetCode       string         `json:"assetCode"`
	AssetIssuer     *string        `json:"assetIssuer"`
	Kind            string         `json:"kind"`
	Status          string         `json:"status"`
	TransactionHash *string        `json:"transactionHash"`
	ErrorMessage    *string        `json:"errorMessage"`
	Metadata        map[string]any `json:"metadata"`
	StatusChangedAt time.Time      `json:"statusChangedAt"`
	AuditFields
}
