package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionAudit is the row shape of the conversion_audits table.
// idempotency_key has a unique index; inserts go through ON CONFLICT DO
// NOTHING so concurrent duplicate submissions create exactly one row.
type ConversionAudit struct {
	ConversionID         string          `json:"conversionID"`
	IdempotencyKey       string          `json:"idempotencyKey"`
	UserID               string          `json:"userID"`
	WalletAddress        string          `json:"walletAddress"`
	FromCurrencyCode     string          `json:"fromCurrencyCode"`
	ToCurrencyCode       string          `json:"toCurrencyCode"`
	FromAmount           decimal.Decimal `json:"fromAmount"`
	ToAmount             decimal.Decimal `json:"toAmount"`
	Rate                 decimal.Decimal `json:"rate"`
	RateID               string          `json:"rateID"`
	FeeAmount            decimal.Decimal `json:"feeAmount"`
	FeeCurrencyCode      string          `json:"feeCurrencyCode"`
	Provider             *string         `json:"provider"`
	Status               string          `json:"status"`
	FailureReason        *string         `json:"failureReason"`
	FailureDetail        *string         `json:"failureDetail"`
	TransactionRef       *string         `json:"transactionRef"`
	TrustlineOperationID *string         `json:"trustlineOperationID"`
	Metadata             map[string]any  `json:"metadata"`
	Deadline             time.Time       `json:"deadline"`
	AuditFields
}
