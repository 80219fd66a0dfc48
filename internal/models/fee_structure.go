package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeStructure is the row shape of the fee_structures table.
type FeeStructure struct {
	FeeID          string           `json:"feeID"`
	FeeType        string           `json:"feeType"`
	RateBps        int32            `json:"rateBps"`
	FlatFee        decimal.Decimal  `json:"flatFee"`
	MinFee         *decimal.Decimal `json:"minFee"`
	MaxFee         *decimal.Decimal `json:"maxFee"`
	CurrencyCode   *string          `json:"currencyCode"`
	IsActive       bool             `json:"isActive"`
	EffectiveFrom  time.Time        `json:"effectiveFrom"`
	EffectiveUntil *time.Time       `json:"effectiveUntil"`
	Metadata       map[string]any   `json:"metadata"`
	AuditFields
}
