package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeType classifies which flow a fee structure applies to.
type FeeType string

const (
	FeeOnramp      FeeType = "onramp"
	FeeOfframp     FeeType = "offramp"
	FeeBillPayment FeeType = "bill_payment"
	FeeExchange    FeeType = "exchange"
	FeeTransfer    FeeType = "transfer"
)

// IsValid reports whether the fee type is one of the known values.
func (t FeeType) IsValid() bool {
	switch t {
	case FeeOnramp, FeeOfframp, FeeBillPayment, FeeExchange, FeeTransfer:
		return true
	}
	return false
}

// FeeStructure holds the parameters for computing a fee of a given type over
// an effective time window. Multiple structures of the same type may exist
// across time; at most one active structure should cover a given instant, and
// the resolver tie-breaks overlaps by the most recently created row.
type FeeStructure struct {
	FeeID          string           `json:"feeID"`
	FeeType        FeeType          `json:"feeType"`
	RateBps        int32            `json:"rateBps"` // basis points applied to the amount
	FlatFee        decimal.Decimal  `json:"flatFee"`
	MinFee         *decimal.Decimal `json:"minFee,omitempty"`
	MaxFee         *decimal.Decimal `json:"maxFee,omitempty"`
	CurrencyCode   string           `json:"currencyCode,omitempty"`
	IsActive       bool             `json:"isActive"`
	EffectiveFrom  time.Time        `json:"effectiveFrom"`
	EffectiveUntil *time.Time       `json:"effectiveUntil,omitempty"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
	AuditFields
}

// FeeQuote is the result of resolving and computing a fee: the clamped fee
// plus the parameters of the structure it came from, so callers can snapshot
// how the number was produced.
type FeeQuote struct {
	Fee          decimal.Decimal  `json:"fee"`
	RateBps      int32            `json:"rateBps"`
	FlatFee      decimal.Decimal  `json:"flatFee"`
	MinFee       *decimal.Decimal `json:"minFee,omitempty"`
	MaxFee       *decimal.Decimal `json:"maxFee,omitempty"`
	CurrencyCode string           `json:"currencyCode,omitempty"`
	FeeID        string           `json:"feeID"`
}

// bpsDivisor converts basis points to a fraction.
var bpsDivisor = decimal.NewFromInt(10000)

// Covers reports whether the effective window contains the instant.
// Unlike rate windows, the effective interval is closed on both ends,
// matching how fee schedules are published.
func (f FeeStructure) Covers(at time.Time) bool {
	if at.Before(f.EffectiveFrom) {
		return false
	}
	if f.EffectiveUntil == nil {
		return true
	}
	return !at.After(*f.EffectiveUntil)
}

// ComputeFee calculates the fee for an amount: amount * rateBps/10000 + flat,
// clamped to [MinFee, MaxFee] where those bounds are set.
func (f FeeStructure) ComputeFee(amount decimal.Decimal) decimal.Decimal {
	fee := f.FlatFee
	if f.RateBps != 0 {
		fee = fee.Add(amount.Mul(decimal.NewFromInt32(f.RateBps)).Div(bpsDivisor))
	}
	if f.MinFee != nil && fee.LessThan(*f.MinFee) {
		fee = *f.MinFee
	}
	if f.MaxFee != nil && fee.GreaterThan(*f.MaxFee) {
		fee = *f.MaxFee
	}
	return fee
}
