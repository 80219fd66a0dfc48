package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ConversionStatus is the lifecycle state of a conversion audit record.
type ConversionStatus string

const (
	ConversionPending           ConversionStatus = "PENDING"
	ConversionAwaitingTrustline ConversionStatus = "AWAITING_TRUSTLINE"
	ConversionRateLocked        ConversionStatus = "RATE_LOCKED"
	ConversionSettling          ConversionStatus = "SETTLING"
	ConversionCompleted         ConversionStatus = "COMPLETED"
	ConversionFailed            ConversionStatus = "FAILED"
)

// conversionTransitions is the closed transition table. Any (current, next)
// pair not listed here is rejected; terminal states have no entries.
var conversionTransitions = map[ConversionStatus][]ConversionStatus{
	ConversionPending:           {ConversionAwaitingTrustline, ConversionRateLocked, ConversionFailed},
	ConversionAwaitingTrustline: {ConversionRateLocked, ConversionFailed},
	ConversionRateLocked:        {ConversionSettling, ConversionFailed},
	ConversionSettling:          {ConversionCompleted, ConversionFailed},
}

// IsTerminal reports whether no further transition is permitted.
func (s ConversionStatus) IsTerminal() bool {
	return s == ConversionCompleted || s == ConversionFailed
}

// CanTransitionTo consults the transition table.
func (s ConversionStatus) CanTransitionTo(next ConversionStatus) bool {
	for _, allowed := range conversionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// FailureReason is recorded when a conversion reaches FAILED.
type FailureReason string

const (
	ReasonRateExpired     FailureReason = "RATE_EXPIRED"
	ReasonTrustlineDenied FailureReason = "TRUSTLINE_DENIED"
	ReasonSettlementError FailureReason = "SETTLEMENT_ERROR"
	ReasonTimeout         FailureReason = "TIMEOUT"
)

// ConversionAudit is the durable record of one conversion attempt. The rate
// and fee stored here are snapshots taken at resolution time: later changes
// to the rate or fee tables never alter what this record means. Once a
// record reaches a terminal status it is never mutated again; corrections are
// appended as new records.
type ConversionAudit struct {
	ConversionID         string           `json:"conversionID"`
	IdempotencyKey       string           `json:"idempotencyKey"`
	UserID               string           `json:"userID"`
	WalletAddress        string           `json:"walletAddress"`
	FromCurrencyCode     string           `json:"fromCurrencyCode"`
	ToCurrencyCode       string           `json:"toCurrencyCode"`
	FromAmount           decimal.Decimal  `json:"fromAmount"`
	ToAmount             decimal.Decimal  `json:"toAmount"`
	Rate                 decimal.Decimal  `json:"rate"`      // snapshot
	RateID               string           `json:"rateID"`    // rate row the snapshot came from
	FeeAmount            decimal.Decimal  `json:"feeAmount"` // snapshot, in FeeCurrency
	FeeCurrencyCode      string           `json:"feeCurrencyCode"`
	Provider             string           `json:"provider,omitempty"`
	Status               ConversionStatus `json:"status"`
	FailureReason        *FailureReason   `json:"failureReason,omitempty"`
	FailureDetail        string           `json:"failureDetail,omitempty"`
	TransactionRef       *string          `json:"transactionRef,omitempty"` // nil until settled
	TrustlineOperationID *string          `json:"trustlineOperationID,omitempty"`
	Metadata             map[string]any   `json:"metadata,omitempty"`
	Deadline             time.Time        `json:"deadline"` // created_at + max_wait
	AuditFields
}

// Overdue reports whether a non-terminal record has passed its deadline.
func (c ConversionAudit) Overdue(now time.Time) bool {
	return !c.Status.IsTerminal() && now.After(c.Deadline)
}
