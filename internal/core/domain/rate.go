package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is one row of the time-windowed rate table for a currency pair.
// The validity window is half-open: [ValidFrom, ValidUntil). A nil ValidUntil
// means the rate is unbounded until superseded. Rows are immutable once
// written; a new quote is inserted with its own window rather than editing
// history.
type ExchangeRate struct {
	RateID           string          `json:"rateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	ValidFrom        time.Time       `json:"validFrom"`
	ValidUntil       *time.Time      `json:"validUntil,omitempty"` // nil = open-ended
	AuditFields
}

// Contains reports whether the instant falls inside the validity window.
func (r ExchangeRate) Contains(at time.Time) bool {
	if at.Before(r.ValidFrom) {
		return false
	}
	if r.ValidUntil == nil {
		return true
	}
	return at.Before(*r.ValidUntil)
}

// Overlaps reports whether two validity windows for the same pair intersect.
// Windows are half-open, so [a, b) and [b, c) do not overlap.
func (r ExchangeRate) Overlaps(other ExchangeRate) bool {
	startsBeforeOtherEnds := other.ValidUntil == nil || r.ValidFrom.Before(*other.ValidUntil)
	otherStartsBeforeEnds := r.ValidUntil == nil || other.ValidFrom.Before(*r.ValidUntil)
	return startsBeforeOtherEnds && otherStartsBeforeEnds
}
