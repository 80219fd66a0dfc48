package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ExchangeRate is the row shape of the exchange_rates table. The validity
// window is half-open; a NULL valid_until means the quote is open-ended.
type ExchangeRate struct {
	RateID           string          `json:"rateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	ValidFrom        time.Time       `json:"validFrom"`
	ValidUntil       *time.Time      `json:"validUntil"`
	AuditFields
}
