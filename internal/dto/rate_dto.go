package dto

import (
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateRateRequest defines the payload for ingesting a new rate window.
type CreateRateRequest struct {
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,currencycode"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,currencycode"`
	Rate             decimal.Decimal `json:"rate" binding:"required"`
	ValidFrom        time.Time       `json:"validFrom" binding:"required"`
	ValidUntil       *time.Time      `json:"validUntil,omitempty"` // nil = open-ended
}

// RateResponse defines API responses containing a rate window.
type RateResponse struct {
	RateID           string          `json:"rateID"`
	FromCurrencyCode string          `json:"fromCurrencyCode"`
	ToCurrencyCode   string          `json:"toCurrencyCode"`
	Rate             decimal.Decimal `json:"rate"`
	ValidFrom        time.Time       `json:"validFrom"`
	ValidUntil       *time.Time      `json:"validUntil,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	CreatedBy        string          `json:"createdBy"`
}

// ToRateResponse maps a domain rate to its response shape.
func ToRateResponse(r *domain.ExchangeRate) RateResponse {
	return RateResponse{
		RateID:           r.RateID,
		FromCurrencyCode: r.FromCurrencyCode,
		ToCurrencyCode:   r.ToCurrencyCode,
		Rate:             r.Rate,
		ValidFrom:        r.ValidFrom,
		ValidUntil:       r.ValidUntil,
		CreatedAt:        r.CreatedAt,
		CreatedBy:        r.CreatedBy,
	}
}

// ToRateResponses maps a slice of domain rates.
func ToRateResponses(rates []domain.ExchangeRate) []RateResponse {
	out := make([]RateResponse, len(rates))
	for i := range rates {
		out[i] = ToRateResponse(&rates[i])
	}
	return out
}
