package dto

import (
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateFeeStructureRequest defines the payload for creating a fee structure.
type CreateFeeStructureRequest struct {
	FeeType        string           `json:"feeType" binding:"required"`
	RateBps        int32            `json:"rateBps" binding:"gte=0"`
	FlatFee        decimal.Decimal  `json:"flatFee"`
	MinFee         *decimal.Decimal `json:"minFee,omitempty"`
	MaxFee         *decimal.Decimal `json:"maxFee,omitempty"`
	CurrencyCode   string           `json:"currencyCode,omitempty" binding:"omitempty,currencycode"`
	EffectiveFrom  time.Time        `json:"effectiveFrom" binding:"required"`
	EffectiveUntil *time.Time       `json:"effectiveUntil,omitempty"`
	Metadata       map[string]any   `json:"metadata,omitempty"`
}

// CalculateFeeRequest defines the payload for a fee quote.
type CalculateFeeRequest struct {
	FeeType string          `json:"feeType" binding:"required"`
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	At      *time.Time      `json:"at,omitempty"` // defaults to now
}

// FeeQuoteResponse defines the response for a fee quote.
type FeeQuoteResponse struct {
	Fee          decimal.Decimal  `json:"fee"`
	RateBps      int32            `json:"rateBps"`
	FlatFee      decimal.Decimal  `json:"flatFee"`
	MinFee       *decimal.Decimal `json:"minFee,omitempty"`
	MaxFee       *decimal.Decimal `json:"maxFee,omitempty"`
	CurrencyCode string           `json:"currencyCode,omitempty"`
	FeeID        string           `json:"feeID"`
}

// FeeStructureResponse defines API responses containing a fee structure.
type FeeStructureResponse struct {
	FeeID          string           `json:"feeID"`
	FeeType        string           `json:"feeType"`
	RateBps        int32            `json:"rateBps"`
	FlatFee        decimal.Decimal  `json:"flatFee"`
	MinFee         *decimal.Decimal `json:"minFee,omitempty"`
	MaxFee         *decimal.Decimal `json:"maxFee,omitempty"`
	CurrencyCode   string           `json:"currencyCode,omitempty"`
	IsActive       bool             `json:"isActive"`
	EffectiveFrom  time.Time        `json:"effectiveFrom"`
	EffectiveUntil *time.Time       `json:"effectiveUntil,omitempty"`
	CreatedAt      time.Time        `json:"createdAt"`
}

// ToFeeQuoteResponse maps a domain fee quote to its response shape.
func ToFeeQuoteResponse(q *domain.FeeQuote) FeeQuoteResponse {
	return FeeQuoteResponse{
		Fee:          q.Fee,
		RateBps:      q.RateBps,
		FlatFee:      q.FlatFee,
		MinFee:       q.MinFee,
		MaxFee:       q.MaxFee,
		CurrencyCode: q.CurrencyCode,
		FeeID:        q.FeeID,
	}
}

// ToFeeStructureResponse maps a domain fee structure to its response shape.
func ToFeeStructureResponse(f *domain.FeeStructure) FeeStructureResponse {
	return FeeStructureResponse{
		FeeID:          f.FeeID,
		FeeType:        string(f.FeeType),
		RateBps:        f.RateBps,
		FlatFee:        f.FlatFee,
		MinFee:         f.MinFee,
		MaxFee:         f.MaxFee,
		CurrencyCode:   f.CurrencyCode,
		IsActive:       f.IsActive,
		EffectiveFrom:  f.EffectiveFrom,
		EffectiveUntil: f.EffectiveUntil,
		CreatedAt:      f.CreatedAt,
	}
}

// ToFeeStructureResponses maps a slice of domain fee structures.
func ToFeeStructureResponses(structures []domain.FeeStructure) []FeeStructureResponse {
	out := make([]FeeStructureResponse, len(structures))
	for i := range structures {
		out[i] = ToFeeStructureResponse(&structures[i])
	}
	return out
}
