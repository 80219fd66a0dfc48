package dto

import (
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/shopspring/decimal"
)

// StartConversionRequest defines the payload to start a conversion. The
// idempotency key is caller-supplied so legitimate repeat amounts are not
// deduplicated by content.
type StartConversionRequest struct {
	IdempotencyKey   string          `json:"idempotencyKey" binding:"required"`
	UserID           string          `json:"userID" binding:"required,uuid"`
	WalletAddress    string          `json:"walletAddress" binding:"required"`
	FromCurrencyCode string          `json:"fromCurrencyCode" binding:"required,currencycode"`
	ToCurrencyCode   string          `json:"toCurrencyCode" binding:"required,currencycode"`
	FromAmount       decimal.Decimal `json:"fromAmount" binding:"required"`
	FeeType          string          `json:"feeType,omitempty"` // defaults to exchange
	Provider         string          `json:"provider,omitempty"`
	AssetIssuer      string          `json:"assetIssuer,omitempty"`
	Metadata         map[string]any  `json:"metadata,omitempty"`
}

// FailConversionRequest defines the payload for the failure callback.
type FailConversionRequest struct {
	Reason string `json:"reason" binding:"required"`
	Detail string `json:"detail,omitempty"`
}

// MarkSubmittedRequest carries the blockchain submission reference.
type MarkSubmittedRequest struct {
	TransactionRef string `json:"transactionRef" binding:"required"`
}

// ListConversionsRequest defines the query parameters for ledger queries.
type ListConversionsRequest struct {
	UserID        string     `form:"userID" binding:"omitempty,uuid"`
	WalletAddress string     `form:"walletAddress"`
	Status        string     `form:"status"`
	CreatedAfter  *time.Time `form:"createdAfter" time_format:"2006-01-02T15:04:05Z07:00"`
	CreatedBefore *time.Time `form:"createdBefore" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit         int        `form:"limit,default=50" binding:"omitempty,min=1,max=500"`
	PageToken     string     `form:"pageToken"`
}

// ConversionResponse defines API responses containing an audit record.
// In-flight records report elapsed time since creation; terminal failures
// report the recorded reason verbatim. No ETA is ever fabricated.
type ConversionResponse struct {
	ConversionID         string          `json:"conversionID"`
	IdempotencyKey       string          `json:"idempotencyKey"`
	UserID               string          `json:"userID"`
	WalletAddress        string          `json:"walletAddress"`
	FromCurrencyCode     string          `json:"fromCurrencyCode"`
	ToCurrencyCode       string          `json:"toCurrencyCode"`
	FromAmount           decimal.Decimal `json:"fromAmount"`
	ToAmount             decimal.Decimal `json:"toAmount"`
	Rate                 decimal.Decimal `json:"rate"`
	FeeAmount            decimal.Decimal `json:"feeAmount"`
	FeeCurrencyCode      string          `json:"feeCurrencyCode"`
	Provider             string          `json:"provider,omitempty"`
	Status               string          `json:"status"`
	FailureReason        string          `json:"failureReason,omitempty"`
	FailureDetail        string          `json:"failureDetail,omitempty"`
	TransactionRef       *string         `json:"transactionRef,omitempty"`
	TrustlineOperationID *string         `json:"trustlineOperationID,omitempty"`
	Metadata             map[string]any  `json:"metadata,omitempty"`
	CreatedAt            time.Time       `json:"createdAt"`
	ElapsedSeconds       *int64          `json:"elapsedSeconds,omitempty"` // in-flight records only
}

// ListConversionsResponse wraps a page of audit records.
type ListConversionsResponse struct {
	Conversions   []ConversionResponse `json:"conversions"`
	NextPageToken string               `json:"nextPageToken,omitempty"`
}

// ToConversionResponse maps a domain audit record to its response shape.
func ToConversionResponse(c *domain.ConversionAudit, now time.Time) ConversionResponse {
	resp := ConversionResponse{
		ConversionID:         c.ConversionID,
		IdempotencyKey:       c.IdempotencyKey,
		UserID:               c.UserID,
		WalletAddress:        c.WalletAddress,
		FromCurrencyCode:     c.FromCurrencyCode,
		ToCurrencyCode:       c.ToCurrencyCode,
		FromAmount:           c.FromAmount,
		ToAmount:             c.ToAmount,
		Rate:                 c.Rate,
		FeeAmount:            c.FeeAmount,
		FeeCurrencyCode:      c.FeeCurrencyCode,
		Provider:             c.Provider,
		Status:               string(c.Status),
		FailureDetail:        c.FailureDetail,
		TransactionRef:       c.TransactionRef,
		TrustlineOperationID: c.TrustlineOperationID,
		Metadata:             c.Metadata,
		CreatedAt:            c.CreatedAt,
	}
	if c.FailureReason != nil {
		resp.FailureReason = string(*c.FailureReason)
	}
	if !c.Status.IsTerminal() {
		elapsed := int64(now.Sub(c.CreatedAt).Seconds())
		resp.ElapsedSeconds = &elapsed
	}
	return resp
}

// ToConversionResponses maps a slice of audit records.
func ToConversionResponses(records []domain.ConversionAudit, now time.Time) []ConversionResponse {
	out := make([]ConversionResponse, len(records))
	for i := range records {
		out[i] = ToConversionResponse(&records[i], now)
	}
	return out
}
