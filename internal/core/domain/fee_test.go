package domain_test

import (
	"testing"

	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimalPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func TestFeeStructure_ComputeFee(t *testing.T) {
	// 1% with min 1.00 and max 50.00
	clamped := domain.FeeStructure{
		FeeType: domain.FeeExchange,
		RateBps: 100,
		FlatFee: decimal.Zero,
		MinFee:  decimalPtr(decimal.RequireFromString("1.00")),
		MaxFee:  decimalPtr(decimal.RequireFromString("50.00")),
	}

	tests := []struct {
		name      string
		structure domain.FeeStructure
		amount    string
		want      string
	}{
		{"raw fee above max is clamped down", clamped, "10000", "50.00"},
		{"raw fee below min is raised", clamped, "50", "1.00"},
		{"raw fee inside bounds is untouched", clamped, "500", "5"},
		{
			"flat component added to percentage",
			domain.FeeStructure{RateBps: 50, FlatFee: decimal.RequireFromString("2.50")},
			"1000",
			"7.50",
		},
		{
			"zero bps charges flat only",
			domain.FeeStructure{RateBps: 0, FlatFee: decimal.RequireFromString("3")},
			"999999",
			"3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.structure.ComputeFee(decimal.RequireFromString(tt.amount))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)),
				"got %s, want %s", got.String(), tt.want)
		})
	}
}

func TestFeeStructure_ComputeFee_MonotonicInAmount(t *testing.T) {
	structure := domain.FeeStructure{
		RateBps: 125,
		FlatFee: decimal.RequireFromString("0.30"),
		MinFee:  decimalPtr(decimal.RequireFromString("0.50")),
		MaxFee:  decimalPtr(decimal.RequireFromString("200")),
	}

	prev := decimal.Zero
	for _, amount := range []string{"1", "10", "100", "1000", "10000", "100000"} {
		fee := structure.ComputeFee(decimal.RequireFromString(amount))
		assert.True(t, fee.GreaterThanOrEqual(prev), "fee must be non-decreasing in amount")
		prev = fee
	}
}
