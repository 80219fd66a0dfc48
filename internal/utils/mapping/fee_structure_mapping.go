package mapping

import (
	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/afripay/conversion_backend/internal/models"
)

// ToModelFeeStructure converts a domain FeeStructure to its row shape.
func ToModelFeeStructure(d domain.FeeStructure) models.FeeStructure {
	m := models.FeeStructure{
		FeeID:          d.FeeID,
		FeeType:        string(d.FeeType),
		RateBps:        d.RateBps,
		FlatFee:        d.FlatFee,
		MinFee:         d.MinFee,
		MaxFee:         d.MaxFee,
		IsActive:       d.IsActive,
		EffectiveFrom:  d.EffectiveFrom,
		EffectiveUntil: d.EffectiveUntil,
		Metadata:       d.Metadata,
		AuditFields:    ToModelAuditFields(d.AuditFields),
	}
	if d.CurrencyCode != "" {
		currency := d.CurrencyCode
		m.CurrencyCode = &currency
	}
	return m
}

// ToDomainFeeStructure converts a row to a domain FeeStructure.
func ToDomainFeeStructure(m models.FeeStructure) domain.FeeStructure {
	d := domain.FeeStructure{
		FeeID:          m.FeeID,
		FeeType:        domain.FeeType(m.FeeType),
		RateBps:        m.RateBps,
		FlatFee:        m.FlatFee,
		MinFee:         m.MinFee,
		MaxFee:         m.MaxFee,
		IsActive:       m.IsActive,
		EffectiveFrom:  m.EffectiveFrom,
		EffectiveUntil: m.EffectiveUntil,
		Metadata:       m.Metadata,
		AuditFields:    ToDomainAuditFields(m.AuditFields),
	}
	if m.CurrencyCode != nil {
		d.CurrencyCode = *m.CurrencyCode
	}
	return d
}
