package mapping

import (
	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/afripay/conversion_backend/internal/models"
)

// ToModelExchangeRate converts a domain ExchangeRate to its row shape.
func ToModelExchangeRate(d domain.ExchangeRate) models.ExchangeRate {
	return models.ExchangeRate{
		RateID:           d.RateID,
		FromCurrencyCode: d.FromCurrencyCode,
		ToCurrencyCode:   d.ToCurrencyCode,
		Rate:             d.Rate,
		ValidFrom:        d.ValidFrom,
		ValidUntil:       d.ValidUntil,
		AuditFields:      ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainExchangeRate converts a row to a domain ExchangeRate.
func ToDomainExchangeRate(m models.ExchangeRate) domain.ExchangeRate {
	return domain.ExchangeRate{
		RateID:           m.RateID,
		FromCurrencyCode: m.FromCurrencyCode,
		ToCurrencyCode:   m.ToCurrencyCode,
		Rate:             m.Rate,
		ValidFrom:        m.ValidFrom,
		ValidUntil:       m.ValidUntil,
		AuditFields:      ToDomainAuditFields(m.AuditFields),
	}
}
