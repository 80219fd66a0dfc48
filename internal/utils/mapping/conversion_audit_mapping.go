package mapping

import (
	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/afripay/conversion_backend/internal/models"
)

// ToModelConversionAudit converts a domain ConversionAudit to its row shape.
func ToModelConversionAudit(d domain.ConversionAudit) models.ConversionAudit {
	m := models.ConversionAudit{
		ConversionID:         d.ConversionID,
		IdempotencyKey:       d.IdempotencyKey,
		UserID:               d.UserID,
		WalletAddress:        d.WalletAddress,
		FromCurrencyCode:     d.FromCurrencyCode,
		ToCurrencyCode:       d.ToCurrencyCode,
		FromAmount:           d.FromAmount,
		ToAmount:             d.ToAmount,
		Rate:                 d.Rate,
		RateID:               d.RateID,
		FeeAmount:            d.FeeAmount,
		FeeCurrencyCode:      d.FeeCurrencyCode,
		Status:               string(d.Status),
		TransactionRef:       d.TransactionRef,
		TrustlineOperationID: d.TrustlineOperationID,
		Metadata:             d.Metadata,
		Deadline:             d.Deadline,
		AuditFields:          ToModelAuditFields(d.AuditFields),
	}
	if d.Provider != "" {
		provider := d.Provider
		m.Provider = &provider
	}
	if d.FailureReason != nil {
		reason := string(*d.FailureReason)
		m.FailureReason = &reason
	}
	if d.FailureDetail != "" {
		detail := d.FailureDetail
		m.FailureDetail = &detail
	}
	return m
}

// ToDomainConversionAudit converts a row to a domain ConversionAudit.
func ToDomainConversionAudit(m models.ConversionAudit) domain.ConversionAudit {
	d := domain.ConversionAudit{
		ConversionID:         m.ConversionID,
		IdempotencyKey:       m.IdempotencyKey,
		UserID:               m.UserID,
		WalletAddress:        m.WalletAddress,
		FromCurrencyCode:     m.FromCurrencyCode,
		ToCurrencyCode:       m.ToCurrencyCode,
		FromAmount:           m.FromAmount,
		ToAmount:             m.ToAmount,
		Rate:                 m.Rate,
		RateID:               m.RateID,
		FeeAmount:            m.FeeAmount,
		FeeCurrencyCode:      m.FeeCurrencyCode,
		Status:               domain.ConversionStatus(m.Status),
		TransactionRef:       m.TransactionRef,
		TrustlineOperationID: m.TrustlineOperationID,
		Metadata:             m.Metadata,
		Deadline:             m.Deadline,
		AuditFields:          ToDomainAuditFields(m.AuditFields),
	}
	if m.Provider != nil {
		d.Provider = *m.Provider
	}
	if m.FailureReason != nil {
		reason := domain.FailureReason(*m.FailureReason)
		d.FailureReason = &reason
	}
	if m.FailureDetail != nil {
		d.FailureDetail = *m.FailureDetail
	}
	return d
}
