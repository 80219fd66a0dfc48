package mapping

import (
	"github.com/afripay/conversion_backend/internal/core/domain"
	"github.com/afripay/conversion_backend/internal/models"
)

// ToModelTrustlineOperation converts a domain TrustlineOperation to its row shape.
func ToModelTrustlineOperation(d domain.TrustlineOperation) models.TrustlineOperation {
	m := models.TrustlineOperation{
		OperationID:     d.OperationID,
		WalletAddress:   d.WalletAddress,
		AssetCode:       d.AssetCode,
		Kind:            string(d.Kind),
		Status:          string(d.Status),
		TransactionHash: d.TransactionHash,
		Metadata:        d.Metadata,
		StatusChangedAt: d.StatusChangedAt,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
	if d.AssetIssuer != "" {
		issuer := d.AssetIssuer
		m.AssetIssuer = &issuer
	}
	if d.ErrorMessage != "" {
		msg := d.ErrorMessage
		m.ErrorMessage = &msg
	}
	return m
}

// ToDomainTrustlineOperation converts a row to a domain TrustlineOperation.
func ToDomainTrustlineOperation(m models.TrustlineOperation) domain.TrustlineOperation {
	d := domain.TrustlineOperation{
		OperationID:     m.OperationID,
		WalletAddress:   m.WalletAddress,
		AssetCode:       m.AssetCode,
		Kind:            domain.TrustlineKind(m.Kind),
		Status:          domain.TrustlineStatus(m.Status),
		TransactionHash: m.TransactionHash,
		Metadata:        m.Metadata,
		StatusChangedAt: m.StatusChangedAt,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
	if m.AssetIssuer != nil {
		d.AssetIssuer = *m.AssetIssuer
	}
	if m.ErrorMessage != nil {
		d.ErrorMessage = *m.ErrorMessage
	}
	return d
}
