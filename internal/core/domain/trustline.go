package domain

import "time"

// TrustlineKind is the kind of on-chain trustline operation being tracked.
type TrustlineKind string

const (
	TrustlineEstablish TrustlineKind = "establish"
	TrustlineUpdate    TrustlineKind = "update"
	TrustlineRemove    TrustlineKind = "remove"
)

// IsValid reports whether the kind is one of the known values.
func (k TrustlineKind) IsValid() bool {
	switch k {
	case TrustlineEstablish, TrustlineUpdate, TrustlineRemove:
		return true
	}
	return false
}

// TrustlineStatus is the lifecycle state of a trustline operation. The
// tracker records intent and observed outcome only; submission to the
// network happens elsewhere and results come back through transitions.
type TrustlineStatus string

const (
	TrustlineRequested TrustlineStatus = "REQUESTED"
	TrustlineSubmitted TrustlineStatus = "SUBMITTED"
	TrustlineConfirmed TrustlineStatus = "CONFIRMED"
	TrustlineFailed    TrustlineStatus = "FAILED"
)

var trustlineTransitions = map[TrustlineStatus][]TrustlineStatus{
	TrustlineRequested: {TrustlineSubmitted, TrustlineFailed},
	TrustlineSubmitted: {TrustlineConfirmed, TrustlineFailed},
}

// IsTerminal reports whether no further transition is permitted.
func (s TrustlineStatus) IsTerminal() bool {
	return s == TrustlineConfirmed || s == TrustlineFailed
}

// CanTransitionTo consults the transition table.
func (s TrustlineStatus) CanTransitionTo(next TrustlineStatus) bool {
	for _, allowed := range trustlineTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// TrustlineOperation tracks one establish/update/remove request for a
// wallet/asset pair. Same append-and-transition discipline as
// ConversionAudit: terminal records are never mutated.
type TrustlineOperation struct {
	OperationID     string          `json:"operationID"`
	WalletAddress   string          `json:"walletAddress"`
	AssetCode       string          `json:"assetCode"`
	AssetIssuer     string          `json:"assetIssuer,omitempty"`
	Kind            TrustlineKind   `json:"kind"`
	Status          TrustlineStatus `json:"status"`
	TransactionHash *string         `json:"transactionHash,omitempty"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	StatusChangedAt time.Time       `json:"statusChangedAt"`
	AuditFields
}
