package dto

import (
	"time"

	"github.com/afripay/conversion_backend/internal/core/domain"
)

// RequestTrustlineRequest defines the payload for tracking a new trustline
// operation.
type RequestTrustlineRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	AssetCode     string `json:"assetCode" binding:"required"`
	AssetIssuer   string `json:"assetIssuer,omitempty"`
	Kind          string `json:"kind" binding:"required,oneof=establish update remove"`
}

// TransitionTrustlineRequest defines the payload for a trustline status
// callback. Expected status makes the update compare-and-set.
type TransitionTrustlineRequest struct {
	ExpectedStatus  string  `json:"expectedStatus" binding:"required"`
	NextStatus      string  `json:"nextStatus" binding:"required"`
	TransactionHash *string `json:"transactionHash,omitempty"`
	ErrorMessage    string  `json:"errorMessage,omitempty"`
}

// TrustlineOperationResponse defines API responses containing an operation.
type TrustlineOperationResponse struct {
	OperationID     string    `json:"operationID"`
	WalletAddress   string    `json:"walletAddress"`
	AssetCode       string    `json:"assetCode"`
	AssetIssuer     string    `json:"assetIssuer,omitempty"`
	Kind            string    `json:"kind"`
	Status          string    `json:"status"`
	TransactionHash *string   `json:"transactionHash,omitempty"`
	ErrorMessage    string    `json:"errorMessage,omitempty"`
	StatusChangedAt time.Time `json:"statusChangedAt"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToTrustlineOperationResponse maps a domain operation to its response shape.
func ToTrustlineOperationResponse(op *domain.TrustlineOperation) TrustlineOperationResponse {
	return TrustlineOperationResponse{
		OperationID:     op.OperationID,
		WalletAddress:   op.WalletAddress,
		AssetCode:       op.AssetCode,
		AssetIssuer:     op.AssetIssuer,
		Kind:            string(op.Kind),
		Status:          string(op.Status),
		TransactionHash: op.TransactionHash,
		ErrorMessage:    op.ErrorMessage,
		StatusChangedAt: op.StatusChangedAt,
		CreatedAt:       op.CreatedAt,
	}
}

// ToTrustlineOperationResponses maps a slice of operations.
func ToTrustlineOperationResponses(ops []domain.TrustlineOperation) []TrustlineOperationResponse {
	out := make([]TrustlineOperationResponse, len(ops))
	for i := range ops {
		out[i] = ToTrustlineOperationResponse(&ops[i])
	}
	return out
}
