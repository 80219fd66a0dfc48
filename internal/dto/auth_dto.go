package dto

import "time"

// TokenRequest exchanges the shared service API key for a JWT.
type TokenRequest struct {
	ServiceName string `json:"serviceName" binding:"required"`
	APIKey      string `json:"apiKey" binding:"required"`
}

// TokenResponse carries the issued bearer token.
type TokenResponse struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
}
