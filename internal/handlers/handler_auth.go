package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/afripay/conversion_backend/internal/dto"
	"github.com/afripay/conversion_backend/internal/middleware"
	"github.com/afripay/conversion_backend/internal/platform/config"
	"github.com/afripay/conversion_backend/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// AuthHandler mints service-to-service JWTs. There are no human accounts:
// a caller presents its service name and the shared API key, and gets a
// bearer token whose subject is the service name.
type AuthHandler struct {
	apiKeyHash  string
	jwtSecret   string
	jwtIssuer   string
	jwtDuration time.Duration
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		apiKeyHash:  cfg.ServiceAPIKeyHash,
		jwtSecret:   cfg.JWTSecret,
		jwtIssuer:   cfg.JWTIssuer,
		jwtDuration: cfg.JWTExpiryDuration,
	}
}

// registerAuthRoutes sets up the routes for authentication.
func registerAuthRoutes(rg *gin.Engine, cfg *config.Config) {
	h := NewAuthHandler(cfg)

	// Token minting is rate limited to 5 requests per minute per IP.
	rate, _ := limiter.NewRateFromFormatted("5-M")
	ipLimiter := limiter.New(memory.NewStore(), rate)

	auth := rg.Group("/auth")
	{
		auth.POST("/token", middleware.RateLimit(ipLimiter), h.Token)
	}
}

// Token godoc
// @Summary Mint a service token
// @Description Exchanges a service API key for a JWT bearer token.
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body dto.TokenRequest true "Service credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.TokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body"})
		return
	}

	if h.apiKeyHash == "" || !utils.CheckAPIKeyHash(req.APIKey, h.apiKeyHash) {
		logger.Warn("Token request with invalid API key", slog.String("service", req.ServiceName))
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Invalid service credentials"})
		return
	}

	now := time.Now()
	expiresAt := now.Add(h.jwtDuration)
	claims := jwt.RegisteredClaims{
		Issuer:    h.jwtIssuer,
		Subject:   req.ServiceName,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		logger.Error("Failed to sign JWT token", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to generate token"})
		return
	}

	logger.Info("Service token issued", slog.String("service", req.ServiceName))
	c.JSON(http.StatusOK, dto.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}
