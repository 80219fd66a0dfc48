package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool

	JWTSecret         string
	JWTExpiryDuration time.Duration
	JWTIssuer         string

	// ServiceAPIKeyHash is the bcrypt hash the token endpoint checks
	// presented API keys against.
	ServiceAPIKeyHash string

	HorizonURL       string
	StellarSignerURL string

	// TrustlinePolicy is "auto" or "reject": what to do when a conversion's
	// destination asset has no trustline on the wallet.
	TrustlinePolicy string
	// ConversionMaxWait bounds how long a conversion may stay non-terminal.
	ConversionMaxWait time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "1h")
	viper.SetDefault("JWT_ISSUER", "conversion-backend")
	viper.SetDefault("SERVICE_API_KEY_HASH", "")
	viper.SetDefault("HORIZON_URL", "https://horizon-testnet.stellar.org")
	viper.SetDefault("STELLAR_SIGNER_URL", "")
	viper.SetDefault("TRUSTLINE_POLICY", "auto")
	viper.SetDefault("CONVERSION_MAX_WAIT", "15m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION ('%s'). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration.String())
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.ServiceAPIKeyHash = viper.GetString("SERVICE_API_KEY_HASH")
	if cfg.ServiceAPIKeyHash == "" {
		log.Println("Warning: SERVICE_API_KEY_HASH not set. The token endpoint will reject all keys.")
	}

	cfg.HorizonURL = viper.GetString("HORIZON_URL")
	cfg.StellarSignerURL = viper.GetString("STELLAR_SIGNER_URL")
	if cfg.StellarSignerURL == "" {
		log.Println("Warning: STELLAR_SIGNER_URL not set. Trustline submission will fail.")
	}

	cfg.TrustlinePolicy = viper.GetString("TRUSTLINE_POLICY")
	switch cfg.TrustlinePolicy {
	case "auto", "reject":
	default:
		log.Printf("Warning: Invalid TRUSTLINE_POLICY ('%s'). Defaulting to auto.\n", cfg.TrustlinePolicy)
		cfg.TrustlinePolicy = "auto"
	}

	maxWaitStr := viper.GetString("CONVERSION_MAX_WAIT")
	maxWait, err := time.ParseDuration(maxWaitStr)
	if err != nil || maxWait <= 0 {
		maxWait = 15 * time.Minute
		log.Printf("Warning: Invalid value for CONVERSION_MAX_WAIT ('%s'). Defaulting to %s.\n", maxWaitStr, maxWait.String())
	}
	cfg.ConversionMaxWait = maxWait

	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	return cfg, nil
}
