package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool

	JWTSecret string
	JWTIssuer string

	// AuditAPIKey enables the external audit sink; empty disables it.
	AuditAPIKey string

	// Rate limit applied to the mutating billing adjustment routes.
	AdjustmentRateLimit       int64
	AdjustmentRateLimitPeriod time.Duration
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "timesheet-backend")
	viper.SetDefault("AUDIT_POSTHOG_API_KEY", "")
	viper.SetDefault("ADJUSTMENT_RATE_LIMIT", 30)
	viper.SetDefault("ADJUSTMENT_RATE_LIMIT_PERIOD", "1m")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.AuditAPIKey = viper.GetString("AUDIT_POSTHOG_API_KEY")

	cfg.AdjustmentRateLimit = viper.GetInt64("ADJUSTMENT_RATE_LIMIT")
	periodStr := viper.GetString("ADJUSTMENT_RATE_LIMIT_PERIOD")
	period, err := time.ParseDuration(periodStr)
	if err != nil {
		period = time.Minute
		log.Printf("Warning: Invalid value for ADJUSTMENT_RATE_LIMIT_PERIOD ('%s'). Defaulting to %s.\n", periodStr, period)
	}
	cfg.AdjustmentRateLimitPeriod = period

	return cfg, nil
}
