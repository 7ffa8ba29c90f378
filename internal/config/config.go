// Package config handles application configuration from environment variables
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string
	LogFmt   string // "text" or "json"

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Lifecycle windows
	TrialDays       int           // trial length granted at signup
	GraceDays       int           // days between blocking and permanent deletion
	RenewalTermDays int           // days added to next_due_date when a downgrade applies
	DedupWindow     time.Duration // minimum gap between identical notifications

	// Pass cadence
	BillingInterval   time.Duration // upcoming-due / downgrade / overdue pass
	RetentionInterval time.Duration // trial-expiry / warning / deletion pass

	// Renewal charges (disabled by default; see lifecycle.Engine)
	RenewalChargesEnabled bool

	// Payment gateway (Asaas)
	AsaasBaseURL string
	AsaasAPIKey  string

	// Mail relay
	MailerURL    string // transactional email endpoint (optional, logs only if unset)
	MailerAPIKey string

	// WhatsApp provider
	WAProviderURL   string
	WAProviderToken string
}

// Defaults
const (
	DefaultPort              = "8080"
	DefaultEnv               = "development"
	DefaultLogLevel          = "info"
	DefaultTrialDays         = 3
	DefaultGraceDays         = 20
	DefaultRenewalTermDays   = 30
	DefaultDedupWindow       = 12 * time.Hour
	DefaultBillingInterval   = time.Hour
	DefaultRetentionInterval = time.Hour
	DefaultAsaasBaseURL      = "https://api.asaas.com/v3"
)

// Load reads configuration from environment variables.
// It loads .env file if present (for local development).
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                  getEnv("PORT", DefaultPort),
		Env:                   getEnv("ENV", DefaultEnv),
		LogLevel:              getEnv("LOG_LEVEL", DefaultLogLevel),
		LogFmt:                getEnv("LOG_FORMAT", "text"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		TrialDays:             getEnvInt("TRIAL_DAYS", DefaultTrialDays),
		GraceDays:             getEnvInt("GRACE_DAYS", DefaultGraceDays),
		RenewalTermDays:       getEnvInt("RENEWAL_TERM_DAYS", DefaultRenewalTermDays),
		DedupWindow:           getEnvDuration("NOTIFICATION_DEDUP_WINDOW", DefaultDedupWindow),
		BillingInterval:       getEnvDuration("BILLING_PASS_INTERVAL", DefaultBillingInterval),
		RetentionInterval:     getEnvDuration("RETENTION_PASS_INTERVAL", DefaultRetentionInterval),
		RenewalChargesEnabled: getEnvBool("RENEWAL_CHARGES_ENABLED", false),
		AsaasBaseURL:          getEnv("ASAAS_BASE_URL", DefaultAsaasBaseURL),
		AsaasAPIKey:           os.Getenv("ASAAS_API_KEY"),
		MailerURL:             os.Getenv("MAILER_URL"),
		MailerAPIKey:          os.Getenv("MAILER_API_KEY"),
		WAProviderURL:         os.Getenv("WA_PROVIDER_URL"),
		WAProviderToken:       os.Getenv("WA_PROVIDER_TOKEN"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.TrialDays <= 0 {
		return fmt.Errorf("TRIAL_DAYS must be positive, got %d", c.TrialDays)
	}
	if c.GraceDays <= 0 {
		return fmt.Errorf("GRACE_DAYS must be positive, got %d", c.GraceDays)
	}
	if c.RenewalTermDays <= 0 {
		return fmt.Errorf("RENEWAL_TERM_DAYS must be positive, got %d", c.RenewalTermDays)
	}
	if c.DedupWindow <= 0 {
		return fmt.Errorf("NOTIFICATION_DEDUP_WINDOW must be positive, got %s", c.DedupWindow)
	}
	if c.BillingInterval < time.Minute || c.RetentionInterval < time.Minute {
		return fmt.Errorf("pass intervals must be at least 1m")
	}
	if c.RenewalChargesEnabled && c.AsaasAPIKey == "" {
		return fmt.Errorf("ASAAS_API_KEY is required when RENEWAL_CHARGES_ENABLED is set")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Grace returns the grace period as a duration.
func (c *Config) Grace() time.Duration {
	return time.Duration(c.GraceDays) * 24 * time.Hour
}

// RenewalTerm returns the renewal term as a duration.
func (c *Config) RenewalTerm() time.Duration {
	return time.Duration(c.RenewalTermDays) * 24 * time.Hour
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
