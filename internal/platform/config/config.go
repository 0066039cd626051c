package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/propledger/ledgercore/internal/core/domain"
)

const insecureJWTSecret = "a-very-secret-key-should-be-longer-and-random"

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string

	// Event worker
	WorkerConcurrency   int
	WorkerPollInterval  time.Duration
	WorkerBatchSize     int
	EventMaxAttempts    int
	EventRetryBaseDelay time.Duration

	// Budget alerts, in percent of the budgeted amount
	BudgetWarningThreshold decimal.Decimal
	BudgetDangerThreshold  decimal.Decimal

	RateLimit           string // ulule/limiter format, e.g. "100-M"
	CORSAllowedOrigins  []string
	DefaultMappingsFile string // optional override of the embedded concept table
	MigrationsPath      string
	AccountCacheTTL     time.Duration
}

// AlertThresholds returns the configured budget alert thresholds.
func (c *Config) AlertThresholds() domain.AlertThresholds {
	return domain.AlertThresholds{Warning: c.BudgetWarningThreshold, Danger: c.BudgetDangerThreshold}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("JWT_SECRET", insecureJWTSecret)
	v.SetDefault("WORKER_CONCURRENCY", 4)
	v.SetDefault("WORKER_POLL_INTERVAL", "1s")
	v.SetDefault("WORKER_BATCH_SIZE", 20)
	v.SetDefault("EVENT_MAX_ATTEMPTS", 8)
	v.SetDefault("EVENT_RETRY_BASE_DELAY", "2s")
	v.SetDefault("BUDGET_WARNING_THRESHOLD", "10")
	v.SetDefault("BUDGET_DANGER_THRESHOLD", "25")
	v.SetDefault("RATE_LIMIT", "100-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("DEFAULT_MAPPINGS_FILE", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("ACCOUNT_CACHE_TTL", "5m")
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	return Load(v)
}

// Load reads configuration from v, applying defaults for unset keys.
func Load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	cfg := &Config{
		DatabaseURL:         v.GetString("PGSQL_URL"),
		Port:                v.GetString("PORT"),
		IsProduction:        v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:       v.GetBool("ENABLE_DB_CHECK"),
		JWTSecret:           v.GetString("JWT_SECRET"),
		WorkerConcurrency:   v.GetInt("WORKER_CONCURRENCY"),
		WorkerBatchSize:     v.GetInt("WORKER_BATCH_SIZE"),
		EventMaxAttempts:    v.GetInt("EVENT_MAX_ATTEMPTS"),
		RateLimit:           v.GetString("RATE_LIMIT"),
		DefaultMappingsFile: v.GetString("DEFAULT_MAPPINGS_FILE"),
		MigrationsPath:      v.GetString("MIGRATIONS_PATH"),
	}

	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	if cfg.JWTSecret == "" || cfg.JWTSecret == insecureJWTSecret {
		if cfg.IsProduction {
			return nil, fmt.Errorf("JWT_SECRET must be set in production")
		}
		cfg.JWTSecret = insecureJWTSecret // !! CHANGE IN PRODUCTION !!
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	var err error
	if cfg.WorkerPollInterval, err = duration(v, "WORKER_POLL_INTERVAL"); err != nil {
		return nil, err
	}
	if cfg.EventRetryBaseDelay, err = duration(v, "EVENT_RETRY_BASE_DELAY"); err != nil {
		return nil, err
	}
	if cfg.AccountCacheTTL, err = duration(v, "ACCOUNT_CACHE_TTL"); err != nil {
		return nil, err
	}
	if cfg.BudgetWarningThreshold, err = percent(v, "BUDGET_WARNING_THRESHOLD"); err != nil {
		return nil, err
	}
	if cfg.BudgetDangerThreshold, err = percent(v, "BUDGET_DANGER_THRESHOLD"); err != nil {
		return nil, err
	}
	if cfg.BudgetDangerThreshold.LessThan(cfg.BudgetWarningThreshold) {
		return nil, fmt.Errorf("BUDGET_DANGER_THRESHOLD (%s) must not be below BUDGET_WARNING_THRESHOLD (%s)",
			cfg.BudgetDangerThreshold, cfg.BudgetWarningThreshold)
	}

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}
	return cfg, nil
}

func duration(v *viper.Viper, key string) (time.Duration, error) {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("invalid value for %s ('%s'): must be a positive duration", key, raw)
	}
	return d, nil
}

func percent(v *viper.Viper, key string) (decimal.Decimal, error) {
	raw := v.GetString(key)
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid value for %s ('%s'): must be a non-negative number", key, raw)
	}
	return d, nil
}
