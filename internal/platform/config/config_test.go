package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 4, cfg.WorkerConcurrency)
	assert.Equal(t, time.Second, cfg.WorkerPollInterval)
	assert.Equal(t, 2*time.Second, cfg.EventRetryBaseDelay)
	assert.Equal(t, 8, cfg.EventMaxAttempts)
	assert.True(t, decimal.NewFromInt(10).Equal(cfg.BudgetWarningThreshold))
	assert.True(t, decimal.NewFromInt(25).Equal(cfg.BudgetDangerThreshold))
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "file://migrations", cfg.MigrationsPath)
	assert.Equal(t, insecureJWTSecret, cfg.JWTSecret)
}

func TestLoadOverrides(t *testing.T) {
	v := viper.New()
	v.Set("PORT", "9090")
	v.Set("WORKER_CONCURRENCY", 16)
	v.Set("WORKER_POLL_INTERVAL", "250ms")
	v.Set("BUDGET_WARNING_THRESHOLD", "5.5")
	v.Set("BUDGET_DANGER_THRESHOLD", "40")
	v.Set("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	v.Set("JWT_SECRET", "s3cret")

	cfg, err := Load(v)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, 16, cfg.WorkerConcurrency)
	assert.Equal(t, 250*time.Millisecond, cfg.WorkerPollInterval)
	assert.Equal(t, "5.5", cfg.AlertThresholds().Warning.String())
	assert.Equal(t, "40", cfg.AlertThresholds().Danger.String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]map[string]any{
		"bad duration":        {"WORKER_POLL_INTERVAL": "soon"},
		"negative threshold":  {"BUDGET_WARNING_THRESHOLD": "-1"},
		"danger below warn":   {"BUDGET_WARNING_THRESHOLD": "30", "BUDGET_DANGER_THRESHOLD": "20"},
		"insecure production": {"IS_PRODUCTION": true},
	}
	for name, values := range cases {
		t.Run(name, func(t *testing.T) {
			v := viper.New()
			for k, val := range values {
				v.Set(k, val)
			}
			_, err := Load(v)
			assert.Error(t, err)
		})
	}
}
