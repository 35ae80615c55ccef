package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("DB_HOST", "")
	t.Setenv("TOKEN_EXPIRY", "")
	t.Setenv("RATE_LIMIT_RPS", "")
	t.Setenv("ALERTS_ENABLED", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "localhost", cfg.DBHost)
	assert.Equal(t, 24*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 5.0, cfg.RateLimitRPS)
	assert.False(t, cfg.AlertsEnabled)
	assert.Contains(t, cfg.DSN(), "host=localhost")
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("TOKEN_EXPIRY", "2h")
	t.Setenv("SMTP_PORT", "2525")
	t.Setenv("ALERTS_ENABLED", "true")
	t.Setenv("ANOMALY_WINDOW", "6")
	t.Setenv("EXPLAIN_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 2525, cfg.SMTPPort)
	assert.True(t, cfg.AlertsEnabled)
	assert.Equal(t, 6, cfg.AnomalyWindow)
	assert.Equal(t, 3*time.Second, cfg.ExplainTimeout)
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	t.Setenv("SMTP_PORT", "smtp")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "SMTP_PORT")
}
