package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnvVars clears all reelgate-related environment variables.
func clearEnvVars() {
	envVars := []string{
		"APP_ENV", "LOG_LEVEL", "DATABASE_URL", "REDIS_URL",
		"RABBITMQ_URL", "PAYMENTS_QUEUE", "PAYMENTS_WEBHOOK_SECRET", "API_ADDR", "WORKER_HEALTH_ADDR",
		"QUOTA_FREE_DAILY", "QUOTA_PRO_DAILY", "PLAN_DURATION", "TIER_CACHE_TTL",
		"REQUIRED_GROUPS", "MEMBERSHIP_API_URL", "MEMBERSHIP_BOT_TOKEN",
		"MEMBERSHIP_TIMEOUT", "MEMBERSHIP_BREAKER_FAILURES", "MEMBERSHIP_BREAKER_TIMEOUT",
		"METRICS_ENABLED",
	}
	for _, v := range envVars {
		os.Unsetenv(v)
	}
}

func TestLoad_DefaultValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	cfg, err := Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.True(t, cfg.LocalMode())
	assert.Equal(t, "reelgate.payments", cfg.PaymentsQueue)
	assert.Empty(t, cfg.WebhookSecret)
	assert.Equal(t, "0.0.0.0:8080", cfg.APIAddr)
	assert.Equal(t, "0.0.0.0:8081", cfg.WorkerHealthAddr)

	assert.Equal(t, 3, cfg.QuotaFreeDaily)
	assert.Equal(t, 50, cfg.QuotaProDaily)
	assert.Equal(t, 720*time.Hour, cfg.PlanDuration)
	assert.Equal(t, time.Minute, cfg.TierCacheTTL)

	assert.Nil(t, cfg.RequiredGroups)
	assert.Equal(t, 3*time.Second, cfg.MembershipTimeout)
	assert.Equal(t, 5, cfg.MembershipBreakerFailures)
	assert.Equal(t, 30*time.Second, cfg.MembershipBreakerTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://reelgate@localhost/reelgate")
	t.Setenv("QUOTA_FREE_DAILY", "5")
	t.Setenv("QUOTA_PRO_DAILY", "100")
	t.Setenv("PLAN_DURATION", "48h")
	t.Setenv("REQUIRED_GROUPS", " @channel_one, -100123 ,,")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("PAYMENTS_WEBHOOK_SECRET", "s3cret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.LocalMode())
	assert.Equal(t, 5, cfg.QuotaFreeDaily)
	assert.Equal(t, 100, cfg.QuotaProDaily)
	assert.Equal(t, 48*time.Hour, cfg.PlanDuration)
	assert.Equal(t, []string{"@channel_one", "-100123"}, cfg.RequiredGroups)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "s3cret", cfg.WebhookSecret)
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	clearEnvVars()
	defer clearEnvVars()

	t.Setenv("QUOTA_FREE_DAILY", "three")
	t.Setenv("MEMBERSHIP_TIMEOUT", "soon")
	t.Setenv("METRICS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.QuotaFreeDaily)
	assert.Equal(t, 3*time.Second, cfg.MembershipTimeout)
	assert.True(t, cfg.MetricsEnabled)
}

func TestLocalMode_SQLitePath(t *testing.T) {
	cfg := &Config{DatabaseURL: "/var/lib/reelgate/data.db"}
	assert.True(t, cfg.LocalMode())
}
