package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	// Application
	AppEnv   string
	LogLevel string

	// Database
	DatabaseURL string

	// Redis
	RedisURL string

	// Payments
	RabbitMQURL   string
	PaymentsQueue string
	WebhookSecret string

	// HTTP
	APIAddr          string
	WorkerHealthAddr string

	// Quotas
	QuotaFreeDaily int
	QuotaProDaily  int
	PlanDuration   time.Duration
	TierCacheTTL   time.Duration

	// Membership
	RequiredGroups            []string
	MembershipAPIURL          string
	MembershipBotToken        string
	MembershipTimeout         time.Duration
	MembershipBreakerFailures int
	MembershipBreakerTimeout  time.Duration

	// Observability
	MetricsEnabled bool
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DatabaseURL: getEnv("DATABASE_URL", ""),
		RedisURL:    getEnv("REDIS_URL", ""),

		RabbitMQURL:   getEnv("RABBITMQ_URL", ""),
		PaymentsQueue: getEnv("PAYMENTS_QUEUE", "reelgate.payments"),
		WebhookSecret: getEnv("PAYMENTS_WEBHOOK_SECRET", ""),

		APIAddr:          getEnv("API_ADDR", "0.0.0.0:8080"),
		WorkerHealthAddr: getEnv("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		QuotaFreeDaily: getIntEnv("QUOTA_FREE_DAILY", 3),
		QuotaProDaily:  getIntEnv("QUOTA_PRO_DAILY", 50),
		PlanDuration:   getDurationEnv("PLAN_DURATION", 30*24*time.Hour),
		TierCacheTTL:   getDurationEnv("TIER_CACHE_TTL", time.Minute),

		RequiredGroups:            getListEnv("REQUIRED_GROUPS"),
		MembershipAPIURL:          getEnv("MEMBERSHIP_API_URL", "https://api.telegram.org"),
		MembershipBotToken:        getEnv("MEMBERSHIP_BOT_TOKEN", ""),
		MembershipTimeout:         getDurationEnv("MEMBERSHIP_TIMEOUT", 3*time.Second),
		MembershipBreakerFailures: getIntEnv("MEMBERSHIP_BREAKER_FAILURES", 5),
		MembershipBreakerTimeout:  getDurationEnv("MEMBERSHIP_BREAKER_TIMEOUT", 30*time.Second),

		MetricsEnabled: getBoolEnv("METRICS_ENABLED", true),
	}

	return cfg, nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// LocalMode reports whether the zero-config SQLite database is in use.
func (c *Config) LocalMode() bool {
	return c.DatabaseURL == "" ||
		!(strings.HasPrefix(c.DatabaseURL, "postgres://") || strings.HasPrefix(c.DatabaseURL, "postgresql://"))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

// getListEnv splits a comma-separated value, dropping blanks.
func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
