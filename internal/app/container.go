package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	accessApp "github.com/felixgeelhaar/reelgate/internal/access/application"
	accessDomain "github.com/felixgeelhaar/reelgate/internal/access/domain"
	catalogApp "github.com/felixgeelhaar/reelgate/internal/catalog/application"
	entitlementApp "github.com/felixgeelhaar/reelgate/internal/entitlement/application"
	membershipApp "github.com/felixgeelhaar/reelgate/internal/membership/application"
	membershipDomain "github.com/felixgeelhaar/reelgate/internal/membership/domain"
	membershipInfra "github.com/felixgeelhaar/reelgate/internal/membership/infrastructure"
	paymentsApp "github.com/felixgeelhaar/reelgate/internal/payments/application"
	quotaApp "github.com/felixgeelhaar/reelgate/internal/quota/application"
	quotaDomain "github.com/felixgeelhaar/reelgate/internal/quota/domain"
	quotaPersistence "github.com/felixgeelhaar/reelgate/internal/quota/infrastructure/persistence"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database/postgres"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database/sqlite"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/reelgate/pkg/config"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger
	Clock  sharedDomain.Clock

	// Database; exactly one of DB and SQLite is set.
	DBDriver database.Driver
	DB       *pgxpool.Pool
	SQLite   *sql.DB

	// Redis
	RedisClient *redis.Client

	// Observability
	Metrics    observability.Metrics
	Prometheus *observability.PrometheusMetrics
	Health     *observability.HealthRegistry

	// Publishers
	EventPublisher eventbus.Publisher

	// Infrastructure
	QuotaTracker      quotaDomain.Tracker
	MembershipChecker membershipDomain.Checker

	// Services
	Entitlements *entitlementApp.Service
	Quota        *quotaApp.Service
	Catalog      *catalogApp.Service
	Gate         *membershipApp.Gate
	Access       *accessApp.Service
	Payments     *paymentsApp.Service

	// Subscribers
	PurchaseSubscriber *paymentsApp.PurchaseSubscriber
}

// NewContainer connects to the configured stores and wires every service.
// An empty or non-PostgreSQL DATABASE_URL selects the local SQLite database.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Container{
		Config: cfg,
		Logger: logger,
		Clock:  sharedDomain.SystemClock{},
		Health: observability.NewHealthRegistry(),
	}

	if cfg.MetricsEnabled {
		c.Prometheus = observability.NewPrometheusMetrics("reelgate")
		c.Metrics = c.Prometheus
	} else {
		c.Metrics = observability.NoopMetrics{}
	}

	factory, err := c.openDatabase(ctx)
	if err != nil {
		return nil, err
	}

	if err := c.wire(ctx, factory); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) openDatabase(ctx context.Context) (*RepositoryFactory, error) {
	dbCfg := database.Config{URL: c.Config.DatabaseURL}
	if c.Config.LocalMode() {
		dbCfg.Driver = database.DriverSQLite
	}
	if err := dbCfg.Validate(); err != nil {
		return nil, err
	}
	c.DBDriver = dbCfg.ResolvedDriver()

	switch c.DBDriver {
	case database.DriverPostgres:
		pool, err := postgres.Open(ctx, dbCfg)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		c.DB = pool
		c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, pool.Ping))
		c.Logger.Info("connected to database", "driver", c.DBDriver.String())
		return NewPostgresRepositoryFactory(pool), nil

	case database.DriverSQLite:
		path := dbCfg.SQLitePath()
		db, err := sqlite.Open(ctx, path)
		if err != nil {
			return nil, err
		}
		if err := migrations.RunSQLiteMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		c.SQLite = db
		c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, db.PingContext))
		c.Logger.Info("connected to database", "driver", c.DBDriver.String(), "path", path)
		return NewSQLiteRepositoryFactory(db), nil

	default:
		return nil, fmt.Errorf("unsupported driver: %s", c.DBDriver)
	}
}

func (c *Container) wire(ctx context.Context, factory *RepositoryFactory) error {
	cfg := c.Config

	entitlementRepo, err := factory.EntitlementRepository()
	if err != nil {
		return err
	}
	catalogRepo, err := factory.CatalogRepository()
	if err != nil {
		return err
	}
	if c.QuotaTracker, err = c.quotaTracker(ctx, factory); err != nil {
		return err
	}
	if c.MembershipChecker, err = c.membershipChecker(); err != nil {
		return err
	}
	if c.EventPublisher, err = c.publisher(); err != nil {
		return err
	}

	c.Entitlements = entitlementApp.NewService(entitlementRepo, c.Clock, entitlementApp.Config{
		PlanDuration: cfg.PlanDuration,
		CacheTTL:     cfg.TierCacheTTL,
	}, c.Metrics, c.Logger)
	c.Quota = quotaApp.NewService(c.QuotaTracker, c.Clock, c.Logger)
	c.Catalog = catalogApp.NewService(catalogRepo, c.Logger)
	c.Gate = membershipApp.NewGate(c.MembershipChecker, cfg.RequiredGroups, c.Metrics, c.Logger)

	c.Access, err = accessApp.NewService(accessApp.Dependencies{
		Tiers:     c.Entitlements,
		Quota:     c.Quota,
		Catalog:   catalogRepo,
		Gate:      c.Gate,
		Ceilings:  &accessDomain.Ceilings{Free: cfg.QuotaFreeDaily, Pro: cfg.QuotaProDaily},
		Clock:     c.Clock,
		Publisher: c.EventPublisher,
		Metrics:   c.Metrics,
		Logger:    c.Logger,
	})
	if err != nil {
		return err
	}

	c.Payments = paymentsApp.NewService(c.Entitlements, c.Logger)
	c.PurchaseSubscriber = paymentsApp.NewPurchaseSubscriber(c.Payments, c.Metrics, c.Logger)
	return nil
}

// quotaTracker prefers Redis when configured. In development an unreachable
// Redis falls back to the database tracker.
func (c *Container) quotaTracker(ctx context.Context, factory *RepositoryFactory) (quotaDomain.Tracker, error) {
	if c.Config.RedisURL == "" {
		return factory.QuotaTracker()
	}

	opt, err := redis.ParseURL(c.Config.RedisURL)
	if err != nil {
		if !c.Config.IsDevelopment() {
			return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
		}
		c.Logger.Warn("invalid Redis URL, quota counters will use the database", "error", err)
		return factory.QuotaTracker()
	}

	client := redis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		if !c.Config.IsDevelopment() {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, quota counters will use the database", "error", err)
		return factory.QuotaTracker()
	}

	c.RedisClient = client
	tracker := quotaPersistence.NewRedisTracker(client)
	c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusUnhealthy, tracker.Ping))
	c.Logger.Info("connected to Redis")
	return tracker, nil
}

// errMembershipUnverifiable is returned outside development when groups are
// required but there is no bot token to check them with.
var errMembershipUnverifiable = errors.New("REQUIRED_GROUPS is set but MEMBERSHIP_BOT_TOKEN is empty")

// membershipChecker uses the bot API when a token is configured. Without one,
// required groups are only waived in development.
func (c *Container) membershipChecker() (membershipDomain.Checker, error) {
	cfg := c.Config
	if cfg.MembershipBotToken == "" {
		if len(cfg.RequiredGroups) > 0 {
			if !cfg.IsDevelopment() {
				return nil, errMembershipUnverifiable
			}
			c.Logger.Warn("required groups configured without a bot token, membership is not enforced",
				"groups", cfg.RequiredGroups,
			)
		}
		return membershipInfra.NewAllowAllChecker(), nil
	}
	checker, err := membershipInfra.NewHTTPChecker(membershipInfra.HTTPCheckerConfig{
		BaseURL:          cfg.MembershipAPIURL,
		BotToken:         cfg.MembershipBotToken,
		Timeout:          cfg.MembershipTimeout,
		FailureThreshold: uint32(max(cfg.MembershipBreakerFailures, 0)),
		OpenTimeout:      cfg.MembershipBreakerTimeout,
		Metrics:          c.Metrics,
		Logger:           c.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create membership checker: %w", err)
	}
	c.Health.Register("membership", func(ctx context.Context) observability.HealthCheckResult {
		status := observability.HealthStatusHealthy
		if checker.State() != "closed" {
			status = observability.HealthStatusDegraded
		}
		return observability.HealthCheckResult{
			Status:  status,
			Message: "circuit " + checker.State(),
		}
	})
	return checker, nil
}

func (c *Container) publisher() (eventbus.Publisher, error) {
	if c.Config.RabbitMQURL == "" {
		return eventbus.NewNoopPublisher(c.Logger), nil
	}
	publisher, err := eventbus.NewRabbitMQPublisher(c.Config.RabbitMQURL, c.Logger)
	if err != nil {
		if c.Config.IsDevelopment() {
			c.Logger.Warn("RabbitMQ not available, using noop publisher", "error", err)
			return eventbus.NewNoopPublisher(c.Logger), nil
		}
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	return publisher, nil
}

// MetricsHandler returns the Prometheus scrape handler, or nil when metrics are disabled.
func (c *Container) MetricsHandler() http.Handler {
	if c.Prometheus == nil {
		return nil
	}
	return c.Prometheus.Handler()
}

// Close releases every connection the container opened.
func (c *Container) Close() {
	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DB != nil {
		c.DB.Close()
		c.Logger.Info("database connection closed")
	}

	if c.SQLite != nil {
		if err := c.SQLite.Close(); err != nil {
			c.Logger.Warn("error closing SQLite database", "error", err)
		} else {
			c.Logger.Info("database connection closed")
		}
	}
}
