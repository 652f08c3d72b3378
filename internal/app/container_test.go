package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	accessDomain "github.com/felixgeelhaar/reelgate/internal/access/domain"
	catalogApp "github.com/felixgeelhaar/reelgate/internal/catalog/application"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	membershipInfra "github.com/felixgeelhaar/reelgate/internal/membership/infrastructure"
	paymentsDomain "github.com/felixgeelhaar/reelgate/internal/payments/domain"
	quotaPersistence "github.com/felixgeelhaar/reelgate/internal/quota/infrastructure/persistence"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/reelgate/pkg/config"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

func localConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		AppEnv:         "test",
		DatabaseURL:    filepath.Join(t.TempDir(), "reelgate.db"),
		QuotaFreeDaily: 2,
		QuotaProDaily:  10,
		PlanDuration:   24 * time.Hour,
		TierCacheTTL:   time.Minute,
		MetricsEnabled: true,
	}
}

func TestLocalModeContainer(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, database.DriverSQLite, c.DBDriver)
	assert.NotNil(t, c.SQLite)
	assert.Nil(t, c.DB)
	assert.Nil(t, c.RedisClient)
	assert.IsType(t, &quotaPersistence.SQLiteTracker{}, c.QuotaTracker)
	assert.IsType(t, &membershipInfra.StaticChecker{}, c.MembershipChecker)
	assert.IsType(t, &eventbus.NoopPublisher{}, c.EventPublisher)
	require.NotNil(t, c.Prometheus)

	health := c.Health.Check(ctx)
	require.Contains(t, health, "database")
	assert.Equal(t, observability.HealthStatusHealthy, health["database"].Status)
}

func TestLocalModeContainer_EndToEnd(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, localConfig(t), nil)
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Catalog.AddPackage(ctx, catalogApp.AddPackageInput{ID: "P1", CoverRef: "c", Caption: "x", VideoRef: "v"})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		d, err := c.Access.Decide(ctx, 77, "play_video_P1")
		require.NoError(t, err)
		require.True(t, d.IsGranted())
	}
	d, err := c.Access.Decide(ctx, 77, "play_video_P1")
	require.NoError(t, err)
	assert.Equal(t, accessDomain.ReasonQuotaExceeded, d.Reason)

	_, err = c.Payments.Apply(ctx, paymentsDomain.PurchaseSucceeded{UserID: 77, Tier: "pro"})
	require.NoError(t, err)

	d, err = c.Access.Decide(ctx, 77, "play_video_P1")
	require.NoError(t, err)
	require.True(t, d.IsGranted())
	assert.Equal(t, entitlementDomain.TierPro, d.Tier)
	assert.Equal(t, 3, d.Grant.ConsumedToday)
}

func TestLocalModeContainer_DataSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	cfg := localConfig(t)

	c, err := NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = c.Catalog.CreateSeries(ctx, catalogApp.CreateSeriesInput{ID: "S1", Title: "Show"})
	require.NoError(t, err)
	_, err = c.Catalog.AppendChapter(ctx, "S1", "ch-0")
	require.NoError(t, err)
	c.Close()

	c, err = NewContainer(ctx, cfg, nil)
	require.NoError(t, err)
	defer c.Close()
	series, err := c.Catalog.GetSeries(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, 1, series.Len())
}

func TestNewContainer_RedisFailureIsFatalOutsideDevelopment(t *testing.T) {
	cfg := localConfig(t)
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	_, err := NewContainer(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestNewContainer_RedisFailureFallsBackInDevelopment(t *testing.T) {
	cfg := localConfig(t)
	cfg.AppEnv = "development"
	cfg.RedisURL = "redis://127.0.0.1:1/0"

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()
	assert.IsType(t, &quotaPersistence.SQLiteTracker{}, c.QuotaTracker)
}

func TestNewContainer_MembershipCheckerWithToken(t *testing.T) {
	cfg := localConfig(t)
	cfg.MembershipBotToken = "123:abc"
	cfg.MembershipAPIURL = "http://127.0.0.1:1"
	cfg.RequiredGroups = []string{"@channel"}

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.IsType(t, &membershipInfra.HTTPChecker{}, c.MembershipChecker)
	assert.Equal(t, []string{"@channel"}, c.Gate.Groups())
}

func TestNewContainer_RequiredGroupsWithoutTokenIsFatalOutsideDevelopment(t *testing.T) {
	cfg := localConfig(t)
	cfg.AppEnv = "production"
	cfg.RequiredGroups = []string{"@channel"}

	c, err := NewContainer(context.Background(), cfg, nil)
	require.ErrorIs(t, err, errMembershipUnverifiable)
	assert.Nil(t, c)
}

func TestNewContainer_RequiredGroupsWithoutTokenWaivedInDevelopment(t *testing.T) {
	cfg := localConfig(t)
	cfg.AppEnv = "development"
	cfg.RequiredGroups = []string{"@channel"}

	c, err := NewContainer(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer c.Close()

	assert.True(t, c.Gate.Verify(context.Background(), 424242).Allowed)
}
