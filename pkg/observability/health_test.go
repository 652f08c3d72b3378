package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ping(err error) func(context.Context) error {
	return func(context.Context) error { return err }
}

func TestHealthRegistry_Check(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("database", PingChecker("database", HealthStatusUnhealthy, ping(nil)))
	r.Register("rabbitmq", PingChecker("rabbitmq", HealthStatusDegraded, ping(errors.New("closed"))))

	assert.Empty(t, r.LastResults())

	results := r.Check(context.Background())
	require.Len(t, results, 2)
	assert.Equal(t, HealthStatusHealthy, results["database"].Status)
	assert.Equal(t, "database reachable", results["database"].Message)
	assert.Equal(t, HealthStatusDegraded, results["rabbitmq"].Status)
	assert.Contains(t, results["rabbitmq"].Message, "closed")
	assert.False(t, results["rabbitmq"].Timestamp.IsZero())

	assert.Equal(t, results, r.LastResults())
}

func TestHealthRegistry_OverallHealth(t *testing.T) {
	t.Run("empty registry is healthy", func(t *testing.T) {
		assert.Equal(t, HealthStatusHealthy, NewHealthRegistry().GetOverallHealth(context.Background()).Status)
	})

	t.Run("degraded collaborator", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("database", PingChecker("database", HealthStatusUnhealthy, ping(nil)))
		r.Register("membership", PingChecker("membership", HealthStatusDegraded, ping(errors.New("open"))))

		assert.Equal(t, HealthStatusDegraded, r.GetOverallHealth(context.Background()).Status)
	})

	t.Run("critical store down", func(t *testing.T) {
		r := NewHealthRegistry()
		r.Register("redis", PingChecker("redis", HealthStatusUnhealthy, ping(errors.New("refused"))))
		r.Register("membership", PingChecker("membership", HealthStatusDegraded, ping(errors.New("open"))))

		overall := r.GetOverallHealth(context.Background())
		assert.Equal(t, HealthStatusUnhealthy, overall.Status)
		assert.Len(t, overall.Checks, 2)
	})
}

func TestHealthRegistry_RegisterReplaces(t *testing.T) {
	r := NewHealthRegistry()
	r.Register("database", PingChecker("database", HealthStatusUnhealthy, ping(errors.New("down"))))
	r.Register("database", PingChecker("database", HealthStatusUnhealthy, ping(nil)))

	assert.Equal(t, HealthStatusHealthy, r.Check(context.Background())["database"].Status)
}
