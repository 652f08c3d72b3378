package application

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	entitlementApp "github.com/felixgeelhaar/reelgate/internal/entitlement/application"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	"github.com/felixgeelhaar/reelgate/internal/entitlement/infrastructure/persistence"
	"github.com/felixgeelhaar/reelgate/internal/payments/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

var paidAt = time.Date(2026, 7, 4, 9, 30, 0, 0, time.UTC)

type failingRecorder struct{ err error }

func (r failingRecorder) RecordPurchase(ctx context.Context, userID sharedDomain.UserID, tier entitlementDomain.PlanTier) (*entitlementDomain.Entitlement, error) {
	return nil, r.err
}

func newEntitlements() *entitlementApp.Service {
	return entitlementApp.NewService(persistence.NewInMemoryEntitlementRepository(),
		sharedDomain.NewFixedClock(paidAt), entitlementApp.Config{}, nil, nil)
}

func purchaseEvent(t *testing.T, payload any) *eventbus.ConsumedEvent {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return &eventbus.ConsumedEvent{
		RoutingKey: domain.RoutingKeyPurchaseSucceeded,
		OccurredAt: paidAt,
		Payload:    body,
	}
}

func TestPurchaseSubscriber_EventTypes(t *testing.T) {
	s := NewPurchaseSubscriber(NewService(newEntitlements(), nil), nil, nil)
	assert.Equal(t, []string{"payments.purchase.succeeded"}, s.EventTypes())
}

func TestPurchaseSubscriber_RecordsPurchase(t *testing.T) {
	entitlements := newEntitlements()
	metrics := observability.NewInMemoryMetrics()
	s := NewPurchaseSubscriber(NewService(entitlements, nil), metrics, nil)

	err := s.Handle(context.Background(), purchaseEvent(t, domain.PurchaseSucceeded{
		UserID: 42, Tier: "pro", Payload: "inv-1", PaidAt: paidAt,
	}))
	require.NoError(t, err)

	tier, err := entitlements.GetTier(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, entitlementDomain.TierPro, tier)
	assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsConsumed,
		observability.T("routing_key", domain.RoutingKeyPurchaseSucceeded), observability.T("result", "ok")))
}

func TestPurchaseSubscriber_InvalidNotificationsArePoison(t *testing.T) {
	entitlements := newEntitlements()
	s := NewPurchaseSubscriber(NewService(entitlements, nil), nil, nil)

	payloads := []any{
		domain.PurchaseSucceeded{UserID: 42, Tier: "platinum"},
		domain.PurchaseSucceeded{UserID: 42, Tier: "free"},
		domain.PurchaseSucceeded{Tier: "pro"},
		"not an object",
	}
	for _, p := range payloads {
		err := s.Handle(context.Background(), purchaseEvent(t, p))
		assert.ErrorIs(t, err, eventbus.ErrPoisonMessage)
	}

	tier, err := entitlements.GetTier(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, entitlementDomain.TierFree, tier)
}

func TestPurchaseSubscriber_StoreErrorsAreRetried(t *testing.T) {
	storeErr := errors.New("database is locked")
	s := NewPurchaseSubscriber(NewService(failingRecorder{err: storeErr}, nil), nil, nil)

	err := s.Handle(context.Background(), purchaseEvent(t, domain.PurchaseSucceeded{UserID: 42, Tier: "ultra"}))
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, eventbus.ErrPoisonMessage)
}

func TestPurchaseSubscriber_ThroughInProcessBus(t *testing.T) {
	entitlements := newEntitlements()
	bus := eventbus.NewInProcessEventBus(nil)
	bus.RegisterConsumer(NewPurchaseSubscriber(NewService(entitlements, nil), nil, nil))

	body, err := json.Marshal(purchaseEvent(t, domain.PurchaseSucceeded{UserID: 9, Tier: "legacy_ultra"}))
	require.NoError(t, err)
	require.NoError(t, bus.Publish(context.Background(), domain.RoutingKeyPurchaseSucceeded, body))

	tier, err := entitlements.GetTier(context.Background(), 9)
	require.NoError(t, err)
	assert.True(t, tier.Unlimited())
}

func TestService_ApplyReturnsRecord(t *testing.T) {
	svc := NewService(newEntitlements(), nil)
	record, err := svc.Apply(context.Background(), domain.PurchaseSucceeded{UserID: 5, Tier: "ultra"})
	require.NoError(t, err)
	assert.Equal(t, entitlementDomain.TierUltra, record.Tier)
	assert.Equal(t, paidAt.Add(entitlementDomain.DefaultPlanDuration), record.ExpiresAt)
}
