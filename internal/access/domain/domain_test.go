package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/felixgeelhaar/reelgate/internal/access/token"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
)

func TestCeilings_For(t *testing.T) {
	c := DefaultCeilings()

	ceiling, unlimited := c.For(entitlementDomain.TierFree)
	assert.Equal(t, 3, ceiling)
	assert.False(t, unlimited)

	ceiling, unlimited = c.For(entitlementDomain.TierPro)
	assert.Equal(t, 50, ceiling)
	assert.False(t, unlimited)

	_, unlimited = c.For(entitlementDomain.TierUltra)
	assert.True(t, unlimited)
	_, unlimited = c.For(entitlementDomain.TierLegacyUltra)
	assert.True(t, unlimited)
}

func TestCeilings_Remaining(t *testing.T) {
	c := Ceilings{Free: 3, Pro: 10}
	assert.Equal(t, 2, c.Remaining(entitlementDomain.TierFree, 1))
	assert.Equal(t, 0, c.Remaining(entitlementDomain.TierFree, 7))
	assert.Equal(t, 10, c.Remaining(entitlementDomain.TierPro, 0))
	assert.Equal(t, Unlimited, c.Remaining(entitlementDomain.TierUltra, 500))
}

func TestDenied(t *testing.T) {
	d := Denied("junk", token.Intent{}, ReasonBadRequest)
	assert.True(t, d.IsDenied())
	assert.False(t, d.IsGranted())
	assert.Equal(t, ReasonBadRequest, d.Reason)
}

func TestNewDeliveryFailed(t *testing.T) {
	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	decision := Decision{
		Outcome: OutcomeGranted,
		Token:   "play_video_P1",
		Grant:   &Grant{MediaRef: "vid", Day: "2026-01-02"},
	}

	event := NewDeliveryFailed(12, decision, errors.New("blocked by user"), at)
	assert.Equal(t, RoutingKeyDeliveryFailed, event.RoutingKey())
	assert.Equal(t, "12", event.AggregateID())
	assert.Equal(t, at, event.OccurredAt())
	assert.Equal(t, "vid", event.Payload.MediaRef)
	assert.Equal(t, "blocked by user", event.Payload.Cause)
}
