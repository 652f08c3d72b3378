package domain_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
)

func TestParseTier(t *testing.T) {
	tests := []struct {
		in      string
		want    domain.PlanTier
		wantErr bool
	}{
		{"free", domain.TierFree, false},
		{" PRO ", domain.TierPro, false},
		{"ultra", domain.TierUltra, false},
		{"legacy_ultra", domain.TierLegacyUltra, false},
		{"gold", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := domain.ParseTier(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, domain.ErrUnknownTier)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlanTier_Behaviour(t *testing.T) {
	assert.True(t, domain.TierUltra.Unlimited())
	assert.True(t, domain.TierLegacyUltra.Unlimited())
	assert.False(t, domain.TierPro.Unlimited())

	assert.True(t, domain.TierLegacyUltra.Forwardable())
	assert.False(t, domain.TierPro.Forwardable())
	assert.False(t, domain.TierFree.Forwardable())

	assert.Equal(t, domain.TierUltra, domain.TierLegacyUltra.Canonical())
	assert.False(t, domain.TierFree.IsPaid())
	assert.False(t, domain.PlanTier("").IsPaid())
}

func TestNewPurchase(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	e, err := domain.NewPurchase(42, domain.TierPro, now, 0)
	require.NoError(t, err)
	assert.Equal(t, now.Add(domain.DefaultPlanDuration), e.ExpiresAt)
	assert.Equal(t, domain.TierPro, e.Tier)

	_, err = domain.NewPurchase(42, domain.TierFree, now, 0)
	assert.ErrorIs(t, err, domain.ErrNotPurchasable)

	_, err = domain.NewPurchase(0, domain.TierPro, now, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidUser)

	_, err = domain.NewPurchase(42, "gold", now, 0)
	assert.ErrorIs(t, err, domain.ErrUnknownTier)
}

func TestEntitlement_ExpiryFlipsActive(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e, err := domain.NewPurchase(7, domain.TierUltra, now, time.Hour)
	require.NoError(t, err)

	assert.True(t, e.IsActive(now))
	assert.True(t, e.IsActive(e.ExpiresAt.Add(-time.Nanosecond)))
	assert.Equal(t, domain.TierUltra, e.EffectiveTier(now))
	assert.Equal(t, time.Hour, e.Remaining(now))

	assert.False(t, e.IsActive(e.ExpiresAt))
	assert.Equal(t, domain.TierFree, e.EffectiveTier(e.ExpiresAt))
	assert.Zero(t, e.Remaining(e.ExpiresAt))
}

func TestEntitlement_NilIsFree(t *testing.T) {
	var e *domain.Entitlement
	assert.False(t, e.IsActive(time.Now()))
	assert.Equal(t, domain.TierFree, e.EffectiveTier(time.Now()))
	assert.False(t, e.Normalize())
}

func TestEntitlement_NormalizeLegacy(t *testing.T) {
	now := time.Now().UTC()
	legacy := &domain.Entitlement{UserID: 9, ExpiresAt: now.Add(time.Hour)}

	require.True(t, legacy.IsLegacy())
	assert.False(t, legacy.IsActive(now), "legacy shape is not interpreted until normalized")

	require.True(t, legacy.Normalize())
	assert.Equal(t, domain.TierLegacyUltra, legacy.Tier)
	assert.True(t, legacy.IsActive(now))
	assert.False(t, legacy.Normalize())
}
