package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// DefaultPlanDuration is how long a purchased plan lasts.
const DefaultPlanDuration = 30 * 24 * time.Hour

// Entitlement is a user's plan record. Expiry is evaluated lazily against
// the caller's clock; records are never swept.
type Entitlement struct {
	UserID    sharedDomain.UserID
	Tier      PlanTier
	ExpiresAt time.Time
	UpdatedAt time.Time
}

// NewPurchase builds the record written when a purchase succeeds.
// Repeated purchases overwrite: expiry is always now+duration.
func NewPurchase(userID sharedDomain.UserID, tier PlanTier, now time.Time, duration time.Duration) (*Entitlement, error) {
	if userID.IsZero() {
		return nil, ErrInvalidUser
	}
	if !tier.IsValid() {
		return nil, ErrUnknownTier
	}
	if !tier.IsPaid() {
		return nil, ErrNotPurchasable
	}
	if duration <= 0 {
		duration = DefaultPlanDuration
	}
	now = now.UTC()
	return &Entitlement{
		UserID:    userID,
		Tier:      tier,
		ExpiresAt: now.Add(duration),
		UpdatedAt: now,
	}, nil
}

// IsActive reports whether the record grants a paid tier at now.
func (e *Entitlement) IsActive(now time.Time) bool {
	if e == nil {
		return false
	}
	return e.Tier.IsPaid() && now.Before(e.ExpiresAt)
}

// EffectiveTier returns the stored tier while active, otherwise free.
func (e *Entitlement) EffectiveTier(now time.Time) PlanTier {
	if !e.IsActive(now) {
		return TierFree
	}
	return e.Tier
}

// Remaining returns the time left on an active plan, or zero.
func (e *Entitlement) Remaining(now time.Time) time.Duration {
	if !e.IsActive(now) {
		return 0
	}
	return e.ExpiresAt.Sub(now)
}

// IsLegacy reports whether the record predates tiers: an expiry with no tier.
func (e *Entitlement) IsLegacy() bool {
	return e != nil && e.Tier == ""
}

// Normalize rewrites a legacy record into the canonical shape.
// It returns true if the record changed and should be persisted.
func (e *Entitlement) Normalize() bool {
	if !e.IsLegacy() {
		return false
	}
	e.Tier = TierLegacyUltra
	return true
}
