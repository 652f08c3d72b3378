package domain

import (
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
)

// Unlimited is reported as the remaining quota of unlimited tiers.
const Unlimited = -1

// Ceilings are the daily unit limits per tier. Ultra tiers are always
// unlimited.
type Ceilings struct {
	Free int
	Pro  int
}

// DefaultCeilings returns free=3, pro=50.
func DefaultCeilings() Ceilings {
	return Ceilings{Free: 3, Pro: 50}
}

// For returns the ceiling for tier. Unknown tiers get the free ceiling.
func (c Ceilings) For(tier entitlementDomain.PlanTier) (ceiling int, unlimited bool) {
	if tier.Unlimited() {
		return 0, true
	}
	if tier.Canonical() == entitlementDomain.TierPro {
		return c.Pro, false
	}
	return c.Free, false
}

// Remaining returns how many units are left, or Unlimited.
func (c Ceilings) Remaining(tier entitlementDomain.PlanTier, consumed int) int {
	ceiling, unlimited := c.For(tier)
	if unlimited {
		return Unlimited
	}
	if consumed >= ceiling {
		return 0
	}
	return ceiling - consumed
}
