package domain

import (
	"strings"
)

// PlanTier is a named entitlement level.
type PlanTier string

const (
	TierFree  PlanTier = "free"
	TierPro   PlanTier = "pro"
	TierUltra PlanTier = "ultra"
	// TierLegacyUltra is the deprecated alias carried by records created
	// before tiers existed. It behaves exactly like TierUltra.
	TierLegacyUltra PlanTier = "legacy_ultra"
)

// ParseTier parses a tier name, case-insensitively.
func ParseTier(value string) (PlanTier, error) {
	tier := PlanTier(strings.ToLower(strings.TrimSpace(value)))
	if !tier.IsValid() {
		return "", ErrUnknownTier
	}
	return tier, nil
}

// IsValid reports whether t is a known tier.
func (t PlanTier) IsValid() bool {
	switch t {
	case TierFree, TierPro, TierUltra, TierLegacyUltra:
		return true
	default:
		return false
	}
}

// Canonical maps aliases onto the tier they behave as.
func (t PlanTier) Canonical() PlanTier {
	if t == TierLegacyUltra {
		return TierUltra
	}
	return t
}

// IsPaid reports whether t is anything other than free.
func (t PlanTier) IsPaid() bool {
	return t.IsValid() && t != TierFree
}

// Unlimited reports whether t has no daily quota ceiling.
func (t PlanTier) Unlimited() bool {
	return t.Canonical() == TierUltra
}

// Forwardable reports whether content delivered to t may be forwarded.
func (t PlanTier) Forwardable() bool {
	return t.Canonical() == TierUltra
}

func (t PlanTier) String() string {
	return string(t)
}
