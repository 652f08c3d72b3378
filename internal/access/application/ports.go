package application

import (
	"context"

	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	membershipApp "github.com/felixgeelhaar/reelgate/internal/membership/application"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// TierSource resolves a user's effective tier.
type TierSource interface {
	GetTier(ctx context.Context, userID sharedDomain.UserID) (entitlementDomain.PlanTier, error)
}

// QuotaLedger reads and commits per-day view counts.
type QuotaLedger interface {
	ConsumedOn(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error)
	RecordView(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error)
	RecordViewWithin(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int) (int, bool, error)
}

// MembershipGate verifies prerequisite group membership.
type MembershipGate interface {
	Verify(ctx context.Context, userID sharedDomain.UserID) membershipApp.Result
}
