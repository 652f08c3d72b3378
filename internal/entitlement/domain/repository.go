package domain

import (
	"context"

	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// Repository persists entitlement records.
type Repository interface {
	// FindByUserID returns the record for the user, or nil when none exists.
	// Legacy records are returned as stored, with an empty Tier.
	FindByUserID(ctx context.Context, userID sharedDomain.UserID) (*Entitlement, error)

	// Save upserts the record. Last writer wins.
	Save(ctx context.Context, entitlement *Entitlement) error

	// NormalizeLegacy stamps TierLegacyUltra on the user's record only while
	// it still has an empty tier, so it never clobbers a newer purchase.
	// It reports whether a row was changed.
	NormalizeLegacy(ctx context.Context, userID sharedDomain.UserID) (bool, error)
}
