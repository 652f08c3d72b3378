// Package domain defines the per-user daily consumption counter.
package domain

import (
	"context"
	"errors"

	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// ErrInvalidKey is returned for a zero user or day.
var ErrInvalidKey = errors.New("quota key requires a user and a day")

// Tracker counts content units consumed per user per calendar day. A day
// with no record reads as zero; counters only ever increase.
//
// Tracker is tier-agnostic: ceilings are supplied by the caller.
type Tracker interface {
	// ConsumedToday returns the counter for (user, day), or 0.
	ConsumedToday(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error)

	// Increment atomically adds one and returns the new total.
	Increment(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day) (int, error)

	// IncrementIfBelow atomically adds one only if the current value is below
	// ceiling. It returns the resulting total and whether the increment
	// happened. A ceiling of zero or less never increments.
	IncrementIfBelow(ctx context.Context, userID sharedDomain.UserID, day sharedDomain.Day, ceiling int) (int, bool, error)
}

// ValidateKey checks that both halves of the counter key are set.
func ValidateKey(userID sharedDomain.UserID, day sharedDomain.Day) error {
	if userID.IsZero() || day.IsZero() {
		return ErrInvalidKey
	}
	return nil
}
