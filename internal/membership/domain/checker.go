// Package domain defines the external membership-verification port.
package domain

import (
	"context"
	"errors"

	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// ErrVerificationUnavailable wraps transport and breaker failures.
var ErrVerificationUnavailable = errors.New("membership verification unavailable")

// Checker asks whether a user belongs to a group. Implementations may fail
// or time out; callers decide how to treat errors.
type Checker interface {
	IsMember(ctx context.Context, userID sharedDomain.UserID, groupRef string) (bool, error)
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context, userID sharedDomain.UserID, groupRef string) (bool, error)

func (f CheckerFunc) IsMember(ctx context.Context, userID sharedDomain.UserID, groupRef string) (bool, error) {
	return f(ctx, userID, groupRef)
}
