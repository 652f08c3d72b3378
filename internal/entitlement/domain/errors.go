package domain

import "errors"

var (
	// ErrUnknownTier is returned when a tier name is not recognized.
	ErrUnknownTier = errors.New("unknown plan tier")

	// ErrNotPurchasable is returned when a purchase names the free tier.
	ErrNotPurchasable = errors.New("tier cannot be purchased")

	// ErrInvalidUser is returned for a zero user id.
	ErrInvalidUser = errors.New("invalid user id")
)
