package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"

	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

// RoutingKeyPurchaseSucceeded is the routing key payment providers publish on.
const RoutingKeyPurchaseSucceeded = "payments.purchase.succeeded"

// ErrInvalidPurchase is returned for notifications that can never be applied.
var ErrInvalidPurchase = errors.New("invalid purchase notification")

// PurchaseSucceeded is a successful payment notification.
type PurchaseSucceeded struct {
	UserID sharedDomain.UserID `json:"user_id"`
	Tier   string              `json:"tier"`
	// Payload is the provider's opaque invoice reference.
	Payload string    `json:"payload,omitempty"`
	PaidAt  time.Time `json:"paid_at,omitempty"`
}

// Validate checks the notification and returns the purchased tier.
func (p PurchaseSucceeded) Validate() (entitlementDomain.PlanTier, error) {
	if p.UserID.IsZero() {
		return "", fmt.Errorf("%w: missing user_id", ErrInvalidPurchase)
	}
	tier, err := entitlementDomain.ParseTier(strings.TrimSpace(p.Tier))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPurchase, err)
	}
	if !tier.IsPaid() {
		return "", fmt.Errorf("%w: tier %q is not purchasable", ErrInvalidPurchase, tier)
	}
	return tier, nil
}
