package application

import (
	"context"
	"fmt"
	"log/slog"

	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	"github.com/felixgeelhaar/reelgate/internal/payments/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// PurchaseRecorder applies a purchased tier to a user's entitlement.
type PurchaseRecorder interface {
	RecordPurchase(ctx context.Context, userID sharedDomain.UserID, tier entitlementDomain.PlanTier) (*entitlementDomain.Entitlement, error)
}

// Service turns payment notifications into entitlement changes. It is shared
// by the message-bus subscriber and the HTTP webhook.
type Service struct {
	recorder PurchaseRecorder
	logger   *slog.Logger
}

// NewService creates a payments service.
func NewService(recorder PurchaseRecorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{recorder: recorder, logger: logger}
}

// Apply validates the notification and records the purchase. Invalid
// notifications return an error wrapping domain.ErrInvalidPurchase; any
// other error comes from the entitlement store and is worth retrying.
func (s *Service) Apply(ctx context.Context, purchase domain.PurchaseSucceeded) (*entitlementDomain.Entitlement, error) {
	tier, err := purchase.Validate()
	if err != nil {
		s.logger.Warn("discarding purchase notification",
			observability.UserIDKey, purchase.UserID.String(),
			"tier", purchase.Tier,
			"invoice", purchase.Payload,
			observability.ErrorKey, err,
		)
		return nil, err
	}

	record, err := s.recorder.RecordPurchase(ctx, purchase.UserID, tier)
	if err != nil {
		return nil, fmt.Errorf("record purchase: %w", err)
	}
	s.logger.Info("purchase applied",
		observability.UserIDKey, purchase.UserID.String(),
		"tier", tier.String(),
		"invoice", purchase.Payload,
		"expires_at", record.ExpiresAt,
	)
	return record, nil
}
