package application

import (
	"context"
	"fmt"

	"github.com/felixgeelhaar/reelgate/internal/access/domain"
	entitlementDomain "github.com/felixgeelhaar/reelgate/internal/entitlement/domain"
	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// Usage is a user's quota position for today.
type Usage struct {
	UserID   sharedDomain.UserID        `json:"user_id"`
	Tier     entitlementDomain.PlanTier `json:"tier"`
	Day      string                     `json:"day"`
	Consumed int                        `json:"consumed"`
	// Ceiling and Remaining are domain.Unlimited for unlimited tiers.
	Ceiling   int  `json:"ceiling"`
	Remaining int  `json:"remaining"`
	Forward   bool `json:"forwardable"`
}

// Usage reports today's consumption against the user's ceiling.
func (s *Service) Usage(ctx context.Context, userID sharedDomain.UserID) (Usage, error) {
	day := sharedDomain.Today(s.clock)
	tier, err := s.tiers.GetTier(ctx, userID)
	if err != nil {
		return Usage{}, fmt.Errorf("%w: tier lookup: %v", domain.ErrStoreUnavailable, err)
	}
	consumed, err := s.quota.ConsumedOn(ctx, userID, day)
	if err != nil {
		return Usage{}, fmt.Errorf("%w: quota lookup: %v", domain.ErrStoreUnavailable, err)
	}

	ceiling, unlimited := s.ceilings.For(tier)
	if unlimited {
		ceiling = domain.Unlimited
	}
	return Usage{
		UserID:    userID,
		Tier:      tier,
		Day:       day.String(),
		Consumed:  consumed,
		Ceiling:   ceiling,
		Remaining: s.ceilings.Remaining(tier, consumed),
		Forward:   tier.Forwardable(),
	}, nil
}

// ReportDeliveryFailure records that a granted unit never reached the user.
// The quota counter is left as committed; an event is published so the
// discrepancy can be reconciled out of band.
func (s *Service) ReportDeliveryFailure(ctx context.Context, userID sharedDomain.UserID, decision domain.Decision, cause error) error {
	if !decision.IsGranted() {
		return nil
	}
	event := domain.NewDeliveryFailed(userID, decision, cause, s.clock.Now())
	event.SetMetadata(sharedDomain.EventMetadata{
		CorrelationID: observability.CorrelationIDFromContext(ctx),
		UserID:        userID,
	})

	s.metrics.Counter(observability.MetricDeliveryFailures, 1)
	s.logger.Warn("delivery failed after commit",
		observability.UserIDKey, userID.String(),
		"token", decision.Token,
		"media_ref", event.Payload.MediaRef,
		"day", event.Payload.Day,
		"cause", event.Payload.Cause,
	)

	if err := eventbus.PublishEvent(ctx, s.publisher, event, event.Payload); err != nil {
		return fmt.Errorf("publish delivery failure: %w", err)
	}
	s.metrics.Counter(observability.MetricEventsPublished, 1, observability.T("routing_key", event.RoutingKey()))
	return nil
}
