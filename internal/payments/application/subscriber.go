package application

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/reelgate/internal/payments/domain"
	"github.com/felixgeelhaar/reelgate/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/reelgate/pkg/observability"
)

// PurchaseSubscriber consumes purchase notifications from the event bus.
type PurchaseSubscriber struct {
	service *Service
	metrics observability.Metrics
	logger  *slog.Logger
}

// NewPurchaseSubscriber creates a subscriber backed by service.
func NewPurchaseSubscriber(service *Service, metrics observability.Metrics, logger *slog.Logger) *PurchaseSubscriber {
	if metrics == nil {
		metrics = observability.NoopMetrics{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &PurchaseSubscriber{service: service, metrics: metrics, logger: logger}
}

// EventTypes returns the event types this subscriber handles.
func (s *PurchaseSubscriber) EventTypes() []string {
	return []string{domain.RoutingKeyPurchaseSucceeded}
}

// Handle applies one notification. Messages that can never succeed are
// reported as poison so the broker drops them; store failures are returned
// as-is so the message is requeued.
func (s *PurchaseSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	if event.Metadata.CorrelationID != "" {
		ctx = observability.WithCorrelationID(ctx, event.Metadata.CorrelationID)
	}

	var purchase domain.PurchaseSucceeded
	if err := json.Unmarshal(event.Payload, &purchase); err != nil {
		s.consumed(event, "poison")
		return fmt.Errorf("%w: decode purchase: %v", eventbus.ErrPoisonMessage, err)
	}

	_, err := s.service.Apply(ctx, purchase)
	switch {
	case err == nil:
		s.consumed(event, "ok")
		return nil
	case errors.Is(err, domain.ErrInvalidPurchase):
		s.consumed(event, "poison")
		return fmt.Errorf("%w: %v", eventbus.ErrPoisonMessage, err)
	default:
		s.consumed(event, "retry")
		s.logger.Error("purchase not recorded, will retry",
			"event_id", event.EventID,
			observability.UserIDKey, purchase.UserID.String(),
			observability.ErrorKey, err,
		)
		return err
	}
}

func (s *PurchaseSubscriber) consumed(event *eventbus.ConsumedEvent, result string) {
	s.metrics.Counter(observability.MetricEventsConsumed, 1,
		observability.T("routing_key", event.RoutingKey),
		observability.T("result", result),
	)
}
