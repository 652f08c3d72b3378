package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/reelgate/internal/shared/domain"
)

const (
	// RoutingKeyDeliveryFailed is published when a committed grant could not
	// be handed to the user.
	RoutingKeyDeliveryFailed = "access.delivery.failed"

	aggregateType = "access"
)

// DeliveryFailed records a grant whose quota was consumed but whose content
// never reached the user. The counter is not rolled back; the event exists
// for reconciliation.
type DeliveryFailed struct {
	sharedDomain.BaseEvent
	Payload DeliveryFailedPayload
}

// DeliveryFailedPayload is the event body.
type DeliveryFailedPayload struct {
	UserID   sharedDomain.UserID `json:"user_id"`
	Day      string              `json:"day"`
	Token    string              `json:"token"`
	MediaRef string              `json:"media_ref"`
	Cause    string              `json:"cause"`
}

// NewDeliveryFailed builds the event.
func NewDeliveryFailed(userID sharedDomain.UserID, decision Decision, cause error, at time.Time) DeliveryFailed {
	payload := DeliveryFailedPayload{
		UserID: userID,
		Token:  decision.Token,
	}
	if decision.Grant != nil {
		payload.Day = decision.Grant.Day
		payload.MediaRef = decision.Grant.MediaRef
	}
	if cause != nil {
		payload.Cause = cause.Error()
	}
	return DeliveryFailed{
		BaseEvent: sharedDomain.NewBaseEvent(userID.String(), aggregateType, RoutingKeyDeliveryFailed, at),
		Payload:   payload,
	}
}
