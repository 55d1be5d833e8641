package engine

import (
	"context"

	"go.uber.org/zap"
)

type EventType string

const (
	EventBidApproved       EventType = "bid_approved"
	EventSubmissionPending EventType = "submission_pending"
	EventSubmissionDecided EventType = "submission_decided"
	EventPaymentCaptured   EventType = "payment_captured"
	EventTicketRaised      EventType = "ticket_raised"
	EventTicketResolved    EventType = "ticket_resolved"
)

// Event is a domain event emitted after a ledger write commits. Delivery and
// ordering to end users belong to the notification channel, not the engine.
type Event struct {
	Type       EventType      `json:"type"`
	ProjectID  uint           `json:"project_id"`
	ContractID uint           `json:"contract_id,omitempty"`
	ActorID    uint           `json:"actor_id"`
	Data       map[string]any `json:"data,omitempty"`
}

// Notifier fans events out to whatever channel is wired in. The engine holds
// no reference to a concrete transport.
type Notifier interface {
	Publish(ctx context.Context, ev Event) error
}

// emit publishes best-effort after a commit. A failed publish is logged and
// never rolls back the ledger write it follows.
func (e *Engine) emit(ctx context.Context, ev Event) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Publish(ctx, ev); err != nil {
		e.log.Warn("event publish failed",
			zap.String("event", string(ev.Type)),
			zap.Uint("contract_id", ev.ContractID),
			zap.Error(err))
	}
}
