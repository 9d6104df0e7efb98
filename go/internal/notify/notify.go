// Package notify carries the fire-and-forget event fan-out: engines
// publish league-scoped events, consumers (websocket gateway, external
// subscribers) pick them up. Publish failures are logged by callers,
// never propagated into the triggering operation.
package notify

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventType identifies what happened. Values double as the trailing
// subject token on the wire.
type EventType string

const (
	EventDraftStarted   EventType = "draft.started"
	EventDraftPick      EventType = "draft.pick"
	EventDraftPaused    EventType = "draft.paused"
	EventDraftResumed   EventType = "draft.resumed"
	EventDraftCompleted EventType = "draft.completed"

	EventTradeProposed  EventType = "trade.proposed"
	EventTradeAccepted  EventType = "trade.accepted"
	EventTradeDeclined  EventType = "trade.declined"
	EventTradeCanceled  EventType = "trade.canceled"
	EventTradeCompleted EventType = "trade.completed"

	EventFreeAgentPickup EventType = "freeagent.pickup"
	EventFreeAgentDrop   EventType = "freeagent.drop"
)

// Event is one league-scoped occurrence with a type-specific payload.
type Event struct {
	Type     EventType   `json:"type"`
	LeagueID uuid.UUID   `json:"league_id"`
	At       time.Time   `json:"at"`
	Payload  interface{} `json:"payload,omitempty"`
}

// Publisher delivers events to whoever is listening.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Fanout publishes to every wrapped publisher and returns the first
// failure after attempting all of them.
type Fanout []Publisher

func (f Fanout) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
