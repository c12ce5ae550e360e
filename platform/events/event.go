// Package events is the in-process publish/subscribe mechanism that lets the
// proposal, location and notification modules react to each other without
// importing one another.
package events

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every published message.
type Event interface {
	// EventName is the subscription key, e.g. "proposals.status.changed".
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent is embedded by concrete events.
type BaseEvent struct {
	ID        uuid.UUID `json:"eventId"`
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }

// NewBaseEvent stamps a fresh event ID and the current UTC time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{ID: uuid.New(), Timestamp: time.Now().UTC()}
}

// Handler reacts to a delivered event.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc lets a plain function subscribe to the bus.
type HandlerFunc func(ctx context.Context, event Event) error

func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus delivers events to the handlers subscribed to their name.
type Bus interface {
	// Publish delivers asynchronously; handler failures are only logged.
	Publish(ctx context.Context, event Event)
	// PublishSync delivers in subscription order and reports every failure.
	PublishSync(ctx context.Context, event Event) error
	Subscribe(eventName string, handler Handler)
}
