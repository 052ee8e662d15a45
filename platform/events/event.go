// Package events defines the event bus contract used for decoupled
// communication between modules. It carries no business logic; concrete
// maintenance events live in internal/events.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event published on the bus.
type Event interface {
	// EventName identifies the event type, e.g. "order.completed".
	EventName() string
	// OccurredAt reports when the event happened.
	OccurredAt() time.Time
}

// BaseEvent carries the timestamp shared by all events. Embed it and
// implement EventName on the concrete type.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

// OccurredAt reports when the event happened.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler reacts to published events.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// HandlerFunc adapts a plain function into a Handler.
type HandlerFunc func(ctx context.Context, event Event) error

// Handle calls the underlying function.
func (f HandlerFunc) Handle(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Bus publishes domain events and routes them to subscribed handlers.
type Bus interface {
	// Publish delivers the event to every handler subscribed to its name.
	// Delivery is asynchronous; publishers never block on handlers.
	Publish(ctx context.Context, event Event)

	// PublishSync delivers the event and waits for all handlers to finish.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler for events whose EventName matches
	// eventName.
	Subscribe(eventName string, handler Handler)
}
