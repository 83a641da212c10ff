// Package events carries the in-process event bus the modules communicate
// over. It holds no business logic; domain event types live with the domains
// that publish them.
package events

import (
	"context"
	"time"
)

// Event is implemented by every domain event.
type Event interface {
	// EventName identifies the event type; subscribers key on it.
	EventName() string
	OccurredAt() time.Time
}

// BaseEvent carries the fields shared by all events. Embed it.
type BaseEvent struct {
	Timestamp time.Time `json:"timestamp"`
}

func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// NewBaseEvent stamps a base event with the current time.
func NewBaseEvent() BaseEvent {
	return BaseEvent{Timestamp: time.Now()}
}

// Handler consumes events it subscribed to.
type Handler interface {
	Handle(ctx context.Context, event Event) error
}

// Bus publishes domain events to subscribed handlers.
type Bus interface {
	// Publish dispatches asynchronously; handler failures are logged, not
	// returned.
	Publish(ctx context.Context, event Event)

	// PublishSync dispatches and waits for every handler, returning the
	// first failure.
	PublishSync(ctx context.Context, event Event) error

	// Subscribe registers a handler under the name the event reports from
	// EventName.
	Subscribe(eventName string, handler Handler)
}
