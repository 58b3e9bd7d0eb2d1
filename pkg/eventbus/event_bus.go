// Package eventbus provides the messaging layer between the CRUD surface
// and the automation engine.
package eventbus

import (
	"context"

	"github.com/vendaflow/vendaflow/pkg/events"
)

// Event is any engine lifecycle event.
type Event interface {
	GetType() events.EventType
}

// EventPublisher publishes engine lifecycle events. Publishing is best
// effort from the engine's point of view; a failed publish is logged and
// never fails an automation run.
type EventPublisher interface {
	Publish(ctx context.Context, key string, event Event) error
}

// DomainEventHandler is called for each CRM domain event consumed from the
// bus. Returning an error nacks the message.
type DomainEventHandler func(ctx context.Context, event *events.DomainEvent) error

// DomainEventSubscriber consumes CRM domain events.
type DomainEventSubscriber interface {
	HandleDomainEvents(handler DomainEventHandler)
	Subscribe(ctx context.Context) error
}

// EventBus combines both directions of the engine's messaging.
type EventBus interface {
	EventPublisher
	DomainEventSubscriber
	GenerateID() string
	Close() error
}
