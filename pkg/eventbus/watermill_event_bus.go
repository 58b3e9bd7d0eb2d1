package eventbus

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/vendaflow/vendaflow/pkg/events"
)

// WatermillEventBus publishes engine lifecycle events and consumes CRM
// domain events over any watermill pub/sub pair.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	handler    DomainEventHandler
}

func NewWatermillEventBus(pub message.Publisher, sub message.Subscriber) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  pub,
		subscriber: sub,
	}
}

func (eb *WatermillEventBus) GenerateID() string {
	return watermill.NewULID()
}

func (eb *WatermillEventBus) Publish(_ context.Context, key string, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, key)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.GetType()))

	return eb.publisher.Publish(events.EngineTopic, msg)
}

// PublishDomainEvent puts a CRM event on the bus. The CRUD layer is the
// normal producer; tests and the in-memory setup use this too.
func (eb *WatermillEventBus) PublishDomainEvent(_ context.Context, event *events.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage("msg-"+eb.GenerateID(), payload)
	msg.Metadata.Set(events.EventMetadataKey, event.TenantID)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.Type))

	return eb.publisher.Publish(events.CRMTopic, msg)
}

func (eb *WatermillEventBus) HandleDomainEvents(handler DomainEventHandler) {
	eb.handler = handler
}

func (eb *WatermillEventBus) Subscribe(ctx context.Context) error {
	messages, err := eb.subscriber.Subscribe(ctx, events.CRMTopic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			if eb.handler == nil {
				msg.Ack()

				continue
			}

			event := &events.DomainEvent{}

			err := json.Unmarshal(msg.Payload, event)
			if err != nil {
				msg.Nack()

				continue
			}

			err = eb.handler(ctx, event)
			if err != nil {
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (eb *WatermillEventBus) Close() error {
	err := eb.publisher.Close()
	if err != nil {
		return err
	}

	return eb.subscriber.Close()
}
