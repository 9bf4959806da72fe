package shared

import "context"

// EventHandler reacts to domain events. EventTypes lists the types it wants;
// empty means all of them.
type EventHandler interface {
	Handle(ctx context.Context, event DomainEvent) error
	EventTypes() []string
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...DomainEvent) error
}

type EventSubscriber interface {
	Subscribe(handler EventHandler, eventTypes ...string)
	Unsubscribe(handler EventHandler)
}

type EventBus interface {
	EventPublisher
	EventSubscriber
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// PublishAndClear drains agg's pending events into publisher. The events are
// cleared even when publisher is nil or publishing fails.
func PublishAndClear(ctx context.Context, publisher EventPublisher, agg AggregateRoot) error {
	pending := agg.GetDomainEvents()
	agg.ClearDomainEvents()
	if publisher == nil || len(pending) == 0 {
		return nil
	}
	return publisher.Publish(ctx, pending...)
}
