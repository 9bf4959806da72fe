// Package event delivers domain events raised by orders, print jobs and
// users to in-process subscribers.
package event

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/murdhanno/backend/internal/domain/shared"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const tracerName = "github.com/murdhanno/backend/event"

var ErrBusStopped = errors.New("event bus stopped")

// InMemoryEventBus delivers synchronously on the publisher's goroutine.
// A failing or panicking handler is logged and does not stop the others.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
	closed   atomic.Bool
	busy     sync.WaitGroup
}

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InMemoryEventBus{registry: NewHandlerRegistry(), logger: logger.Named("events")}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.closed.Load() {
		return ErrBusStopped
	}
	b.busy.Add(1)
	defer b.busy.Done()

	for _, ev := range events {
		for _, h := range b.registry.GetHandlers(ev.EventType()) {
			if err := b.deliver(ctx, h, ev); err != nil {
				b.logger.Error("event handler failed",
					zap.String("event_type", ev.EventType()),
					zap.Stringer("event_id", ev.EventID()),
					zap.Stringer("aggregate_id", ev.AggregateID()),
					zap.Error(err))
			}
		}
	}
	return nil
}

// Subscribe uses the handler's own EventTypes when none are passed. A handler
// with no types at all sees every event.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start reopens a stopped bus
func (b *InMemoryEventBus) Start(context.Context) error {
	b.closed.Store(false)
	b.logger.Info("event bus started")
	return nil
}

// Stop rejects further publishes, then waits for deliveries already running
// or for ctx to end.
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.closed.Store(true)
	drained := make(chan struct{})
	go func() {
		b.busy.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// deliver runs one handler under its own span and turns a panic into an error
func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) (err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "event."+ev.EventType())
	span.SetAttributes(
		attribute.Stringer("event.id", ev.EventID()),
		attribute.String("event.aggregate_type", ev.AggregateType()))
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()
	return h.Handle(ctx, ev)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
