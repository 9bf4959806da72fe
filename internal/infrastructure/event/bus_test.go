package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/murdhanno/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "TestAggregate", uuid.New()),
		Data:            "test data",
	}
}

type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	panics     bool
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	if h.panics {
		panic("boom")
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("OrderCreated")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCreated"), newTestEvent("OrderCreated")))
	assert.Equal(t, 2, handler.count())

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("PrintJobCompleted")))
	assert.Equal(t, 2, handler.count())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("OrderCreated")
	bus.Subscribe(handler, "PrintJobFailed")

	_ = bus.Publish(context.Background(), newTestEvent("OrderCreated"))
	_ = bus.Publish(context.Background(), newTestEvent("PrintJobFailed"))
	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_Wildcard(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	wildcard := newTestHandler()
	bus.Subscribe(wildcard)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("AnyEventType")))
	assert.Equal(t, 1, wildcard.count())
}

func TestInMemoryEventBus_HandlerFailuresAreIsolated(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("OrderCreated")
	failing.err = errors.New("handler error")
	panicking := newTestHandler("OrderCreated")
	panicking.panics = true
	healthy := newTestHandler("OrderCreated")
	bus.Subscribe(failing)
	bus.Subscribe(panicking)
	bus.Subscribe(healthy)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("OrderCreated")))
	assert.Equal(t, 1, healthy.count())
	assert.Equal(t, 2, logs.FilterMessage("handler failed to process event").Len())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("OrderCreated")
	bus.Subscribe(handler)

	_ = bus.Publish(context.Background(), newTestEvent("OrderCreated"))
	bus.Unsubscribe(handler)
	_ = bus.Publish(context.Background(), newTestEvent("OrderCreated"))

	assert.Equal(t, 1, handler.count())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	ctx := context.Background()
	require.NoError(t, bus.Start(ctx))

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(stopCtx))

	assert.ErrorIs(t, bus.Publish(ctx, newTestEvent("OrderCreated")), ErrBusStopped)

	require.NoError(t, bus.Start(ctx))
	assert.NoError(t, bus.Publish(ctx, newTestEvent("OrderCreated")))
}

func TestPublishAndClear(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler()
	bus.Subscribe(handler)

	agg := shared.NewBaseAggregateRoot()
	agg.AddDomainEvent(newTestEvent("OrderCreated"))
	agg.AddDomainEvent(newTestEvent("OrderStatusChanged"))

	require.NoError(t, shared.PublishAndClear(context.Background(), bus, &agg))
	assert.Equal(t, 2, handler.count())
	assert.Empty(t, agg.GetDomainEvents())

	agg.AddDomainEvent(newTestEvent("OrderCreated"))
	require.NoError(t, shared.PublishAndClear(context.Background(), nil, &agg))
	assert.Empty(t, agg.GetDomainEvents())
}

func TestAuditLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewAuditLogHandler(zap.New(core)))

	ev := newTestEvent("PrintJobCompleted")
	require.NoError(t, bus.Publish(context.Background(), ev))

	entries := logs.FilterMessage("domain event").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "PrintJobCompleted", fields["event_type"])
	assert.Equal(t, ev.AggregateID().String(), fields["aggregate_id"])
}
