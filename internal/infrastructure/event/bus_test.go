package event

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/autobargain/backend/internal/domain/shared"
)

type testEvent struct {
	shared.BaseDomainEvent
}

func newTestEvent(eventType string, bargainID uuid.UUID) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Installment", uuid.New(), bargainID),
	}
}

type testHandler struct {
	eventTypes []string
	err        error
	panicWith  any

	mu      sync.Mutex
	handled []shared.DomainEvent
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{eventTypes: eventTypes}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	h.handled = append(h.handled, event)
	h.mu.Unlock()
	if h.panicWith != nil {
		panic(h.panicWith)
	}
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	handler := newTestHandler("InstallmentPaid")
	bus.Subscribe(handler)

	event := newTestEvent("InstallmentPaid", uuid.New())
	require.NoError(t, bus.Publish(context.Background(), event))

	require.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_PublishIgnoresOtherTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("InstallmentPaid")
	bus.Subscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("TransactionCreated", uuid.New())))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_ExplicitTypesOverrideHandlerTypes(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("InstallmentPaid")
	bus.Subscribe(handler, "TransactionSettled")

	ctx := context.Background()
	require.NoError(t, bus.Publish(ctx, newTestEvent("InstallmentPaid", uuid.New())))
	require.NoError(t, bus.Publish(ctx, newTestEvent("TransactionSettled", uuid.New())))

	handled := handler.getHandled()
	require.Len(t, handled, 1)
	assert.Equal(t, "TransactionSettled", handled[0].EventType())
}

func TestInMemoryEventBus_HandlerErrorDoesNotStopDelivery(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	bus := NewInMemoryEventBus(zap.New(core))

	failing := newTestHandler("InstallmentPaid")
	failing.err = errors.New("settlement failed")
	next := newTestHandler("InstallmentPaid")
	bus.Subscribe(failing)
	bus.Subscribe(next)

	bargainID := uuid.New()
	err := bus.Publish(context.Background(), newTestEvent("InstallmentPaid", bargainID))

	require.NoError(t, err)
	assert.Len(t, next.getHandled(), 1)
	assert.Equal(t, int64(1), bus.Failures())

	entries := logs.FilterMessage("handler failed to process event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, bargainID.String(), entries[0].ContextMap()["bargain_id"])
}

func TestInMemoryEventBus_RecoversFromPanic(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	panicking := newTestHandler("InstallmentPaid")
	panicking.panicWith = "boom"
	next := newTestHandler("InstallmentPaid")
	bus.Subscribe(panicking)
	bus.Subscribe(next)

	assert.NotPanics(t, func() {
		_ = bus.Publish(context.Background(), newTestEvent("InstallmentPaid", uuid.New()))
	})
	assert.Len(t, next.getHandled(), 1)
	assert.Equal(t, int64(1), bus.Failures())
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	handler := newTestHandler("InstallmentPaid")
	bus.Subscribe(handler)
	bus.Unsubscribe(handler)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InstallmentPaid", uuid.New())))
	assert.Empty(t, handler.getHandled())
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := NewInMemoryEventBus(nil)
	ctx := context.Background()

	assert.False(t, bus.Running())
	require.NoError(t, bus.Start(ctx))
	assert.True(t, bus.Running())
	require.NoError(t, bus.Stop(ctx))
	assert.False(t, bus.Running())
}

func TestInMemoryEventBus_RecordsHandlerSpans(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() { otel.SetTracerProvider(previous) })

	bus := NewInMemoryEventBus(nil)
	failing := newTestHandler("InstallmentPaid")
	failing.err = errors.New("no transaction")
	bus.Subscribe(failing)

	require.NoError(t, bus.Publish(context.Background(), newTestEvent("InstallmentPaid", uuid.New())))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "event.handle InstallmentPaid", spans[0].Name())
	assert.Equal(t, "no transaction", spans[0].Status().Description)
}
