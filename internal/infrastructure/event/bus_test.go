package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/stockledger/backend/internal/infrastructure/cache"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Batch", uuid.New()),
		Data:            "payload",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	mu         sync.Mutex
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
}

func (h *testHandler) Handle(_ context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) handledCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.handled)
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	t.Run("delivers to subscribed handler", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{eventTypes: []string{"ledger.batch.created"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("ledger.batch.created"))

		require.NoError(t, err)
		assert.Equal(t, 1, handler.handledCount())
	})

	t.Run("skips handlers for other event types", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{eventTypes: []string{"ledger.batch.created"}}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("ledger.level.adjusted"))

		require.NoError(t, err)
		assert.Equal(t, 0, handler.handledCount())
	})

	t.Run("wildcard handler receives all events", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{}
		bus.Subscribe(handler)

		err := bus.Publish(context.Background(),
			newTestEvent("ledger.batch.created"),
			newTestEvent("ledger.level.adjusted"),
		)

		require.NoError(t, err)
		assert.Equal(t, 2, handler.handledCount())
	})

	t.Run("handler failure does not block others", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		failing := &testHandler{eventTypes: []string{"ledger.batch.created"}, err: errors.New("boom")}
		healthy := &testHandler{eventTypes: []string{"ledger.batch.created"}}
		bus.Subscribe(failing)
		bus.Subscribe(healthy)

		err := bus.Publish(context.Background(), newTestEvent("ledger.batch.created"))

		require.NoError(t, err)
		assert.Equal(t, 1, healthy.handledCount())
	})

	t.Run("unsubscribed handler stops receiving", func(t *testing.T) {
		bus := NewInMemoryEventBus(zap.NewNop())
		handler := &testHandler{eventTypes: []string{"ledger.batch.created"}}
		bus.Subscribe(handler)
		bus.Unsubscribe(handler)

		err := bus.Publish(context.Background(), newTestEvent("ledger.batch.created"))

		require.NoError(t, err)
		assert.Equal(t, 0, handler.handledCount())
	})
}

func TestIdempotentHandler(t *testing.T) {
	t.Run("processes first delivery, skips redelivery", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := &testHandler{}
		handler := NewIdempotentHandler(inner, store, zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: true, TTL: time.Minute}))

		event := newTestEvent("ledger.batch.created")

		require.NoError(t, handler.Handle(context.Background(), event))
		require.NoError(t, handler.Handle(context.Background(), event))

		assert.Equal(t, 1, inner.handledCount())
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsProcessed)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsDuplicate)
	})

	t.Run("disabled idempotency passes everything through", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := &testHandler{}
		handler := NewIdempotentHandler(inner, store, zap.NewNop(),
			WithIdempotencyConfig(shared.IdempotencyConfig{Enabled: false}))

		event := newTestEvent("ledger.batch.created")

		require.NoError(t, handler.Handle(context.Background(), event))
		require.NoError(t, handler.Handle(context.Background(), event))

		assert.Equal(t, 2, inner.handledCount())
	})

	t.Run("propagates handler errors and counts failures", func(t *testing.T) {
		store := cache.NewInMemoryIdempotencyStore()
		defer store.Close()

		inner := &testHandler{err: errors.New("boom")}
		handler := NewIdempotentHandler(inner, store, zap.NewNop())

		err := handler.Handle(context.Background(), newTestEvent("ledger.batch.created"))

		assert.Error(t, err)
		assert.Equal(t, int64(1), handler.GetMetrics().Stats().EventsFailed)
	})
}
