package eventbus

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/domain/events"
	"github.com/barrickdigitalgold-web/barrickdigitalgold-web-sub000/pkg/eventbus"
)

// MemoryEventBus dispatches events synchronously to in-process handlers.
type MemoryEventBus struct {
	handlers  map[string][]eventbus.HandlerFunc
	mu        sync.RWMutex
	logger    *slog.Logger
	published []events.Event
}

// NewWithMemory creates a new in-memory event bus.
func NewWithMemory(logger *slog.Logger) *MemoryEventBus {
	if logger == nil {
		logger = slog.Default()
	}
	return &MemoryEventBus{
		handlers: make(map[string][]eventbus.HandlerFunc),
		logger:   logger.With("bus", "memory"),
	}
}

// Register registers a handler for a specific event type.
func (b *MemoryEventBus) Register(eventType string, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], handler)
}

// Emit runs every handler registered for the event's type. A failing or
// panicking handler does not stop the others; their errors are joined.
func (b *MemoryEventBus) Emit(ctx context.Context, event events.Event) error {
	b.mu.Lock()
	b.published = append(b.published, event)
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[event.Type()]...)
	b.mu.Unlock()

	var errs []error
	for _, handler := range handlers {
		if err := b.run(ctx, handler, event); err != nil {
			b.logger.Error("handler error", "type", event.Type(), "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (b *MemoryEventBus) run(ctx context.Context, handler eventbus.HandlerFunc, event events.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("panic recovered in event handler", "type", event.Type(), "panic", r)
			err = errors.New("event handler panicked")
		}
	}()
	return handler(ctx, event)
}

// Published returns a copy of every event emitted so far.
func (b *MemoryEventBus) Published() []events.Event {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]events.Event(nil), b.published...)
}

// ClearPublished forgets the recorded events.
func (b *MemoryEventBus) ClearPublished() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = nil
}

var _ eventbus.Bus = (*MemoryEventBus)(nil)
