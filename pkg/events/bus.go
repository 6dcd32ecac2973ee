package events

import (
	"sync"

	"github.com/goldthwaiteeverette61/football-app-sub000/pkg/logger"
)

// Handler processes an event. Returning an error logs it but does not stop dispatch.
type Handler func(Event) error

// Bus is a synchronous in-process event bus.
// Subscribers are invoked in registration order on the publisher's goroutine,
// type-specific handlers first, then handlers registered with SubscribeAll.
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
	logger   *logger.Logger
}

func NewBus(l *logger.Logger) *Bus {
	if l == nil {
		l = logger.Nop()
	}
	return &Bus{
		handlers: make(map[EventType][]Handler),
		logger:   l,
	}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType EventType, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[eventType] = append(b.handlers[eventType], h)
}

// SubscribeAll registers a handler for every event type.
func (b *Bus) SubscribeAll(h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all = append(b.all, h)
}

// Publish dispatches an event to all registered handlers for its type.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.handlers[e.Type])+len(b.all))
	handlers = append(handlers, b.handlers[e.Type]...)
	handlers = append(handlers, b.all...)
	b.mu.RUnlock()

	for _, h := range handlers {
		if err := h(e); err != nil {
			b.logger.Warn().
				Err(err).
				Str("action", "event_handler_failed").
				Str("event_type", string(e.Type)).
				Str("event_id", e.ID).
				Msg("Event handler returned an error")
		}
	}
}
