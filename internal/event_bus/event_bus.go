package event_bus

import (
	"context"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
)

// EventType is an identifier for events.
type EventType string

// Event is the envelope used by the bus. Data is kept as any so different
// payload types can share one bus.
type Event struct {
	ctx       context.Context
	Type      EventType
	Timestamp time.Time
	Data      any
}

// NewEvent creates an Event carrying the request context, so handlers can
// respect cancellation and read request-scoped values.
func NewEvent(ctx context.Context, eventType EventType, data any) Event {
	return Event{ctx: ctx, Type: eventType, Timestamp: time.Now(), Data: data}
}

// Context returns the context associated with this event.
func (e Event) Context() context.Context {
	if e.ctx == nil {
		return context.Background()
	}
	return e.ctx
}

// EventBus is a concurrency-safe synchronous dispatcher. Handlers run
// sequentially during Publish; a failing handler never blocks the others.
type EventBus struct {
	mu          sync.RWMutex
	subscribers map[EventType][]func(Event) error
}

func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[EventType][]func(Event) error)}
}

// Subscribe registers a handler for the given event type.
func (eb *EventBus) Subscribe(eventType EventType, h func(Event) error) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], h)
}

// Publish delivers the event to all handlers registered for its type.
// Handler errors are logged, not propagated: publishing is a side channel
// and must never fail the request that triggered it.
func (eb *EventBus) Publish(e Event) {
	eb.mu.RLock()
	handlers := make([]func(Event) error, len(eb.subscribers[e.Type]))
	copy(handlers, eb.subscribers[e.Type])
	eb.mu.RUnlock()

	for _, h := range handlers {
		if err := e.Context().Err(); err != nil {
			log.Debugf("skipping handlers for event %s: %v", e.Type, err)
			return
		}
		if err := h(e); err != nil {
			log.Errorf("event handler failed for %s: %v", e.Type, err)
		}
	}
}
