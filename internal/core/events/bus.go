// Package events is the in-process bus that carries command outcomes and notifications from the
// services to their subscribers.
package events

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// AllEvents subscribes a handler to every event type.
const AllEvents = "*"

type Event interface {
	EventType() string
	EventID() string
	OccurredAt() time.Time
	Payload() interface{}
}

// BaseEvent carries the envelope shared by every event; Data is the payload.
type BaseEvent struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Data      map[string]interface{} `json:"data"`
}

func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) OccurredAt() time.Time { return e.Timestamp }
func (e BaseEvent) Payload() interface{}  { return e.Data }

type Handler func(ctx context.Context, event Event) error

type EventBus struct {
	mu          sync.RWMutex
	subscribers map[string][]Handler
	inflight    sync.WaitGroup
	logger      *slog.Logger
}

func NewEventBus(logger *slog.Logger) *EventBus {
	return &EventBus{
		subscribers: make(map[string][]Handler),
		logger:      logger,
	}
}

// Subscribe registers handler for eventType, or for everything with AllEvents.
func (eb *EventBus) Subscribe(eventType string, handler Handler) {
	eb.mu.Lock()
	eb.subscribers[eventType] = append(eb.subscribers[eventType], handler)
	n := len(eb.subscribers[eventType])
	eb.mu.Unlock()

	eb.logger.Debug("subscribed", "event_type", eventType, "subscribers", n)
}

// route returns the typed subscribers followed by the wildcard ones.
func (eb *EventBus) route(event Event) []Handler {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	typed, wildcard := eb.subscribers[event.EventType()], eb.subscribers[AllEvents]
	if len(typed)+len(wildcard) == 0 {
		return nil
	}
	return append(append(make([]Handler, 0, len(typed)+len(wildcard)), typed...), wildcard...)
}

func (eb *EventBus) deliver(ctx context.Context, h Handler, event Event) error {
	err := h(ctx, event)
	if err != nil {
		eb.logger.Error("subscriber failed", "event_type", event.EventType(), "event_id", event.EventID(), "error", err)
	}
	return err
}

// Publish hands the event to each subscriber on its own goroutine and returns at once. Subscribers
// run under a context that outlives the caller's cancellation.
func (eb *EventBus) Publish(ctx context.Context, event Event) error {
	handlers := eb.route(event)
	if handlers == nil {
		return nil
	}

	eb.logger.Debug("publish", "event_type", event.EventType(), "event_id", event.EventID(), "subscribers", len(handlers))

	detached := context.WithoutCancel(ctx)
	eb.inflight.Add(len(handlers))
	for _, h := range handlers {
		go func(h Handler) {
			defer eb.inflight.Done()
			_ = eb.deliver(detached, h, event)
		}(h)
	}
	return nil
}

// PublishSync runs subscribers in order on the caller's goroutine and stops at the first failure.
func (eb *EventBus) PublishSync(ctx context.Context, event Event) error {
	for _, h := range eb.route(event) {
		if err := eb.deliver(ctx, h, event); err != nil {
			return fmt.Errorf("%s subscriber: %w", event.EventType(), err)
		}
	}
	return nil
}

// Wait blocks until every subscriber started by Publish has returned.
func (eb *EventBus) Wait() {
	eb.inflight.Wait()
}
