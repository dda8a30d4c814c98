package events

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// route is one registration on the bus, either a Subscriber or a handler func
type route struct {
	id      string
	accepts func(eventType string) bool
	deliver func(Event)
}

// EventBus delivers events synchronously, in registration order, to
// subscribers and handler funcs alike. A run of a game therefore sees the
// same delivery sequence every time.
type EventBus struct {
	mu       sync.RWMutex
	routes   []route
	handlers int
	logger   zerolog.Logger
}

// NewEventBus creates an empty bus
func NewEventBus(logger zerolog.Logger) *EventBus {
	return &EventBus{logger: logger.With().Str("component", "event_bus").Logger()}
}

// Subscribe registers s. Registering an ID again swaps the subscriber in
// without changing its place in the order.
func (eb *EventBus) Subscribe(s Subscriber) {
	eb.add(route{id: s.ID(), accepts: s.InterestedIn, deliver: s.HandleEvent})
}

// SubscribeFunc registers handler for one event type and returns the ID to
// unsubscribe it with.
func (eb *EventBus) SubscribeFunc(eventType string, handler EventHandler) string {
	return eb.addFunc(eventType, func(t string) bool { return t == eventType }, handler)
}

// SubscribeAll registers handler for every event type
func (eb *EventBus) SubscribeAll(handler EventHandler) string {
	return eb.addFunc("all", func(string) bool { return true }, handler)
}

func (eb *EventBus) addFunc(label string, accepts func(string) bool, handler EventHandler) string {
	eb.mu.Lock()
	eb.handlers++
	id := fmt.Sprintf("%s_func_%d", label, eb.handlers)
	eb.mu.Unlock()

	eb.add(route{id: id, accepts: accepts, deliver: handler})
	return id
}

func (eb *EventBus) add(r route) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i := range eb.routes {
		if eb.routes[i].id == r.id {
			eb.routes[i] = r
			return
		}
	}
	eb.routes = append(eb.routes, r)
	eb.logger.Debug().Str("subscriber_id", r.id).Msg("Subscriber added to event bus")
}

// Unsubscribe removes the subscriber or handler registered under id
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	for i := range eb.routes {
		if eb.routes[i].id == id {
			eb.routes = append(eb.routes[:i:i], eb.routes[i+1:]...)
			eb.logger.Debug().Str("subscriber_id", id).Msg("Subscriber removed from event bus")
			return
		}
	}
}

// Publish hands event to every registration interested in its type. The
// registrations are snapshotted first, so a handler may itself subscribe or
// unsubscribe. A panicking handler is logged and skipped.
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	routes := append([]route(nil), eb.routes...)
	eb.mu.RUnlock()

	eventType := event.Type()
	eb.logger.Debug().
		Str("event_type", eventType).
		Str("game_id", event.GameID()).
		Int("seq", event.Seq()).
		Msg("Publishing event")

	for _, r := range routes {
		if r.accepts(eventType) {
			eb.deliver(r, event)
		}
	}
}

func (eb *EventBus) deliver(r route, event Event) {
	defer func() {
		if p := recover(); p != nil {
			eb.logger.Error().
				Str("subscriber_id", r.id).
				Str("event_type", event.Type()).
				Int("seq", event.Seq()).
				Interface("panic", p).
				Msg("Subscriber panicked while handling event")
		}
	}()
	r.deliver(event)
}

// Len is the number of registrations on the bus
func (eb *EventBus) Len() int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	return len(eb.routes)
}

// Interested counts the registrations that would receive eventType
func (eb *EventBus) Interested(eventType string) int {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	n := 0
	for _, r := range eb.routes {
		if r.accepts(eventType) {
			n++
		}
	}
	return n
}
