package events

import (
	"time"
)

// Event is the closed set of things the engine commits to its log. Only this
// package can add variants.
type Event interface {
	Type() string
	// Seq is the event's 1-based position in its game's history. It is zero
	// until the event is committed.
	Seq() int
	Timestamp() time.Time
	GameID() string

	header() *BaseEvent
}

// BaseEvent is the header every event carries on the wire
type BaseEvent struct {
	EventType string    `json:"type"`
	Sequence  int       `json:"seq"`
	Time      time.Time `json:"timestamp"`
	Game      string    `json:"game_id"`
}

func newBase(eventType, gameID string) BaseEvent {
	return BaseEvent{EventType: eventType, Time: time.Now(), Game: gameID}
}

func (e *BaseEvent) Type() string         { return e.EventType }
func (e *BaseEvent) Seq() int             { return e.Sequence }
func (e *BaseEvent) Timestamp() time.Time { return e.Time }
func (e *BaseEvent) GameID() string       { return e.Game }
func (e *BaseEvent) header() *BaseEvent   { return e }

// EventHandler receives the events of the types it was registered for
type EventHandler func(Event)

// Subscriber is a named receiver that filters events by type. IDs are unique
// per bus.
type Subscriber interface {
	ID() string
	HandleEvent(Event)
	InterestedIn(eventType string) bool
}

// Publisher accepts events for delivery
type Publisher interface {
	Publish(Event)
}
