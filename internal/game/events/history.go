package events

import "sync"

// History is the ordered log of every event a game committed. It is the
// canonical replay log.
type History struct {
	mu     sync.RWMutex
	gameID string
	events []Event
}

// NewHistory creates an empty log for gameID
func NewHistory(gameID string) *History {
	return &History{gameID: gameID}
}

// Append stamps e with the next sequence number and the history's game ID,
// then stores it.
func (h *History) Append(e Event) Event {
	h.mu.Lock()
	defer h.mu.Unlock()

	hdr := e.header()
	hdr.Sequence = len(h.events) + 1
	hdr.Game = h.gameID
	h.events = append(h.events, e)
	return e
}

// Events returns a copy of the log
func (h *History) Events() []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return append([]Event(nil), h.events...)
}

// Since returns events with a sequence number greater than seq
func (h *History) Since(seq int) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if seq < 0 {
		seq = 0
	}
	if seq >= len(h.events) {
		return nil
	}
	return append([]Event(nil), h.events[seq:]...)
}

func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.events)
}

// Last returns the most recent event, or nil for an empty log
func (h *History) Last() Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.events) == 0 {
		return nil
	}
	return h.events[len(h.events)-1]
}

// Filter returns the events of one type in log order
func (h *History) Filter(eventType string) []Event {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []Event
	for _, e := range h.events {
		if e.Type() == eventType {
			out = append(out, e)
		}
	}
	return out
}
