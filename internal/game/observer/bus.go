// Package observer tracks structures that are not made of edges. Subscribers
// watch board cells and are told whenever a tile lands on one of them.
package observer

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
)

// Subscriber watches a fixed set of cells.
type Subscriber interface {
	// Watching returns the cells the subscriber wants to hear about
	Watching() []core.Coordinate
	// Seed records cells already filled when the subscriber is registered
	Seed(g *core.Grid)
	// OnTilePlaced records a new tile and reports whether the subscriber is done
	OnTilePlaced(t *core.Tile) bool
	// Done reports whether the subscriber has completed
	Done() bool
}

// Bus is one game's dispatch table from cell to interested subscribers.
type Bus struct {
	mu       sync.Mutex
	watchers map[core.Coordinate][]Subscriber
	count    int
	logger   zerolog.Logger
}

// NewBus creates an empty dispatch table
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		watchers: make(map[core.Coordinate][]Subscriber),
		logger:   logger.With().Str("component", "tile_bus").Logger(),
	}
}

// Register seeds s from the grid and adds it to every cell it watches. It
// returns true, without registering, when s is already complete.
func (b *Bus) Register(g *core.Grid, s Subscriber) bool {
	s.Seed(g)
	if s.Done() {
		b.logger.Debug().Msg("Subscriber complete at registration")
		return true
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range s.Watching() {
		b.watchers[c] = append(b.watchers[c], s)
	}
	b.count++
	b.logger.Debug().Int("subscribers", b.count).Msg("Subscriber registered")
	return false
}

// Deregister removes s from every cell it watches.
func (b *Bus) Deregister(s Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.deregisterLocked(s)
}

func (b *Bus) deregisterLocked(s Subscriber) {
	removed := false
	for _, c := range s.Watching() {
		subs := b.watchers[c]
		for i, w := range subs {
			if w == s {
				subs = append(subs[:i:i], subs[i+1:]...)
				removed = true
				break
			}
		}
		if len(subs) == 0 {
			delete(b.watchers, c)
		} else {
			b.watchers[c] = subs
		}
	}
	if removed {
		b.count--
	}
}

// Notify tells every subscriber watching t's cell about t, in registration
// order, and returns the ones that completed. Completed subscribers are
// deregistered before Notify returns.
func (b *Bus) Notify(t *core.Tile) []Subscriber {
	if t.Pos == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	current := append([]Subscriber(nil), b.watchers[*t.Pos]...)
	var done []Subscriber
	for _, s := range current {
		if s.OnTilePlaced(t) {
			b.deregisterLocked(s)
			done = append(done, s)
		}
	}
	if len(done) > 0 {
		b.logger.Debug().
			Str("pos", t.Pos.String()).
			Int("completed", len(done)).
			Msg("Subscribers completed")
	}
	return done
}

// Len returns the number of registered subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.count
}

// Watchers returns how many subscribers watch cell c.
func (b *Bus) Watchers(c core.Coordinate) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.watchers[c])
}
