package session

import (
	"sync"
	"time"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game"
)

const (
	idempotencyTTL      = 24 * time.Hour
	idempotencyMaxCache = 1000
)

// idempotencyKey represents a composite key for idempotent requests
type idempotencyKey struct {
	PlayerID int
	Key      string
}

// Outcome is what a move returned the first time it was played
type Outcome struct {
	Result game.TurnResult
	Err    error
}

// idempotencyEntry stores a cached outcome with timestamp
type idempotencyEntry struct {
	outcome   Outcome
	createdAt time.Time
}

// IdempotencyManager remembers the outcome of moves submitted with a key, so a
// retried submission gets the first answer instead of being played twice.
type IdempotencyManager struct {
	cache map[idempotencyKey]*idempotencyEntry
	mu    sync.RWMutex
	now   func() time.Time
}

// NewIdempotencyManager creates a new idempotency manager
func NewIdempotencyManager() *IdempotencyManager {
	return &IdempotencyManager{
		cache: make(map[idempotencyKey]*idempotencyEntry),
		now:   time.Now,
	}
}

// Check returns the cached outcome for the player's key, if there is one.
func (im *IdempotencyManager) Check(playerID int, key string) (Outcome, bool) {
	if key == "" {
		return Outcome{}, false
	}

	im.mu.RLock()
	defer im.mu.RUnlock()

	entry, exists := im.cache[idempotencyKey{PlayerID: playerID, Key: key}]
	if !exists || im.now().Sub(entry.createdAt) > idempotencyTTL {
		return Outcome{}, false
	}
	return entry.outcome, true
}

// Store caches an outcome for the given player and key
func (im *IdempotencyManager) Store(playerID int, key string, out Outcome) {
	if key == "" {
		return
	}

	im.mu.Lock()
	defer im.mu.Unlock()

	im.cache[idempotencyKey{PlayerID: playerID, Key: key}] = &idempotencyEntry{
		outcome:   out,
		createdAt: im.now(),
	}

	if len(im.cache) > idempotencyMaxCache {
		im.cleanupOldEntriesLocked()
	}
}

// Len is the number of cached outcomes
func (im *IdempotencyManager) Len() int {
	im.mu.RLock()
	defer im.mu.RUnlock()
	return len(im.cache)
}

// cleanupOldEntriesLocked removes expired entries. Must be called with mu held.
func (im *IdempotencyManager) cleanupOldEntriesLocked() {
	cutoff := im.now().Add(-idempotencyTTL)
	for key, entry := range im.cache {
		if entry.createdAt.Before(cutoff) {
			delete(im.cache, key)
		}
	}
}
