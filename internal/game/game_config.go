package game

import (
	"fmt"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/rs/zerolog"
)

const (
	DefaultPlayers    = 4
	DefaultHandSize   = 3
	DefaultPointLimit = 50
	DefaultMapSize    = core.DefaultGridSize
	MaxPlayers        = 8
)

// GameConfig is everything needed to create an engine. Zero values are
// replaced with defaults by the initializer, except Seed: a zero seed asks for
// a fresh random one, which is recorded in GameStarted.
type GameConfig struct {
	GameID           string
	Players          int
	MeeplesPerPlayer int
	HandSize         int
	PointLimit       int // <= 0 disables the limit
	MaxRounds        int // <= 0 means unlimited
	RiverPhase       bool
	Seed             uint64
	MapSize          int
	Scoring          core.Scoring
	Catalog          *core.Catalog
	Logger           zerolog.Logger

	// Subscribers are attached to the event bus before GameStarted is committed.
	Subscribers []events.Subscriber
}

// DefaultGameConfig returns a four player river game with the standard catalog.
func DefaultGameConfig() GameConfig {
	return GameConfig{
		Players:          DefaultPlayers,
		MeeplesPerPlayer: core.DefaultMeeplesPerPlayer,
		HandSize:         DefaultHandSize,
		PointLimit:       DefaultPointLimit,
		RiverPhase:       true,
		MapSize:          DefaultMapSize,
		Scoring:          core.DefaultScoring(),
		Logger:           zerolog.Nop(),
	}
}

// Validate rejects configurations no game can start from
func (c GameConfig) Validate() error {
	if c.Players < 1 || c.Players > MaxPlayers {
		return fmt.Errorf("players must be between 1 and %d, got %d", MaxPlayers, c.Players)
	}
	if c.MeeplesPerPlayer < 0 {
		return fmt.Errorf("meeples per player must not be negative, got %d", c.MeeplesPerPlayer)
	}
	if c.HandSize < 1 {
		return fmt.Errorf("hand size must be at least 1, got %d", c.HandSize)
	}
	if c.MapSize < 3 {
		return fmt.Errorf("map size must be at least 3, got %d", c.MapSize)
	}
	if c.Scoring.Road < 0 || c.Scoring.City < 0 || c.Scoring.Emblem < 0 || c.Scoring.Monastery < 0 {
		return fmt.Errorf("scoring values must not be negative: %+v", c.Scoring)
	}
	return nil
}
