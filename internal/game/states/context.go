package states

import (
	"time"

	"github.com/rs/zerolog"
)

// GameContext is the shared record the state callbacks read and update
type GameContext struct {
	GameID string
	Logger zerolog.Logger

	// PlayerCount is how many players were seated; MaxPlayers bounds it
	PlayerCount int
	MaxPlayers  int

	// RiverPhase is set when the game opens with the river tiles. Without it
	// the river state refuses to be entered.
	RiverPhase bool

	// StartTime is stamped on entering the first phase that accepts moves
	StartTime time.Time

	// EndReason says why play stopped (point limit, tiles exhausted, ...)
	EndReason string

	// Winners are the player IDs sharing the top score once the game has ended
	Winners []int

	// Error is the inconsistency that sent the game to PhaseError
	Error error
}

// NewGameContext creates a context whose logger is tagged with gameID
func NewGameContext(gameID string, maxPlayers int, logger zerolog.Logger) *GameContext {
	return &GameContext{
		GameID:     gameID,
		MaxPlayers: maxPlayers,
		Logger:     logger.With().Str("game_id", gameID).Logger(),
	}
}

// IsReady reports whether the seated players can start a game
func (gc *GameContext) IsReady() bool {
	return gc.PlayerCount >= 1 && gc.PlayerCount <= gc.MaxPlayers
}

// GetElapsedTime is the time since moves were first accepted, zero before that
func (gc *GameContext) GetElapsedTime() time.Duration {
	if gc.StartTime.IsZero() {
		return 0
	}
	return time.Since(gc.StartTime)
}
