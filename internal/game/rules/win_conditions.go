package rules

import (
	"sort"

	"github.com/rs/zerolog"
)

// WinConditionChecker handles point-limit detection and final standings
type WinConditionChecker struct {
	logger     zerolog.Logger
	pointLimit int
}

// NewWinConditionChecker creates a new win condition checker. A pointLimit of
// zero or less disables the limit.
func NewWinConditionChecker(logger zerolog.Logger, pointLimit int) *WinConditionChecker {
	return &WinConditionChecker{
		logger:     logger.With().Str("component", "WinConditionChecker").Logger(),
		pointLimit: pointLimit,
	}
}

// PointLimit returns the configured limit.
func (wc *WinConditionChecker) PointLimit() int { return wc.pointLimit }

// CheckPointLimit reports whether any player has reached the point limit.
// Returns (reached, playerID) for the lowest-ID player at or above it.
func (wc *WinConditionChecker) CheckPointLimit(players []Player) (bool, int) {
	if wc.pointLimit <= 0 {
		return false, -1
	}
	for _, p := range sortedByID(players) {
		if p.GetPoints() >= wc.pointLimit {
			wc.logger.Info().
				Int("player_id", p.GetID()).
				Int("points", p.GetPoints()).
				Int("point_limit", wc.pointLimit).
				Msg("Point limit reached")
			return true, p.GetID()
		}
	}
	return false, -1
}

// Standing is one row of the final ranking.
type Standing struct {
	Rank     int `json:"rank"`
	PlayerID int `json:"player_id"`
	Points   int `json:"points"`
}

// Standings ranks players by points descending; ties keep player ID order.
// Tied players share a rank.
func (wc *WinConditionChecker) Standings(players []Player) []Standing {
	ordered := sortedByID(players)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].GetPoints() > ordered[j].GetPoints()
	})

	out := make([]Standing, len(ordered))
	for i, p := range ordered {
		rank := i + 1
		if i > 0 && p.GetPoints() == ordered[i-1].GetPoints() {
			rank = out[i-1].Rank
		}
		out[i] = Standing{Rank: rank, PlayerID: p.GetID(), Points: p.GetPoints()}
	}

	if len(out) > 0 {
		wc.logger.Debug().Interface("standings", out).Msg("Standings computed")
	}
	return out
}

func sortedByID(players []Player) []Player {
	out := make([]Player, len(players))
	copy(out, players)
	sort.Slice(out, func(i, j int) bool { return out[i].GetID() < out[j].GetID() })
	return out
}

// Player interface to avoid circular imports
type Player interface {
	GetID() int
	GetPoints() int
}
