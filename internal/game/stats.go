package game

import (
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
)

// PlayerStats summarises one player's game, derived from the event history.
type PlayerStats struct {
	PlayerID       int            `json:"player_id"`
	Points         int            `json:"points"`
	TilesPlaced    int            `json:"tiles_placed"`
	MeeplesPlaced  int            `json:"meeples_placed"`
	MeeplesOnBoard int            `json:"meeples_on_board"`
	TurnsSkipped   int            `json:"turns_skipped"`
	PointsBy       map[string]int `json:"points_by"`
}

// Stats recalculates statistics for every player, in player ID order.
// Points from a completed structure are filed under its kind; end-of-game
// points are filed under "settlement".
func (e *Engine) Stats() []PlayerStats {
	out := make([]PlayerStats, len(e.gs.Players))
	for i, p := range e.gs.Players {
		out[i] = PlayerStats{
			PlayerID:       p.ID,
			Points:         p.Points,
			MeeplesOnBoard: len(p.PlacedMeeples()),
			PointsBy:       make(map[string]int),
		}
	}
	stat := func(id int) *PlayerStats {
		if id < 0 || id >= len(out) {
			return nil
		}
		return &out[id]
	}

	lastKind := ""
	for _, ev := range e.history.Events() {
		switch ev := ev.(type) {
		case *events.TilePlacedEvent:
			if s := stat(ev.PlayerID); s != nil {
				s.TilesPlaced++
			}
		case *events.MeeplePlacedEvent:
			if s := stat(ev.PlayerID); s != nil {
				s.MeeplesPlaced++
			}
		case *events.TurnSkippedEvent:
			if s := stat(ev.PlayerID); s != nil {
				s.TurnsSkipped++
			}
		case *events.StructureCompletedEvent:
			lastKind = ev.Kind.String()
			if ev.Monastery {
				lastKind = "monastery"
			}
		case *events.MeepleFreedEvent:
			s := stat(ev.PlayerID)
			if s == nil || ev.Reward == 0 {
				continue
			}
			key := lastKind
			if ev.Reason == events.FreedSettlement {
				key = events.FreedSettlement
			}
			s.PointsBy[key] += ev.Reward
		}
	}

	e.logger.Debug().Int("players", len(out)).Msg("Player stats computed")
	return out
}
