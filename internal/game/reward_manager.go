package game

import (
	"fmt"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/rules"
	"github.com/rs/zerolog"
)

// Completion is one structure scored during a move.
type Completion struct {
	Kind       core.StructureType // StructureNone for a monastery
	Slot       core.ClaimSlot
	Origin     *core.Tile
	Component  rules.Component // nil for a monastery
	Tiles      []*core.Tile
	Resolution rules.Resolution
	Freed      []*events.MeepleFreedEvent
}

// IsMonastery reports whether the completion is a monastery rather than an edge structure
func (c Completion) IsMonastery() bool { return c.Slot == core.SlotMonastery }

// RewardManager turns resolutions into points and MeepleFreed events
type RewardManager struct {
	commit  func(events.Event)
	gameID  string
	scoring core.Scoring
	logger  zerolog.Logger
}

// NewRewardManager creates a reward manager that records through commit
func NewRewardManager(commit func(events.Event), gameID string, scoring core.Scoring, logger zerolog.Logger) *RewardManager {
	return &RewardManager{
		commit:  commit,
		gameID:  gameID,
		scoring: scoring,
		logger:  logger.With().Str("component", "RewardManager").Logger(),
	}
}

// CompleteStructure scores a closed edge structure found from slot of origin
func (rm *RewardManager) CompleteStructure(gs *GameState, origin *core.Tile, slot core.ClaimSlot, kind core.StructureType, comp rules.Component) (Completion, error) {
	if err := rules.CheckClosed(gs.Grid, comp); err != nil {
		return Completion{}, err
	}

	kind = kind.Normalize()
	res := rules.ResolveCompleted(comp, kind, rm.scoring)
	c := Completion{
		Kind:       kind,
		Slot:       slot,
		Origin:     origin,
		Component:  comp,
		Tiles:      comp.Tiles(),
		Resolution: res,
	}
	rm.commit(events.NewStructureCompletedEvent(rm.gameID, kind, origin, slot, c.Tiles, res.Points, res.Winners))

	freed, err := rm.Distribute(gs, res, events.FreedCompleted)
	c.Freed = freed
	return c, err
}

// CompleteMonastery scores a claimed monastery whose block is full
func (rm *RewardManager) CompleteMonastery(gs *GameState, t *core.Tile) (Completion, error) {
	if t.Claim(core.SlotMonastery) == nil {
		return Completion{}, core.NewInconsistencyError("complete monastery",
			fmt.Sprintf("%s has no monastery claim", t))
	}

	res := rules.ResolveMonastery(gs.Grid, t, rm.scoring)
	c := Completion{
		Kind:       core.StructureNone,
		Slot:       core.SlotMonastery,
		Origin:     t,
		Tiles:      blockTiles(gs.Grid, t),
		Resolution: res,
	}
	rm.commit(events.NewStructureCompletedEvent(rm.gameID, core.StructureNone, t, core.SlotMonastery, c.Tiles, res.Points, res.Winners))

	freed, err := rm.Distribute(gs, res, events.FreedCompleted)
	c.Freed = freed
	return c, err
}

// Distribute frees every meeple of res. Each winner is credited once, on
// their first freed meeple; later events for the same player carry 0 so the
// log sums to the score.
func (rm *RewardManager) Distribute(gs *GameState, res rules.Resolution, reason string) ([]*events.MeepleFreedEvent, error) {
	credited := make(map[int]bool)
	var out []*events.MeepleFreedEvent

	for _, m := range res.Freed() {
		p := gs.Player(m.PlayerID)
		if p == nil {
			return out, core.NewInconsistencyError("distribute reward",
				fmt.Sprintf("meeple %d belongs to unknown player %d", m.ID, m.PlayerID))
		}

		reward := 0
		if res.IsWinner(p.ID) && !credited[p.ID] {
			reward = res.Points
			credited[p.ID] = true
			p.Points += reward
		}

		ev := events.NewMeepleFreedEvent(rm.gameID, m, reward, reason)
		if err := m.Free(); err != nil {
			return out, err
		}
		rm.commit(ev)
		out = append(out, ev)

		rm.logger.Debug().
			Int("player_id", p.ID).
			Int("meeple_id", m.ID).
			Int("reward", reward).
			Int("points", p.Points).
			Str("reason", reason).
			Msg("Meeple freed")
	}
	return out, nil
}

// blockTiles returns the tiles in the 3x3 block around t, row by row
func blockTiles(g *core.Grid, t *core.Tile) []*core.Tile {
	if !t.IsPlaced() {
		return nil
	}
	var out []*core.Tile
	for _, c := range t.Pos.Block() {
		if n := g.At(c); n != nil {
			out = append(out, n)
		}
	}
	return out
}
