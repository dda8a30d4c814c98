package game

import (
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/rules"
	"github.com/rs/zerolog/log"
	"golang.org/x/exp/rand"
)

// Agent decides moves for PlayTurn: first the tile, then, once the tile is
// down, the claim.
type Agent interface {
	ChooseTile(e *Engine) Move
	ChooseMeeple(e *Engine) *core.ClaimSlot
}

// RandomAgent plays uniformly random legal moves. It is a baseline for demos
// and tests.
type RandomAgent struct {
	rng *rand.Rand
	// MeepleChance is the probability of claiming when a slot is legal
	MeepleChance float64
}

// NewRandomAgent creates a random agent with its own seeded RNG
func NewRandomAgent(seed uint64, meepleChance float64) *RandomAgent {
	return &RandomAgent{rng: rand.New(rand.NewSource(seed)), MeepleChance: meepleChance}
}

// ChooseTile picks any legal placement of any tile in hand, or a skip
func (a *RandomAgent) ChooseTile(e *Engine) Move {
	p := e.GameState().CurrentPlayer()
	mv := Move{PlayerID: p.ID}

	type option struct {
		hand int
		at   rules.Placement
	}
	var options []option
	for i, t := range p.Hand {
		for _, pl := range rules.LegalPlacements(e.GameState().Grid, t) {
			options = append(options, option{hand: i, at: pl})
		}
	}
	if len(options) == 0 {
		mv.Skip = true
		return mv
	}

	chosen := options[a.rng.Intn(len(options))]
	mv.HandIndex = chosen.hand
	mv.Pos = chosen.at.Pos
	mv.Rotation = chosen.at.Rotation

	log.Debug().
		Int("player_id", p.ID).
		Str("tile_id", p.Hand[chosen.hand].ID).
		Stringer("pos", mv.Pos).
		Int("rotation", mv.Rotation).
		Int("options", len(options)).
		Msg("Generated random placement")
	return mv
}

// ChooseMeeple claims a random legal slot with probability MeepleChance
func (a *RandomAgent) ChooseMeeple(e *Engine) *core.ClaimSlot {
	slots := e.LegalMeepleSlots()
	if len(slots) == 0 || a.rng.Float64() >= a.MeepleChance {
		return nil
	}
	s := slots[a.rng.Intn(len(slots))]
	return &s
}

// LegalMeepleSlots lists the slots the player on turn may claim on the tile
// they just placed. It is empty outside the meeple window.
func (e *Engine) LegalMeepleSlots() []core.ClaimSlot {
	t := e.gs.LastPlaced
	p := e.gs.CurrentPlayer()
	if t == nil || p == nil {
		return nil
	}
	var out []core.ClaimSlot
	for _, s := range rules.LegalMeepleSlots(e.gs.Grid, t, p.AvailableMeeples()) {
		if edge, ok := s.Edge(); ok && e.gs.Scored[edge] {
			continue
		}
		out = append(out, s)
	}
	return out
}
