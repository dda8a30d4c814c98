package rules

import (
	"sort"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
)

// Reward is the value of a structure of the given kind: the base value per
// distinct tile, plus the emblem bonus per distinct emblem tile for cities.
func Reward(c Component, kind core.StructureType, s core.Scoring) int {
	points := 0
	base := s.Base(kind)
	for _, t := range c.Tiles() {
		points += base
		if kind == core.City && t.HasModifier(core.ModEmblem) {
			points += s.Emblem
		}
	}
	return points
}

// Claim is one player's meeples inside a structure.
type Claim struct {
	PlayerID int
	Meeples  []*core.Meeple
}

// Claims groups the meeples of c by owner, ordered by player ID.
func Claims(c Component) []Claim {
	return groupMeeples(c.Meeples())
}

func groupMeeples(meeples []*core.Meeple) []Claim {
	byPlayer := make(map[int][]*core.Meeple)
	for _, m := range meeples {
		byPlayer[m.PlayerID] = append(byPlayer[m.PlayerID], m)
	}
	out := make([]Claim, 0, len(byPlayer))
	for id, ms := range byPlayer {
		out = append(out, Claim{PlayerID: id, Meeples: ms})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PlayerID < out[j].PlayerID })
	return out
}

// Winners returns the players holding the most meeples, in player ID order.
// Each of them receives the full reward.
func Winners(claims []Claim) []int {
	most := 0
	for _, c := range claims {
		most = max(most, len(c.Meeples))
	}
	var out []int
	for _, c := range claims {
		if most > 0 && len(c.Meeples) == most {
			out = append(out, c.PlayerID)
		}
	}
	return out
}

// Resolution is the scoring outcome of one structure.
type Resolution struct {
	Points  int
	Claims  []Claim
	Winners []int
}

// IsWinner reports whether playerID scores the structure.
func (r Resolution) IsWinner(playerID int) bool {
	for _, id := range r.Winners {
		if id == playerID {
			return true
		}
	}
	return false
}

// Freed lists every meeple in the structure, claim by claim.
func (r Resolution) Freed() []*core.Meeple {
	var out []*core.Meeple
	for _, c := range r.Claims {
		out = append(out, c.Meeples...)
	}
	return out
}

// ResolveCompleted scores a finished structure. Every player with a meeple in
// it takes the full reward, however many meeples the others hold.
func ResolveCompleted(c Component, kind core.StructureType, s core.Scoring) Resolution {
	claims := Claims(c)
	var winners []int
	for _, cl := range claims {
		winners = append(winners, cl.PlayerID)
	}
	return Resolution{
		Points:  Reward(c, kind, s),
		Claims:  claims,
		Winners: winners,
	}
}

// Resolve scores a structure left open at the end of the game. Only the
// players holding the most meeples in it take the points.
func Resolve(c Component, kind core.StructureType, s core.Scoring) Resolution {
	claims := Claims(c)
	return Resolution{
		Points:  Reward(c, kind, s),
		Claims:  claims,
		Winners: Winners(claims),
	}
}

// ResolveMonastery scores a monastery claim. A finished monastery is worth the
// full monastery value; an open one is worth one point per filled cell.
func ResolveMonastery(g *core.Grid, t *core.Tile, s core.Scoring) Resolution {
	m := t.Claim(core.SlotMonastery)
	if m == nil {
		return Resolution{}
	}
	points := s.Monastery
	if filled := MonasteryFill(g, t); filled < 9 {
		points = filled
	}
	return Resolution{
		Points:  points,
		Claims:  groupMeeples([]*core.Meeple{m}),
		Winners: []int{m.PlayerID},
	}
}

// MonasteryFill counts the occupied cells of the 3x3 block around t.
func MonasteryFill(g *core.Grid, t *core.Tile) int {
	if !t.IsPlaced() {
		return 0
	}
	n := 0
	for _, c := range t.Pos.Block() {
		if g.Occupied(c) {
			n++
		}
	}
	return n
}
