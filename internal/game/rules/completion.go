package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
)

// Completed is a structure closed off by a tile, keyed by the tile slot it was
// found from.
type Completed struct {
	Slot      core.ClaimSlot
	Kind      core.StructureType
	Component Component
}

// Complete reports whether every pair of c has a neighbouring tile.
func Complete(g *core.Grid, c Component) bool {
	if len(c) == 0 {
		return false
	}
	for _, p := range c {
		if p.Tile.Pos == nil || g.Neighbour(*p.Tile.Pos, p.Edge) == nil {
			return false
		}
	}
	return true
}

// CompletedComponents returns the claimable structures running through t that
// are now closed, in edge order. An edge already reached while walking an
// earlier edge of t is not reported again.
func CompletedComponents(g *core.Grid, t *core.Tile) []Completed {
	if !t.IsPlaced() {
		return nil
	}
	var out []Completed
	attributed := make(map[core.Edge]bool)

	for _, e := range core.Edges {
		if attributed[e] || g.Neighbour(*t.Pos, e) == nil {
			continue
		}
		kind := t.Edge(e)
		comp := Traverse(g, t, core.SlotFor(e), nil)
		for _, p := range comp {
			if p.Tile == t {
				attributed[p.Edge] = true
			}
		}
		if !kind.Claimable() || !Complete(g, comp) {
			continue
		}
		out = append(out, Completed{Slot: core.SlotFor(e), Kind: kind, Component: comp})
	}
	return out
}

// CheckClosed verifies every pair of a completed component points at a pair
// that is also in the component. A failure means the board and the traversal
// disagree.
func CheckClosed(g *core.Grid, c Component) error {
	set := c.Set()
	for _, p := range c {
		n := g.Neighbour(*p.Tile.Pos, p.Edge)
		if n == nil {
			return core.NewInconsistencyError("check component",
				fmt.Sprintf("%s %s has no neighbour", p.Tile, p.Edge))
		}
		if !set[Pair{Tile: n, Edge: p.Edge.Opposite()}] {
			return core.NewInconsistencyError("check component",
				fmt.Sprintf("%s %s is not linked from %s", n, p.Edge.Opposite(), p.Tile))
		}
	}
	return nil
}
