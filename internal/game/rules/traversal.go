package rules

import "github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"

// Pair is one tile edge belonging to a structure.
type Pair struct {
	Tile *core.Tile
	Edge core.Edge
}

// Component is the set of pairs reachable from a seed, in visit order.
type Component []Pair

// Filter selects which pairs a traversal reports. Every pair is still walked.
type Filter func(Pair) bool

// Claimed keeps only pairs carrying a meeple.
func Claimed(p Pair) bool {
	return p.Tile.Claims[core.SlotFor(p.Edge)] != nil
}

// Traverse walks the structure on slot of start breadth-first and returns
// the pairs accepted by filter (all pairs when filter is nil). The monastery
// slot and unplaced tiles yield nothing.
func Traverse(g *core.Grid, start *core.Tile, slot core.ClaimSlot, filter Filter) Component {
	seed, ok := slot.Edge()
	if !ok || !start.IsPlaced() {
		return nil
	}

	kind := start.Edge(seed)
	visited := make(map[Pair]bool)
	queue := []Pair{{Tile: start, Edge: seed}}
	var out Component

	visit := func(p Pair) {
		visited[p] = true
		if filter == nil || filter(p) {
			out = append(out, p)
		}
	}

	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		if visited[p] {
			continue
		}
		visit(p)

		joined := joinedEdges(p.Tile, p.Edge, kind)
		// a road stub only seeds the first tile
		if kind == core.RoadStart {
			kind = core.Road
		}

		for _, e := range joined[1:] {
			if q := (Pair{Tile: p.Tile, Edge: e}); !visited[q] {
				visit(q)
			}
		}

		for _, e := range joined {
			n := g.Neighbour(*p.Tile.Pos, e)
			if n == nil {
				continue
			}
			q := Pair{Tile: n, Edge: e.Opposite()}
			if !core.Compatible(kind, n.Edge(q.Edge)) || visited[q] {
				continue
			}
			queue = append(queue, q)
		}
	}
	return out
}

// joinedEdges returns edge followed by every other edge of t that belongs to
// the same structure of the given kind.
func joinedEdges(t *core.Tile, edge core.Edge, kind core.StructureType) []core.Edge {
	joined := []core.Edge{edge}

	for _, a := range edge.Adjacent() {
		if kind == core.City && t.HasModifier(core.ModBrokenCity) {
			continue
		}
		if kind.IsRoad() && t.HasModifier(core.ModBrokenRoadCenter) {
			continue
		}
		if kind == core.RoadStart && t.Edge(a) == core.RoadStart {
			continue
		}
		if t.Edge(a) == kind {
			joined = append(joined, a)
		}
	}

	opp := edge.Opposite()
	if t.Edge(opp) != kind {
		return joined
	}
	if len(joined) > 1 {
		return append(joined, opp)
	}
	if bridge, ok := core.BridgeFor(kind); ok && t.HasModifier(bridge) {
		joined = append(joined, opp)
	}
	return joined
}

// Tiles returns the distinct tiles of the component in first-seen order.
func (c Component) Tiles() []*core.Tile {
	seen := make(map[*core.Tile]bool)
	var out []*core.Tile
	for _, p := range c {
		if !seen[p.Tile] {
			seen[p.Tile] = true
			out = append(out, p.Tile)
		}
	}
	return out
}

// Contains reports whether edge e of t is in the component.
func (c Component) Contains(t *core.Tile, e core.Edge) bool {
	for _, p := range c {
		if p.Tile == t && p.Edge == e {
			return true
		}
	}
	return false
}

// Meeples returns every meeple standing on a pair of the component.
func (c Component) Meeples() []*core.Meeple {
	var out []*core.Meeple
	for _, p := range c {
		if m := p.Tile.Claims[core.SlotFor(p.Edge)]; m != nil {
			out = append(out, m)
		}
	}
	return out
}

// Set returns the component as a set, for order-insensitive comparisons.
func (c Component) Set() map[Pair]bool {
	out := make(map[Pair]bool, len(c))
	for _, p := range c {
		out[p] = true
	}
	return out
}
