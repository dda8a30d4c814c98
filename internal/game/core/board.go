package core

import "fmt"

// DefaultGridSize leaves room for the longest river plus every base tile in
// any direction from the centre.
const DefaultGridSize = 169

// Grid is the fixed-size board. Cells are filled once and never vacated.
type Grid struct {
	size   int
	cells  []*Tile // length = size*size (row-major)
	placed []*Tile
}

func NewGrid(size int) *Grid {
	if size <= 0 {
		size = DefaultGridSize
	}
	return &Grid{size: size, cells: make([]*Tile, size*size)}
}

func (g *Grid) Size() int { return g.size }

// Center is where the starting tile goes: (85,85) on the default grid.
func (g *Grid) Center() Coordinate {
	c := min((g.size+1)/2, g.size-1)
	return Coordinate{X: c, Y: c}
}

// InBounds checks if the coordinate is on the board
func (g *Grid) InBounds(c Coordinate) bool {
	return c.IsValid(g.size, g.size)
}

// At safely returns the tile at c, nil when empty or off the board
func (g *Grid) At(c Coordinate) *Tile {
	if !g.InBounds(c) {
		return nil
	}
	return g.cells[c.ToIndex(g.size)]
}

func (g *Grid) Occupied(c Coordinate) bool { return g.At(c) != nil }

// Neighbour returns the tile across edge e from c.
func (g *Grid) Neighbour(c Coordinate, e Edge) *Tile {
	return g.At(c.Step(e))
}

// HasNeighbour reports whether any orthogonal neighbour of c is occupied.
func (g *Grid) HasNeighbour(c Coordinate) bool {
	for _, e := range Edges {
		if g.Neighbour(c, e) != nil {
			return true
		}
	}
	return false
}

// Place puts t on cell c and records its position.
func (g *Grid) Place(t *Tile, c Coordinate) error {
	if t.IsPlaced() {
		return fmt.Errorf("place %s at %s: %w", t, c, ErrTilePlaced)
	}
	if !g.InBounds(c) {
		return NewPlacementError(ReasonOutOfBounds, t, c, "")
	}
	if g.Occupied(c) {
		return NewPlacementError(ReasonOccupied, t, c, "")
	}
	pos := c
	t.Pos = &pos
	g.cells[c.ToIndex(g.size)] = t
	g.placed = append(g.placed, t)
	return nil
}

// Placed returns the tiles on the board in placement order.
func (g *Grid) Placed() []*Tile { return g.placed }

// Len is the number of tiles on the board.
func (g *Grid) Len() int { return len(g.placed) }

// Last returns the most recently placed tile, or nil.
func (g *Grid) Last() *Tile {
	if len(g.placed) == 0 {
		return nil
	}
	return g.placed[len(g.placed)-1]
}

// Frontier returns every empty in-bounds cell orthogonally adjacent to a placed
// tile, in placement order of the tile that exposes it.
func (g *Grid) Frontier() []Coordinate {
	seen := make(map[Coordinate]bool)
	var out []Coordinate
	for _, t := range g.placed {
		for _, n := range t.Pos.Neighbors() {
			if seen[n] || !g.InBounds(n) || g.Occupied(n) {
				continue
			}
			seen[n] = true
			out = append(out, n)
		}
	}
	return out
}
