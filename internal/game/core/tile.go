package core

import (
	"fmt"
	"slices"
)

// Tile is a single square piece. Edges is indexed by Edge and reflects the
// current rotation; Claims is indexed by ClaimSlot.
type Tile struct {
	ID        string
	Type      string
	Edges     [4]StructureType
	Rotation  int
	Modifiers []Modifier
	Claims    [5]*Meeple
	Pos       *Coordinate
}

// NewTile builds an unplaced tile in its catalog orientation.
func NewTile(id, tileType string, edges [4]StructureType, mods ...Modifier) *Tile {
	return &Tile{
		ID:        id,
		Type:      tileType,
		Edges:     edges,
		Modifiers: slices.Clone(mods),
	}
}

// Edge returns the structure on edge e.
func (t *Tile) Edge(e Edge) StructureType { return t.Edges[e] }

// HasModifier reports whether the tile carries m.
func (t *Tile) HasModifier(m Modifier) bool {
	return slices.Contains(t.Modifiers, m)
}

// IsPlaced reports whether the tile sits on a grid.
func (t *Tile) IsPlaced() bool { return t.Pos != nil }

// Claim returns the meeple on slot s, or nil.
func (t *Tile) Claim(s ClaimSlot) *Meeple {
	if !s.Valid() {
		return nil
	}
	return t.Claims[s]
}

// rotateEdges turns edges clockwise one quarter per step.
func rotateEdges(edges [4]StructureType, steps int) [4]StructureType {
	steps = ((steps % 4) + 4) % 4
	for i := 0; i < steps; i++ {
		edges = [4]StructureType{
			Left:   edges[Bottom],
			Right:  edges[Top],
			Top:    edges[Left],
			Bottom: edges[Right],
		}
	}
	return edges
}

// Rotate turns the tile clockwise by steps quarter turns. Placed tiles are fixed.
func (t *Tile) Rotate(steps int) error {
	if t.IsPlaced() {
		return fmt.Errorf("rotate %s at %s: %w", t.ID, t.Pos, ErrTilePlaced)
	}
	t.Edges = rotateEdges(t.Edges, steps)
	t.Rotation = (((t.Rotation + steps) % 4) + 4) % 4
	return nil
}

// SetRotation rotates the tile until its rotation equals r.
func (t *Tile) SetRotation(r int) error {
	if !ValidRotation(r) {
		return fmt.Errorf("rotate %s to %d: %w", t.ID, r, ErrIllegalPlacement)
	}
	return t.Rotate(r - t.Rotation)
}

// EdgesAt returns the edges the tile would show at absolute rotation r
// without mutating it.
func (t *Tile) EdgesAt(r int) [4]StructureType {
	return rotateEdges(t.Edges, r-t.Rotation)
}

// ValidRotation reports whether r is a quarter-turn count in 0..3.
func ValidRotation(r int) bool { return r >= 0 && r <= 3 }

// IsStraightRiver reports whether the river runs straight through the tile.
func (t *Tile) IsStraightRiver() bool {
	return (t.Edges[Top] == River && t.Edges[Bottom] == River) ||
		(t.Edges[Left] == River && t.Edges[Right] == River)
}

// HasRiver reports whether any edge is a river.
func (t *Tile) HasRiver() bool {
	return slices.Contains(t.Edges[:], River)
}

// Neighbour returns the tile across edge e on g, or nil.
func (t *Tile) Neighbour(g *Grid, e Edge) *Tile {
	if t.Pos == nil {
		return nil
	}
	return g.Neighbour(*t.Pos, e)
}

func (t *Tile) String() string {
	if t.Pos == nil {
		return t.ID
	}
	return fmt.Sprintf("%s@%s", t.ID, t.Pos)
}

// Ref is the identity of a placed tile as it appears in events.
type Ref struct {
	ID       string     `json:"id"`
	Type     string     `json:"type"`
	Pos      Coordinate `json:"pos"`
	Rotation int        `json:"rotation"`
}

// Ref snapshots the tile's identity and placement.
func (t *Tile) Ref() Ref {
	r := Ref{ID: t.ID, Type: t.Type, Rotation: t.Rotation}
	if t.Pos != nil {
		r.Pos = *t.Pos
	}
	return r
}
