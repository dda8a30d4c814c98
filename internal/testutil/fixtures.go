package testutil

import (
	"fmt"
	"testing"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/stretchr/testify/require"
)

// Board lays tiles straight onto a grid, skipping placement rules, so tests
// can build awkward shapes tile by tile.
type Board struct {
	t       *testing.T
	Grid    *core.Grid
	Catalog *core.Catalog
	counter map[string]int
}

// NewBoard creates a default-size grid backed by the standard catalog.
func NewBoard(t *testing.T) *Board {
	t.Helper()
	c, err := core.DefaultCatalog()
	require.NoError(t, err)
	return &Board{t: t, Grid: core.NewGrid(core.DefaultGridSize), Catalog: c, counter: make(map[string]int)}
}

// Tile creates an unplaced tile of tileType rotated clockwise rot times.
func (b *Board) Tile(tileType string, rot int) *core.Tile {
	b.t.Helper()
	b.counter[tileType]++
	tile, err := b.Catalog.NewTileOfType(tileType, fmt.Sprintf("%s%d", tileType, b.counter[tileType]))
	require.NoError(b.t, err)
	require.NoError(b.t, tile.Rotate(rot))
	return tile
}

// Place creates a tile and puts it on (x, y).
func (b *Board) Place(tileType string, x, y, rot int) *core.Tile {
	b.t.Helper()
	tile := b.Tile(tileType, rot)
	require.NoError(b.t, b.Grid.Place(tile, core.Coordinate{X: x, Y: y}))
	return tile
}

// Claim puts a fresh meeple of playerID on slot of tile.
func (b *Board) Claim(tile *core.Tile, slot core.ClaimSlot, playerID int) *core.Meeple {
	b.t.Helper()
	m := &core.Meeple{PlayerID: playerID}
	require.NoError(b.t, m.Place(tile, slot))
	return m
}
