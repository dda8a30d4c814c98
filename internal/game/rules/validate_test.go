package rules

import (
	"fmt"
	"testing"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePlacement(t *testing.T) {
	b := testutil.NewBoard(t)
	b.Place("B", 85, 85, 0)

	tests := []struct {
		name     string
		pos      core.Coordinate
		rotation int
		reason   core.Reason
	}{
		{"legal city above grass", core.Coordinate{X: 85, Y: 84}, 0, ""},
		{"city against grass", core.Coordinate{X: 85, Y: 84}, 2, core.ReasonEdgeMismatch},
		{"occupied", core.Coordinate{X: 85, Y: 85}, 0, core.ReasonOccupied},
		{"no neighbour", core.Coordinate{X: 80, Y: 80}, 0, core.ReasonNoNeighbour},
		{"diagonal only", core.Coordinate{X: 86, Y: 86}, 0, core.ReasonNoNeighbour},
		{"rotation out of range", core.Coordinate{X: 85, Y: 84}, 4, core.ReasonInvalidRotation},
		{"negative rotation", core.Coordinate{X: 85, Y: 84}, -1, core.ReasonInvalidRotation},
		{"off the board", core.Coordinate{X: -1, Y: 85}, 0, core.ReasonOutOfBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tile := b.Tile("E", 0)
			err := ValidatePlacement(b.Grid, tile, tt.pos, tt.rotation)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrIllegalPlacement)
			assert.Equal(t, tt.reason, core.ReasonOf(err))
			assert.Nil(t, tile.Pos, "validation never places")
		})
	}
}

func TestValidatePlacement_PlacedTile(t *testing.T) {
	b := testutil.NewBoard(t)
	tile := b.Place("B", 85, 85, 0)
	err := ValidatePlacement(b.Grid, tile, core.Coordinate{X: 85, Y: 84}, 0)
	assert.ErrorIs(t, err, core.ErrTilePlaced)
}

func TestValidatePlacement_River(t *testing.T) {
	t.Run("extends the river", func(t *testing.T) {
		b := testutil.NewBoard(t)
		b.Place("RS", 85, 85, 0)
		assert.NoError(t, ValidatePlacement(b.Grid, b.Tile("R2", 0), core.Coordinate{X: 85, Y: 84}, 0))
		assert.NoError(t, ValidatePlacement(b.Grid, b.Tile("R2", 0), core.Coordinate{X: 85, Y: 84}, 2))
	})

	t.Run("river turned against the source", func(t *testing.T) {
		b := testutil.NewBoard(t)
		b.Place("RS", 85, 85, 0)
		err := ValidatePlacement(b.Grid, b.Tile("R2", 0), core.Coordinate{X: 85, Y: 84}, 1)
		assert.Equal(t, core.ReasonEdgeMismatch, core.ReasonOf(err))
	})

	t.Run("disjoint", func(t *testing.T) {
		b := testutil.NewBoard(t)
		b.Place("RS", 85, 85, 0)
		err := ValidatePlacement(b.Grid, b.Tile("R2", 0), core.Coordinate{X: 86, Y: 85}, 0)
		assert.Equal(t, core.ReasonRiverDisjoint, core.ReasonOf(err))
	})

	// RS (85,85) -> R2 (85,84) -> bend east at (85,83)
	bend := func(t *testing.T) *testutil.Board {
		b := testutil.NewBoard(t)
		b.Place("RS", 85, 85, 0)
		b.Place("R2", 85, 84, 0)
		b.Place("R9", 85, 83, 1)
		return b
	}

	t.Run("bend continues", func(t *testing.T) {
		b := bend(t)
		assert.NoError(t, ValidatePlacement(b.Grid, b.Tile("R2", 0), core.Coordinate{X: 86, Y: 83}, 1))
	})

	t.Run("u-turn one step out", func(t *testing.T) {
		b := bend(t)
		// turning south again would run the river into R2
		err := ValidatePlacement(b.Grid, b.Tile("R9", 0), core.Coordinate{X: 86, Y: 83}, 2)
		assert.ErrorIs(t, err, core.ErrIllegalPlacement)
		assert.Equal(t, core.ReasonRiverUTurn, core.ReasonOf(err))
	})

	t.Run("u-turn two steps out", func(t *testing.T) {
		b := bend(t)
		b.Place("B", 88, 84, 0)
		err := ValidatePlacement(b.Grid, b.Tile("R2", 0), core.Coordinate{X: 86, Y: 83}, 1)
		assert.Equal(t, core.ReasonRiverUTurn, core.ReasonOf(err))
	})

	t.Run("river meeting itself", func(t *testing.T) {
		b := testutil.NewBoard(t)
		b.Place("RS", 85, 85, 0)
		b.Place("R2", 85, 83, 0)
		err := ValidatePlacement(b.Grid, b.Tile("R2", 0), core.Coordinate{X: 85, Y: 84}, 0)
		assert.Equal(t, core.ReasonRiverUTurn, core.ReasonOf(err))
	})
}

func TestValidateMeeple(t *testing.T) {
	b := testutil.NewBoard(t)
	e1 := b.Place("E", 85, 85, 1)
	b.Claim(e1, core.SlotRight, 1)
	f1 := b.Place("F", 86, 85, 0)
	mon := b.Place("B", 85, 84, 0)

	tests := []struct {
		name      string
		tile      *core.Tile
		slot      core.ClaimSlot
		available int
		reason    core.Reason
	}{
		{"monastery", mon, core.SlotMonastery, 7, ""},
		{"no meeples left", mon, core.SlotMonastery, 0, core.ReasonNoMeeple},
		{"grass edge", mon, core.SlotLeft, 7, core.ReasonNotClaimable},
		{"no monastery on tile", f1, core.SlotMonastery, 7, core.ReasonNoMonastery},
		{"city already held downstream", f1, core.SlotRight, 7, core.ReasonAlreadyClaimed},
		{"slot taken", e1, core.SlotRight, 7, core.ReasonSlotOccupied},
		{"unknown slot", f1, core.ClaimSlot(7), 7, core.ReasonNotClaimable},
		{"unplaced tile", b.Tile("E", 0), core.SlotTop, 7, core.ReasonWrongTile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMeeple(b.Grid, tt.tile, tt.slot, tt.available)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, core.ErrIllegalMeeple)
			assert.Equal(t, tt.reason, core.ReasonOf(err))
		})
	}
}

func TestValidateMeeple_FreeCity(t *testing.T) {
	b := testutil.NewBoard(t)
	e := b.Place("E", 85, 85, 0)
	assert.NoError(t, ValidateMeeple(b.Grid, e, core.SlotTop, 1))
	assert.Equal(t, []core.ClaimSlot{core.SlotTop}, LegalMeepleSlots(b.Grid, e, 1))
	assert.Empty(t, LegalMeepleSlots(b.Grid, e, 0))
}

func TestLegalPlacements(t *testing.T) {
	b := testutil.NewBoard(t)
	b.Place("RS", 85, 85, 0)

	got := LegalPlacements(b.Grid, b.Tile("R2", 0))
	assert.Equal(t, []Placement{
		{Pos: core.Coordinate{X: 85, Y: 84}, Rotation: 0},
		{Pos: core.Coordinate{X: 85, Y: 84}, Rotation: 2},
	}, got)
	assert.True(t, HasLegalPlacement(b.Grid, b.Tile("R2", 0)))

	// a full city cannot touch the grass around the source
	assert.False(t, HasLegalPlacement(b.Grid, b.Tile("C", 0)))
	assert.Empty(t, LegalPlacements(b.Grid, b.Tile("C", 0)))
}

func TestValidatePlacement_RandomBoards(t *testing.T) {
	for _, seed := range []uint64{1, 7, 99} {
		t.Run(fmt.Sprintf("seed %d", seed), func(t *testing.T) {
			rng := testutil.NewTestRNG(seed)
			b := testutil.NewBoard(t)
			c := b.Grid.Center()
			b.Place("D", c.X, c.Y, 0)

			placed := 1
			for _, tile := range b.Catalog.BasePool().Draw(rng, 40) {
			search:
				for _, pos := range b.Grid.Frontier() {
					for rot := 0; rot < 4; rot++ {
						if ValidatePlacement(b.Grid, tile, pos, rot) != nil {
							continue
						}
						require.NoError(t, tile.SetRotation(rot))
						require.NoError(t, b.Grid.Place(tile, pos))
						placed++
						break search
					}
				}
			}
			require.Greater(t, placed, 1)

			// every accepted placement must leave matching edges behind it
			for _, tile := range b.Grid.Placed() {
				for _, e := range core.Edges {
					n := tile.Neighbour(b.Grid, e)
					if n == nil {
						continue
					}
					assert.True(t, core.Compatible(tile.Edge(e), n.Edge(e.Opposite())),
						"%s %s against %s", tile, e, n)
				}
			}
		})
	}
}
