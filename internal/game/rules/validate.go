package rules

import (
	"fmt"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
)

// ValidatePlacement checks that t may go on pos at the given absolute
// rotation. It returns nil or a *core.MoveError and never mutates the board.
func ValidatePlacement(g *core.Grid, t *core.Tile, pos core.Coordinate, rotation int) error {
	if !core.ValidRotation(rotation) {
		return core.NewPlacementError(core.ReasonInvalidRotation, t, pos, fmt.Sprintf("rotation %d", rotation))
	}
	if t.IsPlaced() {
		return fmt.Errorf("validate %s: %w", t, core.ErrTilePlaced)
	}
	if !g.InBounds(pos) {
		return core.NewPlacementError(core.ReasonOutOfBounds, t, pos, "")
	}
	if g.Occupied(pos) {
		return core.NewPlacementError(core.ReasonOccupied, t, pos, "")
	}
	if !g.HasNeighbour(pos) {
		return core.NewPlacementError(core.ReasonNoNeighbour, t, pos, "")
	}

	edges := t.EdgesAt(rotation)
	hasRiver := false
	for _, e := range core.Edges {
		if edges[e] == core.River {
			hasRiver = true
		}
		n := g.Neighbour(pos, e)
		if n == nil {
			continue
		}
		theirs := n.Edge(e.Opposite())
		if !core.Compatible(edges[e], theirs) {
			return core.NewPlacementError(core.ReasonEdgeMismatch, t, pos,
				fmt.Sprintf("%s %s against %s %s", e, edges[e], n.ID, theirs))
		}
	}

	if hasRiver {
		if reason, detail := riverCheck(g, edges, pos); reason != "" {
			return core.NewPlacementError(reason, t, pos, detail)
		}
	}
	return nil
}

// riverCheck requires exactly one river edge to join the existing river and
// looks ahead of every open river edge for tiles the river would bend back into.
func riverCheck(g *core.Grid, edges [4]core.StructureType, pos core.Coordinate) (core.Reason, string) {
	connections := 0
	for _, e := range core.Edges {
		if edges[e] != core.River {
			continue
		}
		if g.Neighbour(pos, e) != nil {
			connections++
			continue
		}

		one := pos.Step(e)
		for _, c := range one.Neighbors() {
			if c != pos && g.Occupied(c) {
				return core.ReasonRiverUTurn, fmt.Sprintf("%s blocked one step out at %s", e, c)
			}
		}
		two := pos.Add(e.Delta().Scale(2))
		for _, c := range two.Neighbors() {
			if g.Occupied(c) {
				return core.ReasonRiverUTurn, fmt.Sprintf("%s blocked two steps out at %s", e, c)
			}
		}
	}

	switch {
	case connections == 0:
		return core.ReasonRiverDisjoint, ""
	case connections > 1:
		return core.ReasonRiverUTurn, "river closes on itself"
	}
	return "", ""
}

// ValidateMeeple checks that a meeple may go on slot of the placed tile t.
// available is the number of meeples the player still holds.
func ValidateMeeple(g *core.Grid, t *core.Tile, slot core.ClaimSlot, available int) error {
	if !t.IsPlaced() {
		return core.NewMeepleError(core.ReasonWrongTile, t, slot, "tile is not on the board")
	}
	if available <= 0 {
		return core.NewMeepleError(core.ReasonNoMeeple, t, slot, "")
	}
	if !slot.Valid() {
		return core.NewMeepleError(core.ReasonNotClaimable, t, slot, "unknown slot")
	}
	if t.Claim(slot) != nil {
		return core.NewMeepleError(core.ReasonSlotOccupied, t, slot, "")
	}

	e, ok := slot.Edge()
	if !ok {
		if !t.HasModifier(core.ModMonastery) {
			return core.NewMeepleError(core.ReasonNoMonastery, t, slot, "")
		}
		return nil
	}

	if kind := t.Edge(e); !kind.Claimable() {
		return core.NewMeepleError(core.ReasonNotClaimable, t, slot, kind.String())
	}
	if claimed := Traverse(g, t, slot, Claimed); len(claimed) > 0 {
		p := claimed[0]
		return core.NewMeepleError(core.ReasonAlreadyClaimed, t, slot,
			fmt.Sprintf("player %d holds %s %s", p.Tile.Claims[core.SlotFor(p.Edge)].PlayerID, p.Tile, p.Edge))
	}
	return nil
}
