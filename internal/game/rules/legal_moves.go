package rules

import "github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"

// Placement is a cell and absolute rotation for a tile.
type Placement struct {
	Pos      core.Coordinate
	Rotation int
}

// LegalPlacements returns every frontier cell and rotation where t validates.
// Results follow frontier order, then rotation.
func LegalPlacements(g *core.Grid, t *core.Tile) []Placement {
	var out []Placement
	for _, pos := range g.Frontier() {
		for r := 0; r < 4; r++ {
			if ValidatePlacement(g, t, pos, r) == nil {
				out = append(out, Placement{Pos: pos, Rotation: r})
			}
		}
	}
	return out
}

// HasLegalPlacement reports whether t fits anywhere on g.
func HasLegalPlacement(g *core.Grid, t *core.Tile) bool {
	for _, pos := range g.Frontier() {
		for r := 0; r < 4; r++ {
			if ValidatePlacement(g, t, pos, r) == nil {
				return true
			}
		}
	}
	return false
}

// LegalMeepleSlots returns the slots of the placed tile t a player holding
// available meeples may claim, in slot order.
func LegalMeepleSlots(g *core.Grid, t *core.Tile, available int) []core.ClaimSlot {
	var out []core.ClaimSlot
	for _, s := range core.ClaimSlots {
		if ValidateMeeple(g, t, s, available) == nil {
			out = append(out, s)
		}
	}
	return out
}
