package game

import (
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/observer"
)

type Player struct {
	ID      int
	Points  int
	Meeples []*core.Meeple
	Hand    []*core.Tile
}

// GetID implements rules.Player
func (p *Player) GetID() int { return p.ID }

// GetPoints implements rules.Player
func (p *Player) GetPoints() int { return p.Points }

// AvailableMeeples is the number of meeples off the board
func (p *Player) AvailableMeeples() int { return core.CountAvailable(p.Meeples) }

// PlacedMeeples returns the player's meeples currently on the board, by meeple ID.
func (p *Player) PlacedMeeples() []*core.Meeple {
	var out []*core.Meeple
	for _, m := range p.Meeples {
		if m.Placed() {
			out = append(out, m)
		}
	}
	return out
}

// HandIDs lists the tile IDs in the player's hand
func (p *Player) HandIDs() []string {
	ids := make([]string, len(p.Hand))
	for i, t := range p.Hand {
		ids[i] = t.ID
	}
	return ids
}

// GameState is everything a turn reads or mutates. Players is indexed by
// player ID; TurnOrder holds the IDs in seating order.
type GameState struct {
	Round     int
	Grid      *core.Grid
	Pool      *core.TilePool
	Players   []*Player
	TurnOrder []int
	Current   int // index into TurnOrder
	Observer  *observer.Bus

	// Tile the current player may put a meeple on, nil outside that window
	LastPlaced *core.Tile
	// Edges of LastPlaced whose structure was already scored this turn
	Scored map[core.Edge]bool

	RiverPhase bool
	Skips      int
}

// CurrentPlayer returns the player whose turn it is
func (gs *GameState) CurrentPlayer() *Player {
	if len(gs.TurnOrder) == 0 {
		return nil
	}
	return gs.Players[gs.TurnOrder[gs.Current]]
}

// Player returns the player with the given ID, or nil.
func (gs *GameState) Player(id int) *Player {
	if id < 0 || id >= len(gs.Players) {
		return nil
	}
	return gs.Players[id]
}

// AwaitingMeeple reports whether the current player has placed a tile and
// still owes a meeple decision.
func (gs *GameState) AwaitingMeeple() bool { return gs.LastPlaced != nil }

// HandsEmpty reports whether every player has played out their hand
func (gs *GameState) HandsEmpty() bool {
	for _, p := range gs.Players {
		if len(p.Hand) > 0 {
			return false
		}
	}
	return true
}

// TotalPoints sums every player's score
func (gs *GameState) TotalPoints() int {
	n := 0
	for _, p := range gs.Players {
		n += p.Points
	}
	return n
}
