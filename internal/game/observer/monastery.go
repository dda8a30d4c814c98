package observer

import "github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"

// MonasteryCells is the number of filled cells that complete a monastery.
const MonasteryCells = 9

// MonasterySubscriber completes when the 3x3 block around a claimed
// monastery is full.
type MonasterySubscriber struct {
	Tile     *core.Tile
	PlayerID int
	center   core.Coordinate
	filled   map[core.Coordinate]bool
}

// NewMonasterySubscriber watches the block around the placed tile t on behalf
// of playerID.
func NewMonasterySubscriber(t *core.Tile, playerID int) *MonasterySubscriber {
	return &MonasterySubscriber{
		Tile:     t,
		PlayerID: playerID,
		center:   *t.Pos,
		filled:   make(map[core.Coordinate]bool, MonasteryCells),
	}
}

func (m *MonasterySubscriber) Watching() []core.Coordinate {
	block := m.center.Block()
	return block[:]
}

func (m *MonasterySubscriber) Seed(g *core.Grid) {
	for _, c := range m.center.Block() {
		if g.Occupied(c) {
			m.filled[c] = true
		}
	}
}

func (m *MonasterySubscriber) OnTilePlaced(t *core.Tile) bool {
	if t.Pos != nil {
		m.filled[*t.Pos] = true
	}
	return m.Done()
}

func (m *MonasterySubscriber) Done() bool { return len(m.filled) >= MonasteryCells }

// Filled is the number of occupied cells seen so far.
func (m *MonasterySubscriber) Filled() int { return len(m.filled) }
