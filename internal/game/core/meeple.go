package core

import "fmt"

// DefaultMeeplesPerPlayer is the number of meeples each player owns.
const DefaultMeeplesPerPlayer = 7

// Meeple is a player's claim marker. When placed, Tile and Slot say where.
type Meeple struct {
	ID       int
	PlayerID int
	Tile     *Tile
	Slot     ClaimSlot
}

// NewMeeples creates n unplaced meeples owned by playerID.
func NewMeeples(playerID, n int) []*Meeple {
	out := make([]*Meeple, n)
	for i := range out {
		out[i] = &Meeple{ID: i, PlayerID: playerID}
	}
	return out
}

// Placed reports whether the meeple is on the board.
func (m *Meeple) Placed() bool { return m.Tile != nil }

// Place puts the meeple on slot s of t.
func (m *Meeple) Place(t *Tile, s ClaimSlot) error {
	if m.Placed() {
		return NewInconsistencyError("place meeple",
			fmt.Sprintf("player %d meeple %d already on %s", m.PlayerID, m.ID, m.Tile))
	}
	if !s.Valid() {
		return NewInconsistencyError("place meeple", fmt.Sprintf("slot %d does not exist", int(s)))
	}
	if t.Claims[s] != nil {
		return NewInconsistencyError("place meeple",
			fmt.Sprintf("%s %s already claimed", t, s))
	}
	m.Tile = t
	m.Slot = s
	t.Claims[s] = m
	return nil
}

// Free takes the meeple off the board and returns it to its owner.
func (m *Meeple) Free() error {
	if !m.Placed() {
		return NewInconsistencyError("free meeple",
			fmt.Sprintf("player %d meeple %d is not placed", m.PlayerID, m.ID))
	}
	if m.Tile.Claims[m.Slot] != m {
		return NewInconsistencyError("free meeple",
			fmt.Sprintf("%s %s does not hold player %d meeple %d", m.Tile, m.Slot, m.PlayerID, m.ID))
	}
	m.Tile.Claims[m.Slot] = nil
	m.Tile = nil
	m.Slot = 0
	return nil
}

// FirstAvailable returns the first unplaced meeple, or nil.
func FirstAvailable(meeples []*Meeple) *Meeple {
	for _, m := range meeples {
		if !m.Placed() {
			return m
		}
	}
	return nil
}

// CountAvailable returns how many meeples are off the board.
func CountAvailable(meeples []*Meeple) int {
	n := 0
	for _, m := range meeples {
		if !m.Placed() {
			n++
		}
	}
	return n
}
