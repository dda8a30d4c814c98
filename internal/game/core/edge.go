package core

import "fmt"

// Edge names one side of a tile. The iota order is the canonical order used
// whenever edges are reported.
type Edge int

const (
	Left Edge = iota
	Right
	Top
	Bottom
)

// Edges lists every edge in canonical order.
var Edges = [4]Edge{Left, Right, Top, Bottom}

var edgeNames = [4]string{"left_edge", "right_edge", "top_edge", "bottom_edge"}

func (e Edge) String() string {
	if e < Left || e > Bottom {
		return fmt.Sprintf("Unknown(%d)", int(e))
	}
	return edgeNames[e]
}

// Opposite returns the edge facing e across the tile.
func (e Edge) Opposite() Edge {
	switch e {
	case Left:
		return Right
	case Right:
		return Left
	case Top:
		return Bottom
	default:
		return Top
	}
}

// Adjacent returns the two edges sharing a corner with e.
func (e Edge) Adjacent() [2]Edge {
	if e == Left || e == Right {
		return [2]Edge{Top, Bottom}
	}
	return [2]Edge{Left, Right}
}

// Delta is the grid offset of the cell across e.
func (e Edge) Delta() Coordinate {
	switch e {
	case Left:
		return Coordinate{X: -1, Y: 0}
	case Right:
		return Coordinate{X: 1, Y: 0}
	case Top:
		return Coordinate{X: 0, Y: -1}
	default:
		return Coordinate{X: 0, Y: 1}
	}
}

// ClockwiseSteps is the number of quarter turns that bring Top onto e.
func (e Edge) ClockwiseSteps() int {
	switch e {
	case Top:
		return 0
	case Right:
		return 1
	case Bottom:
		return 2
	default:
		return 3
	}
}

// ClaimSlot is where a meeple can stand on a tile: one of the four edges or
// the monastery.
type ClaimSlot int

const (
	SlotLeft      = ClaimSlot(Left)
	SlotRight     = ClaimSlot(Right)
	SlotTop       = ClaimSlot(Top)
	SlotBottom    = ClaimSlot(Bottom)
	SlotMonastery = ClaimSlot(4)
)

// ClaimSlots lists every slot in canonical order.
var ClaimSlots = [5]ClaimSlot{SlotLeft, SlotRight, SlotTop, SlotBottom, SlotMonastery}

// SlotFor converts an edge into its claim slot.
func SlotFor(e Edge) ClaimSlot { return ClaimSlot(e) }

// Edge returns the edge behind the slot; ok is false for the monastery.
func (s ClaimSlot) Edge() (Edge, bool) {
	if s >= SlotLeft && s <= SlotBottom {
		return Edge(s), true
	}
	return 0, false
}

func (s ClaimSlot) Valid() bool { return s >= SlotLeft && s <= SlotMonastery }

func (s ClaimSlot) String() string {
	if s == SlotMonastery {
		return "MONASTERY"
	}
	if e, ok := s.Edge(); ok {
		return e.String()
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

// ParseClaimSlot is the inverse of String.
func ParseClaimSlot(name string) (ClaimSlot, error) {
	for _, s := range ClaimSlots {
		if s.String() == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("unknown claim slot %q", name)
}

// MarshalText encodes the slot by name so replay logs stay readable.
func (s ClaimSlot) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid claim slot %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *ClaimSlot) UnmarshalText(b []byte) error {
	v, err := ParseClaimSlot(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
