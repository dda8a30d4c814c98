package core

import "fmt"

// StructureType is the terrain occupying a tile edge.
type StructureType int

const (
	StructureNone StructureType = iota
	River
	Road
	RoadStart
	City
	Grass
)

var structureNames = map[StructureType]string{
	StructureNone: "none",
	River:         "river",
	Road:          "road",
	RoadStart:     "road_start",
	City:          "city",
	Grass:         "grass",
}

// String returns the string representation of a StructureType
func (s StructureType) String() string {
	if name, ok := structureNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(s))
}

// ParseStructureType is the inverse of String.
func ParseStructureType(name string) (StructureType, error) {
	for s, n := range structureNames {
		if n == name && s != StructureNone {
			return s, nil
		}
	}
	return StructureNone, fmt.Errorf("unknown structure type %q", name)
}

func (s StructureType) MarshalText() ([]byte, error) {
	if _, ok := structureNames[s]; !ok {
		return nil, fmt.Errorf("invalid structure type %d", int(s))
	}
	return []byte(s.String()), nil
}

func (s *StructureType) UnmarshalText(b []byte) error {
	if string(b) == "none" {
		*s = StructureNone
		return nil
	}
	v, err := ParseStructureType(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Normalize folds RoadStart into Road. A road stub only differs from a road
// on the tile it starts from.
func (s StructureType) Normalize() StructureType {
	if s == RoadStart {
		return Road
	}
	return s
}

// IsRoad reports whether s is Road or RoadStart.
func (s StructureType) IsRoad() bool {
	return s == Road || s == RoadStart
}

// Claimable reports whether a meeple may be placed on an edge of this kind.
func (s StructureType) Claimable() bool {
	return s == Road || s == RoadStart || s == City
}

// Compatible reports whether two edges of kinds a and b may touch.
func Compatible(a, b StructureType) bool {
	if a.IsRoad() && b.IsRoad() {
		return true
	}
	return a == b && a != StructureNone
}

// Modifier is a tag attached to a whole tile rather than to an edge.
type Modifier int

const (
	ModRiver Modifier = iota + 1
	ModMonastery
	ModEmblem
	ModBrokenRoadCenter
	ModBrokenCity
	ModOppositeRoadBridge
	ModOppositeCityBridge
)

var modifierNames = map[Modifier]string{
	ModRiver:              "river",
	ModMonastery:          "monastery",
	ModEmblem:             "emblem",
	ModBrokenRoadCenter:   "broken_road_center",
	ModBrokenCity:         "broken_city",
	ModOppositeRoadBridge: "opposite_road_bridge",
	ModOppositeCityBridge: "opposite_city_bridge",
}

func (m Modifier) String() string {
	if name, ok := modifierNames[m]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", int(m))
}

// ParseModifier is the inverse of String.
func ParseModifier(name string) (Modifier, error) {
	for m, n := range modifierNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown modifier %q", name)
}

// BridgeFor returns the bridge modifier that joins opposite edges of kind s.
// The second result is false for kinds that have no bridge.
func BridgeFor(s StructureType) (Modifier, bool) {
	switch s {
	case Road, RoadStart:
		return ModOppositeRoadBridge, true
	case City:
		return ModOppositeCityBridge, true
	default:
		return 0, false
	}
}
