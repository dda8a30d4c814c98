package core

// Scoring holds the point values used for completed structures.
type Scoring struct {
	Road      int `mapstructure:"road" json:"road"`
	City      int `mapstructure:"city" json:"city"`
	Emblem    int `mapstructure:"emblem" json:"emblem"`
	Monastery int `mapstructure:"monastery" json:"monastery"`
}

func DefaultScoring() Scoring {
	return Scoring{Road: 1, City: 2, Emblem: 2, Monastery: 9}
}

// Base is the per-tile value of a structure kind. Unscored kinds are worth 0.
func (s Scoring) Base(kind StructureType) int {
	switch kind {
	case Road, RoadStart:
		return s.Road
	case City:
		return s.City
	default:
		return 0
	}
}
