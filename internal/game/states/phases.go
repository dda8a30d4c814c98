package states

import "fmt"

// GamePhase is where a game is in its lifecycle
type GamePhase int

const (
	PhaseInitializing GamePhase = iota // created, nothing on the board
	PhaseRiver                         // extending the river from its source
	PhaseBase                          // regular play with the base tiles
	PhaseEnding                        // settling meeples still on the board
	PhaseEnded
	PhaseError // an internal inconsistency stopped the game
)

var phaseNames = [...]string{"Initializing", "River", "Base", "Ending", "Ended", "Error"}

// transitions lists the phases reachable from each phase. Terminal phases
// have no entry.
var transitions = map[GamePhase][]GamePhase{
	PhaseInitializing: {PhaseRiver, PhaseBase, PhaseError},
	PhaseRiver:        {PhaseBase, PhaseEnding, PhaseError},
	PhaseBase:         {PhaseEnding, PhaseError},
	PhaseEnding:       {PhaseEnded, PhaseError},
}

func (p GamePhase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("Unknown(%d)", int(p))
}

// IsTerminal reports whether nothing can follow p
func (p GamePhase) IsTerminal() bool { return len(transitions[p]) == 0 }

// CanReceiveActions reports whether player moves are accepted in p
func (p GamePhase) CanReceiveActions() bool { return p == PhaseRiver || p == PhaseBase }

// CanTransitionTo reports whether target may directly follow p
func (p GamePhase) CanTransitionTo(target GamePhase) bool {
	for _, next := range transitions[p] {
		if next == target {
			return true
		}
	}
	return false
}

// ParsePhase converts a string to a GamePhase
func ParsePhase(s string) (GamePhase, error) {
	for i, name := range phaseNames {
		if name == s {
			return GamePhase(i), nil
		}
	}
	return PhaseInitializing, fmt.Errorf("unknown phase %q", s)
}
