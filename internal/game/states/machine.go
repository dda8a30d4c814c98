package states

import (
	"fmt"
	"sync"
	"time"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
)

// historyLimit bounds the transitions kept in memory. A game passes through
// at most five phases, so only a misbehaving caller gets near it.
const historyLimit = 64

// State is one phase's lifecycle hooks
type State interface {
	Phase() GamePhase

	// Enter runs after the machine has moved to the phase; an error undoes the move
	Enter(ctx *GameContext) error
	// Exit runs before leaving; its error is logged and ignored
	Exit(ctx *GameContext) error
	// Validate decides whether the phase may be entered now
	Validate(ctx *GameContext) error
}

// Transition is one accepted phase change
type Transition struct {
	From      GamePhase
	To        GamePhase
	Timestamp time.Time
	Reason    string
}

// StateMachine owns the game's phase. Accepted transitions are kept in a short
// history and published as StateTransitionEvents.
type StateMachine struct {
	mu        sync.RWMutex
	phase     GamePhase
	states    map[GamePhase]State
	context   *GameContext
	history   []Transition
	entered   time.Time
	spent     map[GamePhase]time.Duration
	publisher events.Publisher
	now       func() time.Time
}

// NewStateMachine starts in PhaseInitializing with the built-in states
// registered. publisher may be nil.
func NewStateMachine(ctx *GameContext, publisher events.Publisher) *StateMachine {
	sm := &StateMachine{
		phase:     PhaseInitializing,
		states:    make(map[GamePhase]State),
		context:   ctx,
		spent:     make(map[GamePhase]time.Duration),
		publisher: publisher,
		now:       time.Now,
	}
	sm.entered = sm.now()

	for _, s := range []State{
		NewInitializingState(),
		NewRiverState(),
		NewBaseState(),
		NewEndingState(),
		NewEndedState(),
		NewErrorState(),
	} {
		sm.RegisterState(s)
	}
	return sm
}

// RegisterState installs or replaces the hooks for state.Phase()
func (sm *StateMachine) RegisterState(state State) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	sm.states[state.Phase()] = state
}

// CurrentPhase returns the phase the game is in
func (sm *StateMachine) CurrentPhase() GamePhase {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase
}

// TransitionTo moves the game to target. The event is published once the
// lock is released, so subscribers can query the machine.
func (sm *StateMachine) TransitionTo(target GamePhase, reason string) error {
	from, err := sm.move(target, reason)
	if err != nil {
		return err
	}

	if sm.publisher != nil {
		sm.publisher.Publish(events.NewStateTransitionEvent(sm.context.GameID, from.String(), target.String(), reason))
	}
	sm.context.Logger.Info().
		Str("from_phase", from.String()).
		Str("to_phase", target.String()).
		Str("reason", reason).
		Msg("State transition completed")
	return nil
}

func (sm *StateMachine) move(target GamePhase, reason string) (GamePhase, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	from := sm.phase
	if !from.CanTransitionTo(target) {
		return from, fmt.Errorf("invalid transition from %s to %s", from, target)
	}
	next, ok := sm.states[target]
	if !ok {
		return from, fmt.Errorf("no state implementation for phase %s", target)
	}
	if err := next.Validate(sm.context); err != nil {
		return from, fmt.Errorf("target state validation failed: %w", err)
	}

	if cur, ok := sm.states[from]; ok {
		if err := cur.Exit(sm.context); err != nil {
			sm.context.Logger.Error().
				Err(err).
				Str("from_phase", from.String()).
				Str("to_phase", target.String()).
				Msg("Error exiting state")
		}
	}

	sm.phase = target
	if err := next.Enter(sm.context); err != nil {
		sm.phase = from
		return from, fmt.Errorf("failed to enter state %s: %w", target, err)
	}

	at := sm.now()
	sm.spent[from] += at.Sub(sm.entered)
	sm.entered = at

	sm.history = append(sm.history, Transition{From: from, To: target, Timestamp: at, Reason: reason})
	if over := len(sm.history) - historyLimit; over > 0 {
		sm.history = append([]Transition(nil), sm.history[over:]...)
	}
	return from, nil
}

// GetHistory returns a copy of the accepted transitions, oldest first
func (sm *StateMachine) GetHistory() []Transition {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return append([]Transition(nil), sm.history...)
}

// TimeIn is how long the game has spent in phase, including the current stay
func (sm *StateMachine) TimeIn(phase GamePhase) time.Duration {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	d := sm.spent[phase]
	if phase == sm.phase {
		d += sm.now().Sub(sm.entered)
	}
	return d
}

// GetContext returns the shared game context
func (sm *StateMachine) GetContext() *GameContext {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.context
}

// CanTransitionTo reports whether target is reachable from the current phase
func (sm *StateMachine) CanTransitionTo(target GamePhase) bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.phase.CanTransitionTo(target)
}
