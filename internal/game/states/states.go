package states

import (
	"errors"
	"fmt"
	"time"
)

// phaseState assembles a State from optional hooks. A nil hook does nothing.
type phaseState struct {
	phase    GamePhase
	enter    func(*GameContext)
	exit     func(*GameContext)
	validate func(*GameContext) error
}

func (s *phaseState) Phase() GamePhase { return s.phase }

func (s *phaseState) Enter(ctx *GameContext) error {
	if s.enter != nil {
		s.enter(ctx)
	}
	return nil
}

func (s *phaseState) Exit(ctx *GameContext) error {
	if s.exit != nil {
		s.exit(ctx)
	}
	return nil
}

func (s *phaseState) Validate(ctx *GameContext) error {
	if s.validate == nil {
		return nil
	}
	return s.validate(ctx)
}

// NewInitializingState is the game before any tile is on the board
func NewInitializingState() State {
	return &phaseState{
		phase: PhaseInitializing,
		exit: func(ctx *GameContext) {
			ctx.Logger.Debug().Int("player_count", ctx.PlayerCount).Msg("Players seated")
		},
	}
}

// NewRiverState is the opening where only river tiles are drawn. It can only
// be entered by games set up with the river.
func NewRiverState() State {
	return &phaseState{
		phase: PhaseRiver,
		enter: acceptMoves(PhaseRiver),
		exit: func(ctx *GameContext) {
			ctx.Logger.Info().Dur("elapsed", ctx.GetElapsedTime()).Msg("River phase complete")
		},
		validate: func(ctx *GameContext) error {
			if !ctx.RiverPhase {
				return fmt.Errorf("game %s was set up without the river", ctx.GameID)
			}
			return seated(ctx)
		},
	}
}

// NewBaseState is regular play with the base tile set
func NewBaseState() State {
	return &phaseState{
		phase: PhaseBase,
		enter: acceptMoves(PhaseBase),
		exit: func(ctx *GameContext) {
			ctx.Logger.Info().Dur("elapsed", ctx.GetElapsedTime()).Msg("Exiting base phase")
		},
		validate: seated,
	}
}

// NewEndingState settles every meeple left on the board. Entering it needs a
// reason or an error.
func NewEndingState() State {
	return &phaseState{
		phase: PhaseEnding,
		enter: func(ctx *GameContext) {
			ctx.Logger.Info().Str("reason", ctx.EndReason).Msg("Game ending, settling remaining claims")
		},
		validate: func(ctx *GameContext) error {
			if ctx.EndReason == "" && ctx.Error == nil {
				return errors.New("ending state requires either an end reason or an error")
			}
			return nil
		},
	}
}

// NewEndedState is a settled game; nothing more happens in it
func NewEndedState() State {
	return &phaseState{
		phase: PhaseEnded,
		enter: func(ctx *GameContext) {
			ctx.Logger.Info().
				Ints("winners", ctx.Winners).
				Dur("game_duration", ctx.GetElapsedTime()).
				Msg("Game over")
		},
	}
}

// NewErrorState is entered when the engine finds an internal inconsistency.
// There is no way out of it.
func NewErrorState() State {
	return &phaseState{
		phase: PhaseError,
		enter: func(ctx *GameContext) {
			ctx.Logger.Error().Err(ctx.Error).Msg("Game entered error state")
		},
		validate: func(ctx *GameContext) error {
			if ctx.Error == nil {
				return errors.New("error state requires an error in context")
			}
			return nil
		},
	}
}

func seated(ctx *GameContext) error {
	if !ctx.IsReady() {
		return fmt.Errorf("need between 1 and %d players, have %d", ctx.MaxPlayers, ctx.PlayerCount)
	}
	return nil
}

// acceptMoves stamps StartTime the first time a move phase is entered
func acceptMoves(phase GamePhase) func(*GameContext) {
	return func(ctx *GameContext) {
		if ctx.StartTime.IsZero() {
			ctx.StartTime = time.Now()
		}
		ctx.Logger.Info().
			Str("phase", phase.String()).
			Time("start_time", ctx.StartTime).
			Msg("Accepting moves")
	}
}
