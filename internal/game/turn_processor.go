package game

import (
	"context"
	"fmt"
	"time"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/rs/zerolog"
)

// Move is one complete turn: a tile from hand then an optional claim. Skip
// replaces both when nothing in hand fits.
type Move struct {
	PlayerID  int             `json:"player_id"`
	HandIndex int             `json:"hand_index"`
	Pos       core.Coordinate `json:"pos"`
	Rotation  int             `json:"rotation"`
	Meeple    *core.ClaimSlot `json:"meeple,omitempty"`
	Skip      bool            `json:"skip,omitempty"`
}

// TurnResult is what a processed turn scored
type TurnResult struct {
	PlayerID    int
	Round       int
	Completions []Completion
	Duration    time.Duration
}

// Points sums the points the turn paid out
func (r TurnResult) Points() int {
	n := 0
	for _, c := range r.Completions {
		for _, f := range c.Freed {
			n += f.Reward
		}
	}
	return n
}

// TurnProcessor handles the orchestration of a single turn
type TurnProcessor struct {
	engine *Engine
	logger zerolog.Logger
}

// NewTurnProcessor creates a new turn processor
func NewTurnProcessor(engine *Engine) *TurnProcessor {
	return &TurnProcessor{
		engine: engine,
		logger: engine.logger,
	}
}

// ProcessTurn executes a complete game turn
func (tp *TurnProcessor) ProcessTurn(ctx context.Context, mv Move) (TurnResult, error) {
	res := TurnResult{PlayerID: mv.PlayerID, Round: tp.engine.gs.Round}

	// Check context at start
	if err := tp.checkContext(ctx, "before starting"); err != nil {
		return res, err
	}

	// Validate game state
	if err := tp.validateGameState(); err != nil {
		return res, err
	}

	// Create turn-scoped logger
	turnLogger := tp.logger.With().
		Int("round", tp.engine.gs.Round).
		Int("player_id", mv.PlayerID).
		Logger()
	turnLogger.Debug().Msg("Starting turn")
	turnStartTime := time.Now()

	if mv.Skip {
		if err := tp.engine.SkipTurn(mv.PlayerID); err != nil {
			return res, err
		}
		res.Duration = time.Since(turnStartTime)
		turnLogger.Debug().Msg("Turn skipped")
		return res, nil
	}

	// Tile phase
	comps, err := tp.engine.PlaceTile(mv.PlayerID, mv.HandIndex, mv.Pos, mv.Rotation)
	res.Completions = append(res.Completions, comps...)
	if err != nil {
		return res, err
	}
	if tp.engine.gameOver {
		turnLogger.Info().Msg("Game ended during tile placement")
		res.Duration = time.Since(turnStartTime)
		return res, nil
	}

	// Meeple phase
	if err := tp.checkContext(ctx, "before meeple"); err != nil {
		return res, core.WrapGameError(res.Round, mv.PlayerID, "meeple phase", fmt.Errorf("context cancelled: %w", err))
	}
	if mv.Meeple != nil {
		comps, err = tp.engine.PlaceMeeple(mv.PlayerID, *mv.Meeple)
		res.Completions = append(res.Completions, comps...)
	} else {
		err = tp.engine.PassMeeple(mv.PlayerID)
	}
	if err != nil {
		return res, err
	}

	res.Duration = time.Since(turnStartTime)
	turnLogger.Debug().
		Int("completions", len(res.Completions)).
		Int("points", res.Points()).
		Dur("duration", res.Duration).
		Msg("Turn finished")
	return res, nil
}

// PlayTurn asks agent for the tile, places it, then asks for the claim
// against the board as it now stands.
func (tp *TurnProcessor) PlayTurn(ctx context.Context, agent Agent) (TurnResult, error) {
	mv := agent.ChooseTile(tp.engine)
	if mv.Skip {
		return tp.ProcessTurn(ctx, mv)
	}

	res := TurnResult{PlayerID: mv.PlayerID, Round: tp.engine.gs.Round}
	if err := tp.checkContext(ctx, "before starting"); err != nil {
		return res, err
	}
	if err := tp.validateGameState(); err != nil {
		return res, err
	}
	turnStartTime := time.Now()

	comps, err := tp.engine.PlaceTile(mv.PlayerID, mv.HandIndex, mv.Pos, mv.Rotation)
	res.Completions = append(res.Completions, comps...)
	if err != nil || tp.engine.gameOver {
		res.Duration = time.Since(turnStartTime)
		return res, err
	}

	if slot := agent.ChooseMeeple(tp.engine); slot != nil {
		comps, err = tp.engine.PlaceMeeple(mv.PlayerID, *slot)
		res.Completions = append(res.Completions, comps...)
	} else {
		err = tp.engine.PassMeeple(mv.PlayerID)
	}
	res.Duration = time.Since(turnStartTime)
	return res, err
}

// checkContext checks if the context is cancelled
func (tp *TurnProcessor) checkContext(ctx context.Context, phase string) error {
	select {
	case <-ctx.Done():
		tp.logger.Warn().
			Err(ctx.Err()).
			Int("round", tp.engine.gs.Round).
			Str("phase", phase).
			Msg("Turn cancelled or timed out")
		return ctx.Err()
	default:
		return nil
	}
}

// validateGameState ensures the game can receive moves
func (tp *TurnProcessor) validateGameState() error {
	if tp.engine.gameOver {
		tp.logger.Warn().
			Int("round", tp.engine.gs.Round).
			Msg("Attempted to play a game that is already over")
		return core.WrapGameError(tp.engine.gs.Round, -1, "turn", core.ErrGameOver)
	}

	currentPhase := tp.engine.stateMachine.CurrentPhase()
	if !currentPhase.CanReceiveActions() {
		tp.logger.Warn().
			Str("current_phase", currentPhase.String()).
			Int("round", tp.engine.gs.Round).
			Msg("Attempted to play in phase that cannot receive moves")
		return core.WrapGameError(tp.engine.gs.Round, -1, "turn",
			fmt.Errorf("%w: %s", core.ErrWrongPhase, currentPhase))
	}
	return nil
}
