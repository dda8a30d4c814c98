package game

import (
	"fmt"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/rules"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/states"
)

// BaseStartTile is the tile type laid at the centre when a game skips the river.
const BaseStartTile = "D"

// StartRiverPhase lays the river source at the centre, loads the river pool
// and deals opening hands.
func (e *Engine) StartRiverPhase() error {
	const op = "start river phase"
	if phase := e.stateMachine.CurrentPhase(); phase != states.PhaseInitializing {
		return core.WrapGameError(e.gs.Round, -1, op, fmt.Errorf("%w: %s", core.ErrWrongPhase, phase))
	}

	start := e.catalog.StartTile()
	if err := e.gs.Grid.Place(start, e.gs.Grid.Center()); err != nil {
		return e.fail(op, -1, err)
	}
	e.commit(events.NewStartingTilePlacedEvent(e.gameID, start.Ref()))

	e.gs.Pool = e.catalog.RiverPool()
	e.gs.RiverPhase = true
	if err := e.stateMachine.TransitionTo(states.PhaseRiver, "river source placed"); err != nil {
		return e.fail(op, -1, err)
	}
	return e.dealHands()
}

// StartBasePhase begins a game without the river: one base start tile is
// taken from the pool and laid at the centre.
func (e *Engine) StartBasePhase() error {
	const op = "start base phase"
	if phase := e.stateMachine.CurrentPhase(); phase != states.PhaseInitializing {
		return core.WrapGameError(e.gs.Round, -1, op, fmt.Errorf("%w: %s", core.ErrWrongPhase, phase))
	}

	pool := e.catalog.BasePool()
	start, ok := pool.Take(BaseStartTile)
	if !ok {
		return fmt.Errorf("%s: catalog has no %q tile", op, BaseStartTile)
	}
	if err := e.gs.Grid.Place(start, e.gs.Grid.Center()); err != nil {
		return e.fail(op, -1, err)
	}
	e.commit(events.NewStartingTilePlacedEvent(e.gameID, start.Ref()))

	e.gs.Pool = pool
	e.gs.RiverPhase = false
	if err := e.stateMachine.TransitionTo(states.PhaseBase, "start tile placed"); err != nil {
		return e.fail(op, -1, err)
	}
	return e.dealHands()
}

// CompleteRiverPhase lays the river end against the open river edge of the
// last placed tile, switches to the base pool and deals fresh hands.
func (e *Engine) CompleteRiverPhase() error {
	const op = "complete river phase"
	if phase := e.stateMachine.CurrentPhase(); phase != states.PhaseRiver {
		return core.WrapGameError(e.gs.Round, -1, op, fmt.Errorf("%w: %s", core.ErrWrongPhase, phase))
	}

	last := e.gs.Grid.Last()
	if last == nil || !last.IsPlaced() {
		return e.fail(op, -1, core.NewInconsistencyError(op, "no tile on the board"))
	}
	open, found := core.Edge(0), false
	for _, edge := range core.Edges {
		if last.Edge(edge) == core.River && e.gs.Grid.Neighbour(*last.Pos, edge) == nil {
			open, found = edge, true
			break
		}
	}
	if !found {
		return e.fail(op, -1, core.NewInconsistencyError(op,
			fmt.Sprintf("%s has no open river edge", last)))
	}

	end := e.catalog.EndTile()
	if _, err := e.applyPlacement(-1, end, last.Pos.Step(open), open.ClockwiseSteps(), false); err != nil {
		return err
	}
	e.commit(events.NewRiverPhaseCompletedEvent(e.gameID, end.Ref()))

	e.gs.Pool = e.catalog.BasePool()
	e.gs.RiverPhase = false
	e.gs.Skips = 0
	if err := e.stateMachine.TransitionTo(states.PhaseBase, "river end placed"); err != nil {
		return e.fail(op, -1, err)
	}

	e.logger.Info().
		Str("end_tile", end.ID).
		Stringer("pos", *end.Pos).
		Int("round", e.gs.Round).
		Msg("River phase completed")

	if err := e.dealHands(); err != nil {
		return err
	}
	return e.endIfLimitReached()
}

// EndGame stops the game for reason, settles every open claim and records
// the winners.
func (e *Engine) EndGame(reason string) error {
	const op = "end game"
	if e.gameOver {
		return core.WrapGameError(e.gs.Round, -1, op, core.ErrGameOver)
	}
	e.gameOver = true
	e.gs.LastPlaced = nil

	e.commit(events.NewGameEndedEvent(e.gameID, reason, e.gs.Round))
	ctx := e.stateMachine.GetContext()
	ctx.EndReason = reason
	if err := e.stateMachine.TransitionTo(states.PhaseEnding, reason); err != nil {
		return e.fail(op, -1, err)
	}

	e.Settle()
	if e.err != nil {
		return core.WrapGameError(e.gs.Round, -1, op, e.err)
	}

	ctx.Winners = e.winnerIDs()
	if err := e.stateMachine.TransitionTo(states.PhaseEnded, "settled"); err != nil {
		return e.fail(op, -1, err)
	}

	e.logger.Info().
		Str("reason", reason).
		Int("round", e.gs.Round).
		Ints("winners", ctx.Winners).
		Dur("river_time", e.stateMachine.TimeIn(states.PhaseRiver)).
		Dur("base_time", e.stateMachine.TimeIn(states.PhaseBase)).
		Msg("Game ended")
	return nil
}

// Settle resolves every meeple still on the board, player by player in ID
// order, then commits PlayerWon for each top scorer. Open monasteries score
// their filled cells. Calling Settle again returns the recorded standings and
// no further events.
func (e *Engine) Settle() ([]*events.MeepleFreedEvent, []rules.Standing) {
	if e.settled {
		return nil, e.standings
	}

	var freed []*events.MeepleFreedEvent
	for _, p := range e.gs.Players {
		for _, m := range p.Meeples {
			// an earlier resolution may already have freed it
			if !m.Placed() {
				continue
			}

			var res rules.Resolution
			if edge, ok := m.Slot.Edge(); ok {
				comp := rules.Traverse(e.gs.Grid, m.Tile, m.Slot, nil)
				res = rules.Resolve(comp, m.Tile.Edge(edge).Normalize(), e.cfg.Scoring)
			} else {
				if sub, ok := e.monasteries[m.Tile]; ok {
					e.gs.Observer.Deregister(sub)
					delete(e.monasteries, m.Tile)
				}
				res = rules.ResolveMonastery(e.gs.Grid, m.Tile, e.cfg.Scoring)
			}

			evs, err := e.rewards.Distribute(e.gs, res, events.FreedSettlement)
			freed = append(freed, evs...)
			if err != nil {
				e.fail("settle", p.ID, err)
				return freed, e.winCondition.Standings(e.rulesPlayers())
			}
		}
	}

	e.standings = e.winCondition.Standings(e.rulesPlayers())
	for _, s := range e.standings {
		if s.Rank == 1 {
			e.commit(events.NewPlayerWonEvent(e.gameID, s.PlayerID, s.Points))
		}
	}
	e.settled = true
	return freed, e.standings
}

// winnerIDs returns every player sharing the top rank
func (e *Engine) winnerIDs() []int {
	var out []int
	for _, s := range e.standings {
		if s.Rank == 1 {
			out = append(out, s.PlayerID)
		}
	}
	return out
}

// Abort ends a running game without waiting for the tiles to run out
func (e *Engine) Abort() error {
	return e.EndGame(events.EndAborted)
}
