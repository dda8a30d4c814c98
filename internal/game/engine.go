package game

import (
	"fmt"
	"slices"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/observer"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/rules"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/states"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// Engine applies moves to one game. It is not safe for concurrent use; the
// session manager serialises access per game.
type Engine struct {
	gs           *GameState
	cfg          GameConfig
	rng          *rand.Rand
	catalog      *core.Catalog
	gameOver     bool
	err          error
	logger       zerolog.Logger
	eventBus     *events.EventBus
	history      *events.History
	gameID       string
	stateMachine *states.StateMachine
	winCondition *rules.WinConditionChecker
	rewards      *RewardManager
	turnProcess  *TurnProcessor

	monasteries map[*core.Tile]*observer.MonasterySubscriber
	limitHit    bool
	settled     bool
	standings   []rules.Standing
}

// committer lets the state machine publish through the engine's history
type committer struct{ e *Engine }

func (c committer) Publish(ev events.Event) { c.e.commit(ev) }

// commit appends ev to the history and publishes it on the bus
func (e *Engine) commit(ev events.Event) {
	e.history.Append(ev)
	e.eventBus.Publish(ev)
}

func (e *Engine) GameID() string                     { return e.gameID }
func (e *Engine) GameState() *GameState              { return e.gs }
func (e *Engine) Config() GameConfig                 { return e.cfg }
func (e *Engine) History() *events.History           { return e.history }
func (e *Engine) EventBus() *events.EventBus         { return e.eventBus }
func (e *Engine) StateMachine() *states.StateMachine { return e.stateMachine }
func (e *Engine) CurrentPhase() states.GamePhase     { return e.stateMachine.CurrentPhase() }
func (e *Engine) IsGameOver() bool                   { return e.gameOver }
func (e *Engine) Turns() *TurnProcessor              { return e.turnProcess }

// Err returns the internal inconsistency that stopped the game, if any
func (e *Engine) Err() error { return e.err }

// Standings returns the final ranking once the game has been settled, and
// the live ranking before that.
func (e *Engine) Standings() []rules.Standing {
	if e.settled {
		return e.standings
	}
	return e.winCondition.Standings(e.rulesPlayers())
}

func (e *Engine) rulesPlayers() []rules.Player {
	out := make([]rules.Player, len(e.gs.Players))
	for i, p := range e.gs.Players {
		out[i] = p
	}
	return out
}

// fail records an internal inconsistency and moves the game to PhaseError.
// No move is accepted afterwards.
func (e *Engine) fail(op string, playerID int, err error) error {
	e.logger.Error().
		Err(err).
		Str("operation", op).
		Int("player_id", playerID).
		Int("round", e.gs.Round).
		Msg("Internal inconsistency, stopping game")

	e.err = err
	e.gameOver = true
	e.stateMachine.GetContext().Error = err
	if tErr := e.stateMachine.TransitionTo(states.PhaseError, err.Error()); tErr != nil {
		e.logger.Error().Err(tErr).Msg("Failed to enter error state")
	}
	return core.WrapGameError(e.gs.Round, playerID, op, err)
}

// wrap attributes a rejected move to a player and the current round
func (e *Engine) wrap(op string, playerID int, err error) error {
	return core.WrapGameError(e.gs.Round, playerID, op, core.WithPlayer(err, playerID))
}

// checkOpen rejects work once the game is over or outside a playing phase
func (e *Engine) checkOpen(op string, playerID int) error {
	phase := e.stateMachine.CurrentPhase()
	if e.gameOver || phase.IsTerminal() {
		return core.WrapGameError(e.gs.Round, playerID, op, core.ErrGameOver)
	}
	if !phase.CanReceiveActions() {
		return core.WrapGameError(e.gs.Round, playerID, op,
			fmt.Errorf("%w: %s", core.ErrWrongPhase, phase))
	}
	return nil
}

// checkTurn is checkOpen plus "playerID is on turn"
func (e *Engine) checkTurn(op string, playerID int) error {
	if err := e.checkOpen(op, playerID); err != nil {
		return err
	}
	if e.gs.Player(playerID) == nil {
		return core.WrapGameError(e.gs.Round, playerID, op, core.ErrInvalidPlayer)
	}
	if cur := e.gs.CurrentPlayer(); cur.ID != playerID {
		return core.WrapGameError(e.gs.Round, playerID, op,
			fmt.Errorf("%w: player %d is on turn", core.ErrInvalidPlayer, cur.ID))
	}
	return nil
}

// ApplyPlacement puts t on the board and resolves everything it completes:
// edge structures in canonical edge order, then monasteries in registration
// order. It does no hand bookkeeping.
func (e *Engine) ApplyPlacement(t *core.Tile, pos core.Coordinate, rotation int) ([]Completion, error) {
	if err := e.checkOpen("apply placement", -1); err != nil {
		return nil, err
	}
	comps, err := e.applyPlacement(-1, t, pos, rotation, true)
	if err != nil {
		return comps, err
	}
	return comps, e.endIfLimitReached()
}

func (e *Engine) applyPlacement(playerID int, t *core.Tile, pos core.Coordinate, rotation int, validate bool) ([]Completion, error) {
	if validate {
		if err := rules.ValidatePlacement(e.gs.Grid, t, pos, rotation); err != nil {
			return nil, e.wrap("place tile", playerID, err)
		}
	}
	if err := t.SetRotation(rotation); err != nil {
		return nil, e.wrap("place tile", playerID, err)
	}
	if err := e.gs.Grid.Place(t, pos); err != nil {
		return nil, e.fail("place tile", playerID, err)
	}
	e.commit(events.NewTilePlacedEvent(e.gameID, playerID, t.Ref()))

	e.logger.Debug().
		Int("player_id", playerID).
		Str("tile_id", t.ID).
		Stringer("pos", pos).
		Int("rotation", rotation).
		Msg("Tile placed")

	var out []Completion
	for _, done := range rules.CompletedComponents(e.gs.Grid, t) {
		c, err := e.rewards.CompleteStructure(e.gs, t, done.Slot, done.Kind, done.Component)
		if err != nil {
			return out, e.fail("complete structure", playerID, err)
		}
		out = append(out, c)
	}

	for _, s := range e.gs.Observer.Notify(t) {
		ms, ok := s.(*observer.MonasterySubscriber)
		if !ok {
			continue
		}
		delete(e.monasteries, ms.Tile)
		c, err := e.rewards.CompleteMonastery(e.gs, ms.Tile)
		if err != nil {
			return out, e.fail("complete monastery", playerID, err)
		}
		out = append(out, c)
	}

	e.noteScores(out)
	return out, nil
}

// noteScores latches the point limit after a resolution
func (e *Engine) noteScores(comps []Completion) {
	if len(comps) == 0 || e.limitHit {
		return
	}
	if reached, _ := e.winCondition.CheckPointLimit(e.rulesPlayers()); reached {
		e.limitHit = true
	}
}

func (e *Engine) endIfLimitReached() error {
	if !e.limitHit || e.gameOver {
		return nil
	}
	return e.EndGame(events.EndPointLimit)
}

// PlaceTile plays the tile at handIndex of the player's hand. On success the
// tile becomes the one the player may claim with PlaceMeeple.
func (e *Engine) PlaceTile(playerID, handIndex int, pos core.Coordinate, rotation int) ([]Completion, error) {
	const op = "place tile"
	if err := e.checkTurn(op, playerID); err != nil {
		return nil, err
	}
	if e.gs.AwaitingMeeple() {
		return nil, core.WrapGameError(e.gs.Round, playerID, op,
			fmt.Errorf("%w: meeple decision pending for %s", core.ErrWrongPhase, e.gs.LastPlaced.ID))
	}

	p := e.gs.Player(playerID)
	if handIndex < 0 || handIndex >= len(p.Hand) {
		return nil, e.wrap(op, playerID, core.NewPlacementError(core.ReasonNotInHand, nil, pos,
			fmt.Sprintf("hand index %d, hand holds %d", handIndex, len(p.Hand))))
	}
	t := p.Hand[handIndex]

	comps, err := e.applyPlacement(playerID, t, pos, rotation, true)
	if err != nil {
		return comps, err
	}
	p.Hand = slices.Delete(p.Hand, handIndex, handIndex+1)
	e.gs.Skips = 0

	if err := e.endIfLimitReached(); err != nil || e.gameOver {
		return comps, err
	}

	e.gs.LastPlaced = t
	e.gs.Scored = scoredEdges(t, comps)
	return comps, nil
}

// scoredEdges marks edges of t whose structure was claimed and scored by the
// placement, so no meeple can re-claim a structure that already paid out.
func scoredEdges(t *core.Tile, comps []Completion) map[core.Edge]bool {
	out := make(map[core.Edge]bool)
	for _, c := range comps {
		if c.IsMonastery() || len(c.Resolution.Claims) == 0 {
			continue
		}
		for _, p := range c.Component {
			if p.Tile == t {
				out[p.Edge] = true
			}
		}
	}
	return out
}

// PlaceMeeple claims slot of the tile the player just placed, then ends the
// player's turn. A claim on an already finished structure scores at once.
func (e *Engine) PlaceMeeple(playerID int, slot core.ClaimSlot) ([]Completion, error) {
	const op = "place meeple"
	if err := e.checkTurn(op, playerID); err != nil {
		return nil, err
	}
	t := e.gs.LastPlaced
	if t == nil {
		return nil, e.wrap(op, playerID, core.NewMeepleError(core.ReasonWrongTile, nil, slot, "no tile placed this turn"))
	}
	if edge, ok := slot.Edge(); ok && e.gs.Scored[edge] {
		return nil, e.wrap(op, playerID, core.NewMeepleError(core.ReasonAlreadyClaimed, t, slot, "structure scored this turn"))
	}

	p := e.gs.Player(playerID)
	if err := rules.ValidateMeeple(e.gs.Grid, t, slot, p.AvailableMeeples()); err != nil {
		return nil, e.wrap(op, playerID, err)
	}

	m := core.FirstAvailable(p.Meeples)
	if err := m.Place(t, slot); err != nil {
		return nil, e.fail(op, playerID, err)
	}
	e.commit(events.NewMeeplePlacedEvent(e.gameID, m))

	comps, err := e.resolveClaim(playerID, m)
	if err != nil {
		return comps, err
	}
	if err := e.endIfLimitReached(); err != nil || e.gameOver {
		return comps, err
	}
	return comps, e.finishTurn()
}

// resolveClaim scores a fresh claim whose structure is already finished
func (e *Engine) resolveClaim(playerID int, m *core.Meeple) ([]Completion, error) {
	t := m.Tile
	edge, ok := m.Slot.Edge()
	if !ok {
		sub := observer.NewMonasterySubscriber(t, playerID)
		if !e.gs.Observer.Register(e.gs.Grid, sub) {
			e.monasteries[t] = sub
			return nil, nil
		}
		c, err := e.rewards.CompleteMonastery(e.gs, t)
		if err != nil {
			return nil, e.fail("complete monastery", playerID, err)
		}
		e.noteScores([]Completion{c})
		return []Completion{c}, nil
	}

	comp := rules.Traverse(e.gs.Grid, t, m.Slot, nil)
	if !rules.Complete(e.gs.Grid, comp) {
		return nil, nil
	}
	c, err := e.rewards.CompleteStructure(e.gs, t, m.Slot, t.Edge(edge), comp)
	if err != nil {
		return nil, e.fail("complete structure", playerID, err)
	}
	e.noteScores([]Completion{c})
	return []Completion{c}, nil
}

// PassMeeple declines to claim the tile just placed and ends the turn
func (e *Engine) PassMeeple(playerID int) error {
	const op = "pass meeple"
	if err := e.checkTurn(op, playerID); err != nil {
		return err
	}
	if e.gs.LastPlaced == nil {
		return core.WrapGameError(e.gs.Round, playerID, op,
			fmt.Errorf("%w: no tile placed this turn", core.ErrWrongPhase))
	}
	e.commit(events.NewMeeplePassedEvent(e.gameID, playerID, e.gs.LastPlaced.ID))
	return e.finishTurn()
}

// CanPlace reports whether any tile in the player's hand fits the board
func (e *Engine) CanPlace(playerID int) bool {
	p := e.gs.Player(playerID)
	if p == nil {
		return false
	}
	for _, t := range p.Hand {
		if rules.HasLegalPlacement(e.gs.Grid, t) {
			return true
		}
	}
	return false
}

// SkipTurn passes a turn in which no tile in hand can be placed. The hand is
// kept. When every player skips in a row the game is stuck.
func (e *Engine) SkipTurn(playerID int) error {
	const op = "skip turn"
	if err := e.checkTurn(op, playerID); err != nil {
		return err
	}
	if e.gs.AwaitingMeeple() {
		return core.WrapGameError(e.gs.Round, playerID, op,
			fmt.Errorf("%w: meeple decision pending", core.ErrWrongPhase))
	}
	if e.CanPlace(playerID) {
		return core.WrapGameError(e.gs.Round, playerID, op, core.ErrMustPlace)
	}

	p := e.gs.Player(playerID)
	e.commit(events.NewTurnSkippedEvent(e.gameID, playerID, p.HandIDs()))
	e.gs.Skips++
	e.logger.Debug().
		Int("player_id", playerID).
		Int("consecutive_skips", e.gs.Skips).
		Msg("Turn skipped")
	return e.finishTurn()
}

// DrawTiles moves up to n tiles from the pool into the player's hand using
// the engine RNG. Fewer are drawn when the pool runs out.
func (e *Engine) DrawTiles(playerID, n int) ([]*core.Tile, error) {
	p := e.gs.Player(playerID)
	if p == nil {
		return nil, core.WrapGameError(e.gs.Round, playerID, "draw tiles", core.ErrInvalidPlayer)
	}
	if e.gameOver {
		return nil, core.WrapGameError(e.gs.Round, playerID, "draw tiles", core.ErrGameOver)
	}
	drawn := e.gs.Pool.Draw(e.rng, n)
	if len(drawn) == 0 {
		return nil, nil
	}
	p.Hand = append(p.Hand, drawn...)

	ids := make([]string, len(drawn))
	for i, t := range drawn {
		ids[i] = t.ID
	}
	e.commit(events.NewTilesDrawnEvent(e.gameID, playerID, ids))
	return drawn, nil
}

// dealHands tops every hand up to the configured size in turn order
func (e *Engine) dealHands() error {
	for _, id := range e.gs.TurnOrder {
		p := e.gs.Players[id]
		if need := e.cfg.HandSize - len(p.Hand); need > 0 {
			if _, err := e.DrawTiles(id, need); err != nil {
				return err
			}
		}
	}
	return nil
}

// finishTurn refills the hand, handles phase ends and passes the turn on
func (e *Engine) finishTurn() error {
	p := e.gs.CurrentPlayer()
	e.gs.LastPlaced = nil
	e.gs.Scored = nil

	if need := e.cfg.HandSize - len(p.Hand); need > 0 && !e.gs.Pool.Empty() {
		if _, err := e.DrawTiles(p.ID, need); err != nil {
			return err
		}
	}

	if e.gs.Pool.Empty() && e.gs.HandsEmpty() {
		if e.gs.RiverPhase {
			if err := e.CompleteRiverPhase(); err != nil || e.gameOver {
				return err
			}
		} else {
			return e.EndGame(events.EndTilesExhausted)
		}
	}

	e.gs.Current = (e.gs.Current + 1) % len(e.gs.TurnOrder)
	if e.gs.Current == 0 {
		e.gs.Round++
		if e.cfg.MaxRounds > 0 && e.gs.Round > e.cfg.MaxRounds {
			return e.EndGame(events.EndMaxRounds)
		}
	}

	if e.gs.Skips >= len(e.gs.Players) {
		if e.gs.RiverPhase {
			// the river cannot be continued; drop what is left of it
			e.logger.Warn().Msg("No river tile fits, closing the river early")
			for _, pl := range e.gs.Players {
				pl.Hand = nil
			}
			return e.CompleteRiverPhase()
		}
		return e.EndGame(events.EndStalemate)
	}
	return nil
}
