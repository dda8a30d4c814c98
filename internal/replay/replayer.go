package replay

import (
	"context"
	"errors"
	"fmt"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/rs/zerolog"
)

var (
	// ErrNoGameStarted means the log does not open with a GameStarted event.
	ErrNoGameStarted = errors.New("log has no game.started event")
	// ErrDiverged means re-applying the log produced a different game.
	ErrDiverged = errors.New("replay diverged from log")
)

// Options tune how a log is re-applied.
type Options struct {
	// Catalog must match the one the game was recorded with. Nil means the
	// built-in catalog.
	Catalog *core.Catalog
	Logger  zerolog.Logger
	// Subscribers are attached to the rebuilt engine before it starts.
	Subscribers []events.Subscriber
}

// ConfigFromLog rebuilds the configuration a recorded game started with.
func ConfigFromLog(evs []events.Event) (game.GameConfig, error) {
	if len(evs) == 0 {
		return game.GameConfig{}, ErrNoGameStarted
	}
	started, ok := evs[0].(*events.GameStartedEvent)
	if !ok {
		return game.GameConfig{}, fmt.Errorf("%w: first event is %s", ErrNoGameStarted, evs[0].Type())
	}
	return game.GameConfig{
		GameID:           started.GameID(),
		Players:          len(started.PlayerIDs),
		MeeplesPerPlayer: started.MeeplesPerPlayer,
		HandSize:         started.HandSize,
		PointLimit:       started.PointLimit,
		MaxRounds:        started.MaxRounds,
		RiverPhase:       started.RiverPhase,
		Seed:             started.Seed,
		MapSize:          started.MapSize,
		Scoring:          started.Scoring,
		Logger:           zerolog.Nop(),
	}, nil
}

// Replay starts a fresh engine from the log's GameStarted event and feeds it
// every recorded move. Events the engine derives on its own (draws,
// completions, settlement) are not fed; Verify checks they came out the same.
func Replay(ctx context.Context, evs []events.Event, opts Options) (*game.Engine, error) {
	cfg, err := ConfigFromLog(evs)
	if err != nil {
		return nil, err
	}
	cfg.Catalog = opts.Catalog
	cfg.Logger = opts.Logger
	cfg.Subscribers = opts.Subscribers

	e, err := game.NewEngine(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("start replay engine: %w", err)
	}
	logger := opts.Logger.With().Str("component", "Replayer").Str("game_id", cfg.GameID).Logger()

	for _, ev := range evs[1:] {
		if err := ctx.Err(); err != nil {
			return e, err
		}
		if err := apply(e, ev); err != nil {
			logger.Error().Err(err).Int("seq", ev.Seq()).Str("event_type", ev.Type()).Msg("Replay failed")
			return e, fmt.Errorf("replay event %d (%s): %w", ev.Seq(), ev.Type(), err)
		}
	}

	logger.Info().
		Int("events", len(evs)).
		Int("replayed", e.History().Len()).
		Bool("game_over", e.IsGameOver()).
		Msg("Replay finished")
	return e, nil
}

// apply feeds ev to e if it records a player decision.
func apply(e *game.Engine, ev events.Event) error {
	switch ev := ev.(type) {
	case *events.TilePlacedEvent:
		// negative IDs are tiles the engine laid itself
		if ev.PlayerID < 0 {
			return nil
		}
		idx, err := handIndex(e, ev.PlayerID, ev.Tile.ID)
		if err != nil {
			return err
		}
		_, err = e.PlaceTile(ev.PlayerID, idx, ev.Tile.Pos, ev.Tile.Rotation)
		return err
	case *events.MeeplePlacedEvent:
		_, err := e.PlaceMeeple(ev.PlayerID, ev.Slot)
		return err
	case *events.MeeplePassedEvent:
		return e.PassMeeple(ev.PlayerID)
	case *events.TurnSkippedEvent:
		return e.SkipTurn(ev.PlayerID)
	case *events.GameEndedEvent:
		// only an outside stop has to be repeated
		if !e.IsGameOver() && ev.Reason == events.EndAborted {
			return e.Abort()
		}
	}
	return nil
}

func handIndex(e *game.Engine, playerID int, tileID string) (int, error) {
	p := e.GameState().Player(playerID)
	if p == nil {
		return 0, fmt.Errorf("%w: player %d", core.ErrInvalidPlayer, playerID)
	}
	for i, t := range p.Hand {
		if t.ID == tileID {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: tile %s is not in player %d's hand %v", ErrDiverged, tileID, playerID, p.HandIDs())
}

// Verify compares a replayed engine with the log it was rebuilt from: the
// same events in the same order, the same tiles and final standings.
func Verify(recorded []events.Event, e *game.Engine) error {
	got := e.History().Events()
	if len(got) != len(recorded) {
		return fmt.Errorf("%w: %d events recorded, %d replayed", ErrDiverged, len(recorded), len(got))
	}
	for i := range recorded {
		if err := sameEvent(recorded[i], got[i]); err != nil {
			return fmt.Errorf("%w: event %d: %v", ErrDiverged, i+1, err)
		}
	}

	want := standingsFromLog(recorded)
	if want == nil {
		return nil
	}
	have := map[int]int{}
	for _, p := range e.GameState().Players {
		have[p.ID] = p.Points
	}
	for id, pts := range want {
		if have[id] != pts {
			return fmt.Errorf("%w: player %d has %d points, log says %d", ErrDiverged, id, have[id], pts)
		}
	}
	return nil
}

// sameEvent compares the parts of two events that do not depend on wall time.
func sameEvent(want, got events.Event) error {
	if want.Type() != got.Type() {
		return fmt.Errorf("type %s, replayed %s", want.Type(), got.Type())
	}
	switch w := want.(type) {
	case *events.TilesDrawnEvent:
		g := got.(*events.TilesDrawnEvent)
		if fmt.Sprint(w.TileIDs) != fmt.Sprint(g.TileIDs) {
			return fmt.Errorf("drew %v, replayed %v", w.TileIDs, g.TileIDs)
		}
	case *events.TilePlacedEvent:
		g := got.(*events.TilePlacedEvent)
		if w.Tile != g.Tile {
			return fmt.Errorf("placed %+v, replayed %+v", w.Tile, g.Tile)
		}
	case *events.StructureCompletedEvent:
		g := got.(*events.StructureCompletedEvent)
		if w.Points != g.Points || fmt.Sprint(w.Winners) != fmt.Sprint(g.Winners) {
			return fmt.Errorf("completed for %d to %v, replayed %d to %v", w.Points, w.Winners, g.Points, g.Winners)
		}
	case *events.MeepleFreedEvent:
		g := got.(*events.MeepleFreedEvent)
		if w.PlayerID != g.PlayerID || w.Reward != g.Reward {
			return fmt.Errorf("freed player %d for %d, replayed player %d for %d", w.PlayerID, w.Reward, g.PlayerID, g.Reward)
		}
	case *events.GameEndedEvent:
		g := got.(*events.GameEndedEvent)
		if w.Reason != g.Reason {
			return fmt.Errorf("ended by %s, replayed %s", w.Reason, g.Reason)
		}
	}
	return nil
}

// standingsFromLog sums the rewards in the log per player. Nil means the log
// carries no GameStarted event to list the players.
func standingsFromLog(evs []events.Event) map[int]int {
	if len(evs) == 0 {
		return nil
	}
	started, ok := evs[0].(*events.GameStartedEvent)
	if !ok {
		return nil
	}
	out := make(map[int]int, len(started.PlayerIDs))
	for _, id := range started.PlayerIDs {
		out[id] = 0
	}
	for _, ev := range evs {
		if f, ok := ev.(*events.MeepleFreedEvent); ok {
			out[f.PlayerID] += f.Reward
		}
	}
	return out
}
