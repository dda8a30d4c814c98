package subscribers

import (
	"encoding/json"

	"github.com/rs/zerolog"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
)

// LoggerSubscriber writes every event it is interested in as one structured
// log line at a fixed level.
type LoggerSubscriber struct {
	id     string
	logger zerolog.Logger
	level  zerolog.Level
	only   map[string]bool
	// verbose adds the whole event as raw JSON under event_data
	verbose bool
}

// NewLoggerSubscriber logs at level, falling back to info for anything
// outside debug..error.
func NewLoggerSubscriber(id string, logger zerolog.Logger, level zerolog.Level) *LoggerSubscriber {
	if level < zerolog.DebugLevel || level > zerolog.ErrorLevel {
		level = zerolog.InfoLevel
	}
	return &LoggerSubscriber{
		id:     id,
		logger: logger.With().Str("subscriber", "event_logger").Logger(),
		level:  level,
	}
}

func (ls *LoggerSubscriber) ID() string { return ls.id }

// SetEventFilter limits logging to eventTypes. An empty list logs everything.
func (ls *LoggerSubscriber) SetEventFilter(eventTypes []string) {
	ls.only = nil
	if len(eventTypes) == 0 {
		return
	}
	ls.only = make(map[string]bool, len(eventTypes))
	for _, t := range eventTypes {
		ls.only[t] = true
	}
}

func (ls *LoggerSubscriber) SetDevMode(enabled bool) { ls.verbose = enabled }

func (ls *LoggerSubscriber) InterestedIn(eventType string) bool {
	return ls.only == nil || ls.only[eventType]
}

func (ls *LoggerSubscriber) HandleEvent(event events.Event) {
	logEvent := ls.logger.WithLevel(ls.level).
		Str("event_type", event.Type()).
		Str("game_id", event.GameID()).
		Int("seq", event.Seq())

	switch e := event.(type) {
	case *events.GameStartedEvent:
		logEvent.
			Ints("player_ids", e.PlayerIDs).
			Int("map_size", e.MapSize).
			Int("hand_size", e.HandSize).
			Int("point_limit", e.PointLimit).
			Bool("river_phase", e.RiverPhase).
			Uint64("seed", e.Seed)

	case *events.StartingTilePlacedEvent:
		logEvent.
			Str("tile_id", e.Tile.ID).
			Stringer("pos", e.Tile.Pos)

	case *events.TilesDrawnEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Strs("tile_ids", e.TileIDs)

	case *events.TilePlacedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("tile_id", e.Tile.ID).
			Stringer("pos", e.Tile.Pos).
			Int("rotation", e.Tile.Rotation)

	case *events.MeeplePlacedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("meeple_id", e.MeepleID).
			Str("tile_id", e.Tile.ID).
			Stringer("slot", e.Slot)

	case *events.MeeplePassedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Str("tile_id", e.TileID)

	case *events.TurnSkippedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Strs("tile_ids", e.TileIDs)

	case *events.StructureCompletedEvent:
		logEvent.
			Stringer("kind", e.Kind).
			Str("origin", e.Origin.ID).
			Stringer("slot", e.Slot).
			Int("tiles", len(e.TileIDs)).
			Int("points", e.Points).
			Ints("winners", e.Winners)

	case *events.MeepleFreedEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("meeple_id", e.MeepleID).
			Int("reward", e.Reward).
			Str("tile_id", e.Tile.ID).
			Stringer("slot", e.Slot).
			Str("reason", e.Reason)

	case *events.RiverPhaseCompletedEvent:
		logEvent.
			Str("tile_id", e.EndTile.ID).
			Stringer("pos", e.EndTile.Pos)

	case *events.GameEndedEvent:
		logEvent.
			Str("reason", e.Reason).
			Int("round", e.Round)

	case *events.PlayerWonEvent:
		logEvent.
			Int("player_id", e.PlayerID).
			Int("points", e.Points)

	case *events.StateTransitionEvent:
		logEvent.
			Str("from", e.FromPhase).
			Str("to", e.ToPhase).
			Str("reason", e.Reason)
	}

	if ls.verbose {
		if raw, err := json.Marshal(event); err == nil {
			logEvent.RawJSON("event_data", raw)
		}
	}
	logEvent.Msg("Game event")
}
