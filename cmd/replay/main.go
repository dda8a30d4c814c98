package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/config"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/replay"
)

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	file := flag.String("file", "", "Replay log to read")
	gameID := flag.String("game", "", "Game ID to read from the replay directory, used when -file is empty")
	replayDir := flag.String("replay-dir", "", "Directory for replay logs (empty to use config default)")
	verify := flag.Bool("verify", true, "Re-apply the log and check it reproduces the same game")
	traceEvents := flag.Bool("trace-events", false, "Log every recorded event")
	asJSON := flag.Bool("json", false, "Print standings and stats as JSON")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()
	if *replayDir == "" {
		*replayDir = cfg.Replay.Dir
	}
	if *logLevel == "" {
		*logLevel = cfg.Log.Level
	}
	setupLogging(*logLevel, cfg.Log.Format)

	path := *file
	if path == "" {
		if *gameID == "" {
			log.Fatal().Msg("Either -file or -game is required")
		}
		path = replay.Path(*replayDir, *gameID)
	}

	evs, err := replay.Open(path)
	if err != nil {
		log.Fatal().Err(err).Str("path", path).Msg("Failed to read replay log")
	}
	log.Info().Str("path", path).Int("events", len(evs)).Msg("Loaded replay log")

	if *traceEvents {
		tracer := subscribers.NewLoggerSubscriber("replay-trace", log.Logger, zerolog.InfoLevel)
		for _, ev := range evs {
			tracer.HandleEvent(ev)
		}
	}

	var catalog *core.Catalog
	if cfg.Catalog.Path != "" {
		if catalog, err = core.LoadCatalog(cfg.Catalog.Path); err != nil {
			log.Fatal().Err(err).Msg("Failed to load tile catalog")
		}
	}

	start := time.Now()
	engine, err := replay.Replay(context.Background(), evs, replay.Options{Catalog: catalog, Logger: log.Logger})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to replay game")
	}
	if *verify {
		if err := replay.Verify(evs, engine); err != nil {
			log.Fatal().Err(err).Msg("Replay does not match the log")
		}
		log.Info().Dur("elapsed", time.Since(start)).Msg("Replay matches the log")
	}

	reason := ""
	if last, ok := lastOf[*events.GameEndedEvent](evs); ok {
		reason = last.Reason
	}

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(map[string]any{
			"game_id":    engine.GameID(),
			"end_reason": reason,
			"game_over":  engine.IsGameOver(),
			"standings":  engine.Standings(),
			"stats":      engine.Stats(),
		}); err != nil {
			log.Fatal().Err(err).Msg("Failed to encode result")
		}
		return
	}

	fmt.Printf("game %s (%s, %d events)\n", engine.GameID(), reason, len(evs))
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tPOINTS\tTILES\tMEEPLES\tSKIPS\tBREAKDOWN")
	stats := engine.Stats()
	for _, s := range engine.Standings() {
		st := stats[s.PlayerID]
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d\t%d\t%v\n",
			s.Rank, s.PlayerID, s.Points, st.TilesPlaced, st.MeeplesPlaced, st.TurnsSkipped, st.PointsBy)
	}
	_ = tw.Flush()
}

// lastOf returns the last event of type T in evs
func lastOf[T events.Event](evs []events.Event) (T, bool) {
	for i := len(evs) - 1; i >= 0; i-- {
		if ev, ok := evs[i].(T); ok {
			return ev, true
		}
	}
	var zero T
	return zero, false
}

func setupLogging(level, format string) {
	// Parse log level
	logLevel, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		logLevel = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(logLevel)

	// JSON output in production or when asked for, console otherwise
	if os.Getenv("APP_ENV") == "production" || format == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
