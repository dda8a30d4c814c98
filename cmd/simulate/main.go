package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/CarcassonneEngine/internal/config"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events/subscribers"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/monitoring"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/session"
)

// maxTurnsPerGame stops a broken game from spinning forever
const maxTurnsPerGame = 1000

type outcome struct {
	id      string
	summary session.Summary
	reason  string
	elapsed time.Duration
	err     error
}

func main() {
	// Command line flags
	configPath := flag.String("config", "", "Path to config file")
	games := flag.Int("games", -1, "Number of games to play (-1 to use config default)")
	players := flag.Int("players", -1, "Players per game (-1 to use config default)")
	seed := flag.Uint64("seed", 0, "Seed of the first game, later games add one (0 to use config default)")
	parallel := flag.Int("parallel", -1, "Games played at once (-1 to use config default)")
	replayDir := flag.String("replay-dir", "", "Directory for replay logs (empty to use config default)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	traceEvents := flag.Bool("trace-events", false, "Log every game event")
	flag.Parse()

	// Initialize configuration
	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	cfg := config.Get()

	// Use config defaults if not overridden by flags
	if *games == -1 {
		*games = cfg.Simulate.Games
	}
	if *players == -1 {
		*players = cfg.Game.Players
	}
	if *seed == 0 {
		*seed = cfg.Game.Seed
	}
	if *parallel == -1 {
		*parallel = cfg.Simulate.Parallel
	}
	if *replayDir == "" {
		*replayDir = cfg.Replay.Dir
	}
	if *logLevel == "" {
		*logLevel = cfg.Log.Level
	}

	setupLogging(*logLevel, cfg.Log.Format)

	base, err := cfg.ToGameConfig(log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build game config")
	}
	base.Players = *players

	log.Info().
		Int("games", *games).
		Int("players", *players).
		Int("parallel", *parallel).
		Str("replay_dir", *replayDir).
		Msg("Starting simulation")

	// Stop on SIGINT/SIGTERM; games in flight are aborted
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	manager := session.NewManager(session.Options{
		MaxGames:             cfg.Session.MaxGames,
		ReplayDir:            *replayDir,
		FinishedGameTTL:      cfg.Session.FinishedTTL,
		AbandonedGameTimeout: cfg.Session.AbandonedTimeout,
		Logger:               log.Logger,
	})
	defer func() {
		if err := manager.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close replay logs")
		}
	}()
	go manager.Run(ctx, cfg.Session.CleanupInterval)

	monitor := monitoring.NewSessionMonitor(manager, 10*time.Second, cfg.Session.MaxGames*4/5, log.Logger)
	go monitor.Run(ctx)

	jobs := make(chan int)
	results := make(chan outcome, *games)
	var wg sync.WaitGroup
	for w := 0; w < max(1, *parallel); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				gc := base
				if *seed != 0 {
					gc.Seed = *seed + uint64(i)
				}
				if *traceEvents {
					gc.Subscribers = []events.Subscriber{
						subscribers.NewLoggerSubscriber(fmt.Sprintf("trace-%d", i), log.Logger, zerolog.InfoLevel),
					}
				}
				results <- play(ctx, manager, gc, cfg.Simulate.AgentSeed+uint64(i), cfg.Simulate.MeepleChance)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < *games; i++ {
			select {
			case jobs <- i:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	failed := 0
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "GAME\tEND\tROUNDS\tEVENTS\tSTANDINGS\tTIME")
	for r := range results {
		if r.err != nil {
			failed++
			log.Error().Err(r.err).Str("game_id", r.id).Msg("Game failed")
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%s\t%s\n",
			r.id, r.reason, r.summary.Round, r.summary.Events, formatStandings(r.summary), r.elapsed.Round(time.Millisecond))
	}
	_ = tw.Flush()

	metrics := monitor.Check()
	log.Info().Int("peak_games", metrics.Peak).Msg("Session usage")

	if failed > 0 {
		log.Error().Int("failed", failed).Msg("Simulation finished with errors")
		_ = manager.Close()
		os.Exit(1)
	}
	log.Info().Msg("Simulation finished")
}

// play runs one self-play game to the end inside the manager
func play(ctx context.Context, m *session.Manager, gc game.GameConfig, agentSeed uint64, meepleChance float64) outcome {
	start := time.Now()
	g, err := m.Create(ctx, gc)
	if err != nil {
		return outcome{err: err}
	}
	out := outcome{id: g.ID()}
	agent := game.NewRandomAgent(agentSeed, meepleChance)

	for turns := 0; ; turns++ {
		var over bool
		err := g.Do(func(e *game.Engine) error {
			if ctx.Err() != nil && !e.IsGameOver() {
				return e.Abort()
			}
			if e.IsGameOver() {
				over = true
				out.reason = e.StateMachine().GetContext().EndReason
				return nil
			}
			if turns >= maxTurnsPerGame {
				return fmt.Errorf("no result after %d turns", turns)
			}
			_, err := e.Turns().PlayTurn(ctx, agent)
			return err
		})
		if err != nil {
			out.err = err
			return out
		}
		if over {
			break
		}
	}

	out.summary = g.Summary()
	out.elapsed = time.Since(start)
	if err := m.Remove(g.ID()); err != nil {
		out.err = err
	}
	return out
}

func formatStandings(s session.Summary) string {
	res := ""
	for i, st := range s.Standings {
		if i > 0 {
			res += " "
		}
		res += fmt.Sprintf("#%d:p%d=%d", st.Rank, st.PlayerID, st.Points)
	}
	return res
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
