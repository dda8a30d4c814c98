package game

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/observer"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/rules"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/states"
	"github.com/rs/zerolog"
	"golang.org/x/exp/rand"
)

// EngineInitializer handles the complex initialization of a game engine
type EngineInitializer struct {
	config GameConfig
	logger zerolog.Logger
}

// NewEngineInitializer creates a new engine initializer
func NewEngineInitializer(cfg GameConfig) *EngineInitializer {
	logger := cfg.Logger.With().Str("component", "GameEngine").Logger()
	return &EngineInitializer{
		config: cfg,
		logger: logger,
	}
}

// NewEngine is shorthand for NewEngineInitializer(cfg).Initialize(ctx)
func NewEngine(ctx context.Context, cfg GameConfig) (*Engine, error) {
	return NewEngineInitializer(cfg).Initialize(ctx)
}

// Initialize creates an engine, commits GameStarted and lays the start tile.
// The returned engine is in the river or base phase with hands dealt.
func (ei *EngineInitializer) Initialize(ctx context.Context) (*Engine, error) {
	// Check context early
	select {
	case <-ctx.Done():
		ei.logger.Error().Err(ctx.Err()).Msg("Engine creation cancelled or timed out during initial phase")
		return nil, ctx.Err()
	default:
	}

	// Setup configuration defaults
	if err := ei.setupDefaults(); err != nil {
		return nil, err
	}
	if err := ei.config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid game config: %w", err)
	}

	rng := rand.New(rand.NewSource(ei.config.Seed))

	// Initialize game state
	gs := ei.initializeGameState(rng)

	// Create engine components
	engine := ei.createEngine(gs, rng)

	// Setup event handling
	ei.setupEventHandling(engine)

	started := events.NewGameStartedEvent(engine.gameID, playerIDs(gs.Players))
	started.TurnOrder = gs.TurnOrder
	started.MeeplesPerPlayer = ei.config.MeeplesPerPlayer
	started.HandSize = ei.config.HandSize
	started.MapSize = ei.config.MapSize
	started.PointLimit = ei.config.PointLimit
	started.MaxRounds = ei.config.MaxRounds
	started.RiverPhase = ei.config.RiverPhase
	started.Seed = ei.config.Seed
	started.Scoring = ei.config.Scoring
	engine.commit(started)

	// Lay the start tile and deal
	if err := ei.startPlay(engine); err != nil {
		return nil, fmt.Errorf("game start failed: %w", err)
	}

	ei.logger.Info().
		Str("game_id", engine.gameID).
		Int("players", ei.config.Players).
		Bool("river_phase", ei.config.RiverPhase).
		Uint64("seed", ei.config.Seed).
		Msg("Engine created successfully")

	return engine, nil
}

// setupDefaults sets up default values for missing configuration
func (ei *EngineInitializer) setupDefaults() error {
	def := DefaultGameConfig()
	if ei.config.Players == 0 {
		ei.config.Players = def.Players
	}
	if ei.config.MeeplesPerPlayer == 0 {
		ei.config.MeeplesPerPlayer = def.MeeplesPerPlayer
	}
	if ei.config.HandSize == 0 {
		ei.config.HandSize = def.HandSize
	}
	if ei.config.MapSize == 0 {
		ei.config.MapSize = def.MapSize
	}
	if ei.config.Scoring == (core.Scoring{}) {
		ei.config.Scoring = def.Scoring
	}

	if ei.config.Seed == 0 {
		ei.logger.Debug().Msg("No seed provided, using current time")
		ei.config.Seed = uint64(time.Now().UnixNano())
	}

	if ei.config.GameID == "" {
		ei.config.GameID = uuid.NewString()
	}

	if ei.config.Catalog == nil {
		c, err := core.DefaultCatalog()
		if err != nil {
			return fmt.Errorf("load default catalog: %w", err)
		}
		ei.config.Catalog = c
	}
	return nil
}

// initializeGameState creates the board, players and a seeded turn order
func (ei *EngineInitializer) initializeGameState(rng *rand.Rand) *GameState {
	players := make([]*Player, ei.config.Players)
	for i := range players {
		players[i] = &Player{
			ID:      i,
			Meeples: core.NewMeeples(i, ei.config.MeeplesPerPlayer),
		}
	}

	return &GameState{
		Round:     1,
		Grid:      core.NewGrid(ei.config.MapSize),
		Pool:      core.NewTilePool(),
		Players:   players,
		TurnOrder: rng.Perm(ei.config.Players),
		Observer:  observer.NewBus(ei.logger),
	}
}

// createEngine creates the engine with all its components
func (ei *EngineInitializer) createEngine(gs *GameState, rng *rand.Rand) *Engine {
	// Create event bus
	eventBus := events.NewEventBus(ei.logger)

	// Create game context for state machine
	gameContext := states.NewGameContext(ei.config.GameID, MaxPlayers, ei.logger)
	gameContext.PlayerCount = ei.config.Players
	gameContext.RiverPhase = ei.config.RiverPhase

	engine := &Engine{
		gs:           gs,
		cfg:          ei.config,
		rng:          rng,
		catalog:      ei.config.Catalog,
		logger:       ei.logger.With().Str("game_id", ei.config.GameID).Logger(),
		eventBus:     eventBus,
		history:      events.NewHistory(ei.config.GameID),
		gameID:       ei.config.GameID,
		winCondition: rules.NewWinConditionChecker(ei.logger, ei.config.PointLimit),
		monasteries:  make(map[*core.Tile]*observer.MonasterySubscriber),
	}

	// Create state machine and managers after engine is created
	engine.stateMachine = states.NewStateMachine(gameContext, committer{engine})
	engine.rewards = NewRewardManager(engine.commit, ei.config.GameID, ei.config.Scoring, ei.logger)
	engine.turnProcess = NewTurnProcessor(engine)

	return engine
}

// setupEventHandling attaches the configured subscribers before any event is committed
func (ei *EngineInitializer) setupEventHandling(engine *Engine) {
	for _, s := range ei.config.Subscribers {
		engine.eventBus.Subscribe(s)
	}
}

// startPlay lays the start tile for the configured opening phase
func (ei *EngineInitializer) startPlay(engine *Engine) error {
	if ei.config.RiverPhase {
		return engine.StartRiverPhase()
	}
	return engine.StartBasePhase()
}

func playerIDs(players []*Player) []int {
	ids := make([]int, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids
}
