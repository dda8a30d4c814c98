package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/events"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/rules"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/replay"
	"github.com/rs/zerolog"
)

const (
	DefaultCleanupInterval      = 5 * time.Minute  // How often to run cleanup
	DefaultFinishedGameTTL      = 10 * time.Minute // Keep finished games for 10 minutes
	DefaultAbandonedGameTimeout = 30 * time.Minute // Consider game abandoned after 30 minutes of inactivity
)

var (
	ErrAtCapacity   = errors.New("session manager at capacity")
	ErrGameNotFound = errors.New("game not found")
)

// Options configure a Manager. Zero durations take the defaults.
type Options struct {
	// MaxGames caps concurrently held games; 0 means unlimited.
	MaxGames int
	// ReplayDir, when set, records every game to <dir>/<game id>.jsonl.zst.
	ReplayDir            string
	FinishedGameTTL      time.Duration
	AbandonedGameTimeout time.Duration
	Logger               zerolog.Logger
}

// Game is one engine owned by the manager. The engine is not safe for
// concurrent use; every access goes through the game's mutex.
type Game struct {
	id       string
	engine   *game.Engine
	recorder *replay.Writer
	mu       sync.Mutex

	createdAt    time.Time
	lastActivity time.Time

	idempotency *IdempotencyManager
}

// ID returns the game's ID
func (g *Game) ID() string { return g.id }

// Do runs fn with exclusive access to the engine.
func (g *Game) Do(fn func(*game.Engine) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(g.engine)
}

// Summary is a point-in-time view of a held game.
type Summary struct {
	ID            string           `json:"id"`
	Phase         string           `json:"phase"`
	Round         int              `json:"round"`
	CurrentPlayer int              `json:"current_player"`
	GameOver      bool             `json:"game_over"`
	Standings     []rules.Standing `json:"standings"`
	Events        int              `json:"events"`
	CreatedAt     time.Time        `json:"created_at"`
	LastActivity  time.Time        `json:"last_activity"`
}

func (g *Game) summaryLocked() Summary {
	s := Summary{
		ID:            g.id,
		Phase:         g.engine.CurrentPhase().String(),
		Round:         g.engine.GameState().Round,
		CurrentPlayer: -1,
		GameOver:      g.engine.IsGameOver(),
		Standings:     g.engine.Standings(),
		Events:        g.engine.History().Len(),
		CreatedAt:     g.createdAt,
		LastActivity:  g.lastActivity,
	}
	if p := g.engine.GameState().CurrentPlayer(); p != nil && !s.GameOver {
		s.CurrentPlayer = p.ID
	}
	return s
}

// Summary returns the game's current summary
func (g *Game) Summary() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.summaryLocked()
}

// Manager holds independent games keyed by ID. Games share nothing; the
// manager lock only guards the map.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*Game
	// pending holds IDs whose games are still being built
	pending map[string]bool
	opts    Options
	now     func() time.Time

	logger zerolog.Logger
}

// NewManager creates an empty manager
func NewManager(opts Options) *Manager {
	if opts.FinishedGameTTL <= 0 {
		opts.FinishedGameTTL = DefaultFinishedGameTTL
	}
	if opts.AbandonedGameTimeout <= 0 {
		opts.AbandonedGameTimeout = DefaultAbandonedGameTimeout
	}
	return &Manager{
		games:   make(map[string]*Game),
		pending: make(map[string]bool),
		opts:    opts,
		now:     time.Now,
		logger:  opts.Logger.With().Str("component", "SessionManager").Logger(),
	}
}

// Create starts a new game from cfg. A blank GameID gets a fresh uuid. The ID
// is reserved before the engine and replay log are built, so concurrent
// creates of one ID cannot both succeed.
func (m *Manager) Create(ctx context.Context, cfg game.GameConfig) (*Game, error) {
	if cfg.GameID == "" {
		cfg.GameID = uuid.NewString()
	}
	if err := m.reserve(cfg.GameID); err != nil {
		return nil, err
	}
	defer m.release(cfg.GameID)

	var recorder *replay.Writer
	if m.opts.ReplayDir != "" {
		w, err := replay.Create(replay.Path(m.opts.ReplayDir, cfg.GameID))
		if err != nil {
			return nil, fmt.Errorf("open replay log for %s: %w", cfg.GameID, err)
		}
		recorder = w
		cfg.Subscribers = append(append([]events.Subscriber(nil), cfg.Subscribers...), w)
	}

	engine, err := game.NewEngine(ctx, cfg)
	if err != nil {
		if recorder != nil {
			_ = recorder.Close()
		}
		return nil, err
	}

	now := m.now()
	g := &Game{
		id:           cfg.GameID,
		engine:       engine,
		recorder:     recorder,
		createdAt:    now,
		lastActivity: now,
		idempotency:  NewIdempotencyManager(),
	}

	m.mu.Lock()
	m.games[g.id] = g
	currentCount := len(m.games)
	m.mu.Unlock()

	m.logger.Info().
		Str("game_id", g.id).
		Int("current_games", currentCount).
		Int("max_games", m.opts.MaxGames).
		Bool("recording", recorder != nil).
		Msg("Successfully created new game")
	return g, nil
}

// reserve claims id for a game under construction. Reservations count
// towards MaxGames.
func (m *Manager) reserve(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	held := len(m.games) + len(m.pending)
	if m.opts.MaxGames > 0 && held >= m.opts.MaxGames {
		m.logger.Warn().
			Int("current_games", held).
			Int("max_games", m.opts.MaxGames).
			Msg("Rejecting game creation - manager at capacity")
		return fmt.Errorf("%w: %d/%d games active", ErrAtCapacity, held, m.opts.MaxGames)
	}
	if _, taken := m.games[id]; taken || m.pending[id] {
		return fmt.Errorf("game %s already exists", id)
	}
	m.pending[id] = true
	return nil
}

func (m *Manager) release(id string) {
	m.mu.Lock()
	delete(m.pending, id)
	m.mu.Unlock()
}

// Get retrieves a game by ID
func (m *Manager) Get(id string) (*Game, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	return g, ok
}

// Len returns the number of held games
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Play processes one move in game id. A non-empty key makes the call
// idempotent: repeating it returns the first outcome without replaying it.
func (m *Manager) Play(ctx context.Context, id string, mv game.Move, key string) (game.TurnResult, error) {
	g, ok := m.Get(id)
	if !ok {
		return game.TurnResult{}, fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if out, ok := g.idempotency.Check(mv.PlayerID, key); ok {
		m.logger.Debug().Str("game_id", id).Str("key", key).Msg("Returning cached move outcome")
		return out.Result, out.Err
	}

	res, err := g.engine.Turns().ProcessTurn(ctx, mv)
	g.lastActivity = m.now()
	// a cancelled request says nothing about the move, so it may be retried
	if !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		g.idempotency.Store(mv.PlayerID, key, Outcome{Result: res, Err: err})
	}
	if err == nil && g.engine.IsGameOver() {
		m.logger.Info().
			Str("game_id", id).
			Str("end_reason", g.engine.StateMachine().GetContext().EndReason).
			Msg("Game finished")
		g.flushRecorder(m.logger)
	}
	return res, err
}

// Remove stops tracking game id, closing its replay log.
func (m *Manager) Remove(id string) error {
	m.mu.Lock()
	g, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrGameNotFound, id)
	}
	return g.close()
}

// List summarises every held game, oldest first.
func (m *Manager) List() []Summary {
	m.mu.RLock()
	refs := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		refs = append(refs, g)
	}
	m.mu.RUnlock()

	out := make([]Summary, 0, len(refs))
	for _, g := range refs {
		out = append(out, g.Summary())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Run removes finished and abandoned games every interval until ctx is done.
func (m *Manager) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultCleanupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Cleanup()
		}
	}
}

// Cleanup removes finished games past their TTL and games nobody has played
// for too long. It returns how many were removed.
func (m *Manager) Cleanup() int {
	// Collect references without holding the manager lock while taking game locks
	m.mu.RLock()
	refs := make([]*Game, 0, len(m.games))
	for _, g := range m.games {
		refs = append(refs, g)
	}
	m.mu.RUnlock()

	now := m.now()
	var toDelete []*Game
	for _, g := range refs {
		g.mu.Lock()
		idle := now.Sub(g.lastActivity)
		phase := g.engine.CurrentPhase()
		g.mu.Unlock()

		reason := ""
		switch {
		case phase.IsTerminal() && idle > m.opts.FinishedGameTTL:
			reason = "finished game TTL expired"
		case !phase.IsTerminal() && idle > m.opts.AbandonedGameTimeout:
			reason = "game abandoned (no activity)"
		}
		if reason == "" {
			continue
		}
		toDelete = append(toDelete, g)
		m.logger.Info().
			Str("game_id", g.id).
			Str("reason", reason).
			Dur("inactive", idle).
			Msg("Cleaning up game")
	}
	if len(toDelete) == 0 {
		return 0
	}

	m.mu.Lock()
	for _, g := range toDelete {
		delete(m.games, g.id)
	}
	remaining := len(m.games)
	m.mu.Unlock()

	for _, g := range toDelete {
		if err := g.close(); err != nil {
			m.logger.Error().Err(err).Str("game_id", g.id).Msg("Failed to close replay log")
		}
	}
	m.logger.Info().
		Int("cleaned", len(toDelete)).
		Int("remaining", remaining).
		Msg("Game cleanup completed")
	return len(toDelete)
}

// Close removes every game.
func (m *Manager) Close() error {
	m.mu.Lock()
	refs := m.games
	m.games = make(map[string]*Game)
	m.mu.Unlock()

	var errs []error
	for _, g := range refs {
		if err := g.close(); err != nil {
			errs = append(errs, fmt.Errorf("game %s: %w", g.id, err))
		}
	}
	return errors.Join(errs...)
}

func (g *Game) flushRecorder(logger zerolog.Logger) {
	if g.recorder == nil {
		return
	}
	if err := g.recorder.Flush(); err != nil {
		logger.Error().Err(err).Str("game_id", g.id).Msg("Failed to flush replay log")
	}
}

func (g *Game) close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.recorder == nil {
		return nil
	}
	err := g.recorder.Close()
	g.recorder = nil
	return err
}
