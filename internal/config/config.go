package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game"
	"github.com/mitchelldurbincs/CarcassonneEngine/internal/game/core"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. CRC_GAME_PLAYERS.
const EnvPrefix = "CRC"

// Config holds all configuration for the application
type Config struct {
	Game     GameConfig     `mapstructure:"game"`
	Map      MapConfig      `mapstructure:"map"`
	Scoring  core.Scoring   `mapstructure:"scoring"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
	Replay   ReplayConfig   `mapstructure:"replay"`
	Session  SessionConfig  `mapstructure:"session"`
	Simulate SimulateConfig `mapstructure:"simulate"`
}

// GameConfig holds game mechanics configuration
type GameConfig struct {
	Players          int    `mapstructure:"players"`
	MeeplesPerPlayer int    `mapstructure:"meeples_per_player"`
	HandSize         int    `mapstructure:"hand_size"`
	PointLimit       int    `mapstructure:"point_limit"`
	MaxRounds        int    `mapstructure:"max_rounds"`
	RiverPhase       bool   `mapstructure:"river_phase"`
	Seed             uint64 `mapstructure:"seed"`
}

// MapConfig holds board settings
type MapConfig struct {
	Size int `mapstructure:"size"`
}

// CatalogConfig points at a tile catalog file. An empty path means the
// built-in catalog.
type CatalogConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ReplayConfig holds replay log settings. An empty dir disables recording.
type ReplayConfig struct {
	Dir string `mapstructure:"dir"`
}

// SessionConfig holds multi-game manager settings
type SessionConfig struct {
	MaxGames         int           `mapstructure:"max_games"`
	FinishedTTL      time.Duration `mapstructure:"finished_ttl"`
	AbandonedTimeout time.Duration `mapstructure:"abandoned_timeout"`
	CleanupInterval  time.Duration `mapstructure:"cleanup_interval"`
}

// SimulateConfig holds self-play settings for the simulate binary
type SimulateConfig struct {
	Games        int     `mapstructure:"games"`
	MeepleChance float64 `mapstructure:"meeple_chance"`
	AgentSeed    uint64  `mapstructure:"agent_seed"`
	Parallel     int     `mapstructure:"parallel"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
	mu  sync.RWMutex
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	def := game.DefaultGameConfig()

	// Game defaults
	v.SetDefault("game.players", def.Players)
	v.SetDefault("game.meeples_per_player", def.MeeplesPerPlayer)
	v.SetDefault("game.hand_size", def.HandSize)
	v.SetDefault("game.point_limit", def.PointLimit)
	v.SetDefault("game.max_rounds", 0)
	v.SetDefault("game.river_phase", def.RiverPhase)
	v.SetDefault("game.seed", 0)

	// Map defaults
	v.SetDefault("map.size", def.MapSize)

	// Scoring defaults
	v.SetDefault("scoring.road", def.Scoring.Road)
	v.SetDefault("scoring.city", def.Scoring.City)
	v.SetDefault("scoring.emblem", def.Scoring.Emblem)
	v.SetDefault("scoring.monastery", def.Scoring.Monastery)

	v.SetDefault("catalog.path", "")

	// Logging defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("replay.dir", "")

	// Session defaults
	v.SetDefault("session.max_games", 100)
	v.SetDefault("session.finished_ttl", "10m")
	v.SetDefault("session.abandoned_timeout", "30m")
	v.SetDefault("session.cleanup_interval", "5m")

	// Simulation defaults
	v.SetDefault("simulate.games", 1)
	v.SetDefault("simulate.meeple_chance", 0.5)
	v.SetDefault("simulate.agent_seed", 1)
	v.SetDefault("simulate.parallel", 1)
}

// Init initializes the configuration
func Init(configPath string) error {
	nv := viper.New()

	// Set defaults before loading any config
	setViperDefaults(nv)

	// Set config file
	if configPath != "" {
		nv.SetConfigFile(configPath)
	} else {
		// Default config locations
		nv.SetConfigName("config")
		nv.SetConfigType("yaml")
		nv.AddConfigPath(".")
		nv.AddConfigPath("./config")
		nv.AddConfigPath("/etc/carcassonne-engine")
	}

	// Set environment variable prefix
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	nv.AutomaticEnv()

	// Read config file
	if err := nv.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		switch {
		case configPath != "":
			// A specific file that does not exist leaves the defaults in place
			if !isNotExist(err) && !errors.As(err, &notFound) {
				return fmt.Errorf("error reading config file: %w", err)
			}
		case !errors.As(err, &notFound):
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	// Unmarshal into config struct
	c := &Config{}
	if err := nv.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Validate configuration
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	mu.Lock()
	v, cfg = nv, c
	mu.Unlock()
	return nil
}

// Get returns the global config instance
func Get() *Config {
	mu.RLock()
	c := cfg
	mu.RUnlock()
	if c == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
		mu.RLock()
		c = cfg
		mu.RUnlock()
	}
	return c
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig loads environment-specific config overlay
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)

	vp := GetViper()
	vp.SetConfigFile(envFile)
	if err := vp.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isNotExist(err) {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	// Re-unmarshal with merged config
	return reload(vp)
}

// Set allows runtime config updates
func Set(key string, value interface{}) error {
	vp := GetViper()
	vp.Set(key, value)
	return reload(vp)
}

func isNotExist(err error) bool { return errors.Is(err, fs.ErrNotExist) }

// reload decodes vp into a fresh Config and swaps it in once it validates.
func reload(vp *viper.Viper) error {
	c := &Config{}
	if err := vp.Unmarshal(c); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	mu.Lock()
	cfg = c
	mu.Unlock()
	return nil
}

// GetString gets a string value from config
func GetString(key string) string {
	return GetViper().GetString(key)
}

// GetInt gets an int value from config
func GetInt(key string) int {
	return GetViper().GetInt(key)
}

// GetBool gets a bool value from config
func GetBool(key string) bool {
	return GetViper().GetBool(key)
}

// GetFloat64 gets a float64 value from config
func GetFloat64(key string) float64 {
	return GetViper().GetFloat64(key)
}

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return GetViper().ConfigFileUsed()
}

// WatchConfig enables hot-reloading of the config file. A change that fails
// to decode or validate keeps the previous config and is passed to onChange.
// Running games keep the settings they were created with.
func WatchConfig(onChange func(*Config, error)) {
	vp := GetViper()
	vp.OnConfigChange(func(e fsnotify.Event) {
		err := reload(vp)
		if onChange != nil {
			onChange(Get(), err)
		}
	})
	vp.WatchConfig()
}

// Validate validates the configuration values
func Validate(c *Config) error {
	// Validate game mechanics
	if c.Game.Players < 1 || c.Game.Players > game.MaxPlayers {
		return fmt.Errorf("game.players must be between 1 and %d", game.MaxPlayers)
	}
	if c.Game.MeeplesPerPlayer < 0 {
		return fmt.Errorf("game.meeples_per_player must be non-negative")
	}
	if c.Game.HandSize < 1 {
		return fmt.Errorf("game.hand_size must be at least 1")
	}
	if c.Game.PointLimit < 0 {
		return fmt.Errorf("game.point_limit must be non-negative")
	}
	if c.Game.MaxRounds < 0 {
		return fmt.Errorf("game.max_rounds must be non-negative")
	}
	if c.Map.Size < 3 {
		return fmt.Errorf("map.size must be at least 3")
	}

	// Validate scoring
	for name, points := range map[string]int{
		"scoring.road":      c.Scoring.Road,
		"scoring.city":      c.Scoring.City,
		"scoring.emblem":    c.Scoring.Emblem,
		"scoring.monastery": c.Scoring.Monastery,
	} {
		if points < 0 {
			return fmt.Errorf("%s must be non-negative", name)
		}
	}

	// Validate logging
	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level %q is not a valid level", c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be console or json")
	}

	// Validate session settings
	if c.Session.MaxGames < 0 {
		return fmt.Errorf("session.max_games must be non-negative")
	}
	if c.Session.FinishedTTL < 0 || c.Session.AbandonedTimeout < 0 || c.Session.CleanupInterval < 0 {
		return fmt.Errorf("session durations must be non-negative")
	}

	// Validate simulation settings
	if c.Simulate.Games < 1 {
		return fmt.Errorf("simulate.games must be at least 1")
	}
	if c.Simulate.MeepleChance < 0 || c.Simulate.MeepleChance > 1 {
		return fmt.Errorf("simulate.meeple_chance must be between 0 and 1")
	}
	if c.Simulate.Parallel < 1 {
		return fmt.Errorf("simulate.parallel must be at least 1")
	}

	return nil
}

// ToGameConfig builds an engine configuration, loading the tile catalog from
// catalog.path when one is set.
func (c *Config) ToGameConfig(logger zerolog.Logger) (game.GameConfig, error) {
	gc := game.GameConfig{
		Players:          c.Game.Players,
		MeeplesPerPlayer: c.Game.MeeplesPerPlayer,
		HandSize:         c.Game.HandSize,
		PointLimit:       c.Game.PointLimit,
		MaxRounds:        c.Game.MaxRounds,
		RiverPhase:       c.Game.RiverPhase,
		Seed:             c.Game.Seed,
		MapSize:          c.Map.Size,
		Scoring:          c.Scoring,
		Logger:           logger,
	}
	if c.Catalog.Path != "" {
		cat, err := core.LoadCatalog(c.Catalog.Path)
		if err != nil {
			return gc, fmt.Errorf("load catalog %s: %w", c.Catalog.Path, err)
		}
		gc.Catalog = cat
	}
	return gc, nil
}

// LogLevel is the parsed log.level; Validate guarantees it parses.
func (c *Config) LogLevel() zerolog.Level {
	lvl, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.InfoLevel
	}
	return lvl
}
