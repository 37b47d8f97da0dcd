package factory

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mcoot/spreadgame/internal/dependencies/clock"
	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/policy"
	"github.com/mcoot/spreadgame/internal/services/bot"
	"github.com/mcoot/spreadgame/internal/services/game"
	"github.com/mcoot/spreadgame/internal/services/search"
	"github.com/mcoot/spreadgame/internal/services/tournament"
	"github.com/mcoot/spreadgame/internal/services/trainer"
	"github.com/mcoot/spreadgame/internal/storage"
	filestorage "github.com/mcoot/spreadgame/internal/storage/file"
	"github.com/mcoot/spreadgame/internal/storage/memory"
	redisstorage "github.com/mcoot/spreadgame/internal/storage/redis"
	"github.com/mcoot/spreadgame/internal/telemetry"
)

// Storage type constants
const (
	StorageTypeMemory = "memory"
	StorageTypeFile   = "file"
	StorageTypeRedis  = "redis"
)

// DefaultSaveDir is where the file backend keeps checkpoints
const DefaultSaveDir = "saves"

// App contains all wired application components
type App struct {
	// Storage
	Storage   storage.Storage
	Telemetry telemetry.Recorder

	// External dependencies
	Clock  clock.Clock
	Random random.Random

	// Services
	Tournament     *tournament.Runner
	Searcher       *search.Searcher
	Trainer        *trainer.Trainer
	GameController *game.Controller

	// Champion is the bot behind the policy strategy
	Champion *bot.Bot

	logger *slog.Logger
	closer io.Closer
}

// Config holds configuration for the application factory
type Config struct {
	// Logger is the application logger (optional)
	// If nil, a no-op logger is used
	Logger *slog.Logger
	// StorageType selects the storage backend ("memory", "file" or "redis")
	// If empty, defaults to "memory"
	StorageType string
	// SaveDir is the file backend's directory; defaults to DefaultSaveDir
	SaveDir string
	// RedisConfig holds Redis connection settings (required if StorageType is "redis")
	RedisConfig *redisstorage.Config
	// TelemetryPath is the CSV training log; empty disables telemetry
	TelemetryPath string
	// Seed makes every random draw reproducible when set
	Seed *uint64

	Tournament tournament.Config
	Search     search.Config
	Trainer    trainer.Config
}

// DefaultConfig returns a Config with the stock service settings
func DefaultConfig() Config {
	return Config{
		StorageType: StorageTypeMemory,
		Tournament:  tournament.DefaultConfig(),
		Search:      search.DefaultConfig(),
		Trainer:     trainer.DefaultConfig(),
	}
}

// New creates a new application with all dependencies wired
func New(cfg Config) (*App, error) {
	// Use no-op logger if not provided
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}

	// Create storage based on type
	var store storage.Storage
	var closer io.Closer
	storageType := cfg.StorageType
	if storageType == "" {
		storageType = StorageTypeMemory
	}

	switch storageType {
	case StorageTypeMemory:
		store = memory.New()
	case StorageTypeFile:
		dir := cfg.SaveDir
		if dir == "" {
			dir = DefaultSaveDir
		}
		fileStore, err := filestorage.New(dir)
		if err != nil {
			return nil, err
		}
		store = fileStore
	case StorageTypeRedis:
		if cfg.RedisConfig == nil {
			return nil, errors.New("RedisConfig required when StorageType is redis")
		}
		redisStore, err := redisstorage.New(*cfg.RedisConfig)
		if err != nil {
			return nil, err
		}
		store = redisStore
		closer = redisStore
	default:
		return nil, errors.New("invalid StorageType: must be 'memory', 'file' or 'redis'")
	}

	var recorder telemetry.Recorder = telemetry.Discard{}
	if cfg.TelemetryPath != "" {
		csvRecorder := telemetry.NewCSVRecorder(cfg.TelemetryPath)
		logger.Info("recording training telemetry", slog.String("path", csvRecorder.Path()))
		recorder = csvRecorder
	}

	// Create external dependencies
	clk := clock.New()
	var rnd random.Random = random.New()
	if cfg.Seed != nil {
		rnd = random.NewSeeded(*cfg.Seed)
	}

	app := newWithDependencies(store, recorder, clk, rnd, cfg, logger)
	app.closer = closer
	return app, nil
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	store storage.Storage,
	recorder telemetry.Recorder,
	clk clock.Clock,
	rnd random.Random,
	cfg Config,
	logger *slog.Logger,
) *App {
	runner := tournament.New(cfg.Tournament, logger)
	searcher := search.New(cfg.Search, logger)
	champion := bot.NewRandom(rnd, cfg.Tournament.Width, cfg.Tournament.Height)
	train := trainer.New(cfg.Trainer, runner, cfg.Tournament.BenchmarkGames, store, recorder, clk, rnd, logger)

	strategies := map[string]bot.Strategy{
		model.BotStrategyPolicy: bot.NewPolicyStrategy(champion),
		model.BotStrategySearch: bot.NewSearchStrategy(searcher),
		model.BotStrategyRandom: bot.NewRandomStrategy(rnd),
	}
	gameController := game.NewController(runner, strategies, clk, rnd, logger)

	return &App{
		Storage:        store,
		Telemetry:      recorder,
		Clock:          clk,
		Random:         rnd,
		Tournament:     runner,
		Searcher:       searcher,
		Trainer:        train,
		GameController: gameController,
		Champion:       champion,
		logger:         logger,
	}
}

// SetChampion makes b the bot behind the policy strategy
func (a *App) SetChampion(b *bot.Bot) {
	a.Champion = b
	a.GameController.SetStrategy(model.BotStrategyPolicy, bot.NewPolicyStrategy(b))
}

// LoadChampion loads the policy saved in slot and makes it champion
func (a *App) LoadChampion(ctx context.Context, slot int) (*bot.Bot, error) {
	data, err := a.Storage.GetPolicy(ctx, slot)
	if err != nil {
		return nil, err
	}
	network, err := policy.Load(data)
	if err != nil {
		return nil, fmt.Errorf("slot %d: %w", slot, err)
	}
	cfg := a.Tournament.Config()
	if cells := cfg.Width * cfg.Height; network.Inputs() != cells {
		return nil, fmt.Errorf("%w: slot %d expects %d cells, board has %d",
			model.ErrMalformedSave, slot, network.Inputs(), cells)
	}

	b := bot.New(network)
	a.SetChampion(b)
	a.logger.Info("champion loaded", slog.Int("slot", slot))
	return b, nil
}

// Close releases the storage connection, if any
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}
