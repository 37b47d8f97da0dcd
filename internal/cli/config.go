package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/mcoot/spreadgame/internal/factory"
	redisstorage "github.com/mcoot/spreadgame/internal/storage/redis"
	"github.com/mcoot/spreadgame/internal/telemetry"
)

// Config holds CLI configuration
type Config struct {
	StorageType   string
	SaveDir       string
	RedisURL      string
	TelemetryPath string
	Seed          string

	Width     int
	Height    int
	Obstacles int
	Depth     int
	Workers   int
	Bot       string

	BenchmarkGames int
	FitnessRounds  int
	MaxIterations  int

	Output    string
	LogFormat string
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	base := factory.DefaultConfig()
	return &Config{
		StorageType:    getEnvOrDefault("SPREADGAME_STORAGE", factory.StorageTypeFile),
		SaveDir:        getEnvOrDefault("SPREADGAME_SAVE_DIR", factory.DefaultSaveDir),
		RedisURL:       getEnvOrDefault("REDIS_URL", redisstorage.DefaultConfig().URL),
		TelemetryPath:  getEnvOrDefault("SPREADGAME_TELEMETRY", telemetry.DefaultPath),
		Seed:           os.Getenv("SPREADGAME_SEED"),
		Width:          base.Tournament.Width,
		Height:         base.Tournament.Height,
		Obstacles:      base.Tournament.Obstacles,
		Depth:          base.Search.Depth,
		Workers:        base.Trainer.Workers,
		BenchmarkGames: base.Tournament.BenchmarkGames,
		FitnessRounds:  base.Trainer.FitnessRounds,
		MaxIterations:  base.Trainer.MaxIterations,
		Bot:            "policy",
		Output:         "text",
		LogFormat:      "text",
		Verbose:        false,
	}
}

// FactoryConfig translates the CLI settings into a factory.Config
func (c *Config) FactoryConfig(logger *slog.Logger) (factory.Config, error) {
	fc := factory.DefaultConfig()
	fc.Logger = logger
	fc.StorageType = c.StorageType
	fc.SaveDir = c.SaveDir
	fc.TelemetryPath = c.TelemetryPath

	if c.Width <= 0 || c.Height <= 0 {
		return fc, fmt.Errorf("board must be at least 1x1, got %dx%d", c.Width, c.Height)
	}
	fc.Tournament.Width = c.Width
	fc.Tournament.Height = c.Height
	fc.Tournament.Obstacles = c.Obstacles
	if c.Depth < 1 {
		return fc, fmt.Errorf("search depth must be at least 1, got %d", c.Depth)
	}
	fc.Search.Depth = c.Depth
	fc.Trainer.Workers = c.Workers
	if c.BenchmarkGames < 1 || c.FitnessRounds < 1 || c.MaxIterations < 1 {
		return fc, fmt.Errorf("training sizes must be positive: benchmark-games=%d fitness-rounds=%d max-iterations=%d",
			c.BenchmarkGames, c.FitnessRounds, c.MaxIterations)
	}
	fc.Tournament.BenchmarkGames = c.BenchmarkGames
	fc.Trainer.FitnessRounds = c.FitnessRounds
	fc.Trainer.MaxIterations = c.MaxIterations

	if c.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = c.RedisURL
		fc.RedisConfig = &redisCfg
	}

	if c.Seed != "" {
		seed, err := strconv.ParseUint(c.Seed, 10, 64)
		if err != nil {
			return fc, fmt.Errorf("invalid seed %q: %w", c.Seed, err)
		}
		fc.Seed = &seed
	}
	return fc, nil
}

// NewLogger builds the application logger from the output settings
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
