package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/spreadgame/internal/factory"
)

var (
	cfg *Config
	app *factory.App
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cfg = DefaultConfig()

	rootCmd := &cobra.Command{
		Use:   "spreadgame",
		Short: "Play and train bots for the spread game",
		Long: `spreadgame is a CLI for the spread board game.

Two players take turns placing stones on a grid; each stone reveals the cells
around it, and three in a row of one colour wins. The CLI plays interactive
games against trained or searching bots, evolves new bots, and benchmarks
them against random play.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			fc, err := cfg.FactoryConfig(cfg.NewLogger(os.Stderr))
			if err != nil {
				return err
			}
			app, err = factory.New(fc)
			return err
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if app == nil {
				return nil
			}
			return app.Close()
		},
		SilenceUsage: true,
	}

	// Global flags
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfg.StorageType, "storage", cfg.StorageType, "Save backend: file, memory, redis (env: SPREADGAME_STORAGE)")
	flags.StringVar(&cfg.SaveDir, "save-dir", cfg.SaveDir, "Directory for the file backend (env: SPREADGAME_SAVE_DIR)")
	flags.StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL for the redis backend (env: REDIS_URL)")
	flags.StringVar(&cfg.TelemetryPath, "telemetry", cfg.TelemetryPath, "CSV training log, empty to disable (env: SPREADGAME_TELEMETRY)")
	flags.StringVar(&cfg.Seed, "seed", cfg.Seed, "Seed for reproducible runs (env: SPREADGAME_SEED)")
	flags.IntVar(&cfg.Width, "width", cfg.Width, "Board width")
	flags.IntVar(&cfg.Height, "height", cfg.Height, "Board height")
	flags.IntVar(&cfg.Obstacles, "obstacles", cfg.Obstacles, "Obstacles placed on each new board")
	flags.IntVar(&cfg.Depth, "depth", cfg.Depth, "Lookahead search depth")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Concurrent training workers")
	flags.IntVar(&cfg.BenchmarkGames, "benchmark-games", cfg.BenchmarkGames, "Games per benchmark run against random play")
	flags.IntVar(&cfg.FitnessRounds, "fitness-rounds", cfg.FitnessRounds, "Benchmark runs averaged into a fitness score")
	flags.IntVar(&cfg.MaxIterations, "max-iterations", cfg.MaxIterations, "Mutations each worker tries before a generation is abandoned")
	flags.StringVar(&cfg.Bot, "bot", cfg.Bot, "Bot strategy: policy, search, random")
	flags.StringVarP(&cfg.Output, "output", "o", cfg.Output, "Output format: text, json")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text, json")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "Verbose logging")

	// Add subcommands
	rootCmd.AddCommand(newPlayCmd())
	rootCmd.AddCommand(newTrainCmd())
	rootCmd.AddCommand(newTestCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newSavesCmd())

	return rootCmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newOutput(cmd *cobra.Command) *Output {
	return NewOutput(cfg.Output, cmd.OutOrStdout(), cmd.ErrOrStderr())
}
