package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newTrainCmd() *cobra.Command {
	var rounds int
	var ratio float64
	var load int

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Evolve the champion bot",
		Long: `Evolve the champion for a number of generations.

Each generation mutates the champion until a mutant beats it head to head and
against random play. Accepted champions are saved to the next free slot and
logged to the telemetry file. The mutation ratio decays after every round.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if rounds < 1 {
				return fmt.Errorf("rounds must be at least 1")
			}
			if ratio <= 0 || ratio > 1 {
				return fmt.Errorf("ratio must be in (0, 1], got %g", ratio)
			}
			if err := loadSlot(cmd, load); err != nil {
				return err
			}

			ctx := cmd.Context()
			state, err := app.Trainer.NewState(ctx, app.Champion)
			if err != nil {
				return err
			}
			gens, err := app.Trainer.Train(ctx, state, rounds, ratio, cfg.Workers)
			if err != nil {
				return err
			}

			out := newOutput(cmd)
			out.Print(NewTrainResult(gens, state))
			return nil
		},
	}

	cmd.Flags().IntVarP(&rounds, "rounds", "n", DefaultTrainRounds, "Generations to train")
	cmd.Flags().Float64Var(&ratio, "ratio", DefaultTrainRatio, "Initial mutation ratio")
	cmd.Flags().IntVar(&load, "load", -1, "Start from the champion in this save slot")

	return cmd
}

func newTestCmd() *cobra.Command {
	var games int
	var load int

	cmd := &cobra.Command{
		Use:   "test",
		Short: "Benchmark the champion against random play",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadSlot(cmd, load); err != nil {
				return err
			}
			if games <= 0 {
				games = app.Tournament.Config().BenchmarkGames
			}

			result, err := app.Tournament.BenchmarkAgainstRandom(cmd.Context(), app.Champion, games, app.Random.Spawn())
			if err != nil {
				return err
			}

			out := newOutput(cmd)
			out.Print(NewBenchmarkResult(result))
			return nil
		},
	}

	cmd.Flags().IntVar(&games, "games", 0, "Games to play (default: the configured benchmark size)")
	cmd.Flags().IntVar(&load, "load", -1, "Benchmark the champion in this save slot")

	return cmd
}
