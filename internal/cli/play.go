package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mcoot/spreadgame/internal/model"
)

func newPlayCmd() *cobra.Command {
	var color string
	var load int

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play interactively against a bot",
		Long: `Start an interactive game against the selected bot.

Enter a cell index or an "x y" pair to play. Type 'help' in the session for
the training and loading commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			humanColor, err := parseColor(color)
			if err != nil {
				return err
			}
			if !model.IsValidBotStrategy(cfg.Bot) {
				return fmt.Errorf("invalid bot %q: must be one of %v", cfg.Bot, model.ValidBotStrategies())
			}
			if err := loadSlot(cmd, load); err != nil {
				return err
			}

			out := newOutput(cmd)
			out.PrintMessage(fmt.Sprintf("Playing %s against %s. Type 'help' for commands.",
				humanColor, model.BotStrategyDisplayName(cfg.Bot)))
			session := NewSession(app, out, humanColor, cfg.Bot, cfg.Workers)
			return session.Run(cmd.Context(), cmd.InOrStdin())
		},
	}

	cmd.Flags().StringVar(&color, "color", "red", "Your colour: red, blue")
	cmd.Flags().IntVar(&load, "load", -1, "Load the champion from this save slot first")

	return cmd
}

// loadSlot loads the champion from slot unless it is negative
func loadSlot(cmd *cobra.Command, slot int) error {
	if slot < 0 {
		return nil
	}
	_, err := app.LoadChampion(cmd.Context(), slot)
	return err
}
