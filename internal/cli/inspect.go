package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/mcoot/spreadgame/internal/factory"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/scoring"
)

func newInspectCmd() *cobra.Command {
	var load int

	cmd := &cobra.Command{
		Use:   "inspect <row>...",
		Short: "Evaluate a board position",
		Long: `Evaluate every playable cell of a position for the side to move and
show where the search and the champion would play.

Rows use R and B for stones, - for playable, . for pending and # for
obstacles, e.g.

  spreadgame inspect RR-.. BB..-`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			board, err := model.ParseBoard(args...)
			if err != nil {
				return err
			}
			if err := loadSlot(cmd, load); err != nil {
				return err
			}

			in, err := Inspect(cmd.Context(), app, board)
			if err != nil {
				return err
			}
			out := newOutput(cmd)
			out.Print(in)
			return nil
		},
	}

	cmd.Flags().IntVar(&load, "load", -1, "Use the champion in this save slot")

	return cmd
}

// Inspect analyses board for the side to move. Search and Policy are -1
// when there is no move or the champion was trained for another board size.
func Inspect(ctx context.Context, a *factory.App, board *model.Board) (Inspection, error) {
	color := board.Turn()
	in := Inspection{
		Board:  NewBoardView(board),
		Search: -1,
		Policy: -1,
	}
	for _, c := range scoring.Rank(board, color) {
		in.Cells = append(in.Cells, CellScore{
			Index:     c.Index,
			X:         c.Index % board.Width(),
			Y:         c.Index / board.Width(),
			Heuristic: c.Score,
		})
	}
	if len(in.Cells) == 0 || board.IsOver() {
		return in, nil
	}

	idx, err := a.Searcher.WhereToPlay(ctx, board)
	if err != nil {
		return in, err
	}
	in.Search = idx
	if a.Champion.Policy().Inputs() == board.Len() {
		in.Policy = a.Champion.BestPlay(board, color)
	}
	return in, nil
}

func newSavesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saves",
		Short: "List saved champions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			slots, err := app.Storage.ListPolicies(cmd.Context())
			if err != nil {
				return err
			}

			out := newOutput(cmd)
			out.Print(SaveList{Slots: slots})
			return nil
		},
	}
}
