package bot

import (
	"context"

	"github.com/mcoot/spreadgame/internal/model"
)

// Strategy picks the next move for the side to move on a board
type Strategy interface {
	// Choose returns a playable index
	Choose(ctx context.Context, board *model.Board) (int, error)
}

// PolicyStrategy plays a bot's best play
type PolicyStrategy struct {
	bot *Bot
}

// NewPolicyStrategy creates a PolicyStrategy for bot
func NewPolicyStrategy(bot *Bot) *PolicyStrategy {
	return &PolicyStrategy{bot: bot}
}

// Bot returns the bot behind the strategy
func (s *PolicyStrategy) Bot() *Bot {
	return s.bot
}

// Choose returns the bot's best play for the side to move
func (s *PolicyStrategy) Choose(_ context.Context, board *model.Board) (int, error) {
	if board.IsOver() {
		return -1, model.ErrGameComplete
	}
	idx := s.bot.BestPlay(board, board.Turn())
	if idx < 0 {
		return -1, model.ErrInvalidMove
	}
	return idx, nil
}

// Searcher is the lookahead search as seen by SearchStrategy
type Searcher interface {
	WhereToPlay(ctx context.Context, board *model.Board) (int, error)
}

// SearchStrategy plays the lookahead search's choice
type SearchStrategy struct {
	searcher Searcher
}

// NewSearchStrategy creates a SearchStrategy
func NewSearchStrategy(searcher Searcher) *SearchStrategy {
	return &SearchStrategy{searcher: searcher}
}

// Choose runs the search for the side to move
func (s *SearchStrategy) Choose(ctx context.Context, board *model.Board) (int, error) {
	return s.searcher.WhereToPlay(ctx, board)
}
