package bot

import (
	"context"

	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
)

// RandomStrategy picks a uniformly random playable cell
type RandomStrategy struct {
	random random.Random
}

// NewRandomStrategy creates a new RandomStrategy
func NewRandomStrategy(rnd random.Random) *RandomStrategy {
	return &RandomStrategy{random: rnd}
}

// Choose picks a random playable cell
func (s *RandomStrategy) Choose(_ context.Context, board *model.Board) (int, error) {
	if board.IsOver() {
		return -1, model.ErrGameComplete
	}
	playable := board.Playable()
	if len(playable) == 0 {
		return -1, model.ErrInvalidMove
	}
	return playable[s.random.Intn(len(playable))], nil
}
