package bot

import (
	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/policy"
	"github.com/mcoot/spreadgame/internal/services/scoring"
)

// Feature values for one cell, seen from the side being scored
const (
	FeatureOwn      = 1.0
	FeatureOpponent = 0.0
	FeatureOther    = 0.5
)

// Bot owns a policy and turns its scores into moves
type Bot struct {
	policy  policy.Policy
	weights scoring.Weights
}

// New wraps p in a Bot. The bot takes ownership of p.
func New(p policy.Policy) *Bot {
	return &Bot{policy: p, weights: scoring.DefaultWeights()}
}

// NewRandom creates a bot with a freshly initialised network sized for a
// width×height board
func NewRandom(rnd random.Random, width, height int) *Bot {
	return New(policy.ForBoard(rnd, width, height))
}

// Policy returns the bot's policy
func (b *Bot) Policy() policy.Policy {
	return b.policy
}

// Clone returns a deep copy
func (b *Bot) Clone() *Bot {
	return &Bot{policy: b.policy.Clone(), weights: b.weights}
}

// Mutate returns a perturbed copy, leaving b untouched
func (b *Bot) Mutate(ratio float64, rnd random.Random) *Bot {
	return &Bot{policy: b.policy.Mutate(ratio, rnd), weights: b.weights}
}

// Features encodes board as one value per cell from color's point of view
func Features(board *model.Board, color model.CaseValue) []float64 {
	cells := board.Cells()
	out := make([]float64, len(cells))
	for i, c := range cells {
		switch {
		case c == color:
			out[i] = FeatureOwn
		case c.IsStone():
			out[i] = FeatureOpponent
		default:
			out[i] = FeatureOther
		}
	}
	return out
}

// BestPlay picks the playable cell whose resulting stone pattern the policy
// scores lowest for color. Ties go to the higher heuristic score, then the
// lower index. It returns -1 when nothing is playable.
func (b *Bot) BestPlay(board *model.Board, color model.CaseValue) int {
	scratch := board.Clone()
	best := -1
	var bestScore, bestHeuristic float64

	for _, idx := range board.Playable() {
		scratch.Set(idx, color)
		score := b.policy.Score(Features(scratch, color))
		scratch.Set(idx, model.Yellow)

		if best >= 0 && score > bestScore {
			continue
		}
		heuristic := b.weights.Evaluate(board, idx, color)
		if best >= 0 && score == bestScore && heuristic <= bestHeuristic {
			continue
		}
		best, bestScore, bestHeuristic = idx, score, heuristic
	}
	return best
}
