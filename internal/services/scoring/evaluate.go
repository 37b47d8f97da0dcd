package scoring

import (
	"github.com/mcoot/spreadgame/internal/model"
)

// Weights is the positional weight table used by Evaluate
type Weights struct {
	EmptyAdjacentToEmpty       float64
	EmptyAdjacentToOwnColor    float64
	OwnAdjacentToOwnColor      float64
	OpponentAdjacentToOpponent float64
	PlayEverywhere             float64
}

// Default weights. OwnAdjacentToOwnColor dwarfs the rest so that any move
// that completes or extends a line of three dominates.
const (
	EmptyAdjacentToEmpty       = 0.05
	EmptyAdjacentToOwnColor    = 2.0
	OwnAdjacentToOwnColor      = 1000.0
	OpponentAdjacentToOpponent = 0.5
	PlayEverywhere             = 4.0
)

// DefaultWeights returns the stock weight table
func DefaultWeights() Weights {
	return Weights{
		EmptyAdjacentToEmpty:       EmptyAdjacentToEmpty,
		EmptyAdjacentToOwnColor:    EmptyAdjacentToOwnColor,
		OwnAdjacentToOwnColor:      OwnAdjacentToOwnColor,
		OpponentAdjacentToOpponent: OpponentAdjacentToOpponent,
		PlayEverywhere:             PlayEverywhere,
	}
}

// Candidate is a playable index with its evaluation
type Candidate struct {
	Index int
	Score float64
}

// Evaluate scores how desirable index is for color using the default weights
func Evaluate(b *model.Board, index int, color model.CaseValue) float64 {
	return DefaultWeights().Evaluate(b, index, color)
}

// Rank evaluates every playable index for color, in ascending index order
func Rank(b *model.Board, color model.CaseValue) []Candidate {
	return DefaultWeights().Rank(b, color)
}

// Evaluate scores how desirable index is for color
func (w Weights) Evaluate(b *model.Board, index int, color model.CaseValue) float64 {
	other := color.Invert()
	score := 0.0
	hasNeighbour := false
	allEmpty := true

	for _, dir := range model.Directions {
		u, neighbour, ok := b.FollowAndGet(index, dir)
		if !ok {
			continue
		}
		hasNeighbour = true

		switch {
		case neighbour.IsEmpty():
			score += w.pairScore(b, u, index, dir, func(c model.CaseValue) float64 {
				if c.IsEmpty() {
					return w.EmptyAdjacentToEmpty
				}
				if c == color {
					return w.EmptyAdjacentToOwnColor
				}
				return 0
			})
		case neighbour == color:
			allEmpty = false
			score += w.pairScore(b, u, index, dir, func(c model.CaseValue) float64 {
				if c.IsEmpty() {
					return w.EmptyAdjacentToOwnColor
				}
				if c == color {
					return w.OwnAdjacentToOwnColor
				}
				return 0
			})
		case neighbour == other:
			allEmpty = false
			score += w.pairScore(b, u, index, dir, func(c model.CaseValue) float64 {
				if c == other {
					return w.OpponentAdjacentToOpponent
				}
				return 0
			})
		default:
			allEmpty = false
		}
	}

	if hasNeighbour && allEmpty {
		score += w.PlayEverywhere
	}
	return score
}

// pairScore weighs the cell beyond the neighbour u and the mirror neighbour
// of index with the same classifier.
func (w Weights) pairScore(b *model.Board, u, index int, dir model.Direction, weigh func(model.CaseValue) float64) float64 {
	score := 0.0
	if _, beyond, ok := b.FollowAndGet(u, dir); ok {
		score += weigh(beyond)
	}
	if _, mirror, ok := b.FollowAndGet(index, dir.Mirror()); ok {
		score += weigh(mirror)
	}
	return score
}

// Rank evaluates every playable index for color, in ascending index order
func (w Weights) Rank(b *model.Board, color model.CaseValue) []Candidate {
	playable := b.Playable()
	out := make([]Candidate, 0, len(playable))
	for _, idx := range playable {
		out = append(out, Candidate{Index: idx, Score: w.Evaluate(b, idx, color)})
	}
	return out
}
