package search

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/scoring"
)

// Config controls how far and how wide the lookahead explores
type Config struct {
	// Depth is the number of plies explored below the root
	Depth int
	// Breadth is how many candidates are kept per ply
	Breadth int
	// Parallel explores root candidates on separate goroutines
	Parallel bool
}

// DefaultConfig returns the stock search settings
func DefaultConfig() Config {
	return Config{
		Depth:    5,
		Breadth:  3,
		Parallel: true,
	}
}

// Searcher runs the depth-bounded best-first lookahead
type Searcher struct {
	cfg     Config
	weights scoring.Weights
	logger  *slog.Logger
}

// New creates a Searcher using the default evaluator weights
func New(cfg Config, logger *slog.Logger) *Searcher {
	if cfg.Breadth <= 0 {
		cfg.Breadth = DefaultConfig().Breadth
	}
	return &Searcher{
		cfg:     cfg,
		weights: scoring.DefaultWeights(),
		logger:  logger.With(slog.String("component", "search")),
	}
}

// Config returns the searcher's settings
func (s *Searcher) Config() Config {
	return s.cfg
}

// WhereToPlay picks a move for the side to move on b
func (s *Searcher) WhereToPlay(ctx context.Context, b *model.Board) (int, error) {
	if b.IsOver() {
		return -1, model.ErrGameComplete
	}
	opponent := b.Turn().Invert()

	index, issue, ok := s.Simulate(ctx, b, opponent, s.cfg.Depth)
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	if !ok {
		return -1, fmt.Errorf("%w: search found no move at depth %d", model.ErrUnreachableState, s.cfg.Depth)
	}

	s.logger.Debug("search chose move",
		slog.Int("index", index),
		slog.Int64("win", issue.Win),
		slog.Int64("lose", issue.Lose),
		slog.Int64("none", issue.None),
		slog.Int64("nowin", issue.NoWin),
	)
	return index, nil
}

// Simulate explores the best candidates for the side to move, opponent
// being the other colour. It returns the chosen index and its tallies, or
// false at depth 0 or when nothing is playable.
func (s *Searcher) Simulate(ctx context.Context, b *model.Board, opponent model.CaseValue, depth int) (int, model.PathIssue, bool) {
	if depth <= 0 || ctx.Err() != nil {
		return -1, model.PathIssue{}, false
	}

	candidates := s.bestCandidates(b, opponent)
	issues := make([]model.PathIssue, len(candidates))

	if s.cfg.Parallel && depth == s.cfg.Depth && len(candidates) > 1 {
		g, gctx := errgroup.WithContext(ctx)
		for i, cand := range candidates {
			g.Go(func() error {
				issues[i] = s.expand(gctx, b, cand, opponent, depth)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i, cand := range candidates {
			issues[i] = s.expand(ctx, b, cand, opponent, depth)
		}
	}

	best := -1
	var bestIssue model.PathIssue
	for i, issue := range issues {
		if best < 0 || issue.Comparable() > bestIssue.Comparable() {
			best = candidates[i].Index
			bestIssue = issue
		}
	}
	return best, bestIssue, best >= 0
}

// bestCandidates keeps the Breadth playable cells least desirable to the
// opponent. The sort is stable so ties keep index order.
func (s *Searcher) bestCandidates(b *model.Board, opponent model.CaseValue) []scoring.Candidate {
	ranked := s.weights.Rank(b, opponent)
	slices.SortStableFunc(ranked, func(a, c scoring.Candidate) int {
		return cmp.Compare(a.Score, c.Score)
	})
	if len(ranked) > s.cfg.Breadth {
		ranked = ranked[:s.cfg.Breadth]
	}
	return ranked
}

// expand tallies the subtree under one candidate
func (s *Searcher) expand(ctx context.Context, b *model.Board, cand scoring.Candidate, opponent model.CaseValue, depth int) model.PathIssue {
	var issue model.PathIssue
	penalty := int64(depth * depth)

	if cand.Score >= s.weights.OwnAdjacentToOwnColor {
		issue.Lose += penalty
		return issue
	}

	me := opponent.Invert()
	next := b.Clone()
	switch next.Play(cand.Index) {
	case model.WinFor(me):
		issue.Win += penalty
		return issue
	case model.WinFor(opponent):
		issue.Lose += penalty
		return issue
	case model.NobodyWin:
		issue.NoWin++
		return issue
	case model.InvalidPosition:
		panic(fmt.Errorf("%w: candidate %d is not playable", model.ErrUnreachableState, cand.Index))
	}

	for _, reply := range next.Playable() {
		after := next.Clone()
		switch after.Play(reply) {
		case model.WinFor(opponent):
			issue.Lose++
			continue
		case model.WinFor(me):
			issue.Win++
			continue
		case model.NobodyWin:
			issue.NoWin++
			continue
		}
		issue.None++
		if _, child, ok := s.Simulate(ctx, after, opponent, depth-1); ok {
			issue.Merge(child)
		}
	}
	return issue
}
