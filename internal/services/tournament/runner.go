package tournament

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/bot"
)

// Config sets the board games are played on and the benchmark sizes
type Config struct {
	Width     int
	Height    int
	Obstacles int
	// Openings is the number of random plays before a benchmark game starts
	Openings int
	// BenchmarkGames is the number of games in one benchmark run
	BenchmarkGames int
}

// DefaultConfig returns the stock tournament settings
func DefaultConfig() Config {
	return Config{
		Width:          5,
		Height:         6,
		Obstacles:      0,
		Openings:       2,
		BenchmarkGames: 1000,
	}
}

// Runner plays games between strategies. It holds no random state, so one
// Runner can serve many goroutines as long as each brings its own source.
type Runner struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a Runner
func New(cfg Config, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "tournament")),
	}
}

// Config returns the runner's settings
func (r *Runner) Config() Config {
	return r.cfg
}

// NewBoard returns a fresh board with the configured obstacles
func (r *Runner) NewBoard(rnd random.Random) *model.Board {
	b := model.NewBoard(r.cfg.Width, r.cfg.Height)
	b.PlaceObstacles(r.cfg.Obstacles, rnd)
	return b
}

// Match alternates red and blue on board, starting with the side to move,
// until a terminal result
func (r *Runner) Match(ctx context.Context, board *model.Board, red, blue bot.Strategy) (model.PlayResult, error) {
	for {
		mover := red
		if board.Turn() == model.Blue {
			mover = blue
		}
		idx, err := mover.Choose(ctx, board)
		if err != nil {
			return model.InvalidPosition, err
		}
		result := board.Play(idx)
		if result == model.InvalidPosition {
			panic(fmt.Errorf("%w: strategy chose unplayable cell %d", model.ErrUnreachableState, idx))
		}
		if result.IsTerminal() {
			return result, nil
		}
	}
}

// SelfPlay plays red against blue by best play on a fresh board. It returns
// -1 when red wins, +1 when blue wins and 0 on a draw.
func (r *Runner) SelfPlay(ctx context.Context, red, blue *bot.Bot, rnd random.Random) (int, error) {
	result, err := r.Match(ctx, r.NewBoard(rnd), bot.NewPolicyStrategy(red), bot.NewPolicyStrategy(blue))
	if err != nil {
		return 0, err
	}
	switch result {
	case model.RedWin:
		return -1, nil
	case model.BlueWin:
		return 1, nil
	default:
		return 0, nil
	}
}

// BenchmarkAgainstRandom plays games games of b (Red) against uniform random
// play (Blue), each opened by random plays, and tallies the outcomes
func (r *Runner) BenchmarkAgainstRandom(ctx context.Context, b *bot.Bot, games int, rnd random.Random) (model.CompareResult, error) {
	var res model.CompareResult
	red := bot.NewPolicyStrategy(b)
	blue := bot.NewRandomStrategy(rnd)

	for range games {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		result, err := r.benchmarkGame(ctx, red, blue, rnd)
		if err != nil {
			return res, err
		}
		switch result {
		case model.RedWin:
			res.Win++
		case model.BlueWin:
			res.Loose++
		default:
			res.None++
		}
	}
	return res, nil
}

func (r *Runner) benchmarkGame(ctx context.Context, red, blue bot.Strategy, rnd random.Random) (model.PlayResult, error) {
	board := r.NewBoard(rnd)
	for range r.cfg.Openings {
		if len(board.Playable()) == 0 {
			break
		}
		if result := board.RandomPlay(rnd); result.IsTerminal() {
			return result, nil
		}
	}
	return r.Match(ctx, board, red, blue)
}

// AverageFitness is the mean Score of rounds benchmark runs
func (r *Runner) AverageFitness(ctx context.Context, b *bot.Bot, rounds int, rnd random.Random) (float64, error) {
	if rounds <= 0 {
		return 0, nil
	}
	total := 0
	for range rounds {
		res, err := r.BenchmarkAgainstRandom(ctx, b, r.cfg.BenchmarkGames, rnd)
		if err != nil {
			return 0, err
		}
		total += res.Score()
	}
	fitness := float64(total) / float64(rounds)
	r.logger.Debug("fitness measured",
		slog.Int("rounds", rounds),
		slog.Int("games", r.cfg.BenchmarkGames),
		slog.Float64("fitness", fitness),
	)
	return fitness, nil
}
