package trainer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mcoot/spreadgame/internal/dependencies/clock"
	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/services/bot"
	"github.com/mcoot/spreadgame/internal/storage"
	"github.com/mcoot/spreadgame/internal/telemetry"
)

// Arena plays the games the trainer judges mutants by. It must be safe for
// concurrent use when each caller brings its own random source.
type Arena interface {
	SelfPlay(ctx context.Context, red, blue *bot.Bot, rnd random.Random) (int, error)
	BenchmarkAgainstRandom(ctx context.Context, b *bot.Bot, games int, rnd random.Random) (model.CompareResult, error)
	AverageFitness(ctx context.Context, b *bot.Bot, rounds int, rnd random.Random) (float64, error)
}

// State is the training state carried from one generation to the next
type State struct {
	Generation      int
	Champion        *bot.Bot
	ChampionFitness float64
	// NextSlot is the storage slot the next accepted champion is saved in
	NextSlot int
}

// Generation reports the outcome of one evolve call
type Generation struct {
	Accepted        bool
	Ratio           float64
	ChampionFitness float64
	Fitness         float64 // the accepted mutant's, else the champion's
	Elapsed         time.Duration
	Iterations      int
	Slot            int
}

// Trainer evolves a champion bot
type Trainer struct {
	cfg            Config
	arena          Arena
	benchmarkGames int
	storage        storage.Storage
	recorder       telemetry.Recorder
	clock          clock.Clock
	random         random.Random
	logger         *slog.Logger
}

// New creates a Trainer. benchmarkGames sizes the single-run proxy check.
func New(
	cfg Config,
	arena Arena,
	benchmarkGames int,
	store storage.Storage,
	recorder telemetry.Recorder,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Trainer {
	return &Trainer{
		cfg:            cfg,
		arena:          arena,
		benchmarkGames: benchmarkGames,
		storage:        store,
		recorder:       recorder,
		clock:          clk,
		random:         rnd,
		logger:         logger.With(slog.String("component", "trainer")),
	}
}

// Config returns the trainer's settings
func (t *Trainer) Config() Config {
	return t.cfg
}

// NewState starts training from champion, numbering saves after the
// highest slot already in storage
func (t *Trainer) NewState(ctx context.Context, champion *bot.Bot) (*State, error) {
	slots, err := t.storage.ListPolicies(ctx)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	next := 0
	if len(slots) > 0 {
		next = slices.Max(slots) + 1
	}
	return &State{Champion: champion, NextSlot: next}, nil
}

// Evolve runs one generation with a single worker
func (t *Trainer) Evolve(ctx context.Context, state *State, ratio float64) (Generation, error) {
	return t.EvolveParallel(ctx, state, ratio, 1)
}

// accepted is the result slot the racing workers compete for
type accepted struct {
	mutant  *bot.Bot
	fitness float64
}

// EvolveParallel races workers for the first mutant that beats the champion
// head-to-head and against random play. The winner replaces the champion in
// state, is saved and is logged to telemetry. When every worker exhausts its
// iterations the champion is kept.
func (t *Trainer) EvolveParallel(ctx context.Context, state *State, ratio float64, workers int) (Generation, error) {
	workers = max(workers, 1)
	sw := clock.StartStopwatch(t.clock)
	gen := Generation{Ratio: ratio, Slot: -1}

	championFitness, err := t.arena.AverageFitness(ctx, state.Champion, t.cfg.FitnessRounds, t.random.Spawn())
	if err != nil {
		return gen, err
	}
	state.ChampionFitness = championFitness
	gen.ChampionFitness = championFitness
	gen.Fitness = championFitness

	t.logger.Info("generation started",
		slog.Int("generation", state.Generation),
		slog.Float64("ratio", ratio),
		slog.Float64("champion_fitness", championFitness),
		slog.Duration("fitness_elapsed", sw.Lap()),
		slog.Int("workers", workers),
	)

	raceCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var slot atomic.Pointer[accepted]
	var iterations atomic.Int64
	g, gctx := errgroup.WithContext(raceCtx)
	for w := range workers {
		rnd := t.random.Spawn()
		g.Go(func() error {
			n, err := t.work(gctx, w, state.Champion, championFitness, ratio, rnd, &slot, cancel)
			iterations.Add(int64(n))
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return gen, err
	}
	if err := ctx.Err(); err != nil {
		return gen, err
	}

	gen.Elapsed = sw.Elapsed()
	gen.Iterations = int(iterations.Load())

	winner := slot.Load()
	if winner == nil {
		t.logger.Warn("generation abandoned",
			slog.Int("generation", state.Generation),
			slog.Int("iterations", gen.Iterations),
			slog.String("error", model.ErrExhaustedSearch.Error()),
		)
		return gen, nil
	}

	if err := t.commit(ctx, state, winner.mutant); err != nil {
		return gen, err
	}
	gen.Accepted = true
	gen.Fitness = winner.fitness
	gen.Slot = state.NextSlot - 1
	state.Generation++
	state.ChampionFitness = winner.fitness

	if err := t.recorder.Record(telemetry.Entry{Ratio: ratio, Elapsed: gen.Elapsed, Fitness: winner.fitness}); err != nil {
		t.logger.Warn("failed to record telemetry", slog.String("error", err.Error()))
	}

	t.logger.Info("generation improved",
		slog.Int("generation", state.Generation),
		slog.Float64("fitness", winner.fitness),
		slog.Duration("elapsed", gen.Elapsed),
		slog.Int("slot", gen.Slot),
	)
	return gen, nil
}

// commit saves mutant in the next slot and makes it champion
func (t *Trainer) commit(ctx context.Context, state *State, mutant *bot.Bot) error {
	data, err := json.Marshal(mutant.Policy())
	if err != nil {
		return fmt.Errorf("serialize policy: %w", err)
	}
	if err := t.storage.SavePolicy(ctx, state.NextSlot, data); err != nil {
		return fmt.Errorf("save policy: %w", err)
	}
	state.Champion = mutant
	state.NextSlot++
	return nil
}

// work is one racing worker. It returns the number of iterations it ran.
// Cancellation by a faster worker is not an error.
func (t *Trainer) work(
	ctx context.Context,
	id int,
	champion *bot.Bot,
	championFitness float64,
	ratio float64,
	rnd random.Random,
	slot *atomic.Pointer[accepted],
	stop context.CancelFunc,
) (int, error) {
	logger := t.logger.With(slog.Int("worker", id))

	for i := 0; ; i++ {
		if ctx.Err() != nil || slot.Load() != nil {
			return i, nil
		}
		if i >= t.cfg.MaxIterations {
			logger.Debug("worker exhausted", slog.Int("iterations", i))
			return i, nil
		}

		mutant := champion.Mutate(ratio, rnd)

		// champion plays Red, mutant Blue; only a mutant win goes on
		outcome, err := t.arena.SelfPlay(ctx, champion, mutant, rnd)
		if err != nil {
			return i, quiet(err)
		}
		if outcome != 1 {
			continue
		}

		proxy, err := t.arena.BenchmarkAgainstRandom(ctx, mutant, t.benchmarkGames, rnd)
		if err != nil {
			return i, quiet(err)
		}
		if float64(proxy.Score()) <= championFitness-t.cfg.ProxyMargin {
			continue
		}

		fitness, err := t.arena.AverageFitness(ctx, mutant, t.cfg.FitnessRounds, rnd)
		if err != nil {
			return i, quiet(err)
		}
		if fitness <= championFitness {
			logger.Debug("mutant rejected", slog.Float64("fitness", fitness))
			continue
		}

		if slot.CompareAndSwap(nil, &accepted{mutant: mutant, fitness: fitness}) {
			logger.Debug("mutant accepted", slog.Float64("fitness", fitness))
			stop()
		}
		return i + 1, nil
	}
}

// quiet drops cancellation errors, which only mean another worker won
func quiet(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Train runs rounds generations, multiplying the ratio by the configured
// decay after each one
func (t *Trainer) Train(ctx context.Context, state *State, rounds int, ratio float64, workers int) ([]Generation, error) {
	var gens []Generation
	for range rounds {
		if err := ctx.Err(); err != nil {
			return gens, err
		}
		gen, err := t.EvolveParallel(ctx, state, ratio, workers)
		if err != nil {
			return gens, err
		}
		gens = append(gens, gen)
		ratio *= t.cfg.Decay
	}
	return gens, nil
}
