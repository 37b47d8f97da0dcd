package trainer_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/spreadgame/internal/dependencies/mocks"
	"github.com/mcoot/spreadgame/internal/dependencies/random"
	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/policy"
	"github.com/mcoot/spreadgame/internal/services/bot"
	"github.com/mcoot/spreadgame/internal/services/tournament"
	"github.com/mcoot/spreadgame/internal/services/trainer"
	"github.com/mcoot/spreadgame/internal/storage/memory"
	"github.com/mcoot/spreadgame/internal/telemetry"
	"github.com/mcoot/spreadgame/internal/testutil"
)

// fakeArena lets every mutant through with a fitness above anything seen
// before, unless told otherwise
type fakeArena struct {
	mu        sync.Mutex
	selfPlay  int
	proxy     int
	fitness   map[*bot.Bot]float64
	next      float64
	fullRuns  int
	selfPlays int
}

func newFakeArena(champion *bot.Bot, championFitness float64) *fakeArena {
	return &fakeArena{
		selfPlay: 1,
		proxy:    1000,
		fitness:  map[*bot.Bot]float64{champion: championFitness},
		next:     championFitness,
	}
}

func (a *fakeArena) SelfPlay(ctx context.Context, red, blue *bot.Bot, rnd random.Random) (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selfPlays++
	return a.selfPlay, ctx.Err()
}

func (a *fakeArena) BenchmarkAgainstRandom(ctx context.Context, b *bot.Bot, games int, rnd random.Random) (model.CompareResult, error) {
	return model.CompareResult{Win: a.proxy}, ctx.Err()
}

func (a *fakeArena) AverageFitness(ctx context.Context, b *bot.Bot, rounds int, rnd random.Random) (float64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if f, ok := a.fitness[b]; ok {
		return f, ctx.Err()
	}
	a.fullRuns++
	a.next++
	a.fitness[b] = a.next
	return a.next, ctx.Err()
}

type failingRecorder struct{}

func (failingRecorder) Record(telemetry.Entry) error {
	return errors.New("disk full")
}

type failingStorage struct {
	*memory.Storage
}

func (failingStorage) SavePolicy(context.Context, int, []byte) error {
	return errors.New("disk full")
}

type TrainerSuite struct {
	suite.Suite
	store     *memory.Storage
	recorder  *telemetry.Memory
	mockClock *mocks.MockClock
	champion  *bot.Bot
	arena     *fakeArena
	cfg       trainer.Config
	ctx       context.Context
}

func TestTrainerSuite(t *testing.T) {
	suite.Run(t, new(TrainerSuite))
}

func (s *TrainerSuite) SetupTest() {
	s.store = memory.New()
	s.recorder = &telemetry.Memory{}
	s.mockClock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.champion = bot.NewRandom(random.NewSeeded(1), 3, 3)
	s.arena = newFakeArena(s.champion, 10)
	s.cfg = trainer.DefaultConfig()
	s.cfg.MaxIterations = 50
	s.ctx = context.Background()
}

func (s *TrainerSuite) newTrainer() *trainer.Trainer {
	return trainer.New(s.cfg, s.arena, 10, s.store, s.recorder, s.mockClock, random.NewSeeded(7), testutil.NopLogger())
}

func (s *TrainerSuite) newState(t *trainer.Trainer) *trainer.State {
	state, err := t.NewState(s.ctx, s.champion)
	s.Require().NoError(err)
	return state
}

func (s *TrainerSuite) TestNewStateNumbersAfterExistingSaves() {
	s.Require().NoError(s.store.SavePolicy(s.ctx, 0, []byte("{}")))
	s.Require().NoError(s.store.SavePolicy(s.ctx, 1, []byte("{}")))

	state := s.newState(s.newTrainer())

	s.Equal(2, state.NextSlot)
	s.Equal(0, state.Generation)
	s.Same(s.champion, state.Champion)
}

func (s *TrainerSuite) TestNewStateSkipsPastGapsInSaves() {
	s.Require().NoError(s.store.SavePolicy(s.ctx, 0, []byte("{}")))
	s.Require().NoError(s.store.SavePolicy(s.ctx, 3, []byte(`{"keep":true}`)))
	tr := s.newTrainer()
	state := s.newState(tr)

	s.Equal(4, state.NextSlot)

	gen, err := tr.Evolve(s.ctx, state, 0.2)
	s.Require().NoError(err)
	s.True(gen.Accepted)
	s.Equal(4, gen.Slot)

	kept, err := s.store.GetPolicy(s.ctx, 3)
	s.Require().NoError(err)
	s.JSONEq(`{"keep":true}`, string(kept))
}

func (s *TrainerSuite) TestNewStateStartsAtZeroOnEmptyStorage() {
	state := s.newState(s.newTrainer())
	s.Equal(0, state.NextSlot)
}

func (s *TrainerSuite) TestEvolveAcceptsAndPersists() {
	s.Require().NoError(s.store.SavePolicy(s.ctx, 0, []byte("{}")))
	tr := s.newTrainer()
	state := s.newState(tr)

	gen, err := tr.Evolve(s.ctx, state, 0.2)
	s.Require().NoError(err)

	s.True(gen.Accepted)
	s.Equal(1, gen.Slot)
	s.InDelta(10.0, gen.ChampionFitness, 1e-9)
	s.InDelta(11.0, gen.Fitness, 1e-9)
	s.Equal(1, state.Generation)
	s.Equal(2, state.NextSlot)
	s.NotSame(s.champion, state.Champion)
	s.InDelta(11.0, state.ChampionFitness, 1e-9)

	data, err := s.store.GetPolicy(s.ctx, 1)
	s.Require().NoError(err)
	loaded, err := policy.Load(data)
	s.Require().NoError(err)
	s.Equal(state.Champion.Policy(), loaded)

	s.Equal([]telemetry.Entry{{Ratio: 0.2, Fitness: 11}}, s.recorder.Entries())
}

func (s *TrainerSuite) TestEvolveParallelAcceptsExactlyOnce() {
	tr := s.newTrainer()
	state := s.newState(tr)

	gen, err := tr.EvolveParallel(s.ctx, state, 0.2, 8)
	s.Require().NoError(err)

	s.True(gen.Accepted)
	count, err := s.store.CountPolicies(s.ctx)
	s.Require().NoError(err)
	s.Equal(1, count)
	s.Len(s.recorder.Entries(), 1)
	s.Equal(1, state.NextSlot)
	s.Greater(gen.Fitness, gen.ChampionFitness)
}

func (s *TrainerSuite) TestChampionWinsAreRetriedUntilExhausted() {
	s.arena.selfPlay = -1
	tr := s.newTrainer()
	state := s.newState(tr)

	gen, err := tr.EvolveParallel(s.ctx, state, 0.2, 4)
	s.Require().NoError(err)

	s.False(gen.Accepted)
	s.Equal(-1, gen.Slot)
	s.Equal(4*s.cfg.MaxIterations, gen.Iterations)
	s.Equal(4*s.cfg.MaxIterations, s.arena.selfPlays)
	s.Same(s.champion, state.Champion)
	s.Equal(0, state.Generation)
	s.Empty(s.recorder.Entries())
	count, err := s.store.CountPolicies(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

func (s *TrainerSuite) TestExhaustionIsLoggedAsWarning() {
	s.arena.selfPlay = -1
	logger, logs := testutil.CaptureLogger()
	tr := trainer.New(s.cfg, s.arena, 10, s.store, s.recorder, s.mockClock, random.NewSeeded(7), logger)

	_, err := tr.Evolve(s.ctx, s.newState(tr), 0.2)
	s.Require().NoError(err)

	s.Contains(logs.String(), `"msg":"generation abandoned"`)
	s.Contains(logs.String(), model.ErrExhaustedSearch.Error())
}

func (s *TrainerSuite) TestElapsedUsesClock() {
	s.mockClock.Step = time.Second
	tr := s.newTrainer()

	gen, err := tr.Evolve(s.ctx, s.newState(tr), 0.2)
	s.Require().NoError(err)

	// Start, the fitness lap and the final reading are one step apart
	s.Equal(2*time.Second, gen.Elapsed)
	s.Equal([]telemetry.Entry{{Ratio: 0.2, Elapsed: 2 * time.Second, Fitness: 11}}, s.recorder.Entries())
}

func (s *TrainerSuite) TestTelemetryFailureIsLogged() {
	logger, logs := testutil.CaptureLogger()
	tr := trainer.New(s.cfg, s.arena, 10, s.store, failingRecorder{}, s.mockClock, random.NewSeeded(7), logger)

	gen, err := tr.Evolve(s.ctx, s.newState(tr), 0.2)
	s.Require().NoError(err)

	s.True(gen.Accepted)
	s.Contains(logs.String(), "disk full")
}

func (s *TrainerSuite) TestDrawsAreRetried() {
	s.arena.selfPlay = 0
	tr := s.newTrainer()

	gen, err := tr.Evolve(s.ctx, s.newState(tr), 0.2)
	s.Require().NoError(err)

	s.False(gen.Accepted)
	s.Zero(s.arena.fullRuns)
}

func (s *TrainerSuite) TestProxyGatesFullBenchmark() {
	// a proxy score of 0 does not clear 10 - 5
	s.arena.proxy = 0
	s.cfg.ProxyMargin = 5
	tr := s.newTrainer()

	gen, err := tr.Evolve(s.ctx, s.newState(tr), 0.2)
	s.Require().NoError(err)

	s.False(gen.Accepted)
	s.Zero(s.arena.fullRuns)
}

func (s *TrainerSuite) TestTelemetryFailureIsNotFatal() {
	tr := trainer.New(s.cfg, s.arena, 10, s.store, failingRecorder{}, s.mockClock, random.NewSeeded(7), testutil.NopLogger())

	gen, err := tr.Evolve(s.ctx, s.newState(tr), 0.2)

	s.Require().NoError(err)
	s.True(gen.Accepted)
}

func (s *TrainerSuite) TestStorageFailureIsReturned() {
	store := failingStorage{Storage: s.store}
	tr := trainer.New(s.cfg, s.arena, 10, store, s.recorder, s.mockClock, random.NewSeeded(7), testutil.NopLogger())
	state, err := tr.NewState(s.ctx, s.champion)
	s.Require().NoError(err)

	_, err = tr.Evolve(s.ctx, state, 0.2)

	s.Error(err)
	s.Same(s.champion, state.Champion)
	s.Empty(s.recorder.Entries())
}

func (s *TrainerSuite) TestCancelledContext() {
	ctx, cancel := context.WithCancel(s.ctx)
	cancel()
	tr := s.newTrainer()

	_, err := tr.EvolveParallel(ctx, s.newState(tr), 0.2, 4)
	s.ErrorIs(err, context.Canceled)
}

func (s *TrainerSuite) TestTrainDecaysRatio() {
	tr := s.newTrainer()
	state := s.newState(tr)

	gens, err := tr.Train(s.ctx, state, 3, 0.4, 2)
	s.Require().NoError(err)

	s.Require().Len(gens, 3)
	s.InDelta(0.4, gens[0].Ratio, 1e-9)
	s.InDelta(0.3, gens[1].Ratio, 1e-9)
	s.InDelta(0.225, gens[2].Ratio, 1e-9)
	s.Equal(3, state.Generation)
	s.Equal(3, state.NextSlot)
	for i := 1; i < len(gens); i++ {
		s.Greater(gens[i].Fitness, gens[i-1].Fitness)
	}
}

func (s *TrainerSuite) TestTrainWithRealArena() {
	tcfg := tournament.DefaultConfig()
	tcfg.Width, tcfg.Height = 3, 3
	tcfg.BenchmarkGames = 6
	runner := tournament.New(tcfg, testutil.NopLogger())

	s.cfg.FitnessRounds = 2
	s.cfg.MaxIterations = 20

	for _, workers := range []int{1, 4} {
		store := memory.New()
		tr := trainer.New(s.cfg, runner, tcfg.BenchmarkGames, store, s.recorder, s.mockClock, random.NewSeeded(3), testutil.NopLogger())
		state, err := tr.NewState(s.ctx, s.champion)
		s.Require().NoError(err)

		gens, err := tr.Train(s.ctx, state, 2, 0.5, workers)
		s.Require().NoError(err)

		accepted := 0
		for _, gen := range gens {
			if gen.Accepted {
				accepted++
				s.Greater(gen.Fitness, gen.ChampionFitness)
			} else {
				s.Equal(gen.ChampionFitness, gen.Fitness)
			}
		}
		count, err := store.CountPolicies(s.ctx)
		s.Require().NoError(err)
		s.Equal(accepted, count)
		s.Equal(accepted, state.Generation)
	}
}
