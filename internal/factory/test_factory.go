package factory

import (
	"io"
	"log/slog"
	"time"

	"github.com/mcoot/spreadgame/internal/dependencies/mocks"
	"github.com/mcoot/spreadgame/internal/services/search"
	"github.com/mcoot/spreadgame/internal/services/tournament"
	"github.com/mcoot/spreadgame/internal/services/trainer"
	"github.com/mcoot/spreadgame/internal/storage/memory"
	"github.com/mcoot/spreadgame/internal/telemetry"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock     *mocks.MockClock
	MockRandom    *mocks.MockRandom
	MemoryStore   *memory.Storage
	MemoryRecords *telemetry.Memory
}

// TestConfig is a small, fast configuration for tests
func TestConfig() Config {
	cfg := DefaultConfig()
	cfg.Tournament = tournament.Config{Width: 4, Height: 4, Openings: 2, BenchmarkGames: 4}
	cfg.Search = search.Config{Depth: 2, Breadth: 3}
	cfg.Trainer = trainer.Config{FitnessRounds: 2, ProxyMargin: 40, MaxIterations: 10, Workers: 2, Decay: 0.75}
	return cfg
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	records := &telemetry.Memory{}
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, records, mockClock, mockRandom, TestConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	return &TestApp{
		App:           app,
		MockClock:     mockClock,
		MockRandom:    mockRandom,
		MemoryStore:   store,
		MemoryRecords: records,
	}
}
