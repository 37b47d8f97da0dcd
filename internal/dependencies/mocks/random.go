package mocks

import (
	"sync"

	"github.com/mcoot/spreadgame/internal/dependencies/random"
)

// MockRandom is a mock implementation of Random for testing.
// Queued results are consumed in order; when a queue runs dry the mock
// returns 0. Results are clamped into [0, n) so a stale queue can never
// produce an out-of-range index.
type MockRandom struct {
	mu sync.Mutex

	// IntnResults is a queue of results to return from Intn
	IntnResults []int
	intnIndex   int

	// FloatResults is a queue of results to return from Float64
	FloatResults []float64
	floatIndex   int
}

// Ensure MockRandom implements Random
var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn returns the next queued result, or 0 if none remaining
func (r *MockRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.intnIndex >= len(r.IntnResults) || n <= 0 {
		return 0
	}
	result := r.IntnResults[r.intnIndex]
	r.intnIndex++
	if result >= n {
		result = n - 1
	}
	if result < 0 {
		result = 0
	}
	return result
}

// Float64 returns the next queued result, or 0 if none remaining
func (r *MockRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.floatIndex >= len(r.FloatResults) {
		return 0
	}
	result := r.FloatResults[r.floatIndex]
	r.floatIndex++
	return result
}

// Spawn returns the mock itself so every goroutine shares one queue
func (r *MockRandom) Spawn() random.Random {
	return r
}

// QueueIntn adds values to the Intn result queue
func (r *MockRandom) QueueIntn(values ...int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = append(r.IntnResults, values...)
}

// QueueFloat adds values to the Float64 result queue
func (r *MockRandom) QueueFloat(values ...float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.FloatResults = append(r.FloatResults, values...)
}

// Remaining returns how many queued Intn results are unused
func (r *MockRandom) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.IntnResults) - r.intnIndex
}

// Reset clears all queued results
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.IntnResults = nil
	r.intnIndex = 0
	r.FloatResults = nil
	r.floatIndex = 0
}
