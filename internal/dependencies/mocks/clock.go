package mocks

import (
	"sync"
	"time"

	"github.com/mcoot/spreadgame/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing. When Step is
// set, every Now call advances the clock by Step after reading it.
type MockClock struct {
	mu          sync.Mutex
	CurrentTime time.Time
	Step        time.Duration
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.CurrentTime
	c.CurrentTime = c.CurrentTime.Add(c.Step)
	return now
}

// Since returns the mocked time elapsed since t. It reads the clock once,
// so a stepping clock advances here too.
func (c *MockClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.CurrentTime = t
}
