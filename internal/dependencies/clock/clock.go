package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// Since returns the time elapsed since t
func (c *RealClock) Since(t time.Time) time.Duration {
	return time.Since(t)
}

// Stopwatch times a generation or a benchmark against a Clock
type Stopwatch struct {
	clock Clock
	start time.Time
	laps  []time.Duration
}

// StartStopwatch starts timing now
func StartStopwatch(c Clock) *Stopwatch {
	return &Stopwatch{clock: c, start: c.Now()}
}

// Elapsed is the time since the stopwatch started
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Since(s.start)
}

// Lap records and returns the time since the previous lap, or since the
// start for the first one
func (s *Stopwatch) Lap() time.Duration {
	total := s.Elapsed()
	var prev time.Duration
	for _, l := range s.laps {
		prev += l
	}
	lap := total - prev
	s.laps = append(s.laps, lap)
	return lap
}

// Laps returns the recorded laps in order
func (s *Stopwatch) Laps() []time.Duration {
	return append([]time.Duration(nil), s.laps...)
}
