package random

import (
	"golang.org/x/exp/rand"
)

// Seeded is a deterministic PCG-backed Random.
// It is not safe for concurrent use; give each goroutine its own via Spawn.
type Seeded struct {
	rng *rand.Rand
}

// NewSeeded creates a Seeded source from seed
func NewSeeded(seed uint64) *Seeded {
	return &Seeded{rng: rand.New(rand.NewSource(seed))}
}

// Intn returns a random int in [0, n)
func (s *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return s.rng.Intn(n)
}

// Float64 returns a random float in [0, 1)
func (s *Seeded) Float64() float64 {
	return s.rng.Float64()
}

// Spawn derives a child source. The sequence of children is itself
// determined by the parent's seed.
func (s *Seeded) Spawn() Random {
	return NewSeeded(s.rng.Uint64())
}
