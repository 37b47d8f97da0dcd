package random

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
)

// Random provides random number generation that can be mocked for testing
type Random interface {
	// Intn returns a random int in [0, n)
	Intn(n int) int

	// Float64 returns a random float in [0, 1)
	Float64() float64

	// Spawn returns an independent source for use on another goroutine
	Spawn() Random
}

// CryptoRandom implements Random using crypto/rand. It is safe for
// concurrent use but slow; Spawn hands out fast seeded sources.
type CryptoRandom struct{}

// New creates a new CryptoRandom
func New() *CryptoRandom {
	return &CryptoRandom{}
}

// Intn returns a cryptographically random int in [0, n)
func (r *CryptoRandom) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	result, err := rand.Int(rand.Reader, max)
	if err != nil {
		// Fall back to 0 on error (should never happen with crypto/rand)
		return 0
	}
	return int(result.Int64())
}

// Float64 returns a cryptographically random float in [0, 1)
func (r *CryptoRandom) Float64() float64 {
	return float64(r.Uint64()>>11) / (1 << 53)
}

// Uint64 returns a cryptographically random uint64
func (r *CryptoRandom) Uint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 0
	}
	return binary.LittleEndian.Uint64(buf[:])
}

// Spawn returns a seeded source initialised from crypto/rand
func (r *CryptoRandom) Spawn() Random {
	return NewSeeded(r.Uint64())
}
