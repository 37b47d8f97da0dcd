package redis

import (
	"time"

	"github.com/klauspost/compress/zstd"
)

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// PolicyTTL expires checkpoints; zero keeps them forever
	PolicyTTL time.Duration

	// Level is the zstd level applied to stored policies
	Level zstd.EncoderLevel
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		Level:        zstd.SpeedDefault,
	}
}
