package trainer

import "runtime"

// Config holds the acceptance thresholds and race settings
type Config struct {
	// FitnessRounds is the number of benchmark runs averaged per fitness
	FitnessRounds int
	// ProxyMargin is how far below the champion a single run may score and
	// still earn a full benchmark
	ProxyMargin float64
	// MaxIterations bounds each worker's mutation loop per generation
	MaxIterations int
	// Workers is the race size used by Train
	Workers int
	// Decay multiplies the mutation ratio after every Train round
	Decay float64
}

// DefaultConfig returns the stock training settings
func DefaultConfig() Config {
	return Config{
		FitnessRounds: 100,
		ProxyMargin:   40,
		MaxIterations: 1_000_000,
		Workers:       min(runtime.NumCPU(), 8),
		Decay:         0.75,
	}
}
