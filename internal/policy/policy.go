package policy

import (
	"github.com/mcoot/spreadgame/internal/dependencies/random"
)

// Policy scores a board feature vector. Lower scores mark the boards a bot
// would rather leave behind for its opponent.
type Policy interface {
	// Score evaluates a feature vector of length Inputs
	Score(features []float64) float64

	// Mutate returns a perturbed copy; the receiver is left untouched
	Mutate(ratio float64, rnd random.Random) Policy

	// Clone returns an independent deep copy
	Clone() Policy

	// Inputs is the expected feature vector length
	Inputs() int
}
