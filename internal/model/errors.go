package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	// Board errors
	ErrInvalidMove      = errors.New("cell is not playable")
	ErrGameComplete     = errors.New("game is already complete")
	ErrUnreachableState = errors.New("unreachable board state")
	ErrMalformedBoard   = errors.New("malformed board layout")

	// Persistence errors
	ErrSaveNotFound  = errors.New("save not found")
	ErrMalformedSave = errors.New("malformed save")

	// Training errors
	ErrExhaustedSearch = errors.New("mutation search exhausted without improvement")
)

// unreachable builds the panic value for a broken board invariant
func unreachable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrUnreachableState, fmt.Sprintf(format, args...))
}
