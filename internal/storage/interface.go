package storage

import (
	"context"
)

// Storage defines the interface for policy checkpoint persistence.
// Slots are small non-negative integers handed out by the trainer.
type Storage interface {
	// SavePolicy stores serialized policy data in slot, replacing any
	// previous content
	SavePolicy(ctx context.Context, slot int, data []byte) error

	// GetPolicy returns the data saved in slot, or model.ErrSaveNotFound
	GetPolicy(ctx context.Context, slot int) ([]byte, error)

	// CountPolicies returns the number of saved slots
	CountPolicies(ctx context.Context) (int, error)

	// ListPolicies returns the saved slots in ascending order
	ListPolicies(ctx context.Context) ([]int, error)
}
