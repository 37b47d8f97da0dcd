package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	policies map[int][]byte
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		policies: make(map[int][]byte),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePolicy(ctx context.Context, slot int, data []byte) error {
	if slot < 0 {
		return fmt.Errorf("invalid slot %d", slot)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.policies[slot] = slices.Clone(data)
	return nil
}

func (s *Storage) GetPolicy(ctx context.Context, slot int) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.policies[slot]
	if !ok {
		return nil, fmt.Errorf("%w: slot %d", model.ErrSaveNotFound, slot)
	}
	return slices.Clone(data), nil
}

func (s *Storage) CountPolicies(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.policies), nil
}

func (s *Storage) ListPolicies(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	slots := make([]int, 0, len(s.policies))
	for slot := range s.policies {
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	return slots, nil
}
