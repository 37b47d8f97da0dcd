package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/storage"
)

const extension = ".json"

// Storage keeps one <slot>.json file per policy in a directory
type Storage struct {
	dir string
}

// New creates a file storage rooted at dir, creating it if needed
func New(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create save dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Dir returns the save directory
func (s *Storage) Dir() string {
	return s.dir
}

func (s *Storage) path(slot int) string {
	return filepath.Join(s.dir, strconv.Itoa(slot)+extension)
}

func (s *Storage) SavePolicy(ctx context.Context, slot int, data []byte) error {
	if slot < 0 {
		return fmt.Errorf("invalid slot %d", slot)
	}
	// write then rename so a reader never sees a partial save
	tmp, err := os.CreateTemp(s.dir, ".save-*")
	if err != nil {
		return fmt.Errorf("create temp save: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close save: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path(slot)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *Storage) GetPolicy(ctx context.Context, slot int) ([]byte, error) {
	data, err := os.ReadFile(s.path(slot))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: slot %d", model.ErrSaveNotFound, slot)
		}
		return nil, err
	}
	return data, nil
}

func (s *Storage) CountPolicies(ctx context.Context) (int, error) {
	slots, err := s.ListPolicies(ctx)
	if err != nil {
		return 0, err
	}
	return len(slots), nil
}

func (s *Storage) ListPolicies(ctx context.Context) ([]int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, err
	}
	var slots []int
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, extension) {
			continue
		}
		slot, err := strconv.Atoi(strings.TrimSuffix(name, extension))
		if err != nil || slot < 0 {
			continue
		}
		slots = append(slots, slot)
	}
	slices.Sort(slots)
	return slots, nil
}
