package redis

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/spreadgame/internal/model"
	"github.com/mcoot/spreadgame/internal/storage"
)

// Storage is a Redis-backed implementation of the storage interface.
// Policies are stored zstd-compressed; a set indexes the saved slots.
type Storage struct {
	client  *redis.Client
	cfg     Config
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}

	s, err := NewWithClient(client, cfg)
	if err != nil {
		_ = client.Close()
		return nil, err
	}
	return s, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) (*Storage, error) {
	level := cfg.Level
	if level == 0 {
		level = zstd.SpeedDefault
	}
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &Storage{
		client:  client,
		cfg:     cfg,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	s.decoder.Close()
	_ = s.encoder.Close()
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

func (s *Storage) SavePolicy(ctx context.Context, slot int, data []byte) error {
	if slot < 0 {
		return fmt.Errorf("invalid slot %d", slot)
	}
	compressed := s.encoder.EncodeAll(data, nil)

	// Use pipeline for atomic save + index update
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, policyKey(slot), compressed, s.cfg.PolicyTTL)
	pipe.SAdd(ctx, policyIndexKey(), slot)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Storage) GetPolicy(ctx context.Context, slot int) ([]byte, error) {
	compressed, err := s.client.Get(ctx, policyKey(slot)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: slot %d", model.ErrSaveNotFound, slot)
		}
		return nil, err
	}

	data, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: slot %d: %v", model.ErrMalformedSave, slot, err)
	}
	return data, nil
}

// CountPolicies counts the live slots. Index entries whose policy key has
// expired are pruned first.
func (s *Storage) CountPolicies(ctx context.Context) (int, error) {
	slots, err := s.ListPolicies(ctx)
	if err != nil {
		return 0, err
	}
	return len(slots), nil
}

// ListPolicies returns the live slots in ascending order, dropping index
// entries whose policy key no longer exists
func (s *Storage) ListPolicies(ctx context.Context) ([]int, error) {
	members, err := s.client.SMembers(ctx, policyIndexKey()).Result()
	if err != nil {
		return nil, err
	}
	slots := make([]int, 0, len(members))
	for _, m := range members {
		slot, err := strconv.Atoi(m)
		if err != nil {
			continue
		}
		slots = append(slots, slot)
	}
	if len(slots) == 0 {
		return slots, nil
	}

	pipe := s.client.Pipeline()
	exists := make([]*redis.IntCmd, len(slots))
	for i, slot := range slots {
		exists[i] = pipe.Exists(ctx, policyKey(slot))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	live := slots[:0]
	var stale []any
	for i, slot := range slots {
		if exists[i].Val() > 0 {
			live = append(live, slot)
		} else {
			stale = append(stale, slot)
		}
	}
	if len(stale) > 0 {
		if err := s.client.SRem(ctx, policyIndexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("prune expired slots: %w", err)
		}
	}
	slices.Sort(live)
	return live, nil
}
