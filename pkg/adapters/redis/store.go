package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dredimura/surface/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key and channel the adapter touches.
const DefaultPrefix = "surface:"

// Store implements ports.ActivationStore using Redis.
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	owned  bool
}

type Option func(*Store)

// WithTTL sets the expiration of activation records. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New creates a Redis store that owns its client.
func New(address, password string, db int, opts ...Option) *Store {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})

	store := NewFromClient(rdb, opts...)
	store.owned = true
	return store
}

// NewFromClient creates a store on an existing client. Close leaves the client open.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	store := &Store{
		client: client,
		prefix: DefaultPrefix,
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

func (s *Store) key(machineID string) string {
	return s.prefix + "activation:" + machineID
}

// Save persists the activation record of info.MachineID.
func (s *Store) Save(ctx context.Context, info domain.ActivationInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to marshal activation: %w", err)
	}

	if err := s.client.Set(ctx, s.key(info.MachineID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Load retrieves the activation record of machineID.
func (s *Store) Load(ctx context.Context, machineID string) (*domain.ActivationInfo, error) {
	val, err := s.client.Get(ctx, s.key(machineID)).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrActivationNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var info domain.ActivationInfo
	if err := json.Unmarshal([]byte(val), &info); err != nil {
		return nil, fmt.Errorf("failed to unmarshal activation: %w", err)
	}

	return &info, nil
}

// Delete removes the record of machineID.
func (s *Store) Delete(ctx context.Context, machineID string) error {
	if err := s.client.Del(ctx, s.key(machineID)).Err(); err != nil {
		return fmt.Errorf("failed to delete from redis: %w", err)
	}
	return nil
}

// Close closes the client when the store created it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}
