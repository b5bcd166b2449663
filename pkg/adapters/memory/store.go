package memory

import (
	"context"
	"sync"

	"github.com/dredimura/surface/pkg/domain"
)

// Store implements ports.ActivationStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]domain.ActivationInfo
	mu   sync.RWMutex
}

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]domain.ActivationInfo),
	}
}

// Save persists the record in memory, keyed by machine id.
func (s *Store) Save(ctx context.Context, info domain.ActivationInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[info.MachineID] = info
	return nil
}

// Load retrieves a copy of the record, so callers cannot mutate the store through it.
func (s *Store) Load(ctx context.Context, machineID string) (*domain.ActivationInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.data[machineID]
	if !ok {
		return nil, domain.ErrActivationNotFound
	}
	return &info, nil
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, machineID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, machineID)
	return nil
}
