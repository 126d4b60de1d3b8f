package saga

import (
	"context"
	"sync"
)

// MemoryStore is a mutex-guarded in-memory saga registry. Records are cloned
// on the way in and out, so callers never share state with the store and
// readers polling mid-flight see complete snapshots.
type MemoryStore struct {
	mu    sync.RWMutex
	sagas map[string]*SagaState
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory saga store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sagas: make(map[string]*SagaState),
	}
}

// Create stores a new saga record
func (s *MemoryStore) Create(_ context.Context, state *SagaState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sagas[state.OrderID]; exists {
		return ErrAlreadyExists
	}
	s.sagas[state.OrderID] = state.Clone()
	return nil
}

// Get returns a snapshot of the saga record
func (s *MemoryStore) Get(_ context.Context, orderID string) (*SagaState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.sagas[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return state.Clone(), nil
}

// Save replaces the stored record wholesale
func (s *MemoryStore) Save(_ context.Context, state *SagaState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.sagas[state.OrderID]; !exists {
		return ErrNotFound
	}
	s.sagas[state.OrderID] = state.Clone()
	return nil
}

// Len returns the number of stored sagas
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sagas)
}
