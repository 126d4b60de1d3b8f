package infrastructure

import (
	"context"
	"sync"

	"github.com/parcelflow/fulfillment-system/customer-service/domain"
)

// MemoryHistoryRepository keeps history entries in memory, keyed by order ID
type MemoryHistoryRepository struct {
	mu      sync.RWMutex
	entries map[string]*domain.HistoryEntry
	order   []string
}

// NewMemoryHistoryRepository creates an empty repository
func NewMemoryHistoryRepository() *MemoryHistoryRepository {
	return &MemoryHistoryRepository{
		entries: make(map[string]*domain.HistoryEntry),
	}
}

// Save inserts or replaces the entry for its order ID
func (r *MemoryHistoryRepository) Save(_ context.Context, entry *domain.HistoryEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.entries[entry.OrderID]; !exists {
		r.order = append(r.order, entry.OrderID)
	}
	copied := *entry
	r.entries[entry.OrderID] = &copied
	return nil
}

// FindByOrderID returns the entry for an order, or ErrHistoryNotFound
func (r *MemoryHistoryRepository) FindByOrderID(_ context.Context, orderID string) (*domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, exists := r.entries[orderID]
	if !exists {
		return nil, domain.ErrHistoryNotFound
	}
	copied := *entry
	return &copied, nil
}

// FindAll returns all entries in insertion order
func (r *MemoryHistoryRepository) FindAll(_ context.Context) ([]*domain.HistoryEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.HistoryEntry, 0, len(r.order))
	for _, orderID := range r.order {
		copied := *r.entries[orderID]
		result = append(result, &copied)
	}
	return result, nil
}
