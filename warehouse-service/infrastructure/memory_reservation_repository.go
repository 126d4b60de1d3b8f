package infrastructure

import (
	"context"
	"sync"

	"github.com/parcelflow/fulfillment-system/warehouse-service/domain"
)

// MemoryReservationRepository keeps reservations in memory, keyed by order ID
type MemoryReservationRepository struct {
	mu           sync.RWMutex
	reservations map[string]*domain.Reservation
	order        []string
}

// NewMemoryReservationRepository creates an empty repository
func NewMemoryReservationRepository() *MemoryReservationRepository {
	return &MemoryReservationRepository{
		reservations: make(map[string]*domain.Reservation),
	}
}

// Save inserts or replaces the reservation for its order ID
func (r *MemoryReservationRepository) Save(_ context.Context, reservation *domain.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reservations[reservation.OrderID]; !exists {
		r.order = append(r.order, reservation.OrderID)
	}
	copied := *reservation
	r.reservations[reservation.OrderID] = &copied
	return nil
}

// FindByOrderID returns the reservation for an order, or ErrReservationNotFound
func (r *MemoryReservationRepository) FindByOrderID(_ context.Context, orderID string) (*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reservation, exists := r.reservations[orderID]
	if !exists {
		return nil, domain.ErrReservationNotFound
	}
	copied := *reservation
	return &copied, nil
}

// FindAll returns all reservations in insertion order
func (r *MemoryReservationRepository) FindAll(_ context.Context) ([]*domain.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Reservation, 0, len(r.order))
	for _, orderID := range r.order {
		copied := *r.reservations[orderID]
		result = append(result, &copied)
	}
	return result, nil
}
