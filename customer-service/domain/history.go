package domain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/shared/models"
)

// Domain errors
var (
	ErrHistoryNotFound = errors.New("history entry not found")
)

// OrderStatus is the outcome recorded in the customer's purchase history
type OrderStatus string

const (
	OrderStatusCompleted OrderStatus = "COMPLETED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// HistoryEntry represents one order in a customer's purchase history
type HistoryEntry struct {
	ID          models.ID   `json:"id"`
	OrderID     string      `json:"orderId"`
	User        string      `json:"user"`
	Product     string      `json:"product"`
	OrderStatus OrderStatus `json:"orderStatus"`
	models.Timestamps
}

// NewHistoryEntry creates a new history entry
func NewHistoryEntry(orderID, user, product string, status OrderStatus) *HistoryEntry {
	return &HistoryEntry{
		ID:          models.GenerateUUID(),
		OrderID:     orderID,
		User:        user,
		Product:     product,
		OrderStatus: status,
		Timestamps:  models.NewTimestamps(),
	}
}

// MarkCancelled records the order as cancelled
func (h *HistoryEntry) MarkCancelled() {
	h.OrderStatus = OrderStatusCancelled
	h.Timestamps = h.Timestamps.Update()
}

// HistoryRepository defines purchase history persistence
type HistoryRepository interface {
	Save(ctx context.Context, entry *HistoryEntry) error
	FindByOrderID(ctx context.Context, orderID string) (*HistoryEntry, error)
	FindAll(ctx context.Context) ([]*HistoryEntry, error)
}
