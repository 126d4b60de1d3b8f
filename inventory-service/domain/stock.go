package domain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/shared/models"
)

// Domain errors
var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrMovementNotFound  = errors.New("stock movement not found")
)

// StockItem tracks the available quantity of one product
type StockItem struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	models.Timestamps
}

// NewStockItem creates a stock item with an initial quantity
func NewStockItem(product string, quantity int) *StockItem {
	return &StockItem{
		Product:    product,
		Quantity:   quantity,
		Timestamps: models.NewTimestamps(),
	}
}

// Deduct removes quantity from stock, failing when not enough is available
func (s *StockItem) Deduct(quantity int) error {
	if s.Quantity < quantity {
		return ErrInsufficientStock
	}
	s.Quantity -= quantity
	s.Timestamps = s.Timestamps.Update()
	return nil
}

// Restore returns quantity to stock
func (s *StockItem) Restore(quantity int) {
	s.Quantity += quantity
	s.Timestamps = s.Timestamps.Update()
}

// StockMovement records one order's deduction so it can be reverted exactly
// once
type StockMovement struct {
	OrderID  string `json:"orderId"`
	Product  string `json:"product"`
	Quantity int    `json:"quantity"`
	Reverted bool   `json:"reverted"`
	models.Timestamps
}

// NewStockMovement records a deduction for an order
func NewStockMovement(orderID, product string, quantity int) *StockMovement {
	return &StockMovement{
		OrderID:    orderID,
		Product:    product,
		Quantity:   quantity,
		Timestamps: models.NewTimestamps(),
	}
}

// Revert marks the movement undone
func (m *StockMovement) Revert() {
	m.Reverted = true
	m.Timestamps = m.Timestamps.Update()
}

// StockRepository defines stock and movement persistence
type StockRepository interface {
	FindByProduct(ctx context.Context, product string) (*StockItem, error)
	SaveStock(ctx context.Context, item *StockItem) error
	FindAllStocks(ctx context.Context) ([]*StockItem, error)

	FindMovement(ctx context.Context, orderID string) (*StockMovement, error)
	SaveMovement(ctx context.Context, movement *StockMovement) error
}
