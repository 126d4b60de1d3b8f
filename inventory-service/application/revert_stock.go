package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/inventory-service/domain"
)

// RevertStockCommand represents a stock restoration for an order
type RevertStockCommand struct {
	OrderID string
}

// RevertStockResponse is the payload merged into the saga's generated data
type RevertStockResponse struct {
	Product  string `json:"product,omitempty"`
	Restored int    `json:"restored"`
	Message  string `json:"message"`
}

// RevertStock use case
type RevertStock struct {
	stocks domain.StockRepository
}

// NewRevertStock creates a new RevertStock use case
func NewRevertStock(stocks domain.StockRepository) *RevertStock {
	return &RevertStock{stocks: stocks}
}

// Execute restores the deduction made for the order. Reverting an unknown or
// already reverted movement succeeds so the undo call can be repeated.
func (uc *RevertStock) Execute(ctx context.Context, cmd *RevertStockCommand) (*RevertStockResponse, error) {
	movement, err := uc.stocks.FindMovement(ctx, cmd.OrderID)
	if errors.Is(err, domain.ErrMovementNotFound) {
		return &RevertStockResponse{
			Restored: 0,
			Message:  fmt.Sprintf("No stock movement found for order %s", cmd.OrderID),
		}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up movement")
	}

	if movement.Reverted {
		return &RevertStockResponse{
			Product:  movement.Product,
			Restored: 0,
			Message:  fmt.Sprintf("Stock already reverted for order %s", cmd.OrderID),
		}, nil
	}

	item, err := uc.stocks.FindByProduct(ctx, movement.Product)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up stock")
	}

	item.Restore(movement.Quantity)
	if err := uc.stocks.SaveStock(ctx, item); err != nil {
		return nil, errors.Wrap(err, "failed to save stock")
	}

	movement.Revert()
	if err := uc.stocks.SaveMovement(ctx, movement); err != nil {
		return nil, errors.Wrap(err, "failed to save movement")
	}

	return &RevertStockResponse{
		Product:  movement.Product,
		Restored: movement.Quantity,
		Message:  fmt.Sprintf("Stock reverted for product: %s", movement.Product),
	}, nil
}
