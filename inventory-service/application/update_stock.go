package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/inventory-service/domain"
)

// Validation errors
var (
	ErrMissingProduct  = errors.New("missing required field: product")
	ErrInvalidQuantity = errors.New("quantity must be greater than zero")
)

// UpdateStockCommand represents a stock deduction for an order
type UpdateStockCommand struct {
	OrderID  string
	Product  string
	Quantity int
}

// UpdateStockResponse is the payload merged into the saga's generated data
type UpdateStockResponse struct {
	Product   string `json:"product"`
	Deducted  int    `json:"deducted"`
	Remaining int    `json:"remaining"`
	Message   string `json:"message"`
}

// UpdateStock use case
type UpdateStock struct {
	stocks domain.StockRepository
}

// NewUpdateStock creates a new UpdateStock use case
func NewUpdateStock(stocks domain.StockRepository) *UpdateStock {
	return &UpdateStock{stocks: stocks}
}

// Execute deducts the order's quantity from stock. Repeated calls for the
// same order ID deduct only once. Returns domain.ErrInsufficientStock when
// not enough stock is available.
func (uc *UpdateStock) Execute(ctx context.Context, cmd *UpdateStockCommand) (*UpdateStockResponse, error) {
	if cmd.Product == "" {
		return nil, ErrMissingProduct
	}
	if cmd.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	movement, err := uc.stocks.FindMovement(ctx, cmd.OrderID)
	switch {
	case err == nil && !movement.Reverted:
		item, err := uc.stocks.FindByProduct(ctx, movement.Product)
		if err != nil {
			return nil, errors.Wrap(err, "failed to look up stock")
		}
		return uc.response(movement, item), nil
	case err != nil && !errors.Is(err, domain.ErrMovementNotFound):
		return nil, errors.Wrap(err, "failed to look up movement")
	}

	item, err := uc.stocks.FindByProduct(ctx, cmd.Product)
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up stock")
	}

	if err := item.Deduct(cmd.Quantity); err != nil {
		return nil, err
	}
	if err := uc.stocks.SaveStock(ctx, item); err != nil {
		return nil, errors.Wrap(err, "failed to save stock")
	}

	movement = domain.NewStockMovement(cmd.OrderID, cmd.Product, cmd.Quantity)
	if err := uc.stocks.SaveMovement(ctx, movement); err != nil {
		return nil, errors.Wrap(err, "failed to save movement")
	}

	return uc.response(movement, item), nil
}

func (uc *UpdateStock) response(movement *domain.StockMovement, item *domain.StockItem) *UpdateStockResponse {
	return &UpdateStockResponse{
		Product:   movement.Product,
		Deducted:  movement.Quantity,
		Remaining: item.Quantity,
		Message:   fmt.Sprintf("Stock updated for product: %s", movement.Product),
	}
}
