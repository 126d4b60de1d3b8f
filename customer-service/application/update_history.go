package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/customer-service/domain"
)

// Validation errors
var (
	ErrMissingOrderID = errors.New("missing required field: orderId")
	ErrMissingUser    = errors.New("missing required field: user")
)

// UpdateHistoryCommand records an order's outcome in the customer's history.
// Succeeded selects the recorded order status.
type UpdateHistoryCommand struct {
	OrderID   string
	User      string
	Product   string
	Succeeded bool
}

// UpdateHistoryResponse is the payload merged into the saga's generated data
type UpdateHistoryResponse struct {
	HistoryUpdated bool               `json:"historyUpdated"`
	OrderStatus    domain.OrderStatus `json:"orderStatus"`
}

// UpdateHistory use case
type UpdateHistory struct {
	history domain.HistoryRepository
}

// NewUpdateHistory creates a new UpdateHistory use case
func NewUpdateHistory(history domain.HistoryRepository) *UpdateHistory {
	return &UpdateHistory{history: history}
}

// Execute records the order in the customer's history. Repeated calls for
// the same order ID return the existing entry unchanged.
func (uc *UpdateHistory) Execute(ctx context.Context, cmd *UpdateHistoryCommand) (*UpdateHistoryResponse, error) {
	if cmd.OrderID == "" {
		return nil, ErrMissingOrderID
	}
	if cmd.User == "" {
		return nil, ErrMissingUser
	}

	entry, err := uc.history.FindByOrderID(ctx, cmd.OrderID)
	switch {
	case err == nil:
		return &UpdateHistoryResponse{HistoryUpdated: true, OrderStatus: entry.OrderStatus}, nil
	case !errors.Is(err, domain.ErrHistoryNotFound):
		return nil, errors.Wrap(err, "failed to look up history entry")
	}

	status := domain.OrderStatusCancelled
	if cmd.Succeeded {
		status = domain.OrderStatusCompleted
	}

	entry = domain.NewHistoryEntry(cmd.OrderID, cmd.User, cmd.Product, status)
	if err := uc.history.Save(ctx, entry); err != nil {
		return nil, errors.Wrap(err, "failed to save history entry")
	}

	return &UpdateHistoryResponse{HistoryUpdated: true, OrderStatus: entry.OrderStatus}, nil
}
