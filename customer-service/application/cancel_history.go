package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/customer-service/domain"
)

// CancelHistoryCommand marks an order cancelled in the customer's history
type CancelHistoryCommand struct {
	OrderID string
}

// CancelHistoryResponse is the payload merged into the saga's generated data
type CancelHistoryResponse struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// CancelHistory use case
type CancelHistory struct {
	history domain.HistoryRepository
}

// NewCancelHistory creates a new CancelHistory use case
func NewCancelHistory(history domain.HistoryRepository) *CancelHistory {
	return &CancelHistory{history: history}
}

// Execute flips the order's history entry to cancelled. Unknown or already
// cancelled orders succeed so the undo call can be repeated.
func (uc *CancelHistory) Execute(ctx context.Context, cmd *CancelHistoryCommand) (*CancelHistoryResponse, error) {
	entry, err := uc.history.FindByOrderID(ctx, cmd.OrderID)
	if errors.Is(err, domain.ErrHistoryNotFound) {
		return &CancelHistoryResponse{
			OrderID: cmd.OrderID,
			Status:  "NOT_FOUND_OR_ALREADY_COMPENSATED",
		}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up history entry")
	}

	if entry.OrderStatus != domain.OrderStatusCancelled {
		entry.MarkCancelled()
		if err := uc.history.Save(ctx, entry); err != nil {
			return nil, errors.Wrap(err, "failed to save history entry")
		}
	}

	return &CancelHistoryResponse{
		OrderID: cmd.OrderID,
		Status:  string(entry.OrderStatus),
	}, nil
}
