package application

import (
	"context"

	"github.com/parcelflow/fulfillment-system/shared/models"
	"github.com/parcelflow/fulfillment-system/shared/saga"
)

// SagaReader looks up saga snapshots
type SagaReader interface {
	GetSaga(ctx context.Context, orderID string) (*saga.SagaState, error)
}

// GetSagaQuery represents the query for a saga's current state
type GetSagaQuery struct {
	OrderID string `json:"order_id"`
}

// GetSagaStatus use case
type GetSagaStatus struct {
	sagas SagaReader
}

// NewGetSagaStatus creates a new GetSagaStatus use case
func NewGetSagaStatus(sagas SagaReader) *GetSagaStatus {
	return &GetSagaStatus{sagas: sagas}
}

// Execute returns a snapshot of the saga, or saga.ErrNotFound
func (uc *GetSagaStatus) Execute(ctx context.Context, query *GetSagaQuery) (*saga.SagaState, error) {
	if query.OrderID == "" {
		return nil, &ValidationError{Field: "orderId", Reason: "order ID is required"}
	}
	// An ID that doesn't parse as an order ID can never have a saga
	if _, err := models.NewOrderID(query.OrderID); err != nil {
		return nil, saga.ErrNotFound
	}
	return uc.sagas.GetSaga(ctx, query.OrderID)
}
