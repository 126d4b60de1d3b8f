package application

import (
	"context"

	"github.com/parcelflow/fulfillment-system/shared/saga"
)

// ValidationError reports a malformed or missing field in an order request
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// SagaCreator starts a saga for an order request
type SagaCreator interface {
	CreateSaga(ctx context.Context, request saga.OrderRequest) (string, <-chan struct{}, error)
}

// CreateOrderCommand represents the command to submit an order
type CreateOrderCommand struct {
	User            string `json:"user"`
	Product         string `json:"product"`
	Quantity        int    `json:"quantity"`
	ShippingAddress string `json:"shippingAddress"`
	PaymentDetails  string `json:"paymentDetails"`
}

// CreateOrderResponse represents the response after accepting an order
type CreateOrderResponse struct {
	Message string `json:"message"`
	OrderID string `json:"orderId"`
}

// CreateOrder use case: validates the order request and schedules its saga
type CreateOrder struct {
	sagas SagaCreator
}

// NewCreateOrder creates a new CreateOrder use case
func NewCreateOrder(sagas SagaCreator) *CreateOrder {
	return &CreateOrder{sagas: sagas}
}

// Execute validates the command and creates the saga. The returned channel
// closes when the asynchronous run finishes; callers that only need the
// accepted order ID may ignore it.
func (uc *CreateOrder) Execute(ctx context.Context, cmd *CreateOrderCommand) (*CreateOrderResponse, <-chan struct{}, error) {
	if err := uc.validateCommand(cmd); err != nil {
		return nil, nil, err
	}

	orderID, done, err := uc.sagas.CreateSaga(ctx, saga.OrderRequest{
		User:            cmd.User,
		Product:         cmd.Product,
		Quantity:        cmd.Quantity,
		ShippingAddress: cmd.ShippingAddress,
		PaymentDetails:  cmd.PaymentDetails,
	})
	if err != nil {
		return nil, nil, err
	}

	return &CreateOrderResponse{
		Message: "Order processing started.",
		OrderID: orderID,
	}, done, nil
}

// validateCommand validates the create order command
func (uc *CreateOrder) validateCommand(cmd *CreateOrderCommand) error {
	if cmd.User == "" {
		return &ValidationError{Field: "user", Reason: "user is required"}
	}
	if cmd.Product == "" {
		return &ValidationError{Field: "product", Reason: "product is required"}
	}
	if cmd.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Reason: "quantity must be positive"}
	}
	if cmd.ShippingAddress == "" {
		return &ValidationError{Field: "shippingAddress", Reason: "shipping address is required"}
	}
	if cmd.PaymentDetails == "" {
		return &ValidationError{Field: "paymentDetails", Reason: "payment details are required"}
	}
	return nil
}
