package application

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	"github.com/parcelflow/fulfillment-system/shared/saga"
)

// fakeSagaCreator records the request it was handed
type fakeSagaCreator struct {
	orderID string
	err     error
	request saga.OrderRequest
	called  bool
}

func (f *fakeSagaCreator) CreateSaga(_ context.Context, request saga.OrderRequest) (string, <-chan struct{}, error) {
	f.called = true
	f.request = request
	if f.err != nil {
		return "", nil, f.err
	}
	done := make(chan struct{})
	close(done)
	return f.orderID, done, nil
}

func validCommand() *CreateOrderCommand {
	return &CreateOrderCommand{
		User:            "alice",
		Product:         "laptop",
		Quantity:        2,
		ShippingAddress: "123 Main St",
		PaymentDetails:  "tok_visa",
	}
}

func TestCreateOrder_Execute(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*CreateOrderCommand)
		expectedError string
		expectedField string
	}{
		{
			name:   "valid order",
			mutate: func(cmd *CreateOrderCommand) {},
		},
		{
			name:          "missing user",
			mutate:        func(cmd *CreateOrderCommand) { cmd.User = "" },
			expectedError: "user is required",
			expectedField: "user",
		},
		{
			name:          "missing product",
			mutate:        func(cmd *CreateOrderCommand) { cmd.Product = "" },
			expectedError: "product is required",
			expectedField: "product",
		},
		{
			name:          "zero quantity",
			mutate:        func(cmd *CreateOrderCommand) { cmd.Quantity = 0 },
			expectedError: "quantity must be positive",
			expectedField: "quantity",
		},
		{
			name:          "negative quantity",
			mutate:        func(cmd *CreateOrderCommand) { cmd.Quantity = -3 },
			expectedError: "quantity must be positive",
			expectedField: "quantity",
		},
		{
			name:          "missing shipping address",
			mutate:        func(cmd *CreateOrderCommand) { cmd.ShippingAddress = "" },
			expectedError: "shipping address is required",
			expectedField: "shippingAddress",
		},
		{
			name:          "missing payment details",
			mutate:        func(cmd *CreateOrderCommand) { cmd.PaymentDetails = "" },
			expectedError: "payment details are required",
			expectedField: "paymentDetails",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			creator := &fakeSagaCreator{orderID: "ORD-test"}
			useCase := NewCreateOrder(creator)

			cmd := validCommand()
			tt.mutate(cmd)

			response, done, err := useCase.Execute(context.Background(), cmd)

			if tt.expectedError != "" {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError)
				var validationErr *ValidationError
				assert.ErrorAs(t, err, &validationErr)
				assert.Equal(t, tt.expectedField, validationErr.Field)
				assert.Nil(t, response)
				assert.False(t, creator.called, "invalid commands must not start a saga")
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, done)
				assert.Equal(t, "Order processing started.", response.Message)
				assert.Equal(t, "ORD-test", response.OrderID)
				assert.Equal(t, saga.OrderRequest{
					User:            "alice",
					Product:         "laptop",
					Quantity:        2,
					ShippingAddress: "123 Main St",
					PaymentDetails:  "tok_visa",
				}, creator.request)
			}
		})
	}
}

func TestCreateOrder_Execute_CreatorError(t *testing.T) {
	creator := &fakeSagaCreator{err: errors.New("store unavailable")}
	useCase := NewCreateOrder(creator)

	response, done, err := useCase.Execute(context.Background(), validCommand())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store unavailable")
	assert.Nil(t, response)
	assert.Nil(t, done)
}
