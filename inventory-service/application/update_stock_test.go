package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelflow/fulfillment-system/inventory-service/domain"
	"github.com/parcelflow/fulfillment-system/inventory-service/infrastructure"
)

func newTestRepo() *infrastructure.MemoryStockRepository {
	return infrastructure.NewMemoryStockRepository(map[string]int{"laptop": 10}, 100)
}

func TestUpdateStock_Execute(t *testing.T) {
	tests := []struct {
		name          string
		command       *UpdateStockCommand
		expectedError error
		remaining     int
	}{
		{
			name:      "successful deduction",
			command:   &UpdateStockCommand{OrderID: "ORD-1", Product: "laptop", Quantity: 3},
			remaining: 7,
		},
		{
			name:      "unseeded product starts at the initial quantity",
			command:   &UpdateStockCommand{OrderID: "ORD-1", Product: "phone", Quantity: 5},
			remaining: 95,
		},
		{
			name:          "insufficient stock",
			command:       &UpdateStockCommand{OrderID: "ORD-1", Product: "laptop", Quantity: 11},
			expectedError: domain.ErrInsufficientStock,
		},
		{
			name:          "missing product",
			command:       &UpdateStockCommand{OrderID: "ORD-1", Quantity: 3},
			expectedError: ErrMissingProduct,
		},
		{
			name:          "zero quantity",
			command:       &UpdateStockCommand{OrderID: "ORD-1", Product: "laptop"},
			expectedError: ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			useCase := NewUpdateStock(newTestRepo())

			response, err := useCase.Execute(context.Background(), tt.command)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, response)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.command.Quantity, response.Deducted)
				assert.Equal(t, tt.remaining, response.Remaining)
			}
		})
	}
}

func TestUpdateStock_Execute_FailureLeavesStockUntouched(t *testing.T) {
	repo := newTestRepo()
	useCase := NewUpdateStock(repo)

	_, err := useCase.Execute(context.Background(), &UpdateStockCommand{OrderID: "ORD-1", Product: "laptop", Quantity: 11})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	item, err := repo.FindByProduct(context.Background(), "laptop")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestUpdateStock_Execute_Idempotent(t *testing.T) {
	useCase := NewUpdateStock(newTestRepo())
	cmd := &UpdateStockCommand{OrderID: "ORD-1", Product: "laptop", Quantity: 3}

	first, err := useCase.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 7, first.Remaining)

	// A repeated call for the same order deducts only once
	second, err := useCase.Execute(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, 7, second.Remaining)
}

func TestRevertStock_Execute(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	update := NewUpdateStock(repo)
	revert := NewRevertStock(repo)

	_, err := update.Execute(ctx, &UpdateStockCommand{OrderID: "ORD-1", Product: "laptop", Quantity: 3})
	require.NoError(t, err)

	response, err := revert.Execute(ctx, &RevertStockCommand{OrderID: "ORD-1"})
	require.NoError(t, err)
	assert.Equal(t, 3, response.Restored)

	item, err := repo.FindByProduct(ctx, "laptop")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestRevertStock_Execute_Repeatable(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo()
	update := NewUpdateStock(repo)
	revert := NewRevertStock(repo)

	_, err := update.Execute(ctx, &UpdateStockCommand{OrderID: "ORD-1", Product: "laptop", Quantity: 3})
	require.NoError(t, err)

	_, err = revert.Execute(ctx, &RevertStockCommand{OrderID: "ORD-1"})
	require.NoError(t, err)

	// A second revert restores nothing
	response, err := revert.Execute(ctx, &RevertStockCommand{OrderID: "ORD-1"})
	require.NoError(t, err)
	assert.Zero(t, response.Restored)

	item, err := repo.FindByProduct(ctx, "laptop")
	require.NoError(t, err)
	assert.Equal(t, 10, item.Quantity)
}

func TestRevertStock_Execute_UnknownOrderSucceeds(t *testing.T) {
	revert := NewRevertStock(newTestRepo())

	response, err := revert.Execute(context.Background(), &RevertStockCommand{OrderID: "ORD-unknown"})

	assert.NoError(t, err)
	assert.Zero(t, response.Restored)
	assert.Contains(t, response.Message, "No stock movement found")
}
