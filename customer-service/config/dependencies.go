package config

import (
	"github.com/parcelflow/fulfillment-system/customer-service/application"
	"github.com/parcelflow/fulfillment-system/customer-service/handlers"
	"github.com/parcelflow/fulfillment-system/customer-service/infrastructure"
)

type Dependencies struct {
	// Use Cases
	UpdateHistory *application.UpdateHistory
	CancelHistory *application.CancelHistory
	ListHistory   *application.ListHistory

	// HTTP Handlers
	CustomerHandlers *handlers.CustomerHandlers
}

func BuildDependencies(cfg *Config) (*Dependencies, error) {
	repository := infrastructure.NewMemoryHistoryRepository()

	updateHistory := application.NewUpdateHistory(repository)
	cancelHistory := application.NewCancelHistory(repository)
	listHistory := application.NewListHistory(repository)

	return &Dependencies{
		UpdateHistory:    updateHistory,
		CancelHistory:    cancelHistory,
		ListHistory:      listHistory,
		CustomerHandlers: handlers.NewCustomerHandlers(updateHistory, cancelHistory, listHistory),
	}, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	return nil
}
