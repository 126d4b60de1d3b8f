package config

import (
	"github.com/parcelflow/fulfillment-system/inventory-service/application"
	"github.com/parcelflow/fulfillment-system/inventory-service/handlers"
	"github.com/parcelflow/fulfillment-system/inventory-service/infrastructure"
)

type Dependencies struct {
	// Use Cases
	UpdateStock *application.UpdateStock
	RevertStock *application.RevertStock
	ListStocks  *application.ListStocks

	// HTTP Handlers
	InventoryHandlers *handlers.InventoryHandlers
}

func BuildDependencies(cfg *Config) (*Dependencies, error) {
	repository := infrastructure.NewMemoryStockRepository(cfg.Stock, cfg.InitialQuantity)

	updateStock := application.NewUpdateStock(repository)
	revertStock := application.NewRevertStock(repository)
	listStocks := application.NewListStocks(repository)

	return &Dependencies{
		UpdateStock:       updateStock,
		RevertStock:       revertStock,
		ListStocks:        listStocks,
		InventoryHandlers: handlers.NewInventoryHandlers(updateStock, revertStock, listStocks),
	}, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	return nil
}
