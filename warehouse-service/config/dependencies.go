package config

import (
	"github.com/parcelflow/fulfillment-system/warehouse-service/application"
	"github.com/parcelflow/fulfillment-system/warehouse-service/handlers"
	"github.com/parcelflow/fulfillment-system/warehouse-service/infrastructure"
)

type Dependencies struct {
	// Use Cases
	ReserveSpace      *application.ReserveSpace
	CancelReservation *application.CancelReservation
	ListReservations  *application.ListReservations

	// HTTP Handlers
	WarehouseHandlers *handlers.WarehouseHandlers
}

func BuildDependencies(cfg *Config) (*Dependencies, error) {
	repository := infrastructure.NewMemoryReservationRepository()

	reserveSpace := application.NewReserveSpace(repository)
	cancelReservation := application.NewCancelReservation(repository)
	listReservations := application.NewListReservations(repository)

	return &Dependencies{
		ReserveSpace:      reserveSpace,
		CancelReservation: cancelReservation,
		ListReservations:  listReservations,
		WarehouseHandlers: handlers.NewWarehouseHandlers(reserveSpace, cancelReservation, listReservations),
	}, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	return nil
}
