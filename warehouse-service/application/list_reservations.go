package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/warehouse-service/domain"
)

// ListReservationsResponse holds all current reservations
type ListReservationsResponse struct {
	Reservations []*domain.Reservation `json:"reservations"`
	Count        int                   `json:"count"`
}

// ListReservations use case
type ListReservations struct {
	reservations domain.ReservationRepository
}

// NewListReservations creates a new ListReservations use case
func NewListReservations(reservations domain.ReservationRepository) *ListReservations {
	return &ListReservations{reservations: reservations}
}

// Execute returns all reservations
func (uc *ListReservations) Execute(ctx context.Context) (*ListReservationsResponse, error) {
	reservations, err := uc.reservations.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list reservations")
	}
	return &ListReservationsResponse{
		Reservations: reservations,
		Count:        len(reservations),
	}, nil
}
