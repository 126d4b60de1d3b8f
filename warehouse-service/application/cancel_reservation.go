package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/warehouse-service/domain"
)

// CancelReservationCommand represents a reservation cancellation for an order
type CancelReservationCommand struct {
	OrderID string
}

// CancelReservationResponse is the payload merged into the saga's generated data
type CancelReservationResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// CancelReservation use case
type CancelReservation struct {
	reservations domain.ReservationRepository
}

// NewCancelReservation creates a new CancelReservation use case
func NewCancelReservation(reservations domain.ReservationRepository) *CancelReservation {
	return &CancelReservation{reservations: reservations}
}

// Execute releases the space held for the order. Cancelling an unknown or
// already cancelled reservation succeeds so the undo call can be repeated.
func (uc *CancelReservation) Execute(ctx context.Context, cmd *CancelReservationCommand) (*CancelReservationResponse, error) {
	reservation, err := uc.reservations.FindByOrderID(ctx, cmd.OrderID)
	if errors.Is(err, domain.ErrReservationNotFound) {
		return &CancelReservationResponse{
			Status:  string(domain.ReservationStatusCancelled),
			Message: fmt.Sprintf("No reservation found for order %s", cmd.OrderID),
		}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to look up reservation")
	}

	if reservation.IsActive() {
		reservation.Cancel()
		if err := uc.reservations.Save(ctx, reservation); err != nil {
			return nil, errors.Wrap(err, "failed to save reservation")
		}
	}

	return &CancelReservationResponse{
		Status:  string(reservation.Status),
		Message: fmt.Sprintf("Reservation cancelled for order %s", cmd.OrderID),
	}, nil
}
