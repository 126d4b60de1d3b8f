package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/warehouse-service/domain"
)

// Validation errors
var (
	ErrMissingUser    = errors.New("missing required field: user")
	ErrMissingProduct = errors.New("missing required field: product")
)

// ReserveSpaceCommand represents a space reservation request for an order
type ReserveSpaceCommand struct {
	OrderID  string
	User     string
	Product  string
	Quantity int
}

// ReserveSpaceResponse is the payload merged into the saga's generated data
type ReserveSpaceResponse struct {
	ReservationID string `json:"reservationId"`
	Status        string `json:"status"`
	Message       string `json:"message"`
}

// ReserveSpace use case
type ReserveSpace struct {
	reservations domain.ReservationRepository
}

// NewReserveSpace creates a new ReserveSpace use case
func NewReserveSpace(reservations domain.ReservationRepository) *ReserveSpace {
	return &ReserveSpace{reservations: reservations}
}

// Execute reserves warehouse space for the order. Repeated calls for the
// same order ID return the existing reservation instead of holding more
// space.
func (uc *ReserveSpace) Execute(ctx context.Context, cmd *ReserveSpaceCommand) (*ReserveSpaceResponse, error) {
	if cmd.User == "" {
		return nil, ErrMissingUser
	}
	if cmd.Product == "" {
		return nil, ErrMissingProduct
	}

	reservation, err := uc.reservations.FindByOrderID(ctx, cmd.OrderID)
	switch {
	case err == nil && reservation.IsActive():
		return uc.response(reservation), nil
	case err != nil && !errors.Is(err, domain.ErrReservationNotFound):
		return nil, errors.Wrap(err, "failed to look up reservation")
	}

	reservation = domain.NewReservation(cmd.OrderID, cmd.User, cmd.Product, cmd.Quantity)
	if err := uc.reservations.Save(ctx, reservation); err != nil {
		return nil, errors.Wrap(err, "failed to save reservation")
	}

	return uc.response(reservation), nil
}

func (uc *ReserveSpace) response(reservation *domain.Reservation) *ReserveSpaceResponse {
	return &ReserveSpaceResponse{
		ReservationID: reservation.ID.String(),
		Status:        string(reservation.Status),
		Message:       fmt.Sprintf("Space reserved for %s - product: %s", reservation.User, reservation.Product),
	}
}
