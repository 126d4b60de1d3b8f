package domain

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/shared/models"
)

// Domain errors
var (
	ErrReservationNotFound = errors.New("reservation not found")
)

// ReservationStatus represents the status of a warehouse reservation
type ReservationStatus string

const (
	ReservationStatusReserved  ReservationStatus = "RESERVED"
	ReservationStatusCancelled ReservationStatus = "CANCELLED"
)

// Reservation represents reserved warehouse space for one order
type Reservation struct {
	ID       models.ID         `json:"id"`
	OrderID  string            `json:"orderId"`
	User     string            `json:"user"`
	Product  string            `json:"product"`
	Quantity int               `json:"quantity"`
	Status   ReservationStatus `json:"status"`
	models.Timestamps
}

// NewReservation creates a new active reservation
func NewReservation(orderID, user, product string, quantity int) *Reservation {
	return &Reservation{
		ID:         models.GenerateUUID(),
		OrderID:    orderID,
		User:       user,
		Product:    product,
		Quantity:   quantity,
		Status:     ReservationStatusReserved,
		Timestamps: models.NewTimestamps(),
	}
}

// Cancel marks the reservation cancelled
func (r *Reservation) Cancel() {
	r.Status = ReservationStatusCancelled
	r.Timestamps = r.Timestamps.Update()
}

// IsActive returns true while the space is held
func (r *Reservation) IsActive() bool {
	return r.Status == ReservationStatusReserved
}

// ReservationRepository defines reservation persistence
type ReservationRepository interface {
	Save(ctx context.Context, reservation *Reservation) error
	FindByOrderID(ctx context.Context, orderID string) (*Reservation, error)
	FindAll(ctx context.Context) ([]*Reservation, error)
}
