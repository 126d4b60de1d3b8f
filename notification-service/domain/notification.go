package domain

import (
	"context"

	"github.com/parcelflow/fulfillment-system/shared/models"
)

// NotificationType distinguishes order confirmations from cancellations
type NotificationType string

const (
	NotificationTypeConfirmation NotificationType = "CONFIRMATION"
	NotificationTypeCancellation NotificationType = "CANCELLATION"
)

// Notification represents one message sent to a customer about their order.
// Every send is recorded; repeated sends for the same order are kept as
// separate entries.
type Notification struct {
	ID      models.ID        `json:"id"`
	OrderID string           `json:"orderId"`
	User    string           `json:"user"`
	Type    NotificationType `json:"type"`
	models.Timestamps
}

// NewNotification creates a new notification record
func NewNotification(orderID, user string, notificationType NotificationType) *Notification {
	return &Notification{
		ID:         models.GenerateUUID(),
		OrderID:    orderID,
		User:       user,
		Type:       notificationType,
		Timestamps: models.NewTimestamps(),
	}
}

// NotificationRepository defines notification persistence
type NotificationRepository interface {
	Add(ctx context.Context, notification *Notification) error
	FindAll(ctx context.Context) ([]*Notification, error)
}
