package application

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/notification-service/domain"
)

// Validation errors
var (
	ErrMissingOrderID = errors.New("missing required field: orderId")
)

// SendNotificationCommand represents an outcome notification for an order.
// Succeeded selects between a confirmation and a cancellation message.
type SendNotificationCommand struct {
	OrderID   string
	User      string
	Succeeded bool
}

// SendNotificationResponse is the payload merged into the saga's generated data
type SendNotificationResponse struct {
	NotificationID string                  `json:"notificationId"`
	Type           domain.NotificationType `json:"type"`
	Status         string                  `json:"status"`
	Message        string                  `json:"message"`
}

// SendNotification use case
type SendNotification struct {
	notifications domain.NotificationRepository
}

// NewSendNotification creates a new SendNotification use case
func NewSendNotification(notifications domain.NotificationRepository) *SendNotification {
	return &SendNotification{notifications: notifications}
}

// Execute records and sends the notification. The user falls back to
// "unknown" so a malformed order can still be reported.
func (uc *SendNotification) Execute(ctx context.Context, cmd *SendNotificationCommand) (*SendNotificationResponse, error) {
	if cmd.OrderID == "" {
		return nil, ErrMissingOrderID
	}

	user := cmd.User
	if user == "" {
		user = "unknown"
	}

	notificationType := domain.NotificationTypeCancellation
	if cmd.Succeeded {
		notificationType = domain.NotificationTypeConfirmation
	}

	notification := domain.NewNotification(cmd.OrderID, user, notificationType)
	if err := uc.notifications.Add(ctx, notification); err != nil {
		return nil, errors.Wrap(err, "failed to record notification")
	}

	return &SendNotificationResponse{
		NotificationID: notification.ID.String(),
		Type:           notification.Type,
		Status:         "SENT",
		Message:        fmt.Sprintf("%s sent to %s for order %s", notification.Type, user, cmd.OrderID),
	}, nil
}
