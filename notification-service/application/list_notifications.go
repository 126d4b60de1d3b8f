package application

import (
	"context"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/notification-service/domain"
)

// ListNotificationsResponse holds all sent notifications
type ListNotificationsResponse struct {
	Notifications []*domain.Notification `json:"notifications"`
	Count         int                    `json:"count"`
}

// ListNotifications use case
type ListNotifications struct {
	notifications domain.NotificationRepository
}

// NewListNotifications creates a new ListNotifications use case
func NewListNotifications(notifications domain.NotificationRepository) *ListNotifications {
	return &ListNotifications{notifications: notifications}
}

// Execute returns all notifications
func (uc *ListNotifications) Execute(ctx context.Context) (*ListNotificationsResponse, error) {
	notifications, err := uc.notifications.FindAll(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list notifications")
	}
	return &ListNotificationsResponse{
		Notifications: notifications,
		Count:         len(notifications),
	}, nil
}
