package config

import (
	"github.com/parcelflow/fulfillment-system/notification-service/application"
	"github.com/parcelflow/fulfillment-system/notification-service/handlers"
	"github.com/parcelflow/fulfillment-system/notification-service/infrastructure"
)

type Dependencies struct {
	// Use Cases
	SendNotification  *application.SendNotification
	ListNotifications *application.ListNotifications

	// HTTP Handlers
	NotificationHandlers *handlers.NotificationHandlers
}

func BuildDependencies(cfg *Config) (*Dependencies, error) {
	repository := infrastructure.NewMemoryNotificationRepository()

	sendNotification := application.NewSendNotification(repository)
	listNotifications := application.NewListNotifications(repository)

	return &Dependencies{
		SendNotification:     sendNotification,
		ListNotifications:    listNotifications,
		NotificationHandlers: handlers.NewNotificationHandlers(sendNotification, listNotifications),
	}, nil
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	return nil
}
