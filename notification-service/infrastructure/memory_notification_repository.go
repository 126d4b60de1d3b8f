package infrastructure

import (
	"context"
	"sync"

	"github.com/parcelflow/fulfillment-system/notification-service/domain"
)

// MemoryNotificationRepository keeps sent notifications in memory, in send
// order
type MemoryNotificationRepository struct {
	mu            sync.RWMutex
	notifications []*domain.Notification
}

// NewMemoryNotificationRepository creates an empty repository
func NewMemoryNotificationRepository() *MemoryNotificationRepository {
	return &MemoryNotificationRepository{}
}

// Add appends the notification to the log
func (r *MemoryNotificationRepository) Add(_ context.Context, notification *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *notification
	r.notifications = append(r.notifications, &copied)
	return nil
}

// FindAll returns all notifications in send order
func (r *MemoryNotificationRepository) FindAll(_ context.Context) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.Notification, 0, len(r.notifications))
	for _, notification := range r.notifications {
		copied := *notification
		result = append(result, &copied)
	}
	return result, nil
}
