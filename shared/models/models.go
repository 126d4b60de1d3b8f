package models

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ID represents a unique identifier
type ID string

// GenerateUUID creates a new UUID
func GenerateUUID() ID {
	return ID(uuid.New().String())
}

// String returns string representation
func (id ID) String() string {
	return string(id)
}

// OrderID is the public identifier of one fulfillment saga, formatted as
// "ORD-<uuid>" on the wire.
type OrderID string

const orderIDPrefix = "ORD-"

// GenerateOrderID creates a new order identifier
func GenerateOrderID() OrderID {
	return OrderID(orderIDPrefix + uuid.New().String())
}

// NewOrderID validates and creates an OrderID from string
func NewOrderID(id string) (OrderID, error) {
	raw, ok := strings.CutPrefix(id, orderIDPrefix)
	if !ok {
		return "", fmt.Errorf("order ID must start with %q", orderIDPrefix)
	}
	if _, err := uuid.Parse(raw); err != nil {
		return "", err
	}
	return OrderID(id), nil
}

// String returns string representation
func (id OrderID) String() string {
	return string(id)
}

// Timestamps represents creation and update times
type Timestamps struct {
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewTimestamps creates new timestamps
func NewTimestamps() Timestamps {
	now := time.Now()
	return Timestamps{
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Update updates the UpdatedAt timestamp
func (t Timestamps) Update() Timestamps {
	t.UpdatedAt = time.Now()
	return t
}
