package events

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/parcelflow/fulfillment-system/shared/models"
)

var ErrInvalidTopic = errors.New("invalid topic")

// Topic represents an event topic
type Topic string

func NewTopic(topic string) (Topic, error) {
	if topic == "" {
		return "", ErrInvalidTopic
	}
	return Topic(topic), nil
}

func (t Topic) String() string {
	return string(t)
}

// Metadata represents event metadata. Publishers flatten it into per-message
// attributes.
type Metadata map[string]string

func (m Metadata) Set(key string, value string) {
	m[key] = value
}

// Event represents a saga lifecycle event emitted by the orchestrator
type Event struct {
	ID            models.ID `json:"id"`
	AggregateID   string    `json:"aggregate_id"`
	Topic         Topic     `json:"topic"`
	EventType     string    `json:"event_type"`
	Version       string    `json:"version"`
	Data          any       `json:"data"`
	Metadata      Metadata  `json:"metadata"`
	Timestamp     time.Time `json:"timestamp"`
	CorrelationID string    `json:"correlation_id"`
}

// Publisher publishes events
type Publisher interface {
	Publish(ctx context.Context, events ...*Event) error
}

// NewEvent creates a new lifecycle event. The aggregate ID is the saga's
// order ID.
func NewEvent(aggregateID string, eventType string, data any) *Event {
	topic, _ := NewTopic(eventType) // event type constants are trusted
	return &Event{
		ID:          models.GenerateUUID(),
		AggregateID: aggregateID,
		Topic:       topic,
		EventType:   eventType,
		Version:     "1.0",
		Data:        data,
		Metadata:    make(Metadata),
		Timestamp:   time.Now(),
	}
}

// WithCorrelationID sets correlation ID
func (e *Event) WithCorrelationID(correlationID string) *Event {
	e.CorrelationID = correlationID
	return e
}

// WithMetadata adds metadata
func (e *Event) WithMetadata(key string, value string) *Event {
	if e.Metadata == nil {
		e.Metadata = make(Metadata)
	}
	e.Metadata.Set(key, value)
	return e
}

// MarshalPayload marshals the event payload
func (e *Event) MarshalPayload() (json.RawMessage, error) {
	if b, ok := e.Data.([]byte); ok {
		return b, nil
	}

	if b, ok := e.Data.(json.RawMessage); ok {
		return b, nil
	}

	return json.Marshal(e.Data)
}

// Event Types Constants
const (
	// Saga lifecycle events
	SagaStartedEvent     = "saga.started"
	SagaCompletedEvent   = "saga.completed"
	SagaFailedEvent      = "saga.failed"
	SagaCompensatedEvent = "saga.compensated"

	// Order events
	OrderReceivedEvent = "order.received"
)
