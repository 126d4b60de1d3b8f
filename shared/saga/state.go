package saga

import (
	"github.com/parcelflow/fulfillment-system/shared/models"
	"github.com/pkg/errors"
)

// Status represents the lifecycle state of a saga
type Status string

const (
	StatusPending              Status = "PENDING"
	StatusProcessing           Status = "PROCESSING"
	StatusCompleted            Status = "COMPLETED"
	StatusCancelling           Status = "CANCELLING"
	StatusFailedAndCompensated Status = "FAILED_AND_COMPENSATED"
)

// IsTerminal reports whether no further transition is allowed
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusFailedAndCompensated
}

// OrderRequest is the caller-supplied order data, immutable once the saga
// has been created.
type OrderRequest struct {
	User            string `json:"user"`
	Product         string `json:"product"`
	Quantity        int    `json:"quantity"`
	ShippingAddress string `json:"shippingAddress"`
	PaymentDetails  string `json:"paymentDetails"`
}

// StepError is the failure record stored under a step's name when its
// forward action fails.
type StepError struct {
	Status     string `json:"status"`
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

// NewStepError creates the failure record for a step
func NewStepError(message string, statusCode int) StepError {
	return StepError{
		Status:     "FAILED",
		Error:      message,
		StatusCode: statusCode,
	}
}

// GeneratedData maps a collaborator name to the result object that
// collaborator returned, or to a StepError when its action failed. Entries
// are only added or overwritten, never removed.
type GeneratedData map[string]any

// SagaState is the transactional record for one order
type SagaState struct {
	OrderID               string        `json:"orderId"`
	Status                Status        `json:"status"`
	RequestData           OrderRequest  `json:"request_data"`
	GeneratedData         GeneratedData `json:"generatedData"`
	StepsCompleted        []string      `json:"stepsCompleted"`
	CompensationsExecuted []string      `json:"compensationsExecuted"`
}

// NewSagaState creates a saga in PENDING with a fresh order ID
func NewSagaState(request OrderRequest) *SagaState {
	return &SagaState{
		OrderID:               models.GenerateOrderID().String(),
		Status:                StatusPending,
		RequestData:           request,
		GeneratedData:         make(GeneratedData),
		StepsCompleted:        []string{},
		CompensationsExecuted: []string{},
	}
}

func (s *SagaState) transition(next Status) error {
	valid := map[Status][]Status{
		StatusPending:    {StatusProcessing},
		StatusProcessing: {StatusCompleted, StatusCancelling},
		StatusCancelling: {StatusFailedAndCompensated},
	}

	for _, allowed := range valid[s.Status] {
		if next == allowed {
			s.Status = next
			return nil
		}
	}
	return errors.Errorf("invalid saga transition %s -> %s", s.Status, next)
}

// BeginProcessing marks forward execution as started
func (s *SagaState) BeginProcessing() error {
	return s.transition(StatusProcessing)
}

// Complete marks the saga as successfully finished
func (s *SagaState) Complete() error {
	return s.transition(StatusCompleted)
}

// BeginCancelling marks the saga as failed with compensation starting
func (s *SagaState) BeginCancelling() error {
	return s.transition(StatusCancelling)
}

// MarkCompensated marks the compensation flow as finished, regardless of
// whether every individual compensation call succeeded.
func (s *SagaState) MarkCompensated() error {
	return s.transition(StatusFailedAndCompensated)
}

// RecordStepCompleted appends a step to the completed sequence
func (s *SagaState) RecordStepCompleted(name string) {
	s.StepsCompleted = append(s.StepsCompleted, name)
}

// RecordCompensation appends a step to the executed compensations
func (s *SagaState) RecordCompensation(name string) {
	s.CompensationsExecuted = append(s.CompensationsExecuted, name)
}

// Clone returns a deep copy of the saga record. Generated result values are
// treated as immutable once merged, so the map is copied entry by entry.
func (s *SagaState) Clone() *SagaState {
	clone := *s

	clone.GeneratedData = make(GeneratedData, len(s.GeneratedData))
	for k, v := range s.GeneratedData {
		clone.GeneratedData[k] = v
	}

	clone.StepsCompleted = append([]string{}, s.StepsCompleted...)
	clone.CompensationsExecuted = append([]string{}, s.CompensationsExecuted...)

	return &clone
}
