package saga

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound indicates no saga exists for the given order ID.
	ErrNotFound = errors.New("saga not found")

	// ErrAlreadyExists indicates a saga was already created with the same
	// order ID.
	ErrAlreadyExists = errors.New("saga already exists")
)

// Store is the keyed registry of saga records. Save replaces the stored
// record wholesale, so a concurrent reader observes either the pre-update or
// the post-update record in full, never a torn mix of fields.
type Store interface {
	// Create stores a new saga, failing with ErrAlreadyExists on a
	// duplicate order ID.
	Create(ctx context.Context, state *SagaState) error

	// Get returns a snapshot of the saga, or ErrNotFound.
	Get(ctx context.Context, orderID string) (*SagaState, error)

	// Save atomically replaces the stored record, failing with
	// ErrNotFound when the saga was never created.
	Save(ctx context.Context, state *SagaState) error
}
