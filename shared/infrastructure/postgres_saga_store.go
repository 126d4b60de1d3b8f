package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/shared/saga"
)

// PostgresSagaStore implements saga.Store on PostgreSQL. The full saga
// record is serialized into a single jsonb column and replaced as one row
// per write, which is what gives Save its whole-record atomicity.
//
// Expected schema:
//
//	CREATE TABLE sagas (
//	    order_id   TEXT PRIMARY KEY,
//	    status     TEXT NOT NULL,
//	    state      JSONB NOT NULL,
//	    created_at TIMESTAMPTZ NOT NULL,
//	    updated_at TIMESTAMPTZ NOT NULL
//	);
type PostgresSagaStore struct {
	db *sqlx.DB
}

var _ saga.Store = (*PostgresSagaStore)(nil)

// NewPostgresSagaStore creates a new PostgresSagaStore
func NewPostgresSagaStore(db *sqlx.DB) *PostgresSagaStore {
	return &PostgresSagaStore{db: db}
}

type sagaRow struct {
	OrderID   string    `db:"order_id"`
	Status    string    `db:"status"`
	State     []byte    `db:"state"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const pqUniqueViolation = "23505"

// Create inserts a new saga record
func (s *PostgresSagaStore) Create(ctx context.Context, state *saga.SagaState) error {
	row, err := toRow(state)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO sagas (order_id, status, state, created_at, updated_at)
		VALUES (:order_id, :status, :state, :created_at, :updated_at)`

	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation {
			return saga.ErrAlreadyExists
		}
		return errors.Wrap(err, "failed to insert saga")
	}

	return nil
}

// Get returns a snapshot of the saga record
func (s *PostgresSagaStore) Get(ctx context.Context, orderID string) (*saga.SagaState, error) {
	var row sagaRow
	err := s.db.GetContext(ctx, &row,
		"SELECT order_id, status, state, created_at, updated_at FROM sagas WHERE order_id = $1",
		orderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, saga.ErrNotFound
		}
		return nil, errors.Wrap(err, "failed to get saga")
	}

	var state saga.SagaState
	if err := json.Unmarshal(row.State, &state); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal saga state")
	}

	return &state, nil
}

// Save replaces the stored record wholesale in a single UPDATE
func (s *PostgresSagaStore) Save(ctx context.Context, state *saga.SagaState) error {
	row, err := toRow(state)
	if err != nil {
		return err
	}

	res, err := s.db.NamedExecContext(ctx,
		"UPDATE sagas SET status = :status, state = :state, updated_at = :updated_at WHERE order_id = :order_id",
		row)
	if err != nil {
		return errors.Wrap(err, "failed to update saga")
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "failed to check update result")
	}
	if affected == 0 {
		return saga.ErrNotFound
	}

	return nil
}

func toRow(state *saga.SagaState) (*sagaRow, error) {
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal saga state")
	}

	now := time.Now()
	return &sagaRow{
		OrderID:   state.OrderID,
		Status:    string(state.Status),
		State:     raw,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
