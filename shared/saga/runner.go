package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/shared/events"
	"github.com/parcelflow/fulfillment-system/shared/telemetry"
)

var (
	// ErrStoreNotConfigured indicates the saga store is missing.
	ErrStoreNotConfigured = errors.New("saga store not configured")

	// ErrClientNotConfigured indicates the collaborator client is missing.
	ErrClientNotConfigured = errors.New("collaborator client not configured")

	// ErrTableNotConfigured indicates the step table is missing.
	ErrTableNotConfigured = errors.New("step table not configured")
)

// RunnerParams configures a saga runner
type RunnerParams struct {
	// Store is required for persisting saga state.
	Store Store

	// Client is required for calling collaborators.
	Client *CollaboratorClient

	// Table is the ordered forward sequence and its undo mapping.
	Table *StepTable

	// Terminals are the collaborators notified of the final outcome.
	Terminals []TerminalStep

	// Publisher emits saga lifecycle events, best-effort. Optional.
	Publisher events.Publisher

	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// Runner orchestrates one end-to-end saga execution per order: forward
// steps, compensation on failure, then terminal notification. Each saga runs
// as an independent unit of work decoupled from the request that created it.
type Runner struct {
	store       Store
	executor    *Executor
	compensator *Compensator
	finalizer   *Finalizer
	publisher   events.Publisher
	logger      *zap.Logger
}

// NewRunner validates the params and wires the executor, compensation
// engine, and final-step dispatcher over a shared result dispatch table.
func NewRunner(params RunnerParams) (*Runner, error) {
	if params.Store == nil {
		return nil, ErrStoreNotConfigured
	}
	if params.Client == nil {
		return nil, ErrClientNotConfigured
	}
	if params.Table == nil {
		return nil, ErrTableNotConfigured
	}

	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	names := params.Table.Names()
	for _, terminal := range params.Terminals {
		names = append(names, terminal.Name)
	}
	merger := NewResultMerger(names...)

	return &Runner{
		store:       params.Store,
		executor:    NewExecutor(params.Client, params.Table, merger, params.Store, logger),
		compensator: NewCompensator(params.Client, params.Table, params.Store, logger),
		finalizer:   NewFinalizer(params.Client, params.Terminals, merger, params.Store, logger),
		publisher:   params.Publisher,
		logger:      logger,
	}, nil
}

// CreateSaga stores a fresh saga in PENDING and schedules its asynchronous
// execution. It returns before the run begins; the returned channel closes
// once the run, including terminal notification, has finished.
func (r *Runner) CreateSaga(ctx context.Context, request OrderRequest) (string, <-chan struct{}, error) {
	state := NewSagaState(request)
	if err := r.store.Create(ctx, state); err != nil {
		return "", nil, err
	}

	r.logger.Info("saga created", zap.String("order_id", state.OrderID))
	r.publish(ctx, events.NewEvent(state.OrderID, events.OrderReceivedEvent, request))

	// The run outlives the creating request; only its cancellation is
	// dropped, context values (telemetry) carry over.
	runCtx := context.WithoutCancel(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		r.run(runCtx, state.OrderID)
	}()

	return state.OrderID, done, nil
}

// GetSaga returns a snapshot of the saga, or ErrNotFound
func (r *Runner) GetSaga(ctx context.Context, orderID string) (*SagaState, error) {
	return r.store.Get(ctx, orderID)
}

func (r *Runner) run(ctx context.Context, orderID string) {
	ctx, span := telemetry.StartSpan(ctx, "saga.run",
		trace.WithAttributes(attribute.String("order_id", orderID)),
	)
	defer span.End()

	state, err := r.store.Get(ctx, orderID)
	if err != nil {
		r.logger.Error("cannot load saga for execution", zap.String("order_id", orderID), zap.Error(err))
		return
	}

	start := time.Now()

	if err := r.advance(ctx, state, state.BeginProcessing); err != nil {
		return
	}
	r.publish(ctx, events.NewEvent(orderID, events.SagaStartedEvent, state.RequestData))
	telemetry.RecordCounter(ctx, "saga_started_total", "Sagas started", 1)

	failure := r.executor.ExecuteForward(ctx, state)
	if failure == nil {
		if err := r.advance(ctx, state, state.Complete); err != nil {
			return
		}
		r.logger.Info("saga completed", zap.String("order_id", orderID), zap.Strings("steps_completed", state.StepsCompleted))
		r.publish(ctx, events.NewEvent(orderID, events.SagaCompletedEvent, map[string]any{
			"stepsCompleted": state.StepsCompleted,
		}))
		telemetry.RecordCounter(ctx, "saga_completed_total", "Sagas completed", 1)

		r.finalizer.Dispatch(ctx, state, true)
	} else {
		r.logger.Error("saga step failed",
			zap.String("order_id", orderID),
			zap.String("step", failure.Step),
			zap.Error(failure.Cause),
		)
		if err := r.advance(ctx, state, state.BeginCancelling); err != nil {
			return
		}
		r.publish(ctx, events.NewEvent(orderID, events.SagaFailedEvent, map[string]any{
			"failedStep": failure.Step,
			"statusCode": failure.Cause.StatusCode,
			"error":      failure.Cause.Message,
		}))
		telemetry.RecordCounter(ctx, "saga_failed_total", "Sagas that failed a forward step", 1,
			attribute.String("step", failure.Step),
		)

		r.compensator.Compensate(ctx, state)

		if err := r.advance(ctx, state, state.MarkCompensated); err != nil {
			return
		}
		r.publish(ctx, events.NewEvent(orderID, events.SagaCompensatedEvent, map[string]any{
			"compensationsExecuted": state.CompensationsExecuted,
		}))
		telemetry.RecordCounter(ctx, "saga_compensated_total", "Sagas that finished compensation", 1)

		r.finalizer.Dispatch(ctx, state, false)
	}

	telemetry.RecordHistogram(ctx, "saga_duration_seconds", "End-to-end saga duration",
		time.Since(start).Seconds(),
		attribute.String("status", string(state.Status)),
	)
	r.logger.Info("saga finished",
		zap.String("order_id", orderID),
		zap.String("status", string(state.Status)),
	)
}

// advance applies a state transition and persists the whole record
func (r *Runner) advance(ctx context.Context, state *SagaState, transition func() error) error {
	if err := transition(); err != nil {
		r.logger.Error("saga transition rejected", zap.String("order_id", state.OrderID), zap.Error(err))
		return err
	}
	if err := r.store.Save(ctx, state); err != nil {
		r.logger.Error("failed to persist saga state", zap.String("order_id", state.OrderID), zap.Error(err))
		return err
	}
	return nil
}

func (r *Runner) publish(ctx context.Context, event *events.Event) {
	if r.publisher == nil {
		return
	}
	event.WithCorrelationID(event.AggregateID).
		WithMetadata("source", "saga-runner")
	if err := r.publisher.Publish(ctx, event); err != nil {
		r.logger.Warn("failed to publish lifecycle event",
			zap.String("event", event.EventType),
			zap.String("order_id", event.AggregateID),
			zap.Error(err),
		)
	}
}
