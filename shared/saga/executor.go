package saga

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/parcelflow/fulfillment-system/shared/telemetry"
)

// StepFailure identifies the step whose forward action failed. The name is
// captured at the failure site, from the step being processed, never
// inferred from surrounding loop state.
type StepFailure struct {
	Step  string
	Cause *CallError
}

// Executor drives the forward sequence in step-table order, persisting the
// saga after every completed step so its status is observable mid-flight.
type Executor struct {
	client *CollaboratorClient
	table  *StepTable
	merger *ResultMerger
	store  Store
	logger *zap.Logger
}

// NewExecutor creates a step executor
func NewExecutor(client *CollaboratorClient, table *StepTable, merger *ResultMerger, store Store, logger *zap.Logger) *Executor {
	return &Executor{
		client: client,
		table:  table,
		merger: merger,
		store:  store,
		logger: logger,
	}
}

// ExecuteForward runs every step's action in order, stopping at the first
// failure. The failed step's action did not complete, so it is excluded from
// the completed sequence; its error record is stored under its name.
func (e *Executor) ExecuteForward(ctx context.Context, state *SagaState) *StepFailure {
	for _, step := range e.table.Steps() {
		e.logger.Info("executing step",
			zap.String("order_id", state.OrderID),
			zap.String("step", step.Name),
			zap.String("path", step.ActionPath),
		)

		start := time.Now()
		body, err := e.client.Post(ctx, step.Name, step.ActionPath, state)
		telemetry.RecordHistogram(ctx, "saga_step_duration_seconds", "Forward step call duration",
			time.Since(start).Seconds(),
			attribute.String("step", step.Name),
			attribute.Bool("success", err == nil),
		)

		if err != nil {
			callErr, ok := err.(*CallError)
			if !ok {
				callErr = &CallError{Message: err.Error()}
			}
			if mergeErr := e.merger.Merge(state, step.Name, NewStepError(callErr.Message, callErr.StatusCode)); mergeErr != nil {
				e.logger.Error("cannot record step failure",
					zap.String("order_id", state.OrderID),
					zap.String("step", step.Name),
					zap.Error(mergeErr),
				)
			}
			return &StepFailure{Step: step.Name, Cause: callErr}
		}

		// The collaborator's result lives under its own name in the
		// response body; a missing key records a null result.
		var result any
		if raw, ok := body[step.Name]; ok {
			result = raw
		}
		if err := e.merger.Merge(state, step.Name, result); err != nil {
			return &StepFailure{Step: step.Name, Cause: &CallError{Message: err.Error()}}
		}

		state.RecordStepCompleted(step.Name)
		if err := e.store.Save(ctx, state); err != nil {
			e.logger.Error("failed to persist saga progress",
				zap.String("order_id", state.OrderID),
				zap.String("step", step.Name),
				zap.Error(err),
			)
			return &StepFailure{Step: step.Name, Cause: &CallError{Message: err.Error()}}
		}
	}

	return nil
}
