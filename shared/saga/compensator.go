package saga

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/parcelflow/fulfillment-system/shared/telemetry"
)

// Compensator undoes completed steps in reverse completion order. Every
// compensation is attempted exactly once; an individual failure is logged
// and never aborts the remaining rollback.
type Compensator struct {
	client *CollaboratorClient
	table  *StepTable
	store  Store
	logger *zap.Logger
}

// NewCompensator creates a compensation engine
func NewCompensator(client *CollaboratorClient, table *StepTable, store Store, logger *zap.Logger) *Compensator {
	return &Compensator{
		client: client,
		table:  table,
		store:  store,
		logger: logger,
	}
}

// Compensate posts the saga to each completed step's compensation endpoint,
// walking stepsCompleted backwards. A step is recorded as compensated only
// when its call returned 2xx.
func (c *Compensator) Compensate(ctx context.Context, state *SagaState) {
	c.logger.Info("starting compensation flow",
		zap.String("order_id", state.OrderID),
		zap.Strings("steps_completed", state.StepsCompleted),
	)

	for i := len(state.StepsCompleted) - 1; i >= 0; i-- {
		name := state.StepsCompleted[i]

		step, ok := c.table.Lookup(name)
		if !ok {
			// Completed names come from the table, so this means the
			// configuration changed underneath a running saga.
			c.logger.Error("completed step missing from step table",
				zap.String("order_id", state.OrderID),
				zap.String("step", name),
			)
			continue
		}

		c.logger.Info("compensating step",
			zap.String("order_id", state.OrderID),
			zap.String("step", name),
			zap.String("path", step.CompensationPath),
		)

		if _, err := c.client.Post(ctx, name, step.CompensationPath, state); err != nil {
			c.logger.Error("compensation call failed",
				zap.String("order_id", state.OrderID),
				zap.String("step", name),
				zap.Error(err),
			)
			telemetry.RecordCounter(ctx, "saga_compensation_failures_total", "Compensation calls that failed", 1,
				attribute.String("step", name),
			)
			continue
		}

		state.RecordCompensation(name)
		if err := c.store.Save(ctx, state); err != nil {
			c.logger.Error("failed to persist compensation progress",
				zap.String("order_id", state.OrderID),
				zap.String("step", name),
				zap.Error(err),
			)
		}
	}
}
