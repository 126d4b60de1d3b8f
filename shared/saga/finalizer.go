package saga

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// TerminalNotice is the payload posted to terminal collaborators after the
// saga concludes.
type TerminalNotice struct {
	Success bool       `json:"success"`
	Saga    *SagaState `json:"saga"`
}

// Finalizer notifies the fixed set of terminal collaborators of the saga's
// outcome. Each call is independent and best-effort: one failure never
// prevents the others, alters the saga status, or surfaces to the caller.
type Finalizer struct {
	client    *CollaboratorClient
	terminals []TerminalStep
	merger    *ResultMerger
	store     Store
	logger    *zap.Logger
}

// NewFinalizer creates a final-step dispatcher
func NewFinalizer(client *CollaboratorClient, terminals []TerminalStep, merger *ResultMerger, store Store, logger *zap.Logger) *Finalizer {
	return &Finalizer{
		client:    client,
		terminals: terminals,
		merger:    merger,
		store:     store,
		logger:    logger,
	}
}

// Dispatch fans out to all terminal collaborators concurrently, then merges
// whatever results came back and persists the saga once.
func (f *Finalizer) Dispatch(ctx context.Context, state *SagaState, success bool) {
	if len(f.terminals) == 0 {
		return
	}

	notice := &TerminalNotice{Success: success, Saga: state}
	results := make([]map[string]json.RawMessage, len(f.terminals))

	g := new(errgroup.Group)
	for i, terminal := range f.terminals {
		i, terminal := i, terminal
		g.Go(func() error {
			f.logger.Info("calling final service",
				zap.String("order_id", state.OrderID),
				zap.String("collaborator", terminal.Name),
				zap.Bool("success", success),
			)

			body, err := f.client.Post(ctx, terminal.Name, terminal.Path, notice)
			if err != nil {
				f.logger.Warn("final service call failed",
					zap.String("order_id", state.OrderID),
					zap.String("collaborator", terminal.Name),
					zap.Error(err),
				)
				return nil
			}
			results[i] = body
			return nil
		})
	}
	_ = g.Wait()

	for i, terminal := range f.terminals {
		body := results[i]
		if body == nil {
			continue
		}
		raw, ok := body[terminal.Name]
		if !ok {
			continue
		}
		if err := f.merger.Merge(state, terminal.Name, raw); err != nil {
			f.logger.Error("cannot record terminal result",
				zap.String("order_id", state.OrderID),
				zap.String("collaborator", terminal.Name),
				zap.Error(err),
			)
		}
	}

	if err := f.store.Save(ctx, state); err != nil {
		f.logger.Error("failed to persist terminal results",
			zap.String("order_id", state.OrderID),
			zap.Error(err),
		)
	}
}
