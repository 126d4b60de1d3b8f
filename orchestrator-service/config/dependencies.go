package config

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/parcelflow/fulfillment-system/orchestrator-service/application"
	"github.com/parcelflow/fulfillment-system/orchestrator-service/handlers"
	"github.com/parcelflow/fulfillment-system/shared/events"
	sharedinfra "github.com/parcelflow/fulfillment-system/shared/infrastructure"
	"github.com/parcelflow/fulfillment-system/shared/saga"
)

type Dependencies struct {
	// Database (only set with the postgres store driver)
	DB *sqlx.DB

	// Saga engine
	Store  saga.Store
	Runner *saga.Runner

	// Use Cases
	CreateOrder   *application.CreateOrder
	GetSagaStatus *application.GetSagaStatus

	// HTTP Handlers
	OrderHandlers *handlers.OrderHandlers

	// Infrastructure
	EventPublisher *sharedinfra.SNSPublisherAdapter
}

func BuildDependencies(cfg *Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{}

	store, err := buildStore(cfg, deps)
	if err != nil {
		return nil, err
	}
	deps.Store = store

	var publisher events.Publisher
	if cfg.AWS.PublishEvents {
		snsPublisher, err := sharedinfra.NewSNSPublisherAdapter(cfg.AWS.SNSTopicArn)
		if err != nil {
			return nil, fmt.Errorf("failed to create SNS publisher: %w", err)
		}
		deps.EventPublisher = snsPublisher
		publisher = snsPublisher
	}

	table, err := saga.NewStepTable(cfg.Saga.Steps)
	if err != nil {
		return nil, fmt.Errorf("invalid step table: %w", err)
	}

	client := saga.NewCollaboratorClient(saga.Endpoints(cfg.Saga.Collaborators), cfg.StepTimeout())

	runner, err := saga.NewRunner(saga.RunnerParams{
		Store:     store,
		Client:    client,
		Table:     table,
		Terminals: cfg.Saga.TerminalSteps,
		Publisher: publisher,
		Logger:    logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build saga runner: %w", err)
	}
	deps.Runner = runner

	deps.CreateOrder = application.NewCreateOrder(runner)
	deps.GetSagaStatus = application.NewGetSagaStatus(runner)

	deps.OrderHandlers = handlers.NewOrderHandlers(deps.CreateOrder, deps.GetSagaStatus)

	return deps, nil
}

func buildStore(cfg *Config, deps *Dependencies) (saga.Store, error) {
	switch cfg.Store.Driver {
	case "", "memory":
		return saga.NewMemoryStore(), nil
	case "postgres":
		db, err := sqlx.Connect("postgres", cfg.GetDatabaseURL())
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		deps.DB = db
		return sharedinfra.NewPostgresSagaStore(db), nil
	default:
		return nil, fmt.Errorf("unknown saga store driver %q", cfg.Store.Driver)
	}
}

// Close closes all dependencies
func (d *Dependencies) Close() error {
	var errs []error

	if d.DB != nil {
		if err := d.DB.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if d.EventPublisher != nil {
		if err := d.EventPublisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close event publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors closing dependencies: %v", errs)
	}

	return nil
}
