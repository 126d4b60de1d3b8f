package saga

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelflow/fulfillment-system/shared/events"
)

// fakeService is an httptest collaborator that records every call and, by
// default, answers 200 with its result wrapped under its own name.
type fakeService struct {
	name string

	mu       sync.Mutex
	calls    map[string]int
	payloads map[string][]json.RawMessage
	respond  map[string]http.HandlerFunc
	delay    time.Duration

	server *httptest.Server
}

func newFakeService(t *testing.T, name string) *fakeService {
	f := &fakeService{
		name:     name,
		calls:    map[string]int{},
		payloads: map[string][]json.RawMessage{},
		respond:  map[string]http.HandlerFunc{},
	}
	f.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.calls[r.URL.Path]++
		f.payloads[r.URL.Path] = append(f.payloads[r.URL.Path], json.RawMessage(body))
		handler := f.respond[r.URL.Path]
		delay := f.delay
		f.mu.Unlock()

		if delay > 0 {
			time.Sleep(delay)
		}
		if handler != nil {
			handler(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{%q:{"ok":true,"path":%q}}`, f.name, r.URL.Path)
	}))
	t.Cleanup(f.server.Close)
	return f
}

func (f *fakeService) failWith(path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.respond[path] = func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		io.WriteString(w, body)
	}
}

func (f *fakeService) delayResponses(delay time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.delay = delay
}

func (f *fakeService) callCount(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeService) lastPayload(t *testing.T, path string) json.RawMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	payloads := f.payloads[path]
	require.NotEmpty(t, payloads, "no payload recorded for %s%s", f.name, path)
	return payloads[len(payloads)-1]
}

func defaultSteps() []StepDefinition {
	return []StepDefinition{
		{Name: "warehouse", ActionPath: "/reserve_space", CompensationPath: "/cancel_reservation"},
		{Name: "inventory", ActionPath: "/update_stock", CompensationPath: "/revert_stock"},
	}
}

func defaultTerminals() []TerminalStep {
	return []TerminalStep{
		{Name: "notification", Path: "/send_confirmation"},
		{Name: "tracking", Path: "/update_status"},
		{Name: "customer", Path: "/update_history"},
	}
}

func newTestRunner(t *testing.T, services []*fakeService, steps []StepDefinition, terminals []TerminalStep, timeout time.Duration) (*Runner, *MemoryStore) {
	endpoints := Endpoints{}
	for _, svc := range services {
		endpoints[svc.name] = svc.server.URL
	}

	table, err := NewStepTable(steps)
	require.NoError(t, err)

	store := NewMemoryStore()
	runner, err := NewRunner(RunnerParams{
		Store:     store,
		Client:    NewCollaboratorClient(endpoints, timeout),
		Table:     table,
		Terminals: terminals,
	})
	require.NoError(t, err)

	return runner, store
}

func awaitSaga(t *testing.T, done <-chan struct{}) {
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("saga did not finish in time")
	}
}

func TestRunner_HappyPath(t *testing.T) {
	warehouse := newFakeService(t, "warehouse")
	inventory := newFakeService(t, "inventory")
	notification := newFakeService(t, "notification")
	tracking := newFakeService(t, "tracking")
	customer := newFakeService(t, "customer")
	services := []*fakeService{warehouse, inventory, notification, tracking, customer}

	runner, _ := newTestRunner(t, services, defaultSteps(), defaultTerminals(), 2*time.Second)

	orderID, done, err := runner.CreateSaga(context.Background(), testRequest())
	require.NoError(t, err)
	assert.Contains(t, orderID, "ORD-")

	awaitSaga(t, done)

	state, err := runner.GetSaga(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, state.Status)
	assert.Equal(t, []string{"warehouse", "inventory"}, state.StepsCompleted)
	assert.Empty(t, state.CompensationsExecuted)
	assert.Contains(t, state.GeneratedData, "warehouse")
	assert.Contains(t, state.GeneratedData, "inventory")
	assert.Contains(t, state.GeneratedData, "notification")
	assert.Contains(t, state.GeneratedData, "tracking")
	assert.Contains(t, state.GeneratedData, "customer")

	// No compensation endpoints were touched
	assert.Zero(t, warehouse.callCount("/cancel_reservation"))
	assert.Zero(t, inventory.callCount("/revert_stock"))

	// Every terminal collaborator heard about the success exactly once
	for _, svc := range []*fakeService{notification, tracking, customer} {
		path := map[string]string{
			"notification": "/send_confirmation",
			"tracking":     "/update_status",
			"customer":     "/update_history",
		}[svc.name]
		assert.Equal(t, 1, svc.callCount(path))

		var notice TerminalNotice
		require.NoError(t, json.Unmarshal(svc.lastPayload(t, path), &notice))
		assert.True(t, notice.Success)
		assert.Equal(t, StatusCompleted, notice.Saga.Status)
		assert.Equal(t, orderID, notice.Saga.OrderID)
	}
}

func TestRunner_MidSequenceFailureCompensates(t *testing.T) {
	warehouse := newFakeService(t, "warehouse")
	inventory := newFakeService(t, "inventory")
	notification := newFakeService(t, "notification")
	tracking := newFakeService(t, "tracking")
	customer := newFakeService(t, "customer")
	services := []*fakeService{warehouse, inventory, notification, tracking, customer}

	inventory.failWith("/update_stock", http.StatusConflict, `{"error":"insufficient stock"}`)

	runner, _ := newTestRunner(t, services, defaultSteps(), defaultTerminals(), 2*time.Second)

	orderID, done, err := runner.CreateSaga(context.Background(), testRequest())
	require.NoError(t, err)
	awaitSaga(t, done)

	state, err := runner.GetSaga(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, StatusFailedAndCompensated, state.Status)
	assert.Equal(t, []string{"warehouse"}, state.StepsCompleted)
	assert.Equal(t, []string{"warehouse"}, state.CompensationsExecuted)

	// The failed step did not complete, but its error record is kept
	assert.Equal(t, NewStepError(`{"error":"insufficient stock"}`, http.StatusConflict), state.GeneratedData["inventory"])

	// Only completed steps are undone
	assert.Equal(t, 1, warehouse.callCount("/cancel_reservation"))
	assert.Zero(t, inventory.callCount("/revert_stock"))

	// Terminal collaborators heard about the failure
	var notice TerminalNotice
	require.NoError(t, json.Unmarshal(notification.lastPayload(t, "/send_confirmation"), &notice))
	assert.False(t, notice.Success)
	assert.Equal(t, StatusFailedAndCompensated, notice.Saga.Status)
}

func TestRunner_CompensationFailureDoesNotAbortRollback(t *testing.T) {
	warehouse := newFakeService(t, "warehouse")
	inventory := newFakeService(t, "inventory")
	pkg := newFakeService(t, "package")
	notification := newFakeService(t, "notification")
	services := []*fakeService{warehouse, inventory, pkg, notification}

	steps := append(defaultSteps(), StepDefinition{
		Name: "package", ActionPath: "/create_package", CompensationPath: "/discard_package",
	})
	terminals := []TerminalStep{{Name: "notification", Path: "/send_confirmation"}}

	// Third step fails, then the second step's undo also fails
	pkg.failWith("/create_package", http.StatusInternalServerError, `{"error":"printer on fire"}`)
	inventory.failWith("/revert_stock", http.StatusInternalServerError, `{"error":"revert broken"}`)

	runner, _ := newTestRunner(t, services, steps, terminals, 2*time.Second)

	orderID, done, err := runner.CreateSaga(context.Background(), testRequest())
	require.NoError(t, err)
	awaitSaga(t, done)

	state, err := runner.GetSaga(context.Background(), orderID)
	require.NoError(t, err)

	// The saga still reaches its terminal state and the remaining
	// compensations still run
	assert.Equal(t, StatusFailedAndCompensated, state.Status)
	assert.Equal(t, []string{"warehouse", "inventory"}, state.StepsCompleted)
	assert.Equal(t, []string{"warehouse"}, state.CompensationsExecuted)

	assert.Equal(t, 1, inventory.callCount("/revert_stock"))
	assert.Equal(t, 1, warehouse.callCount("/cancel_reservation"))
	assert.Equal(t, 1, notification.callCount("/send_confirmation"))
}

func TestRunner_TimeoutIsAFailure(t *testing.T) {
	warehouse := newFakeService(t, "warehouse")
	inventory := newFakeService(t, "inventory")
	services := []*fakeService{warehouse, inventory}

	warehouse.delayResponses(300 * time.Millisecond)

	runner, _ := newTestRunner(t, services, defaultSteps(), nil, 50*time.Millisecond)

	orderID, done, err := runner.CreateSaga(context.Background(), testRequest())
	require.NoError(t, err)
	awaitSaga(t, done)

	state, err := runner.GetSaga(context.Background(), orderID)
	require.NoError(t, err)

	assert.Equal(t, StatusFailedAndCompensated, state.Status)
	assert.Empty(t, state.StepsCompleted)
	assert.Empty(t, state.CompensationsExecuted)
	assert.Zero(t, inventory.callCount("/update_stock"))

	// A transport-level failure is recorded with status code zero
	stepErr, ok := state.GeneratedData["warehouse"].(StepError)
	require.True(t, ok, "expected a step error record, got %T", state.GeneratedData["warehouse"])
	assert.Equal(t, "FAILED", stepErr.Status)
	assert.Zero(t, stepErr.StatusCode)
}

func TestRunner_GetSagaNotFound(t *testing.T) {
	warehouse := newFakeService(t, "warehouse")
	runner, _ := newTestRunner(t, []*fakeService{warehouse}, []StepDefinition{
		{Name: "warehouse", ActionPath: "/reserve_space", CompensationPath: "/cancel_reservation"},
	}, nil, time.Second)

	_, err := runner.GetSaga(context.Background(), "ORD-does-not-exist")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRunner_TerminalFailureDoesNotSuppressOthers(t *testing.T) {
	warehouse := newFakeService(t, "warehouse")
	inventory := newFakeService(t, "inventory")
	notification := newFakeService(t, "notification")
	tracking := newFakeService(t, "tracking")
	customer := newFakeService(t, "customer")
	services := []*fakeService{warehouse, inventory, notification, tracking, customer}

	tracking.failWith("/update_status", http.StatusInternalServerError, `{"error":"down"}`)

	runner, _ := newTestRunner(t, services, defaultSteps(), defaultTerminals(), 2*time.Second)

	orderID, done, err := runner.CreateSaga(context.Background(), testRequest())
	require.NoError(t, err)
	awaitSaga(t, done)

	state, err := runner.GetSaga(context.Background(), orderID)
	require.NoError(t, err)

	// The saga outcome is untouched by the terminal failure
	assert.Equal(t, StatusCompleted, state.Status)

	assert.Equal(t, 1, notification.callCount("/send_confirmation"))
	assert.Equal(t, 1, tracking.callCount("/update_status"))
	assert.Equal(t, 1, customer.callCount("/update_history"))

	assert.Contains(t, state.GeneratedData, "notification")
	assert.Contains(t, state.GeneratedData, "customer")
	assert.NotContains(t, state.GeneratedData, "tracking")
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*events.Event
}

func (f *fakePublisher) Publish(_ context.Context, evts ...*events.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, evts...)
	return nil
}

func (f *fakePublisher) eventTypes() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make([]string, 0, len(f.events))
	for _, event := range f.events {
		types = append(types, event.EventType)
	}
	return types
}

func TestRunner_PublishesLifecycleEvents(t *testing.T) {
	warehouse := newFakeService(t, "warehouse")
	inventory := newFakeService(t, "inventory")
	services := []*fakeService{warehouse, inventory}

	endpoints := Endpoints{}
	for _, svc := range services {
		endpoints[svc.name] = svc.server.URL
	}
	table, err := NewStepTable(defaultSteps())
	require.NoError(t, err)

	tests := []struct {
		name          string
		arrange       func()
		expectedTypes []string
	}{
		{
			name:    "completed saga",
			arrange: func() {},
			expectedTypes: []string{
				events.OrderReceivedEvent,
				events.SagaStartedEvent,
				events.SagaCompletedEvent,
			},
		},
		{
			name: "compensated saga",
			arrange: func() {
				inventory.failWith("/update_stock", http.StatusConflict, `{"error":"insufficient stock"}`)
			},
			expectedTypes: []string{
				events.OrderReceivedEvent,
				events.SagaStartedEvent,
				events.SagaFailedEvent,
				events.SagaCompensatedEvent,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.arrange()
			publisher := &fakePublisher{}

			runner, err := NewRunner(RunnerParams{
				Store:     NewMemoryStore(),
				Client:    NewCollaboratorClient(endpoints, 2*time.Second),
				Table:     table,
				Publisher: publisher,
			})
			require.NoError(t, err)

			orderID, done, err := runner.CreateSaga(context.Background(), testRequest())
			require.NoError(t, err)
			awaitSaga(t, done)

			assert.Equal(t, tt.expectedTypes, publisher.eventTypes())
			for _, event := range publisher.events {
				assert.Equal(t, orderID, event.AggregateID)
				assert.Equal(t, orderID, event.CorrelationID)
				assert.Equal(t, "saga-runner", event.Metadata["source"])
			}
		})
	}
}

func TestNewRunner_Validation(t *testing.T) {
	table, err := NewStepTable(defaultSteps())
	require.NoError(t, err)
	client := NewCollaboratorClient(Endpoints{}, time.Second)
	store := NewMemoryStore()

	tests := []struct {
		name          string
		params        RunnerParams
		expectedError error
	}{
		{
			name:          "missing store",
			params:        RunnerParams{Client: client, Table: table},
			expectedError: ErrStoreNotConfigured,
		},
		{
			name:          "missing client",
			params:        RunnerParams{Store: store, Table: table},
			expectedError: ErrClientNotConfigured,
		},
		{
			name:          "missing table",
			params:        RunnerParams{Store: store, Client: client},
			expectedError: ErrTableNotConfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner, err := NewRunner(tt.params)
			assert.ErrorIs(t, err, tt.expectedError)
			assert.Nil(t, runner)
		})
	}
}
