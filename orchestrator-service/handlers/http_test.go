package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelflow/fulfillment-system/orchestrator-service/application"
	"github.com/parcelflow/fulfillment-system/shared/saga"
)

// newTestRouter wires real use cases over a memory store and a single fake
// collaborator standing in for every configured step.
func newTestRouter(t *testing.T) *chi.Mux {
	collaborator := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"warehouse":{"ok":true},"inventory":{"ok":true}}`)
	}))
	t.Cleanup(collaborator.Close)

	table, err := saga.NewStepTable([]saga.StepDefinition{
		{Name: "warehouse", ActionPath: "/reserve_space", CompensationPath: "/cancel_reservation"},
		{Name: "inventory", ActionPath: "/update_stock", CompensationPath: "/revert_stock"},
	})
	require.NoError(t, err)

	runner, err := saga.NewRunner(saga.RunnerParams{
		Store: saga.NewMemoryStore(),
		Client: saga.NewCollaboratorClient(saga.Endpoints{
			"warehouse": collaborator.URL,
			"inventory": collaborator.URL,
		}, 2*time.Second),
		Table: table,
	})
	require.NoError(t, err)

	handlers := NewOrderHandlers(
		application.NewCreateOrder(runner),
		application.NewGetSagaStatus(runner),
	)

	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
	handlers.RegisterRoutes(r)
	return r
}

func TestOrderHandlers_CreateOrder(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "accepted",
			body:           `{"user":"alice","product":"laptop","quantity":2,"shippingAddress":"123 Main St","paymentDetails":"tok_visa"}`,
			expectedStatus: http.StatusAccepted,
			expectedBody:   "Order processing started.",
		},
		{
			name:           "malformed json",
			body:           `{"user":`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "Invalid request body",
		},
		{
			name:           "missing user",
			body:           `{"product":"laptop","quantity":2,"shippingAddress":"123 Main St","paymentDetails":"tok_visa"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "user is required",
		},
		{
			name:           "zero quantity",
			body:           `{"user":"alice","product":"laptop","quantity":0,"shippingAddress":"123 Main St","paymentDetails":"tok_visa"}`,
			expectedStatus: http.StatusBadRequest,
			expectedBody:   "quantity must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t)

			req := httptest.NewRequest(http.MethodPost, "/orders", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)

			if tt.expectedStatus == http.StatusAccepted {
				var response application.CreateOrderResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
				assert.True(t, strings.HasPrefix(response.OrderID, "ORD-"))
			}
		})
	}
}

func TestOrderHandlers_GetSaga(t *testing.T) {
	router := newTestRouter(t)

	// Unknown order IDs are a 404
	req := httptest.NewRequest(http.MethodGet, "/sagas/ORD-does-not-exist", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "SAGA with that Order ID not found.")

	// A created saga is immediately observable
	createReq := httptest.NewRequest(http.MethodPost, "/orders",
		strings.NewReader(`{"user":"alice","product":"laptop","quantity":2,"shippingAddress":"123 Main St","paymentDetails":"tok_visa"}`))
	createRec := httptest.NewRecorder()
	router.ServeHTTP(createRec, createReq)
	require.Equal(t, http.StatusAccepted, createRec.Code)

	var created application.CreateOrderResponse
	require.NoError(t, json.Unmarshal(createRec.Body.Bytes(), &created))

	req = httptest.NewRequest(http.MethodGet, "/sagas/"+created.OrderID, nil)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	var state saga.SagaState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))
	assert.Equal(t, created.OrderID, state.OrderID)
	assert.NotEmpty(t, state.Status)
}

func TestHealthEndpoint(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
