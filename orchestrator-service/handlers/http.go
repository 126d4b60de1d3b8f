package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/orchestrator-service/application"
	"github.com/parcelflow/fulfillment-system/shared/saga"
)

// OrderHandlers contains the orchestrator HTTP handlers
type OrderHandlers struct {
	createOrder *application.CreateOrder
	getSaga     *application.GetSagaStatus
}

// NewOrderHandlers creates new order handlers
func NewOrderHandlers(createOrder *application.CreateOrder, getSaga *application.GetSagaStatus) *OrderHandlers {
	return &OrderHandlers{
		createOrder: createOrder,
		getSaga:     getSaga,
	}
}

// CreateOrder handles order submission; the saga runs asynchronously and the
// client polls GET /sagas/{orderId} for progress.
func (h *OrderHandlers) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var cmd application.CreateOrderCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	response, _, err := h.createOrder.Execute(r.Context(), &cmd)
	if err != nil {
		var validationErr *application.ValidationError
		if errors.As(err, &validationErr) {
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(response)
}

// GetSaga handles saga status lookups
func (h *OrderHandlers) GetSaga(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "orderId")

	state, err := h.getSaga.Execute(r.Context(), &application.GetSagaQuery{OrderID: orderID})
	if err != nil {
		var validationErr *application.ValidationError
		switch {
		case errors.As(err, &validationErr):
			http.Error(w, validationErr.Error(), http.StatusBadRequest)
		case errors.Is(err, saga.ErrNotFound):
			http.Error(w, "SAGA with that Order ID not found.", http.StatusNotFound)
		default:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// RegisterRoutes registers orchestrator routes
func (h *OrderHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/orders", h.CreateOrder)
	r.Get("/sagas/{orderId}", h.GetSaga)
}
