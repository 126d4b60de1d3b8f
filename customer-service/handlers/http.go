package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/customer-service/application"
)

// noticePayload is the slice of the orchestrator's terminal notice this
// service reads. Unknown fields are ignored.
type noticePayload struct {
	Success bool `json:"success"`
	Saga    struct {
		OrderID     string `json:"orderId"`
		RequestData struct {
			User    string `json:"user"`
			Product string `json:"product"`
		} `json:"request_data"`
	} `json:"saga"`
}

// CustomerHandlers contains the customer HTTP handlers
type CustomerHandlers struct {
	updateHistory *application.UpdateHistory
	cancelHistory *application.CancelHistory
	listHistory   *application.ListHistory
}

// NewCustomerHandlers creates new customer handlers
func NewCustomerHandlers(
	updateHistory *application.UpdateHistory,
	cancelHistory *application.CancelHistory,
	listHistory *application.ListHistory,
) *CustomerHandlers {
	return &CustomerHandlers{
		updateHistory: updateHistory,
		cancelHistory: cancelHistory,
		listHistory:   listHistory,
	}
}

// UpdateHistory handles the terminal saga notice, recording the order's
// outcome in the customer's purchase history
func (h *CustomerHandlers) UpdateHistory(w http.ResponseWriter, r *http.Request) {
	var payload noticePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.updateHistory.Execute(r.Context(), &application.UpdateHistoryCommand{
		OrderID:   payload.Saga.OrderID,
		User:      payload.Saga.RequestData.User,
		Product:   payload.Saga.RequestData.Product,
		Succeeded: payload.Success,
	})
	if err != nil {
		if errors.Is(err, application.ErrMissingOrderID) || errors.Is(err, application.ErrMissingUser) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeResult(w, response)
}

// CancelHistory handles the compensating call, marking the order cancelled
func (h *CustomerHandlers) CancelHistory(w http.ResponseWriter, r *http.Request) {
	var payload noticePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.cancelHistory.Execute(r.Context(), &application.CancelHistoryCommand{
		OrderID: payload.Saga.OrderID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeResult(w, response)
}

// ListHistory returns the full purchase history
func (h *CustomerHandlers) ListHistory(w http.ResponseWriter, r *http.Request) {
	response, err := h.listHistory.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers customer routes
func (h *CustomerHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/update_history", h.UpdateHistory)
	r.Post("/update_history_cancellation", h.CancelHistory)
	r.Get("/history", h.ListHistory)
}

// writeResult wraps the result under the collaborator's name so the
// orchestrator can merge it into the saga's generated data.
func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"customer": result})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
