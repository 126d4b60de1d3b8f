package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/inventory-service/application"
	"github.com/parcelflow/fulfillment-system/inventory-service/domain"
)

// sagaPayload is the slice of the orchestrator's saga state this service
// reads. Unknown fields are ignored.
type sagaPayload struct {
	OrderID     string `json:"orderId"`
	RequestData struct {
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	} `json:"request_data"`
}

// InventoryHandlers contains the inventory HTTP handlers
type InventoryHandlers struct {
	updateStock *application.UpdateStock
	revertStock *application.RevertStock
	listStocks  *application.ListStocks
}

// NewInventoryHandlers creates new inventory handlers
func NewInventoryHandlers(
	updateStock *application.UpdateStock,
	revertStock *application.RevertStock,
	listStocks *application.ListStocks,
) *InventoryHandlers {
	return &InventoryHandlers{
		updateStock: updateStock,
		revertStock: revertStock,
		listStocks:  listStocks,
	}
}

// UpdateStock handles the forward saga step. Insufficient stock is a 409 so
// the orchestrator starts compensation.
func (h *InventoryHandlers) UpdateStock(w http.ResponseWriter, r *http.Request) {
	var payload sagaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.updateStock.Execute(r.Context(), &application.UpdateStockCommand{
		OrderID:  payload.OrderID,
		Product:  payload.RequestData.Product,
		Quantity: payload.RequestData.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInsufficientStock):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, application.ErrMissingProduct), errors.Is(err, application.ErrInvalidQuantity):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}

	writeResult(w, response)
}

// RevertStock handles the compensating saga step
func (h *InventoryHandlers) RevertStock(w http.ResponseWriter, r *http.Request) {
	var payload sagaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.revertStock.Execute(r.Context(), &application.RevertStockCommand{
		OrderID: payload.OrderID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeResult(w, response)
}

// ListStocks returns the whole stock ledger
func (h *InventoryHandlers) ListStocks(w http.ResponseWriter, r *http.Request) {
	response, err := h.listStocks.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers inventory routes
func (h *InventoryHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/update_stock", h.UpdateStock)
	r.Post("/revert_stock", h.RevertStock)
	r.Get("/stocks", h.ListStocks)
}

// writeResult wraps the result under the collaborator's name so the
// orchestrator can merge it into the saga's generated data.
func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"inventory": result})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
