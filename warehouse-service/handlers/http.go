package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/warehouse-service/application"
)

// sagaPayload is the slice of the orchestrator's saga state this service
// reads. Unknown fields are ignored.
type sagaPayload struct {
	OrderID     string `json:"orderId"`
	RequestData struct {
		User     string `json:"user"`
		Product  string `json:"product"`
		Quantity int    `json:"quantity"`
	} `json:"request_data"`
}

// WarehouseHandlers contains the warehouse HTTP handlers
type WarehouseHandlers struct {
	reserveSpace      *application.ReserveSpace
	cancelReservation *application.CancelReservation
	listReservations  *application.ListReservations
}

// NewWarehouseHandlers creates new warehouse handlers
func NewWarehouseHandlers(
	reserveSpace *application.ReserveSpace,
	cancelReservation *application.CancelReservation,
	listReservations *application.ListReservations,
) *WarehouseHandlers {
	return &WarehouseHandlers{
		reserveSpace:      reserveSpace,
		cancelReservation: cancelReservation,
		listReservations:  listReservations,
	}
}

// ReserveSpace handles the forward saga step
func (h *WarehouseHandlers) ReserveSpace(w http.ResponseWriter, r *http.Request) {
	var payload sagaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.reserveSpace.Execute(r.Context(), &application.ReserveSpaceCommand{
		OrderID:  payload.OrderID,
		User:     payload.RequestData.User,
		Product:  payload.RequestData.Product,
		Quantity: payload.RequestData.Quantity,
	})
	if err != nil {
		if errors.Is(err, application.ErrMissingUser) || errors.Is(err, application.ErrMissingProduct) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeResult(w, response)
}

// CancelReservation handles the compensating saga step
func (h *WarehouseHandlers) CancelReservation(w http.ResponseWriter, r *http.Request) {
	var payload sagaPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	response, err := h.cancelReservation.Execute(r.Context(), &application.CancelReservationCommand{
		OrderID: payload.OrderID,
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeResult(w, response)
}

// ListReservations returns all current reservations
func (h *WarehouseHandlers) ListReservations(w http.ResponseWriter, r *http.Request) {
	response, err := h.listReservations.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers warehouse routes
func (h *WarehouseHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/reserve_space", h.ReserveSpace)
	r.Post("/cancel_reservation", h.CancelReservation)
	r.Get("/reservations", h.ListReservations)
}

// writeResult wraps the result under the collaborator's name so the
// orchestrator can merge it into the saga's generated data.
func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"warehouse": result})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
