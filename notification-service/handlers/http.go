package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"

	"github.com/parcelflow/fulfillment-system/notification-service/application"
)

// noticePayload is the slice of the orchestrator's terminal notice this
// service reads. Unknown fields are ignored.
type noticePayload struct {
	Success bool `json:"success"`
	Saga    struct {
		OrderID     string `json:"orderId"`
		RequestData struct {
			User string `json:"user"`
		} `json:"request_data"`
	} `json:"saga"`
}

// NotificationHandlers contains the notification HTTP handlers
type NotificationHandlers struct {
	sendNotification  *application.SendNotification
	listNotifications *application.ListNotifications
}

// NewNotificationHandlers creates new notification handlers
func NewNotificationHandlers(
	sendNotification *application.SendNotification,
	listNotifications *application.ListNotifications,
) *NotificationHandlers {
	return &NotificationHandlers{
		sendNotification:  sendNotification,
		listNotifications: listNotifications,
	}
}

// SendConfirmation handles the terminal saga notice. The notice's success
// flag decides whether the customer hears a confirmation or a cancellation.
func (h *NotificationHandlers) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	var payload noticePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.send(w, r, &application.SendNotificationCommand{
		OrderID:   payload.Saga.OrderID,
		User:      payload.Saga.RequestData.User,
		Succeeded: payload.Success,
	})
}

// SendCancellation sends an explicit cancellation regardless of the notice
func (h *NotificationHandlers) SendCancellation(w http.ResponseWriter, r *http.Request) {
	var payload noticePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	h.send(w, r, &application.SendNotificationCommand{
		OrderID:   payload.Saga.OrderID,
		User:      payload.Saga.RequestData.User,
		Succeeded: false,
	})
}

func (h *NotificationHandlers) send(w http.ResponseWriter, r *http.Request, cmd *application.SendNotificationCommand) {
	response, err := h.sendNotification.Execute(r.Context(), cmd)
	if err != nil {
		if errors.Is(err, application.ErrMissingOrderID) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeResult(w, response)
}

// ListNotifications returns all sent notifications
func (h *NotificationHandlers) ListNotifications(w http.ResponseWriter, r *http.Request) {
	response, err := h.listNotifications.Execute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// RegisterRoutes registers notification routes
func (h *NotificationHandlers) RegisterRoutes(r chi.Router) {
	r.Post("/send_confirmation", h.SendConfirmation)
	r.Post("/send_cancellation", h.SendCancellation)
	r.Get("/notifications", h.ListNotifications)
}

// writeResult wraps the result under the collaborator's name so the
// orchestrator can merge it into the saga's generated data.
func writeResult(w http.ResponseWriter, result any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"notification": result})
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
