package handlers

import (
	"context"
	"net/http"

	"safesphere/middleware"
	"safesphere/models"
	"safesphere/services"
)

type SafetyHandler struct {
	safetyService *services.SafetyService
}

func NewSafetyHandler(safetyService *services.SafetyService) *SafetyHandler {
	return &SafetyHandler{safetyService: safetyService}
}

type transitionFunc func(ctx context.Context, caller models.User, userID int64) (services.SafetyStatus, error)

func (h *SafetyHandler) transition(fn transitionFunc, message string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := currentUser(r)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		userID, err := pathID(r, "id")
		if err != nil {
			middleware.WriteError(w, err)
			return
		}

		status, err := fn(r.Context(), user, userID)
		if err != nil {
			middleware.WriteError(w, err)
			return
		}
		middleware.WriteJSON(w, http.StatusOK, map[string]any{"message": message, "status": status.Status})
	}
}

func (h *SafetyHandler) MarkSafe() http.HandlerFunc {
	return h.transition(h.safetyService.MarkSafe, "Safety status updated")
}

func (h *SafetyHandler) SendEmergencyAlert() http.HandlerFunc {
	return h.transition(h.safetyService.MarkAlert, "Emergency alert sent to all contacts")
}

func (h *SafetyHandler) MarkDanger() http.HandlerFunc {
	return h.transition(h.safetyService.MarkDanger, "Danger status updated")
}

func (h *SafetyHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	status, err := h.safetyService.GetStatus(r.Context(), userID)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, status)
}

func (h *SafetyHandler) GetAlerts(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	alerts, err := h.safetyService.ListAlerts(r.Context(), user)
	if err != nil {
		middleware.WriteError(w, err)
		return
	}
	middleware.WriteJSON(w, http.StatusOK, alerts)
}
