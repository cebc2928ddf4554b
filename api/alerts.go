package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

var validAlertTypes = map[string]bool{
	storage.AlertVisaBulletin:  true,
	storage.AlertH1BLottery:    true,
	storage.AlertPolicyChanges: true,
}

func (h *handlers) listAlertSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	subs, err := h.store.ListAlertSubscriptions(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list alert subscriptions", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch alert subscriptions")
		return
	}
	if subs == nil {
		subs = []storage.AlertSubscription{}
	}
	writeJSON(w, http.StatusOK, subs)
}

func (h *handlers) createAlertSubscription(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req struct {
		AlertType string `json:"alertType"`
		IsActive  *bool  `json:"isActive"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if !validAlertTypes[req.AlertType] {
		writeError(w, http.StatusBadRequest, "unknown alertType")
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	sub, err := h.store.CreateAlertSubscription(r.Context(), userID, req.AlertType, isActive)
	if err != nil {
		h.logger.Error("failed to create alert subscription", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create alert subscription")
		return
	}
	writeJSON(w, http.StatusCreated, sub)
}

func (h *handlers) updateAlertSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var params storage.UpdateAlertSubscriptionParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if params.AlertType != nil && !validAlertTypes[*params.AlertType] {
		writeError(w, http.StatusBadRequest, "unknown alertType")
		return
	}

	sub, err := h.store.UpdateAlertSubscription(r.Context(), id, params)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Alert subscription not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update alert subscription", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update alert subscription")
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

func (h *handlers) deleteAlertSubscription(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.DeleteAlertSubscription(r.Context(), id); err != nil {
		h.logger.Error("failed to delete alert subscription", "subscription_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete alert subscription")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert subscription deleted successfully"})
}

// sendAlert sends a one-off alert email.
func (h *handlers) sendAlert(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email     string `json:"email"`
		Subject   string `json:"subject"`
		Content   string `json:"content"`
		AlertType string `json:"alertType"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Subject) == "" {
		writeError(w, http.StatusBadRequest, "email and subject are required")
		return
	}

	if err := h.alerts.SendAlert(r.Context(), req.Email, req.Subject, req.Content, req.AlertType); err != nil {
		h.logger.Error("failed to send alert", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to send alert")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Alert sent successfully"})
}
