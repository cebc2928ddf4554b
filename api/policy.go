package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

// listPolicyUpdates serves the public policy feed. No authentication, the
// frontend shows it on the landing page.
func (h *handlers) listPolicyUpdates(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}

	updates, err := h.store.RecentPolicyUpdates(r.Context(), limit)
	if err != nil {
		h.logger.Error("failed to list policy updates", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch policy updates")
		return
	}
	if updates == nil {
		updates = []storage.PolicyUpdate{}
	}
	writeJSON(w, http.StatusOK, updates)
}

// createPolicyUpdate publishes a policy update and notifies active
// policy-change subscribers. Notification failures are logged per
// recipient; the publish itself still succeeds.
func (h *handlers) createPolicyUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title       string     `json:"title"`
		Summary     string     `json:"summary"`
		Content     *string    `json:"content"`
		Source      string     `json:"source"`
		SourceURL   *string    `json:"sourceUrl"`
		Category    string     `json:"category"`
		PublishedAt *time.Time `json:"publishedAt"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	for _, field := range []string{req.Title, req.Summary, req.Source, req.Category} {
		if strings.TrimSpace(field) == "" {
			writeError(w, http.StatusBadRequest, "title, summary, source, and category are required")
			return
		}
	}

	publishedAt := time.Now()
	if req.PublishedAt != nil {
		publishedAt = *req.PublishedAt
	}

	update, err := h.store.CreatePolicyUpdate(r.Context(), storage.CreatePolicyUpdateParams{
		Title:       req.Title,
		Summary:     req.Summary,
		Content:     req.Content,
		Source:      req.Source,
		SourceURL:   req.SourceURL,
		Category:    req.Category,
		PublishedAt: publishedAt,
	})
	if err != nil {
		h.logger.Error("failed to create policy update", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create policy update")
		return
	}

	emails, err := h.store.ActiveSubscriberEmails(r.Context(), storage.AlertPolicyChanges)
	if err != nil {
		h.logger.Error("failed to list policy-change subscribers", "error", err)
	}
	for _, email := range emails {
		if err := h.alerts.SendPolicyChangeNotification(r.Context(), email, update); err != nil {
			h.logger.Error("failed to notify subscriber",
				"policy_id", update.ID, "to", email, "error", err)
		}
	}

	writeJSON(w, http.StatusCreated, update)
}
