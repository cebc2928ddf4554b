package api

import (
	"net/http"
	"strings"

	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

func (h *handlers) listSavedQueries(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	queries, err := h.store.ListSavedQueries(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list saved queries", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch saved queries")
		return
	}
	if queries == nil {
		queries = []storage.SavedQuery{}
	}
	writeJSON(w, http.StatusOK, queries)
}

func (h *handlers) createSavedQuery(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req struct {
		Title    string   `json:"title"`
		Query    string   `json:"query"`
		Response *string  `json:"response"`
		Tags     []string `json:"tags"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "title and query are required")
		return
	}

	saved, err := h.store.CreateSavedQuery(r.Context(), storage.CreateSavedQueryParams{
		UserID:   userID,
		Title:    req.Title,
		Query:    req.Query,
		Response: req.Response,
		Tags:     req.Tags,
	})
	if err != nil {
		h.logger.Error("failed to create saved query", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save query")
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (h *handlers) deleteSavedQuery(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.DeleteSavedQuery(r.Context(), id); err != nil {
		h.logger.Error("failed to delete saved query", "query_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete saved query")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Saved query deleted successfully"})
}
