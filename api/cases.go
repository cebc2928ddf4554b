package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

func (h *handlers) listCases(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	cases, err := h.store.ListCases(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list cases", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch cases")
		return
	}
	if cases == nil {
		cases = []storage.Case{}
	}
	writeJSON(w, http.StatusOK, cases)
}

func (h *handlers) createCase(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var params storage.CreateCaseParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(params.CaseType) == "" || strings.TrimSpace(params.Title) == "" {
		writeError(w, http.StatusBadRequest, "caseType and title are required")
		return
	}
	params.UserID = userID

	created, err := h.store.CreateCase(r.Context(), params)
	if err != nil {
		h.logger.Error("failed to create case", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create case")
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handlers) updateCase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var params storage.UpdateCaseParams
	if err := decodeJSON(r, &params); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	updated, err := h.store.UpdateCase(r.Context(), id, params)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Case not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to update case", "case_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to update case")
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handlers) deleteCase(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	if err := h.store.DeleteCase(r.Context(), id); err != nil {
		h.logger.Error("failed to delete case", "case_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to delete case")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Case deleted successfully"})
}
