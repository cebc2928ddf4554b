package api

import (
	"net/http"

	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

func (h *handlers) listConversations(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	convs, err := h.store.ListConversations(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list conversations", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch conversations")
		return
	}
	if convs == nil {
		convs = []storage.Conversation{}
	}
	writeJSON(w, http.StatusOK, convs)
}

func (h *handlers) createConversation(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	var req struct {
		Title *string `json:"title"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	conv, err := h.store.CreateConversation(r.Context(), userID, req.Title)
	if err != nil {
		h.logger.Error("failed to create conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create conversation")
		return
	}
	writeJSON(w, http.StatusCreated, conv)
}

func (h *handlers) listMessages(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	msgs, err := h.store.ListMessages(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to list messages", "conversation_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to fetch messages")
		return
	}
	if msgs == nil {
		msgs = []storage.Message{}
	}
	writeJSON(w, http.StatusOK, msgs)
}
