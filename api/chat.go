package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/surya16122114/immigration-ai-assistant/internal/assistant"
	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

type handlers struct {
	store     Storage
	retriever Retriever
	generator Answerer
	alerts    AlertSender
	topK      int
	logger    log.Logger
}

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversationId"`
}

type chatResponse struct {
	UserMessage      storage.Message    `json:"userMessage"`
	AssistantMessage storage.Message    `json:"assistantMessage"`
	Sources          []assistant.Source `json:"sources"`
}

// chat is the RAG-backed question endpoint: persist the user's message,
// retrieve context, generate a grounded answer, persist it with its
// citations, and return both turns.
func (h *handlers) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" || req.ConversationID == "" {
		writeError(w, http.StatusBadRequest, "message and conversationId are required")
		return
	}

	ctx := r.Context()

	userMessage, err := h.store.CreateMessage(ctx, storage.CreateMessageParams{
		ConversationID: req.ConversationID,
		Role:           "user",
		Content:        req.Message,
	})
	if err != nil {
		h.logger.Error("failed to save user message", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat message")
		return
	}

	docs, err := h.retriever.Retrieve(ctx, req.Message, h.topK)
	if err != nil {
		h.logger.Error("retrieval failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat message")
		return
	}

	answer, err := h.generator.Answer(ctx, req.Message, docs)
	if err != nil {
		h.logger.Error("generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat message")
		return
	}
	if answer.Degraded {
		h.logger.Warn("serving degraded answer", "conversation_id", req.ConversationID)
	}

	sources := answer.Sources
	if sources == nil {
		sources = []assistant.Source{}
	}
	sourcesJSON, err := json.Marshal(sources)
	if err != nil {
		h.logger.Error("failed to marshal sources", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat message")
		return
	}

	assistantMessage, err := h.store.CreateMessage(ctx, storage.CreateMessageParams{
		ConversationID: req.ConversationID,
		Role:           "assistant",
		Content:        answer.Content,
		Sources:        sourcesJSON,
	})
	if err != nil {
		h.logger.Error("failed to save assistant message", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to process chat message")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		UserMessage:      userMessage,
		AssistantMessage: assistantMessage,
		Sources:          sources,
	})
}

// authUser returns the authenticated user's profile, creating the row on
// first sight of a new identity.
func (h *handlers) authUser(w http.ResponseWriter, r *http.Request) {
	userID, _ := userIDFromContext(r.Context())

	user, err := h.store.GetUser(r.Context(), userID)
	if err != nil {
		user, err = h.store.UpsertUser(r.Context(), storage.User{ID: userID})
		if err != nil {
			h.logger.Error("failed to provision user", "user_id", userID, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to fetch user")
			return
		}
	}
	writeJSON(w, http.StatusOK, user)
}
