// Package api exposes the application over HTTP: the chat endpoint, CRUD
// for cases, conversations, saved queries, and alert subscriptions, the
// public policy-update feed, and health probes.
package api

import (
	"context"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surya16122114/immigration-ai-assistant/internal/assistant"
	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/rag"
	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

// Storage is the slice of the relational store the API depends on.
// storage.Store satisfies it; tests substitute an in-memory fake.
type Storage interface {
	UpsertUser(ctx context.Context, user storage.User) (storage.User, error)
	GetUser(ctx context.Context, id string) (storage.User, error)

	ListCases(ctx context.Context, userID string) ([]storage.Case, error)
	CreateCase(ctx context.Context, params storage.CreateCaseParams) (storage.Case, error)
	UpdateCase(ctx context.Context, id string, params storage.UpdateCaseParams) (storage.Case, error)
	DeleteCase(ctx context.Context, id string) error

	ListConversations(ctx context.Context, userID string) ([]storage.Conversation, error)
	CreateConversation(ctx context.Context, userID string, title *string) (storage.Conversation, error)
	GetConversation(ctx context.Context, id string) (storage.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]storage.Message, error)
	CreateMessage(ctx context.Context, params storage.CreateMessageParams) (storage.Message, error)

	ListSavedQueries(ctx context.Context, userID string) ([]storage.SavedQuery, error)
	CreateSavedQuery(ctx context.Context, params storage.CreateSavedQueryParams) (storage.SavedQuery, error)
	DeleteSavedQuery(ctx context.Context, id string) error

	ListAlertSubscriptions(ctx context.Context, userID string) ([]storage.AlertSubscription, error)
	CreateAlertSubscription(ctx context.Context, userID, alertType string, isActive bool) (storage.AlertSubscription, error)
	UpdateAlertSubscription(ctx context.Context, id string, params storage.UpdateAlertSubscriptionParams) (storage.AlertSubscription, error)
	DeleteAlertSubscription(ctx context.Context, id string) error

	RecentPolicyUpdates(ctx context.Context, limit int) ([]storage.PolicyUpdate, error)
	CreatePolicyUpdate(ctx context.Context, params storage.CreatePolicyUpdateParams) (storage.PolicyUpdate, error)
	ActiveSubscriberEmails(ctx context.Context, alertType string) ([]string, error)
}

// Retriever finds context chunks relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]rag.ContextChunk, error)
}

// Answerer generates a grounded response from a query and its context.
type Answerer interface {
	Answer(ctx context.Context, query string, docs []rag.ContextChunk) (assistant.Response, error)
}

// AlertSender delivers alert emails.
type AlertSender interface {
	SendAlert(ctx context.Context, to, subject, content, alertType string) error
	SendPolicyChangeNotification(ctx context.Context, to string, update storage.PolicyUpdate) error
}

// Config contains the dependencies for the API server.
type Config struct {
	Logger    log.Logger
	Store     Storage
	Retriever Retriever
	Generator Answerer
	Alerts    AlertSender

	// Pool is optional; nil disables the database check in /ready.
	Pool *pgxpool.Pool

	// RetrievalTopK is the number of context chunks fetched per chat
	// message. Zero means the default of 3.
	RetrievalTopK int

	// RateLimit is tokens per second per client; RateBurst the bucket
	// size. Zero values disable rate limiting.
	RateLimit float64
	RateBurst int
}

// Server is the JSON API HTTP server.
type Server struct {
	handler http.Handler
}

// NewServer creates the API server with all routes configured.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	topK := cfg.RetrievalTopK
	if topK <= 0 {
		topK = 3
	}

	h := &handlers{
		store:     cfg.Store,
		retriever: cfg.Retriever,
		generator: cfg.Generator,
		alerts:    cfg.Alerts,
		topK:      topK,
		logger:    logger,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/auth/user", h.authUser)

	mux.HandleFunc("GET /api/cases", h.listCases)
	mux.HandleFunc("POST /api/cases", h.createCase)
	mux.HandleFunc("PUT /api/cases/{id}", h.updateCase)
	mux.HandleFunc("DELETE /api/cases/{id}", h.deleteCase)

	mux.HandleFunc("GET /api/conversations", h.listConversations)
	mux.HandleFunc("POST /api/conversations", h.createConversation)
	mux.HandleFunc("GET /api/conversations/{id}/messages", h.listMessages)

	mux.HandleFunc("POST /api/chat", h.chat)

	mux.HandleFunc("GET /api/saved-queries", h.listSavedQueries)
	mux.HandleFunc("POST /api/saved-queries", h.createSavedQuery)
	mux.HandleFunc("DELETE /api/saved-queries/{id}", h.deleteSavedQuery)

	mux.HandleFunc("GET /api/alert-subscriptions", h.listAlertSubscriptions)
	mux.HandleFunc("POST /api/alert-subscriptions", h.createAlertSubscription)
	mux.HandleFunc("PUT /api/alert-subscriptions/{id}", h.updateAlertSubscription)
	mux.HandleFunc("DELETE /api/alert-subscriptions/{id}", h.deleteAlertSubscription)

	mux.HandleFunc("POST /api/policy-updates", h.createPolicyUpdate)
	mux.HandleFunc("POST /api/send-alert", h.sendAlert)

	protected := authMiddleware()(mux)

	// Health probes and the public policy feed bypass authentication.
	topMux := http.NewServeMux()
	topMux.HandleFunc("GET /health", health)
	topMux.Handle("GET /ready", readiness(cfg.Pool))
	topMux.HandleFunc("GET /api/policy-updates", h.listPolicyUpdates)
	topMux.Handle("/api/", protected)

	var handler http.Handler = topMux
	if cfg.RateLimit > 0 && cfg.RateBurst > 0 {
		rl := newRateLimiter(cfg.RateLimit, cfg.RateBurst)
		handler = rateLimitMiddleware(rl, logger)(handler)
	}
	handler = loggingMiddleware(logger)(handler)
	handler = recoveryMiddleware(logger)(handler)

	return &Server{handler: handler}
}

// Handler returns the server as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}
