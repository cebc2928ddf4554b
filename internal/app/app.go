// Package app provides application initialization and dependency wiring.
//
// App is the container that holds every long-lived component: the database
// pool, the Genkit instance, the knowledge store, the retrieval pipeline,
// the response generator, and the HTTP API server.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/surya16122114/immigration-ai-assistant/api"
	"github.com/surya16122114/immigration-ai-assistant/internal/assistant"
	"github.com/surya16122114/immigration-ai-assistant/internal/config"
	"github.com/surya16122114/immigration-ai-assistant/internal/knowledge"
	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/notify"
	"github.com/surya16122114/immigration-ai-assistant/internal/rag"
	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Knowledge *knowledge.Store
	Pipeline  *rag.Pipeline
	Generator *assistant.Generator
	Storage   *storage.Store
	Notifier  *notify.Service
	Server    *api.Server

	otelCleanup func()
}

// Close gracefully shuts down all resources.
func (a *App) Close() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database pool closed")
	}

	if a.otelCleanup != nil {
		a.otelCleanup()
	}

	return nil
}
