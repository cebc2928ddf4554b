package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/firebase/genkit/go/ai"
	genkitapi "github.com/firebase/genkit/go/core/api"
	"github.com/firebase/genkit/go/core/tracing"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/compat_oai/openai"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvector "github.com/pgvector/pgvector-go/pgx"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/surya16122114/immigration-ai-assistant/api"
	"github.com/surya16122114/immigration-ai-assistant/db"
	"github.com/surya16122114/immigration-ai-assistant/internal/assistant"
	"github.com/surya16122114/immigration-ai-assistant/internal/config"
	"github.com/surya16122114/immigration-ai-assistant/internal/knowledge"
	"github.com/surya16122114/immigration-ai-assistant/internal/log"
	"github.com/surya16122114/immigration-ai-assistant/internal/notify"
	"github.com/surya16122114/immigration-ai-assistant/internal/rag"
	"github.com/surya16122114/immigration-ai-assistant/internal/storage"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup. Call Close to release resources.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	pool, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.DBPool = pool

	g, err := provideGenkit(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := provideEmbedder(g, cfg)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found for provider %q", cfg.EmbedderModel, cfg.Provider)
	}
	a.Embedder = embedder

	a.Knowledge = knowledge.NewStore(pool, cfg.EmbedderDimension, logger)
	a.Pipeline = rag.NewPipeline(&genkitEmbedder{embedder: embedder}, a.Knowledge, logger)

	model := assistant.NewGenkitModel(g, qualifiedModelName(cfg))
	cache := assistant.NewCache(assistant.DefaultCacheTTL, assistant.DefaultCacheEntries)
	a.Generator = assistant.NewGenerator(model, cache, logger)

	a.Storage = storage.New(pool, logger)
	a.Notifier = provideNotifier(cfg, logger)

	a.Server = api.NewServer(api.Config{
		Logger:        logger,
		Store:         a.Storage,
		Retriever:     a.Pipeline,
		Generator:     a.Generator,
		Alerts:        a.Notifier,
		Pool:          pool,
		RetrievalTopK: cfg.RetrievalTopK,
		RateLimit:     float64(cfg.RateLimitRPS),
		RateBurst:     cfg.RateLimitBurst,
	})

	return a, nil
}

// provideOtelShutdown sets up OTLP trace export before Genkit initialization,
// so Genkit's TracerProvider is ready when the first span starts. Traces go
// to a local collector agent over OTLP HTTP; the agent handles auth,
// buffering, and forwarding.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	tc := cfg.Tracing
	if !tc.Enabled {
		return func() {}
	}

	agentHost := tc.AgentHost
	if agentHost == "" {
		agentHost = "localhost:4318"
	}

	// Set OTEL env vars for Genkit's TracerProvider to pick up.
	// SAFETY: os.Setenv is not concurrent-safe, but this function is called
	// exactly once during startup, before goroutines are spawned.
	if tc.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", tc.ServiceName)
	}
	if tc.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+tc.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(agentHost),
		otlptracehttp.WithInsecure(), // local agent, no TLS
	)
	if err != nil {
		logger.Warn("creating trace exporter, tracing disabled", "error", err)
		return func() {}
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"agent", agentHost,
		"service", tc.ServiceName,
		"environment", tc.Environment,
	)

	shutdown := tracing.TracerProvider().Shutdown

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDBPool runs migrations and creates the PostgreSQL connection pool.
// Every connection registers the pgvector types so []float32 embeddings
// encode and scan natively.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvector.RegisterTypes(ctx, conn)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}

// provideGenkit initializes Genkit with the configured AI provider plugin.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	var g *genkit.Genkit

	switch cfg.Provider {
	case config.ProviderGoogleAI:
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with googleai provider")
		}
	default: // openai
		g = genkit.Init(ctx, genkit.WithPlugins(&openai.OpenAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with openai provider")
		}
	}

	logger.Info("initialized Genkit", "provider", cfg.Provider, "model", cfg.ModelName)
	return g, nil
}

// provideEmbedder looks up the embedder registered by the provider plugin.
// OpenAI auto-registers embedders in Init and is looked up by name; the
// GoogleAI plugin exposes a dedicated constructor.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	switch cfg.Provider {
	case config.ProviderGoogleAI:
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	default: // openai
		return genkit.LookupEmbedder(g, genkitapi.NewName("openai", cfg.EmbedderModel))
	}
}

// qualifiedModelName returns the provider-prefixed model name Genkit resolves
// at generation time.
func qualifiedModelName(cfg *config.Config) string {
	switch cfg.Provider {
	case config.ProviderGoogleAI:
		return "googleai/" + cfg.ModelName
	default:
		return "openai/" + cfg.ModelName
	}
}

// provideNotifier builds the alert service. Without a SendGrid API key the
// service runs in log-only mode and reports success.
func provideNotifier(cfg *config.Config, logger log.Logger) *notify.Service {
	var mailer notify.Mailer
	if cfg.SendGridAPIKey != "" {
		mailer = notify.NewSendGridMailer(cfg.SendGridAPIKey)
	} else {
		logger.Warn("SENDGRID_API_KEY not set, email alerts disabled")
	}
	return notify.NewService(mailer, cfg.AlertFromEmail, cfg.DashboardURL, logger)
}

// genkitEmbedder adapts a Genkit ai.Embedder to the retrieval pipeline's
// single-text embedding interface.
type genkitEmbedder struct {
	embedder ai.Embedder
}

func (e *genkitEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.embedder.Embed(ctx, &ai.EmbedRequest{
		Input: []*ai.Document{ai.DocumentFromText(text, nil)},
	})
	if err != nil {
		return nil, fmt.Errorf("embed failed: %w", err)
	}
	if len(resp.Embeddings) == 0 {
		return nil, errors.New("no embeddings returned")
	}
	return resp.Embeddings[0].Embedding, nil
}
