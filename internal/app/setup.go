package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/firebase/genkit/go/plugins/ollama"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	pgxvec "github.com/pgvector/pgvector-go/pgx"
	"golang.org/x/time/rate"

	"github.com/corpushq/corpus/db"
	"github.com/corpushq/corpus/internal/chunker"
	"github.com/corpushq/corpus/internal/config"
	"github.com/corpushq/corpus/internal/ingest"
	"github.com/corpushq/corpus/internal/knowledge"
	"github.com/corpushq/corpus/internal/log"
	"github.com/corpushq/corpus/internal/observability"
	"github.com/corpushq/corpus/internal/rag"
)

// Setup creates and initializes the application. Call Close on the
// returned App to release resources.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized.
	defer func() {
		if retErr != nil {
			_ = a.Close()
		}
	}()

	// Tracing attaches to Genkit's TracerProvider, so it must come
	// before genkit.Init.
	a.otelCleanup = provideOtelShutdown(ctx, cfg, logger)

	pool, err := provideDBPool(ctx, cfg, logger)
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

	a.Store = knowledge.NewStore(pool, logger)
	a.Registry = knowledge.NewRegistry(pool, logger)
	a.Service = provideService(a, cfg, logger)

	return a, nil
}

// provideOtelShutdown sets up OTLP tracing and returns a cleanup that
// flushes pending spans with a bounded deadline.
func provideOtelShutdown(ctx context.Context, cfg *config.Config, logger log.Logger) func() {
	shutdown, err := observability.Setup(ctx, observability.Config{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: observability.DefaultServiceName,
	}, logger)
	if err != nil || shutdown == nil {
		return func() {}
	}

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			logger.Warn("shutting down tracer provider", "error", err)
		}
	}
}

// provideDBPool runs migrations and creates a PostgreSQL connection pool
// with pgvector types registered on every connection.
func provideDBPool(ctx context.Context, cfg *config.Config, logger log.Logger) (*pgxpool.Pool, error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute
	poolCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		return pgxvec.RegisterTypes(ctx, conn)
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

	logger.Debug("database pool ready",
		"host", cfg.PostgresHost,
		"database", cfg.PostgresDBName)

	return pool, nil
}

// provideGenkit initializes Genkit with the configured AI provider.
func provideGenkit(ctx context.Context, cfg *config.Config, logger log.Logger) (*genkit.Genkit, error) {
	var g *genkit.Genkit

	switch cfg.Provider {
	case config.ProviderOllama:
		ollamaPlugin := &ollama.Ollama{ServerAddress: cfg.OllamaHost}
		g = genkit.Init(ctx, genkit.WithPlugins(ollamaPlugin))
		if g == nil {
			return nil, errors.New("initializing genkit with ollama provider")
		}
		// Ollama has no auto-discovery: model and embedder need explicit
		// registration.
		ollamaPlugin.DefineModel(g, ollama.ModelDefinition{
			Name: cfg.ModelName,
			Type: "chat",
		}, nil)
		ollamaPlugin.DefineEmbedder(g, cfg.OllamaHost, cfg.EmbedderModel, nil)
		logger.Info("initialized genkit with ollama provider",
			"model", cfg.ModelName, "host", cfg.OllamaHost)

	default: // gemini
		g = genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
		if g == nil {
			return nil, errors.New("initializing genkit with gemini provider")
		}
		logger.Info("initialized genkit with gemini provider", "model", cfg.ModelName)
	}

	return g, nil
}

// provideEmbedder looks up the embedder registered by the provider plugin.
func provideEmbedder(g *genkit.Genkit, cfg *config.Config) ai.Embedder {
	switch cfg.Provider {
	case config.ProviderOllama:
		// Ollama embedders are keyed by server address.
		return ollama.Embedder(g, cfg.OllamaHost)
	default: // gemini
		return googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	}
}

// provideService assembles the rag pipeline from configured components.
func provideService(a *App, cfg *config.Config, logger log.Logger) *rag.Service {
	splitter := chunker.New(
		chunker.WithMaxSize(cfg.ChunkSize),
		chunker.WithOverlap(cfg.ChunkOverlap),
	)

	adapters := ingest.NewRegistry(
		ingest.NewWebAdapter(ingest.WithHTTPClient(&http.Client{Timeout: cfg.FetchTimeout})),
		ingest.WithCSVRowGroup(cfg.CSVRowGroup),
	)

	retriever := rag.NewRetriever(a.Embedder, a.Store, logger,
		rag.WithTopK(cfg.TopK),
		rag.WithSnippetLength(cfg.SnippetLength),
	)

	generator := rag.NewGenkitGenerator(a.Genkit, cfg.ModelName, cfg.Temperature, cfg.MaxTokens)
	synthesizer := rag.NewSynthesizer(generator, logger)

	opts := []rag.ServiceOption{
		rag.WithTimeouts(cfg.EmbedTimeout, cfg.GenerateTimeout),
	}
	if cfg.EmbedRateLimit > 0 {
		opts = append(opts, rag.WithEmbedLimiter(rate.NewLimiter(rate.Limit(cfg.EmbedRateLimit), 1)))
	}

	return rag.NewService(splitter, adapters, a.Embedder, a.Store, a.Registry, retriever, synthesizer, logger, opts...)
}
