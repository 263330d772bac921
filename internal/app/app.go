// Package app provides application initialization and dependency wiring.
//
// App is the container that assembles the pipeline: Genkit with the
// configured AI provider, the PostgreSQL pool with pgvector types
// registered, the knowledge store and registry, and the rag service on
// top of them. Construction happens in Setup; Close releases everything
// in reverse order.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/corpushq/corpus/internal/config"
	"github.com/corpushq/corpus/internal/knowledge"
	"github.com/corpushq/corpus/internal/log"
	"github.com/corpushq/corpus/internal/rag"
)

// App is the core application container.
type App struct {
	Config *config.Config
	Logger log.Logger

	Genkit   *genkit.Genkit
	Embedder ai.Embedder
	DBPool   *pgxpool.Pool

	Store    *knowledge.Store
	Registry *knowledge.Registry
	Service  *rag.Service

	otelCleanup func()
}

// Close releases all resources. Safe to call on a partially constructed
// App.
func (a *App) Close() error {
	if a.Logger != nil {
		a.Logger.Debug("shutting down")
	}

	if a.DBPool != nil {
		a.DBPool.Close()
	}
	if a.otelCleanup != nil {
		a.otelCleanup()
	}
	return nil
}
