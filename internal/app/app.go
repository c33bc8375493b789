// Package app assembles the runtime: database pool, Genkit, the evidence
// store, and the answer pipeline, wired from configuration.
package app

import (
	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pustakabot/pustaka/internal/agent"
	"github.com/pustakabot/pustaka/internal/config"
	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/log"
	"github.com/pustakabot/pustaka/internal/memory"
	"github.com/pustakabot/pustaka/internal/pipeline"
	"github.com/pustakabot/pustaka/internal/retrieval"
	"github.com/pustakabot/pustaka/internal/session"
)

// App holds the initialized components for one process.
type App struct {
	Config   *config.Config
	Logger   log.Logger
	DBPool   *pgxpool.Pool
	Genkit   *genkit.Genkit
	Embedder ai.Embedder

	Evidence *evidence.Store
	Policy   *retrieval.Policy
	Pipeline *pipeline.Pipeline
	Agent    *agent.Agent

	Memory   *memory.Store
	History  *memory.History
	Sessions *session.Manager

	dbCleanup func()
}

// Close releases held resources. Safe to call on a partially built App.
func (a *App) Close() error {
	if a.dbCleanup != nil {
		a.dbCleanup()
		a.dbCleanup = nil
	}
	return nil
}
