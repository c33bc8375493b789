package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pustakabot/pustaka/db"
	"github.com/pustakabot/pustaka/internal/agent"
	"github.com/pustakabot/pustaka/internal/compact"
	"github.com/pustakabot/pustaka/internal/config"
	"github.com/pustakabot/pustaka/internal/evidence"
	"github.com/pustakabot/pustaka/internal/llm"
	"github.com/pustakabot/pustaka/internal/log"
	"github.com/pustakabot/pustaka/internal/memory"
	"github.com/pustakabot/pustaka/internal/pipeline"
	"github.com/pustakabot/pustaka/internal/retrieval"
	"github.com/pustakabot/pustaka/internal/session"
)

// Setup creates and initializes the application.
// Returns an App with embedded cleanup; call Close() to release.
func Setup(ctx context.Context, cfg *config.Config, logger log.Logger) (_ *App, retErr error) {
	if logger == nil {
		logger = log.NewNop()
	}
	a := &App{Config: cfg, Logger: logger}

	// On error, clean up everything already initialized
	defer func() {
		if retErr != nil {
			if err := a.Close(); err != nil {
				logger.Warn("cleanup during setup failure", "error", err)
			}
		}
	}()

	pool, dbCleanup, err := provideDBPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	a.dbCleanup = dbCleanup
	a.DBPool = pool

	g, err := provideGenkit(ctx)
	if err != nil {
		return nil, err
	}
	a.Genkit = g

	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)
	if embedder == nil {
		return nil, fmt.Errorf("embedder %q not found", cfg.EmbedderModel)
	}
	a.Embedder = embedder

	backend, err := evidence.NewPostgresBackend(pool, embedder, cfg.DiversityLambda, logger)
	if err != nil {
		return nil, err
	}
	store, err := evidence.New(ctx, backend, logger,
		evidence.WithCacheTTL(time.Duration(cfg.CacheTTLSeconds)*time.Second))
	if err != nil {
		return nil, err
	}
	a.Evidence = store

	mode := evidence.ModeSimilarity
	if cfg.UseDiversity {
		mode = evidence.ModeDiversity
	}
	a.Policy = retrieval.NewPolicy(store, cfg.RetrievalK, mode, logger)

	client := llm.New(g, cfg.FullModelName(), cfg.GenerateRPS, logger)
	compactor := compact.New(cfg.FullTopN, cfg.FullCharLimit, cfg.TailSummariesMax, cfg.TailCharLimit)
	a.Pipeline = pipeline.New(client, compactor, logger)
	a.Agent = agent.New(a.Policy, a.Pipeline, logger)

	a.Memory = memory.NewStore(cfg.MemoryDir)
	a.History = memory.NewHistory(cfg.HistoryWindow, cfg.SummaryTriggerTurns)
	a.Sessions = session.NewManager()

	return a, nil
}

// provideGenkit initializes Genkit with the Google AI plugin. The plugin
// reads GEMINI_API_KEY from the environment.
func provideGenkit(ctx context.Context) (*genkit.Genkit, error) {
	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		return nil, errors.New("initializing genkit")
	}
	return g, nil
}

// provideDBPool creates a PostgreSQL connection pool and runs migrations.
func provideDBPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, func(), error) {
	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresConnectionString())
	if err != nil {
		return nil, nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, pool.Close, nil
}
