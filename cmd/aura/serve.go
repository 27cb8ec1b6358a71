package main

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/matiasleandrokruk/aura/internal/api"
	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
	"github.com/matiasleandrokruk/aura/internal/domain/history"
	"github.com/matiasleandrokruk/aura/internal/infra/cache"
	"github.com/matiasleandrokruk/aura/internal/infra/config"
	"github.com/matiasleandrokruk/aura/internal/infra/eventbus"
	"github.com/matiasleandrokruk/aura/internal/infra/llm"
	"github.com/matiasleandrokruk/aura/internal/infra/metrics"
	"github.com/matiasleandrokruk/aura/internal/infra/sqlite"
	"github.com/matiasleandrokruk/aura/internal/logging"
	"github.com/matiasleandrokruk/aura/internal/mcp"
	"github.com/matiasleandrokruk/aura/internal/server"
)

const shutdownTimeout = 10 * time.Second

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// app is the fully wired service. closers run in order on shutdown.
type app struct {
	handler http.Handler
	closers []io.Closer
}

func runServe(ctx context.Context, args []string, envFile string, errOut io.Writer) int {
	if len(args) > 0 {
		fmt.Fprintf(errOut, "Error: serve takes no arguments, got %v\n", args) //nolint:errcheck
		return exitUsage
	}

	cfg, err := loadConfig(envFile)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
		return exitError
	}
	logger, err := logging.Init(errOut, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(errOut, "Error: %v\n", err) //nolint:errcheck
		return exitError
	}

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return exitError
	}

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Addr()
	srv := server.NewServer(a.handler, srvCfg, logger, a.closers...)

	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.Start(ctx) }()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("http server failed", "error", err)
			_ = srv.Shutdown(context.Background())
			return exitError
		}
		return exitOK
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
		return exitError
	}
	logger.Info("shutdown complete")
	return exitOK
}

// buildApp wires config into the router. Optional backends (history, cache)
// are only created when configured. A cache that cannot be reached is
// skipped with a warning; a history database that cannot be opened is fatal.
func buildApp(ctx context.Context, cfg config.Config, logger *slog.Logger) (*app, error) {
	pc, err := cfg.ProviderConfig()
	if err != nil {
		return nil, err
	}

	var (
		provider llm.LLMProvider
		closers  []io.Closer
	)
	if pc.HasAPIKey() {
		provider = llm.NewChatCompletionProvider(pc)
	} else {
		logger.Warn("LLM_API_KEY not set, serving heuristic results only", "provider", pc.Name)
	}

	collector := metrics.NewCollector(nil)
	bus := eventbus.New()
	opts := []analysis.Option{
		analysis.WithLogger(logger),
		analysis.WithMetrics(collector),
		analysis.WithEventBus(bus),
	}

	var valkeyCache *cache.Valkey
	if cfg.ValkeyAddr != "" {
		valkeyCache, err = cache.NewValkey(ctx, cache.Options{Addr: cfg.ValkeyAddr, Password: cfg.ValkeyPassword})
		if err != nil {
			logger.Warn("result cache unavailable, continuing without it", "error", err)
		} else {
			opts = append(opts, analysis.WithCache(valkeyCache, cfg.CacheTTL))
		}
	}

	var (
		db       *sql.DB
		histSvc  *history.Service
		recorded <-chan struct{}
	)
	if cfg.AnalysisDBPath != "" {
		db, err = sqlite.Open(ctx, cfg.AnalysisDBPath)
		if err != nil {
			if valkeyCache != nil {
				valkeyCache.Close()
			}
			return nil, fmt.Errorf("open analysis history: %w", err)
		}
		histSvc = history.NewService(db)
		recorded = history.NewRecorder(histSvc, logger).Start(context.WithoutCancel(ctx), bus)
	}

	// Drain the bus before closing what the recorder writes to.
	closers = append(closers, closerFunc(func() error {
		bus.Close()
		if recorded != nil {
			<-recorded
		}
		if dropped := bus.Dropped(); dropped > 0 {
			logger.Warn("analysis events dropped", "count", dropped)
		}
		return nil
	}))
	if db != nil {
		closers = append(closers, db)
	}
	if valkeyCache != nil {
		closers = append(closers, valkeyCache)
	}

	svc := analysis.NewService(pc, provider, opts...)
	deps := api.Deps{
		Analyzer:           svc,
		Provider:           provider,
		LLMEnabled:         svc.LLMEnabled(),
		Metrics:            collector.Handler(),
		MCP:                mcp.Handler(mcp.NewServer(svc)),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             logger,
	}
	if histSvc != nil {
		deps.History = histSvc
	}

	logger.Info("aura configured",
		"provider", pc.Name,
		"model", pc.Model,
		"llm_enabled", svc.LLMEnabled(),
		"history", histSvc != nil,
		"cache", valkeyCache != nil,
	)
	return &app{handler: api.NewRouter(deps), closers: closers}, nil
}
