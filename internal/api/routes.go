// Package api wires the HTTP surface: chi router, middleware and handlers.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/matiasleandrokruk/aura/internal/api/handlers"
	apimiddleware "github.com/matiasleandrokruk/aura/internal/api/middleware"
	"github.com/matiasleandrokruk/aura/internal/infra/llm"
)

// Deps are the collaborators NewRouter mounts. Optional fields may be nil.
type Deps struct {
	Analyzer   handlers.Analyzer
	Provider   llm.LLMProvider
	LLMEnabled bool

	History handlers.HistoryLister // nil: /api/v1/analyses answers 404
	Metrics http.Handler           // nil: no /metrics
	MCP     http.Handler           // nil: no /mcp

	CORSAllowedOrigins []string
	Logger             *slog.Logger
}

// NewRouter creates and configures a new chi router with all routes.
func NewRouter(deps Deps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(apimiddleware.AccessLog(deps.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(corsOptions(deps.CORSAllowedOrigins)))

	health := handlers.NewHealthHandler(deps.Provider, deps.LLMEnabled)
	r.Get("/health", health.Health)
	r.Get("/health/llm", health.LLM)

	r.Post("/process_text", handlers.NewAnalysisHandler(deps.Analyzer).ProcessText)

	r.Route("/api/v1", func(r chi.Router) {
		if deps.History != nil {
			r.Get("/analyses", handlers.NewHistoryHandler(deps.History).ListAnalyses)
			return
		}
		r.Get("/analyses", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"analysis history is disabled"}`)) //nolint:errcheck
		})
	})

	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics)
	}
	if deps.MCP != nil {
		r.Handle("/mcp", deps.MCP)
	}

	return r
}

// corsOptions allows credentials, so the response always echoes the request
// origin. A "*" entry accepts any origin; an empty list accepts none.
func corsOptions(origins []string) cors.Options {
	opts := cors.Options{
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	explicit := make([]string, 0, len(origins))
	for _, o := range origins {
		if o == "*" {
			opts.AllowOriginFunc = func(*http.Request, string) bool { return true }
			return opts
		}
		explicit = append(explicit, o)
	}
	if len(explicit) == 0 {
		opts.AllowOriginFunc = func(*http.Request, string) bool { return false }
		return opts
	}
	opts.AllowedOrigins = explicit
	return opts
}
