package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/cors"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
	"github.com/matiasleandrokruk/aura/internal/domain/history"
	"github.com/matiasleandrokruk/aura/internal/infra/eventbus"
	"github.com/matiasleandrokruk/aura/internal/infra/llm"
	"github.com/matiasleandrokruk/aura/internal/infra/metrics"
	"github.com/matiasleandrokruk/aura/internal/infra/sqlite"
	"github.com/matiasleandrokruk/aura/internal/mcp"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestRouter wires a heuristic-only analyzer; no network access.
func newTestRouter(t *testing.T, hist *history.Service, bus eventbus.EventBus) (http.Handler, *metrics.Collector) {
	t.Helper()
	collector := metrics.NewCollector(nil)
	opts := []analysis.Option{analysis.WithMetrics(collector), analysis.WithLogger(quietLogger())}
	if bus != nil {
		opts = append(opts, analysis.WithEventBus(bus))
	}
	cfg := llm.ProviderConfig{Name: llm.ProviderOpenRouter, Model: "openai/gpt-4o-mini"}
	svc := analysis.NewService(cfg, nil, opts...)

	deps := Deps{
		Analyzer:           svc,
		LLMEnabled:         svc.LLMEnabled(),
		Metrics:            collector.Handler(),
		MCP:                mcp.Handler(mcp.NewServer(svc)),
		CORSAllowedOrigins: []string{"http://localhost:5173", "http://127.0.0.1:5173", "*"},
		Logger:             quietLogger(),
	}
	if hist != nil {
		deps.History = hist
	}
	return NewRouter(deps), collector
}

func serve(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestNewRouter_HealthEndpoint(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)
	w := serve(router, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Errorf("expected 200 from /health, got %d", w.Code)
	}
	if strings.TrimSpace(w.Body.String()) != `{"status":"ok"}` {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestNewRouter_LLMHealthDisabledWithoutKey(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)
	w := serve(router, http.MethodGet, "/health/llm", "")
	if w.Code != http.StatusServiceUnavailable || !strings.Contains(w.Body.String(), "disabled") {
		t.Errorf("got %d %q; want 503 disabled", w.Code, w.Body.String())
	}
}

func TestNewRouter_ProcessText_HeuristicWithoutKey(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)
	w := serve(router, http.MethodPost, "/process_text", `{"text":"I love this, it's great!"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var got analysis.Result
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := analysis.AnalyzeHeuristic("I love this, it's great!")
	if got.SentimentScore != want.SentimentScore || got.SentimentLabel != want.SentimentLabel || got.Energy != want.Energy {
		t.Errorf("got %+v; want %+v", got, want)
	}

	m := serve(router, http.MethodGet, "/metrics", "")
	if !strings.Contains(m.Body.String(), `aura_analysis_requests_total{provider="openrouter",source="heuristic"} 1`) {
		t.Errorf("metrics missing heuristic counter:\n%s", m.Body.String())
	}
}

func TestNewRouter_ProcessText_MissingText(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)
	w := serve(router, http.MethodPost, "/process_text", `{}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d; want 422", w.Code)
	}
}

func TestNewRouter_AnalysesDisabled(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)
	w := serve(router, http.MethodGet, "/api/v1/analyses", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d; want 404 when history is disabled", w.Code)
	}
}

func TestNewRouter_AnalysesRecordedThroughBus(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		t.Fatalf("sqlite.Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	hist := history.NewService(db)
	bus := eventbus.New()
	done := history.NewRecorder(hist, quietLogger()).Start(ctx, bus)

	router, _ := newTestRouter(t, hist, bus)
	serve(router, http.MethodPost, "/process_text", `{"text":"first"}`)
	serve(router, http.MethodPost, "/process_text", `{"text":"second one"}`)
	bus.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("recorder did not drain")
	}

	w := serve(router, http.MethodGet, "/api/v1/analyses?limit=1", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", w.Code, w.Body.String())
	}
	var resp struct {
		Data []history.Event `json:"data"`
		Meta struct {
			Total int `json:"total"`
			Limit int `json:"limit"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Meta.Total != 2 || resp.Meta.Limit != 1 || len(resp.Data) != 1 {
		t.Errorf("unexpected page %+v", resp)
	}
	if strings.Contains(w.Body.String(), "second one") {
		t.Error("raw text must never be exposed by history")
	}
}

func TestNewRouter_CORS(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodOptions, "/process_text", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:5173" {
		t.Errorf("Allow-Origin = %q; want request origin", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q; want true", got)
	}
}

func TestNewRouter_CORS_SimpleRequestEchoesOrigin(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, nil, nil)

	req := httptest.NewRequest(http.MethodPost, "/process_text", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://app.example")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Errorf("Allow-Origin = %q; want request origin", got)
	}
	if got := w.Header().Get("Access-Control-Allow-Credentials"); got != "true" {
		t.Errorf("Allow-Credentials = %q; want true", got)
	}
}

func TestCORSOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		origins []string
		origin  string
		want    string
	}{
		{name: "wildcard echoes any origin", origins: []string{"http://localhost:5173", "*"}, origin: "https://other.example", want: "https://other.example"},
		{name: "explicit list allows listed", origins: []string{"http://localhost:5173"}, origin: "http://localhost:5173", want: "http://localhost:5173"},
		{name: "explicit list rejects unlisted", origins: []string{"http://localhost:5173"}, origin: "https://other.example", want: ""},
		{name: "empty list rejects all", origins: nil, origin: "http://localhost:5173", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := cors.Handler(corsOptions(tt.origins))(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			req.Header.Set("Origin", tt.origin)
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if got := w.Header().Get("Access-Control-Allow-Origin"); got != tt.want {
				t.Errorf("Allow-Origin = %q; want %q", got, tt.want)
			}
			if got := w.Header().Get("Access-Control-Allow-Origin"); got == "*" {
				t.Error("wildcard Allow-Origin must never be sent with credentials")
			}
		})
	}
}
