package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/matiasleandrokruk/aura/internal/infra/llm"
)

const llmProbeTimeout = 5 * time.Second

// HealthHandler serves liveness and LLM readiness.
type HealthHandler struct {
	provider llm.LLMProvider
	enabled  bool
}

// NewHealthHandler: enabled is false when no API key is configured; the
// provider is never probed in that case.
func NewHealthHandler(provider llm.LLMProvider, enabled bool) *HealthHandler {
	return &HealthHandler{provider: provider, enabled: enabled && provider != nil}
}

// Health handles GET /health. It does not touch the provider.
func (h *HealthHandler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type llmHealthResponse struct {
	Status   string `json:"status"`
	Provider string `json:"provider,omitempty"`
	Model    string `json:"model,omitempty"`
	Error    string `json:"error,omitempty"`
}

// LLM handles GET /health/llm: 200 when the provider answers a probe, 503
// otherwise (including when LLM calls are disabled).
func (h *HealthHandler) LLM(w http.ResponseWriter, r *http.Request) {
	if !h.enabled {
		writeJSON(w, http.StatusServiceUnavailable, llmHealthResponse{Status: "disabled"})
		return
	}

	meta := h.provider.ModelInfo()
	resp := llmHealthResponse{Status: "ok", Provider: meta.Provider, Model: meta.ID}

	ctx, cancel := context.WithTimeout(r.Context(), llmProbeTimeout)
	defer cancel()
	if err := h.provider.HealthCheck(ctx); err != nil {
		resp.Status = "unavailable"
		resp.Error = string(llm.KindOf(err))
		writeJSON(w, http.StatusServiceUnavailable, resp)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}
