package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/matiasleandrokruk/aura/internal/domain/history"
)

// HistoryLister is satisfied by history.Service.
type HistoryLister interface {
	ListRecent(ctx context.Context, limit, offset int) ([]*history.Event, int, error)
}

type ListAnalysesResponse struct {
	Data []*history.Event `json:"data"`
	Meta Meta             `json:"meta"`
}

type HistoryHandler struct {
	history HistoryLister
}

func NewHistoryHandler(h HistoryLister) *HistoryHandler {
	return &HistoryHandler{history: h}
}

// ListAnalyses handles GET /api/v1/analyses.
func (h *HistoryHandler) ListAnalyses(w http.ResponseWriter, r *http.Request) {
	page := parsePaginationParams(r)

	events, total, err := h.history.ListRecent(r.Context(), page.Limit, page.Offset)
	if err != nil {
		slog.ErrorContext(r.Context(), "list analyses failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list analyses")
		return
	}
	if events == nil {
		events = []*history.Event{}
	}

	writeJSON(w, http.StatusOK, ListAnalysesResponse{
		Data: events,
		Meta: Meta{Total: total, Limit: page.Limit, Offset: page.Offset},
	})
}
