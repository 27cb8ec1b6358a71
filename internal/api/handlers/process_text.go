package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
)

const maxRequestBytes = 1 << 20

// Analyzer is satisfied by analysis.Service.
type Analyzer interface {
	ProcessText(ctx context.Context, text string) analysis.Result
}

// ProcessTextRequest is the POST /process_text body. SessionID is accepted
// for client compatibility and ignored.
type ProcessTextRequest struct {
	Text      *string `json:"text"`
	SessionID string  `json:"session_id,omitempty"`
}

type AnalysisHandler struct {
	analyzer Analyzer
}

func NewAnalysisHandler(analyzer Analyzer) *AnalysisHandler {
	return &AnalysisHandler{analyzer: analyzer}
}

// ProcessText handles POST /process_text. It answers 200 with an analysis for
// any well-formed request; provider failures never surface here.
func (h *AnalysisHandler) ProcessText(w http.ResponseWriter, r *http.Request) {
	var req ProcessTextRequest
	if err := decodeBody(http.MaxBytesReader(w, r.Body, maxRequestBytes), &req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if req.Text == nil {
		writeError(w, http.StatusUnprocessableEntity, "text is required")
		return
	}

	writeJSON(w, http.StatusOK, h.analyzer.ProcessText(r.Context(), *req.Text))
}

// decodeBody requires the body to hold exactly one JSON value.
func decodeBody(body io.Reader, v any) error {
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		if err == nil {
			return errors.New("unexpected data after JSON value")
		}
		return err
	}
	return nil
}
