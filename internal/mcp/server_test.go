package mcp

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
)

type recordingAnalyzer struct {
	mu    sync.Mutex
	texts []string
}

func (a *recordingAnalyzer) ProcessText(_ context.Context, text string) analysis.Result {
	a.mu.Lock()
	a.texts = append(a.texts, text)
	a.mu.Unlock()
	return analysis.AnalyzeHeuristic(text)
}

func connect(t *testing.T, analyzer Analyzer) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	serverTransport, clientTransport := mcp.NewInMemoryTransports()
	serverSession, err := NewServer(analyzer).Connect(ctx, serverTransport, nil)
	if err != nil {
		t.Fatalf("server connect: %v", err)
	}
	t.Cleanup(func() { serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}

func TestServer_ListsAnalyzeTool(t *testing.T) {
	t.Parallel()

	session := connect(t, &recordingAnalyzer{})
	res, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools: %v", err)
	}
	if len(res.Tools) != 1 || res.Tools[0].Name != ToolAnalyze {
		t.Fatalf("tools = %+v; want only %s", res.Tools, ToolAnalyze)
	}
}

func TestServer_AnalyzeText(t *testing.T) {
	t.Parallel()

	analyzer := &recordingAnalyzer{}
	session := connect(t, analyzer)

	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      ToolAnalyze,
		Arguments: map[string]any{"text": "I love building wonderful things"},
	})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	if res.IsError {
		t.Fatalf("tool returned error result: %+v", res.Content)
	}

	raw, err := json.Marshal(res.StructuredContent)
	if err != nil {
		t.Fatalf("marshal structured content: %v", err)
	}
	var got analysis.Result
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("structured content is not a Result: %v (%s)", err, raw)
	}
	if got.SentimentLabel != analysis.LabelPositive || got.SentimentScore != 0.7 {
		t.Errorf("unexpected result %+v", got)
	}
	if got.SentimentScore < 0 || got.SentimentScore > 1 || got.Energy < 0 || got.Energy > 1 {
		t.Errorf("result out of range: %+v", got)
	}
	if len(analyzer.texts) != 1 || analyzer.texts[0] != "I love building wonderful things" {
		t.Errorf("analyzer saw %v", analyzer.texts)
	}
}

func TestHandler_RejectsPlainGET(t *testing.T) {
	t.Parallel()

	h := Handler(NewServer(&recordingAnalyzer{}))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest("GET", "/mcp", nil))

	if rr.Code < 400 {
		t.Errorf("GET without MCP session should be rejected, got %d", rr.Code)
	}
}
