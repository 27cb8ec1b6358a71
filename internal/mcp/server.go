// Package mcp exposes the analyzer as a Model Context Protocol tool so agents
// can call the same pipeline the HTTP API uses.
package mcp

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/matiasleandrokruk/aura/internal/domain/analysis"
	"github.com/matiasleandrokruk/aura/internal/version"
)

const (
	serverName             = "aura"
	ToolAnalyze            = "analyze_text"
	toolAnalyzeDescription = "Analyze the sentiment, energy and keywords of a piece of text. " +
		"Always returns a result; falls back to a heuristic when the LLM is unavailable."
)

// Analyzer is the subset of analysis.Service the tool needs.
type Analyzer interface {
	ProcessText(ctx context.Context, text string) analysis.Result
}

// AnalyzeInput is the analyze_text argument object.
type AnalyzeInput struct {
	Text string `json:"text" jsonschema:"the text to analyze"`
}

// NewServer builds an MCP server with the analyze_text tool registered.
func NewServer(analyzer Analyzer) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        ToolAnalyze,
		Description: toolAnalyzeDescription,
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in AnalyzeInput) (*mcp.CallToolResult, analysis.Result, error) {
		return nil, analyzer.ProcessText(ctx, in.Text), nil
	})
	return server
}

// Handler serves server over the streamable HTTP transport.
func Handler(server *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil)
}
