// Package llm: OpenAI-compatible chat-completion adapter.
// ChatCompletionProvider serves every catalog Endpoint (OpenRouter, Groq) with
// one implementation using stdlib net/http:
//   - POST <endpoint>: non-streaming chat completion, bearer-token auth
//
// Each call is a single attempt; failures are returned as tagged *Error values.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	mimeJSON          = "application/json"
	headerContentType = "Content-Type"

	// DefaultTimeout bounds every outbound provider call.
	DefaultTimeout = 15 * time.Second

	jsonResponseType = "json_object"
	snippetLimit     = 160
)

// ChatCompletionProvider implements LLMProvider against an OpenAI-compatible endpoint.
// Safe for concurrent use.
type ChatCompletionProvider struct {
	cfg        ProviderConfig
	httpClient *http.Client
}

// Option customizes the provider.
type Option func(*ChatCompletionProvider)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(p *ChatCompletionProvider) {
		if client != nil {
			p.httpClient = client
		}
	}
}

// NewChatCompletionProvider creates a provider for cfg. Timeout defaults to 15s.
func NewChatCompletionProvider(cfg ProviderConfig, opts ...Option) *ChatCompletionProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	cfg.Timeout = timeout
	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	p := &ChatCompletionProvider{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ─── wire types ──────────────────────────────────────────────────────────────

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	Temperature    float32           `json:"temperature"`
	MaxTokens      int               `json:"max_tokens,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		// Some providers return the streaming schema even when stream=false.
		Delta        chatMessage `json:"delta"`
		Text         string      `json:"text"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// ─── LLMProvider implementation ─────────────────────────────────────────────

// ChatCompletion sends one chat-completion request and returns the assistant content.
func (p *ChatCompletionProvider) ChatCompletion(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	const op = "llm chat"
	if p.cfg.APIKey == "" {
		return nil, configError(op)
	}

	model := req.Model
	if model == "" {
		model = p.cfg.Model
	}
	msgs := make([]chatMessage, len(req.Messages))
	for i, m := range req.Messages {
		msgs[i] = chatMessage(m)
	}
	payload := chatCompletionRequest{
		Model:       model,
		Messages:    msgs,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.JSONMode {
		payload.ResponseFormat = map[string]string{"type": jsonResponseType}
	}

	body, err := p.doPost(ctx, op, payload)
	if err != nil {
		return nil, err
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, parseError(op, fmt.Errorf("decode envelope: %w (body: %s)", err, snippet(string(body))))
	}
	if completion.Error != nil {
		return nil, transportError(op, fmt.Errorf("api error: %s", strings.TrimSpace(completion.Error.Message)))
	}

	content, finishReason := extractContent(completion)
	if content == "" {
		return nil, parseError(op, fmt.Errorf("empty content (finish_reason=%q, body: %s)", finishReason, snippet(string(body))))
	}

	resp := &ChatResponse{Content: content, StopReason: finishReason}
	if completion.Usage != nil {
		resp.Tokens = completion.Usage.TotalTokens
	}
	return resp, nil
}

// ModelInfo returns static metadata for this provider/model.
func (p *ChatCompletionProvider) ModelInfo() ModelMeta {
	return ModelMeta{
		ID:       p.cfg.Model,
		Provider: p.cfg.Name,
		Endpoint: p.cfg.EndpointURL,
	}
}

// HealthCheck issues a tiny JSON-mode completion and expects {"ok":true} back.
func (p *ChatCompletionProvider) HealthCheck(ctx context.Context) error {
	resp, err := p.ChatCompletion(ctx, ChatRequest{
		Messages: []Message{
			{Role: "system", Content: "You must respond with JSON only."},
			{Role: "user", Content: `Respond with {"ok":true}`},
		},
		JSONMode: true,
	})
	if err != nil {
		return err
	}
	var parsed struct {
		OK bool `json:"ok"`
	}
	if err := DecodeJSON(resp.Content, &parsed); err != nil {
		return parseError("llm health", err)
	}
	if !parsed.OK {
		return parseError("llm health", errors.New("unexpected response"))
	}
	return nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// doPost sends payload to the endpoint and returns the raw 2xx response body.
func (p *ChatCompletionProvider) doPost(ctx context.Context, op string, payload chatCompletionRequest) ([]byte, error) {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("encode body: %w", err))
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.EndpointURL, bytes.NewReader(encoded))
	if err != nil {
		return nil, transportError(op, fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	req.Header.Set(headerContentType, mimeJSON)
	if p.cfg.Referer != "" {
		req.Header.Set("HTTP-Referer", p.cfg.Referer)
	}
	if p.cfg.Title != "" {
		req.Header.Set("X-Title", p.cfg.Title)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("post (timeout=%s): %w", p.cfg.Timeout, err))
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Kind:       KindTransport,
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        errors.New(snippet(string(body))),
		}
	}
	return body, nil
}

func extractContent(completion chatCompletionResponse) (string, string) {
	var finishReason string
	for _, choice := range completion.Choices {
		if finishReason == "" {
			finishReason = strings.TrimSpace(choice.FinishReason)
		}
		if content := firstNonEmpty(choice.Message.Content, choice.Delta.Content, choice.Text); content != "" {
			return content, finishReason
		}
	}
	return "", finishReason
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// snippet flattens whitespace and caps s for error messages.
func snippet(s string) string {
	clean := strings.Join(strings.Fields(s), " ")
	if clean == "" {
		return "<empty>"
	}
	runes := []rune(clean)
	if len(runes) > snippetLimit {
		return string(runes[:snippetLimit]) + "..."
	}
	return clean
}
