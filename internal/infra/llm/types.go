// Package llm defines the model-agnostic LLM provider abstraction.
// All types here are shared between the provider interface and adapters.
package llm

import "time"

// Message represents a single turn in a conversation (role + content).
type Message struct {
	Role    string // "system" | "user" | "assistant"
	Content string
}

// ChatRequest is the input for a non-streaming chat completion.
type ChatRequest struct {
	// Model overrides the provider default when non-empty.
	Model       string
	Messages    []Message
	Temperature float32
	MaxTokens   int
	// JSONMode asks the provider for a JSON object response where supported.
	JSONMode bool
}

// ChatResponse is the output from a non-streaming chat completion.
type ChatResponse struct {
	Content    string // The assistant message text.
	StopReason string // "stop" | "length" | ...
	Tokens     int    // Total tokens consumed (prompt + completion), when reported.
}

// ModelMeta describes the model / provider identity.
type ModelMeta struct {
	ID       string // e.g. "openai/gpt-4o-mini"
	Provider string // e.g. "openrouter", "groq"
	Endpoint string
}

// ProviderConfig is the resolved, immutable provider selection for the process.
type ProviderConfig struct {
	Name        string
	APIKey      string
	EndpointURL string
	Model       string
	Referer     string // OpenRouter attribution, optional
	Title       string // OpenRouter attribution, optional
	Timeout     time.Duration
}

// HasAPIKey reports whether LLM calls are enabled at all.
func (c ProviderConfig) HasAPIKey() bool {
	return c.APIKey != ""
}
