// Package llm: provider endpoint catalog.
// OpenRouter and Groq expose the same OpenAI-compatible chat-completion API;
// they differ only in URL and default model, so they are data, not code.
package llm

import (
	"fmt"
	"sort"
	"strings"
)

const (
	ProviderOpenRouter = "openrouter"
	ProviderGroq       = "groq"
)

// Endpoint describes one OpenAI-compatible chat-completion provider.
type Endpoint struct {
	Name         string
	URL          string
	DefaultModel string
}

var endpoints = map[string]Endpoint{
	ProviderOpenRouter: {
		Name:         ProviderOpenRouter,
		URL:          "https://openrouter.ai/api/v1/chat/completions",
		DefaultModel: "openai/gpt-4o-mini",
	},
	ProviderGroq: {
		Name:         ProviderGroq,
		URL:          "https://api.groq.com/openai/v1/chat/completions",
		DefaultModel: "llama-3.1-8b-instant",
	},
}

// LookupEndpoint returns the catalog entry for name (case-insensitive).
func LookupEndpoint(name string) (Endpoint, error) {
	ep, ok := endpoints[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Endpoint{}, fmt.Errorf("llm: provider %q not supported (available: %v)", name, EndpointNames())
	}
	return ep, nil
}

// EndpointNames returns the supported provider names, sorted.
func EndpointNames() []string {
	out := make([]string, 0, len(endpoints))
	for k := range endpoints {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
