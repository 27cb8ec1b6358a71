package analysis

import (
	"context"
	"errors"

	"github.com/matiasleandrokruk/aura/internal/infra/llm"
)

// SystemPrompt pins the provider to the four-key JSON contract.
const SystemPrompt = `You analyze the emotional tone of short spoken or written text.
Respond with ONLY a JSON object with exactly these four keys:
  "sentiment_score": number between 0 and 1 (0 = very negative, 1 = very positive)
  "sentiment_label": one of "negative", "neutral", "positive"
  "energy": number between 0 and 1 (how energetic or aroused the speaker sounds)
  "keywords": array of short strings, the most salient words or phrases
No prose, no markdown, no extra keys.`

// ProviderClient sends the analysis prompt to an LLM provider and returns the
// raw JSON object it produced.
type ProviderClient struct {
	provider llm.LLMProvider
}

// NewProviderClient wraps provider.
func NewProviderClient(provider llm.LLMProvider) *ProviderClient {
	return &ProviderClient{provider: provider}
}

// CallProvider performs one chat completion for text. Failures carry an
// llm.Kind: config, transport or parse.
func (c *ProviderClient) CallProvider(ctx context.Context, text string) (map[string]any, error) {
	resp, err := c.provider.ChatCompletion(ctx, llm.ChatRequest{
		Messages: []llm.Message{
			{Role: "system", Content: SystemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := llm.DecodeJSON(resp.Content, &raw); err != nil {
		return nil, llm.NewParseError("analysis: decode content", err)
	}
	if raw == nil {
		return nil, llm.NewParseError("analysis: decode content", errors.New("content is not a JSON object"))
	}
	return raw, nil
}

// ModelInfo reports the wrapped provider identity.
func (c *ProviderClient) ModelInfo() llm.ModelMeta {
	return c.provider.ModelInfo()
}
