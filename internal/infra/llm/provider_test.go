// Compile-time interface satisfaction check.
package llm

import "testing"

// TestChatCompletionProvider_ImplementsLLMProvider is a compile-time check.
// If ChatCompletionProvider does not satisfy LLMProvider, this file will not compile.
func TestChatCompletionProvider_ImplementsLLMProvider(t *testing.T) {
	t.Parallel()

	var _ LLMProvider = &ChatCompletionProvider{}
}
