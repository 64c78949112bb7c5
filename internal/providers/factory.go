package providers

import "fmt"

// NewClient creates an LLMClient for the named provider. Model
// identifiers are chosen per call, not per client, so mode switching
// never rebuilds the client.
func NewClient(provider, apiKey string) (LLMClient, error) {
	switch provider {
	case "", "gemini":
		return NewGeminiClient(apiKey), nil
	case "openai":
		return NewOpenAICompatClient(apiKey, ""), nil
	case "anthropic":
		return NewAnthropicClient(apiKey), nil
	default:
		return nil, fmt.Errorf("unknown provider: %s (supported: gemini, openai, anthropic)", provider)
	}
}
