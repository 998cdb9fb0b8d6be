package llm

import "fmt"

const defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"

// OpenRouterProvider routes calls through OpenRouter's OpenAI-compatible
// endpoint. Models are addressed by vendor slug (anthropic/claude-3.5-haiku)
// and pass through with no alias resolution.
type OpenRouterProvider struct {
	*OpenAIProvider
}

// NewOpenRouterProvider validates the config and builds the adapter.
func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOpenRouterBaseURL
	}

	inner := newChatCompletionProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   cfg.Model,
		BaseURL: baseURL,
	})
	return &OpenRouterProvider{OpenAIProvider: inner}, nil
}
