package llm

import (
	"context"
	"fmt"

	"lectio/internal/store"
)

// NewProvider builds the configured provider wrapped in middleware:
// caller -> retry -> logging -> vendor adapter.
func NewProvider(ctx context.Context, cfg Config, events store.EventRepo) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "mock":
		base, err = NewMockProvider(), nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initialize %s provider: %w", cfg.Provider, err)
	}

	if events != nil {
		base = WithLogging(base, cfg.Provider, events)
	}
	return WithRetry(base, cfg.Retry), nil
}

// NewProviderFromEnv builds a provider from LECTIO_* configuration,
// falling back to DiscoverConfig probing. The bool reports whether any
// provider could be configured.
func NewProviderFromEnv(ctx context.Context, events store.EventRepo) (Provider, bool, error) {
	cfg := ConfigFromEnv()
	if cfg.Validate() != nil || !configured(cfg) {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, false, nil
		}
		cfg = discovered
	}

	p, err := NewProvider(ctx, cfg, events)
	if err != nil {
		return nil, false, err
	}
	return p, true, nil
}

// configured reports whether the selected provider has an API key, so
// env config can fall through to discovery instead of failing.
func configured(cfg Config) bool {
	switch cfg.Provider {
	case "anthropic":
		return cfg.Anthropic.APIKey != ""
	case "openai":
		return cfg.OpenAI.APIKey != ""
	case "gemini":
		return cfg.Gemini.APIKey != ""
	case "openrouter":
		return cfg.OpenRouter.APIKey != ""
	case "mock":
		return true
	}
	return false
}
