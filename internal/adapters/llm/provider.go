package llm

import (
	"context"
	"fmt"

	"github.com/mudasirshah/portfolio-agent/internal/config"
)

// NewClientFromConfig builds the model client selected by configuration.
func NewClientFromConfig(ctx context.Context, cfg *config.Config) (Client, error) {
	if cfg.UseMockLLM || cfg.Provider == config.ProviderMock {
		return NewMockClient(), nil
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.APIKey)
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.APIKey), nil
	case config.ProviderOpenAI:
		if cfg.BaseURL != "" {
			return NewOpenAICompatibleClient(cfg.BaseURL, cfg.APIKey), nil
		}
		return NewOpenAIClient(cfg.APIKey), nil
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}
