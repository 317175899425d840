package ai

import (
	"fmt"

	"github.com/DachengChen/paiData/config"
)

// SupportedProviders lists available provider names for display.
var SupportedProviders = []string{
	config.ProviderOpenRouter,
	config.ProviderOpenAI,
	config.ProviderOllama,
	config.ProviderPlaceholder,
}

// NewProvider creates an AI provider from the application config.
// OpenRouter and OpenAI need an API key; Ollama runs locally without one.
func NewProvider(cfg config.AIConfig) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter, "":
		if cfg.OpenRouter.APIKey == "" {
			return nil, fmt.Errorf("OpenRouter API key not set. Set OPENROUTER_API_KEY env var or add it to ~/.paidata/config.yaml")
		}
		return newEndpointClient(config.ProviderOpenRouter, cfg.OpenRouter, cfg.MaxTokens)

	case config.ProviderOpenAI:
		if cfg.OpenAI.APIKey == "" {
			return nil, fmt.Errorf("OpenAI API key not set. Set OPENAI_API_KEY env var or add it to ~/.paidata/config.yaml")
		}
		return newEndpointClient(config.ProviderOpenAI, cfg.OpenAI, cfg.MaxTokens)

	case config.ProviderOllama:
		return newEndpointClient(config.ProviderOllama, cfg.Ollama, cfg.MaxTokens)

	case config.ProviderPlaceholder:
		return NewPlaceholder(), nil

	default:
		return nil, fmt.Errorf("unknown AI provider %q. Supported: openrouter, openai, ollama, placeholder", cfg.Provider)
	}
}

func newEndpointClient(name string, ep config.EndpointConfig, maxTokens int) (*Client, error) {
	return NewClient(ClientConfig{
		Name:      name,
		BaseURL:   ep.BaseURL,
		APIKey:    ep.APIKey,
		Model:     ep.Model,
		MaxTokens: maxTokens,
	})
}
