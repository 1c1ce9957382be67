package llm

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"reddit-persona/internal/config"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	DefaultGeminiModel = "gemini-2.5-flash"
	DefaultOpenAIModel = "gpt-4o-mini"
)

// resolveModel evita mandar a un proveedor el modelo por defecto del otro.
func resolveModel(provider, model string) string {
	switch provider {
	case ProviderGemini:
		if model == "" || strings.HasPrefix(model, "gpt-") {
			return DefaultGeminiModel
		}
	case ProviderOpenAI:
		if model == "" || strings.HasPrefix(model, "gemini-") {
			return DefaultOpenAIModel
		}
	}
	return model
}

// NewClient elige la implementacion segun LLM_PROVIDER.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (LLMClient, error) {
	provider := strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	if provider == "" {
		provider = ProviderGemini
	}
	switch provider {
	case ProviderOpenAI:
		return NewHTTPClient(HTTPOptions{
			BaseURL:     cfg.LLMBaseURL,
			APIKey:      cfg.LLMAPIKey,
			Model:       resolveModel(provider, cfg.LLMModel),
			Timeout:     cfg.LLMTimeout,
			Temperature: cfg.LLMTemperature,
		}, logger), nil
	case ProviderGemini:
		return NewGeminiClient(ctx, cfg.LLMAPIKey, resolveModel(provider, cfg.LLMModel), cfg.LLMTimeout, cfg.LLMTemperature)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
