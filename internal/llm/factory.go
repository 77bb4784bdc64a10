package llm

import (
	"context"
	"fmt"

	"codegraph/internal/config"
)

// NewEmbedder builds the Embedder selected by cfg.Embedding.Provider.
func NewEmbedder(ctx context.Context, cfg config.EmbeddingConfig, dimensions int) (Embedder, error) {
	switch cfg.Provider {
	case "genai":
		return NewGenAIEmbedder(ctx, cfg.APIKey, cfg.Model, "", dimensions)
	case "ollama", "":
		return NewOllamaEmbedder(cfg.Endpoint, cfg.Model, dimensions), nil
	default:
		return nil, fmt.Errorf("llm: unknown embedding provider %q", cfg.Provider)
	}
}

// NewChatProvider builds the ChatProvider selected by cfg.LLM.Provider. Every
// currently supported provider speaks the OpenAI-compatible chat completions
// wire format over HTTP; provider identity only changes the base URL.
func NewChatProvider(cfg config.LLMConfig, timeouts config.Timeouts) (ChatProvider, error) {
	baseURL := cfg.BaseURL
	switch cfg.Provider {
	case "anthropic":
		if baseURL == "" {
			baseURL = "https://api.anthropic.com/v1"
		}
	case "openai":
		if baseURL == "" {
			baseURL = "https://api.openai.com/v1"
		}
	case "zai":
		if baseURL == "" {
			baseURL = "https://api.z.ai/api/coding/paas/v4"
		}
	default:
		return nil, fmt.Errorf("llm: unknown chat provider %q", cfg.Provider)
	}
	return NewHTTPChatProvider(cfg.Provider, baseURL, cfg.APIKey, cfg.Model, timeouts.PerLLMCall)
}
