package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/steward/internal/config"
	"github.com/agenthands/steward/internal/logger"
)

// NewClient builds the configured provider. An empty provider disables the
// assistant features and returns a nil client.
func NewClient(ctx context.Context, cfg config.LLMConfig, log *logger.Logger) (LLMClient, error) {
	if log == nil {
		log = logger.Nop()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))

	var next LLMClient
	switch provider {
	case "":
		return nil, nil

	case "openai":
		next = NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		next = c

	case "claude", "anthropic":
		next = NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)

	case "ollama":
		// Ollama serves an OpenAI-compatible API under /v1
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		log.Info("using ollama through the openai-compatible api", "base_url", baseURL)

		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by ollama, required by the client
		}
		next = NewOpenAIClient(apiKey, cfg.Model, baseURL)

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}

	if cfg.Model == "" {
		return nil, fmt.Errorf("llm provider %s requires a model", provider)
	}
	return &observed{provider: provider, next: next, log: log.With("component", "llm")}, nil
}
