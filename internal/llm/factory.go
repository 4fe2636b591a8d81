package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/storynest/storynest/internal/config"
)

// NewClient builds the provider selected by cfg.Provider.
func NewClient(ctx context.Context, cfg config.LLMConfig) (Client, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIClient(cfg), nil

	case "claude":
		return NewClaudeClient(cfg), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg)

	case "ollama":
		// Ollama speaks the OpenAI chat API under /v1; reuse that client
		// so usage and errors come back in one shape.
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = strings.TrimRight(baseURL, "/") + "/v1"
		}
		ollamaCfg := cfg
		ollamaCfg.BaseURL = baseURL
		if ollamaCfg.APIKey == "" {
			ollamaCfg.APIKey = "ollama" // ignored by Ollama, required by the client
		}
		return NewOpenAIClient(ollamaCfg), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
