// Package llm provides a provider-switching client for text generation.
// Supported providers are a local Ollama server and any OpenAI-compatible API.
package llm

import (
	"context"
	"fmt"

	"github.com/hazz-dev/kbprobe/internal/config"
)

// Client generates text from a prompt pair.
type Client interface {
	// Provider returns the provider identifier ("ollama" or "openai").
	Provider() string
	// Model returns the configured model name.
	Model() string
	// Generate sends prompt (and an optional system prompt, "" to omit)
	// to the provider and returns the generated text.
	Generate(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// New returns the Client for the configured provider.
func New(cfg config.LLMConfig) (Client, error) {
	switch cfg.Provider {
	case "ollama":
		return newOllamaClient(cfg.Ollama), nil
	case "openai":
		return newOpenAIClient(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
