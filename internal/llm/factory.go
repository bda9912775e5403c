package llm

import (
	"context"
	"fmt"
)

// Config holds provider configuration.
type Config struct {
	// Provider selects which backend to use: "gemini" or "openai".
	Provider string

	Gemini GeminiConfig
	OpenAI OpenAIConfig
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey      string
	Model       string // Default: "gemini-2.0-flash"
	SpeechModel string // Default: "gemini-2.5-flash-preview-tts"
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional override for OpenAI-compatible APIs.
}

// NewProvider creates a Provider from configuration. The returned
// provider also implements SpeechProvider when the backend supports
// text-to-speech; callers that need speech should type-assert.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "gemini":
		return NewGeminiProvider(ctx, cfg.Gemini)
	case "openai":
		return NewOpenAIProvider(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
