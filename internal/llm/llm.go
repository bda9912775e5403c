package llm

import (
	"context"
	"encoding/json"
)

// Provider is the core abstraction for generative model calls. Every
// AI generation function builds a Request and receives structured,
// schema-validated JSON back.
type Provider interface {
	// Generate sends a prompt to the model and returns its response.
	// When the request carries a Schema, the provider asks the model
	// for structured output and validates the result against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// SpeechProvider renders text to raw audio. Implemented by providers
// whose backing model can produce speech (currently Gemini only).
type SpeechProvider interface {
	// GenerateSpeech returns raw PCM audio: mono, 24kHz, 16-bit
	// little-endian samples, without any container.
	GenerateSpeech(ctx context.Context, req SpeechRequest) ([]byte, error)
}

// Request describes what to send to the model.
type Request struct {
	// System is the system prompt establishing the model's role.
	System string

	// Messages is the conversation. Single-turn generation passes one
	// user message.
	Messages []Message

	// Schema is the JSON Schema the response must conform to. When
	// nil, the response Content is the raw text.
	Schema *Schema

	// MaxTokens caps the response length. Zero means provider default.
	MaxTokens int

	// Temperature controls randomness, 0.0 - 1.0.
	Temperature float64
}

// Message is a single conversation message.
type Message struct {
	Role    Role
	Content string
}

// Role is the message sender role.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema defines the JSON structure expected from the model.
type Schema struct {
	// Name identifies the schema, kebab-case (e.g. "practice-exam").
	Name string

	// Description tells the model what the schema represents.
	Description string

	// Definition is the JSON Schema definition as a map.
	Definition map[string]any
}

// SpeechRequest describes a text-to-speech render.
type SpeechRequest struct {
	Text  string
	Voice string // prebuilt voice name, e.g. "Algenib" or "Schedar"
}

// Response holds the model's output.
type Response struct {
	// Content is the generated output. With a Schema it is the
	// validated JSON object; without one it is the raw text.
	Content json.RawMessage

	// Usage reports token consumption for this request.
	Usage Usage

	// Model is the actual model that served the request.
	Model string

	// StopReason is normalized to "end" or "max_tokens".
	StopReason string
}

// Usage tracks token consumption for a single request.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
