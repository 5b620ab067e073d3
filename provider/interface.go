// Package provider implements the remote completion boundary for shellm.
//
// shellm talks to multiple LLM services (OpenAI, Anthropic, Ollama) through
// the model.Provider interface. Each implementation converts between shellm's
// provider-agnostic types and the SDK-specific types, streams answer chunks
// back through a callback and surfaces model-requested function calls as
// model.ToolCall intents.
//
// The Provider interface itself lives in the model package to avoid import
// cycles: implementations here import model, and the engine depends only on
// the interface.
package provider

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOpenAI    ProviderType = "openai"
	ProviderTypeAnthropic ProviderType = "anthropic"
	ProviderTypeOllama    ProviderType = "ollama"
)

// Config holds provider-specific configuration.
type Config struct {
	Type    ProviderType
	BaseURL string
	Model   string
	APIKey  string // unused for Ollama
}
