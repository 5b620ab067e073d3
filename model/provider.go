package model

import (
	"context"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// Provider abstracts the remote completion boundary (OpenAI, Anthropic,
// Ollama) using provider-agnostic types.
//
// The interface is defined in the model package rather than the provider
// package to avoid import cycles: provider implementations import model, and
// the engine can depend on the interface without importing any SDK.
type Provider interface {
	// Complete sends the ordered message list and streams the response back
	// via callback. When req.Tools is non-empty the model may answer with a
	// function-call intent instead of text; intents are delivered through
	// the callback's toolCalls argument.
	Complete(ctx context.Context, req Request, callback StreamCallback) error

	// ListModels returns the models available from this provider.
	ListModels(ctx context.Context) ([]ModelInfo, error)

	// GetModel returns the currently selected model identifier.
	GetModel() string

	// SetModel changes the active model.
	SetModel(model string)

	// Ping checks if the provider is reachable.
	Ping(ctx context.Context) error
}

// Request carries everything that can affect a completion's output. The same
// fields feed the cache fingerprint.
type Request struct {
	Messages    []Message
	Tools       []mcptypes.Tool
	Temperature float64
	TopP        float64
}

// StreamCallback is called for each chunk of a streamed response and for any
// function-call intents the model produces. A non-nil error aborts the stream.
type StreamCallback func(chunk string, toolCalls []ToolCall) error

// ModelInfo describes a model offered by a provider.
type ModelInfo struct {
	Name     string
	Provider string
	Size     int64
}
