package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/ollama/ollama/api"

	"shellm/model"
)

// OllamaProvider implements model.Provider against a local Ollama server.
type OllamaProvider struct {
	client  *api.Client
	model   string
	baseURL string
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Parameters:
//   - baseURL: The Ollama server URL (default: "http://localhost:11434")
//   - model: The model name to use (default: "llama3.1:latest")
//
// Returns an error if the baseURL cannot be parsed.
func NewOllamaProvider(baseURL, model string) (*OllamaProvider, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}

	return &OllamaProvider{
		client:  api.NewClient(parsedURL, http.DefaultClient),
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Complete implements model.Provider.Complete by streaming an Ollama chat
// request. Tool calls arrive inline with response chunks and are converted to
// provider-agnostic intents.
func (p *OllamaProvider) Complete(ctx context.Context, req model.Request, callback model.StreamCallback) error {
	chatReq := &api.ChatRequest{
		Model:    p.model,
		Messages: ConvertToOllamaMessages(req.Messages),
		Tools:    ConvertToolsToOllamaFormat(req.Tools),
		Stream:   func(b bool) *bool { return &b }(true),
		Options: map[string]any{
			"temperature": req.Temperature,
			"top_p":       req.TopP,
		},
	}

	respFunc := func(resp api.ChatResponse) error {
		if callback == nil {
			return nil
		}
		return callback(resp.Message.Content, ConvertOllamaToolCalls(resp.Message.ToolCalls))
	}

	if err := p.client.Chat(ctx, chatReq, respFunc); err != nil {
		return fmt.Errorf("Ollama chat error: %w", err)
	}
	return nil
}

// ListModels implements model.Provider.ListModels.
func (p *OllamaProvider) ListModels(ctx context.Context) ([]model.ModelInfo, error) {
	resp, err := p.client.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list models: %w", err)
	}

	models := make([]model.ModelInfo, len(resp.Models))
	for i, m := range resp.Models {
		models[i] = model.ModelInfo{
			Name:     m.Name,
			Provider: "ollama",
			Size:     m.Size,
		}
	}

	return models, nil
}

// GetModel implements model.Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.model
}

// SetModel implements model.Provider.SetModel.
func (p *OllamaProvider) SetModel(model string) {
	p.model = model
}

// Ping implements model.Provider.Ping with a short-deadline list call.
func (p *OllamaProvider) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := p.client.List(ctx)
	return err
}
