package provider

import "testing"

func TestMapProviderIDToType(t *testing.T) {
	tests := []struct {
		id   string
		want ProviderType
	}{
		{"openai", ProviderTypeOpenAI},
		{"anthropic", ProviderTypeAnthropic},
		{"ollama", ProviderTypeOllama},
		{"something-else", ProviderType("something-else")},
	}

	for _, tt := range tests {
		if got := MapProviderIDToType(tt.id); got != tt.want {
			t.Errorf("MapProviderIDToType(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name:    "unknown type",
			cfg:     Config{Type: "nope"},
			wantErr: true,
		},
		{
			name:    "openai without key",
			cfg:     Config{Type: ProviderTypeOpenAI},
			wantErr: true,
		},
		{
			name:    "anthropic without key",
			cfg:     Config{Type: ProviderTypeAnthropic},
			wantErr: true,
		},
		{
			name: "openai with key",
			cfg:  Config{Type: ProviderTypeOpenAI, APIKey: "sk-test"},
		},
		{
			name: "ollama defaults",
			cfg:  Config{Type: ProviderTypeOllama},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p == nil {
				t.Fatal("expected provider")
			}
		})
	}
}

func TestOllamaProviderDefaults(t *testing.T) {
	p, err := NewOllamaProvider("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.GetModel() != "llama3.1:latest" {
		t.Errorf("expected default model, got %q", p.GetModel())
	}

	p.SetModel("qwen2.5-coder")
	if p.GetModel() != "qwen2.5-coder" {
		t.Errorf("SetModel did not take effect: %q", p.GetModel())
	}
}
