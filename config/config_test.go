package config

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "tilde", input: "~/.local/share/shellm", want: "/home/tester/.local/share/shellm"},
		{name: "env var", input: "$HOME/data", want: "/home/tester/data"},
		{name: "plain", input: "/var/lib/shellm", want: "/var/lib/shellm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExpandPath(tt.input); got != tt.want {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUserConfigRoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	cfg := DefaultUserConfig()
	cfg.Provider.ID = "ollama"
	cfg.Provider.DefaultModel = "llama3.1:latest"
	cfg.Defaults.Caching = false
	cfg.Functions.MaxRounds = 3

	if err := SaveUserConfig(cfg, dataDir); err != nil {
		t.Fatalf("SaveUserConfig: %v", err)
	}

	loaded, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}

	if loaded.Provider.ID != "ollama" {
		t.Errorf("provider id: got %q", loaded.Provider.ID)
	}
	if loaded.Provider.DefaultModel != "llama3.1:latest" {
		t.Errorf("default model: got %q", loaded.Provider.DefaultModel)
	}
	if loaded.Defaults.Caching {
		t.Error("caching should be disabled")
	}
	if loaded.Functions.MaxRounds != 3 {
		t.Errorf("max rounds: got %d", loaded.Functions.MaxRounds)
	}
}

func TestLoadUserConfigCreatesDefault(t *testing.T) {
	dataDir := t.TempDir()

	cfg, err := LoadUserConfig(dataDir)
	if err != nil {
		t.Fatalf("LoadUserConfig: %v", err)
	}
	if cfg.Provider.ID != "openai" {
		t.Errorf("expected default provider openai, got %q", cfg.Provider.ID)
	}
	if !FileExists(filepath.Join(dataDir, "config.toml")) {
		t.Error("expected config.toml to be created")
	}
}

func TestGenerateUserConfigTemplateParses(t *testing.T) {
	content := GenerateUserConfigTemplate()
	if !strings.Contains(content, "[provider]") {
		t.Error("template missing [provider] section")
	}
	if !strings.Contains(content, "max_rounds") {
		t.Error("template missing max_rounds")
	}
}
