package config

import "runtime"

func defaultConfig() *Config {
	return &Config{
		DataDirectory: "~/.local/share/shellm",
		Provider:      "openai",
		DefaultModel:  "gpt-4o",
		Temperature:   0.0,
		TopP:          1.0,
		Caching:       true,
		Streaming:     true,
		Functions:     false,
		CacheEntries:  100,
		ChatMessages:  100,
		ToolRounds:    5,
		Shell:         DetectShell(),
		OS:            runtime.GOOS,
	}
}

func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		DataDirectory: "~/.local/share/shellm",
	}
}

func DefaultUserConfig() *UserConfig {
	return &UserConfig{
		Provider: ProviderConfig{
			ID:           "openai",
			DefaultModel: "gpt-4o",
		},
		Defaults: DefaultsConfig{
			Temperature: 0.0,
			TopP:        1.0,
			Caching:     true,
			Streaming:   true,
			Functions:   false,
		},
		Cache:     CacheConfig{MaxEntries: 100},
		Chat:      ChatConfig{MaxMessages: 100},
		Functions: FunctionsConfig{MaxRounds: 5},
	}
}

func GenerateSystemConfigTemplate() string {
	return `# shellm System Configuration
# Location: ~/.config/shellm/settings.toml
# This file uses TOML format: https://toml.io

# Directory where sessions, roles and user config are stored
data_directory = "~/.local/share/shellm"
`
}

func GenerateUserConfigTemplate() string {
	return `# shellm User Configuration
# Location: <data_directory>/config.toml
# This file uses TOML format: https://toml.io

[provider]
# Completion provider: "openai", "anthropic" or "ollama"
id = "openai"

# Provider base URL (optional, provider default when empty)
# base_url = "https://api.openai.com/v1"

# Model used when none is given on the command line
default_model = "gpt-4o"

[defaults]
temperature = 0.0
top_p = 1.0

# Memoize completion calls
caching = true

# Stream answers as they are produced
streaming = true

# Allow the model to request local function execution
functions = false

[cache]
# Completion cache entry ceiling, oldest entries evicted beyond it
max_entries = 100

[chat]
# Session history ceiling, oldest exchanges dropped beyond it
max_messages = 100

[functions]
# Function-call rounds allowed per turn before a final answer is forced
max_rounds = 5
`
}
