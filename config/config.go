package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

type SystemConfig struct {
	DataDirectory string `toml:"data_directory"`
}

type ProviderConfig struct {
	ID           string `toml:"id"`
	BaseURL      string `toml:"base_url,omitempty"`
	DefaultModel string `toml:"default_model"`
}

type DefaultsConfig struct {
	Temperature float64 `toml:"temperature"`
	TopP        float64 `toml:"top_p"`
	Caching     bool    `toml:"caching"`
	Streaming   bool    `toml:"streaming"`
	Functions   bool    `toml:"functions"`
}

type CacheConfig struct {
	MaxEntries int `toml:"max_entries"`
}

type ChatConfig struct {
	MaxMessages int `toml:"max_messages"`
}

type FunctionsConfig struct {
	MaxRounds int `toml:"max_rounds"`
}

type UserConfig struct {
	Provider  ProviderConfig  `toml:"provider"`
	Defaults  DefaultsConfig  `toml:"defaults"`
	Cache     CacheConfig     `toml:"cache"`
	Chat      ChatConfig      `toml:"chat"`
	Functions FunctionsConfig `toml:"functions"`
}

// Config is the explicit configuration struct constructed once at process
// start and passed by reference into the engine and REPL. No component reads
// ambient process state directly.
type Config struct {
	DataDirectory string
	Provider      string
	BaseURL       string
	APIKey        string
	DefaultModel  string
	Temperature   float64
	TopP          float64
	Caching       bool
	Streaming     bool
	Functions     bool
	CacheEntries  int
	ChatMessages  int
	ToolRounds    int
	Shell         string
	OS            string
}

var Debug = false
var DebugLog *log.Logger

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) SessionsDir() string {
	return filepath.Join(c.DataDir(), "sessions")
}

func (c *Config) RolesDir() string {
	return filepath.Join(c.DataDir(), "roles")
}

func (c *Config) CachePath() string {
	return filepath.Join(GetCacheDir(), "completions.db")
}

func (c *Config) applyEnvOverrides() {
	if dataDir := os.Getenv("SHELLM_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if provider := os.Getenv("SHELLM_PROVIDER"); provider != "" {
		c.Provider = provider
	}
	if baseURL := os.Getenv("SHELLM_BASE_URL"); baseURL != "" {
		c.BaseURL = baseURL
	}
	if model := os.Getenv("SHELLM_MODEL"); model != "" {
		c.DefaultModel = model
	}
	if temp := os.Getenv("SHELLM_TEMPERATURE"); temp != "" {
		if v, err := strconv.ParseFloat(temp, 64); err == nil {
			c.Temperature = v
		}
	}

	// API key resolution: generic override first, then provider-specific.
	if key := os.Getenv("SHELLM_API_KEY"); key != "" {
		c.APIKey = key
		return
	}
	switch c.Provider {
	case "anthropic":
		c.APIKey = os.Getenv("ANTHROPIC_API_KEY")
	case "openai":
		c.APIKey = os.Getenv("OPENAI_API_KEY")
	}
}

func CheckDebug() bool {
	debug := os.Getenv("SHELLM_DEBUG")
	return debug == "true" || debug == "1"
}

func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600 - may contain prompt text
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	DebugLog = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds|log.Lshortfile)
	DebugLog.Printf("=== Debug logging started (SHELLM_DEBUG=%s) ===", os.Getenv("SHELLM_DEBUG"))
}

// DetectShell returns the host shell used for generated commands and for
// interpolating the shell-role prompts.
func DetectShell() string {
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	if shell := os.Getenv("SHELL"); shell != "" {
		return filepath.Base(shell)
	}
	return "sh"
}

func Load() (*Config, error) {
	cfg := defaultConfig()

	// Both loaders create their file from the default template on first run.
	systemCfg, err := LoadSystemConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load system config: %w", err)
	}
	cfg.DataDirectory = systemCfg.DataDirectory

	userCfg, err := LoadUserConfig(cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to load user config: %w", err)
	}
	cfg.applyUserConfig(userCfg)

	cfg.applyEnvOverrides()

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}
	if err := EnsureDir(GetCacheDir()); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyUserConfig(userCfg *UserConfig) {
	c.Provider = userCfg.Provider.ID
	c.BaseURL = userCfg.Provider.BaseURL
	c.DefaultModel = userCfg.Provider.DefaultModel
	c.Temperature = userCfg.Defaults.Temperature
	c.TopP = userCfg.Defaults.TopP
	c.Caching = userCfg.Defaults.Caching
	c.Streaming = userCfg.Defaults.Streaming
	c.Functions = userCfg.Defaults.Functions
	if userCfg.Cache.MaxEntries > 0 {
		c.CacheEntries = userCfg.Cache.MaxEntries
	}
	if userCfg.Chat.MaxMessages > 0 {
		c.ChatMessages = userCfg.Chat.MaxMessages
	}
	if userCfg.Functions.MaxRounds > 0 {
		c.ToolRounds = userCfg.Functions.MaxRounds
	}
}
