// Package config: application settings.
//
// Settings are stored in ~/.paidata/config.yaml. A .env file in the
// working directory is loaded first, and environment variables
// (OPENROUTER_API_KEY, OPENAI_API_KEY, ...) override the file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Provider names understood by the ai registry.
const (
	ProviderOpenRouter  = "openrouter"
	ProviderOpenAI      = "openai"
	ProviderOllama      = "ollama"
	ProviderPlaceholder = "placeholder"
)

// AppConfig is the top-level config file structure (~/.paidata/config.yaml).
type AppConfig struct {
	AI       AIConfig   `yaml:"ai"`
	Data     DataConfig `yaml:"data"`
	LogLevel string     `yaml:"log_level" env:"PAIDATA_LOG_LEVEL"`
}

// AIConfig holds the provider selection and per-endpoint credentials.
type AIConfig struct {
	Provider   string         `yaml:"provider" env:"PAIDATA_PROVIDER"`
	MaxTokens  int            `yaml:"max_tokens" env:"PAIDATA_MAX_TOKENS"`
	OpenRouter EndpointConfig `yaml:"openrouter" envPrefix:"OPENROUTER_"`
	OpenAI     EndpointConfig `yaml:"openai" envPrefix:"OPENAI_"`
	Ollama     EndpointConfig `yaml:"ollama" envPrefix:"OLLAMA_"`
}

// EndpointConfig describes one OpenAI-compatible completion endpoint.
type EndpointConfig struct {
	APIKey  string `yaml:"api_key,omitempty" env:"API_KEY"`
	Model   string `yaml:"model" env:"MODEL"`
	BaseURL string `yaml:"base_url" env:"BASE_URL"`
}

// DataConfig bounds how much of a dataset reaches the model and the screen.
type DataConfig struct {
	ContextChars int `yaml:"context_chars" env:"PAIDATA_CONTEXT_CHARS"`
	PreviewRows  int `yaml:"preview_rows" env:"PAIDATA_PREVIEW_ROWS"`
	MaxRows      int `yaml:"max_rows" env:"PAIDATA_MAX_ROWS"`
}

// Endpoint returns the endpoint settings for the selected provider.
func (c AIConfig) Endpoint() EndpointConfig {
	switch c.Provider {
	case ProviderOpenAI:
		return c.OpenAI
	case ProviderOllama:
		return c.Ollama
	default:
		return c.OpenRouter
	}
}

// DefaultAIConfig returns sensible defaults.
func DefaultAIConfig() AIConfig {
	return AIConfig{
		Provider:  ProviderOpenRouter,
		MaxTokens: 2048,
		OpenRouter: EndpointConfig{
			Model:   "anthropic/claude-opus-4.6",
			BaseURL: "https://openrouter.ai/api/v1",
		},
		OpenAI: EndpointConfig{
			Model:   "gpt-4o",
			BaseURL: "https://api.openai.com/v1",
		},
		Ollama: EndpointConfig{
			Model:   "llama3.2",
			BaseURL: "http://localhost:11434/v1",
		},
	}
}

// DefaultDataConfig returns the excerpt and preview limits.
func DefaultDataConfig() DataConfig {
	return DataConfig{
		ContextChars: 10000,
		PreviewRows:  5,
		MaxRows:      10000,
	}
}

// Dir returns ~/.paidata.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".paidata"), nil
}

// Load reads .env, ~/.paidata/config.yaml and the environment, in that order.
// A missing file yields defaults.
func Load() (*AppConfig, error) {
	_ = godotenv.Load()

	cfg := defaultAppConfig()
	dir, err := Dir()
	if err == nil {
		if err := readYAML(filepath.Join(dir, "config.yaml"), cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFrom reads a specific config file and applies environment overrides.
func LoadFrom(path string) (*AppConfig, error) {
	cfg := defaultAppConfig()
	if err := readYAML(path, cfg); err != nil {
		return nil, err
	}
	if err := applyEnv(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to ~/.paidata/config.yaml.
func Save(cfg *AppConfig) error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return SaveTo(filepath.Join(dir, "config.yaml"), cfg)
}

// SaveTo writes the config to path, creating the parent directory.
func SaveTo(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, out, 0600)
}

func readYAML(path string, cfg *AppConfig) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env config: %w", err)
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = ProviderOpenRouter
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = 2048
	}
	if cfg.Data.ContextChars <= 0 {
		cfg.Data.ContextChars = DefaultDataConfig().ContextChars
	}
	if cfg.Data.PreviewRows <= 0 {
		cfg.Data.PreviewRows = DefaultDataConfig().PreviewRows
	}
	if cfg.Data.MaxRows <= 0 {
		cfg.Data.MaxRows = DefaultDataConfig().MaxRows
	}
	return nil
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		AI:       DefaultAIConfig(),
		Data:     DefaultDataConfig(),
		LogLevel: "info",
	}
}
