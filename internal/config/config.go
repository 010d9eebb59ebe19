package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	DefaultServerAddress  = ":5000"
	DefaultUploadDir      = "./uploads"
	DefaultMaxUploadBytes = 10 << 20 // 10 MB
	DefaultProvider       = "claude"
	DefaultMaxTokens      = 4096
	defaultConfigFile     = "config.json"
)

// Config represents runtime configuration for the service.
type Config struct {
	BasicConfig BasicConfig               `json:"basic_config"`
	Provider    string                    `json:"provider"`
	Providers   map[string]ProviderConfig `json:"providers"`
}

type ProviderConfig struct {
	BaseURL   string `json:"base_url"`
	Model     string `json:"model"`
	APIKey    string `json:"api_key"`
	MaxTokens int    `json:"max_tokens"`
}

type BasicConfig struct {
	ServerAddress  string `json:"server_address"`
	UploadDir      string `json:"upload_dir"`
	MaxUploadBytes int64  `json:"max_upload_bytes"`
}

// provider name -> environment variable holding its credential
var apiKeyEnv = map[string]string{
	"claude": "ANTHROPIC_API_KEY",
	"openai": "OPENAI_API_KEY",
	"gemini": "GEMINI_API_KEY",
}

var defaultModels = map[string]string{
	"claude": "claude-sonnet-4-20250514",
	"openai": "gpt-4o",
	"gemini": "gemini-2.5-flash",
}

// Load reads configuration from the provided path (defaults to config.json),
// applies environment overrides and validates the active provider.
// A missing default config file is not an error.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}

	cfg := &Config{}
	file, err := os.Open(absPath)
	switch {
	case err == nil:
		defer file.Close()
		if err := json.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("decode config: %w", err)
		}
		if cfg.BasicConfig.UploadDir != "" && !filepath.IsAbs(cfg.BasicConfig.UploadDir) {
			cfg.BasicConfig.UploadDir = filepath.Join(filepath.Dir(absPath), cfg.BasicConfig.UploadDir)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config %s: %w", absPath, err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SERVER_ADDRESS"); v != "" {
		c.BasicConfig.ServerAddress = v
	}
	if v := os.Getenv("UPLOAD_DIR"); v != "" {
		c.BasicConfig.UploadDir = v
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil && n > 0 {
			c.BasicConfig.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("AI_PROVIDER"); v != "" {
		c.Provider = v
	}
	if c.Providers == nil {
		c.Providers = make(map[string]ProviderConfig)
	}
	for name, env := range apiKeyEnv {
		key := os.Getenv(env)
		if key == "" {
			continue
		}
		p := c.Providers[name]
		p.APIKey = key
		c.Providers[name] = p
	}
}

func (c *Config) applyDefaults() {
	if c.BasicConfig.ServerAddress == "" {
		c.BasicConfig.ServerAddress = DefaultServerAddress
	}
	if c.BasicConfig.UploadDir == "" {
		c.BasicConfig.UploadDir = DefaultUploadDir
	}
	if c.BasicConfig.MaxUploadBytes <= 0 {
		c.BasicConfig.MaxUploadBytes = DefaultMaxUploadBytes
	}
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = DefaultProvider
	}
	for name, p := range c.Providers {
		if p.Model == "" {
			p.Model = defaultModels[name]
		}
		if p.MaxTokens <= 0 {
			p.MaxTokens = DefaultMaxTokens
		}
		c.Providers[name] = p
	}
}

// Validate checks that the active provider is known and has a credential.
func (c *Config) Validate() error {
	env, known := apiKeyEnv[c.Provider]
	if !known {
		return fmt.Errorf("unsupported provider: %s", c.Provider)
	}
	p, ok := c.Providers[c.Provider]
	if !ok || strings.TrimSpace(p.APIKey) == "" {
		return fmt.Errorf("%s not found in environment variables, .env file or config", env)
	}
	return nil
}

// Active returns the configuration of the selected provider.
func (c *Config) Active() ProviderConfig {
	return c.Providers[c.Provider]
}
