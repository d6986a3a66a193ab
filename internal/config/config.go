// Package config handles reading and writing the walter configuration file (~/.walter/config.toml).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds walter configuration settings.
type Config struct {
	LLMProvider   string `toml:"llm_provider,omitempty" json:"llm_provider,omitempty"`
	LLMModel      string `toml:"llm_model,omitempty" json:"llm_model,omitempty"`
	LLMBaseURL    string `toml:"llm_base_url,omitempty" json:"llm_base_url,omitempty"`
	CatalogPath   string `toml:"catalog_path,omitempty" json:"catalog_path,omitempty"`
	DefaultFormat string `toml:"default_format,omitempty" json:"default_format,omitempty"`
	GitBookSpace  string `toml:"gitbook_space,omitempty" json:"gitbook_space,omitempty"`
	GitBookURL    string `toml:"gitbook_url,omitempty" json:"gitbook_url,omitempty"`
}

// validKeys lists the allowed configuration keys.
var validKeys = map[string]bool{
	"llm_provider":   true,
	"llm_model":      true,
	"llm_base_url":   true,
	"catalog_path":   true,
	"default_format": true,
	"gitbook_space":  true,
	"gitbook_url":    true,
}

// ValidKeys returns the sorted list of valid configuration keys.
func ValidKeys() []string {
	return []string{"catalog_path", "default_format", "gitbook_space", "gitbook_url", "llm_base_url", "llm_model", "llm_provider"}
}

// Path returns the default config file path (~/.walter/config.toml).
func Path() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".walter", "config.toml")
	}
	return filepath.Join(home, ".walter", "config.toml")
}

// Load reads the config from the default path.
func Load() (*Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config from a specific path. Returns an empty
// Config if the file does not exist.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to the default path.
func (c *Config) Save() error {
	return c.SaveTo(Path())
}

// SaveTo writes the config to a specific path, creating parent directories as needed.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Get returns the string value of a configuration key.
func (c *Config) Get(key string) (string, error) {
	if !validKeys[key] {
		return "", fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "llm_provider":
		return c.LLMProvider, nil
	case "llm_model":
		return c.LLMModel, nil
	case "llm_base_url":
		return c.LLMBaseURL, nil
	case "catalog_path":
		return c.CatalogPath, nil
	case "default_format":
		return c.DefaultFormat, nil
	case "gitbook_space":
		return c.GitBookSpace, nil
	case "gitbook_url":
		return c.GitBookURL, nil
	default:
		return "", fmt.Errorf("unknown config key %q", key)
	}
}

// Set assigns a value to a configuration key.
func (c *Config) Set(key, value string) error {
	if !validKeys[key] {
		return fmt.Errorf("unknown config key %q (valid keys: %s)", key, strings.Join(ValidKeys(), ", "))
	}
	switch key {
	case "llm_provider":
		if value != "" && value != "ollama" && value != "openai" {
			return fmt.Errorf("llm_provider must be \"ollama\" or \"openai\", got %q", value)
		}
		c.LLMProvider = value
	case "llm_model":
		c.LLMModel = value
	case "llm_base_url":
		c.LLMBaseURL = value
	case "catalog_path":
		c.CatalogPath = value
	case "default_format":
		switch value {
		case "", "markdown", "html", "text", "gitbook":
		default:
			return fmt.Errorf("default_format must be one of markdown, html, text, gitbook, got %q", value)
		}
		c.DefaultFormat = value
	case "gitbook_space":
		c.GitBookSpace = value
	case "gitbook_url":
		c.GitBookURL = value
	}
	return nil
}
