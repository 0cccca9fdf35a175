// Package config loads runtime configuration from the environment and
// an optional YAML file. Environment variables use the TRIAGE_ prefix
// (TRIAGE_SERVER_ADDR, TRIAGE_PROVIDER_MODEL, ...) and override file
// values.
package config

import (
	"fmt"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Provider ProviderConfig `koanf:"provider"`
	Session  SessionConfig  `koanf:"session"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

// ProviderConfig selects and tunes the completion collaborator.
type ProviderConfig struct {
	// Name is one of "openai", "anthropic" or "mock".
	Name        string  `koanf:"name"`
	Model       string  `koanf:"model"`
	Temperature float64 `koanf:"temperature"`
	MaxTokens   int     `koanf:"maxtokens"`
	APIKey      string  `koanf:"apikey"`
}

// SessionConfig selects the session persistence backend.
type SessionConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `koanf:"backend"`
	// Path is the SQLite database file, used when Backend is "sqlite".
	Path string `koanf:"path"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// Load reads configuration with precedence defaults < file < environment.
// path may be empty to skip the file provider. A local .env file is
// loaded into the process environment first when present.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")

	defaults := map[string]any{
		"server.addr":          ":8080",
		"provider.name":        "openai",
		"provider.temperature": 0.3,
		"provider.maxtokens":   1024,
		"session.backend":      "memory",
		"session.path":         "triagemesh.db",
		"log.level":            "info",
		"log.format":           "text",
	}
	for key, val := range defaults {
		if err := k.Set(key, val); err != nil {
			return nil, fmt.Errorf("set default %q: %w", key, err)
		}
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %q: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("TRIAGE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, "TRIAGE_")), "_", ".")
	}), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Provider.Name {
	case "openai", "anthropic", "mock":
	default:
		return fmt.Errorf("unsupported provider %q", c.Provider.Name)
	}
	switch c.Session.Backend {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unsupported session backend %q", c.Session.Backend)
	}
	return nil
}
