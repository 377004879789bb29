package config

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Config holds all configuration for the restorer
type Config struct {
	StartFile string   `koanf:"start"`
	UnluacDir string   `koanf:"unluac-dir"`
	LuaPaths  []string `koanf:"lua-paths"`
	OutputDir string   `koanf:"output"`
	MaxDepth  int      `koanf:"max-depth"`

	APIKey  string `koanf:"api-key"`
	BaseURL string `koanf:"base-url"`
	Model   string `koanf:"model"`

	WebMode bool `koanf:"web"`
	Port    int  `koanf:"port"`
	Watch   bool `koanf:"watch"`

	VerboseCnt int `koanf:"verbose"`
}

// Load loads configuration from defaults, config file, environment variables, and flags.
// Priority: Flags > Env > Config File > Defaults
func Load(f *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	defaults := map[string]interface{}{
		"start":      "",
		"unluac-dir": ".",
		"lua-paths":  []string{},
		"output":     "output",
		"max-depth":  10,
		"api-key":    "",
		"base-url":   "https://openrouter.ai/api/v1",
		"model":      "anthropic/claude-3.5-sonnet",
		"web":        false,
		"port":       8080,
		"watch":      false,
		"verbose":    0,
	}
	if err := k.Load(makeMapProvider(defaults), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config File (optional) - lua-restore.toml
	// Missing file is fine; everything has a default or flag
	_ = k.Load(file.Provider("lua-restore.toml"), toml.Parser())

	// 3. Environment Variables
	// Prefix: LUA_RESTORE_ (e.g., LUA_RESTORE_API_KEY=sk-...)
	if err := k.Load(env.Provider("LUA_RESTORE_", ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(
			strings.TrimPrefix(s, "LUA_RESTORE_")), "_", "-")
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if f != nil {
		if err := k.Load(posflag.Provider(f, ".", k), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Validate checks the settings a restoration run cannot proceed without.
func (c *Config) Validate() error {
	if c.StartFile == "" {
		return fmt.Errorf("start file is required")
	}
	if c.APIKey == "" {
		return fmt.Errorf("api-key is required (flag, lua-restore.toml, or LUA_RESTORE_API_KEY)")
	}
	return nil
}

// Helper to use map as a provider
type mapProvider struct {
	m map[string]interface{}
}

func makeMapProvider(m map[string]interface{}) *mapProvider {
	return &mapProvider{m: m}
}

func (p *mapProvider) Read() (map[string]interface{}, error) {
	return p.m, nil
}

func (p *mapProvider) ReadBytes() ([]byte, error) {
	return nil, fmt.Errorf("not implemented")
}
