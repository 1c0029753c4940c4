// Package config loads and saves the brocot workspace configuration.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the complete brocot configuration. It is built once at
// startup and passed to the engine; nothing mutates it afterward.
type Config struct {
	Version int    `json:"version" mapstructure:"version"`
	DataDir string `json:"dataDir" mapstructure:"dataDir"`

	// Scope is the default forest partition. Every tree operation is
	// confined to one partition; the engine treats the value as opaque.
	Scope string `json:"scope" mapstructure:"scope"`

	Hint    HintConfig    `json:"hint" mapstructure:"hint"`
	Locking LockingConfig `json:"locking" mapstructure:"locking"`
	Logging LoggingConfig `json:"logging" mapstructure:"logging"`
}

// HintConfig controls the cached floating approximation of coordinates.
// The hint only narrows range scans; exact integer arithmetic always has
// the final word.
type HintConfig struct {
	Enabled bool    `json:"enabled" mapstructure:"enabled"`
	Epsilon float64 `json:"epsilon" mapstructure:"epsilon"`
}

// LockingConfig controls how long writers wait for the database write lock
type LockingConfig struct {
	BusyTimeoutMs int `json:"busyTimeoutMs" mapstructure:"busyTimeoutMs"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level"`
	Format string `json:"format" mapstructure:"format"`
}

// DefaultConfig returns the configuration used when no config file exists
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		DataDir: ".brocot",
		Scope:   "",
		Hint: HintConfig{
			Enabled: true,
			Epsilon: 1e-9,
		},
		Locking: LockingConfig{
			BusyTimeoutMs: 5000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "human",
		},
	}
}

// LoadConfig reads <root>/.brocot/config.json, falling back to defaults
// when the file doesn't exist.
func LoadConfig(root string) (*Config, error) {
	v := viper.New()

	v.SetDefault("version", 1)
	v.SetDefault("dataDir", ".brocot")
	v.SetDefault("hint.enabled", true)
	v.SetDefault("hint.epsilon", 1e-9)
	v.SetDefault("locking.busyTimeoutMs", 5000)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "human")

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(filepath.Join(root, ".brocot"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Save writes the configuration to <root>/.brocot/config.json
func (c *Config) Save(root string) error {
	dir := filepath.Join(root, ".brocot")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(dir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// Validate checks configuration values for consistency
func (c *Config) Validate() error {
	if c.Version != 1 {
		return fmt.Errorf("unsupported config version %d", c.Version)
	}
	if c.DataDir == "" {
		return fmt.Errorf("dataDir must not be empty")
	}
	if c.Hint.Enabled && (c.Hint.Epsilon <= 0 || c.Hint.Epsilon >= 1) {
		return fmt.Errorf("hint.epsilon must be in (0, 1), got %g", c.Hint.Epsilon)
	}
	if c.Locking.BusyTimeoutMs < 0 {
		return fmt.Errorf("locking.busyTimeoutMs must not be negative")
	}
	return nil
}
