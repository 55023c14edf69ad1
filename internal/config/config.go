// Package config handles application configuration stored as TOML under
// the user's home directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents the application configuration.
type Config struct {
	// Provider holds remote card-data provider settings
	Provider ProviderConfig `toml:"provider"`

	// Cache holds per-resource cache tiers
	Cache CacheConfig `toml:"cache"`

	// Database holds local store settings
	Database DatabaseConfig `toml:"database"`

	// Server holds REST API settings
	Server ServerConfig `toml:"server"`

	// App holds general application settings
	App AppConfig `toml:"app"`
}

// ProviderConfig contains remote card-data provider settings.
// The free plan allows 100 calls per day, which is why the cache tiers
// below are aggressive.
type ProviderConfig struct {
	BaseURL string `toml:"base_url"` // Provider API base URL
	APIKey  string `toml:"api_key"`  // Per-install API key
	Timeout string `toml:"timeout"`  // HTTP timeout (e.g., "30s")
}

// CacheConfig contains per-resource TTL tiers.
type CacheConfig struct {
	GamesTTL      string `toml:"games_ttl"`      // Games list TTL (e.g., "168h")
	ExpansionsTTL string `toml:"expansions_ttl"` // Expansion page TTL
	CardsTTL      string `toml:"cards_ttl"`      // Card page TTL
}

// DatabaseConfig contains local store settings.
type DatabaseConfig struct {
	Path string `toml:"path"` // SQLite database path ("" = default location)
}

// ServerConfig contains REST API settings.
type ServerConfig struct {
	Port           int      `toml:"port"`
	AllowedOrigins []string `toml:"allowed_origins"`
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderConfig{
			BaseURL: "https://api.tcgapis.com/api/v1",
			APIKey:  "",
			Timeout: "30s",
		},
		Cache: CacheConfig{
			GamesTTL:      "168h", // 7 days; games change rarely upstream
			ExpansionsTTL: "24h",
			CardsTTL:      "24h",
		},
		Database: DatabaseConfig{
			Path: "",
		},
		Server: ServerConfig{
			Port:           8080,
			AllowedOrigins: []string{"*"},
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".cardtradr")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.toml"), nil
}

// DefaultDatabasePath returns the default SQLite database location.
func DefaultDatabasePath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(homeDir, ".cardtradr", "cardtradr.db"), nil
}

// Load loads the configuration from disk. Returns the default config if the
// file doesn't exist.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save writes the configuration to disk.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ProviderTimeout parses the provider HTTP timeout, falling back to 30s.
func (c *Config) ProviderTimeout() time.Duration {
	return parseDuration(c.Provider.Timeout, 30*time.Second)
}

// GamesTTL parses the games cache tier, falling back to 7 days.
func (c *Config) GamesTTL() time.Duration {
	return parseDuration(c.Cache.GamesTTL, 7*24*time.Hour)
}

// ExpansionsTTL parses the expansions cache tier, falling back to 24 hours.
func (c *Config) ExpansionsTTL() time.Duration {
	return parseDuration(c.Cache.ExpansionsTTL, 24*time.Hour)
}

// CardsTTL parses the cards cache tier, falling back to 24 hours.
func (c *Config) CardsTTL() time.Duration {
	return parseDuration(c.Cache.CardsTTL, 24*time.Hour)
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
