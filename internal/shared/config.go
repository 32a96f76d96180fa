package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// PlaceholderAPIKey is the api_key shipped in the example config.
const PlaceholderAPIKey = "your_api_key_here"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	TMDB     TMDBConfig     `toml:"tmdb"`
	Account  AccountConfig  `toml:"account"`
	Storage  StorageConfig  `toml:"storage"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
}

// TMDBConfig contains catalogue API settings.
type TMDBConfig struct {
	APIKey       string `toml:"api_key"`
	BaseURL      string `toml:"base_url"`
	ImageBaseURL string `toml:"image_base_url"`
	Language     string `toml:"language"`
}

// HasAPIKey reports whether a usable (non-placeholder) API key is configured.
func (c TMDBConfig) HasAPIKey() bool {
	key := strings.TrimSpace(c.APIKey)
	return key != "" && key != PlaceholderAPIKey
}

// AccountConfig describes the single provisioned account.
type AccountConfig struct {
	ID           int    `toml:"id"`
	Email        string `toml:"email"`
	Name         string `toml:"name"`
	Password     string `toml:"password"`
	PasswordHash string `toml:"password_hash"`
}

// StorageConfig selects the key-value backend for session and watchlist state.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Dir     string `toml:"dir"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the values of [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks the settings that would otherwise fail much later at runtime.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "memory", "file", "sqlite":
	default:
		return fmt.Errorf("%w: storage backend %q", ErrInvalidConfig, c.Storage.Backend)
	}
	if strings.TrimSpace(c.Account.Email) == "" {
		return fmt.Errorf("%w: account email is empty", ErrInvalidConfig)
	}
	if c.Account.Password == "" && c.Account.PasswordHash == "" {
		return fmt.Errorf("%w: account has neither password nor password_hash", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
