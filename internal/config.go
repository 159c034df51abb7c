package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "RAGCHAT_"

// Config holds ragchat settings. Values are resolved from built-in defaults,
// then the TOML config file, then RAGCHAT_* environment variables.
type Config struct {
	APIURL      string `toml:"api_url" env:"API_URL"`
	DataDir     string `toml:"data_dir" env:"DATA_DIR"`
	MaxSessions int    `toml:"max_sessions" env:"MAX_SESSIONS"`

	DefaultModel       string     `toml:"default_model" env:"DEFAULT_MODEL"`
	DefaultTemperature float64    `toml:"default_temperature" env:"DEFAULT_TEMPERATURE"`
	DefaultSearchType  SearchType `toml:"default_search_type" env:"DEFAULT_SEARCH_TYPE"`

	// LicenseKey seeds the license gate when nothing is stored yet
	LicenseKey string `toml:"license_key" env:"LICENSE_KEY"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	dataDir := ".ragchat"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".ragchat")
	}
	return &Config{
		APIURL:             "http://localhost:8000",
		DataDir:            dataDir,
		MaxSessions:        DefaultMaxSessions,
		DefaultModel:       "gpt-4o-mini",
		DefaultTemperature: 0.7,
		DefaultSearchType:  SearchHybrid,
	}
}

// DefaultConfigPath returns ~/.ragchat/config.toml
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfig().DataDir, "config.toml")
}

// LoadConfig resolves the configuration. A missing file at path is not an
// error; an empty path means DefaultConfigPath. The result is not validated
// so that command line overrides can still replace bad values; call Validate
// once every source has been applied.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = DefaultConfigPath()
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, &ParseError{Source: "config", Key: path, Err: err}
		}
		LogDebug("No config file at %s, using defaults", path)
	} else {
		LogDebug("Loaded config from %s", path)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration is usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return NewValidationError("api_url", fmt.Sprintf("invalid URL %q", c.APIURL))
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return NewValidationError("api_url", "scheme must be http or https")
	}
	if c.DataDir == "" {
		return NewValidationError("data_dir", "must not be empty")
	}
	if c.MaxSessions < 1 {
		return NewValidationError("max_sessions", "must be at least 1")
	}
	if err := ValidateTemperature(c.DefaultTemperature); err != nil {
		return NewValidationError("default_temperature", err.Error())
	}
	if !c.DefaultSearchType.Valid() {
		return NewValidationError("default_search_type", "must be one of hybrid, semantic, keyword")
	}
	return nil
}

// DatabasePath returns the SQLite file holding local state
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "ragchat.db")
}

// DefaultSettings returns the settings new sessions start with
func (c *Config) DefaultSettings() SessionSettings {
	return SessionSettings{
		Model:       c.DefaultModel,
		Temperature: c.DefaultTemperature,
		SearchType:  c.DefaultSearchType,
	}
}

// ValidateTemperature checks the [0,1] range
func ValidateTemperature(t float64) error {
	if t < 0 || t > 1 {
		return fmt.Errorf("temperature %.2f out of range [0, 1]", t)
	}
	return nil
}

// SaveConfig writes cfg as TOML to path
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}
