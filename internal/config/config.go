// Package config loads and persists postdeck settings.
// Settings live in ~/.postdeck/config.json; environment variables and an
// optional .env file in the working directory override the file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults for a fresh install.
const (
	DefaultBackendURL = "http://localhost:8080/api/v1"
	DefaultPageSize   = 9
	DefaultOrderBy    = "createdAt"
)

// Config holds all postdeck configuration.
type Config struct {
	// Backend connection
	BackendURL   string `json:"backend_url"`
	SessionToken string `json:"session_token,omitempty"`

	// Feed behavior
	PageSize int    `json:"page_size,omitempty"`
	OrderBy  string `json:"order_by,omitempty"`

	// UI
	DarkMode bool `json:"dark_mode"`

	// Logging (read independently by internal/logging to avoid a cycle)
	Logging LoggingConfig `json:"logging"`
}

// LoggingConfig mirrors the logging section of config.json.
type LoggingConfig struct {
	DebugMode  bool            `json:"debug_mode"`
	Categories map[string]bool `json:"categories,omitempty"`
	Level      string          `json:"level,omitempty"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		BackendURL: DefaultBackendURL,
		PageSize:   DefaultPageSize,
		OrderBy:    DefaultOrderBy,
		DarkMode:   true,
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Home returns the postdeck home directory (~/.postdeck), creating it if
// needed. POSTDECK_HOME overrides the location, which tests rely on.
func Home() (string, error) {
	if custom := os.Getenv("POSTDECK_HOME"); custom != "" {
		if err := os.MkdirAll(custom, 0755); err != nil {
			return "", fmt.Errorf("failed to create home directory: %w", err)
		}
		return custom, nil
	}

	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve user home: %w", err)
	}
	home := filepath.Join(userHome, ".postdeck")
	if err := os.MkdirAll(home, 0755); err != nil {
		return "", fmt.Errorf("failed to create home directory: %w", err)
	}
	return home, nil
}

// Path returns the config file path inside home.
func Path(home string) string {
	return filepath.Join(home, "config.json")
}

// Load reads the config file from home, fills in defaults for missing
// fields, and applies environment overrides. A missing file is not an
// error; defaults plus the environment apply.
func Load(home string) (*Config, error) {
	// A .env alongside the binary is a convenience for development. Its
	// absence is normal.
	_ = godotenv.Load()

	cfg := Default()

	data, err := os.ReadFile(Path(home))
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save writes the config back to home with user-only permissions since it
// may contain a session token.
func (c *Config) Save(home string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(Path(home), append(data, '\n'), 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.BackendURL == "" {
		c.BackendURL = DefaultBackendURL
	}
	if c.PageSize <= 0 {
		c.PageSize = DefaultPageSize
	}
	if c.OrderBy == "" {
		c.OrderBy = DefaultOrderBy
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("POSTDECK_BACKEND_URL"); v != "" {
		c.BackendURL = v
	}
	if v := os.Getenv("POSTDECK_SESSION"); v != "" {
		c.SessionToken = v
	}
	if v := os.Getenv("POSTDECK_DARK_MODE"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.DarkMode = parsed
		}
	}
	if v := os.Getenv("POSTDECK_PAGE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.PageSize = n
		}
	}
	if v := os.Getenv("POSTDECK_DEBUG"); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = parsed
		}
	}
}
