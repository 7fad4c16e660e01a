package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure for the SkillSwap backend.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Timeouts TimeoutConfig `yaml:"timeouts"`
	CORS     CORSConfig    `yaml:"cors"`
}

// TimeoutConfig contains HTTP timeout settings in seconds.
type TimeoutConfig struct {
	Read  int `yaml:"read"`
	Write int `yaml:"write"`
	Idle  int `yaml:"idle"`
}

// CORSConfig contains Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// DatabaseConfig contains SQLite database settings.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`
}

// JWTConfig contains token signing settings. Access and refresh tokens are
// signed with independent secrets; neither has a default.
type JWTConfig struct {
	AccessSecret     string `yaml:"access_secret"`
	AccessTTLMinutes int    `yaml:"access_ttl_minutes"`
	RefreshSecret    string `yaml:"refresh_secret"`
	RefreshTTLHours  int    `yaml:"refresh_ttl_hours"`
}

// WebSocketConfig contains notification channel settings.
type WebSocketConfig struct {
	Path           string `yaml:"path"`
	MaxMessageSize int    `yaml:"max_message_size"`
	PingInterval   int    `yaml:"ping_interval"`
	PongTimeout    int    `yaml:"pong_timeout"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: SKILLSWAP_SECTION_KEY
// For example: SKILLSWAP_DATABASE_PATH, SKILLSWAP_JWT_ACCESS_SECRET
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults. The JWT secrets
// deliberately have none.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 3000,
			Timeouts: TimeoutConfig{
				Read:  30,
				Write: 30,
				Idle:  60,
			},
		},
		Database: DatabaseConfig{
			Path:        "./data/skillswap.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		JWT: JWTConfig{
			AccessTTLMinutes: 60,
			RefreshTTLHours:  168, // 7 days
		},
		WebSocket: WebSocketConfig{
			Path:           "/ws",
			MaxMessageSize: 8192,
			PingInterval:   30,
			PongTimeout:    10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Environment variables follow the pattern: SKILLSWAP_SECTION_KEY
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SKILLSWAP_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SKILLSWAP_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("SKILLSWAP_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("SKILLSWAP_JWT_ACCESS_SECRET"); v != "" {
		cfg.JWT.AccessSecret = v
	}
	if v := os.Getenv("SKILLSWAP_JWT_REFRESH_SECRET"); v != "" {
		cfg.JWT.RefreshSecret = v
	}
	if v := os.Getenv("SKILLSWAP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// minSecretLength is the minimum accepted length for JWT signing secrets.
const minSecretLength = 32

// Validate checks the configuration for errors and security issues.
//
// Missing or weak JWT secrets are a hard failure: anyone who can guess either
// secret can forge sessions, so there are no fallback defaults and the process
// refuses to start without both.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}

	switch {
	case c.JWT.AccessSecret == "":
		errs = append(errs, "jwt.access_secret is required (set SKILLSWAP_JWT_ACCESS_SECRET environment variable)")
	case len(c.JWT.AccessSecret) < minSecretLength:
		errs = append(errs, "jwt.access_secret must be at least 32 characters")
	}

	switch {
	case c.JWT.RefreshSecret == "":
		errs = append(errs, "jwt.refresh_secret is required (set SKILLSWAP_JWT_REFRESH_SECRET environment variable)")
	case len(c.JWT.RefreshSecret) < minSecretLength:
		errs = append(errs, "jwt.refresh_secret must be at least 32 characters")
	}

	if c.JWT.AccessSecret != "" && c.JWT.AccessSecret == c.JWT.RefreshSecret {
		errs = append(errs, "jwt.access_secret and jwt.refresh_secret must differ")
	}

	if c.JWT.AccessTTLMinutes < 0 {
		errs = append(errs, "jwt.access_ttl_minutes must not be negative")
	}
	if c.JWT.RefreshTTLHours < 0 {
		errs = append(errs, "jwt.refresh_ttl_hours must not be negative")
	}

	if !strings.HasPrefix(c.WebSocket.Path, "/") {
		errs = append(errs, "websocket.path must start with /")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetAccessTTL returns the access token lifetime as a Duration.
func (c *Config) GetAccessTTL() time.Duration {
	return time.Duration(c.JWT.AccessTTLMinutes) * time.Minute
}

// GetRefreshTTL returns the refresh token lifetime as a Duration.
func (c *Config) GetRefreshTTL() time.Duration {
	return time.Duration(c.JWT.RefreshTTLHours) * time.Hour
}

// GetReadTimeout returns the server read timeout as a Duration.
func (c *Config) GetReadTimeout() time.Duration {
	return time.Duration(c.Server.Timeouts.Read) * time.Second
}

// GetWriteTimeout returns the server write timeout as a Duration.
func (c *Config) GetWriteTimeout() time.Duration {
	return time.Duration(c.Server.Timeouts.Write) * time.Second
}

// GetIdleTimeout returns the server idle timeout as a Duration.
func (c *Config) GetIdleTimeout() time.Duration {
	return time.Duration(c.Server.Timeouts.Idle) * time.Second
}
