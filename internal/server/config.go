package server

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"kommunicate-mcp-go/pkg/kommunicate"
)

// Transports
const (
	TransportHTTP  = "http"
	TransportStdio = "stdio"
)

// Environment variables that override the config file.
const (
	EnvAPIKey   = "KOMMUNICATE_API_KEY"
	EnvBaseURL  = "KOMMUNICATE_BASE_URL"
	EnvTimeout  = "KOMMUNICATE_TIMEOUT"
	EnvAddr     = "MCP_ADDR"
	EnvLogLevel = "LOG_LEVEL"
)

// Config contains the server configuration.
type Config struct {
	Addr      string `yaml:"addr"`
	Transport string `yaml:"transport"`
	LogLevel  string `yaml:"log_level"`

	Kommunicate kommunicate.Config `yaml:"kommunicate"`

	// Session management
	SessionTimeout  time.Duration `yaml:"session_timeout"`
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
	RequireSession  bool          `yaml:"require_session"`

	MetricsInterval time.Duration `yaml:"metrics_interval"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		Transport:       TransportHTTP,
		LogLevel:        "info",
		Kommunicate:     kommunicate.DefaultConfig(),
		SessionTimeout:  time.Hour,
		CleanupInterval: 5 * time.Minute,
		RequireSession:  true,
		MetricsInterval: 15 * time.Second,
	}
}

// LoadConfig reads the YAML file at path (if any) over the defaults and then
// applies environment overrides.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvAPIKey); ok {
		c.Kommunicate.APIKey = v
	}
	if v, ok := lookup(EnvBaseURL); ok && v != "" {
		c.Kommunicate.BaseURL = v
	}
	if v, ok := lookup(EnvTimeout); ok && v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Kommunicate.Timeout = timeout
	}
	if v, ok := lookup(EnvAddr); ok && v != "" {
		c.Addr = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if err := c.Kommunicate.Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Kommunicate.Timeout <= 0 {
		errs = append(errs, errors.New("kommunicate.timeout must be positive"))
	}

	switch c.Transport {
	case TransportHTTP:
		if c.Addr == "" {
			errs = append(errs, errors.New("addr is required for the http transport"))
		}
	case TransportStdio:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q (want %q or %q)", c.Transport, TransportHTTP, TransportStdio))
	}

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log_level: %w", err))
	}
	if c.SessionTimeout <= 0 {
		errs = append(errs, errors.New("session_timeout must be positive"))
	}
	if c.CleanupInterval <= 0 {
		errs = append(errs, errors.New("cleanup_interval must be positive"))
	}
	if c.MetricsInterval <= 0 {
		errs = append(errs, errors.New("metrics_interval must be positive"))
	}

	return errors.Join(errs...)
}
