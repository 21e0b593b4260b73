package kommunicate

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the public Kommunicate API host.
	DefaultBaseURL = "https://services.kommunicate.io"
	// DefaultTimeout bounds a single outbound request.
	DefaultTimeout = 30 * time.Second
)

// Config holds the credential and endpoint used by the Client.
// It is copied into the Client at construction and never mutated afterwards.
type Config struct {
	APIKey  string        `yaml:"api_key"`
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config pointing at the public API host.
func DefaultConfig() Config {
	return Config{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// Validate checks that the configuration can be used to build requests.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("kommunicate: api key is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("kommunicate: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("kommunicate: base url must be http or https, got %q", c.BaseURL)
	}
	if u.Host == "" {
		return fmt.Errorf("kommunicate: base url has no host: %q", c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("kommunicate: timeout must not be negative")
	}
	return nil
}

func (c Config) endpoint(path string) string {
	return strings.TrimRight(c.BaseURL, "/") + path
}
