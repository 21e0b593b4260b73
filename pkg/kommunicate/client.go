package kommunicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

const (
	// HeaderAPIKey carries the account credential.
	HeaderAPIKey = "Api-Key"
	// HeaderOfUserID names the user an operation is performed as.
	HeaderOfUserID = "Of-User-Id"

	// DefaultOfUserID is the acting user when none is given.
	DefaultOfUserID = "bot"
)

// Object is a decoded JSON object returned by the API.
type Object = map[string]any

// Doer sends an HTTP request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client calls the Kommunicate REST API. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	cfg    Config
	doer   Doer
	logger zerolog.Logger
}

// NewClient creates a Client for cfg. When doer is nil an *http.Client with
// cfg.Timeout is used.
func NewClient(cfg Config, doer Doer, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if doer == nil {
		doer = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		cfg:    cfg,
		doer:   doer,
		logger: logger.With().Str("component", "kommunicate_client").Logger(),
	}, nil
}

// BaseURL returns the configured API host.
func (c *Client) BaseURL() string {
	return c.cfg.BaseURL
}

// call describes one outbound request.
type call struct {
	method   string
	path     string
	query    url.Values
	ofUserID string
	body     any
}

// do sends the call and decodes a 2xx JSON body into out.
func (c *Client) do(ctx context.Context, cl call, out any) error {
	var reader io.Reader
	if cl.body != nil {
		payload, err := json.Marshal(cl.body)
		if err != nil {
			return fmt.Errorf("kommunicate: encode %s request: %w", cl.path, err)
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.cfg.endpoint(cl.path)
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("kommunicate: build %s request: %w", cl.path, err)
	}
	req.Header.Set(HeaderAPIKey, c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")
	if cl.ofUserID != "" {
		req.Header.Set(HeaderOfUserID, cl.ofUserID)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		c.logger.Debug().
			Err(err).
			Str("method", cl.method).
			Str("path", cl.path).
			Dur("duration", time.Since(start)).
			Msg("Kommunicate request failed")
		return &TransportError{Method: cl.method, Path: cl.path, Cause: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Method: cl.method, Path: cl.path, Cause: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug().
		Str("method", cl.method).
		Str("path", cl.path).
		Int("status_code", resp.StatusCode).
		Int("response_bytes", len(body)).
		Dur("duration", time.Since(start)).
		Msg("Kommunicate request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn().
			Str("method", cl.method).
			Str("path", cl.path).
			Int("status_code", resp.StatusCode).
			Msg("Kommunicate returned non-success status")
		return &RemoteAPIError{
			Method:     cl.method,
			Path:       cl.path,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Method: cl.method, Path: cl.path, Body: string(body), Cause: err}
	}
	return nil
}
