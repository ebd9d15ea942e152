// Package upstream contains the API clients for the supported upstream
// servers (Sonarr, Radarr, Plex) and the connection tester used by the
// health poller and the pre-save validation endpoint.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Credential header names per upstream kind. Sonarr and Radarr share the
// *arr convention; Plex uses its own token header.
const (
	HeaderArrAPIKey = "X-Api-Key"
	HeaderPlexToken = "X-Plex-Token"
)

// DefaultTimeout is the default HTTP request timeout for upstream calls.
const DefaultTimeout = 30 * time.Second

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Body)
}

// Client is a JSON HTTP client for one upstream server. It injects the
// credential under the configured header name on every request.
type Client struct {
	baseURL    string
	apiKey     string
	authHeader string
	httpClient *http.Client
}

// ClientConfig contains configuration options for creating a new Client.
type ClientConfig struct {
	// BaseURL is the base URL of the upstream server (e.g. "http://sonarr:8989")
	BaseURL string

	// APIKey is the credential sent on every request
	APIKey string

	// AuthHeader is the header the credential is injected under
	AuthHeader string

	// Timeout is the HTTP request timeout (defaults to DefaultTimeout if zero)
	Timeout time.Duration
}

// NewClient creates a new upstream HTTP client.
func NewClient(cfg ClientConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		authHeader: cfg.AuthHeader,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the base URL configured for this client.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set(c.authHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) do(req *http.Request, result interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}
	return nil
}

// Get performs a GET request and decodes the JSON response into result.
func (c *Client) Get(ctx context.Context, path string, result interface{}) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

// Post performs a POST request with a JSON body and optionally decodes the response.
func (c *Client) Post(ctx context.Context, path string, body, result interface{}) error {
	reader, err := encodeBody(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPost, path, reader)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

// Put performs a PUT request with a JSON body and optionally decodes the response.
func (c *Client) Put(ctx context.Context, path string, body, result interface{}) error {
	reader, err := encodeBody(body)
	if err != nil {
		return err
	}
	req, err := c.newRequest(ctx, http.MethodPut, path, reader)
	if err != nil {
		return err
	}
	return c.do(req, result)
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

func encodeBody(body interface{}) (io.Reader, error) {
	if body == nil {
		return nil, nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
