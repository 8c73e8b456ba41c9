package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	// DefaultUsageURL is the Copilot quota endpoint used by the editor plugins.
	DefaultUsageURL = "https://api.github.com/copilot_internal/user"
	// UsagePageURL is where users can see their usage in a browser.
	UsagePageURL = "https://github.com/settings/copilot"

	DefaultTimeout = 10 * time.Second

	maxBodySize = 1 << 20
)

// The endpoint only answers requests that identify as a supported editor
// integration. These are opaque constants.
const (
	editorVersion       = "vscode/1.96.0"
	editorPluginVersion = "copilot-chat/0.26.7"
	userAgent           = "GitHubCopilotChat/0.26.7"
	apiVersion          = "2025-04-01"
)

// Client fetches Copilot usage. It performs exactly one attempt per Fetch.
type Client struct {
	http *http.Client
	url  string
}

// Option configures a Client.
type Option func(*Client)

// WithURL overrides the usage endpoint.
func WithURL(url string) Option {
	return func(c *Client) { c.url = url }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http = &http.Client{Timeout: d}
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http: &http.Client{Timeout: DefaultTimeout},
		url:  DefaultUsageURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch issues one authenticated GET and classifies the response.
// It never returns an error; failures are encoded in the Outcome.
func (c *Client) Fetch(ctx context.Context, token string) Outcome {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return transportError(fmt.Errorf("create request: %w", err))
	}
	setHeaders(req, token)

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return Outcome{Kind: KindAuthRejected, StatusCode: resp.StatusCode}
	case resp.StatusCode != http.StatusOK:
		return Outcome{Kind: KindHTTPError, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return transportError(fmt.Errorf("read response: %w", err))
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return Outcome{Kind: KindEmptyBody}
	}

	payload, err := decodePayload(body)
	if err != nil {
		return transportError(fmt.Errorf("decode response: %w", err))
	}
	return Outcome{Kind: KindSuccess, Payload: payload}
}

func setHeaders(req *http.Request, token string) {
	req.Header.Set("Authorization", "token "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Editor-Version", editorVersion)
	req.Header.Set("Editor-Plugin-Version", editorPluginVersion)
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Github-Api-Version", apiVersion)
}

func transportError(err error) Outcome {
	return Outcome{Kind: KindTransportError, Message: err.Error()}
}
