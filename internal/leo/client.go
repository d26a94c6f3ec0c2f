package leo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"votd/internal/services"
)

const maxPageBytes = 8 << 20

// Fetcher retrieves a page body.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// Client fetches dictionary pages over HTTP.
type Client struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
}

var _ Fetcher = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient = &http.Client{Timeout: timeout}
		}
	}
}

// NewClient creates a dictionary client rooted at baseURL.
func NewClient(baseURL, userAgent string, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		userAgent:  strings.TrimSpace(userAgent),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// BaseURL returns the site root used to absolutize table links.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SearchURL returns the German-English search page for word.
func (c *Client) SearchURL(word string) string {
	return SearchURL(c.baseURL, word)
}

// SearchURL returns the German-English search page for word under baseURL.
func SearchURL(baseURL, word string) string {
	return strings.TrimRight(baseURL, "/") + "/german-english/" + url.PathEscape(word)
}

// Fetch performs one GET. There are no retries.
func (c *Client) Fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "leo", "fetch", fmt.Sprintf("%s (latency=%v)", rawURL, latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", services.Wrap(services.ErrExternal, "leo", "fetch",
			fmt.Sprintf("%s returned %d (latency=%v)", rawURL, resp.StatusCode, latency), nil)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", services.Wrap(services.ErrExternal, "leo", "read body", rawURL, err)
	}
	return string(body), nil
}
