// Package forvo downloads the top rated pronunciation of a word and keeps
// a local mp3 copy so each word is fetched once.
package forvo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"votd/internal/logging"
	"votd/internal/services"
	"votd/internal/textutil"
)

const maxAudioBytes = 16 << 20

// Client talks to the pronunciation API.
type Client struct {
	baseURL    string
	apiKey     string
	language   string
	country    string
	dir        string
	httpClient *http.Client
	logger     *slog.Logger
}

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

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logging.NewComponentLogger(logger, "forvo")
	}
}

// New creates a client that stores audio under dir.
func New(baseURL, apiKey, language, country, dir string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		language:   language,
		country:    country,
		dir:        dir,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type pronunciationsResponse struct {
	Items []struct {
		PathMP3 string `json:"pathmp3"`
		Rate    int    `json:"rate"`
	} `json:"items"`
}

// FetchPronunciation returns the local path of word's audio. A word with no
// pronunciation yields an empty path and no error.
func (c *Client) FetchPronunciation(ctx context.Context, word string) (string, error) {
	target := filepath.Join(c.dir, textutil.SanitizeFileName(word)+".mp3")
	if info, err := os.Stat(target); err == nil && info.Size() > 0 {
		c.logger.Debug("pronunciation cached", logging.String(logging.FieldVerb, word))
		return target, nil
	}

	var payload pronunciationsResponse
	if err := c.getJSON(ctx, c.lookupURL(word), &payload); err != nil {
		return "", err
	}
	if len(payload.Items) == 0 || payload.Items[0].PathMP3 == "" {
		c.logger.Info("no pronunciation available", logging.String(logging.FieldVerb, word))
		return "", nil
	}

	if err := c.download(ctx, payload.Items[0].PathMP3, target); err != nil {
		return "", err
	}
	c.logger.Info("pronunciation downloaded",
		logging.String(logging.FieldVerb, word),
		logging.String("path", target),
	)
	return target, nil
}

func (c *Client) lookupURL(word string) string {
	segments := []string{
		c.baseURL, url.PathEscape(c.apiKey),
		"format", "json",
		"action", "word-pronunciations",
		"word", url.PathEscape(word),
		"language", c.language,
		"country", c.country,
		"order", "rate-desc",
		"limit", "1",
	}
	return strings.Join(segments, "/")
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	resp, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return services.Wrap(services.ErrExternal, "forvo", "decode response", "", err)
	}
	return nil
}

func (c *Client) download(ctx context.Context, source, target string) error {
	resp, err := c.get(ctx, source)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create audio dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(target), ".forvo-*")
	if err != nil {
		return fmt.Errorf("create audio file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := io.Copy(tmp, io.LimitReader(resp.Body, maxAudioBytes)); err != nil {
		_ = tmp.Close()
		return services.Wrap(services.ErrExternal, "forvo", "download audio", "", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close audio file: %w", err)
	}
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("install audio file: %w", err)
	}
	return nil
}

// get issues a request and returns a 200 response. The API key is kept out
// of error messages.
func (c *Client) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "forvo", "request", fmt.Sprintf("latency=%v", latency), redact(err, c.apiKey))
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, services.Wrap(services.ErrExternal, "forvo", "request",
			fmt.Sprintf("status %d (latency=%v)", resp.StatusCode, latency), nil)
	}
	return resp, nil
}

func redact(err error, secret string) error {
	if secret == "" || !strings.Contains(err.Error(), secret) {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), secret, "[redacted]"))
}
