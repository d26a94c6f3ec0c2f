// Package wordpress publishes the verb of the day to a WordPress.com blog.
//
// The post body comes from a template stored as a private post on the blog.
// Requests are authorized with the OAuth2 password grant; the token is
// requested on first use and reused for the life of the client.
package wordpress

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"votd/internal/logging"
	"votd/internal/services"
)

// Options locates the blog and its API endpoints.
type Options struct {
	APIURL       string
	SearchAPIURL string
	OAuthURL     string
	Site         string
}

// Credentials authorize the password grant.
type Credentials struct {
	ClientID     string
	ClientSecret string
	Username     string
	Password     string
}

// Client is an authorized WordPress.com REST client.
type Client struct {
	opts       Options
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	base   *http.Client
	logger *slog.Logger
}

// WithHTTPClient sets the transport used for token and API requests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *clientConfig) {
		if client != nil {
			c.base = client
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *clientConfig) {
		c.logger = logger
	}
}

type passwordSource struct {
	ctx      context.Context
	conf     *oauth2.Config
	username string
	password string
}

func (s passwordSource) Token() (*oauth2.Token, error) {
	tok, err := s.conf.PasswordCredentialsToken(s.ctx, s.username, s.password)
	if err != nil {
		return nil, services.Wrap(services.ErrExternal, "wordpress", "authorize", "", err)
	}
	return tok, nil
}

// New builds a client. ctx scopes token requests.
func New(ctx context.Context, opts Options, creds Credentials, options ...Option) *Client {
	cfg := clientConfig{base: &http.Client{Timeout: 30 * time.Second}}
	for _, opt := range options {
		opt(&cfg)
	}
	opts.APIURL = strings.TrimRight(opts.APIURL, "/")
	opts.SearchAPIURL = strings.TrimRight(opts.SearchAPIURL, "/")

	ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.base)
	conf := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL:  opts.OAuthURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	source := oauth2.ReuseTokenSource(nil, passwordSource{
		ctx:      ctx,
		conf:     conf,
		username: creds.Username,
		password: creds.Password,
	})
	httpClient := oauth2.NewClient(ctx, source)
	httpClient.Timeout = cfg.base.Timeout

	return &Client{
		opts:       opts,
		httpClient: httpClient,
		logger:     logging.NewComponentLogger(cfg.logger, "wordpress"),
	}
}

func (c *Client) siteURL(base string, parts ...string) string {
	segments := append([]string{base, "sites", url.PathEscape(c.opts.Site)}, parts...)
	return strings.Join(segments, "/")
}

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (c *Client) do(req *http.Request, out any) error {
	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		return services.Wrap(services.ErrExternal, "wordpress", req.Method, fmt.Sprintf("%s (latency=%v)", req.URL.Path, latency), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return services.Wrap(services.ErrExternal, "wordpress", "read response", req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr apiError
		_ = json.Unmarshal(body, &apiErr)
		detail := fmt.Sprintf("%s returned %d (latency=%v)", req.URL.Path, resp.StatusCode, latency)
		if apiErr.Message != "" {
			detail += ": " + apiErr.Message
		}
		return services.Wrap(services.ErrExternal, "wordpress", req.Method, detail, nil)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return services.Wrap(services.ErrExternal, "wordpress", "decode response", req.URL.Path, err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string, query url.Values, out any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req, out)
}
