package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/oauth2"

	"github.com/jonwraymond/fleetsync/observe"
	"github.com/jonwraymond/fleetsync/resilience"
)

// maxBodySize bounds how much of a response is read.
const maxBodySize = 10 << 20

// RequestIDHeader carries a per-call id, constant across retries.
const RequestIDHeader = "X-Request-ID"

// Config configures a Client.
type Config struct {
	BaseURL   string        `mapstructure:"base_url"`
	Token     string        `mapstructure:"token"`
	Timeout   time.Duration `mapstructure:"timeout"`
	UserAgent string        `mapstructure:"user_agent"`
}

// DefaultConfig returns defaults for local development.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:5000/api",
		Timeout:   30 * time.Second,
		UserAgent: "fleetsync",
	}
}

// Validate checks the configuration.
func (c Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%w: base_url %q must be an absolute URL", ErrInvalidConfig, c.BaseURL)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Client calls the admin API.
//
// Contract:
//   - Concurrency: safe for concurrent use.
//   - Retries: only GET requests are retried.
//   - Errors: failures are *Error or transport/resilience errors.
type Client struct {
	base           *url.URL
	http           *http.Client
	exec           *resilience.Executor
	mw             *observe.Middleware
	onUnauthorized func(ctx context.Context, err error)
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient     *http.Client
	tokenSource    oauth2.TokenSource
	exec           *resilience.Executor
	mw             *observe.Middleware
	onUnauthorized func(ctx context.Context, err error)
}

// WithHTTPClient sets the underlying HTTP client. Its transport is wrapped.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithTokenSource authenticates requests with bearer tokens from ts,
// taking precedence over Config.Token.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(o *clientOptions) { o.tokenSource = ts }
}

// WithExecutor sets the resilience executor.
func WithExecutor(e *resilience.Executor) Option {
	return func(o *clientOptions) { o.exec = e }
}

// WithMiddleware instruments calls.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(o *clientOptions) { o.mw = mw }
}

// WithUnauthorizedHandler is called for 401 and 403 responses, e.g. to
// send the user back to the login flow.
func WithUnauthorizedHandler(fn func(ctx context.Context, err error)) Option {
	return func(o *clientOptions) { o.onUnauthorized = fn }
}

// New creates a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	base, _ := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		clone := *o.httpClient
		hc = &clone
	}
	if cfg.Timeout > 0 {
		hc.Timeout = cfg.Timeout
	}

	transport := hc.Transport
	if transport == nil {
		transport = http.DefaultTransport
	}
	transport = otelhttp.NewTransport(transport)
	transport = &headerTransport{wrapped: transport, userAgent: cfg.UserAgent}

	ts := o.tokenSource
	if ts == nil && cfg.Token != "" {
		ts = oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"})
	}
	if ts != nil {
		transport = &oauth2.Transport{Source: ts, Base: transport}
	}
	hc.Transport = transport

	c := &Client{
		base:           base,
		http:           hc,
		exec:           o.exec,
		mw:             o.mw,
		onUnauthorized: o.onUnauthorized,
	}
	if c.exec == nil {
		c.exec = resilience.NewExecutor()
	}
	if c.mw == nil {
		c.mw = observe.NopMiddleware()
	}
	return c, nil
}

// BaseURL returns the API root.
func (c *Client) BaseURL() string { return c.base.String() }

// Do sends a request and decodes the envelope into out, which must be a
// pointer to an Envelope or nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: failed to encode request body: %w", err)
		}
		payload = b
	}

	target := c.resolve(path, query)
	requestID := uuid.NewString()
	meta := observe.OpMeta{
		Domain: domainOf(path),
		Name:   method + " /" + domainOf(path),
		Kind:   observe.KindHTTP,
		Key:    path,
	}

	attempt := func(ctx context.Context) error {
		return c.send(ctx, method, path, target, requestID, payload, out)
	}
	run := c.exec.ExecuteOnce
	if method == http.MethodGet || method == http.MethodHead {
		run = c.exec.Execute
	}

	err := c.mw.Run(ctx, meta, func(ctx context.Context) error {
		return run(ctx, attempt)
	})
	if err != nil && c.onUnauthorized != nil {
		switch StatusCode(err) {
		case http.StatusUnauthorized, http.StatusForbidden:
			c.onUnauthorized(ctx, err)
		}
	}
	return err
}

func (c *Client) send(ctx context.Context, method, path, target, requestID string, payload []byte, out any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("api: failed to build request: %w", err)
	}
	req.Header.Set(RequestIDHeader, requestID)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("api: failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: extractMessage(raw), Body: raw}
	}

	var status struct {
		Success *bool `json:"success"`
	}
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, &status); err != nil {
			return fmt.Errorf("%w: %w", ErrDecode, err)
		}
	}
	if status.Success != nil && !*status.Success {
		return &Error{Method: method, Path: path, StatusCode: resp.StatusCode, Message: extractMessage(raw), Body: raw}
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return nil
}

func (c *Client) resolve(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// domainOf returns the first path segment, e.g. "hubs" for "/hubs/h-1".
func domainOf(path string) string {
	seg, _, _ := strings.Cut(strings.TrimLeft(path, "/"), "/")
	return seg
}

// Get fetches path and returns its envelope.
func Get[T any](ctx context.Context, c *Client, path string, query url.Values) (Envelope[T], error) {
	var env Envelope[T]
	err := c.Do(ctx, http.MethodGet, path, query, nil, &env)
	return env, err
}

// List fetches a paginated collection.
func List[T any](ctx context.Context, c *Client, path string, query url.Values) (Page[T], error) {
	env, err := Get[[]T](ctx, c, path, query)
	if err != nil {
		return Page[T]{}, err
	}
	return PageOf(env), nil
}

// Send issues a write and returns its envelope.
func Send[T any](ctx context.Context, c *Client, method, path string, body any) (Envelope[T], error) {
	var env Envelope[T]
	err := c.Do(ctx, method, path, nil, body, &env)
	return env, err
}

// headerTransport sets headers common to every request.
type headerTransport struct {
	wrapped   http.RoundTripper
	userAgent string
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	clone.Header.Set("Accept", "application/json")
	return t.wrapped.RoundTrip(clone)
}
