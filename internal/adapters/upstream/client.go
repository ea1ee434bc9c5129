// Package upstream holds the HTTP plumbing shared by the standings providers.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/okian/livetable/pkg/logger"
	"github.com/okian/livetable/pkg/metrics"
)

// DefaultTimeout bounds every upstream request when no client is supplied.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // shared codec

// Client issues authenticated JSON GET requests against one provider.
type Client struct {
	provider   string
	baseURL    string
	header     http.Header
	httpClient *http.Client
	logger     logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTimeout sets the per-request timeout of the default http.Client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHeader adds a header sent on every request. Empty values are ignored.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		if strings.TrimSpace(value) != "" {
			c.header.Set(key, value)
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a client for provider rooted at baseURL.
func NewClient(provider, baseURL string, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		header:     http.Header{"Accept": []string{"application/json"}},
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Provider returns the provider name used in errors and metrics.
func (c *Client) Provider() string { return c.provider }

// HasHeader reports whether a header (e.g. an API key) is configured.
func (c *Client) HasHeader(key string) bool { return c.header.Get(key) != "" }

// GetJSON requests path with query and decodes the JSON body into out.
// endpoint labels the call in metrics. Non-2xx answers return *StatusError.
func (c *Client) GetJSON(ctx context.Context, endpoint, path string, query url.Values, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%w: build request: %w", ErrFetch, err)
	}
	for k, v := range c.header {
		req.Header[k] = v
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	latencyMs := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordUpstreamRequest(c.provider, endpoint, "transport_error", latencyMs)
		metrics.RecordErrorByComponent("upstream", "transport")
		return fmt.Errorf("%w: %s %s: %w", ErrFetch, c.provider, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	metrics.RecordUpstreamRequest(c.provider, endpoint, strconv.Itoa(resp.StatusCode), latencyMs)
	if c.logger != nil {
		c.logger.Debug(ctx, "upstream request",
			logger.String("provider", c.provider),
			logger.String("path", path),
			logger.Int("status", resp.StatusCode),
			logger.Float64("latencyMs", latencyMs),
		)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.RecordErrorByComponent("upstream", "status")
		text := strings.TrimSpace(string(body))
		if text == "" {
			text = http.StatusText(resp.StatusCode)
		}
		return &StatusError{Provider: c.provider, Path: path, StatusCode: resp.StatusCode, Body: text}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordErrorByComponent("upstream", "decode")
		return fmt.Errorf("%w: %s %s: decode: %w", ErrFetch, c.provider, path, err)
	}
	return nil
}
