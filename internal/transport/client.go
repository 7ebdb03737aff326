// Package transport performs single physical HTTP exchanges against the
// portal webhook endpoint. It owns the process-wide outbound rate limit;
// request-level error classification belongs to the dispatcher above it.
package transport

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/crmhook-io/crmhook/pkg/crmhook"
)

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultUserAgent   = "crmhook-go"
)

// Response is the outcome of one physical exchange.
type Response struct {
	// StatusCode is the HTTP status of the exchange.
	StatusCode int
	// Body is the raw response body.
	Body []byte
}

// Success reports whether the exchange completed with a 2xx status.
func (r *Response) Success() bool {
	return r.StatusCode >= http.StatusOK && r.StatusCode < http.StatusMultipleChoices
}

// Client issues form-encoded POST exchanges to <webhook-base>/<action>.json.
// All calls funnel through one rate limiter, so batch exchanges are the
// caller's lever for throughput under the cap. The underlying HTTP client
// never uses a cookie jar; webhook auth is carried entirely by the URL.
type Client struct {
	baseURL   string
	http      *retryablehttp.Client
	limiter   *rate.Limiter
	logger    crmhook.Logger
	debug     bool
	userAgent string
}

// Option configures the transport client.
type Option func(*Client)

// WithLogger sets the diagnostic logger.
func WithLogger(logger crmhook.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// WithTimeout bounds a single physical exchange.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.http.HTTPClient.Timeout = timeout
		}
	}
}

// WithRetryConfig opts in to transport-level retries for transient failures.
// The engine itself never retries; this is the caller's external resilience
// dial.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = retryMax
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithRateLimit caps outbound requests per second. Zero or negative
// disables throttling.
func WithRateLimit(requestsPerSecond float64) Option {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
		} else {
			c.limiter = nil
		}
	}
}

// NewClient creates a transport client for the given webhook base URL.
func NewClient(baseURL string, opts ...Option) *Client {
	httpClient := retryablehttp.NewClient()
	httpClient.RetryMax = 0
	httpClient.Logger = nil
	httpClient.HTTPClient.Timeout = defaultHTTPTimeout

	client := &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		http:      httpClient,
		limiter:   rate.NewLimiter(rate.Limit(crmhook.DefaultRequestsPerSecond), 1),
		userAgent: defaultUserAgent,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Post performs one physical exchange for the named action. It blocks until
// the rate limiter admits the request, then returns the status and raw body.
// Non-success statuses are not an error at this layer; the dispatcher
// classifies them.
func (c *Client) Post(ctx context.Context, action string, values url.Values) (*Response, error) {
	if c.limiter != nil {
		err := c.limiter.Wait(ctx)
		if err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	endpoint := c.baseURL + "/" + action + ".json"
	body := values.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("building request for %s: %w", action, err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	requestID := ""
	if c.debug && c.logger != nil {
		requestID = uuid.NewString()
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"request_id": requestID,
			"action":     action,
			"url":        endpoint,
			"body":       body,
		})
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("performing exchange for %s: %w", action, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response for %s: %w", action, err)
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"request_id": requestID,
			"action":     action,
			"status":     resp.StatusCode,
			"body":       string(data),
		})
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}
