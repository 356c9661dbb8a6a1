// Package http implements the HTTP request pipeline shared by all client
// operations: URL construction, JSON encoding, the Bearer auth gate, and
// structured request/response logging.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// Static errors for err113 compliance.
var (
	ErrNoToken = errors.New("could not retrieve token")
)

// TokenProvider supplies Bearer tokens for outgoing requests.
type TokenProvider interface {
	GetToken(ctx context.Context) (string, error)
}

// Logger interface for HTTP client logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
	// SkipAuth suppresses the auth gate for requests that must not carry
	// a Bearer token.
	SkipAuth bool
}

// Response represents a raw API response. Every HTTP status is returned as
// a Response; classifying non-2xx statuses is the caller's concern.
type Response struct {
	StatusCode int
	Status     string
	Headers    http.Header
	Body       []byte
}

// Client sends API requests against a fixed base URL.
type Client struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
	logger     Logger
	debug      bool
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger used for debug output.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRetryConfig enables transport-level retries for transient failures
// (connection errors, 429 and 5xx responses). The core pipeline itself has
// no retry policy; this delegates it entirely to retryablehttp.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		retryClient := retryablehttp.NewClient()
		retryClient.RetryMax = retryMax
		retryClient.RetryWaitMin = waitMin
		retryClient.RetryWaitMax = waitMax
		retryClient.Logger = nil
		c.httpClient = retryClient.StandardClient()
	}
}

// NewClient creates a new API HTTP client. The tokenProvider may be nil for
// unauthenticated use.
func NewClient(baseURL string, tokens TokenProvider, opts ...Option) *Client {
	client := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		userAgent:  "commercetools-go-sdk",
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do sends the request and returns the raw response. Only transport-level
// failures are returned as errors; an auth gate failure is reported as an
// ErrNoToken-wrapped error without the request ever being sent.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Status:     httpResp.Status,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         httpReq.URL.String(),
			"status_code": resp.StatusCode,
		})
	}

	return resp, nil
}

// buildRequest constructs the outgoing http.Request, running the auth gate
// unless the request opts out.
func (c *Client) buildRequest(ctx context.Context, req *Request) (*http.Request, error) {
	path := req.Path
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	target := c.baseURL + path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encoding request body: %w", err)
		}

		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	if c.tokens != nil && !req.SkipAuth {
		token, err := c.tokens.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoToken, err)
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	return httpReq, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodPost,
		Path:   path,
		Body:   body,
	})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{
		Method: http.MethodDelete,
		Path:   path,
		Query:  query,
	})
}
