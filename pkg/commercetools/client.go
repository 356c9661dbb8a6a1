package commercetools

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bjornsallarp/commercetools-go-sdk/internal/auth"
	sdkhttp "github.com/bjornsallarp/commercetools-go-sdk/internal/http"
)

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Token is the public view of an access token held by a client.
type Token struct {
	AccessToken string    `json:"access_token" yaml:"access_token"`
	TokenType   string    `json:"token_type"   yaml:"token_type"`
	ExpiresIn   int64     `json:"expires_in"   yaml:"expires_in"`
	IssuedAt    time.Time `json:"issued_at"    yaml:"issued_at"`
	ExpiresAt   time.Time `json:"expires_at"   yaml:"expires_at"`
}

// Client is an API client bound to one project. A single instance may be
// used concurrently; its token is replaced wholesale on refresh and the
// activator registry is safe for simultaneous use.
type Client struct {
	config   *Config
	http     *sdkhttp.Client
	tokens   *auth.TokenManager
	registry *Registry
}

type clientOptions struct {
	logger       Logger
	debug        bool
	userAgent    string
	httpClient   *http.Client
	registry     *Registry
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
}

// Option configures a Client.
type Option func(*clientOptions)

// WithLogger sets the structured logger used by the HTTP layer.
func WithLogger(logger Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// WithDebug enables verbose HTTP request/response logging when a logger is
// provided.
func WithDebug(debug bool) Option {
	return func(o *clientOptions) {
		o.debug = debug
	}
}

// WithUserAgent overrides the default User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(o *clientOptions) {
		o.userAgent = userAgent
	}
}

// WithHTTPClient replaces the transport used for API and token requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = httpClient
	}
}

// WithRegistry injects a shared activator registry. Useful when several
// clients should reuse one set of type classifications.
func WithRegistry(registry *Registry) Option {
	return func(o *clientOptions) {
		o.registry = registry
	}
}

// WithoutActivatorCache disables activator memoization; type inspection is
// then repeated on every call with identical observable behavior.
func WithoutActivatorCache() Option {
	return func(o *clientOptions) {
		o.registry = NewUncachedRegistry()
	}
}

// WithRetryConfig enables transport-level retries for transient failures.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(o *clientOptions) {
		o.retryMax = retryMax
		o.retryWaitMin = waitMin
		o.retryWaitMax = waitMax
	}
}

// New creates an API client for the given configuration. The config is
// copied; later mutations of the caller's value have no effect.
func New(config *Config, opts ...Option) (*Client, error) {
	if config == nil {
		return nil, ErrConfigRequired
	}

	cfg := *config
	cfg.APIURL = normalizeURL(cfg.APIURL)
	cfg.AuthURL = normalizeURL(cfg.AuthURL)

	if cfg.Scope == "" {
		cfg.Scope = ScopeManageProject
	}

	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	options := &clientOptions{}
	for _, opt := range opts {
		opt(options)
	}

	tokens := auth.NewTokenManager(&auth.Config{
		TokenURL:     cfg.AuthURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		ProjectKey:   cfg.ProjectKey,
		Scope:        string(cfg.Scope),
		HTTPClient:   options.httpClient,
	})

	var httpOpts []sdkhttp.Option

	if options.logger != nil {
		httpOpts = append(httpOpts, sdkhttp.WithLogger(options.logger))
	}

	if options.debug {
		httpOpts = append(httpOpts, sdkhttp.WithDebug(true))
	}

	if options.userAgent != "" {
		httpOpts = append(httpOpts, sdkhttp.WithUserAgent(options.userAgent))
	}

	if options.httpClient != nil {
		httpOpts = append(httpOpts, sdkhttp.WithHTTPClient(options.httpClient))
	}

	if options.retryMax > 0 {
		httpOpts = append(httpOpts, sdkhttp.WithRetryConfig(options.retryMax, options.retryWaitMin, options.retryWaitMax))
	}

	registry := options.registry
	if registry == nil {
		registry = NewRegistry()
	}

	return &Client{
		config:   &cfg,
		http:     sdkhttp.NewClient(cfg.APIURL+"/"+cfg.ProjectKey, tokens, httpOpts...),
		tokens:   tokens,
		registry: registry,
	}, nil
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() Config {
	return *c.config
}

// AccessToken returns a valid access token, running the auth gate if the
// stored token is absent or expired.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	return c.tokens.GetToken(ctx)
}

// FetchToken forces a fresh client-credentials token request and returns the
// resulting token.
func (c *Client) FetchToken(ctx context.Context) (*Token, error) {
	token, err := c.tokens.FetchToken(ctx)
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: token.AccessToken,
		TokenType:   token.TokenType,
		ExpiresIn:   token.ExpiresIn,
		IssuedAt:    token.IssuedAt,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}

// Get performs a GET against {apiURL}/{projectKey}{endpoint} and decodes the
// result into T.
func Get[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (*Response[T], error) {
	return dispatch[T](ctx, c, &sdkhttp.Request{
		Method: http.MethodGet,
		Path:   endpoint,
		Query:  query,
	})
}

// Post performs a POST with a JSON-encoded payload and decodes the result
// into T.
func Post[T any](ctx context.Context, c *Client, endpoint string, payload interface{}) (*Response[T], error) {
	return dispatch[T](ctx, c, &sdkhttp.Request{
		Method: http.MethodPost,
		Path:   endpoint,
		Body:   payload,
	})
}

// Delete performs a DELETE and decodes the result into T.
func Delete[T any](ctx context.Context, c *Client, endpoint string, query url.Values) (*Response[T], error) {
	return dispatch[T](ctx, c, &sdkhttp.Request{
		Method: http.MethodDelete,
		Path:   endpoint,
		Query:  query,
	})
}

// dispatch runs one request through the pipeline and classifies the outcome.
// An auth gate failure is reported inside the Response; transport failures
// are returned as errors.
func dispatch[T any](ctx context.Context, c *Client, req *sdkhttp.Request) (*Response[T], error) {
	resp, err := c.http.Do(ctx, req)
	if err != nil {
		if errors.Is(err, sdkhttp.ErrNoToken) {
			return &Response[T]{
				Errors: []ErrorMessage{{Code: ErrorCodeNoToken, Message: "Could not retrieve token"}},
			}, nil
		}

		return nil, err
	}

	return decodeResponse[T](c.registry, resp.StatusCode, reasonPhrase(resp), resp.Body), nil
}

// reasonPhrase extracts the reason phrase from the status line, falling back
// to the standard text for the code.
func reasonPhrase(resp *sdkhttp.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}

	return reason
}
