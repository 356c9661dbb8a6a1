package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Static errors for err113 compliance.
var (
	ErrNoCredentials      = errors.New("no client credentials available")
	ErrTokenRequestDenied = errors.New("token request denied")
)

// Config configures a TokenManager.
type Config struct {
	// TokenURL is the full OAuth2 token endpoint.
	TokenURL string
	// ClientID and ClientSecret authenticate the token request via HTTP Basic auth.
	ClientID     string
	ClientSecret string
	// ProjectKey is appended to Scope when requesting a token.
	ProjectKey string
	// Scope is the permission scope requested for the token, e.g. "manage_project".
	Scope string
	// HTTPClient optionally overrides the client used for token requests.
	HTTPClient *http.Client
}

// TokenManager obtains and stores access tokens using the OAuth2
// client_credentials grant. The token endpoint itself is exempt from the
// Bearer auth gate; it authenticates with Basic auth instead.
//
// GetToken intentionally performs no single-flight coordination: concurrent
// callers that each observe an invalid token may each issue a token request.
// Every successful fetch yields a usable token and the last completed fetch
// wins the race to be stored.
type TokenManager struct {
	config     *Config
	store      *TokenStore
	httpClient *http.Client
}

// NewTokenManager creates a token manager for the given config.
func NewTokenManager(config *Config) *TokenManager {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	return &TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: httpClient,
	}
}

// GetToken returns a valid access token, fetching a fresh one via the
// client_credentials grant when the stored token is absent or expired.
func (m *TokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	m.store.Clear()

	token, err := m.FetchToken(ctx)
	if err != nil {
		return "", err
	}

	return token.AccessToken, nil
}

// FetchToken requests a brand-new token using the client_credentials grant
// and stores it on success.
func (m *TokenManager) FetchToken(ctx context.Context) (*Token, error) {
	if m.config.ClientID == "" || m.config.ClientSecret == "" {
		return nil, ErrNoCredentials
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("scope", m.scope())

	return m.requestToken(ctx, form)
}

// RefreshGrant exchanges a refresh token for a new access token. The
// platform only issues refresh tokens for the password grant, which this
// client does not use, so this path exists for wire completeness only.
func (m *TokenManager) RefreshGrant(ctx context.Context, refreshToken string) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	return m.requestToken(ctx, form)
}

// SetToken manually sets the access token.
func (m *TokenManager) SetToken(accessToken string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
		IssuedAt:    time.Now(),
		ExpiresAt:   expiresAt,
	})
}

// Current returns the stored token, or nil if none is held.
func (m *TokenManager) Current() *Token {
	return m.store.Get()
}

// scope builds the requested scope as "{scope}:{projectKey}".
func (m *TokenManager) scope() string {
	return m.config.Scope + ":" + m.config.ProjectKey
}

// requestToken posts the form to the token endpoint and decodes the result.
func (m *TokenManager) requestToken(ctx context.Context, form url.Values) (*Token, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating token request: %w", err)
	}

	req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("token request failed: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, tokenError(resp.StatusCode, body)
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, fmt.Errorf("parsing token response: %w", err)
	}

	token.stamp(time.Now())
	m.store.Set(&token)

	return &token, nil
}

// tokenError surfaces the error and error_description fields of a failed
// token response.
func tokenError(status int, body []byte) error {
	var payload struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}

	err := json.Unmarshal(body, &payload)
	if err != nil || payload.Error == "" {
		return fmt.Errorf("%w: status %d", ErrTokenRequestDenied, status)
	}

	return fmt.Errorf("%w: %s: %s", ErrTokenRequestDenied, payload.Error, payload.ErrorDescription)
}
