package auth

import (
	"sync"
	"time"
)

// Token represents an OAuth2 access token obtained from the auth service.
type Token struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int64     `json:"expires_in"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	Scope        string    `json:"scope,omitempty"`
	IssuedAt     time.Time `json:"-"`
	ExpiresAt    time.Time `json:"-"`
}

// Valid reports whether the token can still be presented as a Bearer
// credential. A token with no expiry never expires. No safety margin is
// subtracted: a token valid at check time may expire before the request
// that carries it completes.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Before(t.ExpiresAt)
}

// stamp records issue time and derives the absolute expiry from expires_in.
func (t *Token) stamp(now time.Time) {
	t.IssuedAt = now
	if t.ExpiresIn > 0 {
		t.ExpiresAt = now.Add(time.Duration(t.ExpiresIn) * time.Second)
	}
}

// TokenStore holds the current token for a client. Tokens are replaced
// wholesale, never mutated in place, so concurrent readers always observe
// a consistent token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil if none is stored.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}
