package auth

import (
	"context"
	"errors"
	"sync"
	"time"
)

// expiryBuffer treats tokens about to expire as already expired.
const expiryBuffer = 30 * time.Second

// Static errors for err113 compliance.
var (
	ErrNoToken             = errors.New("no access token configured")
	ErrTokenExpired        = errors.New("access token has expired")
	ErrRefreshNotSupported = errors.New("token refresh is not supported, configure a new access token")
)

// TokenManager supplies the access token sent with every request.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}

// Token is an access token and its optional expiry.
type Token struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

// Valid reports whether the token is set and not about to expire.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(expiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds a token behind a lock.
type TokenStore struct {
	mutex sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the stored token.
func (s *TokenStore) Get() *Token {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.token
}

// Set replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.token = nil
}

// StaticTokenManager serves a token obtained elsewhere. It never refreshes.
type StaticTokenManager struct {
	store *TokenStore
}

// NewStaticTokenManager creates a manager serving token without expiry.
func NewStaticTokenManager(token string) *StaticTokenManager {
	m := &StaticTokenManager{store: NewTokenStore()}
	if token != "" {
		m.store.Set(&Token{AccessToken: token, TokenType: "Zoho-oauthtoken"})
	}

	return m
}

// GetToken returns the configured token.
func (m *StaticTokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token == nil || token.AccessToken == "" {
		return "", ErrNoToken
	}

	if !token.Valid() {
		return "", ErrTokenExpired
	}

	return token.AccessToken, nil
}

// RefreshToken always fails: obtaining tokens is left to the caller.
func (m *StaticTokenManager) RefreshToken(ctx context.Context) error {
	return ErrRefreshNotSupported
}

// SetToken replaces the token, for example after the caller refreshed it.
func (m *StaticTokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{AccessToken: token, TokenType: "Zoho-oauthtoken", ExpiresAt: expiresAt})
}
