package client

import (
	"sync"
	"time"

	identityapp "github.com/bizhub/backend/internal/application/identity"
)

// Session holds the signed-in user's tokens. Login calls Init, logout and
// any 401 call Reset. It is safe for concurrent use.
type Session struct {
	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	expiresAt    time.Time
	user         *identityapp.UserResponse
	onReset      []func()
}

// NewSession returns an empty session
func NewSession() *Session {
	return &Session{}
}

// Init stores a new token pair and, when given, the signed-in user
func (s *Session) Init(tokens identityapp.TokenResponse, user *identityapp.UserResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accessToken = tokens.AccessToken
	s.refreshToken = tokens.RefreshToken
	s.expiresAt = tokens.AccessTokenExpiresAt
	if user != nil {
		u := *user
		s.user = &u
	}
}

// Reset forgets the tokens and user and runs the reset hooks
func (s *Session) Reset() {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.expiresAt = time.Time{}
	s.user = nil
	hooks := append([]func(){}, s.onReset...)
	s.mu.Unlock()

	for _, fn := range hooks {
		fn()
	}
}

// OnReset registers fn to run after every Reset
func (s *Session) OnReset(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onReset = append(s.onReset, fn)
}

// Active reports whether an access token is held
func (s *Session) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

// AccessToken returns the current access token, empty when signed out
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// ExpiresAt returns when the access token expires
func (s *Session) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.expiresAt
}

// User returns a copy of the signed-in user
func (s *Session) User() (identityapp.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return identityapp.UserResponse{}, false
	}
	return *s.user, true
}
