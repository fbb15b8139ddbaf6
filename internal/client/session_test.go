package client

import (
	"testing"
	"time"

	identityapp "github.com/bizhub/backend/internal/application/identity"
	"github.com/stretchr/testify/assert"
)

func TestSession_InitAndReset(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Active())

	var resets int
	s.OnReset(func() { resets++ })

	expires := time.Date(2026, 3, 1, 9, 15, 0, 0, time.UTC)
	s.Init(identityapp.TokenResponse{AccessToken: "a1", RefreshToken: "r1", AccessTokenExpiresAt: expires},
		&identityapp.UserResponse{Email: "a@b.com"})
	assert.True(t, s.Active())
	assert.Equal(t, "a1", s.AccessToken())
	assert.Equal(t, "r1", s.RefreshToken())
	assert.Equal(t, expires, s.ExpiresAt())

	// A refresh keeps the user
	s.Init(identityapp.TokenResponse{AccessToken: "a2", RefreshToken: "r2"}, nil)
	user, ok := s.User()
	assert.True(t, ok)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, "a2", s.AccessToken())

	s.Reset()
	assert.False(t, s.Active())
	assert.Empty(t, s.RefreshToken())
	_, ok = s.User()
	assert.False(t, ok)
	assert.Equal(t, 1, resets)
}
