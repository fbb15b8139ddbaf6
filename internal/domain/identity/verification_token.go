package identity

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// VerificationTokenTTL is how long an email verification token stays valid
const VerificationTokenTTL = 30 * time.Minute

// EmailVerificationToken is a single-use token sent to confirm an email address.
// At most one token per user is usable at a time.
type EmailVerificationToken struct {
	shared.BaseEntity
	UserID    uuid.UUID
	Token     string
	ExpiresAt time.Time
	Used      bool
	UsedAt    *time.Time
}

// NewEmailVerificationToken issues a token for userID valid for VerificationTokenTTL
func NewEmailVerificationToken(userID uuid.UUID, now time.Time) (*EmailVerificationToken, error) {
	value, err := GenerateTokenValue()
	if err != nil {
		return nil, err
	}
	return &EmailVerificationToken{
		BaseEntity: shared.BaseEntity{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		UserID:     userID,
		Token:      value,
		ExpiresAt:  now.Add(VerificationTokenTTL),
	}, nil
}

// IsExpired reports whether the token lifetime has passed
func (t *EmailVerificationToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// IsUsable reports whether the token can still confirm an email
func (t *EmailVerificationToken) IsUsable(now time.Time) bool {
	return !t.Used && !t.IsExpired(now)
}

// Consume validates and marks the token used
func (t *EmailVerificationToken) Consume(now time.Time) error {
	if t.Used {
		return shared.NewDomainError("TOKEN_USED", "This verification link has already been used")
	}
	if t.IsExpired(now) {
		return shared.NewDomainError("TOKEN_EXPIRED", "This verification link has expired")
	}
	t.Used = true
	t.UsedAt = &now
	t.UpdatedAt = now
	return nil
}

// GenerateTokenValue returns 32 random bytes, base64url-encoded
func GenerateTokenValue() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate verification token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
