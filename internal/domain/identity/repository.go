package identity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UserRepository persists users
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByPhone(ctx context.Context, phone string) (*User, error)
	Save(ctx context.Context, user *User) error
	// FindLapsedTrials returns trial accounts whose window closed before now
	FindLapsedTrials(ctx context.Context, now time.Time) ([]*User, error)
}

// VerificationTokenRepository persists email verification tokens
type VerificationTokenRepository interface {
	FindByToken(ctx context.Context, token string) (*EmailVerificationToken, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]*EmailVerificationToken, error)
	// DeleteStale removes tokens that were used or expired before cutoff
	DeleteStale(ctx context.Context, cutoff time.Time) (int64, error)
}
