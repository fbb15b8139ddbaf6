package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// errUserCreationFailed rolls the registration back when the freshly
// inserted user cannot be read again inside the transaction
var errUserCreationFailed = errors.New("user creation failed")

// ErrInvalidVerificationToken is returned for an unknown verification token
var ErrInvalidVerificationToken = shared.NewDomainError("TOKEN_INVALID", "Invalid verification link")

// GormRegistrationStore implements identity.RegistrationStore. Every call
// runs in one database transaction.
type GormRegistrationStore struct {
	db       *gorm.DB
	tokenTTL time.Duration
}

// RegistrationStoreOption configures a GormRegistrationStore
type RegistrationStoreOption func(*GormRegistrationStore)

// WithTokenTTL overrides the verification token lifetime
func WithTokenTTL(ttl time.Duration) RegistrationStoreOption {
	return func(s *GormRegistrationStore) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// NewGormRegistrationStore creates a new GormRegistrationStore
func NewGormRegistrationStore(db *gorm.DB, opts ...RegistrationStoreOption) *GormRegistrationStore {
	s := &GormRegistrationStore{db: db, tokenTTL: identity.VerificationTokenTTL}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the account and its first verification token, or issues
// a fresh token when the email belongs to an unconfirmed account.
//
// The user ID is generated before anything is inserted so the token's
// foreign key always points at the row written in the same transaction.
func (s *GormRegistrationStore) Register(ctx context.Context, in identity.RegistrationInput, now time.Time) (*identity.RegistrationResult, error) {
	in, err := in.Normalize()
	if err != nil {
		return nil, err
	}

	var result *identity.RegistrationResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := NewGormUserRepository(tx)
		tokens := NewGormVerificationTokenRepository(tx)

		existing, err := users.FindByEmail(ctx, in.Email)
		switch {
		case err == nil:
			if existing.IsEmailConfirmed() {
				result = identity.RegistrationFailed(identity.MsgEmailConfirmed)
				return nil
			}
			token, err := s.issueToken(ctx, tokens, existing.ID, now)
			if err != nil {
				return err
			}
			result = identity.RegistrationSucceeded(existing, token, false)
			return nil
		case !errors.Is(err, shared.ErrNotFound):
			return err
		}

		if _, err := users.FindByPhone(ctx, in.Phone); err == nil {
			result = identity.RegistrationFailed(identity.MsgPhoneExists)
			return nil
		} else if !errors.Is(err, shared.ErrNotFound) {
			return err
		}

		userID := uuid.New()
		if err := users.Create(ctx, identity.NewUser(userID, in, now)); err != nil {
			if errors.Is(err, shared.ErrAlreadyExists) {
				return errUserCreationFailed
			}
			return err
		}

		created, err := users.FindByID(ctx, userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return errUserCreationFailed
			}
			return err
		}

		token, err := s.issueToken(ctx, tokens, userID, now)
		if err != nil {
			return err
		}
		result = identity.RegistrationSucceeded(created, token, true)
		return nil
	})

	if errors.Is(err, errUserCreationFailed) {
		return identity.RegistrationFailed(identity.MsgUserCreationFailed), nil
	}
	if err != nil {
		return nil, fmt.Errorf("register %s: %w", in.Email, err)
	}
	return result, nil
}

// Reissue invalidates the pending user's tokens and issues a new one
func (s *GormRegistrationStore) Reissue(ctx context.Context, email string, now time.Time) (*identity.RegistrationResult, error) {
	email, err := identity.NormalizeEmail(email)
	if err != nil {
		return nil, err
	}

	var result *identity.RegistrationResult
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := NewGormUserRepository(tx).FindByEmail(ctx, email)
		if err != nil {
			return err
		}
		if user.IsEmailConfirmed() {
			result = identity.RegistrationFailed(identity.MsgEmailConfirmed)
			return nil
		}
		token, err := s.issueToken(ctx, NewGormVerificationTokenRepository(tx), user.ID, now)
		if err != nil {
			return err
		}
		result = identity.RegistrationSucceeded(user, token, false)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ConfirmEmail consumes the token, marks every token of its user used and
// confirms the user's email. The returned user carries an EmailConfirmed
// event unless the email was already confirmed.
func (s *GormRegistrationStore) ConfirmEmail(ctx context.Context, value string, now time.Time) (*identity.User, error) {
	var user *identity.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := NewGormUserRepository(tx)
		tokens := NewGormVerificationTokenRepository(tx)

		token, err := tokens.FindByToken(ctx, value)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrInvalidVerificationToken
			}
			return err
		}
		if err := token.Consume(now); err != nil {
			return err
		}
		if _, err := tokens.InvalidateForUser(ctx, token.UserID, now); err != nil {
			return err
		}

		user, err = users.FindByID(ctx, token.UserID)
		if err != nil {
			return err
		}
		user.ConfirmEmail(now)
		return users.Save(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (s *GormRegistrationStore) issueToken(ctx context.Context, tokens *GormVerificationTokenRepository, userID uuid.UUID, now time.Time) (*identity.EmailVerificationToken, error) {
	if _, err := tokens.InvalidateForUser(ctx, userID, now); err != nil {
		return nil, err
	}
	token, err := identity.NewEmailVerificationToken(userID, now)
	if err != nil {
		return nil, err
	}
	token.ExpiresAt = now.Add(s.tokenTTL)
	if err := tokens.Create(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

var _ identity.RegistrationStore = (*GormRegistrationStore)(nil)
