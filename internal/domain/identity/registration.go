package identity

import (
	"context"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Registration outcome messages. The failure strings are part of the API
// contract and are matched by clients.
const (
	MsgEmailConfirmed     = "Email already exists and is confirmed"
	MsgPhoneExists        = "Phone already exists"
	MsgUserCreationFailed = "User creation failed"
	MsgRegistered         = "User registered successfully. Please verify your email"
	MsgTokenReissued      = "Verification email sent again. Please check your inbox"
)

// RegistrationInput is what the registration transaction needs. The
// password arrives already hashed.
type RegistrationInput struct {
	Email              string
	Phone              string
	PasswordHash       string
	FullName           string
	BusinessName       string
	Role               Role
	SubscriptionPlan   billing.PlanTier
	SubscriptionStatus SubscriptionStatus
}

// WithDefaults fills role, plan and status when empty
func (in RegistrationInput) WithDefaults() RegistrationInput {
	if in.Role == "" {
		in.Role = DefaultRole
	}
	if in.SubscriptionPlan == "" {
		in.SubscriptionPlan = billing.DefaultPlan
	}
	if in.SubscriptionStatus == "" {
		in.SubscriptionStatus = DefaultSubscriptionStatus
	}
	return in
}

// Normalize applies defaults, canonicalizes email and phone, and validates
// every field.
func (in RegistrationInput) Normalize() (RegistrationInput, error) {
	in = in.WithDefaults()

	email, err := NormalizeEmail(in.Email)
	if err != nil {
		return in, err
	}
	in.Email = email

	phone, err := NormalizePhone(in.Phone)
	if err != nil {
		return in, err
	}
	in.Phone = phone

	in.FullName = strings.TrimSpace(in.FullName)
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	switch {
	case in.PasswordHash == "":
		return in, shared.NewDomainError("INVALID_PASSWORD", "Password is required")
	case in.FullName == "":
		return in, shared.NewDomainError("INVALID_FULL_NAME", "Full name is required")
	case in.BusinessName == "":
		return in, shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name is required")
	case !in.Role.IsValid():
		return in, shared.NewDomainError("INVALID_ROLE", "Role must be Owner, Admin or Salesperson")
	case !in.SubscriptionPlan.IsValid():
		return in, shared.NewDomainError("INVALID_PLAN", "Unknown subscription plan")
	case !in.SubscriptionStatus.IsValid():
		return in, shared.NewDomainError("INVALID_SUBSCRIPTION_STATUS", "Unknown subscription status")
	}
	return in, nil
}

// RegistrationResult mirrors the wire contract: {success, user_id, token,
// message} on success and {success: false, error} on a rejected registration.
type RegistrationResult struct {
	Success bool       `json:"success"`
	UserID  *uuid.UUID `json:"user_id,omitempty"`
	Token   string     `json:"token,omitempty"`
	Message string     `json:"message,omitempty"`
	Error   string     `json:"error,omitempty"`

	// Set on success for downstream notification, never serialized
	Email     string    `json:"-"`
	ExpiresAt time.Time `json:"-"`
	Created   bool      `json:"-"`
}

// RegistrationFailed builds a rejected result
func RegistrationFailed(msg string) *RegistrationResult {
	return &RegistrationResult{Success: false, Error: msg}
}

// RegistrationSucceeded builds a successful result around an issued token
func RegistrationSucceeded(user *User, token *EmailVerificationToken, created bool) *RegistrationResult {
	id := user.ID
	msg := MsgTokenReissued
	if created {
		msg = MsgRegistered
	}
	return &RegistrationResult{
		Success:   true,
		UserID:    &id,
		Token:     token.Token,
		Message:   msg,
		Email:     user.Email,
		ExpiresAt: token.ExpiresAt,
		Created:   created,
	}
}

// RegistrationStore runs the registration and verification flows, each as a
// single database transaction.
//
// Register returns a rejected result (not an error) for the business
// outcomes "email confirmed" and "phone taken"; errors are reserved for
// infrastructure failures, which roll the transaction back.
type RegistrationStore interface {
	Register(ctx context.Context, in RegistrationInput, now time.Time) (*RegistrationResult, error)
	// Reissue invalidates a pending user's tokens and issues a new one
	Reissue(ctx context.Context, email string, now time.Time) (*RegistrationResult, error)
	// ConfirmEmail consumes a token, marks every token of its user used and
	// confirms the user's email
	ConfirmEmail(ctx context.Context, token string, now time.Time) (*User, error)
}
