package identity

import (
	"time"

	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/google/uuid"
)

// RegisterRequest is the sign-up payload. The password arrives in plain
// text and is hashed before it reaches the registration transaction.
type RegisterRequest struct {
	Email              string `json:"email" binding:"required,email,max=200"`
	Phone              string `json:"phone" binding:"required,max=20"`
	Password           string `json:"password" binding:"required,min=8,max=72"`
	FullName           string `json:"full_name" binding:"required,max=200"`
	BusinessName       string `json:"business_name" binding:"required,max=200"`
	Role               string `json:"role" binding:"omitempty,oneof=Owner Admin Salesperson"`
	SubscriptionPlan   string `json:"subscription_plan" binding:"omitempty,oneof=free weekly monthly yearly"`
	SubscriptionStatus string `json:"subscription_status" binding:"omitempty,oneof=trial active expired cancelled"`
}

// VerifyEmailRequest carries a verification token
type VerifyEmailRequest struct {
	Token string `json:"token" binding:"required"`
}

// ResendVerificationRequest asks for a fresh verification token
type ResendVerificationRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// LoginRequest is the sign-in payload
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest exchanges a refresh token for a new pair
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// LogoutInput identifies the tokens to revoke
type LogoutInput struct {
	UserID         uuid.UUID
	AccessTokenJTI string
	AccessTokenTTL time.Duration
	RefreshToken   string
}

// TokenResponse is an issued token pair
type TokenResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
}

// LoginResponse is returned by a successful sign-in
type LoginResponse struct {
	TokenResponse
	User UserResponse `json:"user"`
}

// UpdateProfileRequest changes profile fields. Empty fields are ignored.
type UpdateProfileRequest struct {
	FullName     string `json:"full_name" binding:"max=200"`
	BusinessName string `json:"business_name" binding:"max=200"`
	Phone        string `json:"phone" binding:"max=20"`
}

// ChangePlanRequest moves the account to another plan
type ChangePlanRequest struct {
	Plan string `json:"plan" binding:"required,oneof=free weekly monthly yearly"`
}

// UserResponse represents the signed-in account in API responses
type UserResponse struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	Phone              string     `json:"phone"`
	FullName           string     `json:"full_name"`
	BusinessName       string     `json:"business_name"`
	Role               string     `json:"role"`
	Plan               string     `json:"plan"`
	EffectivePlan      string     `json:"effective_plan"`
	SubscriptionStatus string     `json:"subscription_status"`
	TrialEndsAt        *time.Time `json:"trial_ends_at,omitempty"`
	EmailConfirmed     bool       `json:"email_confirmed"`
	Active             bool       `json:"active"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
}

// ToUserResponse converts a domain user to a response DTO
func ToUserResponse(u *identity.User, now time.Time) UserResponse {
	return UserResponse{
		ID:                 u.ID,
		Email:              u.Email,
		Phone:              u.Phone,
		FullName:           u.FullName,
		BusinessName:       u.BusinessName,
		Role:               string(u.Role),
		Plan:               string(u.Plan),
		EffectivePlan:      string(u.EffectivePlan(now)),
		SubscriptionStatus: string(u.SubscriptionStatus),
		TrialEndsAt:        u.TrialEndsAt,
		EmailConfirmed:     u.IsEmailConfirmed(),
		Active:             u.Active,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt,
	}
}
