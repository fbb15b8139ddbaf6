package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role is a user's role within their business
type Role string

const (
	RoleOwner       Role = "Owner"
	RoleAdmin       Role = "Admin"
	RoleSalesperson Role = "Salesperson"
)

// DefaultRole is assigned at registration when none is given
const DefaultRole = RoleOwner

func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleAdmin, RoleSalesperson:
		return true
	}
	return false
}

// SubscriptionStatus is the billing state of the account
type SubscriptionStatus string

const (
	SubscriptionTrial     SubscriptionStatus = "trial"
	SubscriptionActive    SubscriptionStatus = "active"
	SubscriptionExpired   SubscriptionStatus = "expired"
	SubscriptionCancelled SubscriptionStatus = "cancelled"
)

// DefaultSubscriptionStatus is assigned at registration when none is given
const DefaultSubscriptionStatus = SubscriptionTrial

func (s SubscriptionStatus) IsValid() bool {
	switch s {
	case SubscriptionTrial, SubscriptionActive, SubscriptionExpired, SubscriptionCancelled:
		return true
	}
	return false
}

// TrialPeriod is the length of the trial window started at registration
const TrialPeriod = 7 * 24 * time.Hour

const bcryptCost = 12

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// User is a business account holder
type User struct {
	shared.BaseAggregateRoot
	Email              string
	Phone              string
	PasswordHash       string
	FullName           string
	BusinessName       string
	Role               Role
	Plan               billing.PlanTier
	SubscriptionStatus SubscriptionStatus
	TrialStartsAt      *time.Time
	TrialEndsAt        *time.Time
	EmailConfirmedAt   *time.Time
	Active             bool
	LastLoginAt        *time.Time
}

// NewUser builds a user with an ID chosen by the caller. The trial window
// opens immediately when the subscription starts in trial.
func NewUser(id uuid.UUID, in RegistrationInput, now time.Time) *User {
	in = in.WithDefaults()
	u := &User{
		BaseAggregateRoot: shared.BaseAggregateRoot{
			BaseEntity: shared.BaseEntity{ID: id, CreatedAt: now, UpdatedAt: now},
			Version:    1,
		},
		Email:              in.Email,
		Phone:              in.Phone,
		PasswordHash:       in.PasswordHash,
		FullName:           in.FullName,
		BusinessName:       in.BusinessName,
		Role:               in.Role,
		Plan:               in.SubscriptionPlan,
		SubscriptionStatus: in.SubscriptionStatus,
		Active:             true,
	}
	if u.SubscriptionStatus == SubscriptionTrial {
		start := now
		end := now.Add(TrialPeriod)
		u.TrialStartsAt = &start
		u.TrialEndsAt = &end
	}
	return u
}

// IsEmailConfirmed reports whether the email has been verified
func (u *User) IsEmailConfirmed() bool {
	return u.EmailConfirmedAt != nil
}

// ConfirmEmail marks the email verified. Confirming twice is a no-op.
func (u *User) ConfirmEmail(now time.Time) {
	if u.IsEmailConfirmed() {
		return
	}
	u.EmailConfirmedAt = &now
	u.IncrementVersion()
	u.AddDomainEvent(NewEmailConfirmedEvent(u))
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// SetPassword replaces the password hash
func (u *User) SetPassword(password string) error {
	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	u.IncrementVersion()
	return nil
}

// UpdateProfile changes the editable profile fields. Empty values are ignored.
func (u *User) UpdateProfile(fullName, businessName, phone string) error {
	if fullName = strings.TrimSpace(fullName); fullName != "" {
		if len(fullName) > 200 {
			return shared.NewDomainError("INVALID_FULL_NAME", "Full name cannot exceed 200 characters")
		}
		u.FullName = fullName
	}
	if businessName = strings.TrimSpace(businessName); businessName != "" {
		if len(businessName) > 200 {
			return shared.NewDomainError("INVALID_BUSINESS_NAME", "Business name cannot exceed 200 characters")
		}
		u.BusinessName = businessName
	}
	if phone != "" {
		normalized, err := NormalizePhone(phone)
		if err != nil {
			return err
		}
		u.Phone = normalized
	}
	u.IncrementVersion()
	return nil
}

// ChangePlan moves the account to a paid plan and activates the subscription
func (u *User) ChangePlan(plan billing.PlanTier) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Unknown subscription plan")
	}
	if !u.Active {
		return shared.NewDomainError("INVALID_STATE", "Cannot change the plan of a deactivated account")
	}
	old := u.Plan
	u.Plan = plan
	u.SubscriptionStatus = SubscriptionActive
	u.IncrementVersion()
	u.AddDomainEvent(NewPlanChangedEvent(u, old))
	return nil
}

// CancelSubscription stops renewal; the account falls back to free-tier limits
func (u *User) CancelSubscription() {
	u.SubscriptionStatus = SubscriptionCancelled
	u.IncrementVersion()
}

// TrialLapsed is true when the account is on trial and the window has closed
func (u *User) TrialLapsed(now time.Time) bool {
	return u.SubscriptionStatus == SubscriptionTrial &&
		u.TrialEndsAt != nil && !now.Before(*u.TrialEndsAt)
}

// ExpireTrial moves a lapsed trial to expired. Returns false if nothing changed.
func (u *User) ExpireTrial(now time.Time) bool {
	if !u.TrialLapsed(now) {
		return false
	}
	u.SubscriptionStatus = SubscriptionExpired
	u.IncrementVersion()
	return true
}

// EffectivePlan is the tier whose limits apply right now. Accounts without
// a live subscription get the free tier.
func (u *User) EffectivePlan(now time.Time) billing.PlanTier {
	switch u.SubscriptionStatus {
	case SubscriptionActive:
		return u.Plan
	case SubscriptionTrial:
		if u.TrialLapsed(now) {
			return billing.PlanFree
		}
		return u.Plan
	default:
		return billing.PlanFree
	}
}

// Deactivate disables the account. Users are never hard-deleted.
func (u *User) Deactivate() error {
	if !u.Active {
		return shared.NewDomainError("INVALID_STATE", "Account is already deactivated")
	}
	u.Active = false
	u.IncrementVersion()
	u.AddDomainEvent(NewUserDeactivatedEvent(u))
	return nil
}

// RecordLogin stamps the last login time
func (u *User) RecordLogin(now time.Time) {
	u.LastLoginAt = &now
	u.Touch()
}

// CanLogin checks the account may start a session
func (u *User) CanLogin() error {
	if !u.Active {
		return shared.NewDomainError("ACCOUNT_DEACTIVATED", "This account has been deactivated")
	}
	if !u.IsEmailConfirmed() {
		return shared.NewDomainError("EMAIL_NOT_CONFIRMED", "Please confirm your email address before signing in")
	}
	return nil
}

// HashPassword validates and bcrypt-hashes a plaintext password
func HashPassword(password string) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	return string(hash), nil
}

// ValidatePassword enforces length and letter+digit composition
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 72 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 72 characters")
	}
	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case r >= '0' && r <= '9':
			hasDigit = true
		case (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
			hasLetter = true
		}
	}
	if !hasLetter || !hasDigit {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}
	return nil
}

// NormalizeEmail trims, lower-cases and validates an email address
func NormalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return "", shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 || !emailRegex.MatchString(email) {
		return "", shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}
	return email, nil
}

// NormalizePhone strips spaces, dashes and parentheses and validates the result
func NormalizePhone(phone string) (string, error) {
	phone = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '.':
			return -1
		}
		return r
	}, strings.TrimSpace(phone))
	if phone == "" {
		return "", shared.NewDomainError("INVALID_PHONE", "Phone is required")
	}
	if !phoneRegex.MatchString(phone) {
		return "", shared.NewDomainError("INVALID_PHONE", "Invalid phone number")
	}
	return phone, nil
}
