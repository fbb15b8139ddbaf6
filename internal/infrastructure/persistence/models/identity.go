package models

import (
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// UserModel is the persistence model for identity.User
type UserModel struct {
	AggregateModel
	Email              string     `gorm:"type:varchar(255);not null;uniqueIndex"`
	Phone              string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"`
	FullName           string     `gorm:"type:varchar(200);not null"`
	BusinessName       string     `gorm:"type:varchar(200);not null"`
	Role               string     `gorm:"type:varchar(20);not null;default:'Owner'"`
	SubscriptionPlan   string     `gorm:"type:varchar(20);not null;default:'weekly'"`
	SubscriptionStatus string     `gorm:"type:varchar(20);not null;default:'trial';index"`
	TrialStartsAt      *time.Time
	TrialEndsAt        *time.Time `gorm:"index"`
	EmailConfirmedAt   *time.Time
	Active             bool       `gorm:"not null"`
	LastLoginAt        *time.Time
}

func (UserModel) TableName() string {
	return "users"
}

func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot:  m.toAggregate(),
		Email:              m.Email,
		Phone:              m.Phone,
		PasswordHash:       m.PasswordHash,
		FullName:           m.FullName,
		BusinessName:       m.BusinessName,
		Role:               identity.Role(m.Role),
		Plan:               billing.PlanTier(m.SubscriptionPlan),
		SubscriptionStatus: identity.SubscriptionStatus(m.SubscriptionStatus),
		TrialStartsAt:      m.TrialStartsAt,
		TrialEndsAt:        m.TrialEndsAt,
		EmailConfirmedAt:   m.EmailConfirmedAt,
		Active:             m.Active,
		LastLoginAt:        m.LastLoginAt,
	}
}

func (m *UserModel) FromDomain(u *identity.User) {
	m.fromAggregate(u.BaseAggregateRoot)
	m.Email = u.Email
	m.Phone = u.Phone
	m.PasswordHash = u.PasswordHash
	m.FullName = u.FullName
	m.BusinessName = u.BusinessName
	m.Role = string(u.Role)
	m.SubscriptionPlan = string(u.Plan)
	m.SubscriptionStatus = string(u.SubscriptionStatus)
	m.TrialStartsAt = u.TrialStartsAt
	m.TrialEndsAt = u.TrialEndsAt
	m.EmailConfirmedAt = u.EmailConfirmedAt
	m.Active = u.Active
	m.LastLoginAt = u.LastLoginAt
}

func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}

// VerificationTokenModel is the persistence model for identity.EmailVerificationToken.
// UserID references users(id); the user row must exist before the token is written.
type VerificationTokenModel struct {
	BaseModel
	UserID    uuid.UUID  `gorm:"type:uuid;not null;index"`
	User      *UserModel `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Token     string     `gorm:"type:varchar(128);not null;uniqueIndex"`
	ExpiresAt time.Time  `gorm:"not null"`
	Used      bool       `gorm:"not null;default:false"`
	UsedAt    *time.Time
}

func (VerificationTokenModel) TableName() string {
	return "email_verification_tokens"
}

func (m *VerificationTokenModel) ToDomain() *identity.EmailVerificationToken {
	return &identity.EmailVerificationToken{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		UserID:     m.UserID,
		Token:      m.Token,
		ExpiresAt:  m.ExpiresAt,
		Used:       m.Used,
		UsedAt:     m.UsedAt,
	}
}

func VerificationTokenModelFromDomain(t *identity.EmailVerificationToken) *VerificationTokenModel {
	m := &VerificationTokenModel{
		UserID:    t.UserID,
		Token:     t.Token,
		ExpiresAt: t.ExpiresAt,
		Used:      t.Used,
		UsedAt:    t.UsedAt,
	}
	m.fromEntity(t.BaseEntity)
	return m
}
