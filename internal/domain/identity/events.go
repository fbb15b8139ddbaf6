package identity

import (
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const AggregateTypeUser = "User"

const (
	EventTypeUserRegistered          = "UserRegistered"
	EventTypeVerificationTokenIssued = "VerificationTokenIssued"
	EventTypeEmailConfirmed          = "EmailConfirmed"
	EventTypePlanChanged             = "PlanChanged"
	EventTypeUserDeactivated         = "UserDeactivated"
)

// UserRegisteredEvent is published once per newly created account
type UserRegisteredEvent struct {
	shared.BaseDomainEvent
	Email        string `json:"email"`
	BusinessName string `json:"business_name"`
}

func NewUserRegisteredEvent(userID uuid.UUID, email, businessName string) *UserRegisteredEvent {
	return &UserRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserRegistered, AggregateTypeUser, userID, userID),
		Email:           email,
		BusinessName:    businessName,
	}
}

// VerificationTokenIssuedEvent carries what the mailer needs to send the
// verification link
type VerificationTokenIssuedEvent struct {
	shared.BaseDomainEvent
	Email     string    `json:"email"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewVerificationTokenIssuedEvent(userID uuid.UUID, email, token string, expiresAt time.Time) *VerificationTokenIssuedEvent {
	return &VerificationTokenIssuedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeVerificationTokenIssued, AggregateTypeUser, userID, userID),
		Email:           email,
		Token:           token,
		ExpiresAt:       expiresAt,
	}
}

type EmailConfirmedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

func NewEmailConfirmedEvent(u *User) *EmailConfirmedEvent {
	return &EmailConfirmedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeEmailConfirmed, AggregateTypeUser, u.ID, u.ID),
		Email:           u.Email,
	}
}

type PlanChangedEvent struct {
	shared.BaseDomainEvent
	From billing.PlanTier `json:"from"`
	To   billing.PlanTier `json:"to"`
}

func NewPlanChangedEvent(u *User, from billing.PlanTier) *PlanChangedEvent {
	return &PlanChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlanChanged, AggregateTypeUser, u.ID, u.ID),
		From:            from,
		To:              u.Plan,
	}
}

type UserDeactivatedEvent struct {
	shared.BaseDomainEvent
}

func NewUserDeactivatedEvent(u *User) *UserDeactivatedEvent {
	return &UserDeactivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserDeactivated, AggregateTypeUser, u.ID, u.ID),
	}
}
