package billing

import (
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
)

const (
	AggregateTypeUsage             = "Usage"
	EventTypeUsageThresholdReached = "UsageThresholdReached"
)

// UsageThresholdReachedEvent is published when a create moves a resource
// into a more severe usage status
type UsageThresholdReachedEvent struct {
	shared.BaseDomainEvent
	Plan     PlanTier      `json:"plan"`
	Usage    ResourceUsage `json:"usage"`
	Previous UsageStatus   `json:"previous"`
}

func NewUsageThresholdReachedEvent(userID uuid.UUID, plan PlanTier, usage ResourceUsage, previous UsageStatus) *UsageThresholdReachedEvent {
	return &UsageThresholdReachedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUsageThresholdReached, AggregateTypeUsage, userID, userID),
		Plan:            plan,
		Usage:           usage,
		Previous:        previous,
	}
}
