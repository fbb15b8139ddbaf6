package billing

import (
	"context"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Counter counts the records one account owns of a resource
type Counter interface {
	Count(ctx context.Context, ownerID uuid.UUID) (int64, error)
}

// Counters maps each counted resource to its repository
type Counters map[billing.ResourceType]Counter

// UsageService evaluates plan usage and gates creates against plan limits
type UsageService struct {
	userRepo       identity.UserRepository
	counters       Counters
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewUsageService creates a new UsageService
func NewUsageService(
	userRepo identity.UserRepository,
	counters Counters,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *UsageService {
	return &UsageService{
		userRepo:       userRepo,
		counters:       counters,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Report returns the usage of every counted resource under the account's
// effective plan
func (s *UsageService) Report(ctx context.Context, userID uuid.UUID) (*UsageReportResponse, error) {
	plan, err := s.effectivePlan(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts := make(map[billing.ResourceType]int64, len(s.counters))
	for _, resource := range billing.AllResources() {
		n, err := s.count(ctx, userID, resource)
		if err != nil {
			return nil, err
		}
		counts[resource] = n
	}
	report := billing.NewUsageReport(plan, counts)
	return ToUsageReportResponse(report), nil
}

// Check returns the usage of one resource
func (s *UsageService) Check(ctx context.Context, userID uuid.UUID, resource string) (*ResourceUsageResponse, error) {
	r, err := billing.ParseResourceType(resource)
	if err != nil {
		return nil, err
	}
	plan, usage, err := s.usage(ctx, userID, r)
	if err != nil {
		return nil, err
	}
	return ToResourceUsageResponse(plan, usage), nil
}

// EnsureCanCreate fails with ErrUsageLimitExceeded when the account has
// reached its plan's ceiling for resource
func (s *UsageService) EnsureCanCreate(ctx context.Context, userID uuid.UUID, resource billing.ResourceType) error {
	plan, usage, err := s.usage(ctx, userID, resource)
	if err != nil {
		return err
	}
	if usage.CanCreate() {
		return nil
	}
	return shared.NewDomainError(shared.ErrUsageLimitExceeded.Code, fmt.Sprintf(
		"You have reached the %s plan limit of %d %s. Upgrade your plan to continue",
		plan, usage.Limit, resource))
}

// RecordCreated re-evaluates a resource after a create and publishes a
// UsageThresholdReached event when the create moved it into a more severe
// status at warning or above. Failures are logged and never fail the create.
func (s *UsageService) RecordCreated(ctx context.Context, userID uuid.UUID, resource billing.ResourceType) {
	plan, usage, err := s.usage(ctx, userID, resource)
	if err != nil {
		s.logger.Warn("Failed to evaluate usage after create",
			zap.String("user_id", userID.String()),
			zap.String("resource", resource.String()),
			zap.Error(err))
		return
	}
	previous := billing.Status(usage.Current-1, usage.Limit)
	if !usage.Status.NeedsAttention() || usage.Status.Severity() <= previous.Severity() {
		return
	}
	if s.eventPublisher == nil {
		return
	}
	event := billing.NewUsageThresholdReachedEvent(userID, plan, usage, previous)
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish usage threshold event",
			zap.String("user_id", userID.String()),
			zap.Error(err))
	}
}

func (s *UsageService) usage(ctx context.Context, userID uuid.UUID, resource billing.ResourceType) (billing.PlanTier, billing.ResourceUsage, error) {
	plan, err := s.effectivePlan(ctx, userID)
	if err != nil {
		return "", billing.ResourceUsage{}, err
	}
	n, err := s.count(ctx, userID, resource)
	if err != nil {
		return "", billing.ResourceUsage{}, err
	}
	return plan, billing.NewResourceUsage(resource, n, billing.LimitsFor(plan).Limit(resource)), nil
}

func (s *UsageService) effectivePlan(ctx context.Context, userID uuid.UUID) (billing.PlanTier, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.EffectivePlan(s.now()), nil
}

func (s *UsageService) count(ctx context.Context, userID uuid.UUID, resource billing.ResourceType) (int64, error) {
	counter, ok := s.counters[resource]
	if !ok {
		return 0, nil
	}
	n, err := counter.Count(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", resource, err)
	}
	return n, nil
}
