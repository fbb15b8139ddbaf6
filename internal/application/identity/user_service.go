package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/infrastructure/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UserService manages the signed-in account
type UserService struct {
	userRepo       identity.UserRepository
	blacklist      auth.TokenBlacklist
	revokeFor      time.Duration
	sessions       SessionHooks
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewUserService creates a new UserService. revokeFor should cover the
// refresh token lifetime so deactivation outlives every issued token.
func NewUserService(
	userRepo identity.UserRepository,
	blacklist auth.TokenBlacklist,
	revokeFor time.Duration,
	sessions SessionHooks,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *UserService {
	if sessions == nil {
		sessions = noopSessionHooks{}
	}
	return &UserService{
		userRepo:       userRepo,
		blacklist:      blacklist,
		revokeFor:      revokeFor,
		sessions:       sessions,
		eventPublisher: eventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Me returns the account
func (s *UserService) Me(ctx context.Context, userID uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := ToUserResponse(user, s.now())
	return &resp, nil
}

// UpdateProfile changes name, business name or phone
func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, req UpdateProfileRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.UpdateProfile(req.FullName, req.BusinessName, req.Phone); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	resp := ToUserResponse(user, s.now())
	return &resp, nil
}

// ChangePlan moves the account to another plan and activates it
func (s *UserService) ChangePlan(ctx context.Context, userID uuid.UUID, req ChangePlanRequest) (*UserResponse, error) {
	plan, err := billing.ParsePlanTier(req.Plan)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.ChangePlan(plan); err != nil {
		return nil, err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}
	s.publish(ctx, user)

	s.logger.Info("Plan changed",
		zap.String("user_id", userID.String()),
		zap.String("plan", plan.String()))
	resp := ToUserResponse(user, s.now())
	return &resp, nil
}

// Deactivate disables the account and revokes every token issued to it
func (s *UserService) Deactivate(ctx context.Context, userID uuid.UUID) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := user.Deactivate(); err != nil {
		return err
	}
	if err := s.userRepo.Save(ctx, user); err != nil {
		return err
	}
	if s.blacklist != nil {
		if err := s.blacklist.RevokeUser(ctx, userID.String(), s.revokeFor); err != nil {
			s.logger.Error("Failed to revoke tokens of deactivated user",
				zap.String("user_id", userID.String()),
				zap.Error(err))
		}
	}
	s.sessions.Reset(userID)
	s.publish(ctx, user)

	s.logger.Info("User deactivated", zap.String("user_id", userID.String()))
	return nil
}

// ExpireTrials moves every lapsed trial to expired. It returns how many
// accounts changed.
func (s *UserService) ExpireTrials(ctx context.Context) (int, error) {
	now := s.now()
	users, err := s.userRepo.FindLapsedTrials(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("find lapsed trials: %w", err)
	}
	expired := 0
	for _, u := range users {
		if !u.ExpireTrial(now) {
			continue
		}
		if err := s.userRepo.Save(ctx, u); err != nil {
			s.logger.Error("Failed to expire trial",
				zap.String("user_id", u.ID.String()),
				zap.Error(err))
			continue
		}
		expired++
	}
	return expired, nil
}

func (s *UserService) publish(ctx context.Context, user *identity.User) {
	events := user.GetDomainEvents()
	user.ClearDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish user events", zap.Error(err))
	}
}
