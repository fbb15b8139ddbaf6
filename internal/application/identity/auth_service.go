package identity

import (
	"context"
	"errors"
	"time"

	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

var errInvalidCredentials = shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")

// AuthService handles registration, email verification and sessions
type AuthService struct {
	userRepo       identity.UserRepository
	tokenRepo      identity.VerificationTokenRepository
	registration   identity.RegistrationStore
	jwtService     *auth.JWTService
	blacklist      auth.TokenBlacklist
	sessions       SessionHooks
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// AuthServiceDeps groups the AuthService collaborators
type AuthServiceDeps struct {
	UserRepo       identity.UserRepository
	TokenRepo      identity.VerificationTokenRepository
	Registration   identity.RegistrationStore
	JWTService     *auth.JWTService
	Blacklist      auth.TokenBlacklist
	Sessions       SessionHooks
	EventPublisher shared.EventPublisher
}

// NewAuthService creates a new authentication service
func NewAuthService(deps AuthServiceDeps, logger *zap.Logger) *AuthService {
	sessions := deps.Sessions
	if sessions == nil {
		sessions = noopSessionHooks{}
	}
	return &AuthService{
		userRepo:       deps.UserRepo,
		tokenRepo:      deps.TokenRepo,
		registration:   deps.Registration,
		jwtService:     deps.JWTService,
		blacklist:      deps.Blacklist,
		sessions:       sessions,
		eventPublisher: deps.EventPublisher,
		logger:         logger,
		now:            time.Now,
	}
}

// Register hashes the password and runs the registration transaction.
// Business rejections come back as a result with Success false.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*identity.RegistrationResult, error) {
	hash, err := identity.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	in := identity.RegistrationInput{
		Email:              req.Email,
		Phone:              req.Phone,
		PasswordHash:       hash,
		FullName:           req.FullName,
		BusinessName:       req.BusinessName,
		Role:               identity.Role(req.Role),
		SubscriptionPlan:   billing.PlanTier(req.SubscriptionPlan),
		SubscriptionStatus: identity.SubscriptionStatus(req.SubscriptionStatus),
	}

	result, err := s.registration.Register(ctx, in, s.now())
	if err != nil {
		s.logger.Error("Registration failed", zap.Error(err))
		return nil, err
	}
	if !result.Success {
		s.logger.Info("Registration rejected", zap.String("reason", result.Error))
		return result, nil
	}

	s.logger.Info("Verification token issued",
		zap.String("user_id", result.UserID.String()),
		zap.Bool("created", result.Created))
	s.publishIssued(ctx, result, req.BusinessName)
	return result, nil
}

// ResendVerification issues a new token to a pending account
func (s *AuthService) ResendVerification(ctx context.Context, req ResendVerificationRequest) (*identity.RegistrationResult, error) {
	result, err := s.registration.Reissue(ctx, req.Email, s.now())
	if err != nil {
		return nil, err
	}
	if result.Success {
		s.publishIssued(ctx, result, "")
	}
	return result, nil
}

func (s *AuthService) publishIssued(ctx context.Context, result *identity.RegistrationResult, businessName string) {
	events := []shared.DomainEvent{
		identity.NewVerificationTokenIssuedEvent(*result.UserID, result.Email, result.Token, result.ExpiresAt),
	}
	if result.Created {
		events = append(events, identity.NewUserRegisteredEvent(*result.UserID, result.Email, businessName))
	}
	s.publish(ctx, events)
}

// VerifyEmail consumes a verification token and confirms the account
func (s *AuthService) VerifyEmail(ctx context.Context, req VerifyEmailRequest) (*UserResponse, error) {
	user, err := s.registration.ConfirmEmail(ctx, req.Token, s.now())
	if err != nil {
		return nil, err
	}
	s.publish(ctx, user.GetDomainEvents())
	user.ClearDomainEvents()

	s.logger.Info("Email confirmed", zap.String("user_id", user.ID.String()))
	resp := ToUserResponse(user, s.now())
	return &resp, nil
}

// Login authenticates with email and password and opens a session
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	email, err := identity.NormalizeEmail(req.Email)
	if err != nil {
		return nil, errInvalidCredentials
	}
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("Login for unknown email")
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("Invalid password attempt", zap.String("user_id", user.ID.String()))
		return nil, errInvalidCredentials
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}

	user.RecordLogin(s.now())
	if err := s.userRepo.Save(ctx, user); err != nil {
		// the session is valid even if the timestamp is lost
		s.logger.Error("Failed to record login", zap.String("user_id", user.ID.String()), zap.Error(err))
	}
	if err := s.sessions.Init(user.ID); err != nil {
		s.logger.Warn("Failed to open notification session", zap.Error(err))
	}

	s.logger.Info("User logged in", zap.String("user_id", user.ID.String()))
	return &LoginResponse{TokenResponse: *pair, User: ToUserResponse(user, s.now())}, nil
}

// Refresh rotates a refresh token. The presented token is revoked.
func (s *AuthService) Refresh(ctx context.Context, req RefreshRequest) (*TokenResponse, error) {
	claims, err := s.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		s.logger.Warn("Refresh token validation failed", zap.Error(err))
		if errors.Is(err, auth.ErrExpiredToken) {
			return nil, shared.NewDomainError("TOKEN_EXPIRED", "Refresh token has expired")
		}
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
	}
	if err := s.checkRevoked(ctx, claims); err != nil {
		return nil, err
	}

	userID, err := claims.GetUserUUID()
	if err != nil {
		return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid user ID in token")
	}
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("TOKEN_INVALID", "Invalid refresh token")
		}
		return nil, err
	}
	if err := user.CanLogin(); err != nil {
		return nil, err
	}

	pair, err := s.issue(user)
	if err != nil {
		return nil, err
	}
	s.revoke(ctx, claims.ID, claims.RemainingTTL(s.now()))
	return pair, nil
}

// Logout revokes the presented tokens and closes the notification session
func (s *AuthService) Logout(ctx context.Context, in LogoutInput) error {
	if in.AccessTokenJTI != "" {
		s.revoke(ctx, in.AccessTokenJTI, in.AccessTokenTTL)
	}
	if in.RefreshToken != "" {
		if claims, err := s.jwtService.ValidateRefreshToken(in.RefreshToken); err == nil {
			s.revoke(ctx, claims.ID, claims.RemainingTTL(s.now()))
		}
	}
	s.sessions.Reset(in.UserID)
	s.logger.Info("User logged out", zap.String("user_id", in.UserID.String()))
	return nil
}

// PurgeVerificationTokens deletes tokens used or expired more than
// retention ago
func (s *AuthService) PurgeVerificationTokens(ctx context.Context, retention time.Duration) (int64, error) {
	return s.tokenRepo.DeleteStale(ctx, s.now().Add(-retention))
}

func (s *AuthService) issue(user *identity.User) (*TokenResponse, error) {
	pair, err := s.jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.logger.Error("Failed to generate token pair", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication tokens")
	}
	return &TokenResponse{
		AccessToken:           pair.AccessToken,
		RefreshToken:          pair.RefreshToken,
		AccessTokenExpiresAt:  pair.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: pair.RefreshTokenExpiresAt,
		TokenType:             pair.TokenType,
	}, nil
}

func (s *AuthService) checkRevoked(ctx context.Context, claims *auth.Claims) error {
	if s.blacklist == nil {
		return nil
	}
	revoked, err := s.blacklist.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return err
	}
	if !revoked {
		revoked, err = s.blacklist.IsUserRevoked(ctx, claims.UserID, claims.GetIssuedAtTime())
		if err != nil {
			return err
		}
	}
	if revoked {
		return shared.NewDomainError("TOKEN_REVOKED", "Token has been revoked")
	}
	return nil
}

func (s *AuthService) revoke(ctx context.Context, jti string, ttl time.Duration) {
	if s.blacklist == nil || ttl <= 0 {
		return
	}
	if err := s.blacklist.RevokeToken(ctx, jti, ttl); err != nil {
		s.logger.Warn("Failed to revoke token", zap.Error(err))
	}
}

func (s *AuthService) publish(ctx context.Context, events []shared.DomainEvent) {
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("Failed to publish identity events", zap.Error(err))
	}
}
