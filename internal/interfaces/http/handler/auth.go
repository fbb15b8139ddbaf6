package handler

import (
	"context"
	"net/http"
	"time"

	identityapp "github.com/bizhub/backend/internal/application/identity"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/interfaces/http/dto"
	"github.com/bizhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AuthService is the part of identityapp.AuthService the handler uses
type AuthService interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identity.RegistrationResult, error)
	ResendVerification(ctx context.Context, req identityapp.ResendVerificationRequest) (*identity.RegistrationResult, error)
	VerifyEmail(ctx context.Context, req identityapp.VerifyEmailRequest) (*identityapp.UserResponse, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResponse, error)
	Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error)
	Logout(ctx context.Context, in identityapp.LogoutInput) error
}

// ProfileReader loads the signed-in account
type ProfileReader interface {
	Me(ctx context.Context, userID uuid.UUID) (*identityapp.UserResponse, error)
}

// AuthHandler handles registration and session endpoints
type AuthHandler struct {
	BaseHandler
	authService AuthService
	users       ProfileReader
	// exposeToken returns the verification token in the register
	// response; only outside production where no mail is sent
	exposeToken bool
	now         func() time.Time
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService AuthService, users ProfileReader, exposeToken bool) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		users:       users,
		exposeToken: exposeToken,
		now:         time.Now,
	}
}

// RegistrationData is the body of a successful registration response
type RegistrationData struct {
	UserID *uuid.UUID `json:"user_id"`
	Token  string     `json:"token,omitempty"`
}

// LogoutRequest optionally carries the refresh token to revoke
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.registrationResult(c, result, http.StatusCreated)
}

// ResendVerification handles POST /auth/resend-verification
func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req identityapp.ResendVerificationRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.authService.ResendVerification(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.registrationResult(c, result, http.StatusOK)
}

func (h *AuthHandler) registrationResult(c *gin.Context, result *identity.RegistrationResult, status int) {
	if !result.Success {
		h.Error(c, http.StatusConflict, dto.ErrCodeRegistrationRejected, result.Error)
		return
	}
	data := RegistrationData{UserID: result.UserID}
	if h.exposeToken {
		data.Token = result.Token
	}
	c.JSON(status, dto.NewSuccessResponseWithMessage(data, result.Message))
}

// VerifyEmail handles POST /auth/verify-email
func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req identityapp.VerifyEmailRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.authService.VerifyEmail(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, user, "Email confirmed")
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Refresh handles POST /auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req identityapp.RefreshRequest
	if !h.bindJSON(c, &req) {
		return
	}
	pair, err := h.authService.Refresh(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, pair)
}

// Logout handles POST /auth/logout. The body is optional.
func (h *AuthHandler) Logout(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !h.bindJSON(c, &req) {
		return
	}

	in := identityapp.LogoutInput{
		UserID:         userID,
		AccessTokenTTL: middleware.AccessTokenTTL(c, h.now()),
		RefreshToken:   req.RefreshToken,
	}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		in.AccessTokenJTI = claims.ID
	}
	if err := h.authService.Logout(c.Request.Context(), in); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, nil, "Logged out")
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	user, err := h.users.Me(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}
