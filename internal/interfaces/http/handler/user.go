package handler

import (
	"context"

	identityapp "github.com/bizhub/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserService is the part of identityapp.UserService the handler uses
type UserService interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, req identityapp.UpdateProfileRequest) (*identityapp.UserResponse, error)
	ChangePlan(ctx context.Context, userID uuid.UUID, req identityapp.ChangePlanRequest) (*identityapp.UserResponse, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
}

// UserHandler handles the signed-in account
type UserHandler struct {
	BaseHandler
	userService UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// UpdateProfile handles PUT /users/me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req identityapp.UpdateProfileRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ChangePlan handles PUT /users/me/plan
func (h *UserHandler) ChangePlan(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req identityapp.ChangePlanRequest
	if !h.bindJSON(c, &req) {
		return
	}
	user, err := h.userService.ChangePlan(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Deactivate handles POST /users/me/deactivate
func (h *UserHandler) Deactivate(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.userService.Deactivate(c.Request.Context(), userID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMessage(c, nil, "Account deactivated")
}
