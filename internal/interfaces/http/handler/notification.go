package handler

import (
	"context"
	"net/http"

	notificationapp "github.com/bizhub/backend/internal/application/notification"
	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/bizhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// NotificationCenter is the part of notificationapp.Center the handler uses
type NotificationCenter interface {
	Push(userID uuid.UUID, in notification.ToastInput) (*notification.Toast, bool, error)
	List(userID uuid.UUID) (*notificationapp.ToastsResponse, error)
	Dismiss(userID, toastID uuid.UUID) (*notificationapp.ToastResponse, error)
	Clear(userID uuid.UUID)
	Preferences(ctx context.Context, userID uuid.UUID) (*notificationapp.PreferenceResponse, error)
	UpdatePreferences(ctx context.Context, userID uuid.UUID, req notificationapp.UpdatePreferenceRequest) (*notificationapp.PreferenceResponse, error)
}

// NotificationHandler serves the toast queue and notification settings
type NotificationHandler struct {
	BaseHandler
	center NotificationCenter
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(center NotificationCenter) *NotificationHandler {
	return &NotificationHandler{center: center}
}

// ListToasts handles GET /notifications/toasts. Reading advances the
// auto-dismiss timers.
func (h *NotificationHandler) ListToasts(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	toasts, err := h.center.List(userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toasts)
}

// PushToast handles POST /notifications/toasts. A duplicate of a recent
// toast is accepted with 200 and not enqueued.
func (h *NotificationHandler) PushToast(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req notificationapp.PushToastRequest
	if !h.bindJSON(c, &req) {
		return
	}
	_, pushed, err := h.center.Push(userID, req.Input())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	toasts, err := h.center.List(userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !pushed {
		h.SuccessWithMessage(c, toasts, "Duplicate notification suppressed")
		return
	}
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(toasts))
}

// DismissToast handles POST /notifications/toasts/:id/dismiss
func (h *NotificationHandler) DismissToast(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	toast, err := h.center.Dismiss(userID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, toast)
}

// ClearToasts handles DELETE /notifications/toasts
func (h *NotificationHandler) ClearToasts(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	h.center.Clear(userID)
	h.SuccessWithMessage(c, nil, "Notifications cleared")
}

// GetPreferences handles GET /notifications/preferences
func (h *NotificationHandler) GetPreferences(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	prefs, err := h.center.Preferences(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}

// UpdatePreferences handles PUT /notifications/preferences
func (h *NotificationHandler) UpdatePreferences(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req notificationapp.UpdatePreferenceRequest
	if !h.bindJSON(c, &req) {
		return
	}
	prefs, err := h.center.UpdatePreferences(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, prefs)
}
