package client

import (
	"context"
	"fmt"
	"net/http"

	billingapp "github.com/bizhub/backend/internal/application/billing"
	identityapp "github.com/bizhub/backend/internal/application/identity"
	notificationapp "github.com/bizhub/backend/internal/application/notification"
	reportapp "github.com/bizhub/backend/internal/application/report"
	"github.com/bizhub/backend/internal/domain/billing"
	"github.com/bizhub/backend/internal/infrastructure/cache"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	keyProfile     = cache.ClassProfile + "me"
	keyUsage       = cache.ClassUsage + "report"
	keyDashboard   = cache.ClassDashboard + "summary"
	keyPreferences = cache.ClassPreferences + "me"
)

// Registration is the outcome of a sign-up or a resend. Token is only
// returned by servers that do not mail it.
type Registration struct {
	UserID  *uuid.UUID `json:"user_id"`
	Token   string     `json:"token,omitempty"`
	Message string     `json:"-"`
}

// Register signs up a new account. A rejected registration, such as
// "Phone already exists", is a validation error carrying the server message.
func (c *Client) Register(ctx context.Context, req identityapp.RegisterRequest) (*Registration, error) {
	return c.registration(ctx, "/auth/register", req)
}

// ResendVerification issues a fresh verification token
func (c *Client) ResendVerification(ctx context.Context, email string) (*Registration, error) {
	return c.registration(ctx, "/auth/resend-verification", identityapp.ResendVerificationRequest{Email: email})
}

func (c *Client) registration(ctx context.Context, path string, body any) (*Registration, error) {
	var out Registration
	r, err := c.send(ctx, http.MethodPost, path, body, &out)
	if err != nil {
		return nil, err
	}
	out.Message = r.env.Message
	return &out, nil
}

// VerifyEmail consumes a verification token
func (c *Client) VerifyEmail(ctx context.Context, token string) (*identityapp.UserResponse, error) {
	var out identityapp.UserResponse
	if _, err := c.send(ctx, http.MethodPost, "/auth/verify-email", identityapp.VerifyEmailRequest{Token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Login signs in and initialises the session
func (c *Client) Login(ctx context.Context, email, password string) (*identityapp.UserResponse, error) {
	var out identityapp.LoginResponse
	req := identityapp.LoginRequest{Email: email, Password: password}
	if _, err := c.send(ctx, http.MethodPost, "/auth/login", req, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx, "")
	c.session.Init(out.TokenResponse, &out.User)
	return &out.User, nil
}

// Refresh exchanges the session's refresh token for a new pair
func (c *Client) Refresh(ctx context.Context) error {
	refresh := c.session.RefreshToken()
	if refresh == "" {
		return &APIError{Kind: KindUnauthorized, Status: http.StatusUnauthorized, Message: MsgUnauthorized}
	}
	var out identityapp.TokenResponse
	if _, err := c.send(ctx, http.MethodPost, "/auth/refresh", identityapp.RefreshRequest{RefreshToken: refresh}, &out); err != nil {
		return err
	}
	c.session.Init(out, nil)
	return nil
}

// Logout revokes the session's tokens. The local session is reset even
// when the server call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.session.Reset()
	if !c.session.Active() {
		return nil
	}
	body := map[string]string{"refresh_token": c.session.RefreshToken()}
	_, err := c.send(ctx, http.MethodPost, "/auth/logout", body, nil)
	return err
}

// Profile returns the signed-in account
func (c *Client) Profile(ctx context.Context) (*identityapp.UserResponse, error) {
	var out identityapp.UserResponse
	if _, err := c.get(ctx, keyProfile, "/auth/me", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateProfile changes profile fields
func (c *Client) UpdateProfile(ctx context.Context, req identityapp.UpdateProfileRequest) (*identityapp.UserResponse, error) {
	var out identityapp.UserResponse
	if _, err := c.send(ctx, http.MethodPut, "/users/me", req, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx, cache.ClassProfile)
	return &out, nil
}

// ChangePlan moves the account to another plan
func (c *Client) ChangePlan(ctx context.Context, plan string) (*identityapp.UserResponse, error) {
	var out identityapp.UserResponse
	if _, err := c.send(ctx, http.MethodPut, "/users/me/plan", identityapp.ChangePlanRequest{Plan: plan}, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx, cache.ClassProfile, cache.ClassUsage, cache.ClassDashboard)
	return &out, nil
}

// Deactivate closes the account and ends the session
func (c *Client) Deactivate(ctx context.Context) error {
	if _, err := c.send(ctx, http.MethodPost, "/users/me/deactivate", nil, nil); err != nil {
		return err
	}
	c.session.Reset()
	return nil
}

// Usage returns the plan usage report
func (c *Client) Usage(ctx context.Context) (*billingapp.UsageReportResponse, error) {
	var out billingapp.UsageReportResponse
	if _, err := c.get(ctx, keyUsage, "/usage", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CanCreate reports whether one more record of resource fits the plan,
// judged from the cached usage report. It is advisory: the server
// enforces the limit. When usage cannot be read the create is allowed.
func (c *Client) CanCreate(ctx context.Context, resource billing.ResourceType) error {
	report, err := c.Usage(ctx)
	if err != nil {
		c.logger.Debug("Usage unavailable, skipping limit check",
			zap.String("resource", resource.String()),
			zap.Error(err),
		)
		return nil
	}
	for _, item := range report.Resources {
		if item.Resource != resource.String() {
			continue
		}
		if billing.NewResourceUsage(resource, item.Current, item.Limit).CanCreate() {
			return nil
		}
		return &APIError{
			Kind:   KindForbidden,
			Status: http.StatusForbidden,
			Code:   CodeUsageLimitExceeded,
			Message: fmt.Sprintf("You have reached the %s plan limit of %d %s. Upgrade your plan to create more.",
				report.Plan, item.Limit, resource),
		}
	}
	return nil
}

// Dashboard returns the dashboard summary
func (c *Client) Dashboard(ctx context.Context) (*reportapp.SummaryResponse, error) {
	var out reportapp.SummaryResponse
	if _, err := c.get(ctx, keyDashboard, "/dashboard/summary", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Toasts returns the current toast queue. It is never cached: reading
// advances the auto-dismiss timers.
func (c *Client) Toasts(ctx context.Context) (*notificationapp.ToastsResponse, error) {
	var out notificationapp.ToastsResponse
	if _, err := c.send(ctx, http.MethodGet, "/notifications/toasts", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// PushToast enqueues a toast. pushed is false when it duplicated a recent one.
func (c *Client) PushToast(ctx context.Context, req notificationapp.PushToastRequest) (state *notificationapp.ToastsResponse, pushed bool, err error) {
	var out notificationapp.ToastsResponse
	r, err := c.send(ctx, http.MethodPost, "/notifications/toasts", req, &out)
	if err != nil {
		return nil, false, err
	}
	return &out, r.status == http.StatusCreated, nil
}

// DismissToast removes a toast from view
func (c *Client) DismissToast(ctx context.Context, id uuid.UUID) (*notificationapp.ToastResponse, error) {
	var out notificationapp.ToastResponse
	if _, err := c.send(ctx, http.MethodPost, "/notifications/toasts/"+id.String()+"/dismiss", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearToasts dismisses every toast
func (c *Client) ClearToasts(ctx context.Context) error {
	_, err := c.send(ctx, http.MethodDelete, "/notifications/toasts", nil, nil)
	return err
}

// Preferences returns the notification settings
func (c *Client) Preferences(ctx context.Context) (*notificationapp.PreferenceResponse, error) {
	var out notificationapp.PreferenceResponse
	if _, err := c.get(ctx, keyPreferences, "/notifications/preferences", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePreferences changes notification settings
func (c *Client) UpdatePreferences(ctx context.Context, req notificationapp.UpdatePreferenceRequest) (*notificationapp.PreferenceResponse, error) {
	var out notificationapp.PreferenceResponse
	if _, err := c.send(ctx, http.MethodPut, "/notifications/preferences", req, &out); err != nil {
		return nil, err
	}
	c.cache.Invalidate(ctx, cache.ClassPreferences)
	return &out, nil
}
