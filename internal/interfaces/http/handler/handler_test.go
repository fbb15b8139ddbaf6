package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	identityapp "github.com/bizhub/backend/internal/application/identity"
	notificationapp "github.com/bizhub/backend/internal/application/notification"
	partnerapp "github.com/bizhub/backend/internal/application/partner"
	"github.com/bizhub/backend/internal/domain/identity"
	"github.com/bizhub/backend/internal/domain/notification"
	"github.com/bizhub/backend/internal/domain/shared"
	"github.com/bizhub/backend/internal/infrastructure/auth"
	"github.com/bizhub/backend/internal/infrastructure/config"
	"github.com/bizhub/backend/internal/interfaces/http/dto"
	"github.com/bizhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func jsonBody(t *testing.T, v any) *bytes.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

// testAuth issues real tokens so handlers run behind the JWT middleware
type testAuth struct {
	svc    *auth.JWTService
	userID uuid.UUID
	token  string
}

func newTestAuth(t *testing.T) testAuth {
	t.Helper()
	svc := auth.NewJWTService(config.JWTConfig{
		Secret:                 "handler-test-secret-with-32-chars!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: time.Hour,
	})
	userID := uuid.New()
	pair, err := svc.GenerateTokenPair(auth.GenerateTokenInput{UserID: userID, Email: "ada@shop.ng", Role: "Owner"})
	require.NoError(t, err)
	return testAuth{svc: svc, userID: userID, token: pair.AccessToken}
}

func (a testAuth) engine() *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID())
	return r
}

func (a testAuth) required() gin.HandlerFunc {
	return middleware.JWTAuth(middleware.JWTConfig{JWTService: a.svc})
}

func (a testAuth) do(r *gin.Engine, method, path string, body *bytes.Reader) *httptest.ResponseRecorder {
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, path, body)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Authorization", middleware.BearerPrefix+a.token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// --- auth ---

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, req identityapp.RegisterRequest) (*identity.RegistrationResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*identity.RegistrationResult)
	return res, args.Error(1)
}

func (m *mockAuthService) ResendVerification(ctx context.Context, req identityapp.ResendVerificationRequest) (*identity.RegistrationResult, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*identity.RegistrationResult)
	return res, args.Error(1)
}

func (m *mockAuthService) VerifyEmail(ctx context.Context, req identityapp.VerifyEmailRequest) (*identityapp.UserResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*identityapp.UserResponse)
	return res, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*identityapp.LoginResponse)
	return res, args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, req identityapp.RefreshRequest) (*identityapp.TokenResponse, error) {
	args := m.Called(ctx, req)
	res, _ := args.Get(0).(*identityapp.TokenResponse)
	return res, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, in identityapp.LogoutInput) error {
	return m.Called(ctx, in).Error(0)
}

func validRegistration() identityapp.RegisterRequest {
	return identityapp.RegisterRequest{
		Email:        "a@b.com",
		Phone:        "+2348000000001",
		Password:     "correct-horse",
		FullName:     "Ada Obi",
		BusinessName: "Ada Stores",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	userID := uuid.New()
	success := &identity.RegistrationResult{
		Success: true,
		UserID:  &userID,
		Token:   "tok-123",
		Message: "Verification email sent",
	}

	t.Run("exposes token outside production", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("Register", mock.Anything, validRegistration()).Return(success, nil)
		h := NewAuthHandler(svc, nil, true)
		r := gin.New()
		r.POST("/register", h.Register)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", jsonBody(t, validRegistration())))

		require.Equal(t, http.StatusCreated, w.Code)
		env := decode(t, w)
		assert.True(t, env.Success)
		assert.Equal(t, "Verification email sent", env.Message)
		var data RegistrationData
		require.NoError(t, json.Unmarshal(env.Data, &data))
		assert.Equal(t, userID, *data.UserID)
		assert.Equal(t, "tok-123", data.Token)
	})

	t.Run("hides token in production", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("Register", mock.Anything, mock.Anything).Return(success, nil)
		h := NewAuthHandler(svc, nil, false)
		r := gin.New()
		r.POST("/register", h.Register)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", jsonBody(t, validRegistration())))

		require.Equal(t, http.StatusCreated, w.Code)
		assert.NotContains(t, w.Body.String(), "tok-123")
	})

	t.Run("business rejection is a conflict", func(t *testing.T) {
		svc := new(mockAuthService)
		svc.On("Register", mock.Anything, mock.Anything).Return(identity.RegistrationFailed("Phone already exists"), nil)
		h := NewAuthHandler(svc, nil, true)
		r := gin.New()
		r.POST("/register", h.Register)

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", jsonBody(t, validRegistration())))

		require.Equal(t, http.StatusConflict, w.Code)
		env := decode(t, w)
		assert.False(t, env.Success)
		assert.Equal(t, dto.ErrCodeRegistrationRejected, env.Error.Code)
		assert.Equal(t, "Phone already exists", env.Error.Message)
	})

	t.Run("invalid payload never reaches the service", func(t *testing.T) {
		svc := new(mockAuthService)
		h := NewAuthHandler(svc, nil, true)
		r := gin.New()
		r.POST("/register", h.Register)

		req := validRegistration()
		req.Password = "short"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/register", jsonBody(t, req)))

		require.Equal(t, http.StatusBadRequest, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, env.Error.Code)
		assert.Equal(t, "password", env.Error.Details[0].Field)
		svc.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	svc := new(mockAuthService)
	svc.On("Login", mock.Anything, mock.Anything).
		Return(nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password"))
	h := NewAuthHandler(svc, nil, false)
	r := gin.New()
	r.POST("/login", h.Login)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login",
		jsonBody(t, identityapp.LoginRequest{Email: "a@b.com", Password: "wrong-password"})))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidCredentials, decode(t, w).Error.Code)
}

func TestAuthHandler_Logout(t *testing.T) {
	a := newTestAuth(t)
	claims, err := a.svc.ValidateAccessToken(a.token)
	require.NoError(t, err)

	svc := new(mockAuthService)
	svc.On("Logout", mock.Anything, mock.MatchedBy(func(in identityapp.LogoutInput) bool {
		return in.UserID == a.userID &&
			in.AccessTokenJTI == claims.ID &&
			in.AccessTokenTTL > 0 &&
			in.RefreshToken == "refresh-1"
	})).Return(nil)
	h := NewAuthHandler(svc, nil, false)
	r := a.engine()
	r.POST("/logout", a.required(), h.Logout)

	w := a.do(r, http.MethodPost, "/logout", jsonBody(t, LogoutRequest{RefreshToken: "refresh-1"}))

	assert.Equal(t, http.StatusOK, w.Code)
	svc.AssertExpectations(t)
}

// --- customers ---

type mockCustomerService struct {
	mock.Mock
}

func (m *mockCustomerService) Create(ctx context.Context, userID uuid.UUID, req partnerapp.CreateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, userID, req)
	res, _ := args.Get(0).(*partnerapp.CustomerResponse)
	return res, args.Error(1)
}

func (m *mockCustomerService) GetByID(ctx context.Context, userID, customerID uuid.UUID) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, userID, customerID)
	res, _ := args.Get(0).(*partnerapp.CustomerResponse)
	return res, args.Error(1)
}

func (m *mockCustomerService) List(ctx context.Context, userID uuid.UUID, filter partnerapp.CustomerListFilter) ([]partnerapp.CustomerResponse, int64, error) {
	args := m.Called(ctx, userID, filter)
	res, _ := args.Get(0).([]partnerapp.CustomerResponse)
	return res, args.Get(1).(int64), args.Error(2)
}

func (m *mockCustomerService) Update(ctx context.Context, userID, customerID uuid.UUID, req partnerapp.UpdateCustomerRequest) (*partnerapp.CustomerResponse, error) {
	args := m.Called(ctx, userID, customerID, req)
	res, _ := args.Get(0).(*partnerapp.CustomerResponse)
	return res, args.Error(1)
}

func (m *mockCustomerService) Delete(ctx context.Context, userID, customerID uuid.UUID) error {
	return m.Called(ctx, userID, customerID).Error(0)
}

func customerRoutes(a testAuth, svc CustomerService) *gin.Engine {
	h := NewCustomerHandler(svc)
	r := a.engine()
	g := r.Group("/customers", a.required())
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.GetByID)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	return r
}

func TestCustomerHandler_Create(t *testing.T) {
	a := newTestAuth(t)
	svc := new(mockCustomerService)
	req := partnerapp.CreateCustomerRequest{Name: "Chinedu", Email: "chinedu@mail.ng"}
	created := &partnerapp.CustomerResponse{ID: uuid.New(), Name: "Chinedu", Email: "chinedu@mail.ng"}
	svc.On("Create", mock.Anything, a.userID, req).Return(created, nil)

	w := a.do(customerRoutes(a, svc), http.MethodPost, "/customers", jsonBody(t, req))

	require.Equal(t, http.StatusCreated, w.Code)
	var got partnerapp.CustomerResponse
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &got))
	assert.Equal(t, created.ID, got.ID)
}

func TestCustomerHandler_List(t *testing.T) {
	a := newTestAuth(t)
	svc := new(mockCustomerService)
	filter := partnerapp.CustomerListFilter{Search: "ada", Page: 2, PageSize: 10}
	svc.On("List", mock.Anything, a.userID, filter).
		Return([]partnerapp.CustomerResponse{{ID: uuid.New(), Name: "Ada"}}, int64(25), nil)

	w := a.do(customerRoutes(a, svc), http.MethodGet, "/customers?search=ada&page=2&page_size=10", nil)

	require.Equal(t, http.StatusOK, w.Code)
	env := decode(t, w)
	require.NotNil(t, env.Meta)
	assert.Equal(t, dto.Meta{Total: 25, Page: 2, PageSize: 10, TotalPages: 3}, *env.Meta)
}

func TestCustomerHandler_Errors(t *testing.T) {
	a := newTestAuth(t)

	t.Run("bad id", func(t *testing.T) {
		svc := new(mockCustomerService)
		w := a.do(customerRoutes(a, svc), http.MethodGet, "/customers/not-a-uuid", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, dto.ErrCodeValidation, decode(t, w).Error.Code)
	})

	t.Run("not found", func(t *testing.T) {
		svc := new(mockCustomerService)
		id := uuid.New()
		svc.On("GetByID", mock.Anything, a.userID, id).Return(nil, shared.ErrNotFound)
		w := a.do(customerRoutes(a, svc), http.MethodGet, "/customers/"+id.String(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)
	})

	t.Run("unexpected error is hidden", func(t *testing.T) {
		svc := new(mockCustomerService)
		id := uuid.New()
		svc.On("Delete", mock.Anything, a.userID, id).Return(errors.New("pq: connection reset"))
		w := a.do(customerRoutes(a, svc), http.MethodDelete, "/customers/"+id.String(), nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeInternal, env.Error.Code)
		assert.NotContains(t, env.Error.Message, "pq")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		svc := new(mockCustomerService)
		w := httptest.NewRecorder()
		customerRoutes(a, svc).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/customers", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

// --- notifications ---

type mockCenter struct {
	mock.Mock
}

func (m *mockCenter) Push(userID uuid.UUID, in notification.ToastInput) (*notification.Toast, bool, error) {
	args := m.Called(userID, in)
	res, _ := args.Get(0).(*notification.Toast)
	return res, args.Bool(1), args.Error(2)
}

func (m *mockCenter) List(userID uuid.UUID) (*notificationapp.ToastsResponse, error) {
	args := m.Called(userID)
	res, _ := args.Get(0).(*notificationapp.ToastsResponse)
	return res, args.Error(1)
}

func (m *mockCenter) Dismiss(userID, toastID uuid.UUID) (*notificationapp.ToastResponse, error) {
	args := m.Called(userID, toastID)
	res, _ := args.Get(0).(*notificationapp.ToastResponse)
	return res, args.Error(1)
}

func (m *mockCenter) Clear(userID uuid.UUID) {
	m.Called(userID)
}

func (m *mockCenter) Preferences(ctx context.Context, userID uuid.UUID) (*notificationapp.PreferenceResponse, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*notificationapp.PreferenceResponse)
	return res, args.Error(1)
}

func (m *mockCenter) UpdatePreferences(ctx context.Context, userID uuid.UUID, req notificationapp.UpdatePreferenceRequest) (*notificationapp.PreferenceResponse, error) {
	args := m.Called(ctx, userID, req)
	res, _ := args.Get(0).(*notificationapp.PreferenceResponse)
	return res, args.Error(1)
}

func TestNotificationHandler_PushToast(t *testing.T) {
	a := newTestAuth(t)
	state := &notificationapp.ToastsResponse{MaxVisible: 4}
	req := notificationapp.PushToastRequest{Type: "success", Message: "Saved"}

	for _, tc := range []struct {
		name   string
		pushed bool
		status int
	}{
		{"new toast", true, http.StatusCreated},
		{"duplicate", false, http.StatusOK},
	} {
		t.Run(tc.name, func(t *testing.T) {
			center := new(mockCenter)
			center.On("Push", a.userID, req.Input()).Return(nil, tc.pushed, nil)
			center.On("List", a.userID).Return(state, nil)
			h := NewNotificationHandler(center)
			r := a.engine()
			r.POST("/toasts", a.required(), h.PushToast)

			w := a.do(r, http.MethodPost, "/toasts", jsonBody(t, req))
			assert.Equal(t, tc.status, w.Code)
			assert.True(t, decode(t, w).Success)
		})
	}
}

func TestNotificationHandler_DismissUnknownToast(t *testing.T) {
	a := newTestAuth(t)
	id := uuid.New()
	center := new(mockCenter)
	center.On("Dismiss", a.userID, id).Return(nil, notificationapp.ErrToastNotFound)
	h := NewNotificationHandler(center)
	r := a.engine()
	r.POST("/toasts/:id/dismiss", a.required(), h.DismissToast)

	w := a.do(r, http.MethodPost, "/toasts/"+id.String()+"/dismiss", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- system ---

func TestSystemHandler_Health(t *testing.T) {
	t.Run("all checks pass", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
		})
		r := gin.New()
		r.GET("/health", h.Health)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		var resp HealthResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &resp))
		assert.Equal(t, "ok", resp.Status)
		assert.Equal(t, "ok", resp.Checks["database"])
	})

	t.Run("failing check", func(t *testing.T) {
		h := NewSystemHandler("1.0.0", map[string]HealthCheck{
			"database": func(context.Context) error { return nil },
			"redis":    func(context.Context) error { return errors.New("connection refused") },
		})
		r := gin.New()
		r.GET("/health", h.Health)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusServiceUnavailable, w.Code)
		env := decode(t, w)
		assert.Equal(t, dto.ErrCodeUnavailable, env.Error.Code)
		assert.Contains(t, env.Error.Message, "redis")
	})
}
