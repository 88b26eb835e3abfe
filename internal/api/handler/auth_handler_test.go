package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/edulearn/lms/internal/api/middleware"
	"github.com/edulearn/lms/internal/core/domain"
	"github.com/edulearn/lms/internal/core/ports"
)

type stubAuthService struct {
	registerFn       func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error)
	loginFn          func(ctx context.Context, email, password string) (*ports.AuthResult, error)
	meFn             func(ctx context.Context, userID string) (*domain.User, error)
	logoutFn         func(ctx context.Context, claims ports.TokenClaims) error
	forgotFn         func(ctx context.Context, email string) error
	resetFn          func(ctx context.Context, token, password string) error
	updateDetailsFn  func(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error)
	updatePasswordFn func(ctx context.Context, userID, current, next string) error
	listUsersFn      func(ctx context.Context) ([]*domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, email, password string) (*ports.AuthResult, error) {
	return s.loginFn(ctx, email, password)
}

func (s *stubAuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.meFn(ctx, userID)
}

func (s *stubAuthService) Logout(ctx context.Context, claims ports.TokenClaims) error {
	return s.logoutFn(ctx, claims)
}

func (s *stubAuthService) ForgotPassword(ctx context.Context, email string) error {
	return s.forgotFn(ctx, email)
}

func (s *stubAuthService) ResetPassword(ctx context.Context, token, password string) error {
	return s.resetFn(ctx, token, password)
}

func (s *stubAuthService) UpdateDetails(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
	return s.updateDetailsFn(ctx, userID, patch)
}

func (s *stubAuthService) UpdatePassword(ctx context.Context, userID, current, next string) error {
	return s.updatePasswordFn(ctx, userID, current, next)
}

func (s *stubAuthService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.listUsersFn(ctx)
}

var studentClaims = ports.TokenClaims{
	UserID:    "u-1",
	Role:      domain.RoleStudent,
	TokenID:   "jti-1",
	ExpiresAt: time.Now().Add(time.Hour),
}

// call runs fn against a request the way the router would, including the
// error handler.
func call(t *testing.T, fn echo.HandlerFunc, method, target, body string, claims *ports.TokenClaims) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())

	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if claims != nil {
		c.Set(middleware.ClaimsKey, *claims)
	}

	if err := fn(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return resp
}

func TestAuthHandler_Register_Success(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			if in.Email != "ana@example.com" || in.FirstName != "Ana" || in.Password != "Aa1!aaaa" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &ports.AuthResult{
				Token: "tok",
				User:  &domain.User{ID: "u-1", FirstName: "Ana", Email: in.Email, Role: domain.RoleStudent},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := call(t, h.Register, http.MethodPost, "/api/auth/register",
		`{"firstName":"Ana","lastName":"Lopez","email":"ana@example.com","password":"Aa1!aaaa"}`, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["success"] != true || resp["token"] != "tok" {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["role"] != "student" || user["email"] != "ana@example.com" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	if _, leaked := user["passwordHash"]; leaked {
		t.Fatalf("password hash must not be serialised")
	}
}

func TestAuthHandler_Register_WeakPassword(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	h := NewAuthHandler(stub)

	rec := call(t, h.Register, http.MethodPost, "/api/auth/register",
		`{"firstName":"Ana","lastName":"Lopez","email":"ana@example.com","password":"password"}`, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["success"] != false || !strings.Contains(resp["error"].(string), "password") {
		t.Fatalf("unexpected error envelope: %+v", resp)
	}
}

func TestAuthHandler_Register_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"user exists", domain.ErrUserExists, http.StatusConflict},
		{"privileged role", domain.ErrRoleNotAllowed, http.StatusForbidden},
		{"unexpected", errors.New("mongo down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAuthService{
				registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
					return nil, tt.err
				},
			}
			rec := call(t, NewAuthHandler(stub).Register, http.MethodPost, "/api/auth/register",
				`{"firstName":"Ana","lastName":"Lopez","email":"ana@example.com","password":"Aa1!aaaa","role":"admin"}`, nil)
			if rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAuthHandler_Register_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		registerFn: func(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	rec := call(t, NewAuthHandler(stub).Register, http.MethodPost, "/api/auth/register", "not-json", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			if email != "alice@example.com" || password != "secret" {
				t.Fatalf("unexpected args: %s %s", email, password)
			}
			return &ports.AuthResult{Token: "token123", User: &domain.User{ID: "u-9", Role: domain.RoleAdmin}}, nil
		},
	}

	rec := call(t, NewAuthHandler(stub).Login, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"secret"}`, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp["token"] != "token123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["role"] != "admin" {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			return nil, domain.ErrInvalidCredentials
		},
	}

	rec := call(t, NewAuthHandler(stub).Login, http.MethodPost, "/api/auth/login",
		`{"email":"alice@example.com","password":"bad"}`, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["error"] != "Invalid credentials" {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, email, password string) (*ports.AuthResult, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	rec := call(t, NewAuthHandler(stub).Login, http.MethodPost, "/api/auth/login", `{"email":"alice@example.com"}`, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var got ports.TokenClaims
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, claims ports.TokenClaims) error {
			got = claims
			return nil
		},
	}

	rec := call(t, NewAuthHandler(stub).Logout, http.MethodGet, "/api/auth/logout", "", &studentClaims)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.TokenID != "jti-1" {
		t.Fatalf("expected claims to reach the service, got %+v", got)
	}
}

func TestAuthHandler_Logout_WithoutClaims(t *testing.T) {
	stub := &stubAuthService{
		logoutFn: func(ctx context.Context, claims ports.TokenClaims) error {
			t.Fatalf("should not be called")
			return nil
		},
	}
	rec := call(t, NewAuthHandler(stub).Logout, http.MethodGet, "/api/auth/logout", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestAuthHandler_Me(t *testing.T) {
	stub := &stubAuthService{
		meFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return &domain.User{ID: userID, FirstName: "Ana", Role: domain.RoleStudent}, nil
		},
	}

	rec := call(t, NewAuthHandler(stub).Me, http.MethodGet, "/api/auth/me", "", &studentClaims)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, ok := decode(t, rec)["data"].(map[string]any)
	if !ok || data["id"] != "u-1" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestAuthHandler_Me_UserGone(t *testing.T) {
	stub := &stubAuthService{
		meFn: func(ctx context.Context, userID string) (*domain.User, error) {
			return nil, domain.ErrUserNotFound
		},
	}
	rec := call(t, NewAuthHandler(stub).Me, http.MethodGet, "/api/auth/me", "", &studentClaims)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["error"] != "User not found" {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestAuthHandler_ForgotPassword(t *testing.T) {
	stub := &stubAuthService{
		forgotFn: func(ctx context.Context, email string) error {
			if email != "ana@example.com" {
				t.Fatalf("unexpected email: %s", email)
			}
			return nil
		},
	}
	rec := call(t, NewAuthHandler(stub).ForgotPassword, http.MethodPost, "/api/auth/forgot-password", `{"email":"ana@example.com"}`, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["message"] == "" {
		t.Fatalf("expected a message: %+v", resp)
	}
}

func TestAuthHandler_ForgotPassword_UnknownEmail(t *testing.T) {
	stub := &stubAuthService{
		forgotFn: func(ctx context.Context, email string) error {
			return domain.ErrEmailNotRegistered
		},
	}
	rec := call(t, NewAuthHandler(stub).ForgotPassword, http.MethodPost, "/api/auth/forgot-password", `{"email":"ghost@example.com"}`, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["error"] != "There is no user with that email" {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestAuthHandler_ResetPassword(t *testing.T) {
	e := echo.New()
	e.Validator = NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zerolog.Nop())

	var gotToken string
	stub := &stubAuthService{
		resetFn: func(ctx context.Context, token, password string) error {
			gotToken = token
			if token == "used" {
				return domain.ErrInvalidResetToken
			}
			return nil
		},
	}
	e.PUT("/api/auth/reset-password/:token", NewAuthHandler(stub).ResetPassword)

	req := httptest.NewRequest(http.MethodPut, "/api/auth/reset-password/abc", strings.NewReader(`{"password":"Bb2@bbbb"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK || gotToken != "abc" {
		t.Fatalf("expected 200 with token abc, got %d %q", rec.Code, gotToken)
	}

	req = httptest.NewRequest(http.MethodPut, "/api/auth/reset-password/used", strings.NewReader(`{"password":"Bb2@bbbb"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a consumed token, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdateDetails(t *testing.T) {
	stub := &stubAuthService{
		updateDetailsFn: func(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
			if patch.FirstName == nil || *patch.FirstName != "Anita" || patch.Email != nil {
				t.Fatalf("unexpected patch: %+v", patch)
			}
			return &domain.User{ID: userID, FirstName: *patch.FirstName, Role: domain.RoleStudent}, nil
		},
	}

	rec := call(t, NewAuthHandler(stub).UpdateDetails, http.MethodPut, "/api/auth/update-details", `{"firstName":"Anita"}`, &studentClaims)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data, _ := decode(t, rec)["data"].(map[string]any)
	if data["firstName"] != "Anita" {
		t.Fatalf("unexpected data: %+v", data)
	}
}

func TestAuthHandler_UpdateDetails_ProfileImageReference(t *testing.T) {
	stub := &stubAuthService{
		updateDetailsFn: func(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
			if patch.ProfileImage == nil || *patch.ProfileImage != "photo.jpg" {
				t.Fatalf("unexpected patch: %+v", patch)
			}
			return &domain.User{ID: userID, ProfileImage: *patch.ProfileImage, Role: domain.RoleStudent}, nil
		},
	}

	rec := call(t, NewAuthHandler(stub).UpdateDetails, http.MethodPut, "/api/auth/update-details", `{"profileImage":"photo.jpg"}`, &studentClaims)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	long := `{"profileImage":"` + strings.Repeat("a", 256) + `"}`
	rec = call(t, NewAuthHandler(stub).UpdateDetails, http.MethodPut, "/api/auth/update-details", long, &studentClaims)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for an oversized reference, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdateDetails_EmptyPatch(t *testing.T) {
	stub := &stubAuthService{
		updateDetailsFn: func(ctx context.Context, userID string, patch domain.UserPatch) (*domain.User, error) {
			t.Fatalf("should not be called")
			return nil, nil
		},
	}
	rec := call(t, NewAuthHandler(stub).UpdateDetails, http.MethodPut, "/api/auth/update-details", `{}`, &studentClaims)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAuthHandler_UpdatePassword_WrongCurrent(t *testing.T) {
	stub := &stubAuthService{
		updatePasswordFn: func(ctx context.Context, userID, current, next string) error {
			return domain.ErrInvalidCredentials
		},
	}
	rec := call(t, NewAuthHandler(stub).UpdatePassword, http.MethodPut, "/api/auth/update-password",
		`{"currentPassword":"old","newPassword":"Cc3#cccc"}`, &studentClaims)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["error"] != "Password is incorrect" {
		t.Fatalf("unexpected message: %v", resp["error"])
	}
}

func TestAuthHandler_ListUsers_Empty(t *testing.T) {
	stub := &stubAuthService{
		listUsersFn: func(ctx context.Context) ([]*domain.User, error) {
			return nil, nil
		},
	}
	rec := call(t, NewAuthHandler(stub).ListUsers, http.MethodGet, "/api/users", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if data, ok := decode(t, rec)["data"].([]any); !ok || len(data) != 0 {
		t.Fatalf("expected an empty list, got %+v", data)
	}
}
