package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

type stubAuthService struct {
	loginFn         func(ctx context.Context, apiType, token string) (string, *domain.User, error)
	passwordLoginFn func(ctx context.Context, identifier, password string) (string, *domain.User, error)
}

func (s *stubAuthService) Login(ctx context.Context, apiType, token string) (string, *domain.User, error) {
	return s.loginFn(ctx, apiType, token)
}

func (s *stubAuthService) LoginWithPassword(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	return s.passwordLoginFn(ctx, identifier, password)
}

func (s *stubAuthService) AuthenticationMethods(ctx context.Context, userID string) ([]domain.AuthenticationMethod, error) {
	return nil, nil
}

func newTestContext(method, path, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = NewValidator()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func httpErrorCode(t *testing.T, err error) int {
	t.Helper()
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		t.Fatalf("expected *echo.HTTPError, got %v", err)
	}
	return he.Code
}

func TestAuthHandler_ShopAuthenticate_Success(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, apiType, token string) (string, *domain.User, error) {
			if apiType != domain.APITypeShop || token != "kc-token" {
				t.Fatalf("unexpected args: %s %s", apiType, token)
			}
			return "session123", &domain.User{
				ID:         "u-1",
				Identifier: "alice@example.com",
				Verified:   true,
				RoleIDs:    []string{"r-customer"},
				AuthenticationMethods: []domain.AuthenticationMethod{
					&domain.ExternalAuthenticationMethod{Strategy: domain.StrategyKeycloakCustomer, ExternalIdentifier: "kc-1"},
				},
			}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/shop-api/authenticate", `{"token":"kc-token"}`)
	if err := h.ShopAuthenticate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "session123" {
		t.Fatalf("expected token, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["identifier"] != "alice@example.com" || user["verified"] != true {
		t.Fatalf("unexpected user payload: %+v", resp["user"])
	}
	methods, ok := user["authenticationMethods"].([]any)
	if !ok || len(methods) != 1 {
		t.Fatalf("expected one authentication method, got %+v", user["authenticationMethods"])
	}
	m := methods[0].(map[string]any)
	if m["strategy"] != domain.StrategyKeycloakCustomer || m["externalIdentifier"] != "kc-1" {
		t.Fatalf("unexpected method: %+v", m)
	}
}

func TestAuthHandler_AdminAuthenticate_UsesAdminAPI(t *testing.T) {
	var gotAPI string
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, apiType, token string) (string, *domain.User, error) {
			gotAPI = apiType
			return "session", &domain.User{ID: "u-2", Identifier: "admin@example.com"}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/admin-api/authenticate", `{"token":"kc-token"}`)
	if err := h.AdminAuthenticate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if gotAPI != domain.APITypeAdmin {
		t.Fatalf("expected admin api, got %q", gotAPI)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	user := resp["user"].(map[string]any)
	if roles, ok := user["roleIds"].([]any); !ok || len(roles) != 0 {
		t.Fatalf("expected empty roleIds array, got %+v", user["roleIds"])
	}
}

func TestAuthHandler_Authenticate_Denied(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, apiType, token string) (string, *domain.User, error) {
			return "", nil, domain.ErrAuthenticationFailed
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/admin-api/authenticate", `{"token":"unknown"}`)
	err := h.AdminAuthenticate(c)
	if !errors.Is(err, domain.ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestAuthHandler_Authenticate_MissingToken(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, apiType, token string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/shop-api/authenticate", `{}`)
	if code := httpErrorCode(t, h.ShopAuthenticate(c)); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
}

func TestAuthHandler_Authenticate_InvalidPayload(t *testing.T) {
	stub := &stubAuthService{
		loginFn: func(ctx context.Context, apiType, token string) (string, *domain.User, error) {
			t.Fatalf("should not be called")
			return "", nil, nil
		},
	}
	h := NewAuthHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/shop-api/authenticate", "not-json")
	if code := httpErrorCode(t, h.ShopAuthenticate(c)); code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestAuthHandler_PasswordLogin(t *testing.T) {
	stub := &stubAuthService{
		passwordLoginFn: func(ctx context.Context, identifier, password string) (string, *domain.User, error) {
			if identifier != "superadmin" || password != "superadmin" {
				return "", nil, domain.ErrInvalidCredentials
			}
			return "session", &domain.User{ID: "u-0", Identifier: identifier, Verified: true}, nil
		},
	}
	h := NewAuthHandler(stub)

	c, rec := newTestContext(http.MethodPost, "/admin-api/login", `{"identifier":"superadmin","password":"superadmin"}`)
	if err := h.PasswordLogin(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	c, _ = newTestContext(http.MethodPost, "/admin-api/login", `{"identifier":"superadmin","password":"bad"}`)
	if err := h.PasswordLogin(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
