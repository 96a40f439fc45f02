package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

const testSecret = "router-secret"

type fakeAuth struct{}

func (fakeAuth) Login(ctx context.Context, apiType, token string) (string, *domain.User, error) {
	return "", nil, domain.ErrAuthenticationFailed
}

func (fakeAuth) LoginWithPassword(ctx context.Context, identifier, password string) (string, *domain.User, error) {
	return "", nil, domain.ErrInvalidCredentials
}

func (fakeAuth) AuthenticationMethods(ctx context.Context, userID string) ([]domain.AuthenticationMethod, error) {
	return nil, nil
}

type fakeAdmins struct {
	calls     int
	granterID string
}

func (f *fakeAdmins) PromoteAs(ctx context.Context, granterID, email, roleCode string) bool {
	f.calls++
	f.granterID = granterID
	return true
}

type fakeVendors struct{}

func (fakeVendors) Provision(ctx context.Context, in domain.CreateVendorInput) (*domain.VendorProvisioningDetails, error) {
	return nil, &domain.ProvisioningError{Step: "channel", Err: domain.ErrDuplicate}
}

func sessionToken(t *testing.T, perms ...string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":         "user-1",
		"permissions": perms,
		"exp":         time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return s
}

func TestRouter_Routes(t *testing.T) {
	admins := &fakeAdmins{}
	e := NewRouter(Deps{
		AuthService:          fakeAuth{},
		AdministratorService: admins,
		VendorService:        fakeVendors{},
		HealthChecks:         map[string]ports.HealthChecker{},
		JWTSecret:            testSecret,
		Logger:               zerolog.Nop(),
		Registry:             prometheus.NewRegistry(),
	})

	promote := `{"emailAddress":"bob@example.com","roleCode":"acme-co-manager"}`
	vendor := `{"sellerName":"Acme Co","emailAddress":"o@acme.test","vendorHandlingFee":1,"platformHandlingFee":1,"stripeAPISecret":"sk","stripeWebhookSecret":"wh"}`

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		token    string
		wantCode int
	}{
		{"liveness", http.MethodGet, "/health", "", "", http.StatusOK},
		{"readiness", http.MethodGet, "/health/ready", "", "", http.StatusOK},
		{"metrics", http.MethodGet, "/metrics", "", "", http.StatusOK},
		{"keycloak login denied", http.MethodPost, "/admin-api/authenticate", `{"token":"x"}`, "", http.StatusUnauthorized},
		{"promote without session", http.MethodPost, "/admin-api/administrators/keycloak", promote, "", http.StatusUnauthorized},
		{"promote without permission", http.MethodPost, "/admin-api/administrators/keycloak", promote, sessionToken(t, "Authenticated"), http.StatusForbidden},
		{"promote", http.MethodPost, "/admin-api/administrators/keycloak", promote, sessionToken(t, "Authenticated", "CreateAdministrator"), http.StatusOK},
		{"vendor duplicate", http.MethodPost, "/shop-api/vendors/keycloak", vendor, sessionToken(t, "Authenticated"), http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)

			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d: %s", tt.wantCode, rec.Code, rec.Body.String())
			}
		})
	}

	if admins.calls != 1 {
		t.Fatalf("expected exactly one promotion, got %d", admins.calls)
	}
	if admins.granterID != "user-1" {
		t.Fatalf("expected promotion on behalf of session user, got %q", admins.granterID)
	}
}
