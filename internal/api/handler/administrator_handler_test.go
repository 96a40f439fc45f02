package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/tradepost/keycloak-plugins/internal/api/middleware"
)

type stubAdministratorService struct {
	promoteFn func(ctx context.Context, granterID, email, roleCode string) bool
}

func (s *stubAdministratorService) PromoteAs(ctx context.Context, granterID, email, roleCode string) bool {
	return s.promoteFn(ctx, granterID, email, roleCode)
}

func TestAdministratorHandler_CreateKeycloak(t *testing.T) {
	tests := []struct {
		name    string
		result  bool
		wantMsg string
	}{
		{name: "promoted", result: true, wantMsg: `"success":true`},
		{name: "failed", result: false, wantMsg: `"success":false`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &stubAdministratorService{
				promoteFn: func(ctx context.Context, granterID, email, roleCode string) bool {
					if granterID != "user-1" || email != "bob@example.com" || roleCode != "acme-co-manager" {
						t.Fatalf("unexpected args: %s %s %s", granterID, email, roleCode)
					}
					return tt.result
				},
			}
			h := NewAdministratorHandler(stub)

			c, rec := newTestContext(http.MethodPost, "/admin-api/administrators/keycloak",
				`{"emailAddress":"bob@example.com","roleCode":"acme-co-manager"}`)
			c.Set(middleware.CtxUserID, "user-1")
			if err := h.CreateKeycloak(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tt.wantMsg) {
				t.Fatalf("expected %s in %s", tt.wantMsg, rec.Body.String())
			}

			var resp createAdministratorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("invalid json: %v", err)
			}
		})
	}
}

func TestAdministratorHandler_CreateKeycloak_Validation(t *testing.T) {
	stub := &stubAdministratorService{
		promoteFn: func(ctx context.Context, granterID, email, roleCode string) bool {
			t.Fatalf("should not be called")
			return false
		},
	}
	h := NewAdministratorHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/admin-api/administrators/keycloak",
		`{"emailAddress":"not-an-email","roleCode":""}`)
	err := h.CreateKeycloak(c)
	if code := httpErrorCode(t, err); code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", code)
	}
	if !strings.Contains(err.Error(), "emailAddress must be a valid email") {
		t.Fatalf("expected json field name in message, got %v", err)
	}
}

func TestAdministratorHandler_CreateKeycloak_MissingSession(t *testing.T) {
	stub := &stubAdministratorService{
		promoteFn: func(ctx context.Context, granterID, email, roleCode string) bool {
			t.Fatalf("should not be called")
			return false
		},
	}
	h := NewAdministratorHandler(stub)

	c, _ := newTestContext(http.MethodPost, "/admin-api/administrators/keycloak",
		`{"emailAddress":"bob@example.com","roleCode":"acme-co-manager"}`)
	err := h.CreateKeycloak(c)
	if code := httpErrorCode(t, err); code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", code)
	}
}
