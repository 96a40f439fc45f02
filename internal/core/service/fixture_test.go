package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
	"github.com/tradepost/keycloak-plugins/internal/infrastructure/db/memory"
)

const (
	testSuperAdmin = "superadmin"
	testPassword   = "superadmin-secret"
	testJWTSecret  = "test-secret"
)

// fakeUserInfo resolves bearer tokens from a fixed table.
type fakeUserInfo struct {
	mu         sync.Mutex
	identities map[string]*domain.ExternalIdentity
	calls      int
}

func (f *fakeUserInfo) FetchUserInfo(_ context.Context, token string) (*domain.ExternalIdentity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	id, ok := f.identities[token]
	if !ok {
		return nil, domain.ErrAuthenticationFailed
	}
	clone := *id
	return &clone, nil
}

type stepRecord struct {
	step    string
	outcome string
}

type recordingObserver struct {
	steps []stepRecord
}

func (o *recordingObserver) StepFinished(step, outcome string, _ time.Duration) {
	o.steps = append(o.steps, stepRecord{step: step, outcome: outcome})
}

type fixture struct {
	ctx      context.Context
	store    *memory.Store
	repos    ports.Repositories
	userInfo *fakeUserInfo
	external *ExternalAuthService
	admins   *AdministratorService
	contexts *RequestContextFactory
	auth     *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := memory.New()
	repos := store.Repositories()
	log := zerolog.Nop()
	ctx := context.Background()

	err := NewBootstrapper(repos, BootstrapConfig{
		SuperAdminIdentifier: testSuperAdmin,
		SuperAdminPassword:   testPassword,
		DefaultCurrency:      "USD",
		DefaultLanguage:      "en",
	}, log).Run(ctx)
	require.NoError(t, err)

	userInfo := &fakeUserInfo{identities: map[string]*domain.ExternalIdentity{
		"alice-token": {
			Subject:           "kc-alice",
			Email:             "alice@example.com",
			EmailVerified:     true,
			PreferredUsername: "alice",
			GivenName:         "Alice",
			FamilyName:        "Liddell",
		},
		"owner-token": {
			Subject:           "kc-owner",
			Email:             "owner@acme.test",
			PreferredUsername: "acme-owner",
		},
		"no-email-token": {Subject: "kc-ghost", PreferredUsername: "ghost"},
	}}

	external := NewExternalAuthService(repos)
	admins := NewAdministratorService(repos, external, log)
	auth := NewAuthService(repos.Users, repos.Roles, map[string]ports.AuthenticationStrategy{
		domain.APITypeAdmin: NewKeycloakAdminStrategy(userInfo, external, log),
		domain.APITypeShop:  NewKeycloakCustomerStrategy(userInfo, external, log),
	}, testJWTSecret, time.Hour, log)

	return &fixture{
		ctx:      ctx,
		store:    store,
		repos:    repos,
		userInfo: userInfo,
		external: external,
		admins:   admins,
		contexts: NewRequestContextFactory(repos.Users, repos.Roles, SuperAdminConfig{Identifier: testSuperAdmin}),
		auth:     auth,
	}
}

func (f *fixture) vendorService(opts ...VendorOption) *VendorService {
	return NewVendorService(f.repos, f.admins, f.contexts, domain.DefaultPlatformOptions(), zerolog.Nop(), opts...)
}

// registerCustomer logs the identity in on the shop API, which creates the
// customer on first sight.
func (f *fixture) registerCustomer(t *testing.T, token string) *domain.User {
	t.Helper()
	_, user, err := f.auth.Login(f.ctx, domain.APITypeShop, token)
	require.NoError(t, err)
	return user
}

func (f *fixture) createRole(t *testing.T, code string, perms ...domain.Permission) *domain.Role {
	t.Helper()
	role := &domain.Role{ID: code + "-id", Code: code, Permissions: perms}
	require.NoError(t, f.repos.Roles.Create(f.ctx, role))
	return role
}

func (f *fixture) administratorCount() int {
	return f.repos.Administrators.(*memory.AdministratorRepository).Count()
}

func (f *fixture) customerCount() int {
	return f.repos.Customers.(*memory.CustomerRepository).Count()
}
