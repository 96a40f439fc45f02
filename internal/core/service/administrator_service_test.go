package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

func TestPromote_MissingCustomer(t *testing.T) {
	f := newFixture(t)
	role := f.createRole(t, "ops", domain.PermissionReadOrder)

	ok := f.admins.Promote(f.ctx, "nobody@example.com", role.Code)

	assert.False(t, ok)
	assert.Equal(t, 1, f.administratorCount())
}

func TestPromote_MissingRole(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t, "alice-token")

	assert.False(t, f.admins.Promote(f.ctx, "alice@example.com", "no-such-role"))
	assert.Equal(t, 1, f.administratorCount())
}

func TestPromote_CreatesAdministratorOnce(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t, "alice-token")
	role := f.createRole(t, "ops", domain.PermissionReadOrder)

	require.True(t, f.admins.Promote(f.ctx, "alice@example.com", role.Code))
	require.Equal(t, 2, f.administratorCount())

	admin, err := f.repos.Administrators.FindActiveByEmail(f.ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Alice", admin.FirstName)
	assert.Equal(t, "Liddell", admin.LastName)

	user, err := f.repos.Users.FindByID(f.ctx, admin.UserID)
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Equal(t, []string{role.ID}, user.RoleIDs)

	method, ok := user.ExternalMethod(domain.StrategyKeycloakAdmin)
	require.True(t, ok)
	assert.Equal(t, "kc-alice", method.ExternalIdentifier)

	// Promoting again reuses the administrator.
	require.True(t, f.admins.Promote(f.ctx, "alice@example.com", role.Code))
	assert.Equal(t, 2, f.administratorCount())
}

func TestPromote_ExistingAdministratorGetsRoleAdded(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t, "alice-token")
	ops := f.createRole(t, "ops", domain.PermissionReadOrder)
	catalog := f.createRole(t, "catalog", domain.PermissionUpdateCatalog)

	require.True(t, f.admins.Promote(f.ctx, "alice@example.com", ops.Code))
	require.True(t, f.admins.Promote(f.ctx, "ALICE@example.com", catalog.Code))

	assert.Equal(t, 2, f.administratorCount())
	admin, err := f.repos.Administrators.FindActiveByEmail(f.ctx, "alice@example.com")
	require.NoError(t, err)
	user, err := f.repos.Users.FindByID(f.ctx, admin.UserID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{ops.ID, catalog.ID}, user.RoleIDs)
}

func TestPromote_CustomerWithoutExternalIdentity(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.repos.Customers.Create(f.ctx, &domain.Customer{
		ID:           "guest-1",
		EmailAddress: "guest@example.com",
	}))
	role := f.createRole(t, "ops", domain.PermissionReadOrder)

	require.True(t, f.admins.Promote(f.ctx, "guest@example.com", role.Code))

	admin, err := f.repos.Administrators.FindActiveByEmail(f.ctx, "guest@example.com")
	require.NoError(t, err)
	assert.Equal(t, "guest@example.com", admin.FirstName)

	user, err := f.repos.Users.FindByID(f.ctx, admin.UserID)
	require.NoError(t, err)
	assert.Empty(t, user.AuthenticationMethods)
}

func TestPromoteAs_ChannelManagerGrantsOnlyOwnChannelRoles(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t, "owner-token")
	f.registerCustomer(t, "alice-token")
	_, err := f.vendorService().Provision(f.ctx, acmeInput())
	require.NoError(t, err)

	owner, err := f.repos.Administrators.FindActiveByEmail(f.ctx, "owner@acme.test")
	require.NoError(t, err)
	foreign := &domain.Role{
		ID:          "foreign-staff-id",
		Code:        "foreign-staff",
		Permissions: domain.StaffPermissions,
		ChannelIDs:  []string{"other-channel"},
	}
	require.NoError(t, f.repos.Roles.Create(f.ctx, foreign))
	f.createRole(t, "global-ops", domain.PermissionReadOrder)

	tests := []struct {
		name     string
		roleCode string
		want     bool
	}{
		{name: "super-admin role", roleCode: domain.SuperAdminRoleCode, want: false},
		{name: "role of another channel", roleCode: "foreign-staff", want: false},
		{name: "role without channel", roleCode: "global-ops", want: false},
		{name: "staff of own channel", roleCode: "acme-co-staff", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.admins.PromoteAs(f.ctx, owner.UserID, "alice@example.com", tt.roleCode))
		})
	}

	alice, err := f.repos.Administrators.FindActiveByEmail(f.ctx, "alice@example.com")
	require.NoError(t, err)
	user, err := f.repos.Users.FindByID(f.ctx, alice.UserID)
	require.NoError(t, err)
	roles, err := f.repos.Roles.FindByIDs(f.ctx, user.RoleIDs)
	require.NoError(t, err)
	require.Len(t, roles, 1)
	assert.Equal(t, "acme-co-staff", roles[0].Code)
	assert.NotContains(t, domain.PermissionsOf(roles), domain.PermissionSuperAdmin)
}

func TestPromoteAs_ManagerCannotEscalateSelf(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t, "owner-token")
	_, err := f.vendorService().Provision(f.ctx, acmeInput())
	require.NoError(t, err)

	owner, err := f.repos.Administrators.FindActiveByEmail(f.ctx, "owner@acme.test")
	require.NoError(t, err)

	require.False(t, f.admins.PromoteAs(f.ctx, owner.UserID, "owner@acme.test", domain.SuperAdminRoleCode))

	_, user, err := f.auth.Login(f.ctx, domain.APITypeAdmin, "owner-token")
	require.NoError(t, err)
	roles, err := f.repos.Roles.FindByIDs(f.ctx, user.RoleIDs)
	require.NoError(t, err)
	assert.NotContains(t, domain.PermissionsOf(roles), domain.PermissionSuperAdmin)
}

func TestPromoteAs_SuperAdminGrantsAnyRole(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t, "alice-token")
	role := f.createRole(t, "global-ops", domain.PermissionReadOrder)

	superAdmin, err := f.repos.Users.FindByIdentifier(f.ctx, testSuperAdmin)
	require.NoError(t, err)

	assert.True(t, f.admins.PromoteAs(f.ctx, superAdmin.ID, "alice@example.com", role.Code))
}

func TestPromoteAs_UnknownGranter(t *testing.T) {
	f := newFixture(t)
	f.registerCustomer(t, "alice-token")
	role := f.createRole(t, "global-ops", domain.PermissionReadOrder)

	assert.False(t, f.admins.PromoteAs(f.ctx, "no-such-user", "alice@example.com", role.Code))
	assert.Equal(t, 1, f.administratorCount())
}
