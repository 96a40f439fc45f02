package domain

import "testing"

func TestFirstExternalIdentifier(t *testing.T) {
	tests := []struct {
		name string
		user *User
		want string
	}{
		{name: "nil user", user: nil, want: ""},
		{name: "no methods", user: &User{}, want: ""},
		{
			name: "native first",
			user: &User{AuthenticationMethods: []AuthenticationMethod{
				&NativeAuthenticationMethod{Identifier: "root"},
				&ExternalAuthenticationMethod{Strategy: StrategyKeycloakCustomer, ExternalIdentifier: "kc-1"},
			}},
			want: "",
		},
		{
			name: "external first",
			user: &User{AuthenticationMethods: []AuthenticationMethod{
				&ExternalAuthenticationMethod{Strategy: StrategyKeycloakCustomer, ExternalIdentifier: "kc-1"},
			}},
			want: "kc-1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FirstExternalIdentifier(tt.user); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUser_ExternalMethod(t *testing.T) {
	u := &User{AuthenticationMethods: []AuthenticationMethod{
		&NativeAuthenticationMethod{Identifier: "root"},
		&ExternalAuthenticationMethod{Strategy: StrategyKeycloakAdmin, ExternalIdentifier: "kc-9"},
	}}

	m, ok := u.ExternalMethod(StrategyKeycloakAdmin)
	if !ok || m.ExternalIdentifier != "kc-9" {
		t.Fatalf("expected keycloakAdmin method, got %+v %v", m, ok)
	}
	if _, ok := u.ExternalMethod(StrategyKeycloakCustomer); ok {
		t.Fatalf("unexpected keycloakCustomer method")
	}
	if u.AuthenticationMethods[0].StrategyName() != StrategyNative {
		t.Fatalf("expected native strategy name")
	}
}

func TestRequestContext_HasPermission(t *testing.T) {
	var nilCtx *RequestContext
	if nilCtx.HasPermission(PermissionAuthenticated) {
		t.Fatalf("nil context must not grant permissions")
	}

	rc := &RequestContext{Permissions: PermissionsOf([]*Role{
		{Permissions: []Permission{PermissionReadOrder, PermissionCreateTag}},
		{Permissions: []Permission{PermissionReadOrder}},
	})}
	if len(rc.Permissions) != 2 {
		t.Fatalf("expected deduplicated permissions, got %v", rc.Permissions)
	}
	if !rc.HasPermission(PermissionCreateTag) || rc.HasPermission(PermissionCreateChannel) {
		t.Fatalf("unexpected permission check result")
	}

	super := &RequestContext{Permissions: []Permission{PermissionSuperAdmin}}
	if !super.HasPermission(PermissionCreateChannel) {
		t.Fatalf("SuperAdmin must imply every permission")
	}
}

func TestVendorTiers(t *testing.T) {
	has := func(perms []Permission, p Permission) bool {
		for _, have := range perms {
			if have == p {
				return true
			}
		}
		return false
	}
	for _, p := range StaffPermissions {
		if !has(ManagerPermissions, p) {
			t.Fatalf("manager lacks staff permission %s", p)
		}
	}
	for _, p := range VolunteerPermissions {
		if !has(StaffPermissions, p) {
			t.Fatalf("staff lacks volunteer permission %s", p)
		}
	}
	if has(StaffPermissions, PermissionCreateAdministrator) || has(VolunteerPermissions, PermissionCreateAdministrator) {
		t.Fatalf("only managers may create administrators")
	}
}
