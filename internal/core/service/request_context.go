package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// SuperAdminConfig names the account whose permissions privileged workflows
// run with.
type SuperAdminConfig struct {
	Identifier string
}

// RequestContextFactory builds elevated request contexts.
type RequestContextFactory struct {
	users ports.UserRepository
	roles ports.RoleRepository
	cfg   SuperAdminConfig
}

func NewRequestContextFactory(users ports.UserRepository, roles ports.RoleRepository, cfg SuperAdminConfig) *RequestContextFactory {
	return &RequestContextFactory{users: users, roles: roles, cfg: cfg}
}

// SuperAdmin returns a context acting as the configured super-admin user.
func (f *RequestContextFactory) SuperAdmin(ctx context.Context) (*domain.RequestContext, error) {
	if f.cfg.Identifier == "" {
		return nil, fmt.Errorf("super-admin context: %w: identifier not configured", domain.ErrConfiguration)
	}

	user, err := f.users.FindByIdentifier(ctx, f.cfg.Identifier)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("super-admin context: %w: user %q not found", domain.ErrConfiguration, f.cfg.Identifier)
		}
		return nil, fmt.Errorf("super-admin context: %w", err)
	}

	roles, err := f.roles.FindByIDs(ctx, user.RoleIDs)
	if err != nil {
		return nil, fmt.Errorf("super-admin context: roles: %w", err)
	}
	rc := &domain.RequestContext{
		APIType:     domain.APITypeShop,
		User:        user,
		Permissions: domain.PermissionsOf(roles),
	}
	if !rc.HasPermission(domain.PermissionSuperAdmin) {
		return nil, fmt.Errorf("super-admin context: %w: user %q lacks SuperAdmin", domain.ErrConfiguration, f.cfg.Identifier)
	}
	return rc, nil
}
