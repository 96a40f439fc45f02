package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// BootstrapConfig describes the platform records that must exist before any
// request is served.
type BootstrapConfig struct {
	SuperAdminIdentifier string
	SuperAdminPassword   string
	DefaultCurrency      string
	DefaultLanguage      string
	PricesIncludeTax     bool
}

// Bootstrapper creates the default channel, the super-admin and customer
// roles and the super-admin user when they are missing. Running it again is a
// no-op.
type Bootstrapper struct {
	repos ports.Repositories
	cfg   BootstrapConfig
	log   zerolog.Logger
}

func NewBootstrapper(repos ports.Repositories, cfg BootstrapConfig, log zerolog.Logger) *Bootstrapper {
	return &Bootstrapper{repos: repos, cfg: cfg, log: log}
}

func (b *Bootstrapper) Run(ctx context.Context) error {
	channel, err := b.ensureDefaultChannel(ctx)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	superAdmin, err := b.ensureRole(ctx, domain.SuperAdminRoleCode, "SuperAdmin", domain.AllPermissions(), channel.ID)
	if err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if _, err := b.ensureRole(ctx, domain.CustomerRoleCode, "Customer", []domain.Permission{domain.PermissionAuthenticated}, channel.ID); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	if err := b.ensureSuperAdminUser(ctx, superAdmin); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

func (b *Bootstrapper) ensureDefaultChannel(ctx context.Context) (*domain.Channel, error) {
	ch, err := b.repos.Channels.FindByCode(ctx, domain.DefaultChannelCode)
	if err == nil {
		return ch, nil
	}
	if !errors.Is(err, domain.ErrChannelNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	ch = &domain.Channel{
		ID:                  uuid.NewString(),
		Code:                domain.DefaultChannelCode,
		Token:               uuid.NewString(),
		DefaultCurrencyCode: b.cfg.DefaultCurrency,
		DefaultLanguageCode: b.cfg.DefaultLanguage,
		PricesIncludeTax:    b.cfg.PricesIncludeTax,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := b.repos.Channels.Create(ctx, ch); err != nil {
		return nil, fmt.Errorf("default channel: %w", err)
	}
	b.log.Info().Str("channel_id", ch.ID).Msg("default channel created")
	return ch, nil
}

func (b *Bootstrapper) ensureRole(ctx context.Context, code, description string, perms []domain.Permission, channelID string) (*domain.Role, error) {
	role, err := b.repos.Roles.FindByCode(ctx, code)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, domain.ErrRoleNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	role = &domain.Role{
		ID:          uuid.NewString(),
		Code:        code,
		Description: description,
		Permissions: perms,
		ChannelIDs:  []string{channelID},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := b.repos.Roles.Create(ctx, role); err != nil {
		return nil, fmt.Errorf("role %s: %w", code, err)
	}
	b.log.Info().Str("role_code", code).Msg("role created")
	return role, nil
}

func (b *Bootstrapper) ensureSuperAdminUser(ctx context.Context, role *domain.Role) error {
	if b.cfg.SuperAdminIdentifier == "" {
		return fmt.Errorf("%w: super-admin identifier not configured", domain.ErrConfiguration)
	}
	_, err := b.repos.Users.FindByIdentifier(ctx, b.cfg.SuperAdminIdentifier)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return err
	}
	if b.cfg.SuperAdminPassword == "" {
		return fmt.Errorf("%w: super-admin password not configured", domain.ErrConfiguration)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(b.cfg.SuperAdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return b.repos.Tx.RunInTx(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		user := &domain.User{
			ID:         uuid.NewString(),
			Identifier: b.cfg.SuperAdminIdentifier,
			Verified:   true,
			RoleIDs:    []string{role.ID},
			AuthenticationMethods: []domain.AuthenticationMethod{
				&domain.NativeAuthenticationMethod{Identifier: b.cfg.SuperAdminIdentifier, PasswordHash: string(hash)},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := b.repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("super-admin user: %w", err)
		}
		admin := &domain.Administrator{
			ID:           uuid.NewString(),
			EmailAddress: b.cfg.SuperAdminIdentifier,
			FirstName:    "Super",
			LastName:     "Admin",
			UserID:       user.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := b.repos.Administrators.Create(ctx, admin); err != nil {
			return fmt.Errorf("super-admin administrator: %w", err)
		}
		b.log.Info().Str("identifier", user.Identifier).Msg("super-admin created")
		return nil
	})
}
