package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// NewAdministratorInput describes an administrator created on behalf of an
// external identity.
type NewAdministratorInput struct {
	Identifier         string
	ExternalIdentifier string
	EmailAddress       string
	FirstName          string
	LastName           string
	RoleIDs            []string
}

// ExternalAuthService links local users to identities held by an external
// provider. Lookups are namespaced by strategy name.
type ExternalAuthService struct {
	repos ports.Repositories
	now   func() time.Time
}

func NewExternalAuthService(repos ports.Repositories) *ExternalAuthService {
	return &ExternalAuthService{repos: repos, now: func() time.Time { return time.Now().UTC() }}
}

// FindAdministratorUser returns the user linked to externalID under strategy,
// provided an active administrator is bound to it.
func (s *ExternalAuthService) FindAdministratorUser(ctx context.Context, strategy, externalID string) (*domain.User, error) {
	user, err := s.repos.Users.FindByExternalIdentifier(ctx, strategy, externalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Administrators.FindActiveByUserID(ctx, user.ID); err != nil {
		if errors.Is(err, domain.ErrAdministratorNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// FindCustomerUser returns the user linked to externalID under strategy,
// provided a customer profile is bound to it.
func (s *ExternalAuthService) FindCustomerUser(ctx context.Context, strategy, externalID string) (*domain.User, error) {
	user, err := s.repos.Users.FindByExternalIdentifier(ctx, strategy, externalID)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.Customers.FindByUserID(ctx, user.ID); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// CreateCustomerAndUser creates a verified user, its external authentication
// method and the customer profile in a single transaction.
func (s *ExternalAuthService) CreateCustomerAndUser(ctx context.Context, strategy string, identity *domain.ExternalIdentity) (*domain.User, error) {
	if identity == nil || identity.Subject == "" {
		return nil, fmt.Errorf("create customer: %w: missing subject", domain.ErrInvalidInput)
	}
	email := strings.TrimSpace(identity.Email)
	if email == "" {
		return nil, fmt.Errorf("create customer: %w: identity has no email", domain.ErrInvalidInput)
	}

	var created *domain.User
	err := s.repos.Tx.RunInTx(ctx, func(ctx context.Context) error {
		role, err := s.repos.Roles.FindByCode(ctx, domain.CustomerRoleCode)
		if err != nil {
			return fmt.Errorf("customer role: %w", err)
		}

		now := s.now()
		user := &domain.User{
			ID:         uuid.NewString(),
			Identifier: email,
			Verified:   true,
			RoleIDs:    []string{role.ID},
			AuthenticationMethods: []domain.AuthenticationMethod{
				&domain.ExternalAuthenticationMethod{Strategy: strategy, ExternalIdentifier: identity.Subject},
			},
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("user: %w", err)
		}

		customer := &domain.Customer{
			ID:           uuid.NewString(),
			EmailAddress: email,
			FirstName:    identity.FirstName(),
			LastName:     identity.LastName(),
			UserID:       user.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repos.Customers.Create(ctx, customer); err != nil {
			return fmt.Errorf("customer: %w", err)
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create customer: %w", err)
	}
	return created, nil
}

// CreateAdministratorAndUser creates a verified user and its administrator
// record in a single transaction. An empty external identifier creates an
// administrator without an external authentication method.
func (s *ExternalAuthService) CreateAdministratorAndUser(ctx context.Context, strategy string, in NewAdministratorInput) (*domain.Administrator, error) {
	if in.Identifier == "" || in.EmailAddress == "" {
		return nil, fmt.Errorf("create administrator: %w: identifier and email are required", domain.ErrInvalidInput)
	}

	var created *domain.Administrator
	err := s.repos.Tx.RunInTx(ctx, func(ctx context.Context) error {
		now := s.now()
		user := &domain.User{
			ID:         uuid.NewString(),
			Identifier: in.Identifier,
			Verified:   true,
			RoleIDs:    append([]string(nil), in.RoleIDs...),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if in.ExternalIdentifier != "" {
			user.AuthenticationMethods = []domain.AuthenticationMethod{
				&domain.ExternalAuthenticationMethod{Strategy: strategy, ExternalIdentifier: in.ExternalIdentifier},
			}
		}
		if err := s.repos.Users.Create(ctx, user); err != nil {
			return fmt.Errorf("user: %w", err)
		}

		admin := &domain.Administrator{
			ID:           uuid.NewString(),
			EmailAddress: in.EmailAddress,
			FirstName:    in.FirstName,
			LastName:     in.LastName,
			UserID:       user.ID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := s.repos.Administrators.Create(ctx, admin); err != nil {
			return fmt.Errorf("administrator: %w", err)
		}
		created = admin
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create administrator: %w", err)
	}
	return created, nil
}
