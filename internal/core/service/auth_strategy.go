package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// KeycloakAdminStrategy authenticates administrators through the identity
// provider. It never creates state: unknown subjects are denied.
type KeycloakAdminStrategy struct {
	userInfo ports.UserInfoFetcher
	external *ExternalAuthService
	log      zerolog.Logger
}

func NewKeycloakAdminStrategy(userInfo ports.UserInfoFetcher, external *ExternalAuthService, log zerolog.Logger) *KeycloakAdminStrategy {
	return &KeycloakAdminStrategy{userInfo: userInfo, external: external, log: log}
}

func (s *KeycloakAdminStrategy) Name() string { return domain.StrategyKeycloakAdmin }

func (s *KeycloakAdminStrategy) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	identity, err := s.userInfo.FetchUserInfo(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Str("strategy", s.Name()).Msg("user info lookup failed")
		return nil, domain.ErrAuthenticationFailed
	}

	user, err := s.external.FindAdministratorUser(ctx, s.Name(), identity.Subject)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			s.log.Info().Str("sub", identity.Subject).Msg("no administrator linked to subject")
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, fmt.Errorf("find administrator user: %w", err)
	}
	return user, nil
}

// KeycloakCustomerStrategy authenticates storefront customers, creating a
// verified customer the first time a subject is seen.
type KeycloakCustomerStrategy struct {
	userInfo ports.UserInfoFetcher
	external *ExternalAuthService
	log      zerolog.Logger
}

func NewKeycloakCustomerStrategy(userInfo ports.UserInfoFetcher, external *ExternalAuthService, log zerolog.Logger) *KeycloakCustomerStrategy {
	return &KeycloakCustomerStrategy{userInfo: userInfo, external: external, log: log}
}

func (s *KeycloakCustomerStrategy) Name() string { return domain.StrategyKeycloakCustomer }

func (s *KeycloakCustomerStrategy) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	identity, err := s.userInfo.FetchUserInfo(ctx, token)
	if err != nil {
		s.log.Warn().Err(err).Str("strategy", s.Name()).Msg("user info lookup failed")
		return nil, domain.ErrAuthenticationFailed
	}

	user, err := s.external.FindCustomerUser(ctx, s.Name(), identity.Subject)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("find customer user: %w", err)
	}

	user, err = s.external.CreateCustomerAndUser(ctx, s.Name(), identity)
	if errors.Is(err, domain.ErrDuplicate) {
		// A concurrent first login for the same subject won the insert.
		if existing, findErr := s.external.FindCustomerUser(ctx, s.Name(), identity.Subject); findErr == nil {
			return existing, nil
		}
	}
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			s.log.Warn().Err(err).Str("sub", identity.Subject).Msg("cannot register customer")
			return nil, domain.ErrAuthenticationFailed
		}
		return nil, err
	}
	s.log.Info().Str("user_id", user.ID).Str("sub", identity.Subject).Msg("customer registered from identity provider")
	return user, nil
}
