package ports

import (
	"context"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// AuthenticationStrategy maps a credential to a local user.
type AuthenticationStrategy interface {
	Name() string
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// AuthService logs users in through the strategy registered for an API and
// issues a session token.
type AuthService interface {
	Login(ctx context.Context, apiType, token string) (string, *domain.User, error)
	LoginWithPassword(ctx context.Context, identifier, password string) (string, *domain.User, error)
	AuthenticationMethods(ctx context.Context, userID string) ([]domain.AuthenticationMethod, error)
}
