package ports

import (
	"context"
	"time"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// UserInfoFetcher resolves a bearer credential into the identity provider's
// user-info record. Any failure is reported as domain.ErrAuthenticationFailed.
type UserInfoFetcher interface {
	FetchUserInfo(ctx context.Context, token string) (*domain.ExternalIdentity, error)
}

// UserInfoCache stores resolved identities keyed by a digest of the credential.
// A miss returns (nil, false, nil).
type UserInfoCache interface {
	Get(ctx context.Context, key string) (*domain.ExternalIdentity, bool, error)
	Set(ctx context.Context, key string, identity *domain.ExternalIdentity, ttl time.Duration) error
}
