package keycloak

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// CachedFetcher serves repeated lookups of the same credential from a cache
// for ttl. Cache failures are logged and fall through to the provider.
type CachedFetcher struct {
	next  ports.UserInfoFetcher
	cache ports.UserInfoCache
	ttl   time.Duration
	log   zerolog.Logger
}

func NewCachedFetcher(next ports.UserInfoFetcher, cache ports.UserInfoCache, ttl time.Duration, log zerolog.Logger) *CachedFetcher {
	return &CachedFetcher{next: next, cache: cache, ttl: ttl, log: log}
}

func (f *CachedFetcher) FetchUserInfo(ctx context.Context, token string) (*domain.ExternalIdentity, error) {
	if f.ttl <= 0 || token == "" {
		return f.next.FetchUserInfo(ctx, token)
	}

	key := TokenDigest(token)
	identity, ok, err := f.cache.Get(ctx, key)
	if err != nil {
		f.log.Warn().Err(err).Msg("userinfo cache read failed")
	} else if ok {
		return identity, nil
	}

	identity, err = f.next.FetchUserInfo(ctx, token)
	if err != nil {
		return nil, err
	}
	if err := f.cache.Set(ctx, key, identity, f.ttl); err != nil {
		f.log.Warn().Err(err).Msg("userinfo cache write failed")
	}
	return identity, nil
}
