// Package memory is the in-process identity cache used when no Redis address
// is configured.
package memory

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

type UserInfoCache struct{ c *gocache.Cache }

func NewUserInfoCache(defaultTTL time.Duration) *UserInfoCache {
	return &UserInfoCache{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *UserInfoCache) Get(_ context.Context, key string) (*domain.ExternalIdentity, bool, error) {
	v, ok := m.c.Get(key)
	if !ok {
		return nil, false, nil
	}
	identity, ok := v.(domain.ExternalIdentity)
	if !ok {
		return nil, false, nil
	}
	return &identity, true, nil
}

// Set stores a copy so callers cannot mutate cached entries.
func (m *UserInfoCache) Set(_ context.Context, key string, identity *domain.ExternalIdentity, ttl time.Duration) error {
	m.c.Set(key, *identity, ttl)
	return nil
}

func (m *UserInfoCache) Ping(context.Context) error { return nil }
