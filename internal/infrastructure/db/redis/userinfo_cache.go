package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

// UserInfoCache keeps resolved identities in Redis.
// Key format: userinfo:<credential digest>
type UserInfoCache struct {
	client *redis.Client
}

// NewUserInfoCache creates a UserInfoCache wrapping the given Redis client.
func NewUserInfoCache(client *redis.Client) *UserInfoCache {
	return &UserInfoCache{client: client}
}

func (c *UserInfoCache) Get(ctx context.Context, key string) (*domain.ExternalIdentity, bool, error) {
	raw, err := c.client.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("userinfo cache get: %w", err)
	}

	var identity domain.ExternalIdentity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, false, fmt.Errorf("userinfo cache decode: %w", err)
	}
	return &identity, true, nil
}

func (c *UserInfoCache) Set(ctx context.Context, key string, identity *domain.ExternalIdentity, ttl time.Duration) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("userinfo cache encode: %w", err)
	}
	return c.client.Set(ctx, c.key(key), raw, ttl).Err()
}

func (c *UserInfoCache) key(digest string) string {
	return "userinfo:" + digest
}

// Pinger adapts a client to the readiness probe.
type Pinger struct {
	client *redis.Client
}

func NewPinger(client *redis.Client) *Pinger {
	return &Pinger{client: client}
}

func (p *Pinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
