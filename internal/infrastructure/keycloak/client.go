// Package keycloak resolves bearer credentials through the identity
// provider's user-info endpoint. It returns identity facts only; no user
// decisions are made here.
package keycloak

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"

	"github.com/tradepost/keycloak-plugins/internal/core/domain"
)

const defaultTimeout = 10 * time.Second

// Config points the client at a user-info endpoint, for example
// https://sso.example.com/realms/shop/protocol/openid-connect/userinfo
type Config struct {
	UserInfoURL string
	Timeout     time.Duration
}

// Client calls the user-info endpoint with the caller's bearer credential.
// Concurrent lookups of the same credential share one request.
type Client struct {
	provider   *oidc.Provider
	httpClient *http.Client
	group      singleflight.Group
	log        zerolog.Logger
}

func NewClient(cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.UserInfoURL == "" {
		return nil, errors.New("keycloak user info url is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	provider := (&oidc.ProviderConfig{UserInfoURL: cfg.UserInfoURL}).NewProvider(context.Background())
	return &Client{
		provider:   provider,
		httpClient: &http.Client{Timeout: timeout},
		log:        log,
	}, nil
}

type profileClaims struct {
	PreferredUsername string `json:"preferred_username"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
}

// FetchUserInfo returns domain.ErrAuthenticationFailed for transport errors,
// non-success responses and payloads without a subject. No retries.
//
// The shared request is detached from the cancellation of whichever caller
// started it and is bounded by the client timeout instead. Each caller still
// returns as soon as its own context is done.
func (c *Client) FetchUserInfo(ctx context.Context, token string) (*domain.ExternalIdentity, error) {
	if token == "" {
		return nil, fmt.Errorf("%w: empty credential", domain.ErrAuthenticationFailed)
	}

	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(TokenDigest(token), func() (interface{}, error) {
		return c.fetch(shared, token)
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %v", domain.ErrAuthenticationFailed, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		identity := *res.Val.(*domain.ExternalIdentity)
		return &identity, nil
	}
}

func (c *Client) fetch(ctx context.Context, token string) (*domain.ExternalIdentity, error) {
	ctx = oidc.ClientContext(ctx, c.httpClient)
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})

	info, err := c.provider.UserInfo(ctx, src)
	if err != nil {
		c.log.Warn().Err(err).Msg("keycloak user info request failed")
		return nil, fmt.Errorf("%w: user info: %v", domain.ErrAuthenticationFailed, err)
	}
	if info.Subject == "" {
		c.log.Warn().Msg("keycloak user info response has no subject")
		return nil, fmt.Errorf("%w: user info without subject", domain.ErrAuthenticationFailed)
	}

	var profile profileClaims
	if err := info.Claims(&profile); err != nil {
		return nil, fmt.Errorf("%w: decode user info: %v", domain.ErrAuthenticationFailed, err)
	}

	return &domain.ExternalIdentity{
		Subject:           info.Subject,
		Email:             info.Email,
		EmailVerified:     info.EmailVerified,
		PreferredUsername: profile.PreferredUsername,
		GivenName:         profile.GivenName,
		FamilyName:        profile.FamilyName,
	}, nil
}

// TokenDigest identifies a credential without retaining it.
func TokenDigest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
