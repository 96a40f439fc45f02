package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	var cfg Config
	err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target: &cfg,
		Lookuper: envconfig.MapLookuper(map[string]string{
			"JWT_SECRET":            "secret",
			"KEYCLOAK_USERINFO_URL": "http://sso/userinfo",
		}),
	})
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, StorageMongo, cfg.Storage)
	require.Equal(t, 30*time.Second, cfg.Keycloak.CacheTTL)
	require.Equal(t, "superadmin", cfg.SuperAdmin.Identifier)
	require.Equal(t, "en", cfg.Channel.Language)
	require.Empty(t, cfg.Redis.Addr)
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", Storage: StorageMemory, Keycloak: KeycloakConfig{UserInfoURL: "http://sso/userinfo"}}
	require.NoError(t, base.Validate())

	noSecret := base
	noSecret.JWTSecret = ""
	require.Error(t, noSecret.Validate())

	noURL := base
	noURL.Keycloak.UserInfoURL = ""
	require.Error(t, noURL.Validate())

	badStorage := base
	badStorage.Storage = "postgres"
	require.Error(t, badStorage.Validate())
}
