package config

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// Storage backends.
const (
	StorageMongo  = "mongo"
	StorageMemory = "memory"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	Storage   string        `env:"STORAGE,   default=mongo"`

	Keycloak   KeycloakConfig
	SuperAdmin SuperAdminConfig
	Channel    DefaultChannelConfig
	Mongo      MongoConfig
	Redis      RedisConfig
}

type KeycloakConfig struct {
	UserInfoURL string        `env:"KEYCLOAK_USERINFO_URL"`
	Timeout     time.Duration `env:"KEYCLOAK_TIMEOUT,   default=10s"`
	CacheTTL    time.Duration `env:"KEYCLOAK_CACHE_TTL, default=30s"`
}

type SuperAdminConfig struct {
	Identifier string `env:"SUPERADMIN_IDENTIFIER, default=superadmin"`
	Password   string `env:"SUPERADMIN_PASSWORD"`
}

type DefaultChannelConfig struct {
	Currency         string `env:"DEFAULT_CURRENCY,           default=USD"`
	Language         string `env:"DEFAULT_LANGUAGE,           default=en"`
	PricesIncludeTax bool   `env:"DEFAULT_PRICES_INCLUDE_TAX, default=false"`
}

type MongoConfig struct {
	URI          string `env:"MONGO_URI,          default=mongodb://localhost:27017"`
	Database     string `env:"MONGO_DB,           default=keycloak_plugins"`
	Transactions bool   `env:"MONGO_TRANSACTIONS, default=false"`
}

// RedisConfig with an empty address selects the in-process identity cache.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// Load reads a .env file when present, then configuration from environment
// variables using go-envconfig.
func Load(ctx context.Context) (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks settings that have no usable default.
func (c *Config) Validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	if c.Keycloak.UserInfoURL == "" {
		return fmt.Errorf("config: KEYCLOAK_USERINFO_URL is required")
	}
	if c.Storage != StorageMongo && c.Storage != StorageMemory {
		return fmt.Errorf("config: STORAGE must be %q or %q, got %q", StorageMongo, StorageMemory, c.Storage)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}
