package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tradepost/keycloak-plugins/internal/api/metrics"
	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
	"github.com/tradepost/keycloak-plugins/internal/core/service"
	memcache "github.com/tradepost/keycloak-plugins/internal/infrastructure/cache/memory"
	"github.com/tradepost/keycloak-plugins/internal/infrastructure/db/memory"
	mongostore "github.com/tradepost/keycloak-plugins/internal/infrastructure/db/mongo"
	redisstore "github.com/tradepost/keycloak-plugins/internal/infrastructure/db/redis"
	"github.com/tradepost/keycloak-plugins/internal/infrastructure/keycloak"
	"github.com/tradepost/keycloak-plugins/internal/pkg/config"
	"github.com/tradepost/keycloak-plugins/pkg/logger"
)

// app holds the wired services shared by every command.
type app struct {
	cfg     *config.Config
	log     zerolog.Logger
	repos   ports.Repositories
	health  map[string]ports.HealthChecker
	closers []func(context.Context) error

	auth    *service.AuthService
	admins  *service.AdministratorService
	vendors *service.VendorService
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	a := &app{
		cfg:    cfg,
		log:    logger.Get(),
		health: make(map[string]ports.HealthChecker),
	}

	if err := a.openStorage(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}
	cache, err := a.openCache(ctx)
	if err != nil {
		a.close(ctx)
		return nil, err
	}

	client, err := keycloak.NewClient(keycloak.Config{
		UserInfoURL: cfg.Keycloak.UserInfoURL,
		Timeout:     cfg.Keycloak.Timeout,
	}, logger.Component("keycloak"))
	if err != nil {
		a.close(ctx)
		return nil, err
	}
	userInfo := keycloak.NewCachedFetcher(client, cache, cfg.Keycloak.CacheTTL, logger.Component("keycloak"))

	external := service.NewExternalAuthService(a.repos)
	a.auth = service.NewAuthService(
		a.repos.Users,
		a.repos.Roles,
		map[string]ports.AuthenticationStrategy{
			domain.APITypeAdmin: service.NewKeycloakAdminStrategy(userInfo, external, logger.Component("auth")),
			domain.APITypeShop:  service.NewKeycloakCustomerStrategy(userInfo, external, logger.Component("auth")),
		},
		cfg.JWTSecret,
		cfg.TokenTTL,
		logger.Component("auth"),
	)
	a.admins = service.NewAdministratorService(a.repos, external, logger.Component("administrators"))

	contexts := service.NewRequestContextFactory(a.repos.Users, a.repos.Roles, service.SuperAdminConfig{
		Identifier: cfg.SuperAdmin.Identifier,
	})
	a.vendors = service.NewVendorService(
		a.repos,
		a.admins,
		contexts,
		domain.DefaultPlatformOptions(),
		logger.Component("vendors"),
		service.WithObserver(metrics.StepRecorder{}),
	)

	bootstrap := service.NewBootstrapper(a.repos, service.BootstrapConfig{
		SuperAdminIdentifier: cfg.SuperAdmin.Identifier,
		SuperAdminPassword:   cfg.SuperAdmin.Password,
		DefaultCurrency:      cfg.Channel.Currency,
		DefaultLanguage:      cfg.Channel.Language,
		PricesIncludeTax:     cfg.Channel.PricesIncludeTax,
	}, logger.Component("bootstrap"))
	if err := bootstrap.Run(ctx); err != nil {
		a.close(ctx)
		return nil, err
	}

	return a, nil
}

func (a *app) openStorage(ctx context.Context) error {
	if a.cfg.Storage == config.StorageMemory {
		store := memory.New()
		a.repos = store.Repositories()
		a.health["storage"] = store
		a.log.Warn().Msg("using in-memory storage; data is lost on restart")
		return nil
	}

	client, db, err := mongostore.Connect(ctx, mongostore.Config{
		URI:          a.cfg.Mongo.URI,
		Database:     a.cfg.Mongo.Database,
		Transactions: a.cfg.Mongo.Transactions,
	})
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	a.closers = append(a.closers, client.Disconnect)

	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	a.repos = mongostore.NewRepositories(db, a.cfg.Mongo.Transactions)
	a.health["mongodb"] = mongostore.NewPinger(client)
	a.log.Info().Str("database", a.cfg.Mongo.Database).Msg("connected to mongodb")
	return nil
}

func (a *app) openCache(ctx context.Context) (ports.UserInfoCache, error) {
	if a.cfg.Redis.Addr == "" {
		cache := memcache.NewUserInfoCache(a.cfg.Keycloak.CacheTTL)
		a.health["cache"] = cache
		return cache, nil
	}

	rdb, err := redisstore.Connect(ctx, redisstore.Config{
		Addr:     a.cfg.Redis.Addr,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}
	a.closers = append(a.closers, func(context.Context) error { return rdb.Close() })
	a.health["redis"] = redisstore.NewPinger(rdb)
	a.log.Info().Str("addr", a.cfg.Redis.Addr).Msg("connected to redis")
	return redisstore.NewUserInfoCache(rdb), nil
}

func (a *app) close(ctx context.Context) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			a.log.Warn().Err(err).Msg("error closing connection")
		}
	}
	a.closers = nil
}
