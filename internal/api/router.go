package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	// Registers the OpenAPI document served under /swagger.
	_ "github.com/tradepost/keycloak-plugins/docs"

	"github.com/tradepost/keycloak-plugins/internal/api/handler"
	"github.com/tradepost/keycloak-plugins/internal/api/middleware"
	"github.com/tradepost/keycloak-plugins/internal/core/domain"
	"github.com/tradepost/keycloak-plugins/internal/core/ports"
)

// Deps holds the services the HTTP layer is wired to.
type Deps struct {
	AuthService          ports.AuthService
	AdministratorService ports.AdministratorService
	VendorService        ports.VendorService
	HealthChecks         map[string]ports.HealthChecker
	JWTSecret            string
	Logger               zerolog.Logger

	// Registry receives the HTTP request metrics. Nil means the default
	// Prometheus registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if deps.Registry != nil {
		registerer, gatherer = deps.Registry, deps.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  "keycloak_plugins",
		Subsystem:  "http",
		Registerer: registerer,
	}))

	authHandler := handler.NewAuthHandler(deps.AuthService)
	adminHandler := handler.NewAdministratorHandler(deps.AdministratorService)
	vendorHandler := handler.NewVendorHandler(deps.VendorService)
	requireSession := middleware.Auth(deps.JWTSecret)

	// --- Admin API ---
	admin := e.Group("/admin-api")
	admin.POST("/authenticate", authHandler.AdminAuthenticate)
	admin.POST("/login", authHandler.PasswordLogin)
	admin.POST("/administrators/keycloak", adminHandler.CreateKeycloak,
		requireSession, middleware.RequirePermission(domain.PermissionCreateAdministrator))

	// --- Shop API ---
	shop := e.Group("/shop-api")
	shop.POST("/authenticate", authHandler.ShopAuthenticate)
	shop.POST("/vendors/keycloak", vendorHandler.CreateKeycloak,
		requireSession, middleware.RequirePermission(domain.PermissionAuthenticated))

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	healthDepsHandler := handler.NewHealthDependenciesHandler(deps.HealthChecks)

	e.GET("/health", healthHandler.Liveness)            // liveness  – is the process alive?
	e.GET("/health/ready", healthDepsHandler.Readiness) // readiness – are dependencies up?

	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
