// Package providers registers the application's own services: configuration,
// logging, the HTTP router and the type catalog.
//
// The services are keyed by plain types declared in Services, the
// application's own type registry.
package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-opengenerics/framework/catalog"
	"github.com/km-arc/go-opengenerics/framework/config"
	"github.com/km-arc/go-opengenerics/framework/container"
	"github.com/km-arc/go-opengenerics/framework/logging"
	"github.com/km-arc/go-opengenerics/framework/routing"
	"github.com/km-arc/go-opengenerics/framework/types"
)

var (
	// Services declares the application's service types.
	Services = types.NewRegistry()

	ConfigService  = Services.MustDeclare(types.NewPlain("Config"))
	LoggerService  = Services.MustDeclare(types.NewPlain("Logger"))
	RouterService  = Services.MustDeclare(types.NewPlain("Router"))
	CatalogService = Services.MustDeclare(types.NewPlain("CatalogStore"))
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider loads the configuration from .env files and the
// process environment.
//
// Binds:
//   - Config → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	EnvFiles []string
}

func (p *ConfigServiceProvider) Register(app *container.Container) {
	envFiles := p.EnvFiles
	app.Singleton(ConfigService, func(*container.Activation) (any, error) {
		return config.Load(envFiles...), nil
	})
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider builds the zap logger for the configured
// environment.
//
// Binds:
//   - Logger → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
}

func (p *LoggingServiceProvider) Register(app *container.Container) {
	app.Singleton(LoggerService, func(a *container.Activation) (any, error) {
		cfg, err := container.ResolveFrom[*config.Config](a, ConfigService)
		if err != nil {
			return nil, err
		}
		return logging.New(cfg)
	})
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router.
//
// Binds:
//   - Router → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
}

func (p *RoutingServiceProvider) Register(app *container.Container) {
	app.Singleton(RouterService, func(a *container.Activation) (any, error) {
		logger, err := container.ResolveFrom[*zap.Logger](a, LoggerService)
		if err != nil {
			return nil, err
		}
		return routing.New(logger), nil
	})
}

// ── CatalogServiceProvider ────────────────────────────────────────────────────

// CatalogServiceProvider loads the type catalog named by CATALOG_PATH the
// first time it is resolved.
//
// Binds:
//   - CatalogStore → *catalog.Store
type CatalogServiceProvider struct {
	container.BaseProvider
}

func (p *CatalogServiceProvider) Register(app *container.Container) {
	app.Singleton(CatalogService, func(a *container.Activation) (any, error) {
		cfg, err := container.ResolveFrom[*config.Config](a, ConfigService)
		if err != nil {
			return nil, err
		}
		logger, err := container.ResolveFrom[*zap.Logger](a, LoggerService)
		if err != nil {
			return nil, err
		}
		store := catalog.NewStore(logger)
		if _, err := store.Load(cfg.Catalog.Path); err != nil {
			return nil, err
		}
		return store, nil
	})
}

func (p *CatalogServiceProvider) Provides() []*types.Type {
	return []*types.Type{CatalogService}
}

func (p *CatalogServiceProvider) IsDeferred() bool { return true }
