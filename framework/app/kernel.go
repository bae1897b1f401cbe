package app

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-opengenerics/framework/catalog"
	"github.com/km-arc/go-opengenerics/framework/config"
	"github.com/km-arc/go-opengenerics/framework/container"
	gohttp "github.com/km-arc/go-opengenerics/framework/http"
	"github.com/km-arc/go-opengenerics/framework/providers"
	"github.com/km-arc/go-opengenerics/framework/routing"
)

// Version is reported by the health endpoint.
const Version = "0.1.0"

const shutdownTimeout = 10 * time.Second

// Application is the resolver service. It embeds the container holding the
// application's own services so providers can be added before Run.
type Application struct {
	*container.Container
	Providers *container.ProviderRegistry

	once    sync.Once
	handler http.Handler
	err     error
}

// New creates the application and registers the framework providers.
// Nothing is loaded until the first service is resolved.
func New(envFiles ...string) *Application {
	c := container.New(providers.Services)
	registry := container.NewProviderRegistry(c)

	app := &Application{
		Container: c,
		Providers: registry,
	}

	registry.Register(&providers.ConfigServiceProvider{EnvFiles: envFiles})
	registry.Register(&providers.LoggingServiceProvider{})
	registry.Register(&providers.RoutingServiceProvider{})
	registry.Register(&providers.CatalogServiceProvider{})

	return app
}

// Register adds a ServiceProvider to the application.
func (a *Application) Register(provider container.ServiceProvider) {
	a.Providers.Register(provider)
}

// Boot runs the Boot() phase on all providers.
func (a *Application) Boot() {
	a.Providers.Boot()
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, providers.ConfigService)
}

// Logger resolves the application logger.
func (a *Application) Logger() *zap.Logger {
	return container.MustResolve[*zap.Logger](a.Container, providers.LoggerService)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() *routing.Router {
	return container.MustResolve[*routing.Router](a.Container, providers.RouterService)
}

// Catalog resolves the catalog store, loading the catalog on first use.
func (a *Application) Catalog() (*catalog.Store, error) {
	return container.Resolve[*catalog.Store](a.Container, providers.CatalogService)
}

// Handler boots the application, loads the catalog and mounts the API on
// the router. Later calls return the same handler.
func (a *Application) Handler() (http.Handler, error) {
	a.once.Do(func() {
		if !a.Providers.Booted() {
			a.Boot()
		}
		store, err := a.Catalog()
		if err != nil {
			a.err = err
			return
		}
		router := a.Router()
		NewAPI(store).Routes(router)
		a.handler = router
	})
	return a.handler, a.err
}

// Run serves the API on APP_PORT until ctx is done, then shuts the server
// down gracefully. With CATALOG_WATCH set the catalog is reloaded whenever
// its file changes.
func (a *Application) Run(ctx context.Context) error {
	h, err := a.Handler()
	if err != nil {
		return err
	}
	cfg := a.Config()
	logger := a.Logger()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.Catalog.Watch {
		store, _ := a.Catalog()
		go func() {
			if err := catalog.Watch(ctx, cfg.Catalog.Path, store, logger); err != nil {
				logger.Error("catalog watch stopped", zap.Error(err))
			}
		}()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.App.Env),
			zap.String("catalog", cfg.Catalog.Path),
		)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, stop := context.WithTimeout(context.Background(), shutdownTimeout)
	defer stop()
	return srv.Shutdown(shutdownCtx)
}

// Environment returns the APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }

// IsDebug reports APP_DEBUG.
func (a *Application) IsDebug() bool { return a.Config().App.Debug }

// Controller is an embeddable base for HTTP controllers.
type Controller struct{}

func (c *Controller) Request(r *http.Request) *gohttp.Request {
	return gohttp.NewRequest(r)
}

func (c *Controller) Response(w http.ResponseWriter) *gohttp.Response {
	return gohttp.NewResponse(w)
}
