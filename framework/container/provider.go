package container

import (
	"sync"

	"github.com/km-arc/go-opengenerics/framework/types"
)

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider groups the registrations of one part of an application.
//
// Every provider must implement at minimum Register().
// Boot() is called after ALL providers have been registered, making it safe
// to resolve other bindings inside Boot().
//
//	type RepositoryProvider struct{ container.BaseProvider }
//
//	func (p *RepositoryProvider) Register(app *container.Container) {
//	    _ = app.Register(repositoryDef, genericRepositoryDef, container.Shared)
//	}
type ServiceProvider interface {
	// Register binds services into the container.
	// Do NOT resolve other bindings here; use Boot() for that.
	Register(app *Container)

	// Boot is called after all providers are registered.
	Boot(app *Container)

	// Provides returns the closed services this provider binds. Only
	// deferred providers need it.
	Provides() []*types.Type

	// IsDeferred returns true if this provider should be loaded lazily,
	// when one of its Provides() services is first resolved.
	IsDeferred() bool
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct that provides no-op implementations
// of Boot(), Provides(), and IsDeferred().
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) {}

func (p *BaseProvider) Provides() []*types.Type { return nil }

func (p *BaseProvider) IsDeferred() bool { return false }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry manages registration and booting of ServiceProviders,
// including deferred (lazy) providers.
type ProviderRegistry struct {
	mu         sync.Mutex
	app        *Container
	eager      []ServiceProvider
	deferred   map[string]ServiceProvider // service key → provider
	loaded     map[ServiceProvider]*sync.Once
	booted     bool
	registered map[ServiceProvider]bool
}

// NewProviderRegistry creates a registry bound to app.
func NewProviderRegistry(app *Container) *ProviderRegistry {
	return &ProviderRegistry{
		app:        app,
		deferred:   make(map[string]ServiceProvider),
		loaded:     make(map[ServiceProvider]*sync.Once),
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider and calls its Register() method (unless deferred).
func (r *ProviderRegistry) Register(provider ServiceProvider) {
	r.mu.Lock()
	if r.registered[provider] {
		r.mu.Unlock()
		return
	}
	r.registered[provider] = true

	if provider.IsDeferred() {
		r.loaded[provider] = new(sync.Once)
		for _, service := range provider.Provides() {
			r.deferred[service.Key()] = provider
		}
		r.mu.Unlock()
		// Intercept Make() calls for deferred services
		r.interceptDeferred(provider)
		return
	}

	r.eager = append(r.eager, provider)
	booted := r.booted
	r.mu.Unlock()

	provider.Register(r.app)
	// If already booted, boot this provider immediately
	if booted {
		provider.Boot(r.app)
	}
}

// interceptDeferred binds a placeholder for each deferred service. The first
// Make() triggers real registration (and boot, once the registry is booted).
func (r *ProviderRegistry) interceptDeferred(provider ServiceProvider) {
	for _, service := range provider.Provides() {
		service := service
		var placeholder *binding
		r.app.Bind(service, func(a *Activation) (any, error) {
			r.load(provider)
			// A provider that never rebinds the service leaves the
			// placeholder behind; drop it so registrations get their turn.
			r.app.unbindIfSame(service, placeholder)
			// Fresh chain: the placeholder itself is on the current one.
			return a.Container().Make(service)
		})
		placeholder = r.app.bindingOf(service)
	}
}

func (r *ProviderRegistry) load(provider ServiceProvider) {
	r.mu.Lock()
	once := r.loaded[provider]
	r.mu.Unlock()

	once.Do(func() {
		provider.Register(r.app)
		r.mu.Lock()
		for key, p := range r.deferred {
			if p == provider {
				delete(r.deferred, key)
			}
		}
		booted := r.booted
		r.mu.Unlock()
		if booted {
			provider.Boot(r.app)
		}
	})
}

// Boot calls Boot() on all eager providers.
// Must be called after ALL providers have been registered.
func (r *ProviderRegistry) Boot() {
	r.mu.Lock()
	if r.booted {
		r.mu.Unlock()
		return
	}
	r.booted = true
	eager := append([]ServiceProvider(nil), r.eager...)
	r.mu.Unlock()

	for _, provider := range eager {
		provider.Boot(r.app)
	}
}

// Booted returns true if Boot() has been called.
func (r *ProviderRegistry) Booted() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.booted
}

// Providers returns all registered eager providers.
func (r *ProviderRegistry) Providers() []ServiceProvider {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]ServiceProvider(nil), r.eager...)
}

// Deferred lists the services whose providers have not been loaded yet.
func (r *ProviderRegistry) Deferred() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.deferred))
	for key := range r.deferred {
		out = append(out, key)
	}
	return out
}
