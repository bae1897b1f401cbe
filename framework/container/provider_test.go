package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-opengenerics/framework/container"
	"github.com/km-arc/go-opengenerics/framework/types"
)

var (
	eagerSvc    = types.NewPlain("EagerService")
	deferredSvc = types.NewPlain("DeferredService")
	alphaSvc    = types.NewPlain("Alpha")
	betaSvc     = types.NewPlain("Beta")
)

func newApp() *container.Container {
	return container.New(types.NewRegistry())
}

// ── stub providers ────────────────────────────────────────────────────────────

type eagerProvider struct {
	container.BaseProvider
	registerCalled bool
	bootCalled     bool
}

func (p *eagerProvider) Register(app *container.Container) {
	p.registerCalled = true
	app.Singleton(eagerSvc, value("eager"))
}

func (p *eagerProvider) Boot(app *container.Container) {
	p.bootCalled = true
}

// deferredProvider is lazy: only registered when DeferredService is first resolved.
type deferredProvider struct {
	container.BaseProvider
	registerCalled bool
	bootCalled     bool
}

func (p *deferredProvider) Register(app *container.Container) {
	p.registerCalled = true
	app.Singleton(deferredSvc, value("deferred-value"))
}

func (p *deferredProvider) Boot(app *container.Container) {
	p.bootCalled = true
}

func (p *deferredProvider) IsDeferred() bool { return true }

func (p *deferredProvider) Provides() []*types.Type { return []*types.Type{deferredSvc} }

// lazyProvider is deferred and runs register on load; it may bind nothing.
type lazyProvider struct {
	container.BaseProvider
	provides []*types.Type
	register func(app *container.Container)
	loads    int
}

func (p *lazyProvider) Register(app *container.Container) {
	p.loads++
	if p.register != nil {
		p.register(app)
	}
}

func (p *lazyProvider) IsDeferred() bool { return true }

func (p *lazyProvider) Provides() []*types.Type { return p.provides }

// multiProvider registers multiple abstracts.
type multiProvider struct {
	container.BaseProvider
}

func (p *multiProvider) Register(app *container.Container) {
	app.Singleton(alphaSvc, value("α"))
	app.Singleton(betaSvc, value("β"))
}

// ── ProviderRegistry ──────────────────────────────────────────────────────────

func TestProviderRegistry_EagerProvider(t *testing.T) {
	t.Parallel()
	c := newApp()
	reg := container.NewProviderRegistry(c)

	p := &eagerProvider{}
	reg.Register(p)
	assert.True(t, p.registerCalled, "Register runs immediately for eager providers")
	assert.False(t, p.bootCalled, "Boot waits for the registry")

	reg.Boot()
	assert.True(t, p.bootCalled)
	assert.Equal(t, "eager", c.MustMake(eagerSvc))
}

func TestProviderRegistry_Booted(t *testing.T) {
	t.Parallel()
	reg := container.NewProviderRegistry(newApp())
	assert.False(t, reg.Booted())

	reg.Register(&eagerProvider{})
	reg.Boot()
	reg.Boot()
	assert.True(t, reg.Booted())
}

func TestProviderRegistry_DuplicateRegisterIgnored(t *testing.T) {
	t.Parallel()
	reg := container.NewProviderRegistry(newApp())

	p := &eagerProvider{}
	reg.Register(p)
	reg.Register(p)
	assert.Len(t, reg.Providers(), 1)
}

// ── Deferred providers ────────────────────────────────────────────────────────

func TestProviderRegistry_DeferredProvider(t *testing.T) {
	t.Parallel()
	c := newApp()
	reg := container.NewProviderRegistry(c)

	p := &deferredProvider{}
	reg.Register(p)
	reg.Boot()
	assert.False(t, p.registerCalled, "Register waits for the first Make")
	require.Len(t, reg.Deferred(), 1)

	assert.Equal(t, "deferred-value", c.MustMake(deferredSvc))
	c.MustMake(deferredSvc)

	assert.True(t, p.registerCalled)
	assert.True(t, p.bootCalled)
	assert.Empty(t, reg.Deferred())
}

func TestProviderRegistry_DeferredProviderBindsNothing(t *testing.T) {
	t.Parallel()
	c := newApp()
	reg := container.NewProviderRegistry(c)

	p := &lazyProvider{provides: []*types.Type{deferredSvc}}
	reg.Register(p)
	reg.Boot()

	_, err := c.Make(deferredSvc)
	var missing *container.NoImplementationError
	require.ErrorAs(t, err, &missing)
	assert.True(t, missing.Service.Equal(deferredSvc))

	_, err = c.Make(deferredSvc)
	assert.ErrorAs(t, err, &missing)
	assert.Equal(t, 1, p.loads)
}

func TestProviderRegistry_DeferredProviderRegistersOpenService(t *testing.T) {
	t.Parallel()
	w := newWorld(t)
	c := container.New(w.reg)
	reg := container.NewProviderRegistry(c)

	customers := w.typ(t, "IRepository<Customer>")
	p := &lazyProvider{
		provides: []*types.Type{customers},
		register: func(app *container.Container) {
			require.NoError(t, app.Register(w.repo, w.generic, container.Transient))
		},
	}
	reg.Register(p)
	reg.Boot()

	got, err := c.Make(customers)
	require.NoError(t, err)
	assert.Equal(t, "GenericRepository<Customer>", got.(*container.Descriptor).String())
	assert.Equal(t, 1, p.loads)
}

// ── Multiple providers ────────────────────────────────────────────────────────

func TestProviderRegistry_MultipleProviders(t *testing.T) {
	t.Parallel()
	c := newApp()
	reg := container.NewProviderRegistry(c)
	reg.Register(&multiProvider{})
	reg.Register(&eagerProvider{})
	reg.Register(&deferredProvider{})
	reg.Boot()

	assert.Equal(t, "α", c.MustMake(alphaSvc))
	assert.Equal(t, "β", c.MustMake(betaSvc))
	assert.Equal(t, "eager", c.MustMake(eagerSvc))
	assert.Len(t, reg.Providers(), 2, "deferred providers are not listed")
}

// ── BaseProvider defaults ─────────────────────────────────────────────────────

func TestBaseProvider_Defaults(t *testing.T) {
	t.Parallel()
	var p container.BaseProvider

	assert.NotPanics(t, func() { p.Boot(newApp()) })
	assert.False(t, p.IsDeferred())
	assert.Empty(t, p.Provides())
}

// ── Late providers ────────────────────────────────────────────────────────────

func TestProviderRegistry_RegisterAfterBoot(t *testing.T) {
	t.Parallel()
	reg := container.NewProviderRegistry(newApp())
	reg.Boot()

	p := &eagerProvider{}
	reg.Register(p)
	assert.True(t, p.bootCalled, "a late provider boots immediately")
}
