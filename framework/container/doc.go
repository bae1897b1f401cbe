// Package container provides an IoC (Inversion of Control) container whose
// services are types of a types.Model, including open generic registrations
// that are closed per request.
//
// # Overview
//
// The container manages the instantiation and lifecycle of an application's
// dependencies. It supports transient bindings, singletons, pre-built
// instances, open generic registrations, decorators and contextual bindings.
// Go has no runtime constructor reflection, so values are produced by
// explicit factories (Bind) or activators (RegisterActivator).
//
// # Container Lifecycle
//
//  1. Create: c := container.New(registry, container.WithLogger(logger))
//  2. Register providers: providers.Register(&MyProvider{})
//  3. Boot: providers.Boot()        safe to resolve everything after this
//  4. Serve requests
//
// # Closed bindings
//
//	// Transient, new instance every Make()
//	c.Bind(clock, func(a *container.Activation) (any, error) { return &Clock{}, nil })
//
//	// Singleton, created once, reused
//	c.Singleton(cache, func(a *container.Activation) (any, error) {
//	    cfg, err := container.ResolveFrom[*config.Config](a, configType)
//	    if err != nil {
//	        return nil, err
//	    }
//	    return NewCache(cfg), nil
//	})
//
//	// Pre-built value
//	c.Instance(configType, cfg)
//
// # Open generic registrations
//
// A registration for a generic definition serves every closed type built
// from it. On Make the implementation is closed for the requested service
// with generic.Builder; registrations whose implementation cannot be closed
// are skipped and the next one, from the most recent backwards, is tried.
//
//	_ = c.Register(repositoryDef, genericRepositoryDef, container.Shared)
//	c.RegisterActivator(genericRepositoryDef, func(a *container.Activation) (any, error) {
//	    return NewRepository(a.Arg(0)), nil  // a.Implementation is GenericRepository<Customer>
//	})
//	repo, err := c.Make(types.MustParse(registry, "IRepository<Customer>"))
//
// # Decorators
//
//	_ = c.Decorate(repositoryDef, loggingRepositoryDef)
//	c.RegisterActivator(loggingRepositoryDef, func(a *container.Activation) (any, error) {
//	    return &LoggingRepository{Inner: a.Inner}, nil
//	})
//
// A decorator added with WithPredicate is applied wherever the predicate
// accepts the service; its own parameter constraints are not checked.
//
// # Contextual Binding
//
//	c.When(photoControllerDef).
//	    Needs(filesystem).
//	    Give(func(a *container.Activation) (any, error) { return &S3Filesystem{}, nil })
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(app *container.Container) {
//	    app.Singleton(mailer, func(a *container.Activation) (any, error) {
//	        return mail.NewSMTP(), nil
//	    })
//	}
//
//	providers := container.NewProviderRegistry(c)
//	providers.Register(&AppServiceProvider{})
//	providers.Boot()
//
// # Deferred Providers
//
// A deferred provider is registered on the first Make of one of the
// services it Provides. It must bind every one of them.
//
//	func (p *HeavyProvider) IsDeferred() bool          { return true }
//	func (p *HeavyProvider) Provides() []*types.Type { return []*types.Type{heavy} }
package container
