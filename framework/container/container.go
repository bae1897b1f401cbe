package container

import (
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/km-arc/go-opengenerics/framework/generic"
	"github.com/km-arc/go-opengenerics/framework/types"
)

// ── Binding types ─────────────────────────────────────────────────────────────

// Factory builds the value for the service being activated.
type Factory func(a *Activation) (any, error)

// Lifetime controls whether a resolved value is cached.
type Lifetime int

const (
	// Transient builds a new value on every Make.
	Transient Lifetime = iota
	// Shared builds the value once per closed service and implementation.
	Shared
)

func (l Lifetime) String() string {
	if l == Shared {
		return "singleton"
	}
	return "transient"
}

// ParseLifetime accepts "transient", "singleton" and "shared". The empty
// string means Transient.
func ParseLifetime(s string) (Lifetime, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "transient":
		return Transient, nil
	case "singleton", "shared":
		return Shared, nil
	}
	return Transient, fmt.Errorf("container: unknown lifetime %q", s)
}

// binding is a closed service with its own factory.
type binding struct {
	factory  Factory
	lifetime Lifetime
}

// Registration maps a service, open or closed, to an implementation type.
type Registration struct {
	Service        *types.Type
	Implementation *types.Type
	Lifetime       Lifetime
}

type decorator struct {
	service   *types.Type
	decorator *types.Type
	predicate func(*types.Type) bool
}

// target is what a lookup settles on for one closed service.
type target struct {
	implementation *types.Type
	factory        Factory
	lifetime       Lifetime
}

// ── Container ─────────────────────────────────────────────────────────────────

// Container is an IoC container keyed by types of a types.Model.
//
// It supports:
//   - Bind / Singleton / Instance for closed services
//   - Register for open generic services, closed per request
//   - Decorate (wrap resolved instances, open or closed)
//   - Contextual binding (when A needs B, give it C)
//   - Resolved event callbacks
type Container struct {
	mu     sync.RWMutex
	model  types.Model
	logger *zap.Logger

	// closed service key → binding
	bindings map[string]*binding

	// closed service key → implementation key → cached instance
	instances map[string]map[string]any

	// in registration order; lookups walk it backwards
	registrations []Registration

	// implementation definition key → activator
	activators map[string]Factory

	decorators []decorator

	// contextual: when[implementation definition][service] = factory
	contextual map[string]map[string]Factory

	afterResolving []func(*types.Type, any)
}

// Option configures a Container.
type Option func(*Container)

// WithLogger sets the logger used for registration and resolution events.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Container) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an empty container answering type questions from model.
func New(model types.Model, opts ...Option) *Container {
	c := &Container{
		model:      model,
		logger:     zap.NewNop(),
		bindings:   make(map[string]*binding),
		instances:  make(map[string]map[string]any),
		activators: make(map[string]Factory),
		contextual: make(map[string]map[string]Factory),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.Named("container")
	return c
}

// Model returns the type model the container resolves against.
func (c *Container) Model() types.Model { return c.model }

// ── Registration ──────────────────────────────────────────────────────────────

// Bind registers a transient factory for a closed service. It panics when
// service is nil or open.
//
//	c.Bind(clock, func(a *container.Activation) (any, error) {
//	    return time.Now, nil
//	})
func (c *Container) Bind(service *types.Type, factory Factory) {
	c.bind(service, factory, Transient)
}

// Singleton registers a factory whose result is cached after first
// resolution.
func (c *Container) Singleton(service *types.Type, factory Factory) {
	c.bind(service, factory, Shared)
}

// Instance registers a pre-built value as a singleton.
func (c *Container) Instance(service *types.Type, instance any) {
	mustBeClosed(service)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings[service.Key()] = &binding{
		factory:  func(*Activation) (any, error) { return instance, nil },
		lifetime: Shared,
	}
	c.instances[service.Key()] = map[string]any{service.Key(): instance}
}

func (c *Container) bind(service *types.Type, factory Factory, lifetime Lifetime) {
	mustBeClosed(service)
	c.mu.Lock()
	defer c.mu.Unlock()
	// Drop any cached instance so it's rebuilt with the new factory
	delete(c.instances, service.Key())
	c.bindings[service.Key()] = &binding{factory: factory, lifetime: lifetime}
	c.logger.Debug("bound", zap.Stringer("service", service), zap.Stringer("lifetime", lifetime))
}

func (c *Container) bindingOf(service *types.Type) *binding {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bindings[service.Key()]
}

// unbindIfSame removes the binding of service only while it is still b.
func (c *Container) unbindIfSame(service *types.Type, b *binding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if b != nil && c.bindings[service.Key()] == b {
		delete(c.bindings, service.Key())
	}
}

// Register maps service to implementation. service is either a generic
// definition, which serves every closed type built from it, or a closed
// type. implementation may be open; it is closed for each requested service
// when resolved.
func (c *Container) Register(service, implementation *types.Type, lifetime Lifetime) error {
	if implementation == nil {
		return ErrNilType
	}
	if err := checkService(service, true); err != nil {
		return err
	}
	if !c.related(service, implementation) {
		return &UnrelatedImplementationError{Service: service, Implementation: implementation}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.registrations = append(c.registrations, Registration{
		Service:        service,
		Implementation: implementation,
		Lifetime:       lifetime,
	})
	c.logger.Debug("registered",
		zap.Stringer("service", service),
		zap.Stringer("implementation", implementation),
		zap.Stringer("lifetime", lifetime),
	)
	return nil
}

// RegisterActivator sets how instances of implementation are built once
// closed. implementation is a plain type or a generic definition; every
// closed type built from a definition shares its activator.
//
// Without an activator an implementation resolves to a *Descriptor.
func (c *Container) RegisterActivator(implementation *types.Type, factory Factory) {
	if implementation == nil {
		panic(ErrNilType.Error())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.activators[definitionKey(implementation)] = factory
}

// DecorateOption configures a decorator.
type DecorateOption func(*decorator)

// WithPredicate applies the decorator only to services for which fn
// returns true. The predicate stands in for the decorator's own parameter
// constraints, which are then not checked while matching.
func WithPredicate(fn func(service *types.Type) bool) DecorateOption {
	return func(d *decorator) { d.predicate = fn }
}

// Decorate wraps every instance resolved for service in an instance of
// decorator. Decorators apply in registration order; the previous value is
// available to the decorator's activator as Activation.Inner.
//
//	c.Decorate(repositoryDef, loggingRepositoryDef)
func (c *Container) Decorate(service, decoratorType *types.Type, opts ...DecorateOption) error {
	if decoratorType == nil {
		return ErrNilType
	}
	if err := checkService(service, true); err != nil {
		return err
	}
	if !c.related(service, decoratorType) {
		return &UnrelatedImplementationError{Service: service, Implementation: decoratorType}
	}

	d := decorator{service: service, decorator: decoratorType}
	for _, opt := range opts {
		opt(&d)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.decorators = append(c.decorators, d)
	c.logger.Debug("decorator added", zap.Stringer("service", service), zap.Stringer("decorator", decoratorType))
	return nil
}

// related reports whether some type in implementation's hierarchy is built
// from (or is) the service's definition.
func (c *Container) related(service, implementation *types.Type) bool {
	def := service.Definition()
	for _, t := range c.model.BaseTypesAndInterfaces(implementation) {
		if def == nil {
			if t.Equal(service) {
				return true
			}
			continue
		}
		if t.Definition() != nil && t.Definition().Equal(def) {
			return true
		}
	}
	return false
}

// ── Resolution ────────────────────────────────────────────────────────────────

// ImplementationFor returns the closed implementation type that Make would
// use for service. Closed bindings win; otherwise registrations are tried
// from the most recent to the oldest and the first one whose implementation
// closes for service is chosen.
func (c *Container) ImplementationFor(service *types.Type) (*types.Type, error) {
	if err := checkService(service, false); err != nil {
		return nil, err
	}
	tgt, err := c.lookup(service, nil)
	if err != nil {
		return nil, err
	}
	return tgt.implementation, nil
}

// Make resolves a closed service.
func (c *Container) Make(service *types.Type) (any, error) {
	return c.make(service, nil)
}

// MustMake is like Make but panics on error.
func (c *Container) MustMake(service *types.Type) any {
	instance, err := c.Make(service)
	if err != nil {
		panic(err.Error())
	}
	return instance
}

// MakeAll resolves service through its closed binding, if any, followed by
// every registration that can serve it, oldest first.
func (c *Container) MakeAll(service *types.Type) ([]any, error) {
	if err := checkService(service, false); err != nil {
		return nil, err
	}
	var targets []target
	c.mu.RLock()
	if b, ok := c.bindings[service.Key()]; ok {
		targets = append(targets, target{implementation: service, factory: b.factory, lifetime: b.lifetime})
	}
	regs := append([]Registration(nil), c.registrations...)
	c.mu.RUnlock()

	for _, r := range regs {
		if tgt, ok := c.close(r, service); ok {
			targets = append(targets, tgt)
		}
	}

	out := make([]any, 0, len(targets))
	for _, tgt := range targets {
		instance, err := c.build(service, tgt, nil)
		if err != nil {
			return nil, err
		}
		out = append(out, instance)
	}
	return out, nil
}

func (c *Container) make(service *types.Type, parent *Activation) (any, error) {
	if err := checkService(service, false); err != nil {
		return nil, err
	}
	if chain := parent.cycle(service); chain != nil {
		return nil, &CircularDependencyError{Chain: chain}
	}
	tgt, err := c.lookup(service, parent)
	if err != nil {
		return nil, err
	}
	return c.build(service, tgt, parent)
}

// lookup finds what serves service: a contextual binding of the requesting
// implementation, a closed binding, or the most recent registration that
// closes.
func (c *Container) lookup(service *types.Type, parent *Activation) (target, error) {
	c.mu.RLock()
	if parent != nil {
		if f, ok := c.contextual[definitionKey(parent.Implementation)][service.Key()]; ok {
			c.mu.RUnlock()
			return target{implementation: service, factory: f, lifetime: Transient}, nil
		}
	}
	if b, ok := c.bindings[service.Key()]; ok {
		c.mu.RUnlock()
		return target{implementation: service, factory: b.factory, lifetime: b.lifetime}, nil
	}
	regs := append([]Registration(nil), c.registrations...)
	c.mu.RUnlock()

	for i := len(regs) - 1; i >= 0; i-- {
		if tgt, ok := c.close(regs[i], service); ok {
			return tgt, nil
		}
	}
	return target{}, &NoImplementationError{Service: service}
}

// close builds the implementation of r for service, if r can serve it.
func (c *Container) close(r Registration, service *types.Type) (target, bool) {
	if !serves(r.Service, service) {
		return target{}, false
	}
	res := generic.NewBuilder(c.model, service, r.Implementation).BuildClosedGenericImplementation()
	if !res.IsValid() {
		c.logger.Debug("candidate rejected",
			zap.Stringer("service", service),
			zap.Stringer("implementation", r.Implementation),
		)
		return target{}, false
	}
	closed := res.ClosedGenericImplementation()
	return target{implementation: closed, factory: c.activatorFor(closed), lifetime: r.Lifetime}, true
}

func (c *Container) build(service *types.Type, tgt target, parent *Activation) (any, error) {
	svcKey, implKey := service.Key(), tgt.implementation.Key()
	if tgt.lifetime == Shared {
		c.mu.RLock()
		instance, ok := c.instances[svcKey][implKey]
		c.mu.RUnlock()
		if ok {
			return instance, nil
		}
	}

	a := &Activation{Service: service, Implementation: tgt.implementation, container: c, parent: parent}
	instance, err := tgt.factory(a)
	if err != nil {
		return nil, &FactoryError{Service: service, Err: err}
	}
	if instance, err = c.decorate(service, instance, parent); err != nil {
		return nil, err
	}

	if tgt.lifetime == Shared {
		c.mu.Lock()
		if existing, ok := c.instances[svcKey][implKey]; ok {
			c.mu.Unlock()
			return existing, nil
		}
		if c.instances[svcKey] == nil {
			c.instances[svcKey] = make(map[string]any)
		}
		c.instances[svcKey][implKey] = instance
		c.mu.Unlock()
	}

	c.logger.Debug("resolved", zap.Stringer("service", service), zap.Stringer("implementation", tgt.implementation))
	c.fireAfterResolving(service, instance)
	return instance, nil
}

func (c *Container) decorate(service *types.Type, instance any, parent *Activation) (any, error) {
	c.mu.RLock()
	decs := append([]decorator(nil), c.decorators...)
	c.mu.RUnlock()

	for _, d := range decs {
		if !serves(d.service, service) {
			continue
		}
		if d.predicate != nil && !d.predicate(service) {
			continue
		}
		b := generic.NewBuilder(c.model, service, d.decorator)
		b.SuppressTypeConstraintChecks = d.predicate != nil
		res := b.BuildClosedGenericImplementation()
		if !res.IsValid() {
			c.logger.Debug("decorator skipped", zap.Stringer("service", service), zap.Stringer("decorator", d.decorator))
			continue
		}

		closed := res.ClosedGenericImplementation()
		a := &Activation{Service: service, Implementation: closed, Inner: instance, container: c, parent: parent}
		next, err := c.activatorFor(closed)(a)
		if err != nil {
			return nil, &FactoryError{Service: service, Err: err}
		}
		instance = next
	}
	return instance, nil
}

func (c *Container) activatorFor(implementation *types.Type) Factory {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if f, ok := c.activators[definitionKey(implementation)]; ok {
		return f
	}
	return describe
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Bound reports whether service can be resolved. For a generic definition it
// reports whether an open registration exists for it.
func (c *Container) Bound(service *types.Type) bool {
	if service == nil {
		return false
	}
	if service.IsGenericDefinition() {
		c.mu.RLock()
		defer c.mu.RUnlock()
		for _, r := range c.registrations {
			if r.Service.Equal(service) {
				return true
			}
		}
		return false
	}
	_, err := c.ImplementationFor(service)
	return err == nil
}

// Resolved reports whether a singleton of service has been built.
func (c *Container) Resolved(service *types.Type) bool {
	if service == nil {
		return false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.instances[service.Key()]) > 0
}

// Forget removes the binding, cached instances and registrations of service.
func (c *Container) Forget(service *types.Type) {
	if service == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.bindings, service.Key())
	delete(c.instances, service.Key())
	kept := c.registrations[:0]
	for _, r := range c.registrations {
		if !r.Service.Equal(service) {
			kept = append(kept, r)
		}
	}
	c.registrations = kept
}

// Flush resets the entire container. The model and logger are kept.
func (c *Container) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindings = make(map[string]*binding)
	c.instances = make(map[string]map[string]any)
	c.registrations = nil
	c.activators = make(map[string]Factory)
	c.decorators = nil
	c.contextual = make(map[string]map[string]Factory)
}

// Registrations returns a copy of the registrations in registration order.
func (c *Container) Registrations() []Registration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Registration(nil), c.registrations...)
}

// Bindings returns the closed services bound with Bind, Singleton or
// Instance (for debugging).
func (c *Container) Bindings() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]string, 0, len(c.bindings))
	for k := range c.bindings {
		out = append(out, k)
	}
	return out
}

func checkService(t *types.Type, allowDefinition bool) error {
	switch {
	case t == nil:
		return ErrNilType
	case t.Kind() == types.Parameter:
		return fmt.Errorf("%w: %s", ErrParameterService, t)
	case t.IsGenericDefinition():
		if allowDefinition {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrOpenService, t)
	case t.ContainsParams():
		return fmt.Errorf("%w: %s", ErrOpenService, t)
	}
	return nil
}

func mustBeClosed(t *types.Type) {
	if err := checkService(t, false); err != nil {
		panic(err.Error())
	}
}

// serves reports whether a registration for registered applies to service.
func serves(registered, service *types.Type) bool {
	if registered.IsGenericDefinition() {
		return service.IsConstructed() && service.Definition().Equal(registered)
	}
	return registered.Equal(service)
}

// definitionKey keys activators and contextual bindings: closed types share
// the entry of their definition.
func definitionKey(t *types.Type) string {
	if d := t.Definition(); d != nil {
		return d.Key()
	}
	return t.Key()
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

// AfterResolving registers a callback fired after any service is built.
// Cached singletons do not fire it again.
func (c *Container) AfterResolving(cb func(service *types.Type, instance any)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterResolving = append(c.afterResolving, cb)
}

func (c *Container) fireAfterResolving(service *types.Type, instance any) {
	c.mu.RLock()
	cbs := c.afterResolving
	c.mu.RUnlock()
	for _, cb := range cbs {
		cb(service, instance)
	}
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Make and type-asserts the result.
//
//	// Instead of: v, err := c.Make(repo); r := v.(*CustomerRepository)
//	// Write:      r, err := container.Resolve[*CustomerRepository](c, repo)
func Resolve[T any](c *Container, service *types.Type) (T, error) {
	var zero T
	instance, err := c.Make(service)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: Resolve[%T]: [%s] resolved to %T", zero, service, instance)
	}
	return typed, nil
}

// ResolveFrom is Resolve for a dependency requested inside a Factory.
func ResolveFrom[T any](a *Activation, service *types.Type) (T, error) {
	var zero T
	instance, err := a.Make(service)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("container: ResolveFrom[%T]: [%s] resolved to %T", zero, service, instance)
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](c *Container, service *types.Type) T {
	typed, err := Resolve[T](c, service)
	if err != nil {
		panic(err.Error())
	}
	return typed
}
