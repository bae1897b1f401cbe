package container

import (
	"strings"

	"github.com/km-arc/go-opengenerics/framework/types"
)

// Activation is handed to a Factory while a service is being built.
type Activation struct {
	// Service is the closed service that was requested.
	Service *types.Type

	// Implementation is the closed type being built. For a Bind factory it
	// is the service itself.
	Implementation *types.Type

	// Inner is the value being decorated; nil outside decorators.
	Inner any

	container *Container
	parent    *Activation
}

// Container returns the container performing the activation.
func (a *Activation) Container() *Container { return a.container }

// Make resolves a dependency of the value being built. Contextual bindings
// of the current implementation apply, and a dependency on a service that
// is already being built fails with a CircularDependencyError.
func (a *Activation) Make(service *types.Type) (any, error) {
	return a.container.make(service, a)
}

// Arg returns the i-th type argument of the closed implementation, or nil.
func (a *Activation) Arg(i int) *types.Type {
	args := a.Implementation.Args()
	if i < 0 || i >= len(args) {
		return nil
	}
	return args[i]
}

// cycle returns the chain from the outermost activation to service when
// service is already being built, or nil.
func (a *Activation) cycle(service *types.Type) []*types.Type {
	var chain []*types.Type
	found := false
	for p := a; p != nil; p = p.parent {
		chain = append(chain, p.Service)
		if p.Service.Equal(service) {
			found = true
		}
	}
	if !found {
		return nil
	}
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return append(chain, service)
}

// Descriptor is the value built for an implementation without an activator.
type Descriptor struct {
	Type  *types.Type
	Inner any
}

func describe(a *Activation) (any, error) {
	return &Descriptor{Type: a.Implementation, Inner: a.Inner}, nil
}

// String renders the type, followed by the decorated value in parentheses.
func (d *Descriptor) String() string {
	var b strings.Builder
	b.WriteString(d.Type.String())
	if inner, ok := d.Inner.(*Descriptor); ok {
		b.WriteByte('(')
		b.WriteString(inner.String())
		b.WriteByte(')')
	}
	return b.String()
}
