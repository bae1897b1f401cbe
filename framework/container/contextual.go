package container

import "github.com/km-arc/go-opengenerics/framework/types"

// ContextualBuilder implements the fluent contextual binding API.
//
//	c.When(photoControllerDef).Needs(filesystem).Give(func(a *container.Activation) (any, error) {
//	    return filesystem.NewS3(...), nil
//	})
type ContextualBuilder struct {
	container      *Container
	implementation *types.Type
	needs          *types.Type
}

// When starts a contextual binding chain for an implementation. A generic
// definition covers every closed type built from it.
func (c *Container) When(implementation *types.Type) *ContextualBuilder {
	return &ContextualBuilder{container: c, implementation: implementation}
}

// Needs specifies which service the implementation depends on.
func (b *ContextualBuilder) Needs(service *types.Type) *ContextualBuilder {
	b.needs = service
	return b
}

// Give provides the factory used when the implementation resolves the
// specified service through its Activation.
func (b *ContextualBuilder) Give(factory Factory) {
	if b.implementation == nil || b.needs == nil {
		panic(ErrNilType.Error())
	}
	c := b.container
	c.mu.Lock()
	defer c.mu.Unlock()

	key := definitionKey(b.implementation)
	if _, ok := c.contextual[key]; !ok {
		c.contextual[key] = make(map[string]Factory)
	}
	c.contextual[key][b.needs.Key()] = factory
}

// GiveValue is a shorthand for Give when the value is pre-built.
func (b *ContextualBuilder) GiveValue(value any) {
	b.Give(func(*Activation) (any, error) { return value, nil })
}
