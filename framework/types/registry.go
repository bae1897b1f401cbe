package types

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// Model is the read-only view of the type system used by generic
// resolution. Implementations must be safe for concurrent reads.
type Model interface {
	// GenericParams returns the parameter slots of t, or nil when t is not a
	// generic definition.
	GenericParams(t *Type) []*Param

	// BaseTypesAndInterfaces returns t followed by every base type and
	// interface it derives from, transitively.
	BaseTypesAndInterfaces(t *Type) []*Type

	// IsAssignable reports whether a value of type source can be used where
	// target is expected.
	IsAssignable(target, source *Type) bool

	// MakeGeneric applies def to args, enforcing every declared constraint.
	// It reports failure through the error and never panics.
	MakeGeneric(def *Type, args []*Type) (*Type, error)
}

// Lookuper finds declared types by name. Parse depends on it.
type Lookuper interface {
	Lookup(name string, arity int) (*Type, bool)
	Named(name string) []*Type
}

// Builtins are declared by NewRegistry.
var Builtins = []string{"any", "bool", "byte", "error", "float64", "int", "int64", "rune", "string", "uint"}

// Any is the top type: everything is assignable to it.
const Any = "any"

type declaration struct {
	typ   *Type
	bases []*Type
}

// Registry is the in-memory Model: an explicit record of type shape facts.
type Registry struct {
	mu    sync.RWMutex
	decls map[string]*declaration
	names map[string][]*Type
}

var (
	_ Model    = (*Registry)(nil)
	_ Lookuper = (*Registry)(nil)
)

// NewRegistry returns a registry holding only the builtin plain types.
func NewRegistry() *Registry {
	r := &Registry{
		decls: make(map[string]*declaration),
		names: make(map[string][]*Type),
	}
	for _, name := range Builtins {
		_ = r.Declare(NewPlain(name))
	}
	return r
}

// Declare records t together with its direct base types and interfaces.
// Bases of a definition may refer to the definition's own parameter slots.
func (r *Registry) Declare(t *Type, bases ...*Type) error {
	if t == nil {
		return ErrNilType
	}
	if t.kind != Plain && t.kind != Definition {
		return fmt.Errorf("%w: %s is %s", ErrNotDeclarable, t, t.kind)
	}
	for _, b := range bases {
		if err := checkBase(t, b); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.decls[t.key]; exists {
		return &DuplicateTypeError{Key: t.key}
	}
	r.decls[t.key] = &declaration{typ: t, bases: append([]*Type(nil), bases...)}
	r.names[t.name] = append(r.names[t.name], t)
	return nil
}

// MustDeclare is like Declare but panics on error.
func (r *Registry) MustDeclare(t *Type, bases ...*Type) *Type {
	if err := r.Declare(t, bases...); err != nil {
		panic(err)
	}
	return t
}

func checkBase(owner, base *Type) error {
	if base == nil {
		return ErrNilType
	}
	if base.kind != Plain && base.kind != Constructed {
		return fmt.Errorf("%w: %s is %s", ErrInvalidBase, base, base.kind)
	}
	return checkParamsOwned(owner, base)
}

// checkParamsOwned verifies every parameter slot inside expr belongs to owner.
func checkParamsOwned(owner, expr *Type) error {
	var err error
	Walk(expr, func(n *Type) {
		if err == nil && n.kind == Parameter && n.param.owner.key != owner.key {
			err = fmt.Errorf("%w: %s in %s of %s", ErrForeignParameter, n, expr, owner)
		}
	})
	return err
}

// Lookup returns the declared type with the given name and parameter count.
func (r *Registry) Lookup(name string, arity int) (*Type, bool) {
	key := name
	if arity > 0 {
		key = definitionKey(name, arity)
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.decls[key]
	if !ok {
		return nil, false
	}
	return d.typ, true
}

// Named returns every declared type with the given name, any arity.
func (r *Registry) Named(name string) []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Type(nil), r.names[name]...)
}

// Types returns all declared types ordered by key.
func (r *Registry) Types() []*Type {
	r.mu.RLock()
	out := make([]*Type, 0, len(r.decls))
	for _, d := range r.decls {
		out = append(out, d.typ)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].key < out[j].key })
	return out
}

// Bases returns the direct bases declared for t, substituted for a
// constructed type.
func (r *Registry) Bases(t *Type) []*Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.directBases(t)
}

// Len is the number of declared types, builtins included.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.decls)
}

// GenericParams implements Model.
func (r *Registry) GenericParams(t *Type) []*Param {
	if t == nil || t.kind != Definition {
		return nil
	}
	return t.Params()
}

// BaseTypesAndInterfaces implements Model. The walk is breadth first in
// declaration order and collapses structurally equal entries.
func (r *Registry) BaseTypesAndInterfaces(t *Type) []*Type {
	if t == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var out []*Type
	queue := []*Type{t}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if seen[cur.key] {
			continue
		}
		seen[cur.key] = true
		out = append(out, cur)
		queue = append(queue, r.directBases(cur)...)
	}
	return out
}

// directBases must be called with r.mu held.
func (r *Registry) directBases(t *Type) []*Type {
	switch t.kind {
	case Plain, Definition:
		if d, ok := r.decls[t.key]; ok {
			return append([]*Type(nil), d.bases...)
		}
	case Constructed:
		d, ok := r.decls[t.def.key]
		if !ok {
			return nil
		}
		out := make([]*Type, len(d.bases))
		for i, b := range d.bases {
			out[i] = Substitute(b, t.def.params, t.args)
		}
		return out
	}
	return nil
}

// IsAssignable implements Model.
func (r *Registry) IsAssignable(target, source *Type) bool {
	if target == nil || source == nil {
		return false
	}
	if target.key == Any {
		return true
	}
	for _, b := range r.BaseTypesAndInterfaces(source) {
		if b.Equal(target) {
			return true
		}
	}
	return false
}

// MakeGeneric implements Model. Arguments that still contain parameter slots
// are accepted; constraints are only enforced between closed types.
func (r *Registry) MakeGeneric(def *Type, args []*Type) (*Type, error) {
	t, err := Construct(def, args...)
	if err != nil {
		return nil, err
	}
	for i, p := range def.params {
		for _, c := range p.constraints {
			if err := r.checkConstraint(def, p, c, args, args[i]); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}

func (r *Registry) checkConstraint(def *Type, p *Param, c Constraint, args []*Type, arg *Type) error {
	if arg.ContainsParams() {
		return nil
	}
	switch c.Kind {
	case DerivesFrom, Implements:
		if c.Type == nil {
			return nil
		}
		want := Substitute(c.Type, def.params, args)
		if want.ContainsParams() || r.IsAssignable(want, arg) {
			return nil
		}
		c = Constraint{Kind: c.Kind, Type: want}
	case EqualsParam:
		other := -1
		for j, q := range def.params {
			if q.name == c.Param {
				other = j
			}
		}
		if other < 0 || args[other].ContainsParams() || args[other].Equal(arg) {
			return nil
		}
	default:
		return nil
	}
	return &ConstraintViolationError{Param: p, Constraint: c, Argument: arg}
}

// IsConstraintViolation reports whether err came from a rejected constraint.
func IsConstraintViolation(err error) bool {
	var cv *ConstraintViolationError
	return errors.As(err, &cv)
}
