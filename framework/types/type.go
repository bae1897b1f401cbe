package types

import (
	"strconv"
	"strings"
)

// Kind classifies a Type.
type Kind uint8

const (
	// Plain is a non-generic named type.
	Plain Kind = iota
	// Definition is an open generic definition such as IRepository<>.
	Definition
	// Constructed is a definition applied to an argument list.
	Constructed
	// Parameter is a generic parameter slot used as a type expression.
	Parameter
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Definition:
		return "definition"
	case Constructed:
		return "constructed"
	case Parameter:
		return "parameter"
	default:
		return "kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Type is a node of the type model. It is immutable once built.
type Type struct {
	kind Kind
	name string
	key  string
	open bool

	params []*Param // Definition
	def    *Type    // Constructed
	args   []*Type  // Constructed
	param  *Param   // Parameter
}

// NewPlain returns a non-generic type.
func NewPlain(name string) *Type {
	return &Type{kind: Plain, name: name, key: name}
}

// NewDefinition returns an open generic definition with one slot per name.
// Without parameter names it degrades to a plain type.
//
// Constraints on the slots must be attached (Param.Constrain) before the
// definition is shared with other goroutines.
func NewDefinition(name string, params ...string) *Type {
	if len(params) == 0 {
		return NewPlain(name)
	}
	t := &Type{kind: Definition, name: name, key: definitionKey(name, len(params))}
	t.params = make([]*Param, len(params))
	for i, p := range params {
		t.params[i] = newParam(t, p, i)
	}
	return t
}

// Construct applies def to args. The argument count must equal the number of
// parameter slots of def.
func Construct(def *Type, args ...*Type) (*Type, error) {
	if def == nil {
		return nil, ErrNilType
	}
	if def.kind != Definition {
		return nil, notDefinition(def)
	}
	if len(args) != len(def.params) {
		return nil, &ArityMismatchError{Definition: def, Got: len(args)}
	}
	for _, a := range args {
		if a == nil {
			return nil, ErrNilType
		}
	}
	return newConstructed(def, append([]*Type(nil), args...)), nil
}

// MustConstruct is like Construct but panics on error.
func MustConstruct(def *Type, args ...*Type) *Type {
	t, err := Construct(def, args...)
	if err != nil {
		panic(err)
	}
	return t
}

// SelfApplied returns def constructed over its own parameter types, the form
// in which an open definition appears as a base of itself. Anything other
// than a definition is returned unchanged.
func SelfApplied(def *Type) *Type {
	if def == nil || def.kind != Definition {
		return def
	}
	args := make([]*Type, len(def.params))
	for i, p := range def.params {
		args[i] = p.typ
	}
	return newConstructed(def, args)
}

func newConstructed(def *Type, args []*Type) *Type {
	t := &Type{kind: Constructed, name: def.name, def: def, args: args}
	keys := make([]string, len(args))
	for i, a := range args {
		keys[i] = a.key
		t.open = t.open || a.open
	}
	t.key = def.key + "[" + strings.Join(keys, ",") + "]"
	return t
}

func definitionKey(name string, arity int) string {
	return name + "`" + strconv.Itoa(arity)
}

// Kind reports the kind of t.
func (t *Type) Kind() Kind { return t.kind }

// Name is the declared name without arguments.
func (t *Type) Name() string { return t.name }

// Key is the structural identity of t. Equal types have equal keys.
func (t *Type) Key() string {
	if t == nil {
		return ""
	}
	return t.key
}

// IsGenericDefinition reports whether t is an open generic definition.
func (t *Type) IsGenericDefinition() bool { return t.kind == Definition }

// IsConstructed reports whether t was built from a generic definition.
func (t *Type) IsConstructed() bool { return t.kind == Constructed }

// ContainsParams reports whether a parameter slot occurs anywhere in t.
// A generic definition counts as open.
func (t *Type) ContainsParams() bool { return t.open || t.kind == Definition }

// Params returns the parameter slots of a definition.
func (t *Type) Params() []*Param {
	return append([]*Param(nil), t.params...)
}

// Arity is the number of parameter slots (Definition) or arguments
// (Constructed).
func (t *Type) Arity() int {
	switch t.kind {
	case Definition:
		return len(t.params)
	case Constructed:
		return len(t.args)
	}
	return 0
}

// Definition returns the generic definition a constructed type was built
// from. A definition returns itself; anything else returns nil.
func (t *Type) Definition() *Type {
	switch t.kind {
	case Constructed:
		return t.def
	case Definition:
		return t
	}
	return nil
}

// Args returns the argument list of a constructed type.
func (t *Type) Args() []*Type {
	return append([]*Type(nil), t.args...)
}

// Param returns the slot a Parameter type stands for.
func (t *Type) Param() *Param { return t.param }

// Equal compares two types structurally.
func (t *Type) Equal(other *Type) bool {
	if t == nil || other == nil {
		return t == other
	}
	return t == other || t.key == other.key
}

func (t *Type) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.kind {
	case Definition:
		return t.name + "<" + strings.Repeat(",", len(t.params)-1) + ">"
	case Constructed:
		var b strings.Builder
		b.WriteString(t.name)
		b.WriteByte('<')
		for i, a := range t.args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
		return b.String()
	}
	return t.name
}

// Substitute replaces every occurrence of params[i] in t with args[i].
// Slots not listed are left in place. params and args must be the same
// length.
func Substitute(t *Type, params []*Param, args []*Type) *Type {
	if t == nil || !t.open || len(params) == 0 {
		return t
	}
	bindings := make(map[string]*Type, len(params))
	for i, p := range params {
		if i < len(args) && args[i] != nil {
			bindings[p.typ.key] = args[i]
		}
	}
	return substitute(t, bindings)
}

func substitute(t *Type, bindings map[string]*Type) *Type {
	switch {
	case !t.open:
		return t
	case t.kind == Parameter:
		if b, ok := bindings[t.key]; ok {
			return b
		}
		return t
	case t.kind == Constructed:
		args := make([]*Type, len(t.args))
		for i, a := range t.args {
			args[i] = substitute(a, bindings)
		}
		return newConstructed(t.def, args)
	}
	return t
}

// Walk calls fn for t and, depth first, for every argument nested inside it.
func Walk(t *Type, fn func(*Type)) {
	if t == nil {
		return
	}
	fn(t)
	for _, a := range t.args {
		Walk(a, fn)
	}
}
