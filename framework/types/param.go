package types

import "strconv"

// Param is a generic parameter slot owned by exactly one definition.
type Param struct {
	owner       *Type
	name        string
	position    int
	constraints []Constraint
	typ         *Type
}

func newParam(owner *Type, name string, position int) *Param {
	p := &Param{owner: owner, name: name, position: position}
	p.typ = &Type{
		kind:  Parameter,
		name:  name,
		key:   owner.key + "!" + strconv.Itoa(position),
		open:  true,
		param: p,
	}
	return p
}

// Name is the declared name of the slot, e.g. "T".
func (p *Param) Name() string { return p.name }

// Position is the zero-based index of the slot in its definition.
func (p *Param) Position() int { return p.position }

// Owner is the definition the slot belongs to.
func (p *Param) Owner() *Type { return p.owner }

// Type returns the slot as a type expression, for use in bases and
// constraints of the owning definition.
func (p *Param) Type() *Type { return p.typ }

// Constraints returns the declared constraints of the slot.
func (p *Param) Constraints() []Constraint {
	return append([]Constraint(nil), p.constraints...)
}

// Constrain attaches constraints. Call it while declaring the owner only.
func (p *Param) Constrain(cs ...Constraint) *Param {
	p.constraints = append(p.constraints, cs...)
	return p
}

func (p *Param) String() string { return p.name }

// ConstraintKind classifies a Constraint.
type ConstraintKind uint8

const (
	// None places no requirement on the argument.
	None ConstraintKind = iota
	// DerivesFrom requires the argument to have Type as a base type.
	DerivesFrom
	// Implements requires the argument to implement the interface Type.
	Implements
	// EqualsParam requires the argument to equal the argument of the sibling
	// slot named Param. It cannot be decided while unifying one structure and
	// is only enforced by Model.MakeGeneric.
	EqualsParam
)

func (k ConstraintKind) String() string {
	switch k {
	case None:
		return "none"
	case DerivesFrom:
		return "derives"
	case Implements:
		return "implements"
	case EqualsParam:
		return "equals"
	}
	return "constraint(" + strconv.Itoa(int(k)) + ")"
}

// Constraint restricts the arguments a parameter slot accepts.
type Constraint struct {
	Kind  ConstraintKind
	Type  *Type
	Param string
}

// MustDeriveFrom builds a DerivesFrom constraint.
func MustDeriveFrom(t *Type) Constraint { return Constraint{Kind: DerivesFrom, Type: t} }

// MustImplement builds an Implements constraint.
func MustImplement(t *Type) Constraint { return Constraint{Kind: Implements, Type: t} }

// MustEqual builds an EqualsParam constraint against the sibling slot name.
func MustEqual(param string) Constraint { return Constraint{Kind: EqualsParam, Param: param} }

// Structural reports whether the constraint can be decided from the declared
// hierarchy alone.
func (c Constraint) Structural() bool {
	return (c.Kind == DerivesFrom || c.Kind == Implements) && c.Type != nil
}

func (c Constraint) String() string {
	switch c.Kind {
	case DerivesFrom, Implements:
		return c.Kind.String() + " " + c.Type.String()
	case EqualsParam:
		return "equals " + c.Param
	}
	return c.Kind.String()
}
