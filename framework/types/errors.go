package types

import (
	"errors"
	"fmt"
	"strconv"
)

var (
	// ErrNilType is returned when a nil *Type is passed where a type is required.
	ErrNilType = errors.New("types: nil type")

	// ErrNotDefinition is returned when a generic definition was required.
	ErrNotDefinition = errors.New("types: not a generic type definition")

	// ErrNotDeclarable is returned when declaring something other than a plain
	// type or a generic definition.
	ErrNotDeclarable = errors.New("types: only plain types and generic definitions can be declared")

	// ErrInvalidBase is returned when a declared base is a bare definition or
	// a parameter slot.
	ErrInvalidBase = errors.New("types: base must be a plain or constructed type")

	// ErrForeignParameter is returned when a base or constraint refers to a
	// parameter slot of another definition.
	ErrForeignParameter = errors.New("types: reference to a parameter of another definition")
)

func notDefinition(t *Type) error {
	return fmt.Errorf("%w: %s is %s", ErrNotDefinition, t, t.kind)
}

// ArityMismatchError reports a definition applied to the wrong number of
// arguments.
type ArityMismatchError struct {
	Definition *Type
	Got        int
}

func (e *ArityMismatchError) Error() string {
	return "types: " + e.Definition.String() + " takes " + strconv.Itoa(len(e.Definition.params)) +
		" type arguments, got " + strconv.Itoa(e.Got)
}

// DuplicateTypeError is returned by Registry.Declare for a key that is
// already declared.
type DuplicateTypeError struct{ Key string }

func (e *DuplicateTypeError) Error() string {
	return "types: duplicate declaration of " + strconv.Quote(e.Key)
}

// ConstraintViolationError is returned by MakeGeneric when an argument does
// not satisfy a constraint of its slot.
type ConstraintViolationError struct {
	Param      *Param
	Constraint Constraint
	Argument   *Type
}

func (e *ConstraintViolationError) Error() string {
	return fmt.Sprintf("types: %s for %s.%s violates %q",
		e.Argument, e.Param.owner.name, e.Param.name, e.Constraint.String())
}

// UnknownTypeError is returned by Parse for names the model does not know.
type UnknownTypeError struct {
	Name  string
	Arity int
}

func (e *UnknownTypeError) Error() string {
	if e.Arity == 0 {
		return "types: unknown type " + strconv.Quote(e.Name)
	}
	return "types: unknown generic type " + strconv.Quote(e.Name) + " with " + strconv.Itoa(e.Arity) + " parameters"
}

// SyntaxError reports a malformed type expression.
type SyntaxError struct {
	Expr string
	Pos  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("types: %s at offset %d in %q", e.Msg, e.Pos, e.Expr)
}
