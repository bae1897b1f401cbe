package generic

import "github.com/km-arc/go-opengenerics/framework/types"

// Unifier binds the parameter slots of an implementation by matching a
// pattern argument list (built from those slots) against a concrete one.
type Unifier struct {
	// Model answers assignability questions for structural constraints. With
	// a nil Model constraints are not checked.
	Model types.Model

	// SuppressTypeConstraintChecks skips constraint checks and lets slots the
	// pattern never mentions through, returned as their own parameter type.
	SuppressTypeConstraintChecks bool
}

// Unify returns one binding per entry of params, in declaration order. ok is
// false when the lists cannot be matched, a slot would be bound to two
// different types, a slot is undetermined, or a bound type violates a
// structural constraint of its slot.
func (u Unifier) Unify(pattern, concrete []*types.Type, params []*types.Param) (bindings []*types.Type, ok bool) {
	s := newSubstitution(params)
	if !s.unifyAll(pattern, concrete) {
		return nil, false
	}

	out := make([]*types.Type, len(params))
	for i, p := range params {
		switch {
		case s.bound[i] != nil:
			out[i] = s.bound[i]
		case u.SuppressTypeConstraintChecks:
			out[i] = p.Type()
		default:
			return nil, false
		}
	}

	if !u.SuppressTypeConstraintChecks && !u.satisfiesConstraints(params, s.bound) {
		return nil, false
	}
	return out, true
}

func (u Unifier) satisfiesConstraints(params []*types.Param, bound []*types.Type) bool {
	if u.Model == nil {
		return true
	}
	for i, p := range params {
		arg := bound[i]
		if arg == nil || arg.ContainsParams() {
			continue
		}
		for _, c := range p.Constraints() {
			if !c.Structural() {
				continue
			}
			want := types.Substitute(c.Type, params, bound)
			if want.ContainsParams() {
				continue
			}
			if !u.Model.IsAssignable(want, arg) {
				return false
			}
		}
	}
	return true
}

// substitution maps the slots being solved to their bindings so far.
type substitution struct {
	index map[string]int
	bound []*types.Type
}

func newSubstitution(params []*types.Param) *substitution {
	s := &substitution{
		index: make(map[string]int, len(params)),
		bound: make([]*types.Type, len(params)),
	}
	for i, p := range params {
		s.index[p.Type().Key()] = i
	}
	return s
}

func (s *substitution) unifyAll(pattern, concrete []*types.Type) bool {
	if len(pattern) != len(concrete) {
		return false
	}
	for i := range pattern {
		if !s.unify(pattern[i], concrete[i]) {
			return false
		}
	}
	return true
}

func (s *substitution) unify(pattern, concrete *types.Type) bool {
	if pattern == nil || concrete == nil {
		return false
	}
	if pattern.Kind() == types.Parameter {
		if i, ok := s.index[pattern.Key()]; ok {
			if s.bound[i] == nil {
				s.bound[i] = concrete
				return true
			}
			return s.bound[i].Equal(concrete)
		}
	}
	if pattern.IsConstructed() && pattern.ContainsParams() {
		if !concrete.IsConstructed() || !concrete.Definition().Equal(pattern.Definition()) {
			return false
		}
		return s.unifyAll(pattern.Args(), concrete.Args())
	}
	return pattern.Equal(concrete)
}
