package generic

import "github.com/km-arc/go-opengenerics/framework/types"

// Builder closes an implementation type for one requested service type.
// A Builder holds no mutable state of its own; its methods may be called
// repeatedly and from several goroutines as long as the Model allows
// concurrent reads.
type Builder struct {
	model          types.Model
	service        *types.Type
	implementation *types.Type

	// SuppressTypeConstraintChecks is set by callers that have already
	// established that the implementation applies, e.g. decorators with a
	// predicate. Slots the matched candidate does not determine are then left
	// open instead of failing the match.
	SuppressTypeConstraintChecks bool
}

// NewBuilder prepares a match of implementation against the closed service.
func NewBuilder(model types.Model, closedService, implementation *types.Type) *Builder {
	return &Builder{model: model, service: closedService, implementation: implementation}
}

// ClosedServiceTypeSatisfiesAllTypeConstraints reports whether at least one
// candidate service type of the implementation unifies with the requested
// service.
func (b *Builder) ClosedServiceTypeSatisfiesAllTypeConstraints() bool {
	_, _, ok := b.findMatchingServiceType()
	return ok
}

// BuildClosedGenericImplementation resolves the closed implementation type.
func (b *Builder) BuildClosedGenericImplementation() BuildResult {
	_, args, ok := b.findMatchingServiceType()
	if !ok {
		return Invalid()
	}
	closed := b.buildClosedImplementation(args)
	if closed == nil {
		return Invalid()
	}
	return Valid(closed)
}

// CandidateServiceTypes lists the implementation's base types and interfaces
// built from the service's generic definition, without duplicates, in
// hierarchy order. For a non-generic service the candidates are the
// hierarchy entries equal to it.
func (b *Builder) CandidateServiceTypes() []*types.Type {
	if b.model == nil || b.service == nil || b.implementation == nil || b.service.ContainsParams() {
		return nil
	}
	def := b.service.Definition()

	seen := make(map[string]bool)
	var out []*types.Type
	for _, t := range b.model.BaseTypesAndInterfaces(b.implementation) {
		related := t.Equal(b.service)
		if def != nil {
			if t.Equal(def) {
				t = types.SelfApplied(t)
			}
			related = t.IsConstructed() && t.Definition().Equal(def)
		}
		if seen[t.Key()] {
			continue
		}
		if !related {
			continue
		}
		seen[t.Key()] = true
		out = append(out, t)
	}
	return out
}

// findMatchingServiceType returns the first candidate that satisfies the
// constraints. Several candidates may match, but the type system guarantees
// they bind the same arguments.
func (b *Builder) findMatchingServiceType() (candidate *types.Type, args []*types.Type, ok bool) {
	for _, c := range b.CandidateServiceTypes() {
		if bound, matched := b.satisfiesGenericTypeConstraints(c); matched {
			return c, bound, true
		}
	}
	return nil, nil, false
}

func (b *Builder) satisfiesGenericTypeConstraints(candidate *types.Type) ([]*types.Type, bool) {
	params := b.model.GenericParams(b.implementation)
	if len(params) == 0 {
		// Without parameters nothing is inferred; only the exact service will do.
		return nil, candidate.Equal(b.service)
	}

	u := Unifier{Model: b.model, SuppressTypeConstraintChecks: b.SuppressTypeConstraintChecks}
	args, ok := u.Unify(candidate.Args(), b.service.Args(), params)
	return args, ok && len(args) == len(params)
}

func (b *Builder) buildClosedImplementation(args []*types.Type) *types.Type {
	if len(b.model.GenericParams(b.implementation)) == 0 {
		return b.implementation
	}
	closed, err := b.model.MakeGeneric(b.implementation, args)
	if err != nil {
		// Constraints the unifier cannot see, such as TIn == TOut, end here.
		return nil
	}
	return closed
}
