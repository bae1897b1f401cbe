// Package types is the read-only type model consumed by the generic
// resolution machinery.
//
// Go erases nothing it does not know about: there is no runtime description
// of generic parameter slots, base types or implemented interfaces that a
// container could query. This package supplies that description explicitly.
// Callers (or a YAML catalog, see package catalog) declare the shape of every
// type once, and the rest of the framework asks questions about it.
//
// # Kinds
//
//	Plain        Customer, int                   no parameters
//	Definition   IRepository<>                    open generic definition
//	Constructed  IRepository<Customer>            definition + argument list
//	Parameter    T                                a parameter slot used as a type
//
// A constructed type may still be open: IRepository<T> is Constructed and
// ContainsParams reports true.
//
// # Identity
//
// Types are compared by structure, never by pointer. Two separately built
// IRepository<Customer> values are Equal and share a Key. Parameters are
// identified by their owning definition and position.
//
// # Declaring types
//
//	reg := types.NewRegistry()
//	entity := types.NewPlain("IEntity")
//	customer := types.NewPlain("Customer")
//	repo := types.NewDefinition("IRepository", "T")
//	impl := types.NewDefinition("GenericRepository", "T")
//	impl.Params()[0].Constrain(types.MustImplement(entity))
//
//	_ = reg.Declare(entity)
//	_ = reg.Declare(customer, entity)
//	_ = reg.Declare(repo)
//	_ = reg.Declare(impl, types.MustConstruct(repo, impl.Params()[0].Type()))
//
// # Constraints
//
// DerivesFrom and Implements constraints are structural: they can be decided
// by walking the declared hierarchy. EqualsParam ("TIn must be TOut") is not;
// the generic unifier leaves it unchecked and only Registry.MakeGeneric
// enforces it, by rejecting the construction.
package types
