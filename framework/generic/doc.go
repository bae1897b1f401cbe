// Package generic decides whether an open generic implementation can serve a
// requested closed service type, and closes it when it can.
//
//	reg := ...                                    // types.Model
//	service := types.MustParse(reg, "IRepository<Customer>")
//	impl := types.MustParse(reg, "GenericRepository<>")
//
//	res := generic.NewBuilder(reg, service, impl).BuildClosedGenericImplementation()
//	if res.IsValid() {
//	    fmt.Println(res.ClosedGenericImplementation()) // GenericRepository<Customer>
//	}
//
// The Builder walks the implementation's base types and interfaces, keeps the
// ones constructed from the service's generic definition, and asks the
// Unifier to bind the implementation's parameter slots against the service's
// arguments. The first candidate that binds every slot is closed through
// types.Model.MakeGeneric.
//
// Every failure (no related candidate, inconsistent bindings, an undetermined
// slot, a construction rejected by the model) collapses into Invalid. A
// caller scanning registrations simply moves on to the next one.
//
// Constraints between sibling parameters (types.EqualsParam) are not checked
// during unification. They only surface when MakeGeneric rejects the
// construction, which also yields Invalid.
package generic
