package generic_test

import (
	"testing"

	"github.com/km-arc/go-opengenerics/framework/types"
)

// fixture declares a small domain:
//
//	IEntity; Customer : IEntity; Order : IEntity
//	IReadable<T>; IRepository<T> : IReadable<T>; List<T>
//	GenericRepository<T> : IRepository<T>                 T : IEntity
//	LooseRepository<T> : IRepository<T>
//	OrderRepository : IRepository<Order>
//	CustomerRepository : IRepository<Customer>
//	ListRepository<T> : IRepository<List<T>>
//	Twice<T> : IRepository<T>, IReadable<T>
//	IValidator<T>; NullValidator<T, U> : IValidator<T>
//	IConverter<TIn, TOut>
//	Swap<A, B> : IConverter<B, A>
//	SameConverter<T> : IConverter<T, T>
//	IdentityConverter<TIn, TOut> : IConverter<TIn, TOut>  TIn == TOut
type fixture struct {
	reg *types.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	reg := types.NewRegistry()

	entity := reg.MustDeclare(types.NewPlain("IEntity"))
	reg.MustDeclare(types.NewPlain("Customer"), entity)
	reg.MustDeclare(types.NewPlain("Order"), entity)

	readable := reg.MustDeclare(types.NewDefinition("IReadable", "T"))
	reg.MustDeclare(types.NewDefinition("List", "T"))
	repo := types.NewDefinition("IRepository", "T")
	reg.MustDeclare(repo, types.MustConstruct(readable, repo.Params()[0].Type()))

	declare := func(def *types.Type, bases ...string) {
		scope := def.Params()
		var bs []*types.Type
		for _, b := range bases {
			bs = append(bs, types.MustParse(reg, b, scope...))
		}
		reg.MustDeclare(def, bs...)
	}

	generic := types.NewDefinition("GenericRepository", "T")
	generic.Params()[0].Constrain(types.MustImplement(entity))
	declare(generic, "IRepository<T>")

	declare(types.NewDefinition("LooseRepository", "T"), "IRepository<T>")
	declare(types.NewPlain("OrderRepository"), "IRepository<Order>")
	declare(types.NewPlain("CustomerRepository"), "IRepository<Customer>")
	declare(types.NewDefinition("ListRepository", "T"), "IRepository<List<T>>")
	declare(types.NewDefinition("Twice", "T"), "IRepository<T>", "IReadable<T>")

	reg.MustDeclare(types.NewDefinition("IValidator", "T"))
	declare(types.NewDefinition("NullValidator", "T", "U"), "IValidator<T>")

	reg.MustDeclare(types.NewDefinition("IConverter", "TIn", "TOut"))
	declare(types.NewDefinition("Swap", "A", "B"), "IConverter<B, A>")
	declare(types.NewDefinition("SameConverter", "T"), "IConverter<T, T>")
	identity := types.NewDefinition("IdentityConverter", "TIn", "TOut")
	identity.Params()[0].Constrain(types.MustEqual("TOut"))
	declare(identity, "IConverter<TIn, TOut>")

	return &fixture{reg: reg}
}

func (f *fixture) typ(t *testing.T, expr string) *types.Type {
	t.Helper()
	typ, err := types.Parse(f.reg, expr)
	if err != nil {
		t.Fatalf("parse %q: %v", expr, err)
	}
	return typ
}
