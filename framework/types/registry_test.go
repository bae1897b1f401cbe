package types_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-opengenerics/framework/types"
)

func keys(ts []*types.Type) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.String()
	}
	return out
}

// ── Declare ───────────────────────────────────────────────────────────────────

func TestRegistry_Builtins(t *testing.T) {
	t.Parallel()

	reg := types.NewRegistry()
	assert.Equal(t, len(types.Builtins), reg.Len())
	for _, name := range types.Builtins {
		_, ok := reg.Lookup(name, 0)
		assert.True(t, ok, name)
	}
}

func TestRegistry_Declare_Errors(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	var dup *types.DuplicateTypeError
	err := w.reg.Declare(types.NewPlain("Customer"))
	require.True(t, errors.As(err, &dup))
	assert.Equal(t, "Customer", dup.Key)

	assert.ErrorIs(t, w.reg.Declare(types.MustConstruct(w.repo, w.customer)), types.ErrNotDeclarable)
	assert.ErrorIs(t, w.reg.Declare(nil), types.ErrNilType)
	assert.ErrorIs(t, w.reg.Declare(types.NewPlain("Broken"), w.repo), types.ErrInvalidBase)

	other := types.NewDefinition("Other", "U")
	foreign := types.MustConstruct(w.repo, w.generic.Params()[0].Type())
	assert.ErrorIs(t, w.reg.Declare(other, foreign), types.ErrForeignParameter)

	_, ok := w.reg.Lookup("Other", 1)
	assert.False(t, ok, "failed declaration must not be recorded")
}

func TestRegistry_LookupAndNamed(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	plainRepo := w.reg.MustDeclare(types.NewPlain("IRepository"))

	got, ok := w.reg.Lookup("IRepository", 1)
	require.True(t, ok)
	assert.Same(t, w.repo, got)

	got, ok = w.reg.Lookup("IRepository", 0)
	require.True(t, ok)
	assert.Same(t, plainRepo, got)

	assert.Len(t, w.reg.Named("IRepository"), 2)
	assert.Empty(t, w.reg.Named("Nope"))
}

func TestRegistry_TypesSorted(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	all := w.reg.Types()
	require.Len(t, all, w.reg.Len())
	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Key(), all[i].Key())
	}
}

// ── Hierarchy ─────────────────────────────────────────────────────────────────

func TestRegistry_BaseTypesAndInterfaces_Definition(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	got := w.reg.BaseTypesAndInterfaces(w.generic)
	assert.Equal(t, []string{"GenericRepository<>", "IRepository<T>", "IReadable<T>"}, keys(got))

	// T in both bases is GenericRepository's own slot, carried through substitution.
	gt := w.generic.Params()[0].Type()
	assert.True(t, got[1].Args()[0].Equal(gt))
	assert.True(t, got[2].Args()[0].Equal(gt))
}

func TestRegistry_BaseTypesAndInterfaces_Constructed(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	closed := types.MustConstruct(w.generic, w.customer)
	got := w.reg.BaseTypesAndInterfaces(closed)
	assert.Equal(t, []string{
		"GenericRepository<Customer>",
		"IRepository<Customer>",
		"IReadable<Customer>",
	}, keys(got))
}

func TestRegistry_BaseTypesAndInterfaces_Deduplicates(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	// Diamond: Both : IRepository<Customer>, IReadable<Customer>; IRepository<Customer> : IReadable<Customer>.
	both := w.reg.MustDeclare(types.NewPlain("Both"),
		types.MustConstruct(w.repo, w.customer),
		types.MustConstruct(w.readable, w.customer),
	)
	got := w.reg.BaseTypesAndInterfaces(both)
	assert.Equal(t, []string{"Both", "IRepository<Customer>", "IReadable<Customer>"}, keys(got))
}

func TestRegistry_BaseTypesAndInterfaces_Undeclared(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	stray := types.NewPlain("Stray")
	assert.Equal(t, []string{"Stray"}, keys(w.reg.BaseTypesAndInterfaces(stray)))
	assert.Nil(t, w.reg.BaseTypesAndInterfaces(nil))
}

func TestRegistry_IsAssignable(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	anyT, _ := w.reg.Lookup(types.Any, 0)

	assert.True(t, w.reg.IsAssignable(w.entity, w.customer))
	assert.True(t, w.reg.IsAssignable(w.customer, w.customer))
	assert.False(t, w.reg.IsAssignable(w.customer, w.entity))
	assert.True(t, w.reg.IsAssignable(anyT, w.order))
	assert.True(t, w.reg.IsAssignable(
		types.MustConstruct(w.readable, w.order),
		types.MustConstruct(w.generic, w.order),
	))
	assert.False(t, w.reg.IsAssignable(nil, w.order))
}

func TestRegistry_GenericParams(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	assert.Len(t, w.reg.GenericParams(w.pair), 2)
	assert.Nil(t, w.reg.GenericParams(w.customer))
	assert.Nil(t, w.reg.GenericParams(types.MustConstruct(w.pair, w.order, w.order)))
}

// ── MakeGeneric ───────────────────────────────────────────────────────────────

func TestRegistry_MakeGeneric(t *testing.T) {
	t.Parallel()
	w := newWorld(t)
	str, _ := w.reg.Lookup("string", 0)

	tests := []struct {
		name      string
		def       *types.Type
		args      []*types.Type
		want      string
		violation bool
		wantErr   error
	}{
		{name: "satisfied implements", def: w.generic, args: []*types.Type{w.customer}, want: "GenericRepository<Customer>"},
		{name: "violated implements", def: w.generic, args: []*types.Type{str}, violation: true},
		{name: "satisfied equals", def: w.pair, args: []*types.Type{w.order, w.order}, want: "Pair<Order, Order>"},
		{name: "violated equals", def: w.pair, args: []*types.Type{w.order, w.customer}, violation: true},
		{name: "open argument skips check", def: w.generic, args: []*types.Type{w.repo.Params()[0].Type()}, want: "GenericRepository<T>"},
		{name: "not a definition", def: w.customer, args: []*types.Type{w.order}, wantErr: types.ErrNotDefinition},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := w.reg.MakeGeneric(tc.def, tc.args)
			switch {
			case tc.violation:
				require.Error(t, err)
				assert.True(t, types.IsConstraintViolation(err))
				assert.Nil(t, got)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				require.NoError(t, err)
				assert.Equal(t, tc.want, got.String())
			}
		})
	}
}

func TestRegistry_MakeGeneric_ConstraintRefersToSibling(t *testing.T) {
	t.Parallel()
	w := newWorld(t)

	// Sorted<T> where T : IReadable<T>
	sorted := types.NewDefinition("Sorted", "T")
	st := sorted.Params()[0]
	st.Constrain(types.MustImplement(types.MustConstruct(w.readable, st.Type())))
	w.reg.MustDeclare(sorted)

	self := w.reg.MustDeclare(types.NewPlain("SelfReadable"))
	selfReadable := types.NewPlain("Readable")
	w.reg.MustDeclare(selfReadable, types.MustConstruct(w.readable, selfReadable))

	_, err := w.reg.MakeGeneric(sorted, []*types.Type{selfReadable})
	assert.NoError(t, err)

	_, err = w.reg.MakeGeneric(sorted, []*types.Type{self})
	var cv *types.ConstraintViolationError
	require.True(t, errors.As(err, &cv))
	assert.Equal(t, "T", cv.Param.Name())
	assert.Contains(t, err.Error(), "implements IReadable<SelfReadable>")
	assert.Equal(t, "IReadable<SelfReadable>", cv.Constraint.Type.String())
	assert.False(t, cv.Constraint.Type.ContainsParams())
}

func TestRegistry_ConcurrentReads(t *testing.T) {
	t.Parallel()
	w := newWorld(t)
	closed := types.MustConstruct(w.generic, w.customer)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Len(t, w.reg.BaseTypesAndInterfaces(closed), 3)
			_, err := w.reg.MakeGeneric(w.generic, []*types.Type{w.order})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
