package semant

import "github.com/outshift-lang/splc/pkg/types"

// installBuiltins seeds the global scope with the builtin List type and its
// constructors, the boolean `not`, and the foreign I/O primitives. The base
// types of pkg/types and the arithmetic operators are not entered as
// symbols (SPEC_FULL.md §2 "Supplemented
// features", grounded on original_source/src/semantic/builtins.cpp for the
// set of names).
func (a *Analyzer) installBuiltins() {
	a.installListType()

	a.define(&Symbol{Name: "not", Kind: SymFunction, Global: true, IsBuiltin: true,
		Type:   types.NewFunction([]*types.Type{types.Bool}, types.Bool),
		Scheme: types.Trivial(types.NewFunction([]*types.Type{types.Bool}, types.Bool)),
	})

	elem := types.NewVariable()
	printFn := types.NewFunction([]*types.Type{elem}, types.Unit)
	a.define(&Symbol{Name: "print", Kind: SymFunction, Global: true, IsBuiltin: true, IsForeign: true,
		Type:   printFn,
		Scheme: &types.TypeScheme{Type: printFn, Quantified: []*types.Type{elem}},
	})

	elem2 := types.NewVariable()
	printlnFn := types.NewFunction([]*types.Type{elem2}, types.Unit)
	a.define(&Symbol{Name: "println", Kind: SymFunction, Global: true, IsBuiltin: true, IsForeign: true,
		Type:   printlnFn,
		Scheme: &types.TypeScheme{Type: printlnFn, Quantified: []*types.Type{elem2}},
	})

	readLineFn := types.NewFunction(nil, types.String)
	a.define(&Symbol{Name: "readLine", Kind: SymFunction, Global: true, IsBuiltin: true, IsForeign: true,
		Type:   readLineFn,
		Scheme: types.Trivial(readLineFn),
	})
}

// installListType registers the builtin generic List<a> used to back array
// literals and foreach (SPEC_FULL.md §2): Cons(head: a, tail: List<a>),
// tag 0, boxed; Nil, tag 1, unboxed/nullary. head/tail/empty are registered
// as methods on List so foreach's member-lookup rule (spec.md §4.2) resolves
// them the same way as a user impl block's methods.
func (a *Analyzer) installListType() {
	elem := types.NewVariable()
	params := []*types.Type{elem}
	ctor := &types.TypeConstructor{Name: "List", Parameters: params}
	listType := types.NewConstructed(ctor, params)

	consVC := &types.ValueConstructor{
		Name: "Cons",
		Tag:  0,
		Members: []types.MemberDesc{
			{Name: "head", Type: elem, Location: 0},
			{Name: "tail", Type: listType, Location: 1},
		},
		IsBoxed: true,
	}
	nilVC := &types.ValueConstructor{Name: "Nil", Tag: 1, IsBoxed: false}
	ctor.ValueConstructors = []*types.ValueConstructor{consVC, nilVC}
	a.dataTypes["List"] = ctor
	a.listCtor = ctor
	a.consCtor = consVC
	a.nilCtor = nilVC

	consFn := types.NewFunction([]*types.Type{elem, listType}, listType)
	a.define(&Symbol{Name: "Cons", Kind: SymConstructor, Global: true, IsBuiltin: true,
		Type: consFn, Scheme: &types.TypeScheme{Type: consFn, Quantified: params}, Ctor: consVC})
	a.define(&Symbol{Name: "Nil", Kind: SymConstructor, Global: true, IsBuiltin: true,
		Type: listType, Scheme: &types.TypeScheme{Type: listType, Quantified: params}, Ctor: nilVC})

	a.installListMethods(ctor, listType, elem, params)
}

func (a *Analyzer) installListMethods(ctor *types.TypeConstructor, listType, elem *types.Type, params []*types.Type) {
	headFn := types.NewFunction([]*types.Type{listType}, elem)
	a.methods["List.head"] = &Symbol{Name: "head", Kind: SymMethod, Global: true, IsBuiltin: true,
		Type: headFn, Scheme: &types.TypeScheme{Type: headFn, Quantified: params}, Parent: ctor}

	tailFn := types.NewFunction([]*types.Type{listType}, listType)
	a.methods["List.tail"] = &Symbol{Name: "tail", Kind: SymMethod, Global: true, IsBuiltin: true,
		Type: tailFn, Scheme: &types.TypeScheme{Type: tailFn, Quantified: params}, Parent: ctor}

	emptyFn := types.NewFunction([]*types.Type{listType}, types.Bool)
	a.methods["List.empty"] = &Symbol{Name: "empty", Kind: SymMethod, Global: true, IsBuiltin: true,
		Type: emptyFn, Scheme: &types.TypeScheme{Type: emptyFn, Quantified: params}, Parent: ctor}
}
