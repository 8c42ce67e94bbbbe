package semant

import (
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/diag"
	"github.com/outshift-lang/splc/pkg/types"
)

// registerDataDecl registers d's TypeConstructor, its ValueConstructors
// (tagged in declaration order, spec.md §4.4 "constructor tag = declaration
// index"), a SymConstructor for each, and — when d has exactly one
// constructor — member accessors for field access (SPEC_FULL.md §2).
func (a *Analyzer) registerDataDecl(d *ast.DataDecl) error {
	if _, exists := a.dataTypes[d.Name]; exists {
		return a.fail(diag.Semantic, d.Pos(), "type %q redefined", d.Name)
	}
	ctor, selfType, localParams := a.declareTypeConstructor(d.Name, d.TypeParams)

	for i, dc := range d.Constructors {
		if a.lookup(dc.Name) != nil {
			return a.fail(diag.Semantic, d.Pos(), "constructor %q redefined", dc.Name)
		}
		vc := &types.ValueConstructor{Name: dc.Name, Tag: int64(i), IsBoxed: len(dc.Members) > 0}
		for j, m := range dc.Members {
			mt := a.resolveMemberTypeName(m.TypeName, d.Name, localParams, selfType)
			vc.Members = append(vc.Members, types.MemberDesc{Name: m.Name, Type: mt, Location: j})
		}
		ctor.ValueConstructors = append(ctor.ValueConstructors, vc)
		a.define(a.constructorSymbol(dc.Name, vc, selfType, ctor.Parameters))
	}

	if len(ctor.ValueConstructors) == 1 {
		a.registerMemberAccessors(ctor, ctor.ValueConstructors[0], ctor.Parameters, selfType)
	}
	d.ResolvedType = ctor
	return nil
}

// registerStructDecl registers d the same way as a single-constructor
// DataDecl whose constructor shares the struct's own name, matching the
// parser's uniform `Name{...}` construction syntax.
func (a *Analyzer) registerStructDecl(d *ast.StructDecl) error {
	if _, exists := a.dataTypes[d.Name]; exists {
		return a.fail(diag.Semantic, d.Pos(), "type %q redefined", d.Name)
	}
	if a.lookup(d.Name) != nil {
		return a.fail(diag.Semantic, d.Pos(), "constructor %q redefined", d.Name)
	}
	ctor, selfType, localParams := a.declareTypeConstructor(d.Name, d.TypeParams)

	vc := &types.ValueConstructor{Name: d.Name, Tag: 0, IsBoxed: len(d.Members) > 0}
	for j, m := range d.Members {
		mt := a.resolveMemberTypeName(m.TypeName, d.Name, localParams, selfType)
		vc.Members = append(vc.Members, types.MemberDesc{Name: m.Name, Type: mt, Location: j})
	}
	ctor.ValueConstructors = []*types.ValueConstructor{vc}

	a.define(a.constructorSymbol(d.Name, vc, selfType, ctor.Parameters))
	a.registerMemberAccessors(ctor, vc, ctor.Parameters, selfType)
	d.ResolvedType = ctor
	return nil
}

func (a *Analyzer) declareTypeConstructor(name string, typeParams []string) (*types.TypeConstructor, *types.Type, map[string]*types.Type) {
	params := make([]*types.Type, len(typeParams))
	localParams := make(map[string]*types.Type, len(typeParams))
	for i, p := range typeParams {
		params[i] = types.NewVariable()
		localParams[p] = params[i]
	}
	ctor := &types.TypeConstructor{Name: name, Parameters: params}
	a.dataTypes[name] = ctor
	return ctor, types.NewConstructed(ctor, params), localParams
}

// constructorSymbol builds the SymConstructor for vc: a function
// (member1,...,membern) -> selfType for a constructor with members, or
// selfType directly for a nullary one, quantified over the type's own
// parameters so each construction site gets a fresh instantiation
// (spec.md §4.2, §4.4).
func (a *Analyzer) constructorSymbol(name string, vc *types.ValueConstructor, selfType *types.Type, params []*types.Type) *Symbol {
	var symType *types.Type
	if len(vc.Members) == 0 {
		symType = selfType
	} else {
		inputs := make([]*types.Type, len(vc.Members))
		for i, m := range vc.Members {
			inputs[i] = m.Type
		}
		symType = types.NewFunction(inputs, selfType)
	}
	return &Symbol{Name: name, Kind: SymConstructor, Type: symType,
		Scheme: &types.TypeScheme{Type: symType, Quantified: params}, Global: true, Ctor: vc}
}

// registerMemberAccessors registers "TypeName.member" accessors for every
// member of vc, for field-access resolution (resolveField).
func (a *Analyzer) registerMemberAccessors(ctor *types.TypeConstructor, vc *types.ValueConstructor, params []*types.Type, selfType *types.Type) {
	for _, m := range vc.Members {
		accessorFn := types.NewFunction([]*types.Type{selfType}, m.Type)
		a.members[ctor.Name+"."+m.Name] = &Symbol{
			Name: m.Name, Kind: SymMember, Type: accessorFn,
			Scheme: &types.TypeScheme{Type: accessorFn, Quantified: params},
			Parent: ctor, Slot: m.Location,
		}
	}
}

// resolveMemberTypeName resolves a DataMember's raw type-name text to a
// *types.Type: a declared type parameter, a recursive self-reference, a
// base type, a previously-declared data/struct type (instantiated with
// fresh type arguments), or — if unrecognized — a fresh type variable, so
// inference still proceeds even though the grammar's declared member types
// are not otherwise checked against anything (pkg/parser discards every
// other surface type annotation the same way).
func (a *Analyzer) resolveMemberTypeName(name, selfName string, localParams map[string]*types.Type, selfType *types.Type) *types.Type {
	if t, ok := localParams[name]; ok {
		return t
	}
	if name == selfName {
		return selfType
	}
	switch name {
	case "Int":
		return types.Int
	case "Bool":
		return types.Bool
	case "Unit":
		return types.Unit
	case "String":
		return types.String
	}
	if ctor, ok := a.dataTypes[name]; ok {
		args := make([]*types.Type, len(ctor.Parameters))
		for i := range args {
			args[i] = types.NewVariable()
		}
		return types.NewConstructed(ctor, args)
	}
	return types.NewVariable()
}

// registerFuncSignature creates d's symbol with fresh type variables for
// every parameter and the return type, and defines it in the global scope
// unless receiverType is set (an impl-block method is instead registered
// into a.methods by the caller, registerImplSignatures). Creating the
// symbol before visiting the body is what lets self- and mutual top-level
// recursion resolve (spec.md §4.2).
func (a *Analyzer) registerFuncSignature(d *ast.FuncDecl, receiverType *types.Type, quantify []*types.Type) (*Symbol, error) {
	inputs := make([]*types.Type, 0, len(d.Params)+1)
	var recvSym *Symbol
	if receiverType != nil {
		recvSym = &Symbol{Name: "self", Kind: SymVariable, Type: receiverType, Scheme: types.Trivial(receiverType), IsParam: true, Offset: 0}
		inputs = append(inputs, receiverType)
	}
	paramSyms := make([]*Symbol, len(d.Params))
	for i, p := range d.Params {
		pt := types.NewVariable()
		inputs = append(inputs, pt)
		paramSyms[i] = &Symbol{Name: p.Name, Kind: SymVariable, Type: pt, Scheme: types.Trivial(pt), IsParam: true, Offset: i, Node: d}
	}
	output := types.NewVariable()
	fnType := types.NewFunction(inputs, output)
	sym := &Symbol{
		Name: d.Name, Kind: SymFunction, Type: fnType,
		Scheme: &types.TypeScheme{Type: fnType, Quantified: quantify},
		Node:   d, Global: true, IsExternal: d.Body == nil,
		IsForeign: d.IsForeign, IsCCall: d.IsCCall, Params: paramSyms, Receiver: recvSym,
	}
	anyParams := make([]any, len(paramSyms))
	for i, ps := range paramSyms {
		anyParams[i] = ps
	}
	d.ResolvedFunc = sym
	d.ParamSymbols = anyParams
	if receiverType == nil {
		if existing := a.global.lookup(d.Name); existing != nil {
			return nil, a.fail(diag.Semantic, d.Pos(), "function %q redefined", d.Name)
		}
		a.define(sym)
	}
	return sym, nil
}

// registerImplSignatures registers every method of d into a.methods,
// quantified over the receiver type's own parameters so e.g. a method on
// List<a> gets a fresh element-type variable per call site, the same as a
// constructor (spec.md §4.2 "Impl block").
func (a *Analyzer) registerImplSignatures(d *ast.ImplDecl) error {
	ctor, ok := a.dataTypes[d.TypeName]
	if !ok {
		return a.fail(diag.Semantic, d.Pos(), "impl for undefined type %q", d.TypeName)
	}
	recvType := types.NewConstructed(ctor, ctor.Parameters)
	for _, m := range d.Methods {
		m.ReceiverType = d.TypeName
		key := d.TypeName + "." + m.Name
		if _, exists := a.methods[key]; exists {
			return a.fail(diag.Semantic, m.Pos(), "method %q redefined for type %q", m.Name, d.TypeName)
		}
		sym, err := a.registerFuncSignature(m, recvType, ctor.Parameters)
		if err != nil {
			return err
		}
		sym.Kind = SymMethod
		a.methods[key] = sym
	}
	return nil
}

// analyzeFuncBody visits d's body in a fresh scope seeded with its
// parameter symbols, and unifies the body's resulting type with the
// function's declared output (spec.md §4.2 implicit-return rule: a
// function's value is its body's trailing expression).
func (a *Analyzer) analyzeFuncBody(d *ast.FuncDecl) error {
	sym := d.ResolvedFunc.(*Symbol)
	if d.IsForeign {
		return nil
	}
	prevFunc := a.currentFunc
	a.currentFunc = sym
	a.pushScope()
	for _, ps := range sym.Params {
		a.define(ps)
	}
	body, err := a.visitExpr(d.Body)
	a.popScope()
	a.currentFunc = prevFunc
	if err != nil {
		return err
	}
	d.Body = body
	return a.unify(d.Pos(), sym.Type.Find().Output(), body.Type())
}

func (a *Analyzer) analyzeImplBody(d *ast.ImplDecl) error {
	for _, m := range d.Methods {
		sym := m.ResolvedFunc.(*Symbol)
		prevFunc := a.currentFunc
		a.currentFunc = sym
		a.pushScope()
		if sym.Receiver != nil {
			a.define(sym.Receiver)
		}
		for _, ps := range sym.Params {
			a.define(ps)
		}
		body, err := a.visitExpr(m.Body)
		a.popScope()
		a.currentFunc = prevFunc
		if err != nil {
			return err
		}
		m.Body = body
		if err := a.unify(m.Pos(), sym.Type.Find().Output(), body.Type()); err != nil {
			return err
		}
	}
	return nil
}
