package semant

import (
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/diag"
	"github.com/outshift-lang/splc/pkg/types"
)

// visitExpr dispatches on e's dynamic type, annotating it (and every
// subexpression) with a resolved type and returning the node that should
// replace e in its parent's slot — ordinarily e itself, except ArrayLit
// which desugars into a chain of Cons/Nil ConstructExprs (spec.md §4.2
// treats iteration via head/tail/empty; array literals build the value
// those walk).
func (a *Analyzer) visitExpr(e ast.Expr) (ast.Expr, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		n.SetType(types.Int)
		return n, nil
	case *ast.BoolLit:
		n.SetType(types.Bool)
		return n, nil
	case *ast.StringLit:
		n.SetType(types.String)
		return n, nil
	case *ast.UnitLit:
		n.SetType(types.Unit)
		return n, nil
	case *ast.VarExpr:
		return a.visitVarExpr(n)
	case *ast.AssignExpr:
		return a.visitAssignExpr(n)
	case *ast.BinaryExpr:
		return a.visitBinaryExpr(n)
	case *ast.UnaryExpr:
		return a.visitUnaryExpr(n)
	case *ast.CallExpr:
		return a.visitCallExpr(n)
	case *ast.MemberExpr:
		return a.visitMemberExprStandalone(n)
	case *ast.ConstructExpr:
		return a.visitConstructExpr(n)
	case *ast.ArrayLit:
		return a.visitArrayLit(n)
	case *ast.FuncExpr:
		return a.visitFuncExpr(n)
	case *ast.BlockExpr:
		return a.visitBlockExpr(n)
	case *ast.IfExpr:
		return a.visitIfExpr(n)
	case *ast.MatchExpr:
		return a.visitMatchExpr(n)
	case *ast.ForeverExpr:
		return a.visitForeverExpr(n)
	case *ast.WhileExpr:
		return a.visitWhileExpr(n)
	case *ast.ForRangeExpr:
		return a.visitForRangeExpr(n)
	case *ast.ForeachExpr:
		return a.visitForeachExpr(n)
	case *ast.BreakExpr:
		return a.visitBreakExpr(n)
	case *ast.ReturnExpr:
		return a.visitReturnExpr(n)
	}
	return nil, a.fail(diag.Semantic, e.Pos(), "internal: unhandled expression node %T", e)
}

func (a *Analyzer) visitVarExpr(n *ast.VarExpr) (ast.Expr, error) {
	sym := a.lookup(n.Name)
	if sym == nil {
		return nil, a.fail(diag.Semantic, n.Pos(), "undefined name %q", n.Name)
	}
	n.Symbol = sym
	t := sym.Scheme.Instantiate().Find()
	// spec.md §4.2 "Nullary": a bare reference to a parameterless function
	// calls it immediately instead of yielding a closure.
	if t.Tag() == types.Function && len(t.Inputs()) == 0 {
		n.NullaryCall = true
		n.SetType(t.Output())
		return n, nil
	}
	n.SetType(t)
	return n, nil
}

func (a *Analyzer) visitAssignExpr(n *ast.AssignExpr) (ast.Expr, error) {
	var target ast.Expr
	switch t := n.Target.(type) {
	case *ast.VarExpr:
		sym := a.lookup(t.Name)
		if sym == nil {
			return nil, a.fail(diag.Semantic, t.Pos(), "undefined name %q", t.Name)
		}
		t.Symbol = sym
		t.SetType(sym.Scheme.Instantiate())
		target = t
	case *ast.MemberExpr:
		v, err := a.visitMemberExprStandalone(t)
		if err != nil {
			return nil, err
		}
		target = v
	default:
		return nil, a.fail(diag.Semantic, n.Pos(), "invalid assignment target")
	}
	n.Target = target
	val, err := a.visitExpr(n.Value)
	if err != nil {
		return nil, err
	}
	n.Value = val
	if err := a.unify(n.Pos(), target.Type(), val.Type()); err != nil {
		return nil, err
	}
	n.SetType(types.Unit)
	return n, nil
}

func (a *Analyzer) visitBinaryExpr(n *ast.BinaryExpr) (ast.Expr, error) {
	l, err := a.visitExpr(n.Left)
	if err != nil {
		return nil, err
	}
	n.Left = l
	r, err := a.visitExpr(n.Right)
	if err != nil {
		return nil, err
	}
	n.Right = r

	switch n.Op {
	case "+", "-", "*", "/", "%", "&":
		if err := a.unify(n.Pos(), l.Type(), types.Int); err != nil {
			return nil, err
		}
		if err := a.unify(n.Pos(), r.Type(), types.Int); err != nil {
			return nil, err
		}
		n.SetType(types.Int)
	case "==", "!=", "<", "<=", ">", ">=":
		if err := a.unify(n.Pos(), l.Type(), r.Type()); err != nil {
			return nil, err
		}
		n.SetType(types.Bool)
	case "&&", "||":
		if err := a.unify(n.Pos(), l.Type(), types.Bool); err != nil {
			return nil, err
		}
		if err := a.unify(n.Pos(), r.Type(), types.Bool); err != nil {
			return nil, err
		}
		n.SetType(types.Bool)
	default:
		return nil, a.fail(diag.Semantic, n.Pos(), "unsupported operator %q", n.Op)
	}
	return n, nil
}

func (a *Analyzer) visitUnaryExpr(n *ast.UnaryExpr) (ast.Expr, error) {
	x, err := a.visitExpr(n.Operand)
	if err != nil {
		return nil, err
	}
	n.Operand = x
	switch n.Op {
	case "-":
		if err := a.unify(n.Pos(), x.Type(), types.Int); err != nil {
			return nil, err
		}
		n.SetType(types.Int)
	case "!":
		if err := a.unify(n.Pos(), x.Type(), types.Bool); err != nil {
			return nil, err
		}
		n.SetType(types.Bool)
	default:
		return nil, a.fail(diag.Semantic, n.Pos(), "unsupported operator %q", n.Op)
	}
	return n, nil
}

func (a *Analyzer) visitCallExpr(e *ast.CallExpr) (ast.Expr, error) {
	switch callee := e.Callee.(type) {
	case *ast.VarExpr:
		sym := a.lookup(callee.Name)
		if sym == nil {
			return nil, a.fail(diag.Semantic, callee.Pos(), "undefined name %q", callee.Name)
		}
		callee.Symbol = sym
		fnType := sym.Scheme.Instantiate()
		callee.SetType(fnType)
		e.ResolvedFunc = sym
		if err := a.finishCall(e, fnType); err != nil {
			return nil, err
		}
		return e, nil
	case *ast.MemberExpr:
		recv, err := a.visitExpr(callee.Receiver)
		if err != nil {
			return nil, err
		}
		callee.Receiver = recv
		sym, fnType, err := a.resolveMethod(recv.Type(), callee.Member, callee.Pos())
		if err != nil {
			return nil, err
		}
		callee.SetType(fnType)
		e.ResolvedFunc = sym
		e.IsMethodCall = true
		if err := a.finishMethodCall(e, fnType, recv); err != nil {
			return nil, err
		}
		return e, nil
	default:
		c, err := a.visitExpr(e.Callee)
		if err != nil {
			return nil, err
		}
		e.Callee = c
		if err := a.finishCall(e, c.Type()); err != nil {
			return nil, err
		}
		return e, nil
	}
}

func (a *Analyzer) finishCall(e *ast.CallExpr, fnType *types.Type) error {
	ft := fnType.Find()
	if ft.Tag() != types.Function {
		return a.fail(diag.TypeInference, e.Pos(), "cannot call non-function type %s", ft)
	}
	inputs := ft.Inputs()
	if len(inputs) != len(e.Args) {
		return a.fail(diag.Semantic, e.Pos(), "expected %d arguments, got %d", len(inputs), len(e.Args))
	}
	for i, arg := range e.Args {
		v, err := a.visitExpr(arg)
		if err != nil {
			return err
		}
		e.Args[i] = v
		if err := a.unify(v.Pos(), inputs[i], v.Type()); err != nil {
			return err
		}
	}
	e.SetType(ft.Output())
	return nil
}

// finishMethodCall is finishCall with the receiver standing in for the
// method's implicit first input (spec.md §4.2 "Member access"): `Callee`
// in this case never itself carries that slot as an Arg.
func (a *Analyzer) finishMethodCall(e *ast.CallExpr, fnType *types.Type, receiver ast.Expr) error {
	ft := fnType.Find()
	if ft.Tag() != types.Function || len(ft.Inputs()) == 0 {
		return a.fail(diag.TypeInference, e.Pos(), "cannot call non-method type %s", ft)
	}
	inputs := ft.Inputs()
	if err := a.unify(receiver.Pos(), inputs[0], receiver.Type()); err != nil {
		return err
	}
	rest := inputs[1:]
	if len(rest) != len(e.Args) {
		return a.fail(diag.Semantic, e.Pos(), "expected %d arguments, got %d", len(rest), len(e.Args))
	}
	for i, arg := range e.Args {
		v, err := a.visitExpr(arg)
		if err != nil {
			return err
		}
		e.Args[i] = v
		if err := a.unify(v.Pos(), rest[i], v.Type()); err != nil {
			return err
		}
	}
	e.SetType(ft.Output())
	return nil
}

// resolveMethod looks up "TypeName.name" in a.methods and instantiates a
// fresh copy of its scheme (spec.md §4.2 "Member access" / "Foreach").
func (a *Analyzer) resolveMethod(recvType *types.Type, name string, pos diag.Pos) (*Symbol, *types.Type, error) {
	f := recvType.Find()
	if f.Tag() != types.Constructed {
		return nil, nil, a.fail(diag.Semantic, pos, "type %s has no methods", f)
	}
	typeName := f.TypeConstructor().Name
	sym, ok := a.methods[typeName+"."+name]
	if !ok {
		return nil, nil, a.fail(diag.Semantic, pos, "type %s has no method %q", typeName, name)
	}
	return sym, sym.Scheme.Instantiate(), nil
}

// resolveField looks up "TypeName.name" in a.members, instantiates the
// accessor, and unifies its receiver input against f so the returned
// member type carries f's actual (possibly still-unresolved) type
// arguments.
func (a *Analyzer) resolveField(recv *types.Type, name string, pos diag.Pos) (*Symbol, *types.Type, error) {
	f := recv.Find()
	if f.Tag() != types.Constructed {
		return nil, nil, a.fail(diag.Semantic, pos, "type %s has no member %q", f, name)
	}
	typeName := f.TypeConstructor().Name
	sym, ok := a.members[typeName+"."+name]
	if !ok {
		return nil, nil, a.fail(diag.Semantic, pos, "type %s has no member %q", typeName, name)
	}
	accessor := sym.Scheme.Instantiate().Find()
	if err := a.unify(pos, accessor.Inputs()[0], f); err != nil {
		return nil, nil, err
	}
	return sym, accessor.Output(), nil
}

func (a *Analyzer) visitMemberExprStandalone(n *ast.MemberExpr) (ast.Expr, error) {
	recv, err := a.visitExpr(n.Receiver)
	if err != nil {
		return nil, err
	}
	n.Receiver = recv
	sym, ft, err := a.resolveField(recv.Type(), n.Member, n.Pos())
	if err != nil {
		return nil, err
	}
	n.Slot = sym.Slot
	n.SetType(ft)
	return n, nil
}

// instantiateConstructor instantiates the named constructor's scheme and
// splits it into its output type and, for a non-nullary constructor, its
// member input types.
func (a *Analyzer) instantiateConstructor(pos diag.Pos, name string) (*Symbol, *types.Type, []*types.Type, error) {
	sym := a.global.lookup(name)
	if sym == nil || sym.Kind != SymConstructor {
		return nil, nil, nil, a.fail(diag.Semantic, pos, "undefined constructor %q", name)
	}
	ctorFn := sym.Scheme.Instantiate().Find()
	if ctorFn.Tag() == types.Function {
		return sym, ctorFn.Output(), ctorFn.Inputs(), nil
	}
	return sym, ctorFn, nil, nil
}

func (a *Analyzer) visitConstructExpr(n *ast.ConstructExpr) (ast.Expr, error) {
	sym, output, members, err := a.instantiateConstructor(n.Pos(), n.Constructor)
	if err != nil {
		return nil, err
	}
	n.ResolvedCtor = sym.Ctor
	if len(members) != len(n.Args) {
		return nil, a.fail(diag.Semantic, n.Pos(), "constructor %q expects %d arguments, got %d", n.Constructor, len(members), len(n.Args))
	}
	for i, arg := range n.Args {
		v, err := a.visitExpr(arg)
		if err != nil {
			return nil, err
		}
		n.Args[i] = v
		if err := a.unify(v.Pos(), members[i], v.Type()); err != nil {
			return nil, err
		}
	}
	n.SetType(output)
	return n, nil
}

// visitArrayLit lowers `[e1, e2, ...]` to Cons(e1, Cons(e2, ... Nil)),
// each node already fully typed against one shared fresh element type
// variable (SPEC_FULL.md §2). Elements are visited once, directly, rather
// than by recursing through visitConstructExpr a second time, so a generic
// element expression isn't instantiated twice with two unrelated fresh
// variables.
func (a *Analyzer) visitArrayLit(n *ast.ArrayLit) (ast.Expr, error) {
	elemType := types.NewVariable()
	listType := types.NewConstructed(a.listCtor, []*types.Type{elemType})

	for i, el := range n.Elems {
		v, err := a.visitExpr(el)
		if err != nil {
			return nil, err
		}
		n.Elems[i] = v
		if err := a.unify(v.Pos(), elemType, v.Type()); err != nil {
			return nil, err
		}
	}

	nilNode := &ast.ConstructExpr{ExprBase: ast.NewExprBase(n.Pos()), Constructor: "Nil", ResolvedCtor: a.nilCtor}
	nilNode.SetType(listType)
	var out ast.Expr = nilNode
	for i := len(n.Elems) - 1; i >= 0; i-- {
		consNode := &ast.ConstructExpr{
			ExprBase:     ast.NewExprBase(n.Elems[i].Pos()),
			Constructor:  "Cons",
			Args:         []ast.Expr{n.Elems[i], out},
			ResolvedCtor: a.consCtor,
		}
		consNode.SetType(listType)
		out = consNode
	}
	return out, nil
}

func (a *Analyzer) visitFuncExpr(n *ast.FuncExpr) (ast.Expr, error) {
	paramTypes := make([]*types.Type, len(n.Params))
	n.ParamSymbols = make([]any, len(n.Params))
	a.pushScope()
	for i, p := range n.Params {
		pt := types.NewVariable()
		paramTypes[i] = pt
		sym := &Symbol{Name: p.Name, Kind: SymVariable, Type: pt, Scheme: types.Trivial(pt), IsParam: true, Offset: i, Node: n}
		a.define(sym)
		n.ParamSymbols[i] = sym
	}
	body, err := a.visitExpr(n.Body)
	a.popScope()
	if err != nil {
		return nil, err
	}
	n.Body = body
	n.SetType(types.NewFunction(paramTypes, body.Type()))
	return n, nil
}

func (a *Analyzer) visitBlockExpr(n *ast.BlockExpr) (ast.Expr, error) {
	a.pushScope()
	for i, s := range n.Stmts {
		if err := a.visitStmt(s); err != nil {
			a.popScope()
			return nil, err
		}
		n.Stmts[i] = s
	}
	if n.Value == nil {
		a.popScope()
		n.SetType(types.Unit)
		return n, nil
	}
	v, err := a.visitExpr(n.Value)
	a.popScope()
	if err != nil {
		return nil, err
	}
	n.Value = v
	n.SetType(v.Type())
	return n, nil
}

func (a *Analyzer) visitIfExpr(n *ast.IfExpr) (ast.Expr, error) {
	c, err := a.visitExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	n.Cond = c
	if err := a.unify(c.Pos(), c.Type(), types.Bool); err != nil {
		return nil, err
	}

	then, err := a.visitExpr(n.Then)
	if err != nil {
		return nil, err
	}
	n.Then = then

	if n.Else == nil {
		if err := a.unify(then.Pos(), then.Type(), types.Unit); err != nil {
			return nil, err
		}
		n.SetType(types.Unit)
		return n, nil
	}
	els, err := a.visitExpr(n.Else)
	if err != nil {
		return nil, err
	}
	n.Else = els
	if err := a.unify(n.Pos(), then.Type(), els.Type()); err != nil {
		return nil, err
	}
	n.SetType(then.Type())
	return n, nil
}

// visitMatchExpr type-checks every arm against the subject's constructors
// and, absent a wildcard arm, requires every one of the subject type's
// constructors to be covered (spec.md §4.2 "Match"; the wildcard-as-
// catch-all reading is this analyzer's resolution of that section's silence
// on wildcards, recorded in DESIGN.md).
func (a *Analyzer) visitMatchExpr(n *ast.MatchExpr) (ast.Expr, error) {
	subj, err := a.visitExpr(n.Subject)
	if err != nil {
		return nil, err
	}
	n.Subject = subj

	subjType := subj.Type().Find()
	if subjType.Tag() != types.Constructed {
		return nil, a.fail(diag.Semantic, n.Pos(), "cannot match non-data type %s", subjType)
	}
	ctor := subjType.TypeConstructor()

	seenTags := map[int64]bool{}
	hasWildcard := false
	var resultType *types.Type
	for i := range n.Cases {
		c := &n.Cases[i]
		c.BindingSymbols = make([]any, len(c.Bindings))
		a.pushScope()
		if c.Constructor == "" {
			hasWildcard = true
			if len(c.Bindings) == 1 && c.Bindings[0] != "_" {
				sym := &Symbol{Name: c.Bindings[0], Kind: SymVariable, Type: subjType, Scheme: types.Trivial(subjType), Node: n}
				a.define(sym)
				c.BindingSymbols[0] = sym
			}
		} else {
			sym, output, members, err := a.instantiateConstructor(n.Pos(), c.Constructor)
			if err != nil {
				a.popScope()
				return nil, err
			}
			if err := a.unify(n.Pos(), output, subjType); err != nil {
				a.popScope()
				return nil, err
			}
			c.ResolvedCtor = sym.Ctor
			seenTags[sym.Ctor.Tag] = true
			if len(members) != len(c.Bindings) {
				a.popScope()
				return nil, a.fail(diag.Semantic, n.Pos(), "constructor %q expects %d bindings, got %d", c.Constructor, len(members), len(c.Bindings))
			}
			for j, name := range c.Bindings {
				if name == "_" {
					continue
				}
				sym := &Symbol{Name: name, Kind: SymVariable, Type: members[j], Scheme: types.Trivial(members[j]), Node: n}
				a.define(sym)
				c.BindingSymbols[j] = sym
			}
		}
		body, err := a.visitExpr(c.Body)
		if err != nil {
			a.popScope()
			return nil, err
		}
		c.Body = body
		a.popScope()
		if resultType == nil {
			resultType = body.Type()
		} else if err := a.unify(body.Pos(), resultType, body.Type()); err != nil {
			return nil, err
		}
	}

	if !hasWildcard {
		for _, vc := range ctor.ValueConstructors {
			if !seenTags[vc.Tag] {
				return nil, a.fail(diag.Semantic, n.Pos(), "match on %s is not exhaustive: missing case %q", ctor.Name, vc.Name)
			}
		}
	}
	if resultType == nil {
		resultType = types.Unit
	}
	n.SetType(resultType)
	return n, nil
}

// visitForeverExpr leaves the loop's own type as a free variable, per
// spec.md §9's Open Question: it is only pinned to Unit if reached by a
// `break` inside the loop (visitBreakExpr); an infinite loop with no break
// is allowed to stay unconstrained.
func (a *Analyzer) visitForeverExpr(n *ast.ForeverExpr) (ast.Expr, error) {
	loopType := types.NewVariable()
	a.loopDepth++
	a.breakTargets = append(a.breakTargets, loopType)
	body, err := a.visitExpr(n.Body)
	a.loopDepth--
	a.breakTargets = a.breakTargets[:len(a.breakTargets)-1]
	if err != nil {
		return nil, err
	}
	n.Body = body
	if err := a.unify(body.Pos(), body.Type(), types.Unit); err != nil {
		return nil, err
	}
	n.SetType(loopType)
	return n, nil
}

func (a *Analyzer) visitWhileExpr(n *ast.WhileExpr) (ast.Expr, error) {
	c, err := a.visitExpr(n.Cond)
	if err != nil {
		return nil, err
	}
	n.Cond = c
	if err := a.unify(c.Pos(), c.Type(), types.Bool); err != nil {
		return nil, err
	}

	a.loopDepth++
	a.breakTargets = append(a.breakTargets, types.Unit)
	body, err := a.visitExpr(n.Body)
	a.loopDepth--
	a.breakTargets = a.breakTargets[:len(a.breakTargets)-1]
	if err != nil {
		return nil, err
	}
	n.Body = body
	if err := a.unify(body.Pos(), body.Type(), types.Unit); err != nil {
		return nil, err
	}
	n.SetType(types.Unit)
	return n, nil
}

func (a *Analyzer) visitForRangeExpr(n *ast.ForRangeExpr) (ast.Expr, error) {
	lo, err := a.visitExpr(n.Low)
	if err != nil {
		return nil, err
	}
	n.Low = lo
	if err := a.unify(lo.Pos(), lo.Type(), types.Int); err != nil {
		return nil, err
	}
	hi, err := a.visitExpr(n.High)
	if err != nil {
		return nil, err
	}
	n.High = hi
	if err := a.unify(hi.Pos(), hi.Type(), types.Int); err != nil {
		return nil, err
	}

	a.pushScope()
	varSym := &Symbol{Name: n.Var, Kind: SymVariable, Type: types.Int, Scheme: types.Trivial(types.Int), Node: n}
	a.define(varSym)
	n.VarSymbol = varSym
	a.loopDepth++
	a.breakTargets = append(a.breakTargets, types.Unit)
	body, err := a.visitExpr(n.Body)
	a.loopDepth--
	a.breakTargets = a.breakTargets[:len(a.breakTargets)-1]
	a.popScope()
	if err != nil {
		return nil, err
	}
	n.Body = body
	if err := a.unify(body.Pos(), body.Type(), types.Unit); err != nil {
		return nil, err
	}
	n.SetType(types.Unit)
	return n, nil
}

// visitForeachExpr resolves head/tail/empty on the iterable's type via the
// same method table an impl block's methods populate (spec.md §4.2
// "Foreach"), then binds the loop variable to head's return type.
func (a *Analyzer) visitForeachExpr(n *ast.ForeachExpr) (ast.Expr, error) {
	it, err := a.visitExpr(n.Iterable)
	if err != nil {
		return nil, err
	}
	n.Iterable = it

	itType := it.Type()
	headSym, headT, err := a.resolveMethod(itType, "head", n.Pos())
	if err != nil {
		return nil, err
	}
	tailSym, tailT, err := a.resolveMethod(itType, "tail", n.Pos())
	if err != nil {
		return nil, err
	}
	emptySym, emptyT, err := a.resolveMethod(itType, "empty", n.Pos())
	if err != nil {
		return nil, err
	}
	if err := a.unify(n.Pos(), headT.Find().Inputs()[0], itType); err != nil {
		return nil, err
	}
	if err := a.unify(n.Pos(), tailT.Find().Inputs()[0], itType); err != nil {
		return nil, err
	}
	if err := a.unify(n.Pos(), emptyT.Find().Inputs()[0], itType); err != nil {
		return nil, err
	}
	if err := a.unify(n.Pos(), tailT.Find().Output(), itType); err != nil {
		return nil, err
	}
	if err := a.unify(n.Pos(), emptyT.Find().Output(), types.Bool); err != nil {
		return nil, err
	}
	n.Head, n.Tail, n.Empty = headSym, tailSym, emptySym
	elemType := headT.Find().Output()

	a.pushScope()
	varSym := &Symbol{Name: n.Var, Kind: SymVariable, Type: elemType, Scheme: types.Trivial(elemType), Node: n}
	a.define(varSym)
	n.VarSymbol = varSym
	a.loopDepth++
	a.breakTargets = append(a.breakTargets, types.Unit)
	body, err := a.visitExpr(n.Body)
	a.loopDepth--
	a.breakTargets = a.breakTargets[:len(a.breakTargets)-1]
	a.popScope()
	if err != nil {
		return nil, err
	}
	n.Body = body
	if err := a.unify(body.Pos(), body.Type(), types.Unit); err != nil {
		return nil, err
	}
	n.SetType(types.Unit)
	return n, nil
}

// visitBreakExpr forces the nearest enclosing loop's type to Unit
// (spec.md §9 Open Question resolution: this is the sole mechanism that
// pins a `forever` loop's otherwise-free type). Any carried value is
// type-checked for its own sake but does not influence the loop's type.
func (a *Analyzer) visitBreakExpr(n *ast.BreakExpr) (ast.Expr, error) {
	if a.loopDepth == 0 {
		return nil, a.fail(diag.Semantic, n.Pos(), "break outside any loop")
	}
	if n.Value != nil {
		v, err := a.visitExpr(n.Value)
		if err != nil {
			return nil, err
		}
		n.Value = v
	}
	target := a.breakTargets[len(a.breakTargets)-1]
	if err := a.unify(n.Pos(), target, types.Unit); err != nil {
		return nil, err
	}
	n.SetType(types.Unit)
	return n, nil
}

func (a *Analyzer) visitReturnExpr(n *ast.ReturnExpr) (ast.Expr, error) {
	if a.currentFunc == nil {
		return nil, a.fail(diag.Semantic, n.Pos(), "return outside any function")
	}
	retType := a.currentFunc.Type.Find().Output()
	if n.Value != nil {
		v, err := a.visitExpr(n.Value)
		if err != nil {
			return nil, err
		}
		n.Value = v
		if err := a.unify(v.Pos(), retType, v.Type()); err != nil {
			return nil, err
		}
	} else if err := a.unify(n.Pos(), retType, types.Unit); err != nil {
		return nil, err
	}
	n.SetType(types.Unit)
	return n, nil
}
