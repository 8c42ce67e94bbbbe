package tacgen

import (
	"fmt"

	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/semant"
	"github.com/outshift-lang/splc/pkg/tac"
	"github.com/outshift-lang/splc/pkg/types"
)

// genExpr lowers e into the current block, returning the Value it
// evaluates to. Every case appends its instructions to g.blk, which may
// itself change (if/match/loops/short-circuit all redirect g.blk to their
// join block before returning).
func (g *Generator) genExpr(e ast.Expr) tac.Value {
	switch n := e.(type) {
	case *ast.IntLit:
		return g.ctx.TaggedInt(n.Value)
	case *ast.BoolLit:
		if n.Value {
			return g.ctx.True
		}
		return g.ctx.False
	case *ast.StringLit:
		return g.internString(n.Value)
	case *ast.UnitLit:
		return g.ctx.Zero
	case *ast.VarExpr:
		return g.genVarExpr(n)
	case *ast.AssignExpr:
		return g.genAssignExpr(n)
	case *ast.BinaryExpr:
		return g.genBinaryExpr(n)
	case *ast.UnaryExpr:
		return g.genUnaryExpr(n)
	case *ast.CallExpr:
		return g.genCallExpr(n)
	case *ast.MemberExpr:
		return g.genMemberExpr(n)
	case *ast.ConstructExpr:
		return g.genConstructExpr(n)
	case *ast.FuncExpr:
		return g.genFuncExpr(n)
	case *ast.BlockExpr:
		return g.genBlockExpr(n)
	case *ast.IfExpr:
		return g.genIfExpr(n)
	case *ast.MatchExpr:
		return g.genMatchExpr(n)
	case *ast.ForeverExpr:
		return g.genForeverExpr(n)
	case *ast.WhileExpr:
		return g.genWhileExpr(n)
	case *ast.ForRangeExpr:
		return g.genForRangeExpr(n)
	case *ast.ForeachExpr:
		return g.genForeachExpr(n)
	case *ast.BreakExpr:
		return g.genBreakExpr(n)
	case *ast.ReturnExpr:
		return g.genReturnExpr(n)
	}
	panic(fmt.Sprintf("tacgen: unhandled expression node %T", e))
}

func (g *Generator) genVarExpr(n *ast.VarExpr) tac.Value {
	sym := n.Symbol.(*semant.Symbol)
	switch sym.Kind {
	case semant.SymConstructor:
		if sym.Ctor != nil && len(sym.Ctor.Members) == 0 {
			return g.ctx.TaggedInt(sym.Ctor.Tag)
		}
		return g.closureValue(g.ctorFuncFor(sym.Ctor))
	case semant.SymFunction:
		fn := g.funcFor(sym)
		if n.NullaryCall {
			return g.emitCall(fn, nil, valueTypeOf(n.Type()))
		}
		return g.closureValue(fn)
	default:
		load := g.temp(valueTypeOf(n.Type()))
		g.fn.EmitLoad(g.blk, load, g.localFor(sym))
		return load
	}
}

func (g *Generator) genAssignExpr(n *ast.AssignExpr) tac.Value {
	val := g.genExpr(n.Value)
	switch target := n.Target.(type) {
	case *ast.VarExpr:
		sym := target.Symbol.(*semant.Symbol)
		g.fn.EmitStore(g.blk, g.localFor(sym), val)
	case *ast.MemberExpr:
		recv := g.genExpr(target.Receiver)
		g.fn.EmitIndexedStore(g.blk, recv, int64(headerBytes+8*target.Slot), val)
	default:
		panic(fmt.Sprintf("tacgen: unhandled assignment target %T", n.Target))
	}
	return g.ctx.Zero
}

func arithOp(op string) tac.BinaryOp {
	switch op {
	case "+":
		return tac.ADD
	case "-":
		return tac.SUB
	case "*":
		return tac.MUL
	case "/":
		return tac.DIV
	case "%":
		return tac.MOD
	case "&":
		return tac.AND
	}
	panic("tacgen: unknown arithmetic operator " + op)
}

func cmpOp(op string) tac.CmpOp {
	switch op {
	case "==":
		return tac.CmpEq
	case "!=":
		return tac.CmpNe
	case "<":
		return tac.CmpLt
	case "<=":
		return tac.CmpLe
	case ">":
		return tac.CmpGt
	case ">=":
		return tac.CmpGe
	}
	panic("tacgen: unknown comparison operator " + op)
}

func (g *Generator) genBinaryExpr(n *ast.BinaryExpr) tac.Value {
	switch n.Op {
	case "+", "-", "*", "/", "%", "&":
		return g.genArith(n)
	case "==", "!=", "<", "<=", ">", ">=":
		return g.genCompare(n)
	case "&&":
		return g.genShortCircuit(n, true)
	case "||":
		return g.genShortCircuit(n, false)
	}
	panic("tacgen: unsupported operator " + n.Op)
}

// genArith untags both operands, performs the raw machine operation, and
// retags the result.
func (g *Generator) genArith(n *ast.BinaryExpr) tac.Value {
	l := g.genExpr(n.Left)
	r := g.genExpr(n.Right)
	lu := g.temp(tac.Integer)
	g.fn.EmitUntag(g.blk, lu, l)
	ru := g.temp(tac.Integer)
	g.fn.EmitUntag(g.blk, ru, r)
	raw := g.temp(tac.Integer)
	g.fn.EmitBinary(g.blk, raw, lu, arithOp(n.Op), ru)
	tagged := g.temp(tac.BoxOrInt)
	g.fn.EmitTag(g.blk, tagged, raw)
	return tagged
}

// genCompare lowers a comparison to a ConditionalJump into two blocks
// joined by a φ selecting True/False . Operands are compared
// in their tagged representation directly: tagging is order-preserving
// (2n+1 is strictly increasing in n) and injective, so no untag is needed.
func (g *Generator) genCompare(n *ast.BinaryExpr) tac.Value {
	l := g.genExpr(n.Left)
	r := g.genExpr(n.Right)
	trueBlk := g.ctx.MakeBlock(g.fn, "")
	falseBlk := g.ctx.MakeBlock(g.fn, "")
	joinBlk := g.ctx.MakeBlock(g.fn, "")
	g.fn.EmitConditionalJump(g.blk, l, cmpOp(n.Op), r, trueBlk, falseBlk)
	g.fn.EmitJump(trueBlk, joinBlk)
	g.fn.EmitJump(falseBlk, joinBlk)
	dest := g.temp(tac.BoxOrInt)
	g.fn.EmitPhi(joinBlk, dest, []tac.PhiEdge{
		{Pred: trueBlk, Value: g.ctx.True},
		{Pred: falseBlk, Value: g.ctx.False},
	})
	g.blk = joinBlk
	return dest
}

// genShortCircuit lowers `&&`/`||` to a short-circuit CFG with a φ at the
// join selecting the short-circuited constant or the right operand's value
//.
func (g *Generator) genShortCircuit(n *ast.BinaryExpr, isAnd bool) tac.Value {
	l := g.genExpr(n.Left)
	lBlk := g.blk
	rhsBlk := g.ctx.MakeBlock(g.fn, "")
	joinBlk := g.ctx.MakeBlock(g.fn, "")
	if isAnd {
		g.fn.EmitJumpIf(lBlk, l, rhsBlk, joinBlk)
	} else {
		g.fn.EmitJumpIf(lBlk, l, joinBlk, rhsBlk)
	}
	g.blk = rhsBlk
	r := g.genExpr(n.Right)
	rhsEnd := g.blk
	g.fn.EmitJump(rhsEnd, joinBlk)

	shortValue := g.ctx.False
	if !isAnd {
		shortValue = g.ctx.True
	}
	dest := g.temp(tac.BoxOrInt)
	g.fn.EmitPhi(joinBlk, dest, []tac.PhiEdge{
		{Pred: lBlk, Value: shortValue},
		{Pred: rhsEnd, Value: r},
	})
	g.blk = joinBlk
	return dest
}

func (g *Generator) genUnaryExpr(n *ast.UnaryExpr) tac.Value {
	v := g.genExpr(n.Operand)
	switch n.Op {
	case "-":
		u := g.temp(tac.Integer)
		g.fn.EmitUntag(g.blk, u, v)
		neg := g.temp(tac.Integer)
		g.fn.EmitBinary(g.blk, neg, g.ctx.Constant(0), tac.SUB, u)
		tagged := g.temp(tac.BoxOrInt)
		g.fn.EmitTag(g.blk, tagged, neg)
		return tagged
	case "!":
		trueBlk := g.ctx.MakeBlock(g.fn, "")
		falseBlk := g.ctx.MakeBlock(g.fn, "")
		joinBlk := g.ctx.MakeBlock(g.fn, "")
		g.fn.EmitJumpIf(g.blk, v, falseBlk, trueBlk)
		g.fn.EmitJump(trueBlk, joinBlk)
		g.fn.EmitJump(falseBlk, joinBlk)
		dest := g.temp(tac.BoxOrInt)
		g.fn.EmitPhi(joinBlk, dest, []tac.PhiEdge{
			{Pred: trueBlk, Value: g.ctx.True},
			{Pred: falseBlk, Value: g.ctx.False},
		})
		g.blk = joinBlk
		return dest
	}
	panic("tacgen: unsupported unary operator " + n.Op)
}

// genCallExpr implements the call convention: a direct global
// call resolves straight to the declared tac.Function; a method call
// prepends the receiver as the implicit first argument; anything else is an
// arbitrary closure-valued expression, called indirectly.
func (g *Generator) genCallExpr(e *ast.CallExpr) tac.Value {
	vt := valueTypeOf(e.Type())
	if e.IsMethodCall {
		member := e.Callee.(*ast.MemberExpr)
		recv := g.genExpr(member.Receiver)
		sym := e.ResolvedFunc.(*semant.Symbol)
		args := make([]tac.Value, 0, len(e.Args)+1)
		args = append(args, recv)
		for _, a := range e.Args {
			args = append(args, g.genExpr(a))
		}
		return g.emitCall(g.funcFor(sym), args, vt)
	}
	if vExpr, ok := e.Callee.(*ast.VarExpr); ok {
		sym := vExpr.Symbol.(*semant.Symbol)
		args := make([]tac.Value, len(e.Args))
		for i, a := range e.Args {
			args[i] = g.genExpr(a)
		}
		if sym.Kind == semant.SymConstructor {
			return g.constructValue(sym.Ctor, args)
		}
		return g.emitCall(g.funcFor(sym), args, vt)
	}
	callee := g.genExpr(e.Callee)
	args := make([]tac.Value, len(e.Args))
	for i, a := range e.Args {
		args[i] = g.genExpr(a)
	}
	return g.emitIndirectCall(callee, args, vt)
}

// genMemberExpr lowers a field read to
// IndexedLoad(dest, objectValue, sizeof(header)+8*slot).
func (g *Generator) genMemberExpr(n *ast.MemberExpr) tac.Value {
	recv := g.genExpr(n.Receiver)
	dest := g.temp(valueTypeOf(n.Type()))
	g.fn.EmitIndexedLoad(g.blk, dest, recv, int64(headerBytes+8*n.Slot))
	return dest
}

func (g *Generator) genConstructExpr(n *ast.ConstructExpr) tac.Value {
	vc := n.ResolvedCtor.(*types.ValueConstructor)
	args := make([]tac.Value, len(n.Args))
	for i, a := range n.Args {
		args[i] = g.genExpr(a)
	}
	return g.constructValue(vc, args)
}

// constructValue lowers a constructor application: a nullary constructor
// lowers to the immediate tagged tag; a
// constructor with members allocates sizeof(header)+8*nMembers bytes,
// fills the header (constructorTag, sizeInWords), and stores each member.
// This is lowered inline at each construction site rather than through a
// separately synthesized function (see DESIGN.md); ctorFuncFor below
// synthesizes one lazily only when the constructor is referenced bare, as a
// closure value.
func (g *Generator) constructValue(vc *types.ValueConstructor, args []tac.Value) tac.Value {
	if len(vc.Members) == 0 {
		return g.ctx.TaggedInt(vc.Tag)
	}
	sizeBytes := int64(headerBytes + 8*len(vc.Members))
	obj := g.emitCall(g.gcAllocate, []tac.Value{g.ctx.Constant(sizeBytes)}, tac.Reference)
	g.fn.EmitIndexedStore(g.blk, obj, 0, g.ctx.Constant(vc.Tag))
	g.fn.EmitIndexedStore(g.blk, obj, 8, g.ctx.Constant(int64(len(vc.Members))))
	for i, a := range args {
		g.fn.EmitIndexedStore(g.blk, obj, int64(headerBytes+8*i), a)
	}
	return obj
}

// ctorFuncFor lazily synthesizes a top-level function wrapping vc's
// allocation sequence, for the rare case where a non-nullary constructor is
// referenced bare (as a value) rather than fully applied.
func (g *Generator) ctorFuncFor(vc *types.ValueConstructor) *tac.Function {
	if fn, ok := g.ctorFns[vc]; ok {
		return fn
	}
	fn := g.ctx.MakeFunction("$ctor$" + vc.Name)
	g.ctorFns[vc] = fn

	savedFn, savedBlk, savedLocals := g.fn, g.blk, g.locals
	g.fn = fn
	g.locals = make(map[*semant.Symbol]*tac.LocalValue)
	g.blk = g.ctx.MakeBlock(fn, "entry")

	args := make([]tac.Value, len(vc.Members))
	for i, m := range vc.Members {
		args[i] = g.ctx.MakeArgument(fn, m.Name, i, valueTypeOf(m.Type))
	}
	v := g.constructValue(vc, args)
	g.fn.EmitReturn(g.blk, v)

	g.fn, g.blk, g.locals = savedFn, savedBlk, savedLocals
	return fn
}

// genFuncExpr lowers an anonymous function literal as a non-capturing
// top-level function: the closure mechanism used elsewhere covers bare
// references to already-named functions, not free-variable capture, so a
// FuncExpr body may only reference its own parameters and globals.
func (g *Generator) genFuncExpr(n *ast.FuncExpr) tac.Value {
	fn := g.ctx.MakeFunction("$closure$")

	savedFn, savedBlk, savedLocals := g.fn, g.blk, g.locals
	g.fn = fn
	g.locals = make(map[*semant.Symbol]*tac.LocalValue)
	g.blk = g.ctx.MakeBlock(fn, "entry")

	for i, p := range n.ParamSymbols {
		g.bindParam(p.(*semant.Symbol), i)
	}
	v := g.genExpr(n.Body)
	if g.blk.Terminator() == nil {
		g.fn.EmitReturn(g.blk, v)
	}

	g.fn, g.blk, g.locals = savedFn, savedBlk, savedLocals
	return g.closureValue(fn)
}

func (g *Generator) genBlockExpr(n *ast.BlockExpr) tac.Value {
	for _, s := range n.Stmts {
		if g.blk.Terminator() != nil {
			break // statements after a break/return in the same block are dead
		}
		g.genStmt(s)
	}
	if g.blk.Terminator() != nil {
		return g.ctx.Zero
	}
	if n.Value == nil {
		return g.ctx.Zero
	}
	return g.genExpr(n.Value)
}

// genIfExpr merges the two arms' values through a synthetic local: each arm
// stores its value, the join block loads it. This is the general mechanism
// pkg/ssa later promotes to a real φ via dominance-frontier insertion; only
// and/or, `!`, comparisons and a match's tag recovery get a directly
// emitted φ.
func (g *Generator) genIfExpr(n *ast.IfExpr) tac.Value {
	cond := g.genExpr(n.Cond)
	thenBlk := g.ctx.MakeBlock(g.fn, "")
	joinBlk := g.ctx.MakeBlock(g.fn, "")
	if n.Else == nil {
		g.fn.EmitJumpIf(g.blk, cond, thenBlk, joinBlk)
		g.blk = thenBlk
		g.genExpr(n.Then)
		if g.blk.Terminator() == nil {
			g.fn.EmitJump(g.blk, joinBlk)
		}
		g.blk = joinBlk
		return g.ctx.Zero
	}

	elseBlk := g.ctx.MakeBlock(g.fn, "")
	g.fn.EmitJumpIf(g.blk, cond, thenBlk, elseBlk)

	result := g.ctx.MakeLocal(g.fn, "")

	g.blk = thenBlk
	tv := g.genExpr(n.Then)
	if g.blk.Terminator() == nil {
		g.fn.EmitStore(g.blk, result, tv)
		g.fn.EmitJump(g.blk, joinBlk)
	}

	g.blk = elseBlk
	ev := g.genExpr(n.Else)
	if g.blk.Terminator() == nil {
		g.fn.EmitStore(g.blk, result, ev)
		g.fn.EmitJump(g.blk, joinBlk)
	}

	g.blk = joinBlk
	dest := g.temp(valueTypeOf(n.Type()))
	g.fn.EmitLoad(g.blk, dest, result)
	return dest
}
