package tacgen

import (
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/semant"
	"github.com/outshift-lang/splc/pkg/tac"
	"github.com/outshift-lang/splc/pkg/types"
)

// genMatchExpr lowers a match expression: the scrutinee may be an
// immediate (low bit set) or a boxed object, so the constructor tag is
// recovered along two paths and joined with a φ, then compared against
// each arm's tag in source order. A wildcard arm needs no further test;
// every ctor arm is tested, and the fall-through of the last ctor arm's
// test is Unreachable.
func (g *Generator) genMatchExpr(n *ast.MatchExpr) tac.Value {
	subj := g.genExpr(n.Subject)

	immBlk := g.ctx.MakeBlock(g.fn, "")
	objBlk := g.ctx.MakeBlock(g.fn, "")
	tagJoin := g.ctx.MakeBlock(g.fn, "")

	lowBit := g.temp(tac.Integer)
	g.fn.EmitBinary(g.blk, lowBit, subj, tac.AND, g.ctx.Constant(1))
	g.fn.EmitConditionalJump(g.blk, lowBit, tac.CmpEq, g.ctx.Constant(0), objBlk, immBlk)

	g.blk = immBlk
	immTag := g.temp(tac.Integer)
	g.fn.EmitUntag(g.blk, immTag, subj)
	g.fn.EmitJump(g.blk, tagJoin)

	g.blk = objBlk
	objTag := g.temp(tac.Integer)
	g.fn.EmitIndexedLoad(g.blk, objTag, subj, 0)
	g.fn.EmitJump(g.blk, tagJoin)

	tagVal := g.temp(tac.Integer)
	g.fn.EmitPhi(tagJoin, tagVal, []tac.PhiEdge{
		{Pred: immBlk, Value: immTag},
		{Pred: objBlk, Value: objTag},
	})

	joinBlk := g.ctx.MakeBlock(g.fn, "")
	result := g.ctx.MakeLocal(g.fn, "")
	cur := tagJoin

	for i := range n.Cases {
		c := &n.Cases[i]
		last := i == len(n.Cases)-1
		armBlk := g.ctx.MakeBlock(g.fn, "")

		if c.Constructor == "" {
			g.fn.EmitJump(cur, armBlk)
		} else {
			vc := c.ResolvedCtor.(*types.ValueConstructor)
			fallback := g.ctx.MakeBlock(g.fn, "")
			if last {
				g.fn.EmitUnreachable(fallback)
			}
			g.fn.EmitConditionalJump(cur, tagVal, tac.CmpEq, g.ctx.Constant(vc.Tag), armBlk, fallback)
			cur = fallback
		}

		g.blk = armBlk
		g.bindMatchCaseArm(c, subj)
		v := g.genExpr(c.Body)
		if g.blk.Terminator() == nil {
			g.fn.EmitStore(g.blk, result, v)
			g.fn.EmitJump(g.blk, joinBlk)
		}
	}

	g.blk = joinBlk
	dest := g.temp(valueTypeOf(n.Type()))
	g.fn.EmitLoad(g.blk, dest, result)
	return dest
}

func (g *Generator) bindMatchCaseArm(c *ast.MatchCase, subj tac.Value) {
	if c.Constructor == "" {
		if len(c.BindingSymbols) == 1 && c.BindingSymbols[0] != nil {
			g.defineLocal(c.BindingSymbols[0].(*semant.Symbol), subj)
		}
		return
	}
	for i, bs := range c.BindingSymbols {
		if bs == nil {
			continue
		}
		sym := bs.(*semant.Symbol)
		member := g.temp(valueTypeOf(sym.Type))
		g.fn.EmitIndexedLoad(g.blk, member, subj, int64(headerBytes+8*i))
		g.defineLocal(sym, member)
	}
}

func (g *Generator) genForeverExpr(n *ast.ForeverExpr) tac.Value {
	loopBlk := g.ctx.MakeBlock(g.fn, "")
	exitBlk := g.ctx.MakeBlock(g.fn, "")
	g.fn.EmitJump(g.blk, loopBlk)

	g.blk = loopBlk
	g.breakTargets = append(g.breakTargets, exitBlk)
	g.genExpr(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	if g.blk.Terminator() == nil {
		g.fn.EmitJump(g.blk, loopBlk)
	}

	g.blk = exitBlk
	return g.ctx.Zero
}

func (g *Generator) genWhileExpr(n *ast.WhileExpr) tac.Value {
	condBlk := g.ctx.MakeBlock(g.fn, "")
	bodyBlk := g.ctx.MakeBlock(g.fn, "")
	exitBlk := g.ctx.MakeBlock(g.fn, "")
	g.fn.EmitJump(g.blk, condBlk)

	g.blk = condBlk
	cond := g.genExpr(n.Cond)
	g.fn.EmitJumpIf(g.blk, cond, bodyBlk, exitBlk)

	g.blk = bodyBlk
	g.breakTargets = append(g.breakTargets, exitBlk)
	g.genExpr(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	if g.blk.Terminator() == nil {
		g.fn.EmitJump(g.blk, condBlk)
	}

	g.blk = exitBlk
	return g.ctx.Zero
}

// genForRangeExpr lowers `for i in low..high { body }` over the tagged
// integer representation: the loop variable advances by 2 per iteration
// since (n+1) tags to 2n+3 = (2n+1)+2. The bound is inclusive (`for i in
// 1..4` visits 1,2,3,4).
func (g *Generator) genForRangeExpr(n *ast.ForRangeExpr) tac.Value {
	lo := g.genExpr(n.Low)
	hi := g.genExpr(n.High)
	sym := n.VarSymbol.(*semant.Symbol)
	ivar := g.localFor(sym)
	g.fn.EmitStore(g.blk, ivar, lo)

	condBlk := g.ctx.MakeBlock(g.fn, "")
	bodyBlk := g.ctx.MakeBlock(g.fn, "")
	exitBlk := g.ctx.MakeBlock(g.fn, "")
	g.fn.EmitJump(g.blk, condBlk)

	g.blk = condBlk
	cur := g.temp(tac.BoxOrInt)
	g.fn.EmitLoad(g.blk, cur, ivar)
	g.fn.EmitConditionalJump(g.blk, cur, tac.CmpLe, hi, bodyBlk, exitBlk)

	g.blk = bodyBlk
	g.breakTargets = append(g.breakTargets, exitBlk)
	g.genExpr(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	if g.blk.Terminator() == nil {
		curv := g.temp(tac.BoxOrInt)
		g.fn.EmitLoad(g.blk, curv, ivar)
		next := g.temp(tac.BoxOrInt)
		g.fn.EmitBinary(g.blk, next, curv, tac.ADD, g.ctx.Constant(2))
		g.fn.EmitStore(g.blk, ivar, next)
		g.fn.EmitJump(g.blk, condBlk)
	}

	g.blk = exitBlk
	return g.ctx.Zero
}

// genForeachExpr lowers foreach over the head/tail/empty methods resolved
// on the iterable's type, reloading the current cursor from a local each
// iteration the way genWhileExpr reloads its condition.
func (g *Generator) genForeachExpr(n *ast.ForeachExpr) tac.Value {
	it := g.genExpr(n.Iterable)
	itVT := valueTypeOf(n.Iterable.Type())
	listLocal := g.ctx.MakeLocal(g.fn, "")
	g.fn.EmitStore(g.blk, listLocal, it)

	headSym := n.Head.(*semant.Symbol)
	tailSym := n.Tail.(*semant.Symbol)
	emptySym := n.Empty.(*semant.Symbol)
	varSym := n.VarSymbol.(*semant.Symbol)

	condBlk := g.ctx.MakeBlock(g.fn, "")
	bodyBlk := g.ctx.MakeBlock(g.fn, "")
	exitBlk := g.ctx.MakeBlock(g.fn, "")
	g.fn.EmitJump(g.blk, condBlk)

	g.blk = condBlk
	cur := g.temp(itVT)
	g.fn.EmitLoad(g.blk, cur, listLocal)
	isEmpty := g.emitCall(g.funcFor(emptySym), []tac.Value{cur}, tac.BoxOrInt)
	g.fn.EmitJumpIf(g.blk, isEmpty, exitBlk, bodyBlk)

	g.blk = bodyBlk
	headVal := g.emitCall(g.funcFor(headSym), []tac.Value{cur}, valueTypeOf(varSym.Type))
	g.defineLocal(varSym, headVal)
	g.breakTargets = append(g.breakTargets, exitBlk)
	g.genExpr(n.Body)
	g.breakTargets = g.breakTargets[:len(g.breakTargets)-1]
	if g.blk.Terminator() == nil {
		tailVal := g.emitCall(g.funcFor(tailSym), []tac.Value{cur}, itVT)
		g.fn.EmitStore(g.blk, listLocal, tailVal)
		g.fn.EmitJump(g.blk, condBlk)
	}

	g.blk = exitBlk
	return g.ctx.Zero
}

func (g *Generator) genBreakExpr(n *ast.BreakExpr) tac.Value {
	if n.Value != nil {
		g.genExpr(n.Value)
	}
	target := g.breakTargets[len(g.breakTargets)-1]
	g.fn.EmitJump(g.blk, target)
	return g.ctx.Zero
}

func (g *Generator) genReturnExpr(n *ast.ReturnExpr) tac.Value {
	var v tac.Value = g.ctx.Zero
	if n.Value != nil {
		v = g.genExpr(n.Value)
	}
	g.fn.EmitReturn(g.blk, v)
	return g.ctx.Zero
}
