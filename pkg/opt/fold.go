// Package opt runs TAC-to-TAC optimizations after SSA construction and
// before SSA destruction: constant folding, dead value elimination, and
// tag elision. Grounded on original_source/src/constant_folding.cpp,
// h/kill_dead_values.hpp, and src/ir/tag_elision.cpp.
package opt

import "github.com/outshift-lang/splc/pkg/tac"

// FoldConstants replaces a BinaryOperation/Tag/Untag whose operands are all
// ConstantInt with the directly evaluated constant, rewiring every use of
// the old destination onto it and removing the now-dead instruction.
func FoldConstants(ctx *tac.TACContext, fn *tac.Function) {
	for _, blk := range fn.Blocks {
		instrs := append([]tac.Instruction(nil), blk.Instrs...)
		for _, instr := range instrs {
			switch in := instr.(type) {
			case *tac.BinaryOperation:
				foldBinary(ctx, blk, in)
			case *tac.Tag:
				if c, ok := in.Src.(*tac.ConstantInt); ok {
					tac.ReplaceAllUses(in.Dest, ctx.Constant((c.Val<<1)|1))
					blk.Remove(in)
				}
			case *tac.Untag:
				if c, ok := in.Src.(*tac.ConstantInt); ok {
					tac.ReplaceAllUses(in.Dest, ctx.Constant(c.Val>>1))
					blk.Remove(in)
				}
			}
		}
	}
}

func foldBinary(ctx *tac.TACContext, blk *tac.BasicBlock, in *tac.BinaryOperation) {
	lhs, ok := in.Lhs.(*tac.ConstantInt)
	if !ok {
		return
	}
	rhs, ok := in.Rhs.(*tac.ConstantInt)
	if !ok {
		return
	}

	var result int64
	switch in.Op {
	case tac.ADD:
		result = lhs.Val + rhs.Val
	case tac.SUB:
		result = lhs.Val - rhs.Val
	case tac.MUL:
		result = lhs.Val * rhs.Val
	case tac.AND:
		result = lhs.Val & rhs.Val
	case tac.SHL:
		result = lhs.Val << uint(rhs.Val)
	case tac.SHR:
		result = lhs.Val >> uint(rhs.Val)
	case tac.DIV:
		if rhs.Val == 0 {
			panic("opt: constant division by zero")
		}
		result = lhs.Val / rhs.Val
	case tac.MOD:
		if rhs.Val == 0 {
			panic("opt: constant division by zero")
		}
		result = lhs.Val % rhs.Val
	}

	tac.ReplaceAllUses(in.Dest, ctx.Constant(result))
	blk.Remove(in)
}
