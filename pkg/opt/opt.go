package opt

import "github.com/outshift-lang/splc/pkg/tac"

// Run optimizes fn in place: constant folding and dead-value elimination
// run to a fixpoint first so tag elision sees the smallest possible
// program, tag elision runs once over whatever phis remain, and a final
// dead-value sweep cleans up whatever tag elision left unreferenced (the
// original φs and Tag/Untag instructions it routed around). fn must still
// be in SSA form — call this after ssa.Transform and before ssa.Destruct.
func Run(ctx *tac.TACContext, fn *tac.Function) {
	foldAndEliminate(ctx, fn)
	ElideTags(ctx, fn)
	foldAndEliminate(ctx, fn)
}

func foldAndEliminate(ctx *tac.TACContext, fn *tac.Function) {
	for {
		FoldConstants(ctx, fn)
		before := countInstrs(fn)
		EliminateDeadValues(fn)
		if countInstrs(fn) == before {
			return
		}
	}
}

func countInstrs(fn *tac.Function) int {
	n := 0
	for _, blk := range fn.Blocks {
		n += len(blk.Instrs)
	}
	return n
}

// RunProgram runs Run over every defined function in ctx.
func RunProgram(ctx *tac.TACContext) {
	for _, fn := range ctx.Functions {
		if fn.IsExternal {
			continue
		}
		Run(ctx, fn)
	}
}
