package ssa

import "github.com/outshift-lang/splc/pkg/tac"

// Destruct lowers every remaining φ back to ordinary copies, grounded on
// original_source/src/from_ssa.cpp: one fresh temp per φ, a Copy from each
// incoming value into that temp inserted before the terminator of its
// source predecessor, and the φ itself replaced by a Copy from the temp
// into the φ's original destination. Run once, after optimization, right
// before machine-IR selection — pkg/mach has no notion of a φ.
func Destruct(fn *tac.Function) {
	for _, blk := range fn.Blocks {
		for _, p := range blk.Phis() {
			temp := fn.NewTemp(p.Dest.Name(), p.Dest.Type())
			for _, edge := range p.Incoming {
				fn.EmitCopyBefore(edge.Pred, temp, edge.Value)
			}
			blk.Remove(p)
			fn.EmitCopyAtFront(blk, p.Dest, temp)
		}
	}
	fn.Locals = nil
}

// DestructProgram runs Destruct over every defined function in ctx.
func DestructProgram(ctx *tac.TACContext) {
	for _, fn := range ctx.Functions {
		if fn.IsExternal {
			continue
		}
		Destruct(fn)
	}
}
