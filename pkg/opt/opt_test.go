package opt

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/tac"
)

// TestRunComposesPasses builds a function that needs all three passes:
// constant folding turns each arm's Tag of a constant into a tagged
// constant, tag elision rebuilds the join's phi over the raw constants and
// moves the Untag's consumer onto it, and dead value elimination removes the
// Untag and the tagged phi it leaves without uses. The add after the join
// is not foldable, since its operand differs per branch.
func TestRunComposesPasses(t *testing.T) {
	ctx := tac.NewContext()
	fn, join, ret := buildTaggedDiamond(ctx)

	// Extend the join block: add 10 to the untagged result before returning.
	// ret.Value currently holds the Untag's dest (rawResult); wire the add
	// in ahead of the existing Return the same way a real lowering would,
	// by replacing the block's terminator.
	rawResult := ret.Value
	join.Remove(ret)
	sum := ctx.MakeTemp(fn, "", tac.Integer)
	add := fn.EmitBinary(join, sum, rawResult, tac.ADD, ctx.Constant(10))
	ret = fn.EmitReturn(join, sum)

	Run(ctx, fn)

	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			switch instr.(type) {
			case *tac.Tag, *tac.Untag:
				t.Errorf("block %s still has %T after Run, want the tagging machinery gone", blk.Label, instr)
			}
		}
	}

	// The join keeps exactly one phi: the untagged one over the raw
	// constants, feeding the add directly.
	phis := join.Phis()
	if len(phis) != 1 {
		t.Fatalf("join has %d phis after Run, want exactly 1 (the untagged replacement)", len(phis))
	}
	for _, e := range phis[0].Incoming {
		ci, ok := e.Value.(*tac.ConstantInt)
		if !ok || (ci.Val != 3 && ci.Val != 4) {
			t.Errorf("incoming value %v from %s, want raw constant 3 or 4", e.Value, e.Pred.Label)
		}
	}
	if add.Lhs != phis[0].Dest {
		t.Errorf("add lhs = %v, want the untagged phi's dest", add.Lhs)
	}

	// Both arms yield a compile-time-known result (3+10=13, 4+10=14), but
	// they differ across the branch so the add itself cannot fold away —
	// only the tagging machinery around it can.
	if _, ok := ret.Value.(*tac.ConstantInt); ok {
		t.Errorf("return value folded to a single constant %v, but the branch taken isn't known until runtime", ret.Value)
	}
}

func TestRunProgramSkipsExternalFunctions(t *testing.T) {
	ctx := tac.NewContext()
	ext := ctx.MakeExternFunction("puts", true)

	RunProgram(ctx)

	if len(ext.Blocks) != 0 {
		t.Errorf("external function should have no blocks for Run to touch, got %d", len(ext.Blocks))
	}
}
