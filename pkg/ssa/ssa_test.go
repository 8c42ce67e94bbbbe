package ssa

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/tac"
)

// buildDiamondWithLocal lowers:
//
//	let x = 0
//	if cond { x := 1 } else { x := 2 }
//	return x
//
// directly through the tac API, the way pkg/tacgen would for an if-expr
// whose arms assign a local rather than going through a synthetic result
// temp — the case Transform exists to turn into a real φ.
func buildDiamondWithLocal(ctx *tac.TACContext) (fn *tac.Function, local *tac.LocalValue, ret *tac.Return) {
	fn = ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")
	left := ctx.MakeBlock(fn, "left")
	right := ctx.MakeBlock(fn, "right")
	join := ctx.MakeBlock(fn, "join")

	local = ctx.MakeLocal(fn, "x")
	fn.EmitStore(entry, local, ctx.Zero)
	fn.EmitJumpIf(entry, ctx.True, left, right)

	fn.EmitStore(left, local, ctx.TaggedInt(1))
	fn.EmitJump(left, join)

	fn.EmitStore(right, local, ctx.TaggedInt(2))
	fn.EmitJump(right, join)

	result := ctx.MakeTemp(fn, "", tac.BoxOrInt)
	fn.EmitLoad(join, result, local)
	ret = fn.EmitReturn(join, result)
	return
}

func TestTransformInsertsPhiAtJoin(t *testing.T) {
	ctx := tac.NewContext()
	fn, local, ret := buildDiamondWithLocal(ctx)

	Transform(fn)

	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			switch in := instr.(type) {
			case *tac.Load:
				if in.Addr == local {
					t.Fatalf("Load of promoted local survived Transform in block %s", blk.Label)
				}
			case *tac.Store:
				if in.Addr == local {
					t.Fatalf("Store of promoted local survived Transform in block %s", blk.Label)
				}
			}
		}
	}

	join := ret.Block()
	phis := join.Phis()
	if len(phis) != 1 {
		t.Fatalf("join block has %d phis, want 1", len(phis))
	}
	p := phis[0]
	if len(p.Incoming) != 2 {
		t.Fatalf("phi has %d incoming edges, want 2", len(p.Incoming))
	}
	for _, e := range p.Incoming {
		if ci, ok := e.Value.(*tac.ConstantInt); !ok || (ci.Val != 3 && ci.Val != 5) {
			t.Errorf("unexpected incoming value %v from %s", e.Value, e.Pred.Label)
		}
	}

	if ret.Value != p.Dest {
		t.Errorf("return value = %v, want the phi's dest (the Load in the join block should have been replaced by it)", ret.Value)
	}
}

func TestTransformSkipsStraightLineLocal(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")
	local := ctx.MakeLocal(fn, "x")
	fn.EmitStore(entry, local, ctx.TaggedInt(7))
	result := ctx.MakeTemp(fn, "", tac.BoxOrInt)
	fn.EmitLoad(entry, result, local)
	ret := fn.EmitReturn(entry, result)

	Transform(fn)

	if len(entry.Phis()) != 0 {
		t.Errorf("straight-line function should need no phis, got %d", len(entry.Phis()))
	}
	if ci, ok := ret.Value.(*tac.ConstantInt); !ok || ci.Val != 15 {
		t.Errorf("return value = %v, want the tagged constant 7 (15) directly (no phi needed)", ret.Value)
	}
}

func TestDestructReplacesPhiWithCopies(t *testing.T) {
	ctx := tac.NewContext()
	fn, _, ret := buildDiamondWithLocal(ctx)
	Transform(fn)

	join := ret.Block()
	phiDest := join.Phis()[0].Dest

	Destruct(fn)

	if len(join.Phis()) != 0 {
		t.Fatalf("join block still has %d phis after Destruct", len(join.Phis()))
	}
	if fn.Locals != nil {
		t.Errorf("Destruct should clear fn.Locals, got %v", fn.Locals)
	}

	// The join block's first instruction should now be a Copy into the
	// former phi's destination.
	first := join.Instrs[0]
	cp, ok := first.(*tac.Copy)
	if !ok {
		t.Fatalf("join block's first instruction is %T, want *tac.Copy", first)
	}
	if cp.Dest != phiDest {
		t.Errorf("copy dest = %v, want the former phi dest %v", cp.Dest, phiDest)
	}

	// Each predecessor should carry a Copy into the same temp, placed
	// before its terminator.
	for _, pred := range join.Preds {
		term := pred.Terminator()
		found := false
		for _, instr := range pred.Instrs {
			if instr == term {
				break
			}
			if c, ok := instr.(*tac.Copy); ok && c.Dest == cp.Src {
				found = true
			}
		}
		if !found {
			t.Errorf("predecessor %s has no copy into %v before its terminator", pred.Label, cp.Src)
		}
	}
}

func TestKillDeadPhisRemovesUnusedJoin(t *testing.T) {
	ctx := tac.NewContext()
	// A local assigned on both arms of a branch but never read afterward:
	// the join phi it would need has zero uses and must be pruned.
	fn := ctx.MakeFunction("g")
	entry := ctx.MakeBlock(fn, "entry")
	left := ctx.MakeBlock(fn, "left")
	right := ctx.MakeBlock(fn, "right")
	join := ctx.MakeBlock(fn, "join")
	local := ctx.MakeLocal(fn, "x")
	fn.EmitStore(entry, local, ctx.Zero)
	fn.EmitJumpIf(entry, ctx.True, left, right)
	fn.EmitStore(left, local, ctx.TaggedInt(1))
	fn.EmitJump(left, join)
	fn.EmitStore(right, local, ctx.TaggedInt(2))
	fn.EmitJump(right, join)
	fn.EmitReturn(join, ctx.Zero)

	Transform(fn)

	if len(join.Phis()) != 0 {
		t.Errorf("phi for a never-loaded local should have been pruned as dead, found %d", len(join.Phis()))
	}
}
