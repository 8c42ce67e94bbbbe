package ssa

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/tac"
)

// diamond builds entry -> (left, right) -> join, the textbook case with a
// single non-trivial dominance frontier: both left and right sit in
// entry's frontier-free region, join's frontier contribution runs back up
// to entry.
func diamond(ctx *tac.TACContext) (fn *tac.Function, entry, left, right, join *tac.BasicBlock) {
	fn = ctx.MakeFunction("f")
	entry = ctx.MakeBlock(fn, "entry")
	left = ctx.MakeBlock(fn, "left")
	right = ctx.MakeBlock(fn, "right")
	join = ctx.MakeBlock(fn, "join")

	fn.EmitJumpIf(entry, ctx.True, left, right)
	fn.EmitJump(left, join)
	fn.EmitJump(right, join)
	fn.EmitReturn(join, ctx.Zero)
	return
}

func TestComputeDominatorsDiamond(t *testing.T) {
	ctx := tac.NewContext()
	fn, entry, left, right, join := diamond(ctx)
	dom := computeDominators(fn)

	if dom.idom[left] != entry {
		t.Errorf("idom(left) = %v, want entry", dom.idom[left])
	}
	if dom.idom[right] != entry {
		t.Errorf("idom(right) = %v, want entry", dom.idom[right])
	}
	if dom.idom[join] != entry {
		t.Errorf("idom(join) = %v, want entry", dom.idom[join])
	}

	frontier := dom.frontier[left]
	if len(frontier) != 1 || frontier[0] != join {
		t.Errorf("frontier(left) = %v, want [join]", frontier)
	}
	frontier = dom.frontier[right]
	if len(frontier) != 1 || frontier[0] != join {
		t.Errorf("frontier(right) = %v, want [join]", frontier)
	}
	if len(dom.frontier[entry]) != 0 {
		t.Errorf("frontier(entry) = %v, want empty", dom.frontier[entry])
	}
}

func TestComputeDominatorsLoop(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")
	header := ctx.MakeBlock(fn, "header")
	body := ctx.MakeBlock(fn, "body")
	exit := ctx.MakeBlock(fn, "exit")

	fn.EmitJump(entry, header)
	fn.EmitJumpIf(header, ctx.True, body, exit)
	fn.EmitJump(body, header)
	fn.EmitReturn(exit, ctx.Zero)

	dom := computeDominators(fn)
	if dom.idom[header] != entry {
		t.Errorf("idom(header) = %v, want entry", dom.idom[header])
	}
	if dom.idom[body] != header {
		t.Errorf("idom(body) = %v, want header", dom.idom[body])
	}
	if dom.idom[exit] != header {
		t.Errorf("idom(exit) = %v, want header", dom.idom[exit])
	}
	frontier := dom.frontier[body]
	if len(frontier) != 1 || frontier[0] != header {
		t.Errorf("frontier(body) = %v, want [header] (back edge closes the loop)", frontier)
	}
}
