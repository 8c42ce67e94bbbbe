package regalloc

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/mach"
	"github.com/outshift-lang/splc/pkg/tac"
)

// buildFunction declares a function with nArgs BoxOrInt arguments named
// a, b, c, ..., lets build fill its entry block, and returns the result of
// instruction selection for the allocator tests to run against.
func buildFunction(name string, nArgs int, build func(ctx *tac.TACContext, fn *tac.Function, blk *tac.BasicBlock, args []*tac.Argument)) *mach.Context {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction(name)
	args := make([]*tac.Argument, nArgs)
	for i := 0; i < nArgs; i++ {
		args[i] = ctx.MakeArgument(fn, string(rune('a'+i)), i, tac.BoxOrInt)
	}
	blk := ctx.MakeBlock(fn, "entry")
	build(ctx, fn, blk, args)
	return mach.Select(ctx)
}

func noVRegsRemain(t *testing.T, fn *mach.Function) {
	t.Helper()
	for _, blk := range fn.Blocks {
		for _, inst := range blk.Instrs {
			for _, o := range append(append([]mach.Operand{}, inst.Outputs...), inst.Inputs...) {
				if _, ok := o.(*mach.VReg); ok {
					t.Errorf("function %s: found an unallocated vreg after Run: %+v", fn.Name, inst)
				}
			}
		}
	}
}

func TestRunReplacesEveryVReg(t *testing.T) {
	mc := buildFunction("addTwo", 2, func(ctx *tac.TACContext, fn *tac.Function, blk *tac.BasicBlock, args []*tac.Argument) {
		t0 := ctx.MakeTemp(fn, "t0", tac.BoxOrInt)
		fn.EmitBinary(blk, t0, args[0], tac.ADD, args[1])
		fn.EmitReturn(blk, t0)
	})

	Run(mc.Functions[0])
	noVRegsRemain(t, mc.Functions[0])
}

func TestRunHandlesManySimultaneouslyLiveValues(t *testing.T) {
	mc := buildFunction("sumSix", 6, func(ctx *tac.TACContext, fn *tac.Function, blk *tac.BasicBlock, args []*tac.Argument) {
		ab := ctx.MakeTemp(fn, "ab", tac.BoxOrInt)
		fn.EmitBinary(blk, ab, args[0], tac.ADD, args[1])
		cd := ctx.MakeTemp(fn, "cd", tac.BoxOrInt)
		fn.EmitBinary(blk, cd, args[2], tac.ADD, args[3])
		ef := ctx.MakeTemp(fn, "ef", tac.BoxOrInt)
		fn.EmitBinary(blk, ef, args[4], tac.ADD, args[5])
		abcd := ctx.MakeTemp(fn, "abcd", tac.BoxOrInt)
		fn.EmitBinary(blk, abcd, ab, tac.ADD, cd)
		total := ctx.MakeTemp(fn, "total", tac.BoxOrInt)
		fn.EmitBinary(blk, total, abcd, tac.ADD, ef)
		fn.EmitReturn(blk, total)
	})

	fn := mc.Functions[0]
	Run(fn)
	noVRegsRemain(t, fn)
}

func TestAllocatableRegsExcludesRspAndRbp(t *testing.T) {
	for _, r := range AllocatableRegs {
		if r == mach.RSP || r == mach.RBP {
			t.Errorf("expected AllocatableRegs to exclude %s", r.Name)
		}
	}
	if len(AllocatableRegs) != availableColors {
		t.Errorf("got %d allocatable registers, want %d", len(AllocatableRegs), availableColors)
	}
}
