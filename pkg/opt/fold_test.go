package opt

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/tac"
)

func TestFoldConstantsBinaryOperation(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")

	dest := ctx.MakeTemp(fn, "", tac.Integer)
	fn.EmitBinary(entry, dest, ctx.Constant(4), tac.ADD, ctx.Constant(5))
	ret := fn.EmitReturn(entry, dest)

	FoldConstants(ctx, fn)

	ci, ok := ret.Value.(*tac.ConstantInt)
	if !ok || ci.Val != 9 {
		t.Fatalf("return value = %v, want constant 9", ret.Value)
	}
	for _, instr := range entry.Instrs {
		if _, ok := instr.(*tac.BinaryOperation); ok {
			t.Errorf("folded BinaryOperation survived: %v", instr)
		}
	}
}

func TestFoldConstantsTagAndUntag(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")

	tagged := ctx.MakeTemp(fn, "", tac.BoxOrInt)
	fn.EmitTag(entry, tagged, ctx.Constant(5))
	untagged := ctx.MakeTemp(fn, "", tac.Integer)
	fn.EmitUntag(entry, untagged, tagged)
	ret := fn.EmitReturn(entry, untagged)

	FoldConstants(ctx, fn)

	ci, ok := ret.Value.(*tac.ConstantInt)
	if !ok || ci.Val != 5 {
		t.Fatalf("return value = %v, want constant 5 (tag then untag of 5 round-trips)", ret.Value)
	}
	for _, instr := range entry.Instrs {
		switch instr.(type) {
		case *tac.Tag, *tac.Untag:
			t.Errorf("folded Tag/Untag survived: %v", instr)
		}
	}
}

func TestFoldConstantsLeavesNonConstantOperandsAlone(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")
	arg := ctx.MakeArgument(fn, "n", 0, tac.Integer)

	dest := ctx.MakeTemp(fn, "", tac.Integer)
	bin := fn.EmitBinary(entry, dest, arg, tac.ADD, ctx.Constant(1))
	fn.EmitReturn(entry, dest)

	FoldConstants(ctx, fn)

	found := false
	for _, instr := range entry.Instrs {
		if instr == bin {
			found = true
		}
	}
	if !found {
		t.Errorf("BinaryOperation with a non-constant operand should survive folding")
	}
}
