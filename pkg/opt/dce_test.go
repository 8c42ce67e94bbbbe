package opt

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/tac"
)

func TestEliminateDeadValuesRemovesUnusedChain(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")

	// a = untag(tag(7)); never used. Removing the Untag should make the Tag
	// dead in turn, a one-pass fixpoint has to catch.
	tagged := ctx.MakeTemp(fn, "", tac.BoxOrInt)
	tg := fn.EmitTag(entry, tagged, ctx.Constant(7))
	untagged := ctx.MakeTemp(fn, "", tac.Integer)
	ut := fn.EmitUntag(entry, untagged, tagged)
	fn.EmitReturn(entry, ctx.Zero)

	EliminateDeadValues(fn)

	for _, instr := range entry.Instrs {
		if instr == tg || instr == ut {
			t.Errorf("dead instruction %v survived elimination", instr)
		}
	}
}

func TestEliminateDeadValuesKeepsLiveValues(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")

	dest := ctx.MakeTemp(fn, "", tac.Integer)
	bin := fn.EmitBinary(entry, dest, ctx.Constant(1), tac.ADD, ctx.Constant(2))
	fn.EmitReturn(entry, dest)

	EliminateDeadValues(fn)

	found := false
	for _, instr := range entry.Instrs {
		if instr == bin {
			found = true
		}
	}
	if !found {
		t.Errorf("a BinaryOperation whose destination is returned should survive")
	}
}

func TestEliminateDeadValuesSkipsSideEffects(t *testing.T) {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("f")
	entry := ctx.MakeBlock(fn, "entry")
	local := ctx.MakeLocal(fn, "x")

	st := fn.EmitStore(entry, local, ctx.Zero)
	fn.EmitReturn(entry, ctx.Zero)

	EliminateDeadValues(fn)

	found := false
	for _, instr := range entry.Instrs {
		if instr == st {
			found = true
		}
	}
	if !found {
		t.Errorf("Store has no destination value and must never be treated as a dead pure value")
	}
}
