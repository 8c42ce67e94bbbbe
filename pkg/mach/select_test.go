package mach

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/tac"
)

// buildAddOneFunction builds a minimal one-parameter function computing
// x + 2 and returning it, exercising Select's parameter/binary/return
// lowering without needing the full front end.
func buildAddOneFunction() *tac.TACContext {
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("addOne")
	arg0 := ctx.MakeArgument(fn, "x", 0, tac.BoxOrInt)
	blk := ctx.MakeBlock(fn, "entry")
	t := ctx.MakeTemp(fn, "t", tac.BoxOrInt)
	fn.EmitBinary(blk, t, arg0, tac.ADD, ctx.Constant(2))
	fn.EmitReturn(blk, t)
	return ctx
}

func TestSelectLowersSimpleFunction(t *testing.T) {
	mc := Select(buildAddOneFunction())

	if len(mc.Functions) != 1 {
		t.Fatalf("expected 1 selected function, got %d", len(mc.Functions))
	}
	fn := mc.Functions[0]
	if fn.Name != "addOne" {
		t.Errorf("got function name %q, want %q", fn.Name, "addOne")
	}
	if len(fn.Params) != 1 || fn.Params[0].Offset != 16 {
		t.Errorf("expected one param at offset 16, got %+v", fn.Params)
	}

	entry := fn.Blocks[0]
	if entry.Instrs[0].Opcode != PUSH {
		t.Errorf("expected the entry block to open with the prologue's PUSH, got %v", entry.Instrs[0].Opcode)
	}

	last := entry.Instrs[len(entry.Instrs)-1]
	if last.Opcode != RET {
		t.Errorf("expected the block to end with RET, got %v", last.Opcode)
	}
}

func TestSelectExternalFunctionsBecomeExterns(t *testing.T) {
	ctx := tac.NewContext()
	ctx.MakeExternFunction("gcAllocate", false)

	mc := Select(ctx)

	if len(mc.Functions) != 0 {
		t.Errorf("expected no selected function bodies for an external function, got %d", len(mc.Functions))
	}
	if len(mc.Externs) != 1 || mc.Externs[0] != "gcAllocate" {
		t.Errorf("expected gcAllocate to be recorded as an extern, got %v", mc.Externs)
	}
}

func TestSelectStaticStringsAndGlobals(t *testing.T) {
	ctx := tac.NewContext()
	ctx.MakeStaticString("str0", "hello")
	ctx.MakeGlobal("counter", tac.BoxOrInt)

	mc := Select(ctx)

	if len(mc.StaticStrings) != 1 || mc.StaticStrings[0].Value != "hello" {
		t.Errorf("expected one static string %q, got %v", "hello", mc.StaticStrings)
	}
	if len(mc.Globals) != 1 || mc.Globals[0].Name != "counter" {
		t.Errorf("expected one global %q, got %v", "counter", mc.Globals)
	}
}
