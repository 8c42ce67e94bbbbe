package tac

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpFunctionRendersSignatureAndBody(t *testing.T) {
	ctx := NewContext()
	fn := ctx.MakeFunction("addOne")
	arg0 := ctx.MakeArgument(fn, "x", 0, BoxOrInt)
	blk := ctx.MakeBlock(fn, "entry")
	tmp := ctx.MakeTemp(fn, "t", BoxOrInt)
	fn.EmitBinary(blk, tmp, arg0, ADD, ctx.Constant(2))
	fn.EmitReturn(blk, tmp)

	var out bytes.Buffer
	DumpFunction(&out, fn)
	text := out.String()

	for _, want := range []string{"func addOne(", "entry:", "t = add x,", "return t"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected dump to contain %q, got:\n%s", want, text)
		}
	}
}

func TestDumpFunctionExternalFunction(t *testing.T) {
	ctx := NewContext()
	fn := ctx.MakeExternFunction("gcAllocate", false)

	var out bytes.Buffer
	DumpFunction(&out, fn)

	if !strings.Contains(out.String(), "extern func gcAllocate") {
		t.Errorf("expected external function dump to mention extern, got %q", out.String())
	}
}

func TestDumpIncludesGlobalsAndStaticStrings(t *testing.T) {
	ctx := NewContext()
	ctx.MakeGlobal("counter", BoxOrInt)
	ctx.MakeStaticString("str0", "hello")

	var out bytes.Buffer
	Dump(&out, ctx)
	text := out.String()

	if !strings.Contains(text, "global counter") {
		t.Errorf("expected dump to mention the global variable, got %q", text)
	}
	if !strings.Contains(text, `string str0 = "hello"`) {
		t.Errorf("expected dump to mention the static string, got %q", text)
	}
}

func TestNameOfFallsBackToIDForUnnamedValues(t *testing.T) {
	ctx := NewContext()
	c := ctx.Constant(5)
	if got := nameOf(c); got == "" {
		t.Error("expected a non-empty name for an unnamed constant")
	}
	if got := nameOf(nil); got != "_" {
		t.Errorf("nameOf(nil) = %q, want %q", got, "_")
	}
}
