package asm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/outshift-lang/splc/pkg/mach"
	"github.com/outshift-lang/splc/pkg/regalloc"
	"github.com/outshift-lang/splc/pkg/tac"
)

// buildAndAllocate lowers and register-allocates a small function
// returning a+b, the same shape pkg/mach and pkg/regalloc's own tests use,
// so the printer sees a realistic post-allocation mach.Context.
func buildAndAllocate(t *testing.T) *mach.Context {
	t.Helper()
	ctx := tac.NewContext()
	fn := ctx.MakeFunction("addTwo")
	a := ctx.MakeArgument(fn, "a", 0, tac.BoxOrInt)
	b := ctx.MakeArgument(fn, "b", 1, tac.BoxOrInt)
	blk := ctx.MakeBlock(fn, "entry")
	sum := ctx.MakeTemp(fn, "sum", tac.BoxOrInt)
	fn.EmitBinary(blk, sum, a, tac.ADD, b)
	fn.EmitReturn(blk, sum)
	ctx.MakeExternFunction("gcAllocate", false)
	ctx.MakeStaticString("str0", "hi")
	ctx.MakeGlobal("counter", tac.BoxOrInt)

	mc := mach.Select(ctx)
	regalloc.RunProgram(mc)
	return mc
}

func TestPrintProgramEmitsExpectedSections(t *testing.T) {
	mc := buildAndAllocate(t)

	var out bytes.Buffer
	NewPrinter(&out).PrintProgram(mc)
	text := out.String()

	for _, want := range []string{
		"bits 64",
		"section .text",
		"extern gcAllocate",
		"global addTwo",
		"addTwo:",
		"section .data",
		"str0:",
		"\"hi\"",
		"counter: dq 0",
		"global __stackMap",
		"__stackMap:",
		"global __globalVarTable",
		"__globalVarTable:",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("expected NASM output to contain %q, got:\n%s", want, text)
		}
	}
}

func TestPrintProgramNeverEmitsUnallocatedVReg(t *testing.T) {
	mc := buildAndAllocate(t)

	var out bytes.Buffer
	NewPrinter(&out).PrintProgram(mc)

	if strings.Contains(out.String(), "<nil>") {
		t.Errorf("expected no nil operand rendering in NASM output")
	}
}

func TestOperandPanicsOnUnallocatedVReg(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected operand to panic on an unallocated virtual register")
		}
	}()

	p := &Printer{w: &bytes.Buffer{}}
	p.operand(&mach.VReg{ID: 0, Type: tac.BoxOrInt})
}
