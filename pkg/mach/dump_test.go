package mach

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpRendersExternsAndInstructions(t *testing.T) {
	mc := Select(buildAddOneFunction())
	mc.Externs = append(mc.Externs, "gcAllocate")

	var out bytes.Buffer
	Dump(&out, mc)
	text := out.String()

	for _, want := range []string{"extern gcAllocate", "func addOne {", "push rbp", "ret"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected dump to contain %q, got:\n%s", want, text)
		}
	}
}

func TestDumpOperandRendersEveryOperandKind(t *testing.T) {
	blk := &Block{ID: 3}
	tests := []struct {
		op   Operand
		want string
	}{
		{&VReg{ID: 1}, "v1"},
		{&VReg{ID: 2, Pinned: RAX}, "v2(rax)"},
		{RAX, "rax"},
		{&StackSlot{Name: "local0", Offset: -8}, "[local0@-8]"},
		{&Imm{Value: 42}, "42"},
		{&Addr{Name: "gcAllocate"}, "gcAllocate"},
		{&Label{Block: blk}, ".3"},
	}
	for _, tt := range tests {
		if got := dumpOperand(tt.op); got != tt.want {
			t.Errorf("dumpOperand(%#v) = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestDumpInstrRendersOutputsAndInputs(t *testing.T) {
	inst := &Instr{Opcode: ADD, Outputs: []Operand{RAX}, Inputs: []Operand{RAX, &Imm{Value: 1}}}
	got := dumpInstr(inst)
	want := "add rax <- rax, 1"
	if got != want {
		t.Errorf("dumpInstr() = %q, want %q", got, want)
	}
}
