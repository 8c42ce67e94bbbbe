package mach

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/tac"
)

func TestOpcodeString(t *testing.T) {
	tests := []struct {
		op   Opcode
		want string
	}{
		{ADD, "add"},
		{CALL, "call"},
		{IDIV, "idiv"},
		{JNE, "jne"},
		{MOVrm, "movrm"},
		{RET, "ret"},
	}
	for _, tt := range tests {
		if got := tt.op.String(); got != tt.want {
			t.Errorf("Opcode(%d).String() = %q, want %q", tt.op, got, tt.want)
		}
	}
}

func TestNewBlockAssignsSequentialIDs(t *testing.T) {
	ctx := &Context{}
	fn := &Function{Name: "f", ctx: ctx}

	b0 := fn.NewBlock()
	b1 := fn.NewBlock()

	if b0.ID != 0 || b1.ID != 1 {
		t.Errorf("got block IDs %d, %d, want 0, 1", b0.ID, b1.ID)
	}
	if len(fn.Blocks) != 2 {
		t.Errorf("expected 2 blocks recorded on the function, got %d", len(fn.Blocks))
	}
}

func TestBlockLinkSetsSuccsAndPreds(t *testing.T) {
	fn := &Function{Name: "f"}
	b0 := fn.NewBlock()
	b1 := fn.NewBlock()

	b0.link(b1)

	if len(b0.Succs) != 1 || b0.Succs[0] != b1 {
		t.Errorf("expected b0 to succeed into b1, got %v", b0.Succs)
	}
	if len(b1.Preds) != 1 || b1.Preds[0] != b0 {
		t.Errorf("expected b1 to have b0 as a predecessor, got %v", b1.Preds)
	}
}

func TestNewVRegAssignsSequentialIDs(t *testing.T) {
	fn := &Function{Name: "f"}

	v0 := fn.NewVReg(tac.BoxOrInt)
	v1 := fn.NewVReg(tac.Reference)

	if v0.ID != 0 || v1.ID != 1 {
		t.Errorf("got vreg IDs %d, %d, want 0, 1", v0.ID, v1.ID)
	}
	if v1.Type != tac.Reference {
		t.Errorf("expected v1's type to be preserved, got %v", v1.Type)
	}
	if len(fn.VRegs()) != 2 {
		t.Errorf("expected VRegs() to report 2 registers, got %d", len(fn.VRegs()))
	}
}

func TestNewPinnedVRegRecordsPinAndJoinsVRegs(t *testing.T) {
	fn := &Function{Name: "f"}

	v := fn.NewPinnedVReg(tac.Integer, RAX)

	if v.Pinned != RAX {
		t.Errorf("expected v to be pinned to RAX, got %v", v.Pinned)
	}
	if len(fn.VRegs()) != 1 || fn.VRegs()[0] != v {
		t.Errorf("expected the pinned vreg to also be tracked by VRegs()")
	}
}

func TestNewStackVariableTracksAllocation(t *testing.T) {
	fn := &Function{Name: "f"}

	s := fn.NewStackVariable(tac.BoxOrInt, "spill0")

	if s.Name != "spill0" {
		t.Errorf("got name %q, want %q", s.Name, "spill0")
	}
	if len(fn.StackVariables()) != 1 || fn.StackVariables()[0] != s {
		t.Errorf("expected the stack variable to be tracked by StackVariables()")
	}
}

func TestOperandInterfaceImplementations(t *testing.T) {
	var _ Operand = &VReg{}
	var _ Operand = &HReg{}
	var _ Operand = &StackSlot{}
	var _ Operand = &Imm{}
	var _ Operand = &Addr{}
	var _ Operand = &Label{}
}

func TestIsRegisterAndIsMemory(t *testing.T) {
	if !isRegister(&VReg{}) || !isRegister(RAX) {
		t.Error("expected VReg and HReg to be registers")
	}
	if isRegister(&Imm{}) {
		t.Error("expected Imm not to be a register")
	}
	if !isMemory(&StackSlot{}) || !isMemory(&Addr{}) {
		t.Error("expected StackSlot and Addr to be memory operands")
	}
	if isMemory(RAX) {
		t.Error("expected a hardware register not to be a memory operand")
	}
}
