package asm

import (
	"testing"

	"github.com/outshift-lang/splc/pkg/mach"
	"github.com/outshift-lang/splc/pkg/tac"
)

// buildFunctionWithRefParamLiveAcrossCall builds a function whose single
// parameter is a reference live across a call: the call comes first, then
// a load from the parameter's stack slot, so the reference must still be
// locatable at the call site for the collector to scan it.
func buildFunctionWithRefParamLiveAcrossCall() (*mach.Function, *mach.Instr) {
	fn := &mach.Function{Name: "f"}
	paramSlot := &mach.StackSlot{Name: "p0", Type: tac.Reference, Offset: 16, IsParam: true}
	fn.Params = []*mach.StackSlot{paramSlot}

	blk := fn.NewBlock()
	callIns := &mach.Instr{Opcode: mach.CALL, Outputs: []mach.Operand{mach.RAX}, Inputs: []mach.Operand{&mach.Addr{Name: "someFunc"}}}
	blk.Instrs = append(blk.Instrs, callIns)

	dest := fn.NewVReg(tac.Reference)
	loadIns := &mach.Instr{Opcode: mach.MOVrm, Outputs: []mach.Operand{dest}, Inputs: []mach.Operand{paramSlot}}
	blk.Instrs = append(blk.Instrs, loadIns)

	return fn, callIns
}

func TestComputeStackMapTracksReferenceLiveAcrossCall(t *testing.T) {
	fn, callIns := buildFunctionWithRefParamLiveAcrossCall()

	ComputeStackMap(fn)

	offs, ok := fn.CallLiveRefs[callIns]
	if !ok {
		t.Fatalf("expected a recorded entry for the call instruction")
	}
	if len(offs) != 1 || offs[0] != 16 {
		t.Errorf("expected the call to report offset 16 live, got %v", offs)
	}
}

func TestComputeStackMapIgnoresNonReferenceSlots(t *testing.T) {
	fn := &mach.Function{Name: "g"}
	paramSlot := &mach.StackSlot{Name: "p0", Type: tac.BoxOrInt, Offset: 16, IsParam: true}
	fn.Params = []*mach.StackSlot{paramSlot}

	blk := fn.NewBlock()
	callIns := &mach.Instr{Opcode: mach.CALL, Inputs: []mach.Operand{&mach.Addr{Name: "someFunc"}}}
	blk.Instrs = append(blk.Instrs, callIns)
	dest := fn.NewVReg(tac.BoxOrInt)
	blk.Instrs = append(blk.Instrs, &mach.Instr{Opcode: mach.MOVrm, Outputs: []mach.Operand{dest}, Inputs: []mach.Operand{paramSlot}})

	ComputeStackMap(fn)

	if offs := fn.CallLiveRefs[callIns]; len(offs) != 0 {
		t.Errorf("expected no live references for a non-reference-typed slot, got %v", offs)
	}
}

func TestComputeStackMapTracksLocalSlotAcrossCall(t *testing.T) {
	fn := &mach.Function{Name: "h"}
	slot := &mach.StackSlot{Name: "local0", Type: tac.Reference, Offset: -8}

	blk := fn.NewBlock()
	storeIns := &mach.Instr{Opcode: mach.MOVmd, Inputs: []mach.Operand{slot, mach.RAX}}
	blk.Instrs = append(blk.Instrs, storeIns)
	callIns := &mach.Instr{Opcode: mach.CALL, Inputs: []mach.Operand{&mach.Addr{Name: "someFunc"}}}
	blk.Instrs = append(blk.Instrs, callIns)
	dest := fn.NewVReg(tac.Reference)
	blk.Instrs = append(blk.Instrs, &mach.Instr{Opcode: mach.MOVrm, Outputs: []mach.Operand{dest}, Inputs: []mach.Operand{slot}})

	ComputeStackMap(fn)

	if offs := fn.CallLiveRefs[callIns]; len(offs) != 1 || offs[0] != -8 {
		t.Errorf("expected offset -8 live across the call, got %v", offs)
	}
}
