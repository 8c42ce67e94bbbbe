// Package mach lowers pkg/tac's three-address code into x86-64 machine
// instructions operating on virtual and hardware registers, stack slots,
// and symbolic addresses. Grounded on original_source/src/codegen/
// machine_instruction.hpp for the opcode set and operand kinds, and
// original_source/src/machine_codegen.cpp for the per-TAC-instruction
// selection rules, following the teacher's pkg/mach in spirit (a small
// closed instruction set selected from a generic IR) even though the
// teacher targets ARM64 rather than x86-64.
package mach

import "github.com/outshift-lang/splc/pkg/tac"

// Operand is implemented by every machine-instruction operand: virtual and
// hardware registers, stack slots, immediates, symbolic addresses, and
// block labels used as jump targets.
type Operand interface {
	isOperand()
}

// VReg is an unallocated virtual register, colored by pkg/regalloc. Two
// VRegs are the same register iff they are the same pointer; ID is for
// display only.
type VReg struct {
	ID   int
	Type tac.ValueType

	// Pinned forces pkg/regalloc to color this VReg to a specific
	// hardware register rather than choosing freely: the System V
	// argument registers before a foreign call, rax/rdx around IDIV and
	// CQO, and the CALL result in rax. A pinned VReg still takes part in
	// liveness and interference like any other node, grounded on
	// original_source/src/reg_alloc.cpp's precolored-vertex handling in
	// computeInterference/findColorFor.
	Pinned *HReg
}

func (*VReg) isOperand() {}

// HReg is a fixed physical register, used directly for operands the
// selector pins to a specific machine register (division operands, the
// call return value) and for the colors pkg/regalloc assigns to VRegs.
type HReg struct {
	Name string
	// Index is this register's slot in the canonical hardware register
	// file (see Registers in regfile.go), used by pkg/regalloc as an
	// interference-graph pre-color.
	Index int
}

func (*HReg) isOperand() {}

// StackSlot is a function-local stack location, addressed relative to
// rbp. Offset is filled in by pkg/regalloc's stack allocator (local
// spill/frame slots, negative offsets) or fixed at selection time for
// incoming parameters (positive offsets, 16+8*index per the calling
// convention below).
type StackSlot struct {
	Name   string
	Type   tac.ValueType
	Offset int64
	// IsParam marks a slot representing this function's i'th incoming
	// parameter. pkg/asm's stack map treats these as already-defined at
	// function entry.
	IsParam    bool
	ParamIndex int
}

func (*StackSlot) isOperand() {}

// Imm is an integer immediate, already shifted/tagged if it represents a
// tagged-int constant; Type records whether it's reference-typed for
// completeness even though an immediate can never hold a heap pointer.
type Imm struct {
	Value int64
	Type  tac.ValueType
}

func (*Imm) isOperand() {}

// Addr is a symbolic address: a global variable, a function's entry
// label, a static string, or an externally linked (possibly foreign)
// symbol.
type Addr struct {
	Name     string
	Foreign  bool
	Type     tac.ValueType
}

func (*Addr) isOperand() {}

// Label wraps a Block as a jump-target operand.
type Label struct {
	Block *Block
}

func (*Label) isOperand() {}

func isVReg(o Operand) bool        { _, ok := o.(*VReg); return ok }
func isHReg(o Operand) bool        { _, ok := o.(*HReg); return ok }
func isStackSlot(o Operand) bool   { _, ok := o.(*StackSlot); return ok }
func isImm(o Operand) bool         { _, ok := o.(*Imm); return ok }
func isAddr(o Operand) bool        { _, ok := o.(*Addr); return ok }
func isRegister(o Operand) bool    { return isVReg(o) || isHReg(o) }
func isMemory(o Operand) bool      { return isStackSlot(o) || isAddr(o) }
