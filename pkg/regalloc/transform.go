package regalloc

import (
	"github.com/outshift-lang/splc/pkg/mach"
	"github.com/outshift-lang/splc/pkg/tac"
)

// replaceRegs rewrites every vreg operand to the hardware register its
// color names, grounded on RegAlloc::replaceRegs.
func (a *allocator) replaceRegs() {
	for _, blk := range a.fn.Blocks {
		for _, inst := range blk.Instrs {
			for i, op := range inst.Inputs {
				if v, ok := op.(*mach.VReg); ok {
					inst.Inputs[i] = AllocatableRegs[a.coloring[v]]
				}
			}
			for i, op := range inst.Outputs {
				if v, ok := op.(*mach.VReg); ok {
					inst.Outputs[i] = AllocatableRegs[a.coloring[v]]
				}
			}
		}
	}
}

// allocateStack assigns each stack variable (spill slots and, later,
// call-argument save slots) a distinct negative rbp-relative offset and
// inserts a `sub rsp,frameSize` right after the entry block's prologue,
// grounded on the spec's "-8*i offsets, 16-byte rounding" stack
// allocation rule.
func (a *allocator) allocateStack() {
	vars := a.fn.StackVariables()
	for i, v := range vars {
		if v.Offset == 0 {
			v.Offset = -8 * int64(i+1)
		}
	}

	size := int64(len(vars)) * 8
	if size%16 != 0 {
		size += 8
	}
	a.fn.FrameSize = size

	if size == 0 {
		return
	}
	entry := a.fn.Blocks[0]
	sub := &mach.Instr{Opcode: mach.SUB, Outputs: []mach.Operand{mach.RSP}, Inputs: []mach.Operand{mach.RSP, &mach.Imm{Value: size, Type: tac.Integer}}}
	// Insert immediately after the `push rbp; mov rbp,rsp` prologue pair.
	entry.Instrs = append(entry.Instrs[:2:2], append([]*mach.Instr{sub}, entry.Instrs[2:]...)...)
}
