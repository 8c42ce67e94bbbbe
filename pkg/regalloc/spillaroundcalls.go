package regalloc

import "github.com/outshift-lang/splc/pkg/mach"

// spillAroundCalls saves every register live across a CALL to a fresh
// stack slot beforehand and restores it afterward, except rsp/rbp (never
// colored) and rax when the call itself produces the live value there.
// This backend makes no caller/callee-save distinction, so every call is
// treated as clobbering the whole register file. Grounded on
// RegAlloc::spillAroundCalls, but run here against the vreg-level
// liveness colorGraph already computed (and mapped through a.coloring to
// the concrete hardware register) rather than recomputed from the
// hardware-register instructions replaceRegs produces — doing it before
// that rewrite keeps each synthesized save slot's declared type (for
// pkg/asm's GC stack map) equal to the spilled value's real ValueType
// instead of an conservative guess.
func (a *allocator) spillAroundCalls() {
	for _, blk := range a.fn.Blocks {
		regs := a.liveOutOf(blk)

		var rebuilt []*mach.Instr
		for i := len(blk.Instrs) - 1; i >= 0; i-- {
			inst := blk.Instrs[i]

			if inst.Opcode == mach.CALL {
				var saves, restores []*mach.Instr
				resultInRax := len(inst.Outputs) > 0
				for v := range regs {
					hreg := AllocatableRegs[a.coloring[v]]
					if hreg == mach.RAX && resultInRax {
						continue
					}
					slot := a.fn.NewStackVariable(v.Type, "callsave")
					saves = append(saves, &mach.Instr{Opcode: mach.MOVmd, Inputs: []mach.Operand{slot, hreg}})
					restores = append(restores, &mach.Instr{Opcode: mach.MOVrm, Outputs: []mach.Operand{hreg}, Inputs: []mach.Operand{slot}})
				}

				seq := append(append([]*mach.Instr{}, saves...), inst)
				seq = append(seq, restores...)
				rebuilt = append(seq, rebuilt...)
			} else {
				rebuilt = append([]*mach.Instr{inst}, rebuilt...)
			}

			for _, out := range registerOperands(inst.Outputs) {
				regs.remove(out)
			}
			for _, in := range registerOperands(inst.Inputs) {
				regs.add(in)
			}
		}

		blk.Instrs = rebuilt
	}
}
