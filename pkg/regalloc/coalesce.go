package regalloc

import "github.com/outshift-lang/splc/pkg/mach"

// coalesceMoves substitutes the source for the destination everywhere for
// every MOVrd between two non-interfering, unpinned vregs (leaving that
// move as a self-move), skipping any move that would close a chain of
// substitutions back onto itself. This is the
// conservative coalescing RegAlloc::coalesceMoves performs (a plain
// substitution, not full Briggs/George coalescing, since the
// interference graph this pass runs against is already the one computed
// before coalescing — callers re-run gather/liveness/interference
// afterward to pick up the simplification).
func (a *allocator) coalesceMoves() {
	replacements := map[*mach.VReg]*mach.VReg{}

	for _, blk := range a.fn.Blocks {
		for _, inst := range blk.Instrs {
			if inst.Opcode != mach.MOVrd || len(inst.Inputs) != 1 || len(inst.Outputs) != 1 {
				continue
			}
			src, srcOK := inst.Inputs[0].(*mach.VReg)
			dst, dstOK := inst.Outputs[0].(*mach.VReg)
			if !srcOK || !dstOK || src == dst || src.Pinned != nil || dst.Pinned != nil {
				continue
			}
			if a.igraph[src].has(dst) {
				continue
			}
			r, cyclic := src, false
			for !cyclic {
				next, ok := replacements[r]
				if !ok {
					break
				}
				r = next
				cyclic = r == dst
			}
			if cyclic {
				continue
			}
			replacements[dst] = src
		}
	}

	resolve := func(v *mach.VReg) *mach.VReg {
		for {
			r, ok := replacements[v]
			if !ok {
				return v
			}
			v = r
		}
	}

	for _, blk := range a.fn.Blocks {
		for _, inst := range blk.Instrs {
			for i, op := range inst.Inputs {
				if v, ok := op.(*mach.VReg); ok {
					inst.Inputs[i] = resolve(v)
				}
			}
			for i, op := range inst.Outputs {
				if v, ok := op.(*mach.VReg); ok {
					inst.Outputs[i] = resolve(v)
				}
			}
		}
	}
}
