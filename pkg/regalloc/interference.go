package regalloc

import "github.com/outshift-lang/splc/pkg/mach"

// computeInterference builds the interference graph by a backward scan
// of each block, growing live-out into live-in, grounded on
// RegAlloc::computeInterference. A MOVrd's destination does not interfere
// with a live-out register that is also one of its sources, the
// exception that lets coalesceMoves later fold the move away.
func (a *allocator) computeInterference() {
	a.igraph = map[*mach.VReg]RegSet{}
	a.precolored = map[*mach.VReg]int{}

	addEdge := func(x, y *mach.VReg) {
		if x == y {
			return
		}
		if a.igraph[x] == nil {
			a.igraph[x] = RegSet{}
		}
		if a.igraph[y] == nil {
			a.igraph[y] = RegSet{}
		}
		a.igraph[x].add(y)
		a.igraph[y].add(x)
	}
	touch := func(v *mach.VReg) {
		if a.igraph[v] == nil {
			a.igraph[v] = RegSet{}
		}
	}

	for _, blk := range a.fn.Blocks {
		liveOut := a.liveOutOf(blk)

		for i := len(blk.Instrs) - 1; i >= 0; i-- {
			inst := blk.Instrs[i]
			newLiveOut := liveOut.clone()

			for _, out := range registerOperands(inst.Outputs) {
				touch(out)
				for live := range liveOut {
					if inst.Opcode == mach.MOVrd && operandsContain(inst.Inputs, live) {
						continue
					}
					addEdge(live, out)
				}
				newLiveOut.remove(out)
			}

			for _, in := range registerOperands(inst.Inputs) {
				newLiveOut.add(in)
			}

			liveOut = newLiveOut
		}
	}

	// Every pinned vreg is precolored to its forced hardware register.
	for v := range a.igraph {
		if v.Pinned != nil {
			a.precolored[v] = v.Pinned.Index
		}
	}

	// Pinned vregs pairwise interfere so two different ABI-forced
	// registers are never merged into each other.
	for x := range a.precolored {
		for y := range a.precolored {
			if x != y {
				addEdge(x, y)
			}
		}
	}
}

func operandsContain(operands []mach.Operand, v *mach.VReg) bool {
	for _, op := range operands {
		if vr, ok := op.(*mach.VReg); ok && vr == v {
			return true
		}
	}
	return false
}
