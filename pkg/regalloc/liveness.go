package regalloc

import "github.com/outshift-lang/splc/pkg/mach"

// allocator carries one function's per-pass bookkeeping: the use/def sets
// gathered per block, the fixed-point liveness solution, the
// interference graph, and (once coloring succeeds) the color and spill
// assignments. Mirrors original_source/h/reg_alloc.hpp's RegAlloc fields.
type allocator struct {
	fn *mach.Function

	uses  map[*mach.Block]RegSet
	defs  map[*mach.Block]RegSet
	live  map[*mach.Block]RegSet
	spill map[*mach.VReg]*mach.StackSlot

	igraph     map[*mach.VReg]RegSet
	precolored map[*mach.VReg]int
	coloring   map[*mach.VReg]int
}

func newAllocator(fn *mach.Function) *allocator {
	return &allocator{fn: fn, spill: map[*mach.VReg]*mach.StackSlot{}}
}

func registerOperands(operands []mach.Operand) []*mach.VReg {
	var out []*mach.VReg
	for _, op := range operands {
		if v, ok := op.(*mach.VReg); ok {
			out = append(out, v)
		}
	}
	return out
}

// gatherUseDef computes, for each block, the registers it uses before any
// local definition and the registers it defines anywhere, grounded on
// RegAlloc::gatherUseDef.
func (a *allocator) gatherUseDef() {
	a.uses = map[*mach.Block]RegSet{}
	a.defs = map[*mach.Block]RegSet{}

	for _, blk := range a.fn.Blocks {
		used := RegSet{}
		defined := RegSet{}

		for _, inst := range blk.Instrs {
			for _, in := range registerOperands(inst.Inputs) {
				if !defined.has(in) {
					used.add(in)
				}
			}
			for _, out := range registerOperands(inst.Outputs) {
				defined.add(out)
			}
		}

		a.uses[blk] = used
		a.defs[blk] = defined
	}
}

// computeLiveness solves live[n] = (U_{s in succ[n]} live[s]) - def[n] + use[n]
// to a fixed point, grounded on RegAlloc::computeLiveness.
func (a *allocator) computeLiveness() {
	a.live = map[*mach.Block]RegSet{}
	for _, blk := range a.fn.Blocks {
		a.live[blk] = RegSet{}
	}

	for {
		changed := false
		for _, blk := range a.fn.Blocks {
			regs := RegSet{}
			for _, succ := range blk.Succs {
				regs = regs.union(a.live[succ])
			}
			for v := range a.defs[blk] {
				regs.remove(v)
			}
			regs = regs.union(a.uses[blk])

			if !a.live[blk].equals(regs) {
				a.live[blk] = regs
				changed = true
			}
		}
		if !changed {
			break
		}
	}
}

// liveOutOf returns the union of the live-in sets of blk's successors.
func (a *allocator) liveOutOf(blk *mach.Block) RegSet {
	out := RegSet{}
	for _, succ := range blk.Succs {
		out = out.union(a.live[succ])
	}
	return out
}
