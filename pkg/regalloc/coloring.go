package regalloc

import "github.com/outshift-lang/splc/pkg/mach"

// colorGraph repeats gather/liveness/interference/coalesce, then attempts
// a coloring; each failed attempt has already spilled one vreg to the
// stack and rewritten the function, so the next iteration starts from a
// strictly smaller live range. Grounded on RegAlloc::colorGraph's
// do-while shape: bookkeeping is rebuilt from scratch on every retry
// rather than updated incrementally.
func (a *allocator) colorGraph() {
	for {
		a.gatherUseDef()
		a.computeLiveness()
		a.computeInterference()

		a.coalesceMoves()

		a.gatherUseDef()
		a.computeLiveness()
		a.computeInterference()

		if a.tryColorGraph() {
			return
		}
	}
}

// tryColorGraph simplifies the interference graph down to the
// precolored core, then colors every vreg on the way back out. If a
// vreg can't be colored, it spills it and reports failure so colorGraph
// retries against the rewritten function.
func (a *allocator) tryColorGraph() bool {
	a.coloring = map[*mach.VReg]int{}

	graph := map[*mach.VReg]RegSet{}
	for v, adj := range a.igraph {
		graph[v] = adj.clone()
	}

	var stack []*mach.VReg
	remove := func(v *mach.VReg) {
		for other := range graph[v] {
			graph[other].remove(v)
		}
		delete(graph, v)
	}

	for len(graph) > len(a.precolored) {
		picked := false
		for v, adj := range graph {
			if _, pre := a.precolored[v]; pre {
				continue
			}
			if len(adj) < availableColors {
				stack = append(stack, v)
				remove(v)
				picked = true
				break
			}
		}
		if !picked {
			// No vertex has low enough degree: pick an optimistic spill
			// candidate and defer the decision to findColorFor.
			for v := range graph {
				if _, pre := a.precolored[v]; pre {
					continue
				}
				stack = append(stack, v)
				remove(v)
				picked = true
				break
			}
		}
		if !picked {
			break
		}
	}

	for v := range a.precolored {
		stack = append(stack, v)
		remove(v)
	}

	// Pop the stack, adding each vertex back with its edges and coloring
	// it; the first one that can't be colored gets spilled.
	for i := len(stack) - 1; i >= 0; i-- {
		v := stack[i]
		for other := range a.igraph[v] {
			if graph[other] == nil {
				graph[other] = RegSet{}
			}
			graph[other].add(v)
			if graph[v] == nil {
				graph[v] = RegSet{}
			}
			graph[v].add(other)
		}

		if !a.findColorFor(graph, v) {
			a.spillVariable(v)
			return false
		}
	}

	return true
}

// findColorFor assigns v the lowest color not already used by one of its
// graph neighbours, or fails if every color up to availableColors is
// taken. Precolored vregs are assigned their forced color directly.
func (a *allocator) findColorFor(graph map[*mach.VReg]RegSet, v *mach.VReg) bool {
	if color, ok := a.precolored[v]; ok {
		a.coloring[v] = color
		return true
	}

	used := map[int]bool{}
	for other := range graph[v] {
		if c, ok := a.coloring[other]; ok {
			used[c] = true
		}
	}

	for c := 0; c < availableColors; c++ {
		if !used[c] {
			a.coloring[v] = c
			return true
		}
	}
	return false
}

// spillVariable replaces every use of v with a fresh vreg reloaded from
// a stack slot and every definition of v with a fresh vreg stored back
// to the same slot, grounded on RegAlloc::spillVariable.
func (a *allocator) spillVariable(v *mach.VReg) {
	slot := a.fn.NewStackVariable(v.Type, "spill")
	a.spill[v] = slot

	for _, blk := range a.fn.Blocks {
		var rebuilt []*mach.Instr
		for _, inst := range blk.Instrs {
			used := operandsContain(inst.Inputs, v)
			defined := operandsContain(inst.Outputs, v)

			if used {
				fresh := a.fn.NewVReg(v.Type)
				rebuilt = append(rebuilt, &mach.Instr{Opcode: mach.MOVrm, Outputs: []mach.Operand{fresh}, Inputs: []mach.Operand{slot}})
				for i, op := range inst.Inputs {
					if vr, ok := op.(*mach.VReg); ok && vr == v {
						inst.Inputs[i] = fresh
					}
				}
			}

			rebuilt = append(rebuilt, inst)

			if defined {
				fresh := a.fn.NewVReg(v.Type)
				for i, op := range inst.Outputs {
					if vr, ok := op.(*mach.VReg); ok && vr == v {
						inst.Outputs[i] = fresh
					}
				}
				rebuilt = append(rebuilt, &mach.Instr{Opcode: mach.MOVmd, Inputs: []mach.Operand{slot, fresh}})
			}
		}
		blk.Instrs = rebuilt
	}
}
