package ssa

import "github.com/outshift-lang/splc/pkg/tac"

// pendingPhi records a φ that needs to exist at a block for a given local,
// before its incoming edges are known. The Phi instruction itself is only
// constructed once renaming has filled in every edge — tac.Value's use-list
// mutators are unexported outside package tac, so a φ's operand list can
// only grow through a single, fully-populated call to Function.EmitPhi.
type pendingPhi struct {
	dest *tac.Temp
}

// placePhis runs the standard iterated-dominance-frontier placement
// algorithm over every local with more than one reaching definition,
// allocating each placed φ's destination temp up front (its real
// Incoming list is filled in later, by renameVariables).
func placePhis(fn *tac.Function, dom *domInfo, localTypes map[*tac.LocalValue]tac.ValueType) map[*tac.BasicBlock]map[*tac.LocalValue]*pendingPhi {
	defBlocks := make(map[*tac.LocalValue]map[*tac.BasicBlock]bool)
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			st, ok := instr.(*tac.Store)
			if !ok {
				continue
			}
			local, ok := st.Addr.(*tac.LocalValue)
			if !ok {
				continue
			}
			if defBlocks[local] == nil {
				defBlocks[local] = make(map[*tac.BasicBlock]bool)
			}
			defBlocks[local][blk] = true
		}
	}

	pending := make(map[*tac.BasicBlock]map[*tac.LocalValue]*pendingPhi)
	for _, local := range fn.Locals {
		defs := defBlocks[local]
		if len(defs) == 0 {
			continue
		}
		hasPhi := make(map[*tac.BasicBlock]bool)
		worklist := make([]*tac.BasicBlock, 0, len(defs))
		for b := range defs {
			worklist = append(worklist, b)
		}
		for len(worklist) > 0 {
			n := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for _, d := range dom.frontier[n] {
				if hasPhi[d] {
					continue
				}
				hasPhi[d] = true
				if pending[d] == nil {
					pending[d] = make(map[*tac.LocalValue]*pendingPhi)
				}
				pending[d][local] = &pendingPhi{dest: fn.NewTemp(local.Name(), localTypes[local])}
				if !defs[d] {
					defs[d] = true
					worklist = append(worklist, d)
				}
			}
		}
	}
	return pending
}

// localValueType infers the ValueType a local's promoted SSA values should
// carry, by looking at the type any existing Load of that local already
// produces. A local that is stored but never loaded has no promoted use
// and falls back to BoxOrInt; it is harmless either way since nothing will
// reference the resulting φ.
func localValueType(fn *tac.Function, local *tac.LocalValue) tac.ValueType {
	for _, blk := range fn.Blocks {
		for _, instr := range blk.Instrs {
			if ld, ok := instr.(*tac.Load); ok && ld.Addr == local {
				return ld.Dest.Type()
			}
		}
	}
	return tac.BoxOrInt
}
