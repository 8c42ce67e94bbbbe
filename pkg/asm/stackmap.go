// Package asm computes the GC stack map and prints a mach.Context as
// NASM text. Grounded on original_source/src/codegen/stack_map.cpp for
// the reference-slot data-flow and original_source/src/codegen/
// asm_printer.cpp for the instruction-by-instruction NASM text, following
// the small-per-opcode-switch structure of the teacher's pkg/asm/
// printer.go (ARM64 GNU-as) translated to x86-64 Intel-syntax NASM.
package asm

import (
	"github.com/outshift-lang/splc/pkg/mach"
	"github.com/outshift-lang/splc/pkg/tac"
)

type offsetSet map[int64]struct{}

func (s offsetSet) clone() offsetSet {
	out := make(offsetSet, len(s))
	for o := range s {
		out[o] = struct{}{}
	}
	return out
}

func (s offsetSet) union(other offsetSet) offsetSet {
	out := s.clone()
	for o := range other {
		out[o] = struct{}{}
	}
	return out
}

func (s offsetSet) equals(other offsetSet) bool {
	if len(s) != len(other) {
		return false
	}
	for o := range s {
		if _, ok := other[o]; !ok {
			return false
		}
	}
	return true
}

// refStackOffset returns the rbp-relative offset inputs[i] names, if
// that input is a reference-typed stack slot, and whether it does.
// Grounded on StackMap::run's isStackLocation()/type!=Reference guard.
func refStackOffset(inputs []mach.Operand, i int) (int64, bool) {
	if i >= len(inputs) {
		return 0, false
	}
	slot, ok := inputs[i].(*mach.StackSlot)
	if !ok || slot.Type != tac.Reference {
		return 0, false
	}
	return slot.Offset, true
}

// ComputeStackMap runs the backward reference-liveness data-flow over fn
// and records, for every CALL instruction, the rbp-relative offsets of
// the stack slots holding a live heap reference at that point. All of a
// function's incoming parameter slots are treated as defined at entry,
// matching StackMap::run's "all stack parameters are defined at the
// beginning of the function".
func ComputeStackMap(fn *mach.Function) {
	defs := map[*mach.Block]offsetSet{}
	uses := map[*mach.Block]offsetSet{}

	for _, blk := range fn.Blocks {
		defined := offsetSet{}
		used := offsetSet{}

		for _, inst := range blk.Instrs {
			switch inst.Opcode {
			case mach.MOVmd:
				if off, ok := refStackOffset(inst.Inputs, 0); ok {
					defined[off] = struct{}{}
				}
			case mach.MOVrm:
				if off, ok := refStackOffset(inst.Inputs, 0); ok {
					if _, already := defined[off]; !already {
						used[off] = struct{}{}
					}
				}
			}
		}

		defs[blk] = defined
		uses[blk] = used
	}

	if len(fn.Blocks) > 0 {
		entry := fn.Blocks[0]
		for _, p := range fn.Params {
			if p.Type == tac.Reference {
				defs[entry][p.Offset] = struct{}{}
			}
		}
	}

	live := map[*mach.Block]offsetSet{}
	for _, blk := range fn.Blocks {
		live[blk] = offsetSet{}
	}
	for {
		changed := false
		for _, blk := range fn.Blocks {
			locations := offsetSet{}
			for _, succ := range blk.Succs {
				locations = locations.union(live[succ])
			}
			next := offsetSet{}
			for o := range locations {
				if _, d := defs[blk][o]; !d {
					next[o] = struct{}{}
				}
			}
			next = next.union(uses[blk])
			if !live[blk].equals(next) {
				live[blk] = next
				changed = true
			}
		}
		if !changed {
			break
		}
	}

	fn.CallLiveRefs = map[*mach.Instr][]int64{}
	for _, blk := range fn.Blocks {
		liveOut := offsetSet{}
		for _, succ := range blk.Succs {
			liveOut = liveOut.union(live[succ])
		}

		for i := len(blk.Instrs) - 1; i >= 0; i-- {
			inst := blk.Instrs[i]
			switch inst.Opcode {
			case mach.MOVmd:
				if off, ok := refStackOffset(inst.Inputs, 0); ok {
					delete(liveOut, off)
				}
			case mach.MOVrm:
				if off, ok := refStackOffset(inst.Inputs, 0); ok {
					liveOut[off] = struct{}{}
				}
			case mach.CALL:
				offs := make([]int64, 0, len(liveOut))
				for o := range liveOut {
					offs = append(offs, o)
				}
				fn.CallLiveRefs[inst] = offs
			}
		}
	}
}
