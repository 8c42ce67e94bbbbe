package regalloc

import "github.com/outshift-lang/splc/pkg/mach"

// RegSet is a set of virtual registers, the data structure threaded
// through liveness and interference the way original_source/src/
// reg_alloc.cpp's RegSet (a std::set<Reg*>) is, and referenced but never
// itself defined anywhere in the teacher's pkg/regalloc — authored fresh
// here in the same union/difference-operator idiom its callers assume.
type RegSet map[*mach.VReg]struct{}

// NewRegSet builds a RegSet from the given vregs.
func NewRegSet(vregs ...*mach.VReg) RegSet {
	s := make(RegSet, len(vregs))
	for _, v := range vregs {
		s[v] = struct{}{}
	}
	return s
}

func (s RegSet) clone() RegSet {
	out := make(RegSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

func (s RegSet) has(v *mach.VReg) bool { _, ok := s[v]; return ok }

func (s RegSet) add(v *mach.VReg) { s[v] = struct{}{} }

func (s RegSet) remove(v *mach.VReg) { delete(s, v) }

// union returns a new RegSet containing every register in s or other.
func (s RegSet) union(other RegSet) RegSet {
	out := s.clone()
	for v := range other {
		out[v] = struct{}{}
	}
	return out
}

// equals reports whether s and other contain exactly the same registers,
// used by the liveness fixed-point to detect convergence.
func (s RegSet) equals(other RegSet) bool {
	if len(s) != len(other) {
		return false
	}
	for v := range s {
		if !other.has(v) {
			return false
		}
	}
	return true
}
