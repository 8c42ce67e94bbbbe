package ssa

import "github.com/outshift-lang/splc/pkg/tac"

// renamer walks the dominator tree once, threading one value stack per
// promoted local. Rather than mutating a φ's Incoming slice in place (which
// would silently skip use-list registration, since tac.Value's use-list
// mutators are unexported outside package tac), it records each
// predecessor's contribution in edges and leaves actually constructing the
// Phi to materializePhis, once every edge is known.
type renamer struct {
	dom     *domInfo
	pending map[*tac.BasicBlock]map[*tac.LocalValue]*pendingPhi
	stacks  map[*tac.LocalValue][]tac.Value
	edges   map[*tac.BasicBlock]map[*tac.LocalValue][]tac.PhiEdge
}

// renameVariables performs the dominator-tree-walk renaming pass: every
// Load of a promoted local is replaced by the value currently on top of
// that local's stack (and the Load removed); every Store pushes its source
// value onto the stack (and the Store removed); crossing into a successor
// block records this block's current value for that successor's pending φs.
func renameVariables(fn *tac.Function, dom *domInfo, pending map[*tac.BasicBlock]map[*tac.LocalValue]*pendingPhi) map[*tac.BasicBlock]map[*tac.LocalValue][]tac.PhiEdge {
	r := &renamer{
		dom:     dom,
		pending: pending,
		stacks:  make(map[*tac.LocalValue][]tac.Value),
		edges:   make(map[*tac.BasicBlock]map[*tac.LocalValue][]tac.PhiEdge),
	}
	r.visit(fn.Entry())
	return r.edges
}

func (r *renamer) top(local *tac.LocalValue) tac.Value {
	s := r.stacks[local]
	return s[len(s)-1]
}

func (r *renamer) push(local *tac.LocalValue, v tac.Value) {
	r.stacks[local] = append(r.stacks[local], v)
}

func (r *renamer) pop(local *tac.LocalValue) {
	s := r.stacks[local]
	r.stacks[local] = s[:len(s)-1]
}

func (r *renamer) visit(b *tac.BasicBlock) {
	var pushed []*tac.LocalValue

	for local, phi := range r.pending[b] {
		r.push(local, phi.dest)
		pushed = append(pushed, local)
	}

	instrs := append([]tac.Instruction(nil), b.Instrs...)
	for _, instr := range instrs {
		switch in := instr.(type) {
		case *tac.Load:
			if local, ok := in.Addr.(*tac.LocalValue); ok {
				tac.ReplaceAllUses(in.Dest, r.top(local))
				b.Remove(in)
			}
		case *tac.Store:
			if local, ok := in.Addr.(*tac.LocalValue); ok {
				r.push(local, in.Src)
				pushed = append(pushed, local)
				b.Remove(in)
			}
		}
	}

	for _, succ := range b.Succs {
		for local := range r.pending[succ] {
			if r.edges[succ] == nil {
				r.edges[succ] = make(map[*tac.LocalValue][]tac.PhiEdge)
			}
			r.edges[succ][local] = append(r.edges[succ][local], tac.PhiEdge{Pred: b, Value: r.top(local)})
		}
	}

	for _, child := range r.dom.children[b] {
		r.visit(child)
	}

	for i := len(pushed) - 1; i >= 0; i-- {
		r.pop(pushed[i])
	}
}

// materializePhis constructs the real tac.Phi for every placed φ, now that
// renameVariables has recorded every predecessor's contribution.
func materializePhis(fn *tac.Function, pending map[*tac.BasicBlock]map[*tac.LocalValue]*pendingPhi, edges map[*tac.BasicBlock]map[*tac.LocalValue][]tac.PhiEdge) {
	for blk, vars := range pending {
		for local, phi := range vars {
			fn.EmitPhi(blk, phi.dest, edges[blk][local])
		}
	}
}

// killDeadPhis repeatedly removes φs with no remaining uses, since removing
// one φ can make one of its own incoming values (another φ) dead in turn.
func killDeadPhis(fn *tac.Function) {
	changed := true
	for changed {
		changed = false
		for _, blk := range fn.Blocks {
			for _, p := range blk.Phis() {
				if len(p.Dest.Uses()) == 0 {
					blk.Remove(p)
					changed = true
				}
			}
		}
	}
}
