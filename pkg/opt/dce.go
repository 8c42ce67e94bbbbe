package opt

import "github.com/outshift-lang/splc/pkg/tac"

// EliminateDeadValues removes any "pure value" instruction — Copy, Load,
// IndexedLoad, Phi, BinaryOperation, Tag, Untag — whose destination has no
// remaining uses, repeating to a fixpoint since removing one dead value can
// make one of its own operands newly dead. Grounded on h/kill_dead_values.hpp's
// KillDeadValues visitor.
func EliminateDeadValues(fn *tac.Function) {
	changed := true
	for changed {
		changed = false
		for _, blk := range fn.Blocks {
			instrs := append([]tac.Instruction(nil), blk.Instrs...)
			for _, instr := range instrs {
				if isDeadPureValue(instr) {
					blk.Remove(instr)
					changed = true
				}
			}
		}
	}
}

func isDeadPureValue(instr tac.Instruction) bool {
	var dest tac.Value
	switch in := instr.(type) {
	case *tac.Copy:
		dest = in.Dest
	case *tac.Load:
		dest = in.Dest
	case *tac.IndexedLoad:
		dest = in.Dest
	case *tac.Phi:
		dest = in.Dest
	case *tac.BinaryOperation:
		dest = in.Dest
	case *tac.Tag:
		dest = in.Dest
	case *tac.Untag:
		dest = in.Dest
	default:
		return false
	}
	return dest != nil && len(dest.Uses()) == 0
}
