package tac

// BasicBlock owns its instruction list and records predecessor/successor
// edges, kept consistent with terminator targets as instructions are
// appended. Instructions are held in a slice rather than an intrusive
// linked list.
type BasicBlock struct {
	valueBase // a block is itself a Value so it can be used as a jump/φ operand

	Fn    *Function
	Label string

	Instrs []Instruction
	Preds  []*BasicBlock
	Succs  []*BasicBlock

	hasTerminator bool
}

// Terminator returns the block's terminating instruction, or nil if the
// block is not yet closed.
func (b *BasicBlock) Terminator() Instruction {
	if !b.hasTerminator || len(b.Instrs) == 0 {
		return nil
	}
	return b.Instrs[len(b.Instrs)-1]
}

// Phis returns the φ-instruction prefix of the block.
func (b *BasicBlock) Phis() []*Phi {
	var out []*Phi
	for _, ins := range b.Instrs {
		if p, ok := ins.(*Phi); ok {
			out = append(out, p)
			continue
		}
		break
	}
	return out
}

// Append adds instr to the end of the block. Appending a terminator
// records the CFG edges it implies; appending after a terminator is a
// compiler bug.
func (b *BasicBlock) Append(instr Instruction) {
	if b.hasTerminator {
		panic("tac: Append after block terminator")
	}
	instr.setBlock(b)
	for _, v := range instr.Defs() {
		if v != nil {
			v.setDef(instr)
		}
	}
	for _, v := range instr.Operands() {
		if v != nil {
			v.addUse(instr)
		}
	}
	b.Instrs = append(b.Instrs, instr)
	if instr.IsTerminator() {
		b.hasTerminator = true
		b.connect(instr)
	}
}

// InsertBeforeTerminator inserts instr immediately before the block's
// terminator, used by SSA destruction to place parallel-copy instructions.
func (b *BasicBlock) InsertBeforeTerminator(instr Instruction) {
	if !b.hasTerminator {
		b.Append(instr)
		return
	}
	instr.setBlock(b)
	for _, v := range instr.Defs() {
		if v != nil {
			v.setDef(instr)
		}
	}
	for _, v := range instr.Operands() {
		if v != nil {
			v.addUse(instr)
		}
	}
	last := len(b.Instrs) - 1
	b.Instrs = append(b.Instrs, nil)
	copy(b.Instrs[last+1:], b.Instrs[last:last+1])
	b.Instrs[last] = instr
}

// PrependPhi inserts a φ instruction at the front of the block's φ-prefix,
// keeping the "φs occupy a prefix" invariant.
func (b *BasicBlock) PrependPhi(p *Phi) {
	p.setBlock(b)
	p.Dest.setDef(p)
	for _, v := range p.Operands() {
		if v != nil {
			v.addUse(p)
		}
	}
	b.Instrs = append([]Instruction{p}, b.Instrs...)
}

// PrependInstr inserts instr at the very front of the block, ahead of any
// φs. Used by SSA destruction to place the copy that replaces a removed φ
// in the position the φ occupied.
func (b *BasicBlock) PrependInstr(instr Instruction) {
	instr.setBlock(b)
	for _, v := range instr.Defs() {
		if v != nil {
			v.setDef(instr)
		}
	}
	for _, v := range instr.Operands() {
		if v != nil {
			v.addUse(instr)
		}
	}
	b.Instrs = append([]Instruction{instr}, b.Instrs...)
}

// InsertAfter inserts instr immediately after the instruction `after`
// within the block. Used by tag elision to materialize an untagged
// companion value right after the instruction that defines its tagged
// form, a position guaranteed to dominate every later use in the block.
func (b *BasicBlock) InsertAfter(after, instr Instruction) {
	instr.setBlock(b)
	for _, v := range instr.Defs() {
		if v != nil {
			v.setDef(instr)
		}
	}
	for _, v := range instr.Operands() {
		if v != nil {
			v.addUse(instr)
		}
	}
	for i, ins := range b.Instrs {
		if ins == after {
			b.Instrs = append(b.Instrs[:i+1], append([]Instruction{instr}, b.Instrs[i+1:]...)...)
			return
		}
	}
	b.Instrs = append(b.Instrs, instr)
}

// Remove deletes instr from the block, clearing its use-list registration.
// It does not disconnect CFG edges; callers that remove a terminator are
// responsible for re-establishing the block's control flow.
func (b *BasicBlock) Remove(instr Instruction) {
	out := b.Instrs[:0]
	for _, ins := range b.Instrs {
		if ins == instr {
			continue
		}
		out = append(out, ins)
	}
	b.Instrs = out
	for _, v := range instr.Operands() {
		if v != nil {
			v.removeUse(instr)
		}
	}
	if instr.IsTerminator() {
		b.hasTerminator = false
	}
}

func (b *BasicBlock) connect(term Instruction) {
	link := func(succ *BasicBlock) {
		b.Succs = append(b.Succs, succ)
		succ.Preds = append(succ.Preds, b)
	}
	switch t := term.(type) {
	case *Jump:
		link(t.Target)
	case *JumpIf:
		link(t.IfTrue)
		link(t.IfFalse)
	case *ConditionalJump:
		link(t.IfTrue)
		link(t.IfFalse)
	case *Return, *Unreachable:
		// no successors
	}
}
