package mach

import "github.com/outshift-lang/splc/pkg/tac"

// Select lowers an entire TACContext into a machine-level Context,
// grounded instruction-by-instruction on original_source/src/
// machine_codegen.cpp. Functions with no body (IsExternal) become extern
// declarations rather than selected bodies.
func Select(ctx *tac.TACContext) *Context {
	mc := &Context{}

	for _, g := range ctx.Globals {
		switch g.Kind {
		case tac.GlobalVariable:
			mc.Globals = append(mc.Globals, GlobalSymbol{Name: g.Name(), Type: g.Type()})
		case tac.GlobalStaticString:
			mc.StaticStrings = append(mc.StaticStrings, StaticString{Name: g.Name(), Value: g.StringValue})
		}
	}

	for _, fn := range ctx.Functions {
		if fn.IsExternal {
			mc.Externs = append(mc.Externs, fn.Name)
			continue
		}
		mc.Functions = append(mc.Functions, selectFunction(mc, fn))
	}
	return mc
}

// selector carries the per-function state threaded through lowering: the
// destination machine function, a value memo mapping every TAC value
// that's already been materialized to its operand, and the block map.
type selector struct {
	mc     *Context
	mf     *Function
	blocks map[*tac.BasicBlock]*Block
	values map[tac.Value]Operand
}

func selectFunction(mc *Context, fn *tac.Function) *Function {
	mf := &Function{Name: fn.Name, ctx: mc}
	s := &selector{mc: mc, mf: mf, blocks: map[*tac.BasicBlock]*Block{}, values: map[tac.Value]Operand{}}

	for _, blk := range fn.Blocks {
		s.blocks[blk] = mf.NewBlock()
	}

	// Parameters arrive on the stack at a fixed offset relative to rbp,
	// 16+8*i: 8 bytes for the return address pushed by CALL and 8 for the
	// caller's saved rbp, then one 8-byte slot per argument in order, the
	// layout a non-regpass Call (see below) pushes them into. Grounded on
	// StackParameter's offset formula in original_source/src/codegen/
	// machine_instruction.hpp.
	for i, p := range fn.Params {
		slot := &StackSlot{Name: p.Name(), Type: p.Type(), Offset: 16 + 8*int64(i), IsParam: true, ParamIndex: i}
		mf.Params = append(mf.Params, slot)
		s.values[p] = slot
	}

	for _, blk := range fn.Blocks {
		mb := s.blocks[blk]
		for _, instr := range blk.Instrs {
			s.lower(mb, instr)
		}
	}

	prologue(mf.Blocks[0])
	return mf
}

// operand materializes v as an operand usable directly in an instruction.
// Constants and globals are pure values with no side effect; Temps and
// parameters are memoized vregs, loading a parameter from its stack slot
// into a fresh vreg the first time it's referenced.
func (s *selector) operand(mb *Block, v tac.Value) Operand {
	if op, ok := s.values[v]; ok {
		if slot, isSlot := op.(*StackSlot); isSlot && slot.IsParam {
			vreg := s.mf.NewVReg(v.Type())
			s.entryBlock().append(&Instr{Opcode: MOVrm, Outputs: []Operand{vreg}, Inputs: []Operand{slot}})
			s.values[v] = vreg
			return vreg
		}
		return op
	}

	switch val := v.(type) {
	case *tac.ConstantInt:
		op := &Imm{Value: val.Val, Type: val.Type()}
		s.values[v] = op
		return op
	case *tac.GlobalValue:
		op := &Addr{Name: val.Name(), Type: val.Type()}
		s.values[v] = op
		return op
	case *tac.BasicBlock:
		op := &Label{Block: s.blocks[val]}
		s.values[v] = op
		return op
	default:
		// Temps and any other Value are defined exactly once by an
		// instruction already lowered before this use (TAC's
		// single-definition-dominates-use invariant), so a vreg for it
		// must already be memoized.
		panic("mach: use of value with no prior definition")
	}
}

// dest allocates (or returns the already-allocated) vreg that v's
// defining instruction writes to.
func (s *selector) dest(v tac.Value) *VReg {
	if op, ok := s.values[v]; ok {
		return op.(*VReg)
	}
	vreg := s.mf.NewVReg(v.Type())
	s.values[v] = vreg
	return vreg
}

func (s *selector) entryBlock() *Block { return s.mf.Blocks[0] }

// loadImmIfWide widens a 64-bit immediate that doesn't fit in 32 bits
// through a scratch vreg, since x86-64 ADD/SUB/CMP/etc. only accept a
// 32-bit sign-extended immediate operand directly.
func (s *selector) loadImmIfWide(mb *Block, op Operand, t tac.ValueType) Operand {
	imm, ok := op.(*Imm)
	if !ok {
		return op
	}
	if imm.Value >= -(1<<31) && imm.Value < (1<<31) {
		return op
	}
	scratch := s.mf.NewVReg(t)
	mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{scratch}, Inputs: []Operand{imm}})
	return scratch
}

// toVReg forces op into a register, loading an immediate or memory
// operand into a scratch vreg first; used wherever an instruction's
// operand model forbids anything but a register (IDIV's divisor, a
// non-regpass call's pushed arguments that originate from memory).
func (s *selector) toVReg(mb *Block, op Operand, t tac.ValueType) Operand {
	if isVReg(op) {
		return op
	}
	scratch := s.mf.NewVReg(t)
	mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{scratch}, Inputs: []Operand{op}})
	return scratch
}

func (s *selector) lower(mb *Block, instr tac.Instruction) {
	switch ins := instr.(type) {
	case *tac.Copy:
		dest := s.dest(ins.Dest)
		src := s.operand(mb, ins.Src)
		mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{src}})

	case *tac.Load:
		dest := s.dest(ins.Dest)
		addr := s.operand(mb, ins.Addr)
		mb.append(&Instr{Opcode: MOVrm, Outputs: []Operand{dest}, Inputs: []Operand{addr}})

	case *tac.Store:
		addr := s.operand(mb, ins.Addr)
		src := s.operand(mb, ins.Src)
		mb.append(&Instr{Opcode: MOVmd, Inputs: []Operand{addr, src}})

	case *tac.IndexedLoad:
		dest := s.dest(ins.Dest)
		base := s.operand(mb, ins.Base)
		mb.append(&Instr{Opcode: MOVrm, Outputs: []Operand{dest}, Inputs: []Operand{base, &Imm{Value: ins.Offset, Type: tac.Integer}}})

	case *tac.IndexedStore:
		base := s.operand(mb, ins.Base)
		src := s.operand(mb, ins.Src)
		mb.append(&Instr{Opcode: MOVmd, Inputs: []Operand{base, src, &Imm{Value: ins.Offset, Type: tac.Integer}}})

	case *tac.BinaryOperation:
		s.lowerBinary(mb, ins)

	case *tac.Tag:
		dest := s.dest(ins.Dest)
		src := s.operand(mb, ins.Src)
		// dest = src; dest <<= 1; dest |= 1, the tagged-int encode.
		mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{src}})
		mb.append(&Instr{Opcode: SAL, Outputs: []Operand{dest}, Inputs: []Operand{dest, &Imm{Value: 1, Type: tac.Integer}}})
		mb.append(&Instr{Opcode: INC, Outputs: []Operand{dest}, Inputs: []Operand{dest}})

	case *tac.Untag:
		dest := s.dest(ins.Dest)
		src := s.operand(mb, ins.Src)
		mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{src}})
		mb.append(&Instr{Opcode: SAR, Outputs: []Operand{dest}, Inputs: []Operand{dest, &Imm{Value: 1, Type: tac.Integer}}})

	case *tac.Call:
		s.lowerCall(mb, ins)

	case *tac.Jump:
		target := s.blocks[ins.Target]
		mb.append(&Instr{Opcode: JMP, Inputs: []Operand{&Label{Block: target}}})
		mb.link(target)

	case *tac.JumpIf:
		s.lowerJumpIf(mb, ins)

	case *tac.ConditionalJump:
		s.lowerConditionalJump(mb, ins)

	case *tac.Phi:
		panic("mach: phi reached instruction selection; ssa.Destruct must run first")

	case *tac.Return:
		if ins.Value != nil {
			val := s.operand(mb, ins.Value)
			raxPinned := s.mf.NewPinnedVReg(ins.Value.Type(), RAX)
			mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{raxPinned}, Inputs: []Operand{val}})
			epilogue(mb, raxPinned)
		} else {
			epilogue(mb, nil)
		}

	case *tac.Unreachable:
		// Emits nothing: the front end has already proven this point is
		// never reached.

	default:
		panic("mach: unhandled TAC instruction in selection")
	}
}

// epilogue emits the standard `mov rsp,rbp; pop rbp; ret` sequence. ret's
// input, when present, is the pinned-rax vreg carrying the return value;
// it only keeps that value live up to the return, and pkg/asm's printer
// prints a bare `ret` without inspecting it.
func epilogue(mb *Block, raxValue Operand) {
	mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{RBP}, Inputs: []Operand{RSP}})
	mb.append(&Instr{Opcode: POP, Outputs: []Operand{RBP}})
	if raxValue != nil {
		mb.append(&Instr{Opcode: RET, Inputs: []Operand{raxValue}})
	} else {
		mb.append(&Instr{Opcode: RET})
	}
}

// prologue emits `push rbp; mov rbp,rsp` at the front of a defined
// function's entry block; selectFunction calls it once per function.
func prologue(mb *Block) {
	mb.Instrs = append([]*Instr{
		{Opcode: PUSH, Inputs: []Operand{RBP}},
		{Opcode: MOVrd, Outputs: []Operand{RBP}, Inputs: []Operand{RSP}},
	}, mb.Instrs...)
}

func (s *selector) lowerBinary(mb *Block, ins *tac.BinaryOperation) {
	dest := s.dest(ins.Dest)
	lhs := s.operand(mb, ins.Lhs)
	rhs := s.operand(mb, ins.Rhs)

	switch ins.Op {
	case tac.ADD, tac.SUB, tac.MUL, tac.AND:
		op := map[tac.BinaryOp]Opcode{tac.ADD: ADD, tac.SUB: SUB, tac.MUL: IMUL, tac.AND: AND}[ins.Op]
		rhs = s.loadImmIfWide(mb, rhs, ins.Dest.Type())
		mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{lhs}})
		mb.append(&Instr{Opcode: op, Outputs: []Operand{dest}, Inputs: []Operand{dest, rhs}})

	case tac.SHL, tac.SHR:
		op := map[tac.BinaryOp]Opcode{tac.SHL: SAL, tac.SHR: SAR}[ins.Op]
		mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{lhs}})
		mb.append(&Instr{Opcode: op, Outputs: []Operand{dest}, Inputs: []Operand{dest, rhs}})

	case tac.DIV, tac.MOD:
		rhsReg := s.toVReg(mb, rhs, ins.Dest.Type())
		raxIn := s.mf.NewPinnedVReg(ins.Lhs.Type(), RAX)
		mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{raxIn}, Inputs: []Operand{lhs}})
		rdxOut := s.mf.NewPinnedVReg(ins.Dest.Type(), RDX)
		mb.append(&Instr{Opcode: CQO, Outputs: []Operand{rdxOut}, Inputs: []Operand{raxIn}})
		raxOut := s.mf.NewPinnedVReg(ins.Dest.Type(), RAX)
		mb.append(&Instr{Opcode: IDIV, Outputs: []Operand{rdxOut, raxOut}, Inputs: []Operand{rdxOut, raxOut, rhsReg}})
		if ins.Op == tac.DIV {
			mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{raxOut}})
		} else {
			mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{rdxOut}})
		}
	}
}

var cmpJump = map[tac.CmpOp]Opcode{
	tac.CmpLt: JL, tac.CmpLe: JLE, tac.CmpEq: JE,
	tac.CmpNe: JNE, tac.CmpGe: JGE, tac.CmpGt: JG,
}

func (s *selector) lowerConditionalJump(mb *Block, ins *tac.ConditionalJump) {
	lhs := s.operand(mb, ins.Lhs)
	rhs := s.operand(mb, ins.Rhs)
	rhs = s.loadImmIfWide(mb, rhs, ins.Lhs.Type())
	// CMP requires at least one register operand; an immediate lhs can
	// only arise from constant folding, which pkg/opt already removes
	// ahead of this stage, so lhs is always a vreg here in practice.
	ifTrue := s.blocks[ins.IfTrue]
	ifFalse := s.blocks[ins.IfFalse]
	mb.append(&Instr{Opcode: CMP, Inputs: []Operand{lhs, rhs}})
	mb.append(&Instr{Opcode: cmpJump[ins.Op], Inputs: []Operand{&Label{Block: ifTrue}}})
	mb.append(&Instr{Opcode: JMP, Inputs: []Operand{&Label{Block: ifFalse}}})
	mb.link(ifTrue)
	mb.link(ifFalse)
}

// lowerJumpIf implements a boolean-valued branch: `cmp cond,TrueTagged;
// je ifTrue; jmp ifFalse`, constant-folded away when cond is already an
// immediate (pkg/opt should already have done this, but the fold is kept
// here as the last line of defense described in the instruction selector
// of original_source/src/machine_codegen.cpp).
func (s *selector) lowerJumpIf(mb *Block, ins *tac.JumpIf) {
	ifTrue := s.blocks[ins.IfTrue]
	ifFalse := s.blocks[ins.IfFalse]

	if imm, ok := s.operand(mb, ins.Cond).(*Imm); ok {
		target := ifFalse
		if imm.Value == tac.TrueTagged {
			target = ifTrue
		}
		mb.append(&Instr{Opcode: JMP, Inputs: []Operand{&Label{Block: target}}})
		mb.link(target)
		return
	}

	cond := s.operand(mb, ins.Cond)
	mb.append(&Instr{Opcode: CMP, Inputs: []Operand{cond, &Imm{Value: tac.TrueTagged, Type: tac.BoxOrInt}}})
	mb.append(&Instr{Opcode: JE, Inputs: []Operand{&Label{Block: ifTrue}}})
	mb.append(&Instr{Opcode: JMP, Inputs: []Operand{&Label{Block: ifFalse}}})
	mb.link(ifTrue)
	mb.link(ifFalse)
}

// lowerCall implements Call.RegPass/CCall/plain selection, grounded on
// original_source/src/machine_codegen.cpp's Call case:
//
//   - RegPass (foreign/runtime calls: gcAllocate, print, ccall itself):
//     arguments move into the System V argument registers, then a direct
//     call; CCall additionally routes through the `ccall` stack-switch
//     trampoline instead of calling the target directly.
//   - Otherwise (calls between this compiler's own functions): arguments
//     are pushed right-to-left with padding to keep the call 16-byte
//     aligned, matching the StackParameter layout the callee's prologue
//     expects, and popped back off after the call returns.
func (s *selector) lowerCall(mb *Block, ins *tac.Call) {
	callee := s.operand(mb, ins.Func)

	if ins.RegPass {
		argVregs := make([]Operand, len(ins.Args))
		for i, a := range ins.Args {
			if i >= len(ArgRegs) {
				panic("mach: regpass call with more arguments than System V registers support")
			}
			val := s.operand(mb, a)
			pinned := s.mf.NewPinnedVReg(a.Type(), ArgRegs[i])
			mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{pinned}, Inputs: []Operand{val}})
			argVregs[i] = pinned
		}

		target := callee
		if ins.CCall {
			target = &Addr{Name: "ccall", Foreign: true, Type: tac.CodeAddress}
		}

		raxOut := s.mf.NewPinnedVReg(tac.BoxOrInt, RAX)
		callIns := &Instr{Opcode: CALL, Outputs: []Operand{raxOut}, Inputs: append([]Operand{target}, argVregs...)}
		mb.append(callIns)
		if ins.Dest != nil {
			dest := s.dest(ins.Dest)
			mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{raxOut}})
		}
		return
	}

	// Plain call to one of this compiler's own functions: push args
	// right-to-left so arg[0] ends up at [rbp+16] in the callee, padding
	// to a 16-byte boundary first if there's an odd number of arguments.
	n := len(ins.Args)
	pad := n%2 == 1
	if pad {
		mb.append(&Instr{Opcode: PUSH, Inputs: []Operand{&Imm{Value: 0, Type: tac.Integer}}})
	}
	for i := n - 1; i >= 0; i-- {
		val := s.toVReg(mb, s.operand(mb, ins.Args[i]), ins.Args[i].Type())
		mb.append(&Instr{Opcode: PUSH, Inputs: []Operand{val}})
	}

	raxOut := s.mf.NewPinnedVReg(tac.BoxOrInt, RAX)
	mb.append(&Instr{Opcode: CALL, Outputs: []Operand{raxOut}, Inputs: []Operand{callee}})

	// Caller cleans up the pushed argument area: one discarding pop per
	// pushed word restores rsp without introducing a bare-immediate
	// rsp-adjust opcode outside this backend's closed instruction set.
	popped := n
	if pad {
		popped++
	}
	for i := 0; i < popped; i++ {
		scratch := s.mf.NewVReg(tac.Integer)
		mb.append(&Instr{Opcode: POP, Outputs: []Operand{scratch}})
	}

	if ins.Dest != nil {
		dest := s.dest(ins.Dest)
		mb.append(&Instr{Opcode: MOVrd, Outputs: []Operand{dest}, Inputs: []Operand{raxOut}})
	}
}
