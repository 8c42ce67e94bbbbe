package mach

import "github.com/outshift-lang/splc/pkg/tac"

// Opcode is the closed x86-64 instruction set this backend emits.
// Postfix convention, grounded on original_source/src/codegen/
// machine_instruction.hpp:
//
//	m: indirect memory location
//	i: immediate or address
//	r: register
//	d: either immediate or register ("direct")
type Opcode int

const (
	ADD Opcode = iota
	AND
	CALL
	CMP
	CQO
	DEC
	IDIV
	IMUL
	INC
	JE
	JG
	JGE
	JL
	JLE
	JMP
	JNE
	LEA
	MOVrd
	MOVrm
	MOVmd
	POP
	PUSH
	RET
	SAL
	SAR
	SUB
	TEST
)

var opcodeNames = [...]string{
	"add", "and", "call", "cmp", "cqo", "dec", "idiv", "imul", "inc",
	"je", "jg", "jge", "jl", "jle", "jmp", "jne", "lea",
	"movrd", "movrm", "movmd", "pop", "push", "ret", "sal", "sar", "sub", "test",
}

func (op Opcode) String() string { return opcodeNames[op] }

// Instr is a single machine instruction: an opcode plus its output and
// input operand lists. A flat opcode+operands shape, rather than the
// teacher's per-opcode Go structs, because every later pass (liveness,
// interference, the stack map, the NASM printer) walks Outputs/Inputs
// uniformly regardless of opcode — the same shape Go's own compiler
// backend (cmd/internal/obj.Prog) uses for exactly this reason.
type Instr struct {
	Opcode  Opcode
	Outputs []Operand
	Inputs  []Operand

	// CallSite is filled in by pkg/asm for CALL instructions: the
	// monotonically increasing per-function call-site index used to name
	// the post-call label and the stack-map entry.
	CallSite int
}

// Block is a sequence of machine instructions with explicit successor
// edges, mirroring pkg/tac.BasicBlock's shape one level down.
type Block struct {
	ID       int
	Instrs   []*Instr
	Succs    []*Block
	Preds    []*Block
}

func (b *Block) append(i *Instr) {
	b.Instrs = append(b.Instrs, i)
}

func (b *Block) link(succ *Block) {
	b.Succs = append(b.Succs, succ)
	succ.Preds = append(succ.Preds, b)
}

// Function is one machine-level function: its blocks, its virtual
// registers, and its stack slots. Parameter slots get their fixed offsets
// at selection; spills and spill-around-calls slots are assigned disjoint
// offsets by pkg/regalloc.
type Function struct {
	Name       string
	Blocks     []*Block
	Params     []*StackSlot // one per incoming parameter, offset 16+8*i
	IsExternal bool
	IsForeign  bool

	ctx          *Context
	nextVregID   int
	nextBlockID  int
	nextStackVar int
	vregs        []*VReg
	stackVars    []*StackSlot

	// FrameSize is the local frame size in bytes, filled in by
	// pkg/regalloc after spill/stack-variable allocation, which also
	// inserts the matching `sub rsp, FrameSize` right after the prologue.
	FrameSize int64

	// CallLiveRefs maps each CALL instruction to the rbp-relative
	// offsets of every reference-typed stack slot live across it,
	// filled in by pkg/asm's stack-map pass and read back by its NASM
	// printer when it reaches that CALL.
	CallLiveRefs map[*Instr][]int64
}

func (f *Function) NewBlock() *Block {
	b := &Block{ID: f.nextBlockID}
	f.nextBlockID++
	f.Blocks = append(f.Blocks, b)
	return b
}

func (f *Function) NewVReg(t tac.ValueType) *VReg {
	v := &VReg{ID: f.nextVregID, Type: t}
	f.nextVregID++
	f.vregs = append(f.vregs, v)
	return v
}

// NewPinnedVReg allocates a VReg that pkg/regalloc must color to hreg.
func (f *Function) NewPinnedVReg(t tac.ValueType, hreg *HReg) *VReg {
	v := f.NewVReg(t)
	v.Pinned = hreg
	return v
}

// VRegs returns every virtual register allocated in this function so far.
func (f *Function) VRegs() []*VReg { return f.vregs }

// NewStackVariable allocates a fresh local stack slot (a spill location
// or a call-argument save slot); its Offset is unassigned until
// pkg/regalloc's stack allocation pass runs.
func (f *Function) NewStackVariable(t tac.ValueType, name string) *StackSlot {
	s := &StackSlot{Name: name, Type: t}
	f.nextStackVar++
	f.stackVars = append(f.stackVars, s)
	return s
}

// StackVariables returns every non-parameter stack slot allocated in this
// function so far, for pkg/regalloc's stack-allocation pass to assign
// offsets to.
func (f *Function) StackVariables() []*StackSlot { return f.stackVars }

// Context is the arena owning every Function produced by Select, plus the
// module-level symbol tables the NASM printer needs: mutable globals,
// static strings, and extern declarations for foreign/runtime symbols.
type Context struct {
	Functions     []*Function
	Globals       []GlobalSymbol
	StaticStrings []StaticString
	Externs       []string
}

// GlobalSymbol is a module-level mutable variable slot.
type GlobalSymbol struct {
	Name string
	Type tac.ValueType
}

// StaticString is an interned string literal, laid out by pkg/asm with a
// GC object header ahead of its bytes.
type StaticString struct {
	Name  string
	Value string
}
