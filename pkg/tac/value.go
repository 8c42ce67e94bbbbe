// Package tac implements the three-address-code intermediate
// representation: Value, Instruction, BasicBlock and Function, owned by a
// TACContext arena. Structurally grounded on the teacher's pkg/rtl
// (marker-method sum types for Operation/Instruction), adapted to
// slice-backed blocks that own their instructions directly instead of a
// node-id map.
package tac

// ValueType tells later stages whether an 8-byte slot may hold a heap
// pointer (needed by the GC stack map, pkg/asm) and whether arithmetic on
// it must preserve the integer tag (pkg/opt's tag elision).
type ValueType int

const (
	Reference ValueType = iota
	BoxOrInt
	Integer
	CodeAddress
	NonHeapAddress
)

func (t ValueType) String() string {
	switch t {
	case Reference:
		return "ref"
	case BoxOrInt:
		return "boxorint"
	case Integer:
		return "int"
	case CodeAddress:
		return "codeaddr"
	case NonHeapAddress:
		return "nonheapaddr"
	}
	return "?"
}

// Value is the common interface of every TAC operand. Every Value belongs
// to a TACContext, carries a stable sequence number assigned at creation,
// an optional name, a ValueType, a defining Instruction (nil for constants
// and arguments), and a use-list maintained by instruction constructors and
// ReplaceAllUses.
type Value interface {
	ID() int
	Name() string
	Type() ValueType
	Def() Instruction
	Uses() []Instruction

	setDef(Instruction)
	addUse(Instruction)
	removeUse(Instruction)
	clearUses()
}

type valueBase struct {
	id   int
	name string
	vt   ValueType
	def  Instruction
	uses []Instruction
}

func (v *valueBase) ID() int            { return v.id }
func (v *valueBase) Name() string       { return v.name }
func (v *valueBase) Type() ValueType    { return v.vt }
func (v *valueBase) Def() Instruction   { return v.def }
func (v *valueBase) Uses() []Instruction {
	return v.uses
}
func (v *valueBase) setDef(i Instruction) { v.def = i }
func (v *valueBase) addUse(i Instruction) { v.uses = append(v.uses, i) }
func (v *valueBase) removeUse(i Instruction) {
	out := v.uses[:0]
	removed := false
	for _, u := range v.uses {
		if !removed && u == i {
			removed = true
			continue
		}
		out = append(out, u)
	}
	v.uses = out
}
func (v *valueBase) clearUses() { v.uses = nil }

// ConstantInt is a canonical tagged or raw integer constant. The context
// caches canonical constants (True=3, False=1, Zero=0, One=1) and unique
// ConstantInts per value.
type ConstantInt struct {
	valueBase
	Val int64
}

// GlobalKind discriminates the three GlobalValue subkinds: variable,
// function, and static-string.
type GlobalKind int

const (
	GlobalVariable GlobalKind = iota
	GlobalFunction
	GlobalStaticString
)

// GlobalValue is a module-level symbol: a mutable global variable, a
// function (code address), or a static string literal.
type GlobalValue struct {
	valueBase
	Kind GlobalKind

	// GlobalFunction
	Func *Function

	// GlobalStaticString
	StringValue string
}

// LocalValue is an addressable stack slot, manipulated only through
// Load/Store/IndexedLoad/IndexedStore. Its own ValueType is always
// NonHeapAddress: it is the address of the slot, not the slot's contents.
type LocalValue struct {
	valueBase
}

// Argument is an incoming parameter value of a Function.
type Argument struct {
	valueBase
	Index int
}

// Temp is a single-assignment SSA-like virtual register: the destination
// of exactly one instruction, referenced directly (never through
// Load/Store) per the Functions invariant "a temp is defined at most once".
type Temp struct {
	valueBase
}

var _ Value = (*ConstantInt)(nil)
var _ Value = (*GlobalValue)(nil)
var _ Value = (*LocalValue)(nil)
var _ Value = (*Argument)(nil)
var _ Value = (*Temp)(nil)
