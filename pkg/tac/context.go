package tac

// Canonical tagged booleans and small integers.
const (
	TrueTagged  = 3
	FalseTagged = 1
	ZeroTagged  = 0
	OneTagged   = 1
)

// TACContext is the owning arena for every Function, GlobalValue, and
// constant produced while lowering one compilation unit.
type TACContext struct {
	Functions []*Function
	Globals   []*GlobalValue

	nextSeq   int
	constants map[int64]*ConstantInt

	True, False, Zero, One *ConstantInt
}

// NewContext creates an empty context and seeds its canonical constants.
func NewContext() *TACContext {
	c := &TACContext{constants: make(map[int64]*ConstantInt)}
	c.True = c.Constant(TrueTagged)
	c.False = c.Constant(FalseTagged)
	c.Zero = c.Constant(ZeroTagged)
	c.One = c.Constant(OneTagged)
	return c
}

func (c *TACContext) nextID() int {
	c.nextSeq++
	return c.nextSeq
}

// Constant returns the unique ConstantInt for v, creating it on first use.
func (c *TACContext) Constant(v int64) *ConstantInt {
	if k, ok := c.constants[v]; ok {
		return k
	}
	vt := BoxOrInt
	k := &ConstantInt{valueBase: valueBase{id: c.nextID(), vt: vt}, Val: v}
	c.constants[v] = k
	return k
}

// TaggedInt returns the ConstantInt for the tagged representation of n,
// i.e. (2n+1).
func (c *TACContext) TaggedInt(n int64) *ConstantInt {
	return c.Constant(2*n + 1)
}

// MakeFunction declares a new, initially empty Function and registers it
// as a GlobalValue of kind GlobalFunction.
func (c *TACContext) MakeFunction(name string) *Function {
	f := &Function{Name: name, ctx: c}
	c.Functions = append(c.Functions, f)
	g := &GlobalValue{valueBase: valueBase{id: c.nextID(), name: name, vt: CodeAddress}, Kind: GlobalFunction, Func: f}
	c.Globals = append(c.Globals, g)
	return f
}

// MakeExternFunction declares a Function with no body, defined by the
// external runtime (gcAllocate, ccall, print, ...).
func (c *TACContext) MakeExternFunction(name string, foreign bool) *Function {
	f := c.MakeFunction(name)
	f.IsExternal = true
	f.IsForeign = foreign
	return f
}

// GlobalFor returns the GlobalValue wrapping fn.
func (c *TACContext) GlobalFor(fn *Function) *GlobalValue {
	for _, g := range c.Globals {
		if g.Kind == GlobalFunction && g.Func == fn {
			return g
		}
	}
	return nil
}

// MakeGlobal declares a mutable global variable.
func (c *TACContext) MakeGlobal(name string, vt ValueType) *GlobalValue {
	g := &GlobalValue{valueBase: valueBase{id: c.nextID(), name: name, vt: vt}, Kind: GlobalVariable}
	c.Globals = append(c.Globals, g)
	return g
}

// MakeStaticString interns a string literal as a GlobalValue carrying a
// GC-visible header, grounded on original_source/src/codegen/asm_printer.cpp.
func (c *TACContext) MakeStaticString(name, value string) *GlobalValue {
	g := &GlobalValue{valueBase: valueBase{id: c.nextID(), name: name, vt: Reference}, Kind: GlobalStaticString, StringValue: value}
	c.Globals = append(c.Globals, g)
	return g
}

// MakeArgument adds the idx'th parameter to fn.
func (c *TACContext) MakeArgument(fn *Function, name string, idx int, vt ValueType) *Argument {
	return fn.newArgument(name, idx, vt)
}

// MakeLocal allocates an addressable stack slot within fn.
func (c *TACContext) MakeLocal(fn *Function, name string) *LocalValue {
	return fn.NewLocal(name)
}

// MakeTemp allocates a single-assignment temp within fn.
func (c *TACContext) MakeTemp(fn *Function, name string, vt ValueType) *Temp {
	return fn.NewTemp(name, vt)
}

// MakeBlock allocates a fresh basic block within fn.
func (c *TACContext) MakeBlock(fn *Function, label string) *BasicBlock {
	return fn.NewBlock(label)
}

// ReplaceAllUses rewrites every instruction referencing `from` to
// reference `to` instead, transplanting from's use-list onto to's and
// leaving from with no uses. This is the single mutation point SSA/opt
// passes use to retire a value.
func ReplaceAllUses(from, to Value) {
	if from == to {
		return
	}
	users := from.Uses()
	for _, u := range users {
		u.ReplaceOperand(from, to)
		to.addUse(u)
	}
	from.clearUses()
}

// ReplaceOperandIn retargets a single instruction's use of `old` onto
// `new`, unlike ReplaceAllUses which retargets every use. Tag elision needs
// this to redirect one specific consumer onto an untagged companion value
// while leaving old's other uses, which may still need the tagged form,
// untouched.
func ReplaceOperandIn(instr Instruction, old, new Value) {
	if old == new {
		return
	}
	count := 0
	for _, op := range instr.Operands() {
		if op == old {
			count++
		}
	}
	if count == 0 {
		return
	}
	instr.ReplaceOperand(old, new)
	for i := 0; i < count; i++ {
		old.removeUse(instr)
		new.addUse(instr)
	}
}
