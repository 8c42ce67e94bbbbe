package asm

import (
	"fmt"
	"io"

	"github.com/outshift-lang/splc/pkg/mach"
)

// Printer writes a mach.Context as NASM (Intel-syntax, bits 64) text,
// one small Fprintf per opcode case the way the teacher's pkg/asm/
// printer.go prints ARM64 GNU-as, grounded content-wise on
// original_source/src/codegen/asm_printer.cpp.
type Printer struct {
	w io.Writer

	fn            *mach.Function
	callSite      int
	stackMapEntries []stackMapEntry
}

type stackMapEntry struct {
	functionName string
	callSite     int
	offsets      []int64
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

// PrintProgram writes the full program: the text section (every defined
// function), the data section (mutable globals and static strings), and
// the two GC metadata tables, __stackMap and __globalVarTable.
func (p *Printer) PrintProgram(mc *mach.Context) {
	fmt.Fprintln(p.w, "bits 64")
	fmt.Fprintln(p.w, "section .text")
	fmt.Fprintln(p.w)

	for _, name := range mc.Externs {
		fmt.Fprintf(p.w, "extern %s\n", name)
	}
	fmt.Fprintln(p.w)

	for _, fn := range mc.Functions {
		ComputeStackMap(fn)
		p.printFunction(fn)
	}

	fmt.Fprintln(p.w, "section .data")
	for _, g := range mc.Globals {
		fmt.Fprintf(p.w, "%s: dq 0\n", g.Name)
	}
	for _, s := range mc.StaticStrings {
		fmt.Fprintf(p.w, "%s:\n", s.Name)
		fmt.Fprintf(p.w, "\tdq %d, 0\n", stringTag)
		fmt.Fprintf(p.w, "\tdb \"%s\", 0\n", s.Value)
	}

	fmt.Fprintln(p.w, "global __stackMap")
	fmt.Fprintln(p.w, "__stackMap:")
	fmt.Fprintf(p.w, "\tdq %d\n", len(p.stackMapEntries))
	for _, e := range p.stackMapEntries {
		fmt.Fprintf(p.w, "\tdq %s.CS%d, %d", e.functionName, e.callSite, len(e.offsets))
		for _, off := range e.offsets {
			fmt.Fprintf(p.w, ", %d", off)
		}
		fmt.Fprintln(p.w)
	}

	var globalRefs []string
	for _, g := range mc.Globals {
		if g.Type == 0 { // tac.Reference == 0
			globalRefs = append(globalRefs, g.Name)
		}
	}
	fmt.Fprintln(p.w, "global __globalVarTable")
	fmt.Fprintln(p.w, "__globalVarTable:")
	fmt.Fprintf(p.w, "\tdq %d\n", len(globalRefs))
	for _, name := range globalRefs {
		fmt.Fprintf(p.w, "\tdq %s\n", name)
	}
	fmt.Fprintln(p.w, "\tdq 0")
}

// stringTag is the object-header tag value stamped ahead of every static
// string's bytes, grounded on asm_printer.cpp's STRING_TAG. The value is
// not reserved: a data type's second constructor is stored with the same
// header tag, so the tag alone does not tell a string from a
// constructor-tagged heap object.
const stringTag = 1

func (p *Printer) printFunction(fn *mach.Function) {
	p.fn = fn
	p.callSite = 0

	fmt.Fprintf(p.w, "global %s\n", fn.Name)
	fmt.Fprintf(p.w, "%s:\n", fn.Name)

	for _, blk := range fn.Blocks {
		p.printBlock(blk)
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printBlock(blk *mach.Block) {
	fmt.Fprintf(p.w, ".%d:\n", blk.ID)
	for _, inst := range blk.Instrs {
		p.printInstruction(inst)
	}
}

func (p *Printer) operand(op mach.Operand) string {
	switch o := op.(type) {
	case *mach.HReg:
		return o.Name
	case *mach.Imm:
		return fmt.Sprintf("%d", o.Value)
	case *mach.Addr:
		return o.Name
	case *mach.VReg:
		panic("asm: unallocated virtual register reached printing")
	default:
		panic("asm: operand has no simple textual form")
	}
}

func (p *Printer) memOperand(op mach.Operand, offset mach.Operand) string {
	if slot, ok := op.(*mach.StackSlot); ok {
		return fmt.Sprintf("rbp + %d", slot.Offset)
	}
	if offset != nil {
		return fmt.Sprintf("%s + %s", p.operand(op), p.operand(offset))
	}
	return p.operand(op)
}

func (p *Printer) printSimple(mnemonic string, operands ...mach.Operand) {
	fmt.Fprintf(p.w, "\t%s", mnemonic)
	for i, op := range operands {
		if i == 0 {
			fmt.Fprint(p.w, " ")
		} else {
			fmt.Fprint(p.w, ", ")
		}
		fmt.Fprint(p.w, p.operand(op))
	}
	fmt.Fprintln(p.w)
}

func (p *Printer) printBinary(mnemonic string, dest, src mach.Operand) {
	fmt.Fprintf(p.w, "\t%s %s, %s\n", mnemonic, p.operand(dest), p.operand(src))
}

func (p *Printer) printJump(mnemonic string, target mach.Operand) {
	lbl := target.(*mach.Label)
	fmt.Fprintf(p.w, "\t%s .%d\n", mnemonic, lbl.Block.ID)
}

var binaryMnemonics = map[mach.Opcode]string{
	mach.ADD: "add", mach.AND: "and", mach.SAL: "sal", mach.SAR: "sar",
	mach.SUB: "sub", mach.IMUL: "imul",
}

var jumpMnemonics = map[mach.Opcode]string{
	mach.JE: "je", mach.JG: "jg", mach.JGE: "jge", mach.JL: "jl",
	mach.JLE: "jle", mach.JMP: "jmp", mach.JNE: "jne",
}

func (p *Printer) printInstruction(inst *mach.Instr) {
	if mnem, ok := binaryMnemonics[inst.Opcode]; ok {
		p.printBinary(mnem, inst.Outputs[0], inst.Inputs[1])
		return
	}
	if mnem, ok := jumpMnemonics[inst.Opcode]; ok {
		p.printJump(mnem, inst.Inputs[0])
		return
	}

	switch inst.Opcode {
	case mach.INC:
		p.printSimple("inc", inst.Outputs[0])
	case mach.DEC:
		p.printSimple("dec", inst.Outputs[0])

	case mach.MOVrm:
		p.printMovrm(inst)
	case mach.MOVmd:
		p.printMovmd(inst)
	case mach.MOVrd:
		p.printBinary("mov", inst.Outputs[0], inst.Inputs[0])
	case mach.LEA:
		fmt.Fprintf(p.w, "\tlea %s, [%s]\n", p.operand(inst.Outputs[0]), p.memOperand(inst.Inputs[0], nil))

	case mach.CALL:
		p.printSimple("call", inst.Inputs[0])
		inst.CallSite = p.callSite
		fmt.Fprintf(p.w, ".CS%d:\n", p.callSite)
		offs := p.fn.CallLiveRefs[inst]
		p.stackMapEntries = append(p.stackMapEntries, stackMapEntry{functionName: p.fn.Name, callSite: p.callSite, offsets: offs})
		p.callSite++

	case mach.CMP:
		p.printSimple("cmp", inst.Inputs[0], inst.Inputs[1])
	case mach.TEST:
		p.printSimple("test", inst.Inputs[0], inst.Inputs[1])
	case mach.CQO:
		p.printSimple("cqo")
	case mach.IDIV:
		p.printSimple("idiv", inst.Inputs[2])
	case mach.POP:
		p.printSimple("pop", inst.Outputs[0])
	case mach.PUSH:
		p.printSimple("push", inst.Inputs[0])
	case mach.RET:
		p.printSimple("ret")

	default:
		panic("asm: unhandled mach opcode in printer")
	}
}

func (p *Printer) printMovrm(inst *mach.Instr) {
	dest := p.operand(inst.Outputs[0])
	if slot, ok := inst.Inputs[0].(*mach.StackSlot); ok {
		fmt.Fprintf(p.w, "\tmov %s, qword [rbp + %d]\n", dest, slot.Offset)
		return
	}
	if len(inst.Inputs) == 1 {
		fmt.Fprintf(p.w, "\tmov %s, qword [%s]\n", dest, p.operand(inst.Inputs[0]))
		return
	}
	fmt.Fprintf(p.w, "\tmov %s, qword [%s + %s]\n", dest, p.operand(inst.Inputs[0]), p.operand(inst.Inputs[1]))
}

func (p *Printer) printMovmd(inst *mach.Instr) {
	if slot, ok := inst.Inputs[0].(*mach.StackSlot); ok {
		fmt.Fprintf(p.w, "\tmov qword [rbp + %d], %s\n", slot.Offset, p.operand(inst.Inputs[1]))
		return
	}
	if len(inst.Inputs) == 2 {
		fmt.Fprintf(p.w, "\tmov qword [%s], %s\n", p.operand(inst.Inputs[0]), p.operand(inst.Inputs[1]))
		return
	}
	fmt.Fprintf(p.w, "\tmov qword [%s + %s], %s\n", p.operand(inst.Inputs[0]), p.operand(inst.Inputs[2]), p.operand(inst.Inputs[1]))
}
