package mach

import (
	"fmt"
	"io"
)

// Dump writes a textual listing of every function in mc: one line per
// instruction, operands rendered the way the NASM printer would reference
// them but without the section/extern/global scaffolding.
func Dump(w io.Writer, mc *Context) {
	for _, name := range mc.Externs {
		fmt.Fprintf(w, "extern %s\n", name)
	}
	for _, fn := range mc.Functions {
		fmt.Fprintf(w, "func %s {\n", fn.Name)
		for _, blk := range fn.Blocks {
			fmt.Fprintf(w, "  .%d:\n", blk.ID)
			for _, inst := range blk.Instrs {
				fmt.Fprintf(w, "    %s\n", dumpInstr(inst))
			}
		}
		fmt.Fprintln(w, "}")
	}
}

func dumpOperand(op Operand) string {
	switch o := op.(type) {
	case *VReg:
		if o.Pinned != nil {
			return fmt.Sprintf("v%d(%s)", o.ID, o.Pinned.Name)
		}
		return fmt.Sprintf("v%d", o.ID)
	case *HReg:
		return o.Name
	case *StackSlot:
		return fmt.Sprintf("[%s@%d]", o.Name, o.Offset)
	case *Imm:
		return fmt.Sprintf("%d", o.Value)
	case *Addr:
		return o.Name
	case *Label:
		return fmt.Sprintf(".%d", o.Block.ID)
	default:
		return "?"
	}
}

func dumpInstr(inst *Instr) string {
	s := inst.Opcode.String()
	for i, o := range inst.Outputs {
		if i == 0 {
			s += " "
		} else {
			s += ", "
		}
		s += dumpOperand(o)
	}
	if len(inst.Outputs) > 0 && len(inst.Inputs) > 0 {
		s += " <-"
	}
	for i, o := range inst.Inputs {
		if i == 0 {
			s += " "
		} else {
			s += ", "
		}
		s += dumpOperand(o)
	}
	return s
}
