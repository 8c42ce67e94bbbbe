package tac

import (
	"fmt"
	"io"
)

// Dump writes a textual listing of every function and global in ctx, in
// the line-per-instruction style the teacher's per-stage printers (e.g.
// pkg/rtl's NewPrinter) use for their intermediate representations.
func Dump(w io.Writer, ctx *TACContext) {
	for _, g := range ctx.Globals {
		switch g.Kind {
		case GlobalVariable:
			fmt.Fprintf(w, "global %s : %s\n", g.Name(), g.Type())
		case GlobalStaticString:
			fmt.Fprintf(w, "string %s = %q\n", g.Name(), g.StringValue)
		}
	}
	for _, fn := range ctx.Functions {
		DumpFunction(w, fn)
	}
}

// DumpFunction writes one function's parameter list, locals, and blocks.
func DumpFunction(w io.Writer, fn *Function) {
	if fn.IsExternal {
		fmt.Fprintf(w, "extern func %s(%d)\n\n", fn.Name, len(fn.Params))
		return
	}

	fmt.Fprintf(w, "func %s(", fn.Name)
	for i, p := range fn.Params {
		if i > 0 {
			fmt.Fprint(w, ", ")
		}
		fmt.Fprintf(w, "%s : %s", p.Name(), p.Type())
	}
	fmt.Fprintln(w, ") {")

	for _, l := range fn.Locals {
		fmt.Fprintf(w, "  local %s\n", l.Name())
	}

	for _, blk := range fn.Blocks {
		fmt.Fprintf(w, "%s:\n", blk.Label)
		for _, instr := range blk.Instrs {
			fmt.Fprintf(w, "    %s\n", dumpInstr(instr))
		}
	}
	fmt.Fprintln(w, "}")
	fmt.Fprintln(w)
}

func nameOf(v Value) string {
	if v == nil {
		return "_"
	}
	if v.Name() != "" {
		return v.Name()
	}
	return fmt.Sprintf("v%d", v.ID())
}

func dumpInstr(instr Instruction) string {
	switch ins := instr.(type) {
	case *Copy:
		return fmt.Sprintf("%s = %s", nameOf(ins.Dest), nameOf(ins.Src))
	case *Load:
		return fmt.Sprintf("%s = load %s", nameOf(ins.Dest), nameOf(ins.Addr))
	case *Store:
		return fmt.Sprintf("store %s, %s", nameOf(ins.Addr), nameOf(ins.Src))
	case *IndexedLoad:
		return fmt.Sprintf("%s = load %s[%d]", nameOf(ins.Dest), nameOf(ins.Base), ins.Offset)
	case *IndexedStore:
		return fmt.Sprintf("store %s[%d], %s", nameOf(ins.Base), ins.Offset, nameOf(ins.Src))
	case *BinaryOperation:
		return fmt.Sprintf("%s = %s %s, %s", nameOf(ins.Dest), ins.Op, nameOf(ins.Lhs), nameOf(ins.Rhs))
	case *Tag:
		return fmt.Sprintf("%s = tag %s", nameOf(ins.Dest), nameOf(ins.Src))
	case *Untag:
		return fmt.Sprintf("%s = untag %s", nameOf(ins.Dest), nameOf(ins.Src))
	case *Call:
		args := ""
		for i, a := range ins.Args {
			if i > 0 {
				args += ", "
			}
			args += nameOf(a)
		}
		prefix := ""
		if ins.Dest != nil {
			prefix = nameOf(ins.Dest) + " = "
		}
		return fmt.Sprintf("%scall %s(%s)", prefix, nameOf(ins.Func), args)
	case *Jump:
		return fmt.Sprintf("jump %s", ins.Target.Label)
	case *JumpIf:
		return fmt.Sprintf("jumpif %s, %s, %s", nameOf(ins.Cond), ins.IfTrue.Label, ins.IfFalse.Label)
	case *ConditionalJump:
		return fmt.Sprintf("cjump %s %s %s, %s, %s", nameOf(ins.Lhs), ins.Op, nameOf(ins.Rhs), ins.IfTrue.Label, ins.IfFalse.Label)
	case *Phi:
		s := fmt.Sprintf("%s = phi ", nameOf(ins.Dest))
		for i, e := range ins.Incoming {
			if i > 0 {
				s += ", "
			}
			s += fmt.Sprintf("[%s:%s]", e.Pred.Label, nameOf(e.Value))
		}
		return s
	case *Return:
		if ins.Value == nil {
			return "return"
		}
		return fmt.Sprintf("return %s", nameOf(ins.Value))
	case *Unreachable:
		return "unreachable"
	default:
		return "?"
	}
}
