package ast

import (
	"fmt"
	"io"
)

// Dump writes a compact listing of prog: one line per function (its
// parameter list) and per struct, and a braced block per data type (one
// line per constructor) and per impl block (one line per method). Intended for the CLI's debug-dump flags, not
// as a printer a later stage reads back in.
func Dump(w io.Writer, prog *Program) {
	for _, d := range prog.Decls {
		dumpDecl(w, d)
	}
}

func dumpDecl(w io.Writer, d Decl) {
	switch decl := d.(type) {
	case *FuncDecl:
		fmt.Fprintf(w, "func %s(%s)", decl.Name, joinParams(decl.Params))
		if decl.IsForeign {
			fmt.Fprintf(w, " foreign %q", decl.ForeignSym)
		}
		fmt.Fprintln(w)
	case *DataDecl:
		fmt.Fprintf(w, "data %s%s {\n", decl.Name, joinTypeParams(decl.TypeParams))
		for _, c := range decl.Constructors {
			fmt.Fprintf(w, "  %s(%s)\n", c.Name, joinMembers(c.Members))
		}
		fmt.Fprintln(w, "}")
	case *StructDecl:
		fmt.Fprintf(w, "struct %s%s(%s)\n", decl.Name, joinTypeParams(decl.TypeParams), joinMembers(decl.Members))
	case *ImplDecl:
		fmt.Fprintf(w, "impl %s {\n", decl.TypeName)
		for _, m := range decl.Methods {
			fmt.Fprintf(w, "  func %s(%s)\n", m.Name, joinParams(m.Params))
		}
		fmt.Fprintln(w, "}")
	}
}

func joinParams(params []Param) string {
	s := ""
	for i, p := range params {
		if i > 0 {
			s += ", "
		}
		s += p.Name
	}
	return s
}

func joinTypeParams(tp []string) string {
	if len(tp) == 0 {
		return ""
	}
	s := "<"
	for i, t := range tp {
		if i > 0 {
			s += ", "
		}
		s += t
	}
	return s + ">"
}

func joinMembers(members []DataMember) string {
	s := ""
	for i, m := range members {
		if i > 0 {
			s += ", "
		}
		s += m.Name + ": " + m.TypeName
	}
	return s
}
