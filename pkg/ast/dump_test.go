package ast

import (
	"bytes"
	"strings"
	"testing"
)

func TestDumpFuncDecl(t *testing.T) {
	prog := &Program{Decls: []Decl{
		&FuncDecl{Name: "add", Params: []Param{{Name: "a"}, {Name: "b"}}},
		&FuncDecl{Name: "readLine", IsForeign: true, ForeignSym: "readLine"},
	}}

	var out bytes.Buffer
	Dump(&out, prog)
	text := out.String()

	if !strings.Contains(text, "func add(a, b)") {
		t.Errorf("expected dump to contain %q, got:\n%s", "func add(a, b)", text)
	}
	if !strings.Contains(text, `foreign "readLine"`) {
		t.Errorf("expected dump to mention the foreign symbol, got:\n%s", text)
	}
}

func TestDumpDataDecl(t *testing.T) {
	prog := &Program{Decls: []Decl{
		&DataDecl{
			Name:       "Maybe",
			TypeParams: []string{"a"},
			Constructors: []DataConstructor{
				{Name: "Just", Members: []DataMember{{Name: "value", TypeName: "a"}}},
				{Name: "None"},
			},
		},
	}}

	var out bytes.Buffer
	Dump(&out, prog)
	text := out.String()

	for _, want := range []string{"data Maybe<a> {", "Just(value: a)", "None()"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected dump to contain %q, got:\n%s", want, text)
		}
	}
}

func TestDumpImplDecl(t *testing.T) {
	prog := &Program{Decls: []Decl{
		&ImplDecl{TypeName: "List", Methods: []*FuncDecl{
			{Name: "length"},
		}},
	}}

	var out bytes.Buffer
	Dump(&out, prog)
	text := out.String()

	if !strings.Contains(text, "impl List {") {
		t.Errorf("expected dump to contain %q, got:\n%s", "impl List {", text)
	}
	if !strings.Contains(text, "func length()") {
		t.Errorf("expected dump to contain %q, got:\n%s", "func length()", text)
	}
}

func TestDumpStructDecl(t *testing.T) {
	prog := &Program{Decls: []Decl{
		&StructDecl{Name: "Point", Members: []DataMember{{Name: "x", TypeName: "int"}, {Name: "y", TypeName: "int"}}},
	}}

	var out bytes.Buffer
	Dump(&out, prog)

	if !strings.Contains(out.String(), "struct Point(x: int, y: int)") {
		t.Errorf("expected dump to contain the struct signature, got:\n%s", out.String())
	}
}
