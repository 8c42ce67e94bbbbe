package lexer

import "testing"

func TestNextTokenBasic(t *testing.T) {
	src := `let x = 1 + 2`
	l := New(src)
	want := []Kind{KwLet, Ident, Assign, Int, Plus, Int, EOF}
	for i, k := range want {
		tok := l.NextToken()
		if tok.Kind != k {
			t.Fatalf("token %d: got kind %v, want %v (literal %q)", i, tok.Kind, k, tok.Literal)
		}
	}
}

func TestNextTokenString(t *testing.T) {
	l := New(`"hello\nworld"`)
	tok := l.NextToken()
	if tok.Kind != String {
		t.Fatalf("got kind %v, want String", tok.Kind)
	}
	if tok.Literal != "hello\nworld" {
		t.Fatalf("got literal %q", tok.Literal)
	}
}

func TestNextTokenOperators(t *testing.T) {
	l := New(`-> := == != <= >= && || ..`)
	want := []Kind{Arrow, ColonEq, Eq, Ne, Le, Ge, AndAnd, OrOr, DotDot, EOF}
	for i, k := range want {
		tok := l.NextToken()
		if tok.Kind != k {
			t.Fatalf("token %d: got kind %v, want %v", i, tok.Kind, k)
		}
	}
}

func TestIllegalCharacterReportsDiagnostic(t *testing.T) {
	l := New(`@`)
	tok := l.NextToken()
	if tok.Kind != Illegal {
		t.Fatalf("got kind %v, want Illegal", tok.Kind)
	}
	if !l.Errors.HasErrors() {
		t.Fatalf("expected a lexical diagnostic to be recorded")
	}
}
