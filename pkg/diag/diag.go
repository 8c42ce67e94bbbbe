// Package diag carries source-located diagnostics shared by the lexer,
// parser, and semantic analyzer.
package diag

import "fmt"

// Pos is a 1-based line/column source location.
type Pos struct {
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Kind distinguishes the compiler phase that raised a Diagnostic, matching
// the error taxonomy of the runtime contract (lexical, syntax, semantic,
// type inference).
type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
	TypeInference
)

func (k Kind) String() string {
	switch k {
	case Lexical:
		return "lexical error"
	case Syntax:
		return "syntax error"
	case Semantic:
		return "semantic error"
	case TypeInference:
		return "type error"
	default:
		return "error"
	}
}

// Diagnostic is a single user-facing error, always attached to a source
// location. It implements error so it can flow through ordinary Go error
// handling without being wrapped in a stack-tracing library: these are
// reports about the user's program, not about a bug in the compiler.
type Diagnostic struct {
	Kind    Kind
	Pos     Pos
	Message string
}

func (d *Diagnostic) Error() string {
	return fmt.Sprintf("%s: %s: %s", d.Pos, d.Kind, d.Message)
}

func New(kind Kind, pos Pos, format string, args ...any) *Diagnostic {
	return &Diagnostic{Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
}

// Bag accumulates diagnostics so a pass can keep going after the first
// error and report everything it found in one pass, the way the parser
// collects syntax errors. Semantic analysis is first-error-wins and does
// not use a Bag: C2 keeps its first diagnostic and stops there.
type Bag struct {
	items []*Diagnostic
}

func (b *Bag) Add(d *Diagnostic) { b.items = append(b.items, d) }

func (b *Bag) Addf(kind Kind, pos Pos, format string, args ...any) {
	b.Add(New(kind, pos, format, args...))
}

func (b *Bag) HasErrors() bool { return len(b.items) > 0 }

func (b *Bag) Items() []*Diagnostic { return b.items }

func (b *Bag) First() *Diagnostic {
	if len(b.items) == 0 {
		return nil
	}
	return b.items[0]
}
