// Package semant implements the semantic analyzer (spec.md §4.2, C2): a
// single AST walk maintaining a scope stack that performs name resolution
// and Hindley-Milner type inference together, annotating the AST in place
// the way pkg/tacgen expects (every Expr carries a resolved *types.Type,
// every name-reference carries a resolved *Symbol).
package semant

import (
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/types"
)

// SymbolKind discriminates what a Symbol names, per spec.md §3 "Symbols".
type SymbolKind int

const (
	SymVariable SymbolKind = iota
	SymFunction
	SymType
	SymTypeConstructor
	SymMember
	SymMethod
	SymConstructor
)

// Symbol is the resolved referent of a name: a variable, function, type,
// type-constructor, struct/data member, method, or value constructor.
type Symbol struct {
	Name   string
	Kind   SymbolKind
	Type   *types.Type
	Scheme *types.TypeScheme // generalized type; Instantiate() on every reference
	Node   ast.Node
	Global bool

	// Variable
	IsParam     bool
	IsStatic    bool
	Offset      int // parameter index, or source index for statics
	StringValue string

	// Function
	IsExternal bool
	IsBuiltin  bool
	IsForeign  bool
	IsCCall    bool
	Params     []*Symbol

	// Member
	Parent *types.TypeConstructor
	Slot   int

	// Constructor
	Ctor *types.ValueConstructor

	// Method/Function: the implicit receiver binding ("self"), nil for a
	// plain top-level function.
	Receiver *Symbol
}
