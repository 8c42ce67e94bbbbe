// Package ast defines the untyped syntax tree produced by pkg/parser and
// annotated in place by pkg/semant. Node sum types use the teacher's
// marker-method idiom (one unexported method per interface) rather than a
// visitor hierarchy.
package ast

import (
	"github.com/outshift-lang/splc/pkg/diag"
	"github.com/outshift-lang/splc/pkg/types"
)

// Node is implemented by every syntax tree node.
type Node interface {
	implNode()
	Pos() diag.Pos
}

// Base carries the source position common to every node.
type Base struct {
	P diag.Pos
}

func (b Base) Pos() diag.Pos { return b.P }

// NewBase builds a Base at the given position; parser call sites use this
// instead of a bare struct literal so the field stays easy to rename.
func NewBase(pos diag.Pos) Base { return Base{P: pos} }

// Expr is implemented by every expression node. Every expression carries a
// ResolvedType filled in by the semantic analyzer; it is nil until C2 has
// run on that subtree.
type Expr interface {
	Node
	implExpr()
	Type() *types.Type
	SetType(*types.Type)
}

type ExprBase struct {
	Base
	ResolvedType *types.Type
}

func NewExprBase(pos diag.Pos) ExprBase { return ExprBase{Base: NewBase(pos)} }

func (e *ExprBase) implNode()             {}
func (e *ExprBase) implExpr()             {}
func (e *ExprBase) Type() *types.Type     { return e.ResolvedType }
func (e *ExprBase) SetType(t *types.Type) { e.ResolvedType = t }

// Stmt is implemented by every statement node.
type Stmt interface {
	Node
	implStmt()
}

type StmtBase struct{ Base }

func NewStmtBase(pos diag.Pos) StmtBase { return StmtBase{Base: NewBase(pos)} }

func (s StmtBase) implNode() {}
func (s StmtBase) implStmt() {}

// Decl is implemented by every top-level declaration.
type Decl interface {
	Node
	implDecl()
}

type DeclBase struct{ Base }

func NewDeclBase(pos diag.Pos) DeclBase { return DeclBase{Base: NewBase(pos)} }

func (d DeclBase) implNode() {}
func (d DeclBase) implDecl() {}

// ---- Program ----

type Program struct {
	Decls []Decl
}

// ---- Expressions ----

type IntLit struct {
	ExprBase
	Value int64
}

type BoolLit struct {
	ExprBase
	Value bool
}

type StringLit struct {
	ExprBase
	Value string
}

type UnitLit struct{ ExprBase }

type VarExpr struct {
	ExprBase
	Name string
	// Symbol is filled in by C2; opaque here to avoid an import cycle,
	// cast by pkg/semant and pkg/tacgen to *semant.Symbol.
	Symbol any
	// NullaryCall is set by C2 when Name resolves to a parameterless
	// function referenced bare (not as a CallExpr callee): spec.md §4.2
	// "Nullary" rule — such a reference calls the function immediately
	// rather than yielding a closure.
	NullaryCall bool
}

type AssignExpr struct {
	ExprBase
	Target Expr // VarExpr or MemberExpr
	Value  Expr
}

type BinaryExpr struct {
	ExprBase
	Op    string
	Left  Expr
	Right Expr
}

type UnaryExpr struct {
	ExprBase
	Op      string
	Operand Expr
}

type CallExpr struct {
	ExprBase
	Callee Expr
	Args   []Expr

	// Filled in by C2. ResolvedFunc is the *semant.Symbol of a statically
	// known callee (direct global function or resolved method); nil means
	// the callee is an arbitrary closure-valued expression evaluated at
	// runtime. IsMethodCall means Callee is a MemberExpr resolved against
	// the receiver's method table (SPEC_FULL.md "Member access"); the
	// receiver is then lowered as the implicit first argument.
	ResolvedFunc any
	IsMethodCall bool
}

type MemberExpr struct {
	ExprBase
	Receiver Expr
	Member   string

	// Filled in by C2 for a struct/data field read: the member's slot
	// index within the object (spec.md §4.4 "IndexedLoad(dest,
	// objectValue, sizeof(header)+8*slot)").
	Slot int
}

type ConstructExpr struct {
	ExprBase
	Constructor string
	Args        []Expr

	// ResolvedCtor is the *types.ValueConstructor this expression builds,
	// filled in by C2.
	ResolvedCtor any
}

// ArrayLit is sugar for a chain of Cons{...}/Nil{} constructor calls over
// the builtin list type, resolved by the semantic analyzer (spec.md §4.2
// treats list iteration via head/tail/empty member lookup; array literals
// build a value those members can walk).
type ArrayLit struct {
	ExprBase
	Elems []Expr
}

type FuncExpr struct {
	ExprBase
	Params []Param
	Body   Expr

	// ParamSymbols are the *semant.Symbol values C2 attaches, one per Params
	// entry, parallel to FuncDecl.ParamSymbols.
	ParamSymbols []any
}

type Param struct {
	Name string
	Pos  diag.Pos
}

type BlockExpr struct {
	ExprBase
	Stmts []Stmt
	Value Expr // optional trailing expression, nil => Unit
}

type IfExpr struct {
	ExprBase
	Cond Expr
	Then Expr
	Else Expr // nil for statement-level if-without-else
}

type MatchExpr struct {
	ExprBase
	Subject Expr
	Cases   []MatchCase
}

type MatchCase struct {
	Constructor string // "" means wildcard / variable binding
	Bindings    []string
	Body        Expr

	// ResolvedCtor is the *types.ValueConstructor this arm matches; nil
	// for a wildcard/variable-binding arm. Filled in by C2.
	ResolvedCtor any
	// BindingSymbols are the *semant.Symbol values C2 attaches, parallel to
	// Bindings (nil entry for a "_" binding).
	BindingSymbols []any
}

type ForeverExpr struct {
	ExprBase
	Body Expr
}

type WhileExpr struct {
	ExprBase
	Cond Expr
	Body Expr
}

type ForRangeExpr struct {
	ExprBase
	Var   string
	Low   Expr
	High  Expr
	Body  Expr

	// VarSymbol is the *semant.Symbol C2 attaches for Var.
	VarSymbol any
}

type ForeachExpr struct {
	ExprBase
	Var      string
	Iterable Expr
	Body     Expr

	// Head/Tail/Empty are the *semant.Symbol methods resolved on the
	// iterable's type (spec.md §4.2 "Foreach"), filled in by C2.
	Head, Tail, Empty any
	// VarSymbol is the *semant.Symbol C2 attaches for Var.
	VarSymbol any
}

type BreakExpr struct {
	ExprBase
	Value Expr // optional
}

type ReturnExpr struct {
	ExprBase
	Value Expr // optional
}

// ---- Statements ----

type ExprStmt struct {
	StmtBase
	X Expr
}

type LetStmt struct {
	StmtBase
	Name  string
	Value Expr

	// Symbol is the *semant.Symbol C2 attaches for Name.
	Symbol any
}

// LetPatternStmt implements `let C(x1,...) := e`, the irrefutable
// constructor-destructuring let form from spec.md §4.2: the constructor
// is resolved, the scrutinee type unified with its instantiated output,
// and each binding unified with the corresponding member type. A name of
// "_" suppresses the binding.
type LetPatternStmt struct {
	StmtBase
	Constructor string
	Bindings    []string
	Value       Expr

	// ResolvedCtor is the *types.ValueConstructor this pattern destructures.
	ResolvedCtor any
	// BindingSymbols are the *semant.Symbol values C2 attaches, parallel to
	// Bindings (nil entry for a "_" binding).
	BindingSymbols []any
}

// ---- Declarations ----

type FuncDecl struct {
	DeclBase
	Name       string
	Params     []Param
	Body       Expr
	IsForeign  bool
	IsCCall    bool
	ForeignSym string

	// ResolvedFunc/ParamSymbols are the *semant.Symbol values C2 attaches.
	ResolvedFunc  any
	ParamSymbols  []any
	ReceiverType  string // set by C2 for impl-block methods: the impl's TypeName
}

type DataDecl struct {
	DeclBase
	Name         string
	TypeParams   []string
	Constructors []DataConstructor

	// ResolvedType is the *types.TypeConstructor this declaration defines.
	ResolvedType any
}

type DataConstructor struct {
	Name    string
	Members []DataMember
}

type DataMember struct {
	Name     string
	TypeName string
}

type StructDecl struct {
	DeclBase
	Name       string
	TypeParams []string
	Members    []DataMember

	// ResolvedType is the *types.TypeConstructor this declaration defines.
	ResolvedType any
}

type ImplDecl struct {
	DeclBase
	TypeName string
	Methods  []*FuncDecl
}
