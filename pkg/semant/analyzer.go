// Package semant implements the semantic analyzer (spec.md §4.2, C2): a
// single AST walk maintaining a scope stack that performs name resolution
// and Hindley-Milner type inference together, annotating the AST in place
// the way pkg/tacgen expects (every Expr carries a resolved *types.Type,
// every name-reference carries a resolved *Symbol).
//
// Grounded on original_source/src/semantic/semantic.cpp (scope push/pop,
// per-node dispatch order) and, for the Go shape of a one-pass AST walk,
// on the teacher's pkg/cshmgen (one TranslateXxx per node kind, worklist
// of deferred nested work).
package semant

import (
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/diag"
	"github.com/outshift-lang/splc/pkg/types"
)

// Analyzer performs the single AST walk of spec.md §4.2.
type Analyzer struct {
	global *scope
	cur    *scope

	// methods maps "TypeName.methodName" to the method's Symbol, used to
	// resolve `receiver.method(...)` calls (SPEC_FULL.md §2 member access).
	methods map[string]*Symbol

	// members maps "TypeName.memberName" to a synthetic accessor Symbol of
	// type (TypeName<params...>) -> MemberType, quantified over the type's
	// own parameters: instantiating it and unifying its input against a
	// concrete receiver propagates that receiver's actual type arguments
	// into the returned member type (SPEC_FULL.md §2 member access).
	members map[string]*Symbol

	// dataTypes maps a declared type name to its TypeConstructor, used to
	// resolve member type names on data/struct declarations and the
	// receiver type of impl blocks.
	dataTypes map[string]*types.TypeConstructor

	currentFunc *Symbol // enclosing function, for `return` unification
	loopDepth   int     // > 0 inside while/for/foreach/forever, for `break`

	// breakTargets stacks the type variable each enclosing loop's `break`
	// values must unify with (spec.md §9 Open Question: a loop with no
	// break keeps a free type variable).
	breakTargets []*types.Type

	err error // first error; semantic analysis is first-error-wins (spec.md §7)

	listCtor *types.TypeConstructor
	consCtor *types.ValueConstructor
	nilCtor  *types.ValueConstructor
}

// New creates an Analyzer with the global scope seeded with the builtin
// constructors and builtin functions of installBuiltins.
func New() *Analyzer {
	a := &Analyzer{
		methods:   make(map[string]*Symbol),
		members:   make(map[string]*Symbol),
		dataTypes: make(map[string]*types.TypeConstructor),
	}
	a.global = newScope(nil)
	a.cur = a.global
	a.installBuiltins()
	return a
}

func (a *Analyzer) pushScope()  { a.cur = newScope(a.cur) }
func (a *Analyzer) popScope()   { a.cur = a.cur.parent }
func (a *Analyzer) define(s *Symbol) { a.cur.define(s) }
func (a *Analyzer) lookup(name string) *Symbol { return a.cur.lookup(name) }

// fail records the first semantic/type error and returns it; callers
// propagate it immediately and stop walking (spec.md §7 "fatal").
func (a *Analyzer) fail(kind diag.Kind, pos diag.Pos, format string, args ...any) error {
	d := diag.New(kind, pos, format, args...)
	if a.err == nil {
		a.err = d
	}
	return d
}

func (a *Analyzer) unify(pos diag.Pos, x, y *types.Type) error {
	if err := types.Unify(x, y); err != nil {
		return a.fail(diag.TypeInference, pos, "%s", err)
	}
	return nil
}

// Run performs the full analysis of prog, annotating its AST in place.
// It returns the first diagnostic raised, or nil on success.
func (a *Analyzer) Run(prog *ast.Program) error {
	// Pass 1: register every data/struct type so member/constructor/method
	// resolution works regardless of declaration order.
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.DataDecl:
			if err := a.registerDataDecl(decl); err != nil {
				return err
			}
		case *ast.StructDecl:
			if err := a.registerStructDecl(decl); err != nil {
				return err
			}
		}
	}

	// Pass 2: register every top-level function and impl-method signature
	// (fresh type variables, no bodies visited yet) so mutual and forward
	// recursion across top-level declarations resolves (spec.md §4.2
	// "Create the symbol before visiting the body, to allow
	// self-recursion", extended here to sibling declarations).
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			if _, err := a.registerFuncSignature(decl, nil, nil); err != nil {
				return err
			}
		case *ast.ImplDecl:
			if err := a.registerImplSignatures(decl); err != nil {
				return err
			}
		}
	}

	// Pass 3: visit every function/method body.
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			if err := a.analyzeFuncBody(decl); err != nil {
				return err
			}
		case *ast.ImplDecl:
			if err := a.analyzeImplBody(decl); err != nil {
				return err
			}
		}
	}
	return nil
}
