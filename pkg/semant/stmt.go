package semant

import (
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/diag"
	"github.com/outshift-lang/splc/pkg/types"
)

func (a *Analyzer) visitStmt(s ast.Stmt) error {
	switch st := s.(type) {
	case *ast.ExprStmt:
		v, err := a.visitExpr(st.X)
		if err != nil {
			return err
		}
		st.X = v
		return nil
	case *ast.LetStmt:
		v, err := a.visitExpr(st.Value)
		if err != nil {
			return err
		}
		st.Value = v
		t := v.Type()
		sym := &Symbol{Name: st.Name, Kind: SymVariable, Type: t, Scheme: types.Trivial(t), Node: st}
		a.define(sym)
		st.Symbol = sym
		return nil
	case *ast.LetPatternStmt:
		return a.visitLetPatternStmt(st)
	}
	return a.fail(diag.Semantic, s.Pos(), "internal: unhandled statement node %T", s)
}

// visitLetPatternStmt implements `let C(x1,...) := e` (spec.md §4.2): the
// constructor is resolved the same way a ConstructExpr is, the scrutinee
// unified with its instantiated output, and each binding bound to the
// corresponding (possibly just-propagated-generic) member type.
func (a *Analyzer) visitLetPatternStmt(s *ast.LetPatternStmt) error {
	v, err := a.visitExpr(s.Value)
	if err != nil {
		return err
	}
	s.Value = v

	sym, output, members, err := a.instantiateConstructor(s.Pos(), s.Constructor)
	if err != nil {
		return err
	}
	s.ResolvedCtor = sym.Ctor
	if err := a.unify(s.Pos(), output, v.Type()); err != nil {
		return err
	}
	if len(members) != len(s.Bindings) {
		return a.fail(diag.Semantic, s.Pos(), "constructor %q expects %d bindings, got %d", s.Constructor, len(members), len(s.Bindings))
	}
	s.BindingSymbols = make([]any, len(s.Bindings))
	for i, name := range s.Bindings {
		if name == "_" {
			continue
		}
		t := members[i]
		sym := &Symbol{Name: name, Kind: SymVariable, Type: t, Scheme: types.Trivial(t), Node: s}
		a.define(sym)
		s.BindingSymbols[i] = sym
	}
	return nil
}
