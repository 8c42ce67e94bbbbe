package tacgen

import (
	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/semant"
)

func (g *Generator) genStmt(s ast.Stmt) {
	switch st := s.(type) {
	case *ast.ExprStmt:
		g.genExpr(st.X)
	case *ast.LetStmt:
		v := g.genExpr(st.Value)
		sym := st.Symbol.(*semant.Symbol)
		g.defineLocal(sym, v)
	case *ast.LetPatternStmt:
		g.genLetPatternStmt(st)
	}
}

// genLetPatternStmt implements `let C(x1,...) := e`: the scrutinee has
// already been checked exhaustive against a single constructor by semant,
// so no tag test is needed here, only member extraction.
func (g *Generator) genLetPatternStmt(s *ast.LetPatternStmt) {
	v := g.genExpr(s.Value)
	for i, bs := range s.BindingSymbols {
		if bs == nil {
			continue
		}
		sym := bs.(*semant.Symbol)
		member := g.temp(valueTypeOf(sym.Type))
		g.fn.EmitIndexedLoad(g.blk, member, v, int64(headerBytes+8*i))
		g.defineLocal(sym, member)
	}
}
