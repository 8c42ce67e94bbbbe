// Package parser implements a hand-written recursive-descent parser with
// a Pratt/precedence-climbing expression parser, the same two-stage
// lex-then-parse shape as the teacher's C front end, sized for this
// language's grammar instead of C's.
package parser

import (
	"strconv"

	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/diag"
	"github.com/outshift-lang/splc/pkg/lexer"
)

type Parser struct {
	l *lexer.Lexer

	cur  lexer.Token
	peek lexer.Token

	Errors diag.Bag
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...any) {
	p.Errors.Addf(diag.Syntax, p.cur.Pos, format, args...)
}

func (p *Parser) expect(k lexer.Kind, what string) lexer.Token {
	tok := p.cur
	if tok.Kind != k {
		p.errorf("expected %s, got %q", what, tok.Literal)
	}
	p.next()
	return tok
}

// ParseProgram parses an entire source file into a Program, collecting
// errors in p.Errors rather than stopping at the first one, so a single
// pass reports every syntax error it can find.
func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.cur.Kind != lexer.EOF {
		d := p.parseDecl()
		if d != nil {
			prog.Decls = append(prog.Decls, d)
		} else {
			p.next()
		}
	}
	return prog
}

func (p *Parser) parseDecl() ast.Decl {
	switch p.cur.Kind {
	case lexer.KwFn:
		return p.parseFuncDecl()
	case lexer.KwData:
		return p.parseDataDecl()
	case lexer.KwStruct:
		return p.parseStructDecl()
	case lexer.KwImpl:
		return p.parseImplDecl()
	default:
		p.errorf("expected declaration, got %q", p.cur.Literal)
		return nil
	}
}

func (p *Parser) parseFuncDecl() *ast.FuncDecl {
	pos := p.cur.Pos
	p.next() // fn
	isForeign := false
	isCCall := false
	if p.cur.Kind == lexer.KwForeign {
		isForeign = true
		p.next()
	}
	if p.cur.Kind == lexer.KwCCall {
		isCCall = true
		p.next()
	}
	name := p.expect(lexer.Ident, "function name").Literal
	params := p.parseParamList()
	if p.cur.Kind == lexer.Arrow {
		p.next()
		p.parseTypeExpr() // return type annotation, not retained on the AST
	}
	var body ast.Expr
	if !isForeign {
		body = p.parseBlockExpr()
	} else if p.cur.Kind == lexer.Semicolon {
		p.next()
	}
	return &ast.FuncDecl{
		DeclBase:   ast.NewDeclBase(pos),
		Name:       name,
		Params:     params,
		Body:       body,
		IsForeign:  isForeign,
		IsCCall:    isCCall,
		ForeignSym: name,
	}
}


func (p *Parser) parseParamList() []ast.Param {
	p.expect(lexer.LParen, "(")
	var params []ast.Param
	for p.cur.Kind != lexer.RParen && p.cur.Kind != lexer.EOF {
		pos := p.cur.Pos
		name := p.expect(lexer.Ident, "parameter name").Literal
		if p.cur.Kind == lexer.Colon {
			p.next()
			p.parseTypeExpr()
		}
		params = append(params, ast.Param{Name: name, Pos: pos})
		if p.cur.Kind == lexer.Comma {
			p.next()
		}
	}
	p.expect(lexer.RParen, ")")
	return params
}

// parseTypeExpr consumes (but does not build an AST for) a type
// annotation: the language is fully inferred, so surface type annotations
// are accepted syntax that C2 re-derives rather than trusts.
func (p *Parser) parseTypeExpr() {
	switch p.cur.Kind {
	case lexer.Ident:
		p.next()
		if p.cur.Kind == lexer.Lt {
			p.next()
			for p.cur.Kind != lexer.Gt && p.cur.Kind != lexer.EOF {
				p.parseTypeExpr()
				if p.cur.Kind == lexer.Comma {
					p.next()
				}
			}
			p.expect(lexer.Gt, ">")
		}
	case lexer.LParen:
		p.next()
		for p.cur.Kind != lexer.RParen && p.cur.Kind != lexer.EOF {
			p.parseTypeExpr()
			if p.cur.Kind == lexer.Comma {
				p.next()
			}
		}
		p.expect(lexer.RParen, ")")
		if p.cur.Kind == lexer.Arrow {
			p.next()
			p.parseTypeExpr()
		}
	default:
		p.errorf("expected type, got %q", p.cur.Literal)
		p.next()
	}
}

func (p *Parser) parseDataDecl() *ast.DataDecl {
	pos := p.cur.Pos
	p.next() // data
	name := p.expect(lexer.Ident, "type name").Literal
	typeParams := p.parseTypeParamsOpt()
	p.expect(lexer.Assign, "=")
	var ctors []ast.DataConstructor
	for {
		ctors = append(ctors, p.parseDataConstructor())
		if p.cur.Kind == lexer.Pipe {
			p.next()
			continue
		}
		break
	}
	return &ast.DataDecl{DeclBase: ast.NewDeclBase(pos), Name: name, TypeParams: typeParams, Constructors: ctors}
}


func (p *Parser) parseTypeParamsOpt() []string {
	if p.cur.Kind != lexer.Lt {
		return nil
	}
	p.next()
	var params []string
	for p.cur.Kind != lexer.Gt && p.cur.Kind != lexer.EOF {
		params = append(params, p.expect(lexer.Ident, "type parameter").Literal)
		if p.cur.Kind == lexer.Comma {
			p.next()
		}
	}
	p.expect(lexer.Gt, ">")
	return params
}

func (p *Parser) parseDataConstructor() ast.DataConstructor {
	name := p.expect(lexer.Ident, "constructor name").Literal
	var members []ast.DataMember
	if p.cur.Kind == lexer.LParen {
		p.next()
		for p.cur.Kind != lexer.RParen && p.cur.Kind != lexer.EOF {
			mname := p.expect(lexer.Ident, "member name").Literal
			p.expect(lexer.Colon, ":")
			tname := p.expect(lexer.Ident, "member type").Literal
			members = append(members, ast.DataMember{Name: mname, TypeName: tname})
			if p.cur.Kind == lexer.Comma {
				p.next()
			}
		}
		p.expect(lexer.RParen, ")")
	}
	return ast.DataConstructor{Name: name, Members: members}
}

func (p *Parser) parseStructDecl() *ast.StructDecl {
	pos := p.cur.Pos
	p.next() // struct
	name := p.expect(lexer.Ident, "struct name").Literal
	typeParams := p.parseTypeParamsOpt()
	p.expect(lexer.LBrace, "{")
	var members []ast.DataMember
	for p.cur.Kind != lexer.RBrace && p.cur.Kind != lexer.EOF {
		mname := p.expect(lexer.Ident, "member name").Literal
		p.expect(lexer.Colon, ":")
		tname := p.expect(lexer.Ident, "member type").Literal
		members = append(members, ast.DataMember{Name: mname, TypeName: tname})
		if p.cur.Kind == lexer.Comma {
			p.next()
		}
	}
	p.expect(lexer.RBrace, "}")
	return &ast.StructDecl{DeclBase: ast.NewDeclBase(pos), Name: name, TypeParams: typeParams, Members: members}
}


func (p *Parser) parseImplDecl() *ast.ImplDecl {
	pos := p.cur.Pos
	p.next() // impl
	typeName := p.expect(lexer.Ident, "type name").Literal
	p.expect(lexer.LBrace, "{")
	var methods []*ast.FuncDecl
	for p.cur.Kind != lexer.RBrace && p.cur.Kind != lexer.EOF {
		methods = append(methods, p.parseFuncDecl())
	}
	p.expect(lexer.RBrace, "}")
	return &ast.ImplDecl{DeclBase: ast.NewDeclBase(pos), TypeName: typeName, Methods: methods}
}


// ---- statements ----

func (p *Parser) parseBlockExpr() *ast.BlockExpr {
	pos := p.cur.Pos
	p.expect(lexer.LBrace, "{")
	var stmts []ast.Stmt
	var trailing ast.Expr
	for p.cur.Kind != lexer.RBrace && p.cur.Kind != lexer.EOF {
		if p.cur.Kind == lexer.KwLet {
			stmts = append(stmts, p.parseLetStmt())
			continue
		}
		e := p.parseExpr(0)
		if p.cur.Kind == lexer.RBrace {
			trailing = e
			break
		}
		if p.cur.Kind == lexer.Semicolon {
			p.next()
		}
		stmts = append(stmts, &ast.ExprStmt{StmtBase: ast.NewStmtBase(e.Pos()), X: e})
	}
	p.expect(lexer.RBrace, "}")
	return &ast.BlockExpr{ExprBase: ast.NewExprBase(pos), Stmts: stmts, Value: trailing}
}


func (p *Parser) parseLetStmt() ast.Stmt {
	pos := p.cur.Pos
	p.next() // let
	if p.cur.Kind == lexer.Ident && isConstructorName(p.cur.Literal) {
		ctor := p.cur.Literal
		p.next()
		var bindings []string
		p.expect(lexer.LParen, "(")
		for p.cur.Kind != lexer.RParen && p.cur.Kind != lexer.EOF {
			bindings = append(bindings, p.expect(lexer.Ident, "binding").Literal)
			if p.cur.Kind == lexer.Comma {
				p.next()
			}
		}
		p.expect(lexer.RParen, ")")
		p.expect(lexer.ColonEq, ":=")
		value := p.parseExpr(0)
		if p.cur.Kind == lexer.Semicolon {
			p.next()
		}
		return &ast.LetPatternStmt{StmtBase: ast.NewStmtBase(pos), Constructor: ctor, Bindings: bindings, Value: value}
	}
	name := p.expect(lexer.Ident, "binding name").Literal
	if p.cur.Kind == lexer.Colon {
		p.next()
		p.parseTypeExpr()
	}
	p.expect(lexer.Assign, "=")
	value := p.parseExpr(0)
	if p.cur.Kind == lexer.Semicolon {
		p.next()
	}
	return &ast.LetStmt{StmtBase: ast.NewStmtBase(pos), Name: name, Value: value}
}


// ---- expressions: precedence-climbing ----

var precedence = map[lexer.Kind]int{
	lexer.OrOr:    1,
	lexer.AndAnd:  2,
	lexer.Eq:      3,
	lexer.Ne:      3,
	lexer.Lt:      4,
	lexer.Le:      4,
	lexer.Gt:      4,
	lexer.Ge:      4,
	lexer.Plus:    5,
	lexer.Minus:   5,
	lexer.Star:    6,
	lexer.Slash:   6,
	lexer.Percent: 6,
	lexer.Amp:     7,
	lexer.Pipe:    7,
	lexer.Caret:   7,
}

func (p *Parser) parseExpr(minPrec int) ast.Expr {
	left := p.parseUnary()
	for {
		prec, ok := precedence[p.cur.Kind]
		if !ok || prec < minPrec {
			break
		}
		op := p.cur.Literal
		pos := p.cur.Pos
		p.next()
		right := p.parseExpr(prec + 1)
		left = &ast.BinaryExpr{ExprBase: ast.NewExprBase(pos), Op: op, Left: left, Right: right}
	}
	if p.cur.Kind == lexer.ColonEq {
		pos := p.cur.Pos
		p.next()
		value := p.parseExpr(0)
		return &ast.AssignExpr{ExprBase: ast.NewExprBase(pos), Target: left, Value: value}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	switch p.cur.Kind {
	case lexer.Minus, lexer.Bang:
		op := p.cur.Literal
		pos := p.cur.Pos
		p.next()
		operand := p.parseUnary()
		return &ast.UnaryExpr{ExprBase: ast.NewExprBase(pos), Op: op, Operand: operand}
	}
	return p.parsePostfix()
}

func (p *Parser) parsePostfix() ast.Expr {
	e := p.parsePrimary()
	for {
		switch p.cur.Kind {
		case lexer.Dot:
			p.next()
			member := p.expect(lexer.Ident, "member name").Literal
			e = &ast.MemberExpr{ExprBase: ast.NewExprBase(e.Pos()), Receiver: e, Member: member}
		case lexer.LParen:
			pos := p.cur.Pos
			p.next()
			var args []ast.Expr
			for p.cur.Kind != lexer.RParen && p.cur.Kind != lexer.EOF {
				args = append(args, p.parseExpr(0))
				if p.cur.Kind == lexer.Comma {
					p.next()
				}
			}
			p.expect(lexer.RParen, ")")
			e = &ast.CallExpr{ExprBase: ast.NewExprBase(pos), Callee: e, Args: args}
		default:
			return e
		}
	}
}

func (p *Parser) parsePrimary() ast.Expr {
	pos := p.cur.Pos
	switch p.cur.Kind {
	case lexer.Int:
		v, _ := strconv.ParseInt(p.cur.Literal, 10, 64)
		p.next()
		return &ast.IntLit{ExprBase: ast.NewExprBase(pos), Value: v}
	case lexer.KwTrue:
		p.next()
		return &ast.BoolLit{ExprBase: ast.NewExprBase(pos), Value: true}
	case lexer.KwFalse:
		p.next()
		return &ast.BoolLit{ExprBase: ast.NewExprBase(pos), Value: false}
	case lexer.String:
		v := p.cur.Literal
		p.next()
		return &ast.StringLit{ExprBase: ast.NewExprBase(pos), Value: v}
	case lexer.Ident:
		name := p.cur.Literal
		p.next()
		if p.cur.Kind == lexer.LBrace && isConstructorName(name) {
			return p.parseConstructExpr(pos, name)
		}
		return &ast.VarExpr{ExprBase: ast.NewExprBase(pos), Name: name}
	case lexer.LParen:
		p.next()
		e := p.parseExpr(0)
		p.expect(lexer.RParen, ")")
		return e
	case lexer.LBrace:
		return p.parseBlockExpr()
	case lexer.KwIf:
		return p.parseIfExpr()
	case lexer.KwMatch:
		return p.parseMatchExpr()
	case lexer.KwForever:
		p.next()
		body := p.parseBlockExpr()
		return &ast.ForeverExpr{ExprBase: ast.NewExprBase(pos), Body: body}
	case lexer.KwWhile:
		p.next()
		cond := p.parseExpr(0)
		body := p.parseLoopBody()
		return &ast.WhileExpr{ExprBase: ast.NewExprBase(pos), Cond: cond, Body: body}
	case lexer.LBracket:
		return p.parseArrayLit(pos)
	case lexer.KwFor:
		return p.parseForRangeExpr()
	case lexer.KwForeach:
		return p.parseForeachExpr()
	case lexer.KwBreak:
		p.next()
		var v ast.Expr
		if canStartExpr(p.cur.Kind) {
			v = p.parseExpr(0)
		}
		return &ast.BreakExpr{ExprBase: ast.NewExprBase(pos), Value: v}
	case lexer.KwReturn:
		p.next()
		var v ast.Expr
		if canStartExpr(p.cur.Kind) {
			v = p.parseExpr(0)
		}
		return &ast.ReturnExpr{ExprBase: ast.NewExprBase(pos), Value: v}
	case lexer.KwFn:
		return p.parseFuncExpr()
	default:
		p.errorf("unexpected token %q in expression", p.cur.Literal)
		tok := p.cur
		p.next()
		return &ast.UnitLit{ExprBase: ast.NewExprBase(tok.Pos)}
	}
}

func canStartExpr(k lexer.Kind) bool {
	switch k {
	case lexer.RBrace, lexer.Semicolon, lexer.EOF, lexer.Comma, lexer.RParen:
		return false
	}
	return true
}

// isConstructorName follows the convention used throughout spec-derived
// sources: value constructors are capitalized identifiers.
func isConstructorName(name string) bool {
	return len(name) > 0 && name[0] >= 'A' && name[0] <= 'Z'
}

func (p *Parser) parseArrayLit(pos diag.Pos) ast.Expr {
	p.next() // [
	var elems []ast.Expr
	for p.cur.Kind != lexer.RBracket && p.cur.Kind != lexer.EOF {
		elems = append(elems, p.parseExpr(0))
		if p.cur.Kind == lexer.Comma {
			p.next()
		}
	}
	p.expect(lexer.RBracket, "]")
	return &ast.ArrayLit{ExprBase: ast.NewExprBase(pos), Elems: elems}
}

func (p *Parser) parseConstructExpr(pos diag.Pos, name string) ast.Expr {
	p.next() // {
	var args []ast.Expr
	for p.cur.Kind != lexer.RBrace && p.cur.Kind != lexer.EOF {
		args = append(args, p.parseExpr(0))
		if p.cur.Kind == lexer.Comma {
			p.next()
		}
	}
	p.expect(lexer.RBrace, "}")
	return &ast.ConstructExpr{ExprBase: ast.NewExprBase(pos), Constructor: name, Args: args}
}

func (p *Parser) parseIfExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // if
	cond := p.parseExpr(0)
	then := p.parseBlockExpr()
	var elseExpr ast.Expr
	if p.cur.Kind == lexer.KwElse {
		p.next()
		if p.cur.Kind == lexer.KwIf {
			elseExpr = p.parseIfExpr()
		} else {
			elseExpr = p.parseBlockExpr()
		}
	}
	return &ast.IfExpr{ExprBase: ast.NewExprBase(pos), Cond: cond, Then: then, Else: elseExpr}
}

func (p *Parser) parseMatchExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // match
	subject := p.parseExpr(0)
	p.expect(lexer.LBrace, "{")
	var cases []ast.MatchCase
	for p.cur.Kind != lexer.RBrace && p.cur.Kind != lexer.EOF {
		p.expect(lexer.KwCase, "case")
		var ctor string
		var bindings []string
		if p.cur.Kind == lexer.Ident && isConstructorName(p.cur.Literal) {
			ctor = p.cur.Literal
			p.next()
			if p.cur.Kind == lexer.LParen {
				p.next()
				for p.cur.Kind != lexer.RParen && p.cur.Kind != lexer.EOF {
					bindings = append(bindings, p.expect(lexer.Ident, "binding").Literal)
					if p.cur.Kind == lexer.Comma {
						p.next()
					}
				}
				p.expect(lexer.RParen, ")")
			}
		} else {
			bindings = append(bindings, p.expect(lexer.Ident, "pattern").Literal)
		}
		p.expect(lexer.Arrow, "->")
		body := p.parseExpr(0)
		if p.cur.Kind == lexer.Comma {
			p.next()
		}
		cases = append(cases, ast.MatchCase{Constructor: ctor, Bindings: bindings, Body: body})
	}
	p.expect(lexer.RBrace, "}")
	return &ast.MatchExpr{ExprBase: ast.NewExprBase(pos), Subject: subject, Cases: cases}
}

func (p *Parser) parseForRangeExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // for
	name := p.expect(lexer.Ident, "loop variable").Literal
	p.expect(lexer.KwIn, "in")
	low := p.parseExpr(0)
	p.expect(lexer.DotDot, "..")
	high := p.parseExpr(0)
	body := p.parseLoopBody()
	return &ast.ForRangeExpr{ExprBase: ast.NewExprBase(pos), Var: name, Low: low, High: high, Body: body}
}

func (p *Parser) parseForeachExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // foreach
	name := p.expect(lexer.Ident, "loop variable").Literal
	p.expect(lexer.KwIn, "in")
	iterable := p.parseExpr(0)
	body := p.parseLoopBody()
	return &ast.ForeachExpr{ExprBase: ast.NewExprBase(pos), Var: name, Iterable: iterable, Body: body}
}

// parseLoopBody accepts either the block form `{ ... }` or the sugared
// `do expr` single-statement form used throughout spec.md §8's end-to-end
// scenarios (`for i in 1..4 do print(i)`). A bare expression body is
// wrapped in a BlockExpr so the rest of the pipeline only ever sees blocks.
func (p *Parser) parseLoopBody() ast.Expr {
	if p.cur.Kind == lexer.KwDo {
		p.next()
		e := p.parseExpr(0)
		return &ast.BlockExpr{ExprBase: ast.NewExprBase(e.Pos()), Value: e}
	}
	return p.parseBlockExpr()
}

func (p *Parser) parseFuncExpr() ast.Expr {
	pos := p.cur.Pos
	p.next() // fn
	params := p.parseParamList()
	if p.cur.Kind == lexer.Arrow {
		p.next()
		p.parseTypeExpr()
	}
	body := p.parseBlockExpr()
	return &ast.FuncExpr{ExprBase: ast.NewExprBase(pos), Params: params, Body: body}
}

