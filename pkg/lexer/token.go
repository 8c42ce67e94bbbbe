package lexer

import "github.com/outshift-lang/splc/pkg/diag"

type Kind int

const (
	EOF Kind = iota
	Illegal

	Ident
	Int
	String

	// keywords
	KwFn
	KwLet
	KwData
	KwStruct
	KwImpl
	KwMatch
	KwCase
	KwReturn
	KwBreak
	KwWhile
	KwFor
	KwForeach
	KwIn
	KwDo
	KwForever
	KwTrue
	KwFalse
	KwIf
	KwElse
	KwForeign
	KwCCall

	// punctuation / operators
	LParen
	RParen
	LBrace
	RBrace
	LBracket
	RBracket
	Comma
	Dot
	DotDot
	Colon
	Semicolon
	Arrow
	Assign
	ColonEq

	Plus
	Minus
	Star
	Slash
	Percent
	Amp
	Pipe
	Caret
	Bang

	Eq
	Ne
	Lt
	Le
	Gt
	Ge
	AndAnd
	OrOr
)

var keywords = map[string]Kind{
	"fn":       KwFn,
	"let":      KwLet,
	"data":     KwData,
	"struct":   KwStruct,
	"impl":     KwImpl,
	"match":    KwMatch,
	"case":     KwCase,
	"return":   KwReturn,
	"break":    KwBreak,
	"while":    KwWhile,
	"for":      KwFor,
	"foreach":  KwForeach,
	"in":       KwIn,
	"do":       KwDo,
	"forever":  KwForever,
	"true":     KwTrue,
	"false":    KwFalse,
	"if":       KwIf,
	"else":     KwElse,
	"foreign":  KwForeign,
	"ccall":    KwCCall,
}

type Token struct {
	Kind    Kind
	Literal string
	Pos     diag.Pos
}
