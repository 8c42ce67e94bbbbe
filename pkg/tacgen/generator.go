// Package tacgen lowers the semantically analyzed AST (pkg/semant's output)
// into three-address code (pkg/tac). It is grounded on the teacher's
// pkg/cminorgen/pkg/cshmgen shape: a single-pass translator that keeps a
// "current function / current block" cursor and appends instructions as it
// walks, rather than building an intermediate tree of its own.
package tacgen

import (
	"fmt"

	"github.com/outshift-lang/splc/pkg/ast"
	"github.com/outshift-lang/splc/pkg/semant"
	"github.com/outshift-lang/splc/pkg/tac"
	"github.com/outshift-lang/splc/pkg/types"
)

// headerWords/headerBytes are the object header's size: constructorTag and
// sizeInWords, one machine word each.
const (
	headerWords = 2
	headerBytes = headerWords * 8
)

// Generator walks one *ast.Program and lowers it into a fresh TACContext.
// fn/blk track where the next instruction gets appended; every genXxx
// helper that opens new control flow updates blk before returning.
type Generator struct {
	ctx *tac.TACContext

	fn  *tac.Function
	blk *tac.BasicBlock

	locals  map[*semant.Symbol]*tac.LocalValue
	funcs   map[*semant.Symbol]*tac.Function
	ctorFns map[*types.ValueConstructor]*tac.Function
	strings map[string]*tac.GlobalValue

	gcAllocate, printFn, printlnFn, readLineFn *tac.Function

	breakTargets []*tac.BasicBlock
}

// Generate lowers prog into a fresh TACContext. prog must already be
// annotated by pkg/semant: every Expr typed, every name reference carrying
// its resolved *semant.Symbol.
func Generate(prog *ast.Program) *tac.TACContext {
	g := &Generator{
		ctx:     tac.NewContext(),
		funcs:   make(map[*semant.Symbol]*tac.Function),
		ctorFns: make(map[*types.ValueConstructor]*tac.Function),
		strings: make(map[string]*tac.GlobalValue),
	}
	g.declareRuntime()
	g.declareFunctions(prog)
	g.generateFunctions(prog)
	return g.ctx
}

// declareRuntime declares the fixed runtime-ABI externs every program may
// call: the allocator and the foreign I/O primitives.
func (g *Generator) declareRuntime() {
	g.gcAllocate = g.ctx.MakeExternFunction("gcAllocate", false)
	g.printFn = g.ctx.MakeExternFunction("print", true)
	g.printlnFn = g.ctx.MakeExternFunction("println", true)
	g.readLineFn = g.ctx.MakeExternFunction("readLine", true)
}

// declareFunctions pre-declares every user function and impl method before
// any body is lowered, so forward/mutual top-level calls resolve to a real
// tac.Function the same way pkg/semant's pass 2 pre-registers signatures.
func (g *Generator) declareFunctions(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			g.declareFunc(decl)
		case *ast.ImplDecl:
			for _, m := range decl.Methods {
				g.declareFunc(m)
			}
		}
	}
}

func (g *Generator) declareFunc(d *ast.FuncDecl) *tac.Function {
	sym := d.ResolvedFunc.(*semant.Symbol)
	name := d.Name
	if name == "main" {
		name = "splmain"
	}
	var fn *tac.Function
	if d.IsForeign || d.IsCCall {
		symName := d.ForeignSym
		if symName == "" {
			symName = name
		}
		fn = g.ctx.MakeExternFunction(symName, d.IsForeign)
		fn.IsCCall = d.IsCCall
	} else {
		fn = g.ctx.MakeFunction(name)
	}
	g.funcs[sym] = fn
	return fn
}

func (g *Generator) generateFunctions(prog *ast.Program) {
	for _, d := range prog.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			if !decl.IsForeign && !decl.IsCCall {
				g.genFunc(decl)
			}
		case *ast.ImplDecl:
			for _, m := range decl.Methods {
				g.genFunc(m)
			}
		}
	}
}

// genFunc lowers one function body: bind the receiver (if any) and every
// parameter into a fresh local so later references go through Load (the
// uniform mechanism pkg/ssa promotes to real SSA values), then lower the
// body expression and fall off the end with its value.
func (g *Generator) genFunc(d *ast.FuncDecl) {
	sym := d.ResolvedFunc.(*semant.Symbol)
	fn := g.funcs[sym]
	g.fn = fn
	g.locals = make(map[*semant.Symbol]*tac.LocalValue)
	g.blk = g.ctx.MakeBlock(fn, "entry")

	idx := 0
	if sym.Receiver != nil {
		g.bindParam(sym.Receiver, idx)
		idx++
	}
	for _, p := range sym.Params {
		g.bindParam(p, idx)
		idx++
	}

	v := g.genExpr(d.Body)
	if g.blk.Terminator() == nil {
		g.fn.EmitReturn(g.blk, v)
	}
}

func (g *Generator) bindParam(sym *semant.Symbol, idx int) {
	arg := g.ctx.MakeArgument(g.fn, sym.Name, idx, valueTypeOf(sym.Type))
	local := g.ctx.MakeLocal(g.fn, sym.Name)
	g.fn.EmitStore(g.blk, local, arg)
	g.locals[sym] = local
}

// localFor returns (creating on first use) the stack slot backing sym —
// used for every local binder tacgen meets mid-function: let, let-pattern,
// match-arm and loop-variable bindings, none of which are parameters.
func (g *Generator) localFor(sym *semant.Symbol) *tac.LocalValue {
	if l, ok := g.locals[sym]; ok {
		return l
	}
	l := g.ctx.MakeLocal(g.fn, sym.Name)
	g.locals[sym] = l
	return l
}

func (g *Generator) defineLocal(sym *semant.Symbol, v tac.Value) {
	if sym == nil {
		return
	}
	l := g.localFor(sym)
	g.fn.EmitStore(g.blk, l, v)
}

// funcFor resolves a function-kinded symbol to its declared tac.Function,
// including the builtin I/O primitives that aren't backed by an ast.FuncDecl.
func (g *Generator) funcFor(sym *semant.Symbol) *tac.Function {
	if fn, ok := g.funcs[sym]; ok {
		return fn
	}
	switch sym.Name {
	case "print":
		return g.printFn
	case "println":
		return g.printlnFn
	case "readLine":
		return g.readLineFn
	}
	panic(fmt.Sprintf("tacgen: unresolved function symbol %q", sym.Name))
}

func (g *Generator) temp(vt tac.ValueType) *tac.Temp {
	return g.ctx.MakeTemp(g.fn, "", vt)
}

// emitCall appends a Call with a fresh destination temp of the given
// ValueType and returns it. Every call site knows the static type of its
// result from the already-typed AST, so the caller always supplies vt.
func (g *Generator) emitCall(fn *tac.Function, args []tac.Value, vt tac.ValueType) tac.Value {
	dest := g.temp(vt)
	g.fn.EmitCall(g.blk, dest, g.ctx.GlobalFor(fn), args, fn.IsForeign, fn.IsCCall, true)
	return dest
}

// emitIndirectCall calls through a closure object's code-address slot, the
// mechanism backing a call through a variable of function type.
func (g *Generator) emitIndirectCall(closure tac.Value, args []tac.Value, vt tac.ValueType) tac.Value {
	code := g.temp(tac.CodeAddress)
	g.fn.EmitIndexedLoad(g.blk, code, closure, headerBytes)
	dest := g.temp(vt)
	g.fn.EmitCall(g.blk, dest, code, args, false, false, true)
	return dest
}

// closureValue wraps a bare function reference in a 16-byte header
// (constructorTag=0, sizeInWords=0) followed by the function's code
// address, so it can flow through Reference-typed slots like any other
// heap value. sizeInWords is 0 because the code address is a raw code
// pointer, not a GC-scannable member.
func (g *Generator) closureValue(fn *tac.Function) tac.Value {
	obj := g.emitCall(g.gcAllocate, []tac.Value{g.ctx.Constant(headerBytes + 8)}, tac.Reference)
	g.fn.EmitIndexedStore(g.blk, obj, 0, g.ctx.Constant(0))
	g.fn.EmitIndexedStore(g.blk, obj, 8, g.ctx.Constant(0))
	g.fn.EmitIndexedStore(g.blk, obj, headerBytes, g.ctx.GlobalFor(fn))
	return obj
}

// internString interns a string literal as a static-string global, one per
// distinct source text.
func (g *Generator) internString(s string) *tac.GlobalValue {
	if gv, ok := g.strings[s]; ok {
		return gv
	}
	name := fmt.Sprintf("$str$%d", len(g.strings))
	gv := g.ctx.MakeStaticString(name, s)
	g.strings[s] = gv
	return gv
}

// valueTypeOf maps a resolved language type to the runtime ValueType the GC
// stack map and tag-elision pass need to know about: boxed types (structs,
// data types, closures, strings) are heap Reference values; everything else
// is a tagged immediate (BoxOrInt). Unresolved type variables default to
// Reference via Type.IsBoxed()'s own conservative default.
func valueTypeOf(t *types.Type) tac.ValueType {
	if t.Find().Tag() == types.Function {
		return tac.Reference
	}
	if t.IsBoxed() {
		return tac.Reference
	}
	return tac.BoxOrInt
}
