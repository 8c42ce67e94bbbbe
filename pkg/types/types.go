// Package types implements the language's Hindley-Milner type system:
// base, function, constructed and variable types, value constructors, and
// unification by mutation of a union-find-style variable chain.
package types

import (
	"fmt"
	"strings"
)

// Tag discriminates the concrete kind behind a Type, mirroring the
// enceladus TypeTag enum this package is grounded on.
type Tag int

const (
	Base Tag = iota
	Function
	Variable
	Constructed
)

// MemberDesc describes one field of a value constructor: its name, its
// type, and its zero-based slot within the object's member array.
type MemberDesc struct {
	Name     string
	Type     *Type
	Location int
}

// ValueConstructor describes one alternative of a data type: Point(x, y),
// Nil, Cons(head, tail), and so on. Tag is the runtime constructor tag
// stored in the object header (or folded into the pointer for nullary,
// unboxed constructors such as booleans).
type ValueConstructor struct {
	Name    string
	Tag     int64
	Members []MemberDesc
	IsBoxed bool
}

// TypeConstructor describes a user-declared data type: its name, its
// formal type parameters, and the list of value constructors that inhabit
// it.
type TypeConstructor struct {
	Name              string
	Parameters        []*Type
	ValueConstructors []*ValueConstructor
}

// impl is the mutable identity behind a Type handle. Unification mutates
// impl in place for Variable types (union-find path compression), so two
// Type values sharing the same *impl are the same type.
type impl struct {
	tag Tag

	// Base
	name      string
	isBoxed   bool
	primitive bool

	// Function
	inputs []*Type
	output *Type

	// Constructed
	typeCtor *TypeConstructor
	typeArgs []*Type

	// Variable
	index       int64
	rigid       bool
	quantified  bool
	instance    *Type // union-find parent once unified
	constraints []string
}

// Type is a handle to a type. Copying a Type copies the handle, not the
// underlying impl; two Types are the same type iff Find returns the same
// *impl.
type Type struct {
	i *impl
}

var nextVarIndex int64

// NewVariable allocates a fresh, unbound type variable.
func NewVariable() *Type {
	nextVarIndex++
	return &Type{i: &impl{tag: Variable, index: nextVarIndex}}
}

// NewRigidVariable allocates a fresh type variable marked rigid: one bound
// by a function's own quantifiers, which must not unify with an unrelated
// concrete type during that function's body.
func NewRigidVariable() *Type {
	t := NewVariable()
	t.i.rigid = true
	return t
}

func NewBase(name string, boxed bool) *Type {
	return &Type{i: &impl{tag: Base, name: name, isBoxed: boxed, primitive: true}}
}

func NewFunction(inputs []*Type, output *Type) *Type {
	return &Type{i: &impl{tag: Function, inputs: inputs, output: output, isBoxed: true}}
}

func NewConstructed(ctor *TypeConstructor, args []*Type) *Type {
	return &Type{i: &impl{tag: Constructed, typeCtor: ctor, typeArgs: args, isBoxed: true}}
}

// Find follows the union-find chain to the representative type, path
// compressing as it goes. Every observation of a Type's shape should go
// through Find first.
func (t *Type) Find() *Type {
	if t == nil {
		return nil
	}
	if t.i.tag == Variable && t.i.instance != nil {
		root := t.i.instance.Find()
		t.i.instance = root
		return root
	}
	return t
}

func (t *Type) Tag() Tag { return t.Find().i.tag }

func (t *Type) IsBoxed() bool {
	f := t.Find()
	if f.i.tag == Variable {
		return true // unresolved variables are treated conservatively as boxed
	}
	return f.i.isBoxed
}

func (t *Type) Name() string {
	f := t.Find()
	switch f.i.tag {
	case Base:
		return f.i.name
	case Constructed:
		return f.i.typeCtor.Name
	case Variable:
		return fmt.Sprintf("t%d", f.i.index)
	case Function:
		return "Function"
	}
	return "?"
}

func (t *Type) Inputs() []*Type { return t.Find().i.inputs }
func (t *Type) Output() *Type   { return t.Find().i.output }

func (t *Type) TypeConstructor() *TypeConstructor { return t.Find().i.typeCtor }
func (t *Type) TypeArgs() []*Type                 { return t.Find().i.typeArgs }

func (t *Type) ValueConstructors() []*ValueConstructor {
	f := t.Find()
	switch f.i.tag {
	case Constructed:
		return f.i.typeCtor.ValueConstructors
	case Base:
		if f.i.primitive {
			return nil
		}
	}
	return nil
}

func (t *Type) IsVariable() bool { return t.Find().i.tag == Variable }
func (t *Type) IsRigid() bool    { return t.Find().i.tag == Variable && t.Find().i.rigid }
func (t *Type) VarIndex() int64  { return t.Find().i.index }

// AddConstraint records a trait requirement (Num, Eq, Show, ...) that must
// hold of whatever concrete type this variable is eventually unified with.
func (t *Type) AddConstraint(trait string) {
	f := t.Find()
	for _, c := range f.i.constraints {
		if c == trait {
			return
		}
	}
	f.i.constraints = append(f.i.constraints, trait)
}

func (t *Type) Constraints() []string { return t.Find().i.constraints }

func (t *Type) String() string {
	f := t.Find()
	switch f.i.tag {
	case Base:
		return f.i.name
	case Variable:
		return fmt.Sprintf("'t%d", f.i.index)
	case Function:
		parts := make([]string, len(f.i.inputs))
		for idx, in := range f.i.inputs {
			parts[idx] = in.String()
		}
		return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.i.output.String())
	case Constructed:
		if len(f.i.typeArgs) == 0 {
			return f.i.typeCtor.Name
		}
		parts := make([]string, len(f.i.typeArgs))
		for idx, a := range f.i.typeArgs {
			parts[idx] = a.String()
		}
		return fmt.Sprintf("%s<%s>", f.i.typeCtor.Name, strings.Join(parts, ", "))
	}
	return "?"
}

// TypeScheme pairs a type with the set of variables quantified over it
// (its "forall" prefix), the generalization step of let-polymorphism.
type TypeScheme struct {
	Type       *Type
	Quantified []*Type
}

func Trivial(t *Type) *TypeScheme { return &TypeScheme{Type: t} }

// Instantiate produces a fresh copy of a scheme's type with each quantified
// variable replaced by a new, unbound variable, so every use site of a
// polymorphic binding gets its own type variables.
func (s *TypeScheme) Instantiate() *Type {
	if len(s.Quantified) == 0 {
		return s.Type
	}
	subst := make(map[*impl]*Type, len(s.Quantified))
	for _, q := range s.Quantified {
		subst[q.Find().i] = NewVariable()
	}
	return instantiateType(s.Type, subst)
}

func instantiateType(t *Type, subst map[*impl]*Type) *Type {
	f := t.Find()
	switch f.i.tag {
	case Variable:
		if repl, ok := subst[f.i]; ok {
			return repl
		}
		return f
	case Function:
		inputs := make([]*Type, len(f.i.inputs))
		for idx, in := range f.i.inputs {
			inputs[idx] = instantiateType(in, subst)
		}
		return NewFunction(inputs, instantiateType(f.i.output, subst))
	case Constructed:
		args := make([]*Type, len(f.i.typeArgs))
		for idx, a := range f.i.typeArgs {
			args[idx] = instantiateType(a, subst)
		}
		return NewConstructed(f.i.typeCtor, args)
	default:
		return f
	}
}

// FreeVars collects the unquantified variables occurring in t.
func FreeVars(t *Type) []*Type {
	seen := map[*impl]bool{}
	var out []*Type
	var walk func(*Type)
	walk = func(t *Type) {
		f := t.Find()
		if f.i.tag == Variable {
			if !seen[f.i] {
				seen[f.i] = true
				out = append(out, f)
			}
			return
		}
		if f.i.tag == Function {
			for _, in := range f.i.inputs {
				walk(in)
			}
			walk(f.i.output)
		}
		if f.i.tag == Constructed {
			for _, a := range f.i.typeArgs {
				walk(a)
			}
		}
	}
	walk(t)
	return out
}

// Generalize produces a TypeScheme quantifying every free variable of t
// that is not also free in the enclosing environment (monomorphism
// restriction of let-bound environment variables).
func Generalize(t *Type, envFree map[int64]bool) *TypeScheme {
	var quant []*Type
	for _, v := range FreeVars(t) {
		if !envFree[v.VarIndex()] {
			quant = append(quant, v)
		}
	}
	return &TypeScheme{Type: t, Quantified: quant}
}

// UnificationError reports two types that cannot be made equal.
type UnificationError struct {
	Left, Right *Type
}

func (e *UnificationError) Error() string {
	return fmt.Sprintf("cannot unify %s with %s", e.Left, e.Right)
}

// Unify makes a and b equal by mutating unbound variables in place,
// following the occurs check to reject infinite types.
func Unify(a, b *Type) error {
	a, b = a.Find(), b.Find()
	if a.i == b.i {
		return nil
	}

	if a.i.tag == Variable {
		return bindVariable(a, b)
	}
	if b.i.tag == Variable {
		return bindVariable(b, a)
	}

	if a.i.tag != b.i.tag {
		return &UnificationError{Left: a, Right: b}
	}

	switch a.i.tag {
	case Base:
		if a.i.name != b.i.name {
			return &UnificationError{Left: a, Right: b}
		}
		return nil
	case Function:
		if len(a.i.inputs) != len(b.i.inputs) {
			return &UnificationError{Left: a, Right: b}
		}
		for idx := range a.i.inputs {
			if err := Unify(a.i.inputs[idx], b.i.inputs[idx]); err != nil {
				return err
			}
		}
		return Unify(a.i.output, b.i.output)
	case Constructed:
		if a.i.typeCtor != b.i.typeCtor || len(a.i.typeArgs) != len(b.i.typeArgs) {
			return &UnificationError{Left: a, Right: b}
		}
		for idx := range a.i.typeArgs {
			if err := Unify(a.i.typeArgs[idx], b.i.typeArgs[idx]); err != nil {
				return err
			}
		}
		return nil
	}
	return &UnificationError{Left: a, Right: b}
}

func bindVariable(v, t *Type) error {
	if v.i == t.Find().i {
		return nil
	}
	if v.i.rigid && (t.Find().i.tag != Variable || t.Find().i != v.i) {
		if t.Find().i.tag != Variable {
			return &UnificationError{Left: v, Right: t}
		}
	}
	if occurs(v, t) {
		return &UnificationError{Left: v, Right: t}
	}
	for _, trait := range v.i.constraints {
		t.Find().AddConstraint(trait)
	}
	v.i.instance = t
	return nil
}

func occurs(v, t *Type) bool {
	f := t.Find()
	if f.i.tag == Variable {
		return f.i == v.i
	}
	if f.i.tag == Function {
		for _, in := range f.i.inputs {
			if occurs(v, in) {
				return true
			}
		}
		return occurs(v, f.i.output)
	}
	if f.i.tag == Constructed {
		for _, a := range f.i.typeArgs {
			if occurs(v, a) {
				return true
			}
		}
	}
	return false
}

// Well-known base types, analogous to
// enceladus's primitive BaseType registrations.
var (
	Int    = NewBase("Int", false)
	Bool   = NewBase("Bool", false)
	Unit   = NewBase("Unit", false)
	String = NewBase("String", true)
)
