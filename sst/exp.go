// Package sst defines the statement-oriented intermediate representation of
// verified code. Expressions are free of side effects; statements carry the
// control flow, including loops with explicit invariants and frames.
//
// Nodes are immutable once built. Use a Builder to construct bodies so that
// the well-formedness rules are checked as the tree grows.
package sst

import (
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/soir/internal/token"
)

// UniqueIdent identifies a variable. Local is nil for bound variables and
// holds a disambiguator for locals, so a shadowed name stays distinct.
type UniqueIdent struct {
	Name  string
	Local *uint64
}

// BoundIdent returns the identifier of a bound variable.
func BoundIdent(name string) UniqueIdent {
	return UniqueIdent{Name: name}
}

// LocalIdent returns the identifier of a local variable.
func LocalIdent(name string, n uint64) UniqueIdent {
	return UniqueIdent{Name: name, Local: &n}
}

// Equal compares identifiers by value.
func (id UniqueIdent) Equal(other UniqueIdent) bool {
	if id.Name != other.Name {
		return false
	}
	if id.Local == nil || other.Local == nil {
		return id.Local == nil && other.Local == nil
	}
	return *id.Local == *other.Local
}

// Key returns a string that identifies id, for use as a map key.
func (id UniqueIdent) Key() string {
	if id.Local == nil {
		return id.Name
	}
	return id.Name + "@" + strconv.FormatUint(*id.Local, 10)
}

func (id UniqueIdent) String() string {
	return id.Key()
}

// Binder associates a name with a value, such as a type for quantified
// variables or an expression for let bindings.
type Binder[A any] struct {
	Name string
	A    A
}

// Trig is one trigger group: a set of terms that must all match.
type Trig []Exp

// Trigs is the list of trigger groups of a quantifier.
type Trigs []Trig

func (ts Trigs) String() string {
	groups := make([]string, len(ts))
	for i, t := range ts {
		terms := make([]string, len(t))
		for j, e := range t {
			terms[j] = e.String()
		}
		groups[i] = "[" + strings.Join(terms, ", ") + "]"
	}
	return strings.Join(groups, " ")
}

// Node is implemented by all SOIR nodes.
type Node interface {
	// Pos returns the source position the node was produced from.
	Pos() token.Position

	String() string
}

// Exp is a typed, side-effect free expression.
type Exp interface {
	Node
	Typ() Typ
	expNode()
}

// Span carries the position of a node.
type Span struct {
	At token.Position
}

func (s Span) Pos() token.Position { return s.At }

// Meta carries the position and type of an expression.
type Meta struct {
	Span
	Type Typ
}

func (m Meta) Typ() Typ { return m.Type }

func (Meta) expNode() {}

// Const is a literal.
type Const struct {
	Meta
	Value Constant
}

// Var reads a variable.
type Var struct {
	Meta
	Ident UniqueIdent
}

// VarLoc is the location of a variable, used as a mutation target.
type VarLoc struct {
	Meta
	Ident UniqueIdent
}

// VarAt reads a snapshot of a variable.
type VarAt struct {
	Meta
	Ident UniqueIdent
	Kind  VarAtKind
}

// Loc is the location of a place expression, used as a mutation target.
type Loc struct {
	Meta
	X Exp
}

// Old reads a variable as it was at a labeled snapshot.
type Old struct {
	Meta
	Label string
	Ident UniqueIdent
}

// Call applies a spec function.
type Call struct {
	Meta
	Fun     Fun
	TypArgs []Typ
	Args    []Exp
}

// CallLambda applies a callable value.
type CallLambda struct {
	Meta
	Fn   Exp
	Args []Exp
}

// Ctor builds a datatype value.
type Ctor struct {
	Meta
	Path    string
	Variant string
	Fields  []Binder[Exp]
}

// Unary applies a unary operator. Group is used by Trigger marks only: nil
// is the default trigger group.
type Unary struct {
	Meta
	Op    UnaryOp
	Group *uint64
	X     Exp
}

// UnaryOpr applies a unary operator that carries data.
type UnaryOpr struct {
	Meta
	Op Opr
	X  Exp
}

// Binary applies a binary operator.
type Binary struct {
	Meta
	Op BinaryOp
	X  Exp
	Y  Exp
}

// If is a conditional expression.
type If struct {
	Meta
	Cond Exp
	Then Exp
	Else Exp
}

// WithTriggers attaches explicit trigger groups to a quantifier body.
type WithTriggers struct {
	Meta
	Trigs Trigs
	Body  Exp
}

// Bind introduces variables scoped over Body.
type Bind struct {
	Meta
	Bnd  Bnd
	Body Exp
}

// Bnd is a binder form.
type Bnd interface {
	Pos() token.Position
	bndNode()
}

// Let binds names to values.
type Let struct {
	Span
	Binders []Binder[Exp]
}

// QuantBnd is a quantifier. Trigs holds the validated trigger groups and
// is non-empty unless SkipTriggers is set.
type QuantBnd struct {
	Span
	Quant        Quant
	Binders      []Binder[Typ]
	Trigs        Trigs
	SkipTriggers bool
}

// Lambda binds the parameters of an anonymous spec function.
type Lambda struct {
	Span
	Binders []Binder[Typ]
}

// Choose picks values satisfying Cond, with its own trigger groups.
type Choose struct {
	Span
	Binders []Binder[Typ]
	Trigs   Trigs
	Cond    Exp
}

func (*Let) bndNode()      {}
func (*QuantBnd) bndNode() {}
func (*Lambda) bndNode()   {}
func (*Choose) bndNode()   {}

func joinExps(es []Exp) string {
	parts := make([]string, len(es))
	for i, e := range es {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func (e *Const) String() string  { return e.Value.String() }
func (e *Var) String() string    { return e.Ident.Name }
func (e *VarLoc) String() string { return "&" + e.Ident.Name }
func (e *VarAt) String() string  { return "old(" + e.Ident.Name + ")" }
func (e *Loc) String() string    { return "&" + e.X.String() }
func (e *Old) String() string    { return "old[" + e.Label + "](" + e.Ident.Name + ")" }

func (e *Call) String() string {
	return e.Fun.Name() + "(" + joinExps(e.Args) + ")"
}

func (e *CallLambda) String() string {
	return e.Fn.String() + "(" + joinExps(e.Args) + ")"
}

func (e *Ctor) String() string {
	args := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		args[i] = f.A.String()
	}
	return e.Variant + "(" + strings.Join(args, ", ") + ")"
}

func (e *Unary) String() string {
	switch e.Op {
	case Not:
		return "!(" + e.X.String() + ")"
	case BitNot:
		return "!" + e.X.String()
	case Clip:
		return "clip(" + e.X.String() + ")"
	default:
		return e.X.String()
	}
}

func (e *UnaryOpr) String() string {
	switch e.Op.Kind {
	case Box:
		return "box(" + e.X.String() + ")"
	case Unbox:
		return "unbox(" + e.X.String() + ")"
	case HasType:
		return e.X.String() + ".has_type(" + e.Op.Typ.String() + ")"
	case IsVariant:
		return e.X.String() + ".is_type(" + e.Op.Variant + ")"
	default:
		return e.X.String() + "." + e.Op.Field
	}
}

func (e *Binary) String() string {
	return e.X.String() + " " + e.Op.String() + " " + e.Y.String()
}

func (e *If) String() string {
	return "(if " + e.Cond.String() + " then " + e.Then.String() + " else " + e.Else.String() + ")"
}

func (e *WithTriggers) String() string {
	return "#![trigger " + e.Trigs.String() + "] " + e.Body.String()
}

func (e *Bind) String() string {
	switch b := e.Bnd.(type) {
	case *Let:
		assigns := make([]string, len(b.Binders))
		for i, bd := range b.Binders {
			assigns[i] = bd.Name + " = " + bd.A.String()
		}
		return "let " + strings.Join(assigns, ", ") + " in " + e.Body.String()
	case *Lambda:
		return "(|" + binderNames(b.Binders) + "| " + e.Body.String() + ")"
	case *QuantBnd:
		return b.Quant.String() + " " + binderNames(b.Binders) + ", " + e.Body.String()
	case *Choose:
		return "choose|" + binderNames(b.Binders) + "| " + b.Cond.String()
	}
	return e.Body.String()
}

func binderNames[A any](bs []Binder[A]) string {
	names := make([]string, len(bs))
	for i, b := range bs {
		names[i] = b.Name
	}
	return strings.Join(names, ", ")
}
