package sst

import (
	"math/big"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
)

// TriggerSelector validates the manual trigger marks of a quantifier body,
// or chooses triggers automatically when there are none.
type TriggerSelector interface {
	SelectTriggers(pos token.Position, binders []Binder[Typ], body Exp) (Trigs, error)
}

// TriggerSelectorFunc adapts a function to TriggerSelector.
type TriggerSelectorFunc func(pos token.Position, binders []Binder[Typ], body Exp) (Trigs, error)

func (f TriggerSelectorFunc) SelectTriggers(pos token.Position, binders []Binder[Typ], body Exp) (Trigs, error) {
	return f(pos, binders, body)
}

// Builder constructs the SOIR of one function body. It tracks the body's
// locals and rejects nodes that break the well-formedness rules:
//
//   - assignments target a declared mutable local or a field or index path
//     rooted at one;
//   - a loop's modified variables include every variable assigned in it;
//   - DeadEnd appears only as the last statement of a block;
//   - OpenInvariant carries an explicit atomicity;
//   - every quantifier has triggers chosen by the TriggerSelector.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	locals   *Locals
	triggers TriggerSelector
}

// NewBuilder returns a Builder for a new function body.
func NewBuilder(triggers TriggerSelector) *Builder {
	return &Builder{locals: NewLocals(), triggers: triggers}
}

// UsingTriggers returns a Builder that shares the locals of b but selects
// quantifier triggers with sel.
func (b *Builder) UsingTriggers(sel TriggerSelector) *Builder {
	return &Builder{locals: b.locals, triggers: sel}
}

// Locals returns the table of the current block.
func (b *Builder) Locals() *Locals {
	return b.locals
}

// PushBlock enters a nested block.
func (b *Builder) PushBlock() {
	b.locals = b.locals.NewBlock()
}

// PopBlock leaves the current block.
func (b *Builder) PopBlock() {
	if b.locals.parent != nil {
		b.locals = b.locals.parent
	}
}

// Declare declares a local in the current block.
func (b *Builder) Declare(name string, typ Typ, mutable bool) *LocalDecl {
	return b.locals.Declare(name, typ, mutable)
}

// Param declares a function parameter as a local. Mutable reference
// parameters may be assigned.
func (b *Builder) Param(p *Par) *LocalDecl {
	return b.locals.Declare(p.Name, p.Typ, p.Purpose != Regular)
}

// Expressions

func (b *Builder) Const(pos token.Position, typ Typ, c Constant) *Const {
	return &Const{Meta: meta(pos, typ), Value: c}
}

func (b *Builder) Bool(pos token.Position, v bool) *Const {
	return b.Const(pos, TypBool, BoolConst(v))
}

func (b *Builder) Int(pos token.Position, typ Typ, v int64) *Const {
	return b.Const(pos, typ, Constant{Int: big.NewInt(v)})
}

// Local reads the innermost visible local called name.
func (b *Builder) Local(pos token.Position, name string) (*Var, error) {
	d, ok := b.locals.Resolve(name)
	if !ok {
		return nil, errors.Errorf(pos, errors.E5006, "undeclared local '%s'", name).
			WithSuggestions(errors.SuggestSimilar(name, b.locals.AllNames()))
	}
	return &Var{Meta: meta(pos, d.Typ), Ident: d.Ident}, nil
}

// Bound reads a bound variable.
func (b *Builder) Bound(pos token.Position, name string, typ Typ) *Var {
	return &Var{Meta: meta(pos, typ), Ident: BoundIdent(name)}
}

// VarLoc returns the location of a local, for use as a mutation target.
func (b *Builder) VarLoc(pos token.Position, d *LocalDecl) *VarLoc {
	return &VarLoc{Meta: meta(pos, d.Typ), Ident: d.Ident}
}

func (b *Builder) VarAt(pos token.Position, d *LocalDecl) *VarAt {
	return &VarAt{Meta: meta(pos, d.Typ), Ident: d.Ident, Kind: Pre}
}

func (b *Builder) Loc(pos token.Position, x Exp) *Loc {
	return &Loc{Meta: meta(pos, x.Typ()), X: x}
}

func (b *Builder) Old(pos token.Position, label string, d *LocalDecl) *Old {
	return &Old{Meta: meta(pos, d.Typ), Label: label, Ident: d.Ident}
}

func (b *Builder) Call(pos token.Position, typ Typ, fun Fun, typArgs []Typ, args ...Exp) *Call {
	return &Call{Meta: meta(pos, typ), Fun: fun, TypArgs: typArgs, Args: args}
}

func (b *Builder) CallLambda(pos token.Position, typ Typ, fn Exp, args ...Exp) *CallLambda {
	return &CallLambda{Meta: meta(pos, typ), Fn: fn, Args: args}
}

func (b *Builder) Ctor(pos token.Position, typ Typ, path, variant string, fields ...Binder[Exp]) *Ctor {
	return &Ctor{Meta: meta(pos, typ), Path: path, Variant: variant, Fields: fields}
}

func (b *Builder) Unary(pos token.Position, typ Typ, op UnaryOp, x Exp) *Unary {
	return &Unary{Meta: meta(pos, typ), Op: op, X: x}
}

// Trigger marks x as a manual trigger term of the given group. A nil group
// is the default group.
func (b *Builder) Trigger(x Exp, group *uint64) *Unary {
	return &Unary{Meta: meta(x.Pos(), x.Typ()), Op: Trigger, Group: group, X: x}
}

// Field projects a named field of a datatype variant.
func (b *Builder) Field(pos token.Position, typ Typ, x Exp, datatype, variant, field string) *UnaryOpr {
	op := Opr{Kind: Field, Datatype: datatype, Variant: variant, Field: field}
	return &UnaryOpr{Meta: meta(pos, typ), Op: op, X: x}
}

func (b *Builder) UnaryOpr(pos token.Position, typ Typ, op Opr, x Exp) *UnaryOpr {
	return &UnaryOpr{Meta: meta(pos, typ), Op: op, X: x}
}

// Binary applies op. Boolean connectives and comparisons have type bool;
// other operators take the type of their left operand.
func (b *Builder) Binary(pos token.Position, op BinaryOp, x, y Exp) *Binary {
	typ := x.Typ()
	if op.IsBoolean() || op.IsComparison() {
		typ = TypBool
	}
	return &Binary{Meta: meta(pos, typ), Op: op, X: x, Y: y}
}

// Cond is the conditional expression.
func (b *Builder) Cond(pos token.Position, cond, then, els Exp) *If {
	return &If{Meta: meta(pos, then.Typ()), Cond: cond, Then: then, Else: els}
}

// WithTriggers attaches explicit trigger groups to a quantifier body.
func (b *Builder) WithTriggers(pos token.Position, trigs Trigs, body Exp) *WithTriggers {
	return &WithTriggers{Meta: meta(pos, body.Typ()), Trigs: trigs, Body: body}
}

func (b *Builder) Let(pos token.Position, binders []Binder[Exp], body Exp) *Bind {
	return &Bind{Meta: meta(pos, body.Typ()), Bnd: &Let{Span: Span{pos}, Binders: binders}, Body: body}
}

func (b *Builder) Lambda(pos token.Position, typ Typ, binders []Binder[Typ], body Exp) *Bind {
	return &Bind{Meta: meta(pos, typ), Bnd: &Lambda{Span: Span{pos}, Binders: binders}, Body: body}
}

// Quant builds a quantifier whose trigger groups are selected and checked
// by the TriggerSelector.
func (b *Builder) Quant(pos token.Position, q Quant, binders []Binder[Typ], body Exp) (*Bind, error) {
	trigs, err := b.selectTriggers(pos, binders, body)
	if err != nil {
		return nil, err
	}
	bnd := &QuantBnd{Span: Span{pos}, Quant: q, Binders: binders, Trigs: trigs}
	return &Bind{Meta: meta(pos, TypBool), Bnd: bnd, Body: body}, nil
}

// QuantNoTriggers builds a quantifier that is never instantiated by
// matching, so it needs no triggers.
func (b *Builder) QuantNoTriggers(pos token.Position, q Quant, binders []Binder[Typ], body Exp) *Bind {
	bnd := &QuantBnd{Span: Span{pos}, Quant: q, Binders: binders, SkipTriggers: true}
	return &Bind{Meta: meta(pos, TypBool), Bnd: bnd, Body: body}
}

// Choose builds a choice over values satisfying cond. Its triggers are
// selected from cond.
func (b *Builder) Choose(pos token.Position, typ Typ, binders []Binder[Typ], cond, body Exp) (*Bind, error) {
	trigs, err := b.selectTriggers(pos, binders, cond)
	if err != nil {
		return nil, err
	}
	bnd := &Choose{Span: Span{pos}, Binders: binders, Trigs: trigs, Cond: cond}
	return &Bind{Meta: meta(pos, typ), Bnd: bnd, Body: body}, nil
}

func (b *Builder) selectTriggers(pos token.Position, binders []Binder[Typ], body Exp) (Trigs, error) {
	if b.triggers == nil {
		return nil, errors.Errorf(pos, errors.E4004, "no trigger selector configured")
	}
	return b.triggers.SelectTriggers(pos, binders, body)
}

// Statements

// CallStm calls an exec or proof function. dest may be nil.
func (b *Builder) CallStm(pos token.Position, fun Fun, mode Mode, typArgs []Typ, args []Exp, dest *Dest) (*StmCall, error) {
	if dest != nil {
		if err := b.checkDest(pos, *dest); err != nil {
			return nil, err
		}
	}
	return &StmCall{Span: Span{pos}, Fun: fun, Mode: mode, TypArgs: typArgs, Args: args, Dest: dest}, nil
}

// Assert adds a proof obligation. customErr may be nil.
func (b *Builder) Assert(pos token.Position, cond Exp, customErr *errors.Diagnostic) *Assert {
	return &Assert{Span: Span{pos}, Err: customErr, Cond: cond}
}

func (b *Builder) AssertBitVector(pos token.Position, cond Exp) *AssertBitVector {
	return &AssertBitVector{Span: Span{pos}, Cond: cond}
}

func (b *Builder) Assume(pos token.Position, cond Exp) *Assume {
	return &Assume{Span: Span{pos}, Cond: cond}
}

// Assign stores rhs into dest.
func (b *Builder) Assign(pos token.Position, dest Dest, rhs Exp) (*Assign, error) {
	if err := b.checkDest(pos, dest); err != nil {
		return nil, err
	}
	return &Assign{Span: Span{pos}, Lhs: dest, Rhs: rhs}, nil
}

func (b *Builder) Fuel(pos token.Position, fun Fun, fuel uint32) *Fuel {
	return &Fuel{Span: Span{pos}, Fun: fun, Fuel: fuel}
}

// DeadEnd wraps body, whose continuation is unreachable. The result must be
// the last statement of a block.
func (b *Builder) DeadEnd(pos token.Position, body Stm) *DeadEnd {
	return &DeadEnd{Span: Span{pos}, Body: body}
}

// If builds a conditional statement. els may be nil.
func (b *Builder) If(pos token.Position, cond Exp, then, els Stm) (*StmIf, error) {
	if err := notDeadEnd(then, els); err != nil {
		return nil, err
	}
	return &StmIf{Span: Span{pos}, Cond: cond, Then: then, Else: els}, nil
}

// While builds a loop. The variables in scope at the loop are recorded as
// its typed invariant variables.
func (b *Builder) While(pos token.Position, condStms []Stm, condExp Exp, body Stm, invs []Exp, modified []UniqueIdent) (*While, error) {
	if err := notDeadEnd(body); err != nil {
		return nil, err
	}
	frame := map[string]bool{}
	for _, id := range modified {
		frame[id.Key()] = true
	}
	for _, stms := range [][]Stm{condStms, {body}} {
		for _, s := range stms {
			for _, id := range AssignedVars(s) {
				if !frame[id.Key()] {
					return nil, errors.Errorf(s.Pos(), errors.E5003,
						"loop modifies '%s' but it is missing from the modified variables", id.Name)
				}
			}
		}
	}
	var typInv []TypedIdent
	for _, d := range b.locals.Visible() {
		typInv = append(typInv, TypedIdent{Ident: d.Ident, Typ: d.Typ})
	}
	return &While{
		Span:         Span{pos},
		CondStms:     condStms,
		CondExp:      condExp,
		Body:         body,
		Invs:         invs,
		TypInvVars:   typInv,
		ModifiedVars: modified,
	}, nil
}

// OpenInvariant opens inv for the duration of body, binding its contents
// to ident.
func (b *Builder) OpenInvariant(pos token.Position, inv Exp, ident UniqueIdent, typ Typ, body Stm, atomicity InvAtomicity) (*OpenInvariant, error) {
	if atomicity != Atomic && atomicity != NonAtomic {
		return nil, errors.Errorf(pos, errors.E5005, "open invariant requires an explicit atomicity")
	}
	if err := notDeadEnd(body); err != nil {
		return nil, err
	}
	return &OpenInvariant{Span: Span{pos}, Inv: inv, Ident: ident, Typ: typ, Body: body, Atomicity: atomicity}, nil
}

// Block builds a statement sequence.
func (b *Builder) Block(pos token.Position, stms ...Stm) (*Block, error) {
	for i, s := range stms {
		if _, ok := s.(*DeadEnd); ok && i != len(stms)-1 {
			return nil, deadEndError(s)
		}
	}
	return &Block{Span: Span{pos}, Stms: stms}, nil
}

func (b *Builder) AssertQuery(pos token.Position, mode AssertQueryMode, body Stm) (*AssertQuery, error) {
	if err := notDeadEnd(body); err != nil {
		return nil, err
	}
	var typInv []TypedIdent
	for _, d := range b.locals.Visible() {
		typInv = append(typInv, TypedIdent{Ident: d.Ident, Typ: d.Typ})
	}
	return &AssertQuery{Span: Span{pos}, Mode: mode, TypInvVars: typInv, Body: body}, nil
}

// checkDest verifies that dest is rooted at a declared local that may be
// assigned. An initializing assignment may target an immutable local
// directly.
func (b *Builder) checkDest(pos token.Position, dest Dest) error {
	root, direct, ok := PlaceRoot(dest.Dest)
	if !ok {
		return errors.Errorf(pos, errors.E5001, "invalid assignment target '%s'", dest.Dest)
	}
	d, declared := b.locals.Lookup(root)
	if !declared {
		return errors.Errorf(pos, errors.E5006, "undeclared local '%s'", root.Name)
	}
	if d.Mutable || (dest.IsInit && direct) {
		return nil
	}
	return errors.Errorf(pos, errors.E5002, "cannot assign to immutable local '%s'", root.Name)
}

// PlaceRoot returns the variable a mutation target is rooted at. direct is
// true when the target is the variable itself rather than a path through
// it. Fields, tuple fields and calls to a function named index extend a
// path.
func PlaceRoot(e Exp) (root UniqueIdent, direct, ok bool) {
	switch x := e.(type) {
	case *Var:
		return x.Ident, true, true
	case *VarLoc:
		return x.Ident, true, true
	case *Loc:
		root, direct, ok = PlaceRoot(x.X)
		return root, direct, ok
	case *UnaryOpr:
		if x.Op.IsFieldAccess() {
			root, _, ok = PlaceRoot(x.X)
			return root, false, ok
		}
	case *Call:
		if x.Fun.Name() == "index" && len(x.Args) > 0 {
			root, _, ok = PlaceRoot(x.Args[0])
			return root, false, ok
		}
	}
	return UniqueIdent{}, false, false
}

// AssignedVars returns the roots of every assignment and call destination
// in s, in preorder, without duplicates.
func AssignedVars(s Stm) []UniqueIdent {
	seen := map[string]bool{}
	var out []UniqueIdent
	add := func(e Exp) {
		if id, _, ok := PlaceRoot(e); ok && !seen[id.Key()] {
			seen[id.Key()] = true
			out = append(out, id)
		}
	}
	for n := range Preorder(s) {
		switch n := n.(type) {
		case *Assign:
			add(n.Lhs.Dest)
		case *StmCall:
			if n.Dest != nil {
				add(n.Dest.Dest)
			}
		}
	}
	return out
}

func notDeadEnd(stms ...Stm) error {
	for _, s := range stms {
		if _, ok := s.(*DeadEnd); ok {
			return deadEndError(s)
		}
	}
	return nil
}

func deadEndError(s Stm) error {
	return errors.Errorf(s.Pos(), errors.E5004, "dead end must be the last statement of a block")
}

func meta(pos token.Position, typ Typ) Meta {
	return Meta{Span: Span{At: pos}, Type: typ}
}
