package sst

import (
	"strconv"
	"strings"

	"github.com/deepnoodle-ai/soir/errors"
)

// Stm is a statement.
type Stm interface {
	Node
	stmNode()
}

func (*StmCall) stmNode()         {}
func (*Assert) stmNode()          {}
func (*AssertBitVector) stmNode() {}
func (*Assume) stmNode()          {}
func (*Assign) stmNode()          {}
func (*Fuel) stmNode()            {}
func (*DeadEnd) stmNode()         {}
func (*StmIf) stmNode()           {}
func (*While) stmNode()           {}
func (*OpenInvariant) stmNode()   {}
func (*Block) stmNode()           {}
func (*AssertQuery) stmNode()     {}

// Dest is the target of an assignment or of a call's return value.
type Dest struct {
	Dest   Exp
	IsInit bool
}

// TypedIdent pairs a variable with its type.
type TypedIdent struct {
	Ident UniqueIdent
	Typ   Typ
}

// StmCall calls an exec or proof function, optionally storing the result.
type StmCall struct {
	Span
	Fun     Fun
	Mode    Mode
	TypArgs []Typ
	Args    []Exp
	Dest    *Dest
}

// Assert is a proof obligation. Err optionally replaces the default
// failure report.
type Assert struct {
	Span
	Err  *errors.Diagnostic
	Cond Exp
}

// AssertBitVector is an assertion discharged by the bit-vector prover.
type AssertBitVector struct {
	Span
	Cond Exp
}

// Assume adds a fact without proof.
type Assume struct {
	Span
	Cond Exp
}

// Assign stores Rhs into a mutable local or a path rooted at one.
type Assign struct {
	Span
	Lhs Dest
	Rhs Exp
}

// Fuel sets how many times the body of a hidden spec function may be
// unfolded.
type Fuel struct {
	Span
	Fun  Fun
	Fuel uint32
}

// DeadEnd wraps a statement whose continuation is unreachable.
type DeadEnd struct {
	Span
	Body Stm
}

// StmIf is a conditional statement. Else may be nil.
type StmIf struct {
	Span
	Cond Exp
	Then Stm
	Else Stm
}

// While is a loop with explicit invariants. ModifiedVars is the loop frame:
// every variable not listed is unchanged across iterations.
type While struct {
	Span
	CondStms     []Stm
	CondExp      Exp
	Body         Stm
	Invs         []Exp
	TypInvVars   []TypedIdent
	ModifiedVars []UniqueIdent
}

// OpenInvariant opens the invariant Inv, binding its contents to Ident for
// the duration of Body.
type OpenInvariant struct {
	Span
	Inv       Exp
	Ident     UniqueIdent
	Typ       Typ
	Body      Stm
	Atomicity InvAtomicity
}

// Block is a statement sequence.
type Block struct {
	Span
	Stms []Stm
}

// AssertQuery checks Body in an isolated query.
type AssertQuery struct {
	Span
	Mode       AssertQueryMode
	TypInvVars []TypedIdent
	Body       Stm
}

func (s *StmCall) String() string {
	call := s.Fun.Name() + "(" + joinExps(s.Args) + ")"
	if s.Dest != nil {
		return s.Dest.Dest.String() + " = " + call
	}
	return call
}

func (s *Assert) String() string          { return "assert(" + s.Cond.String() + ")" }
func (s *AssertBitVector) String() string { return "assert_bit_vector(" + s.Cond.String() + ")" }
func (s *Assume) String() string          { return "assume(" + s.Cond.String() + ")" }
func (s *Assign) String() string          { return s.Lhs.Dest.String() + " = " + s.Rhs.String() }
func (s *DeadEnd) String() string         { return "dead_end " + s.Body.String() }

func (s *Fuel) String() string {
	return "fuel(" + s.Fun.Name() + ", " + strconv.FormatUint(uint64(s.Fuel), 10) + ")"
}

func (s *StmIf) String() string {
	out := "if " + s.Cond.String() + " " + s.Then.String()
	if s.Else != nil {
		out += " else " + s.Else.String()
	}
	return out
}

func (s *While) String() string {
	var b strings.Builder
	b.WriteString("while ")
	b.WriteString(s.CondExp.String())
	for _, inv := range s.Invs {
		b.WriteString(" invariant " + inv.String())
	}
	b.WriteString(" ")
	b.WriteString(s.Body.String())
	return b.String()
}

func (s *OpenInvariant) String() string {
	return "open_invariant(" + s.Inv.String() + ", " + s.Ident.Name + ") " + s.Body.String()
}

func (s *Block) String() string {
	if len(s.Stms) == 0 {
		return "{}"
	}
	parts := make([]string, len(s.Stms))
	for i, st := range s.Stms {
		parts[i] = st.String()
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

func (s *AssertQuery) String() string {
	return "assert_query[" + s.Mode.String() + "] " + s.Body.String()
}

// Par is a function parameter.
type Par struct {
	Span
	Name    string
	Typ     Typ
	Mode    Mode
	Purpose ParPurpose
}

// LocalDecl declares a local variable of a function body.
type LocalDecl struct {
	Ident   UniqueIdent
	Typ     Typ
	Mutable bool
}
