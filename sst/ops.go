package sst

import (
	"fmt"
	"math/big"
	"strings"
)

// Typ is the type of an expression, binder or local as reported by the host
// type checker. Only the name and type arguments are kept.
type Typ struct {
	Name string
	Args []Typ
}

// Common types.
var (
	TypBool = Typ{Name: "bool"}
	TypInt  = Typ{Name: "int"}
	TypNat  = Typ{Name: "nat"}
)

// NewTyp returns a type with the given name and arguments.
func NewTyp(name string, args ...Typ) Typ {
	return Typ{Name: name, Args: args}
}

func (t Typ) String() string {
	if len(t.Args) == 0 {
		return t.Name
	}
	args := make([]string, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.String()
	}
	return t.Name + "<" + strings.Join(args, ", ") + ">"
}

// IsInteger reports whether t is one of the mathematical or machine integer
// types.
func (t Typ) IsInteger() bool {
	switch t.Name {
	case "int", "nat", "u8", "u16", "u32", "u64", "u128", "usize",
		"i8", "i16", "i32", "i64", "i128", "isize":
		return len(t.Args) == 0
	}
	return false
}

// Fun names a function by its full path, such as "crate::seq::len".
type Fun string

// Name returns the last path segment.
func (f Fun) Name() string {
	s := string(f)
	if i := strings.LastIndex(s, "::"); i >= 0 {
		return s[i+2:]
	}
	return s
}

// Constant is a boolean or integer literal.
type Constant struct {
	Int  *big.Int // nil for a boolean
	Bool bool
}

// BoolConst returns a boolean constant.
func BoolConst(b bool) Constant {
	return Constant{Bool: b}
}

// IntConst returns an integer constant.
func IntConst(i int64) Constant {
	return Constant{Int: big.NewInt(i)}
}

func (c Constant) String() string {
	if c.Int != nil {
		return c.Int.String()
	}
	if c.Bool {
		return "true"
	}
	return "false"
}

// Quant is the kind of a quantifier.
type Quant int

const (
	Forall Quant = iota
	Exists
)

func (q Quant) String() string {
	if q == Exists {
		return "Exists"
	}
	return "Forall"
}

// UnaryOp is a unary operator.
type UnaryOp int

const (
	Not UnaryOp = iota
	BitNot
	// Clip truncates an integer into the range of a machine type.
	Clip
	// Trigger marks its operand as a manual trigger term.
	Trigger
	CoerceMode
	MustBeFinalized
)

// OprKind is the kind of a UnaryOpr operator.
type OprKind int

const (
	Box OprKind = iota
	Unbox
	HasType
	IsVariant
	TupleField
	Field
)

// Opr is a unary operator that carries data: boxing, type tests and field
// projections.
type Opr struct {
	Kind     OprKind
	Typ      Typ    // Box, Unbox, HasType
	Datatype string // IsVariant, Field
	Variant  string // IsVariant, Field
	Field    string // TupleField, Field
}

// IsFieldAccess reports whether the operator projects a field.
func (o Opr) IsFieldAccess() bool {
	return o.Kind == Field || o.Kind == TupleField
}

// BinaryOp is a binary operator.
type BinaryOp int

const (
	And BinaryOp = iota
	Or
	Xor
	Implies
	Eq
	Ne
	Le
	Ge
	Lt
	Gt
	Add
	Sub
	Mul
	EuclideanDiv
	EuclideanMod
	BitXor
	BitAnd
	BitOr
	Shr
	Shl
)

var binaryOpSymbols = [...]string{
	"&&", "||", "^", "==>", "==", "!=", "<=", ">=", "<", ">",
	"+", "-", "*", "/", "%", "^", "&", "|", ">>", "<<",
}

func (op BinaryOp) String() string {
	if op < 0 || int(op) >= len(binaryOpSymbols) {
		return fmt.Sprintf("BinaryOp(%d)", int(op))
	}
	return binaryOpSymbols[op]
}

// IsArith reports whether op is an arithmetic operator.
func (op BinaryOp) IsArith() bool {
	return op >= Add && op <= EuclideanMod
}

// IsBoolean reports whether op is a boolean connective.
func (op BinaryOp) IsBoolean() bool {
	return op <= Implies
}

// IsComparison reports whether op is an equality or ordering comparison.
func (op BinaryOp) IsComparison() bool {
	return op >= Eq && op <= Gt
}

// IsBitwise reports whether op is a bitwise operator.
func (op BinaryOp) IsBitwise() bool {
	return op >= BitXor
}

// VarAtKind says which snapshot of a variable a VarAt reads.
type VarAtKind int

const (
	// Pre is the value on entry to the function.
	Pre VarAtKind = iota
)

// InvAtomicity classifies the body of an OpenInvariant.
type InvAtomicity int

const (
	// AtomicityUnset is not a valid classification; it marks a missing one.
	AtomicityUnset InvAtomicity = iota
	Atomic
	NonAtomic
)

func (a InvAtomicity) String() string {
	switch a {
	case Atomic:
		return "atomic"
	case NonAtomic:
		return "non_atomic"
	default:
		return "unset"
	}
}

// AssertQueryMode selects how an isolated assertion is discharged.
type AssertQueryMode int

const (
	QueryNonLinear AssertQueryMode = iota
	QueryBitVector
)

func (m AssertQueryMode) String() string {
	if m == QueryBitVector {
		return "bit_vector"
	}
	return "nonlinear"
}

// ParPurpose distinguishes the pre-state and post-state views of a mutable
// reference parameter.
type ParPurpose int

const (
	Regular ParPurpose = iota
	MutPre
	MutPost
)

func (p ParPurpose) String() string {
	switch p {
	case MutPre:
		return "mut_pre"
	case MutPost:
		return "mut_post"
	default:
		return "regular"
	}
}
