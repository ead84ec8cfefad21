package errors

import "sort"

// ErrorCode represents a unique identifier for diagnostic types.
// Codes are organized by category:
//   - E1xxx: Annotation syntax errors
//   - E2xxx: Classification errors
//   - E3xxx: Configuration conflicts
//   - E4xxx: Trigger errors
//   - E5xxx: Intermediate tree well-formedness errors
//   - W1xxx: Warnings
type ErrorCode string

const (
	// Annotation syntax errors (E1xxx)
	E1001 ErrorCode = "E1001" // Unexpected token in annotation
	E1002 ErrorCode = "E1002" // Unclosed delimiter
	E1003 ErrorCode = "E1003" // Invalid verifier attribute form
	E1004 ErrorCode = "E1004" // Invalid verus attribute form
	E1005 ErrorCode = "E1005" // Value assignment form not supported
	E1006 ErrorCode = "E1006" // Unterminated string literal

	// Classification errors (E2xxx)
	E2001 ErrorCode = "E2001" // Unrecognized verifier attribute
	E2002 ErrorCode = "E2002" // Unrecognized internal attribute
	E2003 ErrorCode = "E2003" // Invalid directive argument
	E2004 ErrorCode = "E2004" // Unsupported host-internal attribute
	E2005 ErrorCode = "E2005" // Retired mode attribute

	// Configuration conflicts (E3xxx)
	E3001 ErrorCode = "E3001" // Duplicate specification
	E3002 ErrorCode = "E3002" // Proxy visibility
	E3003 ErrorCode = "E3003" // Params do not match
	E3004 ErrorCode = "E3004" // Extra trait bound
	E3005 ErrorCode = "E3005" // Direct call to proxy
	E3006 ErrorCode = "E3006" // Proxy mode
	E3007 ErrorCode = "E3007" // Attribute not supported on this item
	E3008 ErrorCode = "E3008" // External item with other verifier attributes

	// Trigger errors (E4xxx)
	E4001 ErrorCode = "E4001" // Invalid trigger shape
	E4002 ErrorCode = "E4002" // Arithmetic position conflict
	E4003 ErrorCode = "E4003" // Let variable in trigger
	E4004 ErrorCode = "E4004" // No trigger found
	E4005 ErrorCode = "E4005" // Trigger does not mention a bound variable

	// Well-formedness errors (E5xxx)
	E5001 ErrorCode = "E5001" // Invalid assignment target
	E5002 ErrorCode = "E5002" // Assignment to immutable local
	E5003 ErrorCode = "E5003" // Loop frame missing modified variable
	E5004 ErrorCode = "E5004" // Misplaced dead end
	E5005 ErrorCode = "E5005" // Missing invariant atomicity
	E5006 ErrorCode = "E5006" // Undeclared local
	E5007 ErrorCode = "E5007" // Statement not allowed in this mode
	E5008 ErrorCode = "E5008" // Quantifier without triggers

	// Warnings (W1xxx)
	W1001 ErrorCode = "W1001" // Deprecated attribute
	W1002 ErrorCode = "W1002" // Automatically chosen trigger
)

// codeDescriptions maps error codes to their short descriptions.
var codeDescriptions = map[ErrorCode]string{
	E1001: "unexpected token in annotation",
	E1002: "unclosed delimiter",
	E1003: "invalid verifier attribute",
	E1004: "invalid verus attribute",
	E1005: "value assignment not supported",
	E1006: "unterminated string literal",

	E2001: "unrecognized verifier attribute",
	E2002: "unrecognized internal attribute",
	E2003: "invalid directive argument",
	E2004: "unsupported host-internal attribute",
	E2005: "retired mode attribute",

	E3001: "duplicate specification",
	E3002: "proxy less visible than target",
	E3003: "params do not match",
	E3004: "extra trait bound",
	E3005: "direct call to proxy",
	E3006: "proxy mode",
	E3007: "attribute not supported here",
	E3008: "external item with verifier attributes",

	E4001: "invalid trigger shape",
	E4002: "arithmetic position conflict",
	E4003: "let variable in trigger",
	E4004: "no trigger found",
	E4005: "trigger misses bound variable",

	E5001: "invalid assignment target",
	E5002: "assignment to immutable local",
	E5003: "loop frame incomplete",
	E5004: "misplaced dead end",
	E5005: "missing invariant atomicity",
	E5006: "undeclared local",
	E5007: "statement not allowed here",
	E5008: "quantifier without triggers",

	W1001: "deprecated attribute",
	W1002: "automatically chosen trigger",
}

// Codes returns every known code in ascending order.
func Codes() []ErrorCode {
	codes := make([]ErrorCode, 0, len(codeDescriptions))
	for c := range codeDescriptions {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Description returns the short description for an error code.
func (c ErrorCode) Description() string {
	if desc, ok := codeDescriptions[c]; ok {
		return desc
	}
	return "unknown error"
}

// String returns the error code as a string.
func (c ErrorCode) String() string {
	return string(c)
}

// Category returns the error category based on the code prefix.
func (c ErrorCode) Category() string {
	if len(c) < 2 {
		return "unknown"
	}
	if c[0] == 'W' {
		return "warning"
	}
	switch c[1] {
	case '1':
		return "syntax"
	case '2':
		return "classification"
	case '3':
		return "configuration"
	case '4':
		return "trigger"
	case '5':
		return "well-formedness"
	default:
		return "unknown"
	}
}
