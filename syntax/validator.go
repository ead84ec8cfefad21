package syntax

import (
	"fmt"
	"strings"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/deepnoodle-ai/soir/sst"
)

// ValidationError represents a violation found in a function body.
type ValidationError struct {
	Code     errors.ErrorCode // diagnostic code
	Message  string           // description of the violation
	Node     sst.Node         // the offending node
	Position token.Position   // source location
}

func newError(code errors.ErrorCode, node sst.Node, format string, args ...any) ValidationError {
	return ValidationError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Node:     node,
		Position: node.Pos(),
	}
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	pos := e.Position
	if pos.File != "" {
		return fmt.Sprintf("%s at %s:%d:%d", e.Message, pos.File, pos.LineNumber(), pos.ColumnNumber())
	}
	return fmt.Sprintf("%s at line %d, column %d", e.Message, pos.LineNumber(), pos.ColumnNumber())
}

// Diagnostic converts the error to a diagnostic.
func (e *ValidationError) Diagnostic() *errors.Diagnostic {
	return errors.Errorf(e.Position, e.Code, "%s", e.Message)
}

// ValidationErrors wraps multiple validation errors.
type ValidationErrors struct {
	Errors []ValidationError
}

// NewValidationErrors creates a ValidationErrors from a slice of errors.
func NewValidationErrors(errs []ValidationError) *ValidationErrors {
	return &ValidationErrors{Errors: errs}
}

// Error implements the error interface.
func (e *ValidationErrors) Error() string {
	switch len(e.Errors) {
	case 0:
		return "no validation errors"
	case 1:
		return e.Errors[0].Error()
	default:
		var b strings.Builder
		fmt.Fprintf(&b, "%d validation errors:\n", len(e.Errors))
		for _, err := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", err.Error())
		}
		return b.String()
	}
}

// Unwrap returns the first error for errors.Is/As compatibility.
func (e *ValidationErrors) Unwrap() error {
	if len(e.Errors) > 0 {
		return &e.Errors[0]
	}
	return nil
}

// Diagnostics converts every error to a diagnostic and aggregates them.
func (e *ValidationErrors) Diagnostics() error {
	var result error
	for i := range e.Errors {
		result = errors.Append(result, e.Errors[i].Diagnostic())
	}
	return result
}

// Validator inspects a function body and returns validation errors.
// Validators never modify the tree.
type Validator interface {
	// Validate checks the body and returns every violation found.
	Validate(body sst.Stm) []ValidationError
}

// ValidatorFunc is an adapter to use a function as a Validator.
type ValidatorFunc func(sst.Stm) []ValidationError

// Validate implements the Validator interface.
func (f ValidatorFunc) Validate(body sst.Stm) []ValidationError {
	return f(body)
}

// Run applies validators in order and returns their errors combined, or
// nil when the body passes all of them.
func Run(body sst.Stm, validators ...Validator) *ValidationErrors {
	var errs []ValidationError
	for _, v := range validators {
		errs = append(errs, v.Validate(body)...)
	}
	if len(errs) == 0 {
		return nil
	}
	return NewValidationErrors(errs)
}
