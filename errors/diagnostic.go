package errors

import (
	stderrors "errors"
	"fmt"

	"github.com/deepnoodle-ai/soir/internal/token"
	"github.com/hashicorp/go-multierror"
)

// Severity classifies a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "error"
	}
}

// Diagnostic is a located message drawn from a fixed vocabulary. Error
// diagnostics are returned as errors; warnings and notes travel through a
// Sink and never change whether a declaration is accepted.
type Diagnostic struct {
	Severity    Severity
	Code        ErrorCode
	Message     string
	Pos         token.Position
	SourceLine  string
	Note        string
	Suggestions []Suggestion
}

// Error implements the error interface. The message is returned verbatim so
// callers can match on the fixed vocabulary.
func (d *Diagnostic) Error() string {
	return d.Message
}

// IsFatal reports whether the diagnostic is an error.
func (d *Diagnostic) IsFatal() bool {
	return d.Severity == SeverityError
}

// String renders the diagnostic on one line with its location.
func (d *Diagnostic) String() string {
	if !d.Pos.IsValid() {
		return fmt.Sprintf("%s[%s]: %s", d.Severity, d.Code, d.Message)
	}
	loc := fmt.Sprintf("%d:%d", d.Pos.LineNumber(), d.Pos.ColumnNumber())
	if d.Pos.File != "" {
		loc = d.Pos.File + ":" + loc
	}
	return fmt.Sprintf("%s: %s[%s]: %s", loc, d.Severity, d.Code, d.Message)
}

// WithNote attaches a note and returns the diagnostic.
func (d *Diagnostic) WithNote(note string) *Diagnostic {
	d.Note = note
	return d
}

// WithSuggestions attaches suggestions and returns the diagnostic.
func (d *Diagnostic) WithSuggestions(s []Suggestion) *Diagnostic {
	d.Suggestions = s
	return d
}

// ToFormatted converts the diagnostic to the FormattedError type for display.
func (d *Diagnostic) ToFormatted() *FormattedError {
	fe := &FormattedError{
		Code:     d.Code,
		Kind:     d.Severity.String(),
		Message:  d.Message,
		Filename: d.Pos.File,
		Note:     d.Note,
	}
	if d.Pos.IsValid() {
		fe.Line = d.Pos.LineNumber()
		fe.Column = d.Pos.ColumnNumber()
	}
	if d.SourceLine != "" {
		fe.SourceLines = []SourceLineEntry{
			{Number: fe.Line, Text: d.SourceLine, IsMain: true},
		}
	}
	if len(d.Suggestions) > 0 {
		fe.Hint = FormatSuggestions(d.Suggestions)
	}
	return fe
}

// Errorf returns an error diagnostic with a formatted message.
func Errorf(pos token.Position, code ErrorCode, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// Warningf returns a warning diagnostic with a formatted message.
func Warningf(pos token.Position, code ErrorCode, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityWarning,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// Notef returns a note diagnostic with a formatted message.
func Notef(pos token.Position, code ErrorCode, format string, args ...any) *Diagnostic {
	return &Diagnostic{
		Severity: SeverityNote,
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Pos:      pos,
	}
}

// AsDiagnostic finds the first Diagnostic in err's chain.
func AsDiagnostic(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if stderrors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// Append aggregates errors in encounter order. A nil result means no
// errors were supplied.
func Append(err error, errs ...error) error {
	return multierror.Append(err, errs...).ErrorOrNil()
}

// Flatten returns every Diagnostic carried by err, in order. Errors that are
// not diagnostics are skipped.
func Flatten(err error) []*Diagnostic {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if stderrors.As(err, &merr) {
		var out []*Diagnostic
		for _, e := range merr.Errors {
			out = append(out, Flatten(e)...)
		}
		return out
	}
	if d, ok := AsDiagnostic(err); ok {
		return []*Diagnostic{d}
	}
	return nil
}
