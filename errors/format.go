package errors

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

// Formatter renders diagnostics in a compiler-style layout, optionally with
// ANSI colors.
type Formatter struct {
	// UseColor enables ANSI color codes in output.
	UseColor bool
}

// NewFormatter creates a new diagnostic formatter.
func NewFormatter(useColor bool) *Formatter {
	return &Formatter{UseColor: useColor}
}

var (
	colorError    = color.New(color.FgHiRed, color.Bold)
	colorWarning  = color.New(color.FgHiYellow, color.Bold)
	colorNoteHead = color.New(color.FgHiBlue, color.Bold)
	colorCode     = color.New(color.FgHiBlack)
	colorLocation = color.New(color.FgCyan)
	colorGutter   = color.New(color.FgHiBlack)
	colorCaret    = color.New(color.FgHiRed)
	colorHint     = color.New(color.FgHiYellow)
	colorNote     = color.New(color.FgHiBlue)
)

// FormattedError is a diagnostic ready for display.
type FormattedError struct {
	Code        ErrorCode
	Kind        string // "error", "warning" or "note"
	Message     string
	Filename    string
	Line        int
	Column      int
	EndColumn   int
	SourceLines []SourceLineEntry
	Hint        string
	Note        string
}

// SourceLineEntry is one line of annotation source shown for context.
type SourceLineEntry struct {
	Number int
	Text   string
	IsMain bool
}

func (f *Formatter) paint(c *color.Color, s string) string {
	if !f.UseColor {
		return s
	}
	return c.Sprint(s)
}

func headerColor(kind string) *color.Color {
	switch kind {
	case "warning":
		return colorWarning
	case "note":
		return colorNoteHead
	default:
		return colorError
	}
}

// Format renders a single diagnostic.
func (f *Formatter) Format(err *FormattedError) string {
	return f.FormatWithPrefix(err, "")
}

// FormatWithPrefix renders a diagnostic, using prefix (such as "1/5") in the
// header when the diagnostic carries no code.
func (f *Formatter) FormatWithPrefix(err *FormattedError, prefix string) string {
	var b strings.Builder
	width := 2
	if err.Line >= 100 {
		width = len(fmt.Sprintf("%d", err.Line))
	}
	f.writeHeader(&b, err, prefix)
	f.writeLocation(&b, err, width)
	f.writeSource(&b, err, width)
	if err.Hint != "" {
		f.writeAnnotation(&b, "hint: ", colorHint, err.Hint, width, true)
	}
	if err.Note != "" {
		f.writeAnnotation(&b, "note: ", colorNote, err.Note, width, false)
	}
	return b.String()
}

func (f *Formatter) writeHeader(b *strings.Builder, err *FormattedError, prefix string) {
	kind := err.Kind
	if kind == "" {
		kind = "error"
	}
	b.WriteString(f.paint(headerColor(kind), kind))
	switch {
	case err.Code != "":
		b.WriteString(f.paint(colorCode, "["+string(err.Code)+"]"))
	case prefix != "":
		b.WriteString(f.paint(colorCode, "["+prefix+"]"))
	}
	b.WriteString(": ")
	b.WriteString(err.Message)
	b.WriteString("\n")
}

func (f *Formatter) writeLocation(b *strings.Builder, err *FormattedError, width int) {
	if err.Line == 0 && err.Filename == "" {
		return
	}
	var loc string
	switch {
	case err.Filename != "" && err.Line > 0:
		loc = fmt.Sprintf("%s:%d:%d", err.Filename, err.Line, err.Column)
	case err.Filename != "":
		loc = err.Filename
	default:
		loc = fmt.Sprintf("%d:%d", err.Line, err.Column)
	}
	b.WriteString(strings.Repeat(" ", width))
	b.WriteString(f.paint(colorLocation, "-->"))
	b.WriteString(" ")
	b.WriteString(f.paint(colorLocation, loc))
	b.WriteString("\n")
}

func (f *Formatter) writeSource(b *strings.Builder, err *FormattedError, width int) {
	if len(err.SourceLines) == 0 {
		return
	}
	padding := strings.Repeat(" ", width)
	b.WriteString(padding)
	b.WriteString(f.paint(colorGutter, " |"))
	b.WriteString("\n")
	for _, line := range err.SourceLines {
		b.WriteString(f.paint(colorGutter, fmt.Sprintf("%*d | ", width, line.Number)))
		b.WriteString(line.Text)
		b.WriteString("\n")
		if !line.IsMain || err.Column <= 0 {
			continue
		}
		n := 1
		if err.EndColumn > err.Column {
			n = err.EndColumn - err.Column + 1
		}
		b.WriteString(padding)
		b.WriteString(f.paint(colorGutter, " | "))
		b.WriteString(strings.Repeat(" ", err.Column-1))
		b.WriteString(f.paint(colorCaret, strings.Repeat("^", n)))
		b.WriteString("\n")
	}
}

func (f *Formatter) writeAnnotation(b *strings.Builder, label string, c *color.Color, text string, width int, gap bool) {
	padding := strings.Repeat(" ", width)
	if gap {
		b.WriteString(padding)
		b.WriteString(f.paint(colorGutter, " |"))
		b.WriteString("\n")
	}
	b.WriteString(padding)
	b.WriteString(f.paint(colorGutter, " = "))
	b.WriteString(f.paint(c, label))
	b.WriteString(text)
	b.WriteString("\n")
}

// FormatMultiple renders several diagnostics followed by a summary line
// counting errors and warnings.
func (f *Formatter) FormatMultiple(errs []*FormattedError) string {
	if len(errs) == 0 {
		return ""
	}
	if len(errs) == 1 {
		return f.Format(errs[0])
	}
	var b strings.Builder
	var nerr, nwarn int
	for i, err := range errs {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(f.FormatWithPrefix(err, fmt.Sprintf("%d/%d", i+1, len(errs))))
		switch err.Kind {
		case "warning":
			nwarn++
		case "note":
		default:
			nerr++
		}
	}
	b.WriteString("\n")
	b.WriteString(f.paint(colorError, summarize(nerr, nwarn)))
	b.WriteString("\n")
	return b.String()
}

func summarize(nerr, nwarn int) string {
	plural := func(n int, word string) string {
		if n == 1 {
			return fmt.Sprintf("%d %s", n, word)
		}
		return fmt.Sprintf("%d %ss", n, word)
	}
	switch {
	case nwarn == 0:
		return "found " + plural(nerr, "error")
	case nerr == 0:
		return "found " + plural(nwarn, "warning")
	default:
		return "found " + plural(nerr, "error") + " and " + plural(nwarn, "warning")
	}
}
