package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/hokaccha/go-prettyjson"
	"github.com/spf13/viper"
)

var outputFormats = []string{"json", "text"}

// outputFormat returns the requested format, or def when none was given.
func outputFormat(v *viper.Viper, def string) (string, error) {
	format := strings.ToLower(v.GetString("output"))
	switch format {
	case "":
		return def, nil
	case "json", "text":
		return format, nil
	default:
		return "", fmt.Errorf("unknown output format: %s", format)
	}
}

func writeJSON(v *viper.Viper, w io.Writer, value any) error {
	var data []byte
	var err error
	if useColor(v, w) {
		data, err = prettyjson.Marshal(value)
	} else {
		data, err = json.MarshalIndent(value, "", "  ")
	}
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// diagnostic is the JSON form of an errors.Diagnostic.
type diagnostic struct {
	Code     errors.ErrorCode `json:"code"`
	Severity string           `json:"severity"`
	Message  string           `json:"message"`
	File     string           `json:"file,omitempty"`
	Line     int              `json:"line,omitempty"`
	Column   int              `json:"column,omitempty"`
	Note     string           `json:"note,omitempty"`
}

func toDiagnostics(diags []*errors.Diagnostic) []diagnostic {
	out := make([]diagnostic, len(diags))
	for i, d := range diags {
		out[i] = diagnostic{
			Code:     d.Code,
			Severity: d.Severity.String(),
			Message:  d.Message,
			File:     d.Pos.File,
			Note:     d.Note,
		}
		if d.Pos.IsValid() {
			out[i].Line = d.Pos.LineNumber()
			out[i].Column = d.Pos.ColumnNumber()
		}
	}
	return out
}

// writeDiagnostics renders diags in the compiler-style layout.
func writeDiagnostics(v *viper.Viper, w io.Writer, diags []*errors.Diagnostic) {
	if len(diags) == 0 {
		return
	}
	formatted := make([]*errors.FormattedError, len(diags))
	for i, d := range diags {
		formatted[i] = d.ToFormatted()
	}
	fmt.Fprint(w, errors.NewFormatter(useColor(v, w)).FormatMultiple(formatted))
}
