package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/soir/errors"
	"github.com/deepnoodle-ai/soir/internal/table"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newCodesCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "codes [code...]",
		Short: "List diagnostic codes",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCodes(v, cmd.OutOrStdout(), args)
		},
	}
}

type codeOutput struct {
	Code        errors.ErrorCode `json:"code"`
	Category    string           `json:"category"`
	Description string           `json:"description"`
}

func runCodes(v *viper.Viper, w io.Writer, args []string) error {
	format, err := outputFormat(v, "text")
	if err != nil {
		return err
	}
	codes := errors.Codes()
	if len(args) > 0 {
		codes = codes[:0:0]
		for _, arg := range args {
			code := errors.ErrorCode(strings.ToUpper(arg))
			if code.Description() == "unknown error" {
				return fmt.Errorf("unknown diagnostic code: %s", arg)
			}
			codes = append(codes, code)
		}
	}

	out := make([]codeOutput, len(codes))
	for i, c := range codes {
		out[i] = codeOutput{Code: c, Category: c.Category(), Description: c.Description()}
	}
	if format == "json" {
		return writeJSON(v, w, out)
	}

	paint := fmt.Sprint
	if useColor(v, w) {
		paint = color.New(color.FgHiBlack).Sprint
	}
	t := table.NewTable(w).WithHeader([]string{"CODE", "CATEGORY", "DESCRIPTION"})
	for _, c := range out {
		t.Append([]string{string(c.Code), paint(c.Category), c.Description})
	}
	t.Render()
	return nil
}
