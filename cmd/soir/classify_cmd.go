package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/deepnoodle-ai/soir"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newClassifyCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Classify the annotations of a batch of declarations",
		Long: `Classify reads declarations from a .json, .hujson or .yaml file, classifies
their annotations, resolves inherited directives along the parent chain and
prints the folded records. Diagnostics are written to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, v, args[0])
		},
	}
	cmd.Flags().IntP("concurrency", "j", 0, "Declarations processed at once (default GOMAXPROCS)")
	cmd.Flags().Bool("default-verify", false, "Verify declarations unless marked external")
	return cmd
}

// resultOutput adds the error message to a result for JSON output.
type resultOutput struct {
	*soir.Result
	Error string `json:"error,omitempty"`
}

type classifyOutput struct {
	RunID       string         `json:"run_id"`
	Results     []resultOutput `json:"results"`
	Diagnostics []diagnostic   `json:"diagnostics"`
}

func runClassify(cmd *cobra.Command, v *viper.Viper, path string) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	format, err := outputFormat(v, "json")
	if err != nil {
		return err
	}
	decls, err := loadDeclarations(path)
	if err != nil {
		return err
	}

	opts := []soir.Option{
		soir.WithLogger(newLogger(v, stderr)),
		soir.WithDefaultVerify(v.GetBool("default-verify")),
	}
	if n := v.GetInt("concurrency"); n > 0 {
		opts = append(opts, soir.WithConcurrency(n))
	}
	report, err := soir.Process(cmd.Context(), decls, opts...)
	if err != nil {
		return err
	}

	if format == "json" {
		out := classifyOutput{
			RunID:       report.RunID.String(),
			Results:     make([]resultOutput, len(report.Results)),
			Diagnostics: toDiagnostics(report.Diagnostics),
		}
		for i, res := range report.Results {
			out.Results[i] = resultOutput{Result: res}
			if res.Err != nil {
				out.Results[i].Error = res.Err.Error()
			}
		}
		if err := writeJSON(v, stdout, out); err != nil {
			return err
		}
	} else {
		writeResults(stdout, report.Results)
	}
	writeDiagnostics(v, stderr, report.Diagnostics)

	if failed := report.Failed(); len(failed) > 0 {
		return fmt.Errorf("%d of %d declarations rejected", len(failed), len(report.Results))
	}
	return nil
}

// writeResults prints one line per declaration.
func writeResults(w io.Writer, results []*soir.Result) {
	width := 0
	for _, res := range results {
		width = max(width, len(res.ID))
	}
	for _, res := range results {
		if !res.OK() {
			fmt.Fprintf(w, "%-*s  rejected: %s\n", width, res.ID, res.Err)
			continue
		}
		status := "unverified"
		if res.Verified {
			status = "verified"
		}
		fmt.Fprintf(w, "%-*s  %-5s %-10s %s\n", width, res.ID, res.Mode, status, strings.Join(res.Directives, " "))
	}
}
