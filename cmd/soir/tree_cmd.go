package main

import (
	"fmt"
	"io"

	"github.com/deepnoodle-ai/soir/attrs"
	"github.com/deepnoodle-ai/soir/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newTreeCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "tree <annotation>",
		Short: "Print the argument tree and directives of one annotation",
		Example: `  soir tree '#[verifier::loop_isolation(false)]'
  soir tree -o json '#[verus::internal(prover(nonlinear))]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTree(v, cmd.OutOrStdout(), cmd.ErrOrStderr(), args[0])
		},
	}
}

// treeOutput describes one annotation. Directives is empty when the
// annotation belongs to another tool.
type treeOutput struct {
	Annotation  string       `json:"annotation"`
	Prefix      string       `json:"prefix"`
	Tree        string       `json:"tree,omitempty"`
	Directives  []string     `json:"directives"`
	Diagnostics []diagnostic `json:"diagnostics,omitempty"`
}

func runTree(v *viper.Viper, stdout, stderr io.Writer, src string) error {
	format, err := outputFormat(v, "text")
	if err != nil {
		return err
	}
	out, diags, err := describeAnnotation(src)
	if err != nil {
		writeDiagnostics(v, stderr, errors.Flatten(err))
		return fmt.Errorf("invalid annotation: %s", src)
	}
	if format == "json" {
		out.Diagnostics = toDiagnostics(diags)
		return writeJSON(v, stdout, out)
	}
	fmt.Fprintf(stdout, "prefix:     %s\n", out.Prefix)
	if out.Tree != "" {
		fmt.Fprintf(stdout, "tree:       %s\n", out.Tree)
	}
	for _, d := range out.Directives {
		fmt.Fprintf(stdout, "directive:  %s\n", d)
	}
	writeDiagnostics(v, stderr, diags)
	return nil
}

// describeAnnotation lexes, parses and classifies src. Warnings raised while
// classifying are returned alongside the description.
func describeAnnotation(src string) (*treeOutput, []*errors.Diagnostic, error) {
	raw, err := attrs.ParseRaw("", src)
	if err != nil {
		return nil, nil, err
	}
	prefix, tree, err := attrs.ToTree(raw)
	if err != nil {
		return nil, nil, err
	}
	out := &treeOutput{Annotation: src, Prefix: prefix.String(), Directives: []string{}}
	if prefix == attrs.PrefixNone {
		return out, nil, nil
	}
	out.Tree = tree.String()

	var buf errors.Buffer
	list, err := attrs.ParseAttrs([]attrs.RawAttr{raw}, &buf)
	if err != nil {
		return nil, nil, err
	}
	for _, a := range list {
		out.Directives = append(out.Directives, a.String())
	}
	return out, buf.Diagnostics(), nil
}
