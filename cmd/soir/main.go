package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var red = color.New(color.FgRed).SprintFunc()

func newRootCommand(v *viper.Viper) *cobra.Command {
	root := &cobra.Command{
		Use:           "soir",
		Short:         "Classify verifier annotations and check intermediate trees",
		Version:       fmt.Sprintf("%s (commit %s, built %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(v, cmd)
		},
	}

	// Global flags
	flags := root.PersistentFlags()
	flags.String("config", "", "Config file (default $HOME/.soir.yaml)")
	flags.Bool("no-color", false, "Disable colored output")
	flags.BoolP("verbose", "v", false, "Log each declaration to stderr")
	flags.StringP("output", "o", "", "Output format (json or text)")
	_ = root.RegisterFlagCompletionFunc("output", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return outputFormats, cobra.ShellCompDirectiveNoFileComp
	})

	root.AddCommand(
		newTreeCommand(v),
		newClassifyCommand(v),
		newCodesCommand(v),
	)
	return root
}

func main() {
	if err := newRootCommand(viper.New()).Execute(); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, red(err.Error()))
	os.Exit(1)
}
