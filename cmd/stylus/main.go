// Command stylus is the CLI described by spec §6: it reads a stylesheet
// from stdin (or a named file) and writes the compiled CSS to stdout,
// exiting non-zero on a compile error.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matthewmueller/stylus/stylus"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		css      bool
		compress bool
		compare  bool
	)

	cmd := &cobra.Command{
		Use:           "stylus [file]",
		Short:         "compile stylesheets to CSS",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if css {
				return fmt.Errorf("stylus: -c/--css (CSS to source conversion) is not implemented by this core")
			}
			if compress {
				return fmt.Errorf("stylus: -C/--compress is not implemented by this core (plain printer only)")
			}

			filename := "<stdin>"
			var src []byte
			var err error
			if len(args) == 1 {
				filename = args[0]
				src, err = os.ReadFile(filename)
			} else {
				src, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				return err
			}

			if compare {
				fmt.Fprintln(cmd.OutOrStdout(), string(src))
			}

			out, err := stylus.Compile(src, stylus.Options{Filename: filename})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), out)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVarP(&css, "css", "c", false, "convert CSS to stylesheet source instead of compiling")
	flags.BoolVarP(&compress, "compress", "C", false, "compress the compiled output")
	flags.BoolVarP(&compare, "compare", "d", false, "echo the input alongside the compiled output")

	return cmd
}
