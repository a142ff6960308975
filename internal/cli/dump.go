package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/uimorph/uimorph/internal/transform"
)

func newDumpCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print the parsed syntax tree of a file as an S-expression",
		Long: `Dump parses one file and prints its concrete syntax tree. Useful for
checking which node kinds the grammar produces for a given construct when
writing ruleset patterns.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}
			sexp, err := transform.DumpTree(source, transform.LanguageForFile(args[0]))
			if err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), sexp)
			return nil
		},
	}
	return cmd
}
