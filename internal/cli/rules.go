package cli

import (
	"fmt"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/uimorph/uimorph/internal/rules"
)

func newRulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Validate and inspect migration rulesets",
	}
	cmd.AddCommand(newRulesValidateCmd())
	cmd.AddCommand(newRulesShowCmd())
	return cmd
}

func newRulesValidateCmd() *cobra.Command {
	var colorize, nocolor bool

	cmd := &cobra.Command{
		Use:   "validate <ruleset.yaml>",
		Short: "Validate a ruleset file against the schema and semantic rules",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if nocolor {
				color.NoColor = true
			} else if colorize {
				color.NoColor = false
			}

			rs, err := rules.Load(args[0])
			if err != nil {
				color.New(color.FgRed).Fprintf(cmd.OutOrStdout(), "Ruleset is invalid (%s)\n", args[0])
				fmt.Fprintf(cmd.OutOrStdout(), "  %v\n", err)
				return fmt.Errorf("ruleset validation failed")
			}

			out := cmd.OutOrStdout()
			color.New(color.FgGreen).Fprintf(out, "Ruleset is valid (%s)\n", args[0])
			fmt.Fprintf(out, "  Source:      %s\n", rs.Source.Module)
			fmt.Fprintf(out, "  Components:  %d\n", len(rs.Components))
			fmt.Fprintf(out, "  Style rules: %d\n", len(rs.StyleRules))
			return nil
		},
	}

	cmd.Flags().BoolVar(&colorize, "color", false, "force colored output")
	cmd.Flags().BoolVar(&nocolor, "no-color", false, "disable colored output")
	return cmd
}

func newRulesShowCmd() *cobra.Command {
	var rulesetPath string

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the active ruleset's component mappings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rs, err := loadRuleset(rulesetPath)
			if err != nil {
				return err
			}

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.AppendHeader(table.Row{"Source", "Target", "Module", "Props", "Action"})

			for _, name := range sortedKeys(rs.Components) {
				rule := rs.Components[name]
				t.AppendRow(table.Row{name, rule.Target, rule.Module, len(rule.Props), ""})
			}
			for _, parent := range sortedKeys(rs.SubComponents) {
				members := rs.SubComponents[parent]
				for _, child := range sortedKeys(members) {
					rule := members[child]
					action := ""
					if rule.Structural != nil {
						action = rule.Structural.Action
						if rule.Structural.Attr != "" {
							action += " -> " + rule.Structural.Attr
						}
					}
					t.AppendRow(table.Row{parent + "." + child, rule.Target, rule.Module, len(rule.Props), action})
				}
			}
			t.Render()

			fmt.Fprintf(cmd.OutOrStdout(), "\n%d style rule(s), source module %q\n",
				len(rs.StyleRules), rs.Source.Module)
			return nil
		},
	}

	cmd.Flags().StringVar(&rulesetPath, "ruleset", "", "ruleset YAML path (default: built-in)")
	return cmd
}

func sortedKeys[M map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
