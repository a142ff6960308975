package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/uimorph/uimorph/internal/rules"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. Called
// by the main package with values injected via ldflags at build time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the uimorph CLI and returns an error if any command fails.
//
// Logging defaults to info level on stderr; --verbose (-v) raises it to
// debug. The logger is attached to the command context and accessible to
// all commands via loggerFromContext.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "uimorph",
		Short:        "uimorph migrates JSX component trees between UI libraries",
		Long:         `uimorph rewrites JavaScript/TypeScript source files from one UI component library to another, driven by a declarative ruleset: elements are renamed, props translated, utility class tokens folded into inline styles, and imports rewritten to match. Formatting outside the rewritten spans is preserved byte for byte.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("uimorph %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newRulesCmd())
	root.AddCommand(newDumpCmd())

	return root.ExecuteContext(context.Background())
}

// loadRuleset returns the ruleset at path, or the embedded built-in
// ruleset when path is empty.
func loadRuleset(path string) (*rules.Ruleset, error) {
	if path == "" {
		return rules.Builtin()
	}
	return rules.Load(path)
}
