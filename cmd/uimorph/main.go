// Command uimorph rewrites JavaScript/TypeScript source files from one UI
// component library to another, driven by a declarative ruleset.
package main

import (
	"os"

	"github.com/uimorph/uimorph/internal/cli"
)

// Injected via ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersion(version, commit, date)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
