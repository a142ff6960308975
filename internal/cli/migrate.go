package cli

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/spf13/cobra"

	"github.com/uimorph/uimorph/internal/config"
	"github.com/uimorph/uimorph/internal/rules"
	"github.com/uimorph/uimorph/internal/transform"
)

type migrateOptions struct {
	write          bool
	dryRun         bool
	summary        bool
	configPath     string
	rulesetPath    string
	workers        int
	failOnUnmapped bool
}

func newMigrateCmd() *cobra.Command {
	opts := &migrateOptions{}

	cmd := &cobra.Command{
		Use:   "migrate [flags] <file|dir> [file|dir...]",
		Short: "Rewrite source files to the target component library",
		Long: `Migrate rewrites every matching file under the given paths. Without
flags the migrated source is printed to stdout; -w writes changes back in
place and --dry-run previews them as a diff.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd, opts, args)
		},
	}

	cmd.Flags().BoolVarP(&opts.write, "write", "w", false, "write changes back to source files")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "show changes as a diff without modifying files")
	cmd.Flags().BoolVar(&opts.summary, "summary", false, "print a per-file summary table")
	cmd.Flags().StringVar(&opts.configPath, "config", "", "config file path (default: .uimorph.yaml in CWD or $HOME)")
	cmd.Flags().StringVar(&opts.rulesetPath, "ruleset", "", "ruleset YAML path (default: built-in react-bootstrap to antd)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "number of concurrent file workers (default: from config)")
	cmd.Flags().BoolVar(&opts.failOnUnmapped, "fail-on-unmapped", false, "exit non-zero when any component could not be mapped")

	return cmd
}

// fileReport is the outcome of migrating one file.
type fileReport struct {
	path        string
	changed     bool
	rewrites    int
	diagnostics []transform.Diagnostic
	output      []byte
	source      []byte
	err         error
}

func runMigrate(cmd *cobra.Command, opts *migrateOptions, args []string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("ruleset") {
		opts.rulesetPath = cfg.Ruleset
	}
	if !cmd.Flags().Changed("workers") {
		opts.workers = cfg.Workers
	}
	if !cmd.Flags().Changed("fail-on-unmapped") {
		opts.failOnUnmapped = cfg.FailOnUnmapped
	}

	rs, err := loadRuleset(opts.rulesetPath)
	if err != nil {
		return err
	}
	logger.Debug("ruleset loaded",
		"source", rs.Source.Module,
		"components", len(rs.Components),
		"styleRules", len(rs.StyleRules))

	files, err := collectTargets(args, cfg)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("no matching files found")
		return nil
	}
	logger.Debug("collected files", "count", len(files))

	prog := newProgress(logger)
	reports := migrateFiles(files, rs, opts.workers)

	changedFiles, totalRewrites := 0, 0
	unmapped := 0
	for i := range reports {
		report := &reports[i]
		if report.err != nil {
			logger.Warn("skipping file", "path", report.path, "err", report.err)
			continue
		}
		for _, d := range report.diagnostics {
			logger.Debug(d.String(), "path", report.path)
			if d.Code == transform.CodeUnmappedComponent || d.Code == transform.CodeUnmappedSubComponent {
				unmapped++
			}
		}
		if !report.changed {
			continue
		}
		changedFiles++
		totalRewrites += report.rewrites

		switch {
		case opts.dryRun:
			printDiff(cmd, report)
		case opts.write:
			if err := writeBack(report); err != nil {
				logger.Error("writing file", "path", report.path, "err", err)
				continue
			}
			logger.Info("migrated", "path", report.path, "rewrites", report.rewrites)
		default:
			cmd.OutOrStdout().Write(report.output)
		}
	}

	if opts.summary {
		printSummary(cmd, reports)
	}
	if opts.write || opts.dryRun {
		prog.done(fmt.Sprintf("Migrated %d element(s) across %d file(s)", totalRewrites, changedFiles))
	}
	if opts.failOnUnmapped && unmapped > 0 {
		return fmt.Errorf("%d component(s) could not be mapped", unmapped)
	}
	return nil
}

// migrateFiles runs the engine over all files with a fixed-size worker
// pool. The ruleset is immutable and shared; each worker owns its parser.
func migrateFiles(files []string, rs *rules.Ruleset, workers int) []fileReport {
	if workers < 1 {
		workers = 1
	}
	if workers > len(files) {
		workers = len(files)
	}

	jobs := make(chan int)
	reports := make([]fileReport, len(files))

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				reports[i] = migrateOne(files[i], rs)
			}
		}()
	}
	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return reports
}

func migrateOne(path string, rs *rules.Ruleset) fileReport {
	report := fileReport{path: path}

	source, err := os.ReadFile(path)
	if err != nil {
		report.err = err
		return report
	}
	report.source = source

	result, err := transform.Migrate(source, transform.LanguageForFile(path), rs)
	if err != nil {
		report.err = err
		return report
	}

	report.changed = result.Changed
	report.rewrites = result.Rewrites
	report.diagnostics = result.Diagnostics
	report.output = result.Output
	return report
}

// writeBack replaces the file contents, preserving its permissions.
func writeBack(report *fileReport) error {
	info, err := os.Stat(report.path)
	if err != nil {
		return err
	}
	return os.WriteFile(report.path, report.output, info.Mode())
}

func printDiff(cmd *cobra.Command, report *fileReport) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(string(report.source), string(report.output), false)
	diffs = dmp.DiffCleanupSemantic(diffs)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "--- %s\n", report.path)
	fmt.Fprint(out, dmp.DiffPrettyText(diffs))
	fmt.Fprintln(out)
}

func printSummary(cmd *cobra.Command, reports []fileReport) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.AppendHeader(table.Row{"File", "Rewrites", "Diagnostics", "Status"})

	totalRewrites, totalDiags := 0, 0
	for i := range reports {
		report := &reports[i]
		status := "unchanged"
		switch {
		case report.err != nil:
			status = "error"
		case report.changed:
			status = "migrated"
		}
		t.AppendRow(table.Row{report.path, report.rewrites, len(report.diagnostics), status})
		totalRewrites += report.rewrites
		totalDiags += len(report.diagnostics)
	}
	t.AppendFooter(table.Row{"Total", totalRewrites, totalDiags, ""})
	t.Render()
}

// collectTargets expands the argument list into the files to process.
// Directories are walked recursively, skipping hidden and excluded
// directories; explicit file arguments are taken as-is.
func collectTargets(args []string, cfg *config.Config) ([]string, error) {
	extSet := make(map[string]bool, len(cfg.Extensions))
	for _, ext := range cfg.Extensions {
		extSet[ext] = true
	}
	excluded := make(map[string]bool, len(cfg.ExcludeDirs))
	for _, dir := range cfg.ExcludeDirs {
		excluded[dir] = true
	}

	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}

		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				name := d.Name()
				if path != arg && (excluded[name] || strings.HasPrefix(name, ".")) {
					return fs.SkipDir
				}
				return nil
			}
			if extSet[filepath.Ext(path)] {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(files)
	return files, nil
}
