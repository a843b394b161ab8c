// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/lint"
)

const stdinName = "<stdin>"

// checkFlags are the command line flags of the check command.
type checkFlags struct {
	json           bool
	format         string
	checks         string
	list           bool
	excludes       []string
	maxDiagnostics uint
	maxSet         bool
	noSyntax       bool
	noSemantic     bool
	noBestPractice bool
	workspace      string
}

// checkRun is one invocation of the check command.
type checkRun struct {
	cfg    *cmdConfig
	flags  checkFlags
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// CheckCommand creates the "check" cobra command with optional embedder
// configuration.
func CheckCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)
	var flags checkFlags

	cmd := &cobra.Command{
		Use:   "check [flags] [files...]",
		Short: "Validate DRL files",
		Long: `Validate Drools rule language files.

Each file is parsed and run through the syntax, semantic, best-practice and
multiline-pattern checks. Diagnostics are printed with the offending source
line to stderr, or as JSON to stdout with --json.

With no files, reads from stdin. A trailing "/..." expands to every .drl
file below a directory.

Exit codes:
  0  No errors or warnings (informational diagnostics do not fail)
  1  One or more errors or warnings were reported
  2  Bad invocation (invalid flags, unreadable files)

To suppress a specific diagnostic, add a comment on the same line:
  $p : Person()   // nolint:unused-variable

To suppress all checks on a line:
  eval(true)      // nolint

Available checks (use --checks to select specific ones):
` + lint.AnalyzerDoc() + `
Examples:
  drl check rules.drl                                # Check a single file
  drl check rules/...                                # Check a directory tree
  drl check --json rules.drl                         # Output diagnostics as JSON
  drl check --format=text rules/...                  # One line per diagnostic
  drl check --checks=undefined-variable rules.drl    # Run only specific checks
  drl check --no-best-practice rules.drl             # Skip a phase
  drl check --workspace=rules rules/pricing.drl      # Duplicate names across files
  drl check --list                                   # List available checks
  cat rules.drl | drl check                          # Check stdin`,
		Run: func(cmd *cobra.Command, args []string) {
			flags.maxSet = cmd.Flags().Changed("max-diagnostics")
			r := &checkRun{
				cfg:    cfg,
				flags:  flags,
				stdin:  cmd.InOrStdin(),
				stdout: cmd.OutOrStdout(),
				stderr: cmd.ErrOrStderr(),
			}
			if code := r.run(cmd.Context(), args); code != 0 {
				os.Exit(code)
			}
		},
	}

	f := cmd.Flags()
	f.BoolVar(&flags.json, "json", false,
		"Output diagnostics as JSON (same as --format=json).")
	f.StringVar(&flags.format, "format", "pretty",
		`Output format: "pretty", "text" or "json".`)
	f.StringVar(&flags.checks, "checks", "",
		"Comma-separated list of checks to run (default: all).")
	f.BoolVar(&flags.list, "list", false,
		"List available checks and exit.")
	f.StringArrayVar(&flags.excludes, "exclude", nil,
		"Glob pattern for files to exclude (may be repeated).")
	f.UintVar(&flags.maxDiagnostics, "max-diagnostics", 0,
		"Maximum number of diagnostics per file, 0 for no limit (default from config).")
	f.BoolVar(&flags.noSyntax, "no-syntax", false,
		"Disable the syntax and multiline-pattern checks.")
	f.BoolVar(&flags.noSemantic, "no-semantic", false,
		"Disable the semantic checks.")
	f.BoolVar(&flags.noBestPractice, "no-best-practice", false,
		"Disable the best-practice checks.")
	f.StringVar(&flags.workspace, "workspace", "",
		"Directory scanned for declarations in other files of the same package.")
	return cmd
}

func init() {
	rootCmd.AddCommand(CheckCommand())
}

// run executes the command and returns the process exit code.
func (r *checkRun) run(ctx context.Context, args []string) int {
	if ctx == nil {
		ctx = context.Background()
	}
	if r.flags.list {
		writeCheckList(r.stdout)
		return 0
	}

	format := r.flags.format
	if r.flags.json {
		format = "json"
	}
	switch format {
	case "pretty", "text", "json":
	default:
		fmt.Fprintf(r.stderr, "drl check: unknown format: %s\n", format)
		return 2
	}

	analyzers, err := selectAnalyzers(r.cfg.resolveAnalyzers(), r.flags.checks)
	if err != nil {
		fmt.Fprintf(r.stderr, "drl check: %v\n", err)
		return 2
	}
	l := &lint.Linter{Analyzers: analyzers, Analysis: r.cfg.analysisConfig()}
	if r.flags.workspace != "" {
		syms, err := analysis.ScanWorkspace(ctx, r.flags.workspace)
		if err != nil {
			fmt.Fprintf(r.stderr, "drl check: scanning workspace: %v\n", err)
			return 2
		}
		l.Analysis.ExtraGlobals = syms
	}

	var sources []source
	if len(args) == 0 {
		src, err := io.ReadAll(r.stdin)
		if err != nil {
			fmt.Fprintf(r.stderr, "drl check: reading stdin: %v\n", err)
			return 2
		}
		sources = []source{{name: stdinName, data: src}}
	} else {
		paths, err := expandArgs(args, r.flags.excludes)
		if err != nil {
			fmt.Fprintln(r.stderr, err)
			return 2
		}
		sources, err = readSources(ctx, paths)
		if err != nil {
			fmt.Fprintln(r.stderr, err)
			return 2
		}
	}

	results := checkSources(ctx, l, r.settings(), sources)
	if err := r.report(format, sources, results); err != nil {
		fmt.Fprintln(r.stderr, err)
		return 2
	}
	for _, res := range results {
		if diagnostic.Count(res.Diagnostics, diagnostic.SeverityError) > 0 ||
			diagnostic.Count(res.Diagnostics, diagnostic.SeverityWarning) > 0 {
			return 1
		}
	}
	return 0
}

// settings combines the configured validation settings with the flags.
func (r *checkRun) settings() lint.Settings {
	s := loadSettings(r.cfg.config())
	if r.flags.maxSet {
		s.MaxDiagnostics = r.flags.maxDiagnostics
	}
	if r.flags.noSyntax {
		s.EnableSyntaxValidation = false
	}
	if r.flags.noSemantic {
		s.EnableSemanticValidation = false
	}
	if r.flags.noBestPractice {
		s.EnableBestPracticeWarnings = false
	}
	return s
}

func (r *checkRun) report(format string, sources []source, results []lint.FileDiagnostics) error {
	switch format {
	case "json":
		var files []lint.FileDiagnostics
		for _, res := range results {
			if len(res.Diagnostics) > 0 {
				files = append(files, res)
			}
		}
		if files == nil {
			files = []lint.FileDiagnostics{}
		}
		return lint.FormatJSON(r.stdout, files)
	case "text":
		for _, res := range results {
			lint.FormatText(r.stdout, res.File, res.Diagnostics)
		}
		return nil
	}

	data := make(map[string][]byte, len(sources))
	for _, s := range sources {
		data[s.name] = s.data
	}
	renderer := newRenderer(func(name string) ([]byte, error) {
		if b, ok := data[name]; ok {
			return b, nil
		}
		return nil, os.ErrNotExist
	})
	first := true
	for _, res := range results {
		if len(res.Diagnostics) == 0 {
			continue
		}
		if !first {
			if _, err := io.WriteString(r.stderr, "\n"); err != nil {
				return err
			}
		}
		first = false
		if err := renderDiagnostics(r.stderr, renderer, res.File, res.Diagnostics); err != nil {
			return err
		}
	}
	return nil
}

// source is the contents of one input file.
type source struct {
	name string
	data []byte
}

// readSources reads paths concurrently.  The first read error aborts.
func readSources(ctx context.Context, paths []string) ([]source, error) {
	sources := make([]source, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(path) //nolint:gosec // CLI tool reads user-specified files
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			sources[i] = source{name: path, data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return sources, nil
}

// checkSources validates every source concurrently and returns the
// results in input order.
func checkSources(ctx context.Context, l *lint.Linter, settings lint.Settings, sources []source) []lint.FileDiagnostics {
	results := make([]lint.FileDiagnostics, len(sources))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, s := range sources {
		g.Go(func() error {
			_, diags := l.ValidateSource(ctx, s.name, s.data, settings)
			results[i] = lint.FileDiagnostics{File: s.name, Diagnostics: diags}
			return nil
		})
	}
	_ = g.Wait() // validation never fails
	return results
}

// selectAnalyzers filters analyzers to the comma-separated names in checks.
// An empty list selects every analyzer.
func selectAnalyzers(analyzers []*lint.Analyzer, checks string) ([]*lint.Analyzer, error) {
	if checks == "" {
		return analyzers, nil
	}
	selected := make(map[string]bool)
	for _, name := range strings.Split(checks, ",") {
		if name = strings.TrimSpace(name); name != "" {
			selected[name] = true
		}
	}
	var filtered []*lint.Analyzer
	for _, a := range analyzers {
		if selected[a.Name] {
			filtered = append(filtered, a)
			delete(selected, a.Name)
		}
	}
	if len(selected) > 0 {
		var unknown []string
		for name := range selected {
			unknown = append(unknown, name)
		}
		sort.Strings(unknown)
		return nil, fmt.Errorf("unknown check: %s", strings.Join(unknown, ", "))
	}
	return filtered, nil
}
