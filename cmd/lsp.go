// Copyright © 2024 The ELPS authors

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple" // log backend

	"github.com/luthersystems/drl/lsp"
)

// LSPCommand creates the "lsp" cobra command with optional embedder
// configuration. Embedders can pass WithAnalyzers to add their own checks.
func LSPCommand(opts ...Option) *cobra.Command {
	cfg := newCmdConfig(opts)

	var (
		stdio     bool
		port      int
		verbosity int
		logFile   string
	)

	cmd := &cobra.Command{
		Use:   "lsp [flags]",
		Short: "Start the DRL Language Server Protocol server",
		Long: `Start an LSP server for DRL source files.

The language server publishes validation diagnostics as files are edited and
provides document symbols, folding ranges, hover documentation for rule
attributes and variables, go-to-definition and find references.

The validation settings are read from the config file, as for "drl check".

Transport modes:
  --stdio      Use stdin/stdout for LSP communication (default)
  --port N     Listen for an LSP client on TCP port N

Logs are written to stderr, or to the file named by --log-file.

Examples:
  drl lsp                           Start with stdio transport
  drl lsp --stdio                   Same as above (explicit)
  drl lsp --port 7998               Start with TCP on port 7998
  drl lsp -v 2 --log-file=lsp.log   Log debug messages to a file`,
		Args: cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			var path *string
			if logFile != "" {
				path = &logFile
			}
			commonlog.Configure(verbosity, path)

			v := cfg.config()
			srv := lsp.New(
				lsp.WithAnalyzers(cfg.resolveAnalyzers()),
				lsp.WithSettings(loadSettings(v)),
				lsp.WithDebounce(v.GetDuration("lsp.debounce")),
				lsp.WithBuiltins(cfg.analysisConfig().Builtins),
			)

			if !stdio && port > 0 {
				addr := fmt.Sprintf("localhost:%d", port)
				commonlog.GetLogger("drl").Noticef("DRL LSP server listening on %s", addr)
				if err := srv.RunTCP(addr); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			} else {
				if err := srv.RunStdio(); err != nil {
					fmt.Fprintf(os.Stderr, "lsp server error: %v\n", err)
					os.Exit(1)
				}
			}
		},
	}

	cmd.Flags().BoolVar(&stdio, "stdio", false,
		"Use stdin/stdout for LSP communication (default behavior)")
	cmd.Flags().IntVar(&port, "port", 0,
		"TCP port for LSP server (use instead of --stdio)")
	cmd.Flags().IntVarP(&verbosity, "verbosity", "v", 1,
		"Log verbosity: 0 for errors only, 1 for notices, 2 for debug")
	cmd.Flags().StringVar(&logFile, "log-file", "",
		"Write logs to this file instead of stderr")

	return cmd
}

func init() {
	rootCmd.AddCommand(LSPCommand())
}
