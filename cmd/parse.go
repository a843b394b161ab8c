// Copyright © 2024 The ELPS authors

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser"
)

// parseOutput is the document written by the parse command.
type parseOutput struct {
	File   string                  `json:"file" yaml:"file"`
	AST    *ast.File               `json:"ast" yaml:"ast"`
	Errors []diagnostic.Diagnostic `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// ParseCommand creates the "parse" cobra command.
func ParseCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse [flags] [FILE]",
		Short: "Print the syntax tree of a DRL file",
		Long: `Parse a DRL file and print its syntax tree together with any parse
errors. No validation checks are run; use "drl check" for that.

With no file, reads from stdin. The exit code is 1 when the file has parse
errors.

Examples:
  drl parse rules.drl                 Print the tree as YAML
  drl parse --format=json rules.drl   Print the tree as JSON`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			name := stdinName
			var (
				src []byte
				err error
			)
			if len(args) == 1 {
				name = args[0]
				src, err = os.ReadFile(name) //nolint:gosec // CLI tool reads user-specified files
			} else {
				src, err = io.ReadAll(cmd.InOrStdin())
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "drl parse: %v\n", err)
				os.Exit(2)
			}
			res := parser.Parse(name, string(src))
			if err := writeParseOutput(cmd.OutOrStdout(), format, res); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "drl parse: %v\n", err)
				os.Exit(2)
			}
			if len(res.Errors) > 0 {
				os.Exit(1)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "yaml", `Output format: "yaml" or "json".`)
	return cmd
}

func init() {
	rootCmd.AddCommand(ParseCommand())
}

func writeParseOutput(w io.Writer, format string, res *parser.Result) error {
	out := parseOutput{File: res.Name, AST: res.File, Errors: res.Errors}
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
