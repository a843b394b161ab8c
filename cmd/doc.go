// Copyright © 2021 The ELPS authors

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/docs"
	"github.com/luthersystems/drl/lint"
)

const docWidth = 72

// DocCommand creates the "doc" cobra command.
func DocCommand() *cobra.Command {
	var (
		listAttributes bool
		listChecks     bool
		guide          bool
	)
	cmd := &cobra.Command{
		Use:   "doc [flags] [ATTRIBUTE|CHECK]",
		Short: "Show documentation for rule attributes and checks",
		Long: `Show documentation for DRL rule attributes and for the checks run by
"drl check".

Examples:
  drl doc no-loop              Show docs for the no-loop attribute
  drl doc undefined-variable   Show docs for a check
  drl doc -a                   List all rule attributes
  drl doc -c                   List all checks
  drl doc --guide              Print the DRL language guide`,
		Args: cobra.MaximumNArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			switch {
			case guide:
				fmt.Fprint(out, docs.LangGuide) //nolint:errcheck // best-effort output
			case listAttributes:
				writeAttributeList(out)
			case listChecks:
				writeCheckList(out)
			case len(args) == 1:
				if err := writeDoc(out, args[0]); err != nil {
					fmt.Fprintln(cmd.ErrOrStderr(), err)
					os.Exit(1)
				}
			default:
				_ = cmd.Help()
				os.Exit(2)
			}
		},
	}
	cmd.Flags().BoolVarP(&listAttributes, "attributes", "a", false,
		"List all rule attributes.")
	cmd.Flags().BoolVarP(&listChecks, "checks", "c", false,
		"List all checks.")
	cmd.Flags().BoolVar(&guide, "guide", false,
		"Print the DRL language guide.")
	return cmd
}

func init() {
	rootCmd.AddCommand(DocCommand())
}

// writeDoc writes the documentation of the attribute or check named
// query.  Attributes take precedence; no check shares a name with one.
func writeDoc(w io.Writer, query string) error {
	if spec, ok := ast.LookupAttribute(query); ok {
		_, err := fmt.Fprintf(w, "attribute %s (%s)\n\n%s\n", spec.Name, spec.Kind, formatDoc(spec.Doc))
		return err
	}
	if a := lint.LookupAnalyzer(query); a != nil {
		_, err := fmt.Fprintf(w, "check %s (%s, %s)\n\n%s\n", a.Name, a.Phase, a.Severity, formatDoc(a.Doc))
		return err
	}
	return fmt.Errorf("no attribute or check named %q", query)
}

func writeAttributeList(w io.Writer) {
	for _, name := range ast.AttributeNames() {
		spec, _ := ast.LookupAttribute(name)
		fmt.Fprintf(w, "%s (%s)\n%s\n\n", spec.Name, spec.Kind, formatDoc(summary(spec.Doc))) //nolint:errcheck // best-effort output
	}
}

func writeCheckList(w io.Writer) {
	for _, name := range lint.AnalyzerNames() {
		a := lint.LookupAnalyzer(name)
		fmt.Fprintf(w, "%s (%s)\n%s\n\n", a.Name, a.Phase, formatDoc(summary(a.Doc))) //nolint:errcheck // best-effort output
	}
}

// summary returns the first paragraph of doc.
func summary(doc string) string {
	first, _, _ := strings.Cut(doc, "\n")
	return first
}

// formatDoc wraps doc and indents it by two spaces.
func formatDoc(doc string) string {
	var paras []string
	for _, p := range strings.Split(doc, "\n\n") {
		paras = append(paras, wordwrap.String(strings.TrimSpace(p), docWidth))
	}
	out := indent.String(strings.Join(paras, "\n\n"), 2)
	return strings.TrimRight(out, " \n")
}
