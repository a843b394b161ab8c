// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"strings"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/token"
)

// The multiline-pattern checks are conservative.  Combinators accept many
// surface forms, so a pattern is only flagged when it is trivially empty or
// obviously cut short, never because it does not match one sub-grammar.

// AnalyzerEmptyPattern flags combinators with an empty body.
var AnalyzerEmptyPattern = &Analyzer{
	Name:     "empty-pattern",
	Doc:      "Flag combinator patterns with nothing between their brackets, such as exists().",
	Phase:    PhaseMultiline,
	Severity: diagnostic.SeverityWarning,
	Run: func(pass *Pass) error {
		for _, pat := range Patterns(pass.File) {
			if pat.HasBody && pat.Complete && strings.TrimSpace(pat.Body) == "" && len(pat.Conditions) == 0 {
				pass.Reportf(pat.Range, "empty %s pattern", pat.Keyword)
			}
		}
		return nil
	},
}

// trailers are the tokens a complete pattern body never ends with.
var trailers = map[string]bool{
	",":    true,
	"&&":   true,
	"||":   true,
	"from": true,
	"and":  true,
	"or":   true,
}

// AnalyzerTruncatedPattern flags combinators that stop at the keyword or
// whose body ends with a dangling connective.
var AnalyzerTruncatedPattern = &Analyzer{
	Name:     "truncated-pattern",
	Doc:      "Flag combinator patterns that are obviously cut short.\n\nA combinator keyword with no body, or a body ending in ',', '&&', '||' or 'from', is reported. Unterminated brackets are reported by the parser instead.",
	Phase:    PhaseMultiline,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		for _, pat := range Patterns(pass.File) {
			if !pat.HasBody {
				pass.Reportf(pat.KeywordRange, "%s has no pattern body", pat.Keyword)
				continue
			}
			if !pat.Complete || pass.ParserReported(pat.Range.Start) {
				continue
			}
			if last := lastToken(pass.Tokens(pat.BodyRange)); last != nil && trailers[last.Text] {
				pass.Reportf(last.Range, "%s pattern body ends with '%s'", pat.Keyword, last.Text)
			}
		}
		return nil
	},
}

func lastToken(toks []*token.Token) *token.Token {
	for i := len(toks) - 1; i >= 0; i-- {
		if toks[i].Type != token.COMMENT {
			return toks[i]
		}
	}
	return nil
}

// AnalyzerPatternBracketMismatch flags brackets inside combinator bodies
// closed by a bracket of another kind.
var AnalyzerPatternBracketMismatch = &Analyzer{
	Name:     "pattern-bracket-mismatch",
	Doc:      "Flag mismatched brackets inside combinator patterns, such as exists(Person(age > 3]).",
	Phase:    PhaseMultiline,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		for _, pat := range Patterns(pass.File) {
			for _, b := range pat.Brackets {
				if !b.Mismatched {
					continue
				}
				reportMismatch(pass, pat, b)
			}
		}
		return nil
	},
}

func reportMismatch(pass *Pass, pat *ast.MultiLinePattern, b ast.BracketPair) {
	closer := pass.Index.Slice(b.Close)
	if b.Open.IsZero() {
		pass.Reportf(b.Close, "unexpected '%s' in %s pattern", closer, pat.Keyword)
		return
	}
	at := b.Close
	if at.IsZero() {
		at = b.Open
	}
	pass.ReportWithNotes(diagnostic.Diagnostic{
		Range:   at,
		Message: fmt.Sprintf("mismatched bracket in %s pattern: '%s' closed by '%s'", pat.Keyword, pass.Index.Slice(b.Open), closer),
	}, "opened at "+b.Open.Start.String())
}
