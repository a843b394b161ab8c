// Copyright © 2024 The ELPS authors

package lint

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/position"
	"github.com/luthersystems/drl/parser/token"
)

// AnalyzerBracketBalance checks that brackets outside combinator patterns
// are balanced.
var AnalyzerBracketBalance = &Analyzer{
	Name:     "bracket-balance",
	Doc:      "Check that brackets are balanced across the document.\n\nBrackets inside string literals and comments are ignored. Combinator patterns are left to the multiline-pattern checks, and brackets the parser already reported as unterminated are not reported again.",
	Phase:    PhaseSyntax,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		skip := outermost(Patterns(pass.File))
		inPattern := func(pos position.Position) bool {
			for _, r := range skip {
				if r.Contains(pos) && pos != r.End {
					return true
				}
			}
			return false
		}
		var stack []*token.Token
		for _, tok := range pass.Result.Tokens {
			switch {
			case !tok.Type.IsOpen() && !tok.Type.IsClose():
				continue
			case inPattern(tok.Range.Start):
				continue
			case tok.Type.IsOpen():
				stack = append(stack, tok)
				continue
			}
			if len(stack) == 0 {
				pass.Reportf(tok.Range, "unexpected '%s' with no matching opening bracket", tok.Text)
				continue
			}
			open := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if open.Type.Closer() != tok.Type {
				pass.ReportWithNotes(diagnostic.Diagnostic{
					Range:   tok.Range,
					Message: "'" + tok.Text + "' does not match '" + open.Text + "'",
				}, "opened at "+open.Range.Start.String())
			}
		}
		// Brackets opened after a construct the parser reported as
		// unterminated, up to the next section boundary, were left open by
		// the same missing bracket.
		var until position.Position
		for _, open := range stack {
			if open.Range.Start.Before(until) {
				continue
			}
			if pass.ParserReported(open.Range.Start) {
				until = nextBoundary(pass.Result.Tokens, open)
				continue
			}
			pass.Reportf(open.Range, "unclosed '%s'", open.Text)
		}
		return nil
	},
}

// boundaries are the keywords that end a section when they start a line.
// then ends the conditions wherever it appears.
var boundaries = map[string]bool{
	"package":  true,
	"import":   true,
	"global":   true,
	"function": true,
	"declare":  true,
	"query":    true,
	"rule":     true,
	"then":     true,
	"end":      true,
}

// nextBoundary returns the start of the first section keyword after tok,
// or the end of the document.
func nextBoundary(toks []*token.Token, tok *token.Token) position.Position {
	var last position.Position
	for _, t := range toks {
		if t.Offset <= tok.Offset {
			continue
		}
		if t.Type == token.EOF || t.IsKeyword("then") || (t.Type == token.KEYWORD && boundaries[t.Text] && t.StartsLine()) {
			return t.Range.Start
		}
		last = t.Range.End
	}
	return last
}

// AnalyzerRuleName checks that rule names are usable.
var AnalyzerRuleName = &Analyzer{
	Name:     "rule-name",
	Doc:      "Check that rules are named and that names are not empty and do not start with a digit.\n\nThe check applies to quoted and unquoted names alike.",
	Phase:    PhaseSyntax,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		for _, r := range pass.File.Rules {
			if r.Name == nil {
				pass.Reportf(headerRange(r), "rule has no name")
				continue
			}
			name := r.Name.Name
			switch {
			case strings.TrimSpace(name) == "":
				pass.Reportf(r.Name.Range, "rule name is empty")
			case unicode.IsDigit([]rune(name)[0]):
				pass.Reportf(r.Name.Range, "rule name %q starts with a digit", name)
			}
		}
		return nil
	},
}

// AnalyzerAttributeValue checks the values of known attributes.
var AnalyzerAttributeValue = &Analyzer{
	Name:     "attribute-value",
	Doc:      "Check that known attributes have values of the right kind.\n\nBoolean attributes take true or false and may omit the value. salience takes an integer or a parenthesised expression. Group, dialect and date attributes take a quoted string.",
	Phase:    PhaseSyntax,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		Attributes(pass.File, func(a *ast.Attribute, _ *ast.Rule) {
			spec, ok := ast.LookupAttribute(a.Name.Name)
			if !ok {
				return
			}
			value := strings.TrimSpace(a.Value)
			rng := a.ValueRange
			if value == "" {
				rng = a.Name.Range
			}
			if msg := checkAttributeValue(spec, value); msg != "" {
				pass.Reportf(rng, "attribute %s %s", a.Name.Name, msg)
			}
		})
		return nil
	},
}

// checkAttributeValue returns a description of what is wrong with value, or
// "" if it is acceptable for spec.
func checkAttributeValue(spec ast.AttributeSpec, value string) string {
	switch spec.Kind {
	case ast.ValueBool:
		if value == "" || value == "true" || value == "false" {
			return ""
		}
		return "expects true or false, got " + value
	case ast.ValueInt:
		if value == "" {
			return "requires an integer value"
		}
		if _, err := strconv.Atoi(value); err == nil {
			return ""
		}
		if strings.HasPrefix(value, "(") && strings.HasSuffix(value, ")") {
			return ""
		}
		return "expects an integer or a parenthesised expression, got " + value
	case ast.ValueString:
		if value == "" {
			return "requires a quoted string value"
		}
		if len(value) >= 2 && (value[0] == '"' || value[0] == '\'') && value[len(value)-1] == value[0] {
			return ""
		}
		return "expects a quoted string, got " + value
	}
	return ""
}

// structural are the keywords that begin a line of DRL structure.
var structural = map[string]bool{
	"package":  true,
	"import":   true,
	"global":   true,
	"function": true,
	"declare":  true,
	"query":    true,
	"rule":     true,
	"when":     true,
	"then":     true,
	"end":      true,
}

// AnalyzerKeywordCase flags structural keywords written with the wrong
// case, which the parser cannot recognize.
var AnalyzerKeywordCase = &Analyzer{
	Name:     "keyword-case",
	Doc:      "Check that structural keywords are lower case.\n\nDRL keywords are case sensitive. A line starting with Rule, WHEN or End is not recognized as a keyword and usually causes confusing parse errors further on.",
	Phase:    PhaseSyntax,
	Severity: diagnostic.SeverityWarning,
	Run: func(pass *Pass) error {
		for _, tok := range pass.Result.Tokens {
			if tok.Type != token.IDENT || !tok.StartsLine() {
				continue
			}
			lower := strings.ToLower(tok.Text)
			if lower != tok.Text && structural[lower] {
				pass.Reportf(tok.Range, "keyword %s must be lower case, found %s", lower, tok.Text)
			}
		}
		return nil
	},
}
