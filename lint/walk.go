// Copyright © 2024 The ELPS authors

package lint

import (
	"sort"
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/astutil"
	"github.com/luthersystems/drl/parser/position"
)

// Attributes calls fn for every attribute of the file, package level
// attributes first.  r is nil for package level attributes.
func Attributes(f *ast.File, fn func(a *ast.Attribute, r *ast.Rule)) {
	for _, a := range f.Attributes {
		if a.Name != nil {
			fn(a, nil)
		}
	}
	for _, r := range f.Rules {
		for _, a := range r.Attributes {
			if a.Name != nil {
				fn(a, r)
			}
		}
	}
}

// Patterns returns every combinator pattern of the file in source order.
func Patterns(f *ast.File) []*ast.MultiLinePattern {
	return astutil.Patterns(f)
}

// outermost returns the ranges of the patterns not nested in another
// pattern.
func outermost(pats []*ast.MultiLinePattern) []position.Range {
	var out []position.Range
	for _, p := range pats {
		if n := len(out); n > 0 && out[n-1].ContainsRange(p.Range) {
			continue
		}
		out = append(out, p.Range)
	}
	return out
}

// ruleName returns the name of r for messages.
func ruleName(r *ast.Rule) string {
	if r == nil || r.Name == nil {
		return "<unnamed>"
	}
	return r.Name.Name
}

// headerRange returns the range used to report problems with a rule as a
// whole: its name, or the rule keyword when the name is missing.
func headerRange(r *ast.Rule) position.Range {
	if r.Name != nil {
		return r.Name.Range
	}
	return position.Range{Start: r.Range.Start, End: position.Position{
		Line:   r.Range.Start.Line,
		Column: r.Range.Start.Column + len("rule"),
	}}
}

// isJavaIdent reports whether s is a valid Java identifier.
func isJavaIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, c := range s {
		switch {
		case c == '_' || c == '$' || unicode.IsLetter(c):
		case i > 0 && unicode.IsDigit(c):
		default:
			return false
		}
	}
	return true
}

// isQualifiedName reports whether s is a dot separated sequence of Java
// identifiers.
func isQualifiedName(s string) bool {
	for _, part := range strings.Split(s, ".") {
		if !isJavaIdent(part) {
			return false
		}
	}
	return true
}

// suggest returns the candidate closest to name, or "" if none is close.
// Candidates containing the characters of name in order are preferred;
// otherwise the candidate within a small edit distance is chosen.
func suggest(name string, candidates []string) string {
	if name == "" || len(candidates) == 0 {
		return ""
	}
	ranks := fuzzy.RankFindNormalizedFold(name, candidates)
	if len(ranks) > 0 {
		sort.Sort(ranks)
		return ranks[0].Target
	}
	best, bestDist := "", len(name)/3+2
	for _, c := range candidates {
		if d := fuzzy.LevenshteinDistance(strings.ToLower(name), strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
