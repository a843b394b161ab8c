// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"strings"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/diagnostic"
)

// AnalyzerDuplicateName flags package level names declared more than once.
var AnalyzerDuplicateName = &Analyzer{
	Name:     "duplicate-name",
	Doc:      "Flag rules, queries, functions, globals and types declared more than once.\n\nRules and queries share a name space. When workspace scanning is enabled, declarations in other files of the same package are taken into account.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		for _, dup := range pass.Semantics().Duplicates {
			if isVariableKind(dup.Symbol.Kind) {
				continue
			}
			pass.ReportWithNotes(diagnostic.Diagnostic{
				Range:   dup.Symbol.Range,
				Message: fmt.Sprintf("duplicate %s name %q", dup.Symbol.Kind, dup.Symbol.Name),
			}, firstDeclared(dup.First))
		}
		return nil
	},
}

func isVariableKind(k analysis.SymbolKind) bool {
	return k.IsVariable() || k == analysis.SymParameter
}

func firstDeclared(first *analysis.Symbol) string {
	where := "first declared at " + first.Range.Start.String()
	if first.External {
		where = fmt.Sprintf("first declared in %s at %s", first.File, first.Range.Start)
	}
	if first.Kind != analysis.SymRule && first.Kind != analysis.SymQuery {
		return where
	}
	return fmt.Sprintf("%s as a %s", where, first.Kind)
}

// AnalyzerDuplicateVariable flags variables bound more than once in a rule
// or query.
var AnalyzerDuplicateVariable = &Analyzer{
	Name:     "duplicate-variable",
	Doc:      "Flag variables bound more than once in the same rule.\n\nEvery binding after the first is reported, including bindings nested in not, exists and other combinators, and bindings repeating a variable of the rule named by extends. Use := to unify with an existing binding.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		for _, dup := range pass.Semantics().Duplicates {
			if !isVariableKind(dup.Symbol.Kind) {
				continue
			}
			note := "first declared at " + dup.First.Range.Start.String()
			if parent := dup.First.Scope.Rule(); parent != nil && parent != dup.Symbol.Scope.Rule() {
				note = fmt.Sprintf("inherited from rule %q", ruleName(parent))
			}
			pass.ReportWithNotes(diagnostic.Diagnostic{
				Range:   dup.Symbol.Range,
				Message: fmt.Sprintf("duplicate declaration of variable %s", dup.Symbol.Name),
			}, note)
		}
		return nil
	},
}

// AnalyzerUndefinedVariable flags variables used in a rule action that are
// not declared.
var AnalyzerUndefinedVariable = &Analyzer{
	Name:     "undefined-variable",
	Doc:      "Flag variables used in a rule action that no pattern declares.\n\nVariables may be bound by the rule's conditions, by the rule named by extends, or be globals. The builtins drools and kcontext are always available, with or without the $ sigil.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		sem := pass.Semantics()
		for _, u := range sem.Unresolved {
			d := diagnostic.Diagnostic{
				Range:   u.Range,
				Message: fmt.Sprintf("undefined variable %s in rule %q", u.Name, ruleName(u.Rule)),
			}
			var candidates []string
			if scope := sem.RuleScope(u.Rule); scope != nil {
				for _, sym := range scope.Variables() {
					candidates = append(candidates, sym.Name)
				}
			}
			if s := suggest(u.Name, candidates); s != "" {
				d.Notes = append(d.Notes, fmt.Sprintf("did you mean %s?", s))
			}
			pass.Report(d)
		}
		return nil
	},
}

// AnalyzerUnusedVariable reports rule variables that are never used.
var AnalyzerUnusedVariable = &Analyzer{
	Name:     "unused-variable",
	Doc:      "Report rule variables that are bound but never used.\n\nPattern variables are often bound only for readability, so this is informational. Variables used by a later condition or by a rule extending this one count as used.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityInformation,
	Run: func(pass *Pass) error {
		for _, sym := range pass.Semantics().Unused() {
			pass.Reportf(sym.Range, "variable %s is declared but never used", sym.Name)
		}
		return nil
	},
}

// AnalyzerUnscopedBinding reports bindings the parser could not assign to
// a pattern.
var AnalyzerUnscopedBinding = &Analyzer{
	Name:     "unscoped-binding",
	Doc:      "Report bindings with no owning pattern.\n\nA binding written inside an eval expression or the raw code of an accumulate has no clear scope. It is reported and excluded from the variable checks instead of being guessed into a scope.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityInformation,
	Run: func(pass *Pass) error {
		for _, u := range pass.Semantics().Unscoped {
			pass.Reportf(u.Range, "binding %s inside %s has no owning pattern and is not checked", u.Name, u.Pattern.Keyword)
		}
		return nil
	},
}

// AnalyzerUnknownParent flags rules extending a rule that does not exist.
var AnalyzerUnknownParent = &Analyzer{
	Name:     "unknown-parent",
	Doc:      "Flag rules that extend a rule that is not declared in the file.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		var names []string
		for _, r := range pass.File.Rules {
			if r.Name != nil {
				names = append(names, r.Name.Name)
			}
		}
		for _, p := range pass.Semantics().Parents {
			d := diagnostic.Diagnostic{
				Range:   p.Parent.Range,
				Message: fmt.Sprintf("rule %q extends unknown rule %q", ruleName(p.Rule), p.Parent.Name),
			}
			if s := suggest(p.Parent.Name, names); s != "" && s != ruleName(p.Rule) {
				d.Notes = append(d.Notes, fmt.Sprintf("did you mean %q?", s))
			}
			pass.Report(d)
		}
		return nil
	},
}

// AnalyzerUnknownAttribute flags attribute names outside the DRL set.
var AnalyzerUnknownAttribute = &Analyzer{
	Name:     "unknown-attribute",
	Doc:      "Flag rule attributes that DRL does not define.\n\nA close known attribute is suggested, so that misspellings such as no-lop are easy to fix.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		Attributes(pass.File, func(a *ast.Attribute, _ *ast.Rule) {
			if a.Known {
				return
			}
			d := diagnostic.Diagnostic{
				Range:   a.Name.Range,
				Message: fmt.Sprintf("unknown rule attribute %q", a.Name.Name),
			}
			if s := suggest(a.Name.Name, ast.AttributeNames()); s != "" {
				d.Notes = append(d.Notes, fmt.Sprintf("did you mean %q?", s))
			}
			pass.Report(d)
		})
		return nil
	},
}

// AnalyzerDuplicateAttribute flags attributes set more than once on a rule.
var AnalyzerDuplicateAttribute = &Analyzer{
	Name:     "duplicate-attribute",
	Doc:      "Flag attributes set more than once on the same rule.\n\nOnly the last value takes effect.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityWarning,
	Run: func(pass *Pass) error {
		check := func(attrs []*ast.Attribute, owner string) {
			seen := make(map[string]*ast.Attribute)
			for _, a := range attrs {
				if a.Name == nil {
					continue
				}
				if first, ok := seen[a.Name.Name]; ok {
					pass.ReportWithNotes(diagnostic.Diagnostic{
						Range:   a.Name.Range,
						Message: fmt.Sprintf("attribute %s is set more than once on %s", a.Name.Name, owner),
					}, "first set at "+first.Name.Range.Start.String())
					continue
				}
				seen[a.Name.Name] = a
			}
		}
		check(pass.File.Attributes, "the package")
		for _, r := range pass.File.Rules {
			check(r.Attributes, fmt.Sprintf("rule %q", ruleName(r)))
		}
		return nil
	},
}

// AnalyzerMalformedIdentifier flags package and import names that are not
// qualified Java names.
var AnalyzerMalformedIdentifier = &Analyzer{
	Name:     "malformed-identifier",
	Doc:      "Flag package and import names that are not valid qualified names.\n\nEach dot separated part must be a Java identifier. Imports may end with .* to import a whole package.",
	Phase:    PhaseSemantic,
	Severity: diagnostic.SeverityError,
	Run: func(pass *Pass) error {
		f := pass.File
		if f.Package != nil && f.Package.Name != nil && !isQualifiedName(f.Package.Name.Name) {
			pass.Reportf(f.Package.Name.Range, "malformed package name %q", f.Package.Name.Name)
		}
		for _, imp := range f.Imports {
			if imp.Path == nil {
				continue
			}
			name := strings.TrimSuffix(imp.Path.Name, ".*")
			if !isQualifiedName(name) {
				pass.Reportf(imp.Path.Range, "malformed import %q", imp.Path.Name)
			}
		}
		return nil
	},
}
