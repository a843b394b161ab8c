// Copyright © 2024 The ELPS authors

package lint

import (
	"fmt"
	"strings"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/astutil"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/parser/token"
)

// loopGuards are the attributes that stop a rule from reactivating itself.
var loopGuards = []string{"no-loop", "lock-on-active"}

// modifying are the action calls that change facts in working memory.
var modifying = map[string]bool{
	"update":        true,
	"modify":        true,
	"insert":        true,
	"insertLogical": true,
}

// AnalyzerLoopGuard warns about rules that insert or update facts without
// a loop guard.
var AnalyzerLoopGuard = &Analyzer{
	Name:     "loop-guard",
	Doc:      "Warn when a rule inserts or updates facts without no-loop or lock-on-active.\n\nA rule whose action calls insert, insertLogical, update or modify may be reactivated by its own change and loop forever. Add no-loop true, lock-on-active true, or a constraint that the change falsifies.",
	Phase:    PhaseBestPractice,
	Severity: diagnostic.SeverityWarning,
	Run: func(pass *Pass) error {
		for _, r := range pass.File.Rules {
			if r.Then == nil || hasLoopGuard(r) {
				continue
			}
			call := modifyingCall(pass.Tokens(r.Then.TextRange))
			if call == nil {
				continue
			}
			pass.ReportWithNotes(diagnostic.Diagnostic{
				Range:   headerRange(r),
				Message: fmt.Sprintf("rule %q calls %s in its action without no-loop or lock-on-active", ruleName(r), call.Text),
			}, "the call at "+call.Range.Start.String()+" may reactivate the rule")
		}
		return nil
	},
}

func hasLoopGuard(r *ast.Rule) bool {
	for _, name := range loopGuards {
		if v, ok := astutil.AttributeValue(r, name); ok && strings.TrimSpace(v) != "false" {
			return true
		}
	}
	return false
}

// modifyingCall returns the first insert, update or modify call among toks.
func modifyingCall(toks []*token.Token) *token.Token {
	for i, tok := range toks {
		if tok.Type != token.IDENT || !modifying[tok.Text] || i+1 >= len(toks) {
			continue
		}
		if i > 0 && toks[i-1].Type == token.DOT && !(i > 1 && toks[i-2].Text == "drools") {
			continue
		}
		if toks[i+1].Type == token.PAREN_L {
			return tok
		}
	}
	return nil
}

// AnalyzerUnusedGlobal reports globals that nothing uses.
var AnalyzerUnusedGlobal = &Analyzer{
	Name:     "unused-global",
	Doc:      "Report globals that no rule, query or function of the file uses.",
	Phase:    PhaseBestPractice,
	Severity: diagnostic.SeverityWarning,
	Run: func(pass *Pass) error {
		for _, g := range pass.Semantics().Globals() {
			if g.References == 0 {
				pass.Reportf(g.Range, "global %s is never used", g.Name)
			}
		}
		return nil
	},
}

// AnalyzerEvalUsage suggests replacing eval with pattern constraints.
var AnalyzerEvalUsage = &Analyzer{
	Name:     "eval-usage",
	Doc:      "Suggest replacing eval with constraints on a pattern.\n\nAn eval condition is evaluated for every candidate match and cannot be indexed by the engine. Inline constraints are usually faster and easier to read.",
	Phase:    PhaseBestPractice,
	Severity: diagnostic.SeverityInformation,
	Run: func(pass *Pass) error {
		for _, pat := range Patterns(pass.File) {
			if pat.Keyword == ast.PatternEval {
				pass.Reportf(pat.KeywordRange, "eval cannot be indexed; prefer constraints on a pattern")
			}
		}
		return nil
	},
}

// AnalyzerEmptyAction reports rules whose action does nothing.
var AnalyzerEmptyAction = &Analyzer{
	Name:     "empty-action",
	Doc:      "Report rules with an empty then section.",
	Phase:    PhaseBestPractice,
	Severity: diagnostic.SeverityInformation,
	Run: func(pass *Pass) error {
		for _, r := range pass.File.Rules {
			if r.Then != nil && strings.TrimSpace(r.Then.Text) == "" {
				pass.Reportf(headerRange(r), "rule %q has an empty action", ruleName(r))
			}
		}
		return nil
	},
}
