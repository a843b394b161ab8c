// Copyright © 2024 The ELPS authors

// Package analysis provides scope-aware semantic analysis for DRL source.
//
// The analyzer builds a scope tree from a parsed document, collects the
// variables each rule and query declares, resolves the variables used in
// rule actions, and records duplicate declarations.  Declarations are
// collected exactly once from the syntax tree; bindings the parser could not
// place in a scope are reported, never guessed.
package analysis

import (
	"github.com/luthersystems/drl/ast"
)

// Config controls the behavior of the analyzer.
type Config struct {
	// ExtraGlobals are declarations from other files (e.g. workspace
	// scanning).  Rules, queries, functions and types sharing the
	// document's package are checked for duplicate names against them.
	ExtraGlobals []ExternalSymbol

	// Builtins are extra context variable names accepted in rule actions
	// in addition to drools and kcontext.
	Builtins []string

	// Filename is the source file being analyzed.
	Filename string
}

// Result holds the output of semantic analysis.
type Result struct {
	RootScope  *Scope
	Symbols    []*Symbol
	References []*Reference
	Unresolved []*UnresolvedRef
	Duplicates []*Duplicate
	Unscoped   []*UnscopedBinding
	Parents    []*UnknownParent

	rules map[*ast.Rule]*Scope
}

// RuleScope returns the scope of rule r, or nil.
func (r *Result) RuleScope(rule *ast.Rule) *Scope {
	return r.rules[rule]
}

// Unused returns the pattern variables of rules that are never referenced,
// neither by a later condition nor by the action.  Query variables are
// excluded since they form the query's result.
func (r *Result) Unused() []*Symbol {
	var out []*Symbol
	for _, sym := range r.Symbols {
		if !sym.Kind.IsVariable() || sym.duplicate || sym.References > 0 {
			continue
		}
		if ruleScope(sym.Scope) == nil {
			continue
		}
		out = append(out, sym)
	}
	return out
}

// Globals returns the globals declared in the document.
func (r *Result) Globals() []*Symbol {
	var out []*Symbol
	for _, sym := range r.Symbols {
		if sym.Kind == SymGlobal && !sym.External {
			out = append(out, sym)
		}
	}
	return out
}

// ruleScope returns the rule scope enclosing s, or nil if s belongs to a
// query or the file.
func ruleScope(s *Scope) *Scope {
	for ; s != nil; s = s.Parent {
		switch s.Kind {
		case ScopeRule:
			return s
		case ScopeQuery, ScopeFunction, ScopeFile:
			return nil
		}
	}
	return nil
}

// Analyze performs semantic analysis on a parsed document.
func Analyze(file *ast.File, cfg *Config) *Result {
	if cfg == nil {
		cfg = &Config{}
	}

	root := NewScope(ScopeFile, nil, file)
	populateBuiltins(root, cfg.Builtins)

	a := &analyzer{
		root:     root,
		result:   &Result{RootScope: root, rules: make(map[*ast.Rule]*Scope)},
		cfg:      cfg,
		file:     file,
		topLevel: make(map[string]*Symbol),
		byName:   make(map[string]*ast.Rule),
		decls:    make(map[ast.Node]map[string]*Symbol),
	}

	// Phase 1: Pre-scan top-level declarations (forward references)
	a.prescan(file)

	// Phase 2: Function, query and rule bodies
	a.resolveFunctions(file)
	for _, q := range file.Queries {
		a.analyzeQuery(q)
	}
	for _, r := range file.Rules {
		a.analyzeRule(r)
	}

	return a.result
}
