// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
)

// ScopeKind classifies the kind of scope.
type ScopeKind int

const (
	ScopeFile     ScopeKind = iota // package level declarations
	ScopeRule                      // a rule's conditions and action
	ScopeQuery                     // a query's parameters and conditions
	ScopePattern                   // the body of a combinator pattern
	ScopeFunction                  // a function's parameters
)

func (k ScopeKind) String() string {
	switch k {
	case ScopeFile:
		return "file"
	case ScopeRule:
		return "rule"
	case ScopeQuery:
		return "query"
	case ScopePattern:
		return "pattern"
	case ScopeFunction:
		return "function"
	default:
		return "unknown"
	}
}

// Scope represents a lexical scope in the source.
type Scope struct {
	Kind     ScopeKind
	Parent   *Scope
	Children []*Scope
	Symbols  map[string]*Symbol
	Node     ast.Node // the AST node that introduced this scope
}

// NewScope creates a new scope of the given kind with the given parent.
func NewScope(kind ScopeKind, parent *Scope, node ast.Node) *Scope {
	s := &Scope{
		Kind:    kind,
		Parent:  parent,
		Symbols: make(map[string]*Symbol),
		Node:    node,
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Define adds a symbol to this scope.
func (s *Scope) Define(sym *Symbol) {
	sym.Scope = s
	s.Symbols[sym.Name] = sym
}

// Lookup resolves a symbol by walking the parent chain.
// Returns nil if the symbol is not found.
func (s *Scope) Lookup(name string) *Symbol {
	for scope := s; scope != nil; scope = scope.Parent {
		if sym, ok := scope.Symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// LookupLocal resolves a symbol only in this scope (not parents).
func (s *Scope) LookupLocal(name string) *Symbol {
	return s.Symbols[name]
}

// Variables returns the pattern variables defined in s and its descendant
// scopes.
func (s *Scope) Variables() []*Symbol {
	var out []*Symbol
	for _, sym := range s.Symbols {
		if sym.Kind.IsVariable() {
			out = append(out, sym)
		}
	}
	for _, c := range s.Children {
		out = append(out, c.Variables()...)
	}
	return out
}

// Span returns the source range of the node that introduced s.
func (s *Scope) Span() position.Range {
	if s.Node == nil {
		return position.Range{}
	}
	return s.Node.Span()
}

// ScopeAt returns the innermost scope below root whose node contains pos.
func ScopeAt(root *Scope, pos position.Position) *Scope {
	if root == nil {
		return nil
	}
	for _, child := range root.Children {
		if child.Span().Contains(pos) {
			return ScopeAt(child, pos)
		}
	}
	return root
}

// Rule returns the rule whose scope encloses s, or nil.
func (s *Scope) Rule() *ast.Rule {
	if rs := ruleScope(s); rs != nil {
		r, _ := rs.Node.(*ast.Rule)
		return r
	}
	return nil
}
