// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
)

// Reference records a resolved symbol usage.
type Reference struct {
	Symbol *Symbol
	Range  position.Range
	Node   ast.Node // the condition, pattern or action containing the use
}

// UnresolvedRef records a variable used in an action that no pattern,
// global or builtin declares.
type UnresolvedRef struct {
	Name  string
	Range position.Range
	Rule  *ast.Rule
}

// Duplicate records a declaration of a name already declared in the same
// rule, or at package level.  First is the original declaration.
type Duplicate struct {
	Symbol *Symbol
	First  *Symbol
}

// UnscopedBinding records a binding found in a raw region of a pattern
// body, such as an eval expression, where it has no owning scope.
type UnscopedBinding struct {
	Name    string
	Range   position.Range
	Pattern *ast.MultiLinePattern
}

// UnknownParent records a rule extending a rule that does not exist.
type UnknownParent struct {
	Rule   *ast.Rule
	Parent *ast.Ident
}

// SymbolAt returns the symbol declared or referenced at pos, or nil.
func (r *Result) SymbolAt(pos position.Position) *Symbol {
	for _, sym := range r.Symbols {
		if !sym.Range.IsZero() && sym.Range.Contains(pos) {
			return sym
		}
	}
	for _, ref := range r.References {
		if ref.Range.Contains(pos) {
			return ref.Symbol
		}
	}
	return nil
}

// ReferencesTo returns the references to sym in source order.
func (r *Result) ReferencesTo(sym *Symbol) []*Reference {
	var out []*Reference
	for _, ref := range r.References {
		if ref.Symbol == sym {
			out = append(out, ref)
		}
	}
	return out
}
