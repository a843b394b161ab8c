// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
)

// SymbolKind classifies a symbol definition.
type SymbolKind int

const (
	SymBinding       SymbolKind = iota // $v : Pattern()
	SymFieldBinding                    // $v : field inside constraints
	SymResultBinding                   // $v : sum(...) inside accumulate
	SymParameter                       // query parameter
	SymGlobal                          // global declaration
	SymFunction                        // function declaration
	SymRule                            // rule declaration
	SymQuery                           // query declaration
	SymType                            // declare
	SymBuiltin                         // drools, kcontext
)

func (k SymbolKind) String() string {
	switch k {
	case SymBinding:
		return "binding"
	case SymFieldBinding:
		return "field-binding"
	case SymResultBinding:
		return "result-binding"
	case SymParameter:
		return "parameter"
	case SymGlobal:
		return "global"
	case SymFunction:
		return "function"
	case SymRule:
		return "rule"
	case SymQuery:
		return "query"
	case SymType:
		return "type"
	case SymBuiltin:
		return "builtin"
	default:
		return "unknown"
	}
}

// IsVariable reports whether symbols of kind k are pattern variables.
func (k SymbolKind) IsVariable() bool {
	switch k {
	case SymBinding, SymFieldBinding, SymResultBinding:
		return true
	}
	return false
}

// Symbol represents a defined name in a scope.
type Symbol struct {
	Name  string
	Kind  SymbolKind
	Range position.Range // zero for builtins
	Scope *Scope
	// Node is the node declaring the symbol.  It is nil for builtins.
	Node ast.Node
	// Type is the fact type of a binding or the declared type of a global.
	Type       string
	DocString  string
	References int
	// External is set on symbols declared in another file.
	External bool
	File     string // declaring file of an external symbol

	duplicate bool
}
