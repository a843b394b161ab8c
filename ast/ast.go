// Copyright © 2024 The ELPS authors

// Package ast declares the syntax tree of a parsed DRL file.
//
// The tree is a closed set of node types, one per NodeKind.  Every node owns
// its children exclusively and carries a range that covers all of them.
// Nodes have no parent pointers, use astutil.Index for upward queries.
// Trees are built once per parse and are never mutated afterwards.
package ast

import (
	"github.com/luthersystems/drl/parser/position"
)

// Node is implemented by every syntax tree node.  The interface is sealed,
// the set of implementations is exactly the set of NodeKind values.
type Node interface {
	Kind() NodeKind
	Span() position.Range
	// Children returns the node's direct children in source order.
	Children() []Node
	// Accept calls the Visitor method for the node's kind.
	Accept(v Visitor)
	node()
}

// NodeKind identifies the concrete type of a Node.
type NodeKind int

const (
	KindFile NodeKind = iota
	KindPackage
	KindImport
	KindGlobal
	KindFunction
	KindParameter
	KindRule
	KindAttribute
	KindWhen
	KindThen
	KindCondition
	KindMultiLinePattern
	KindQuery
	KindDeclare
	KindDeclareField

	numKinds
)

var kindNames = [numKinds]string{
	KindFile:             "file",
	KindPackage:          "package",
	KindImport:           "import",
	KindGlobal:           "global",
	KindFunction:         "function",
	KindParameter:        "parameter",
	KindRule:             "rule",
	KindAttribute:        "attribute",
	KindWhen:             "when",
	KindThen:             "then",
	KindCondition:        "condition",
	KindMultiLinePattern: "pattern",
	KindQuery:            "query",
	KindDeclare:          "declare",
	KindDeclareField:     "field",
}

func (k NodeKind) String() string {
	if k < 0 || k >= numKinds {
		return "unknown"
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k NodeKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Ident is a name together with the exact range it occupies.  Unify is set
// on variable bindings written with := which unify with an existing binding
// of the same name rather than declaring a new one.
type Ident struct {
	Name  string         `json:"name" yaml:"name"`
	Range position.Range `json:"range" yaml:"range"`
	Unify bool           `json:"unify,omitempty" yaml:"unify,omitempty"`
}

func (id *Ident) String() string {
	if id == nil {
		return ""
	}
	return id.Name
}

// PatternType is one of the six condition combinators.
type PatternType string

const (
	PatternExists     PatternType = "exists"
	PatternNot        PatternType = "not"
	PatternEval       PatternType = "eval"
	PatternForall     PatternType = "forall"
	PatternCollect    PatternType = "collect"
	PatternAccumulate PatternType = "accumulate"
)

// PatternTypes lists every combinator.
var PatternTypes = []PatternType{
	PatternExists,
	PatternNot,
	PatternEval,
	PatternForall,
	PatternCollect,
	PatternAccumulate,
}

// IsPatternType reports whether s names a combinator.
func IsPatternType(s string) bool {
	for _, p := range PatternTypes {
		if string(p) == s {
			return true
		}
	}
	return false
}

// BracketPair records a bracket opened inside a pattern body.  Close is the
// zero range when the bracket was never closed.  Mismatched is set when the
// bracket was closed by a bracket of a different kind.
type BracketPair struct {
	Kind       string         `json:"kind" yaml:"kind"` // "()", "{}" or "[]"
	Open       position.Range `json:"open" yaml:"open"`
	Close      position.Range `json:"close" yaml:"close"`
	Mismatched bool           `json:"mismatched,omitempty" yaml:"mismatched,omitempty"`
}

// Closed reports whether the pair has a closing bracket.
func (b BracketPair) Closed() bool {
	return !b.Close.IsZero()
}
