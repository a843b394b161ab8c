// Copyright © 2024 The ELPS authors

// Package astutil provides shared AST walking utilities for DRL syntax
// trees.
//
// These helpers are used by the lint, analysis and lsp packages for
// traversing parsed documents.
package astutil

import "github.com/luthersystems/drl/ast"

// Walk calls fn for every node in the tree, depth-first in source order.
// parent is nil for the root.
func Walk(root ast.Node, fn func(node ast.Node, parent ast.Node, depth int)) {
	walkNode(root, nil, 0, fn)
}

func walkNode(node ast.Node, parent ast.Node, depth int, fn func(ast.Node, ast.Node, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Children() {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkConditions calls fn for every condition reachable from conds,
// including conditions nested in groups, combinator bodies and from
// sources.  pat is the innermost combinator enclosing the condition, or nil.
func WalkConditions(conds []*ast.Condition, fn func(cond *ast.Condition, pat *ast.MultiLinePattern)) {
	walkConditions(conds, nil, fn)
}

func walkConditions(conds []*ast.Condition, pat *ast.MultiLinePattern, fn func(*ast.Condition, *ast.MultiLinePattern)) {
	for _, c := range conds {
		fn(c, pat)
		walkConditions(c.Nested, pat, fn)
		if c.Pattern != nil {
			walkConditions(c.Pattern.Conditions, c.Pattern, fn)
		}
		if c.Source != nil {
			walkConditions(c.Source.Conditions, c.Source, fn)
		}
	}
}

// Patterns returns every combinator pattern in the tree rooted at root, in
// source order.
func Patterns(root ast.Node) []*ast.MultiLinePattern {
	var pats []*ast.MultiLinePattern
	ast.Inspect(root, func(n ast.Node) bool {
		if pat, ok := n.(*ast.MultiLinePattern); ok {
			pats = append(pats, pat)
		}
		return true
	})
	return pats
}

// RuleConditions returns the top-level conditions of a rule, or nil when
// it has no when section.
func RuleConditions(r *ast.Rule) []*ast.Condition {
	if r.When == nil {
		return nil
	}
	return r.When.Conditions
}

// QueryConditions returns the conditions of a query.
func QueryConditions(q *ast.Query) []*ast.Condition {
	if q.When == nil {
		return nil
	}
	return q.When.Conditions
}

// AttributeValue returns the value of the named attribute of r and whether
// it is present.  The last occurrence wins.
func AttributeValue(r *ast.Rule, name string) (string, bool) {
	var value string
	found := false
	for _, a := range r.Attributes {
		if a.Name != nil && a.Name.Name == name {
			value, found = a.Value, true
		}
	}
	return value, found
}
