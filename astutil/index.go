// Copyright © 2024 The ELPS authors

package astutil

import (
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
)

// Index answers position queries over a syntax tree.  Nodes hold no parent
// pointers; the parent relation lives in the Index and is rebuilt from the
// tree whenever a new Index is made.
type Index struct {
	root    ast.Node
	parents map[ast.Node]ast.Node
}

// NewIndex builds an Index over the tree rooted at root.
func NewIndex(root ast.Node) *Index {
	idx := &Index{
		root:    root,
		parents: make(map[ast.Node]ast.Node),
	}
	Walk(root, func(node, parent ast.Node, _ int) {
		if parent != nil {
			idx.parents[node] = parent
		}
	})
	return idx
}

// Parent returns the parent of n, or nil for the root and for nodes not in
// the tree.
func (idx *Index) Parent(n ast.Node) ast.Node {
	return idx.parents[n]
}

// Path returns the chain of nodes containing pos, outermost first.  The
// result is empty when pos lies outside the root.
func (idx *Index) Path(pos position.Position) []ast.Node {
	if idx.root == nil || !idx.root.Span().Contains(pos) {
		return nil
	}
	path := []ast.Node{idx.root}
	for n := idx.root; ; {
		var next ast.Node
		for _, c := range n.Children() {
			if c.Span().Contains(pos) {
				next = c
				break
			}
		}
		if next == nil {
			return path
		}
		path = append(path, next)
		n = next
	}
}

// NodeAt returns the innermost node containing pos, or nil.
func (idx *Index) NodeAt(pos position.Position) ast.Node {
	path := idx.Path(pos)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// EnclosingRule returns the rule containing pos, or nil.
func (idx *Index) EnclosingRule(pos position.Position) *ast.Rule {
	for _, n := range idx.Path(pos) {
		if r, ok := n.(*ast.Rule); ok {
			return r
		}
	}
	return nil
}

// EnclosingPattern returns the innermost combinator pattern containing pos,
// or nil.
func (idx *Index) EnclosingPattern(pos position.Position) *ast.MultiLinePattern {
	var pat *ast.MultiLinePattern
	for _, n := range idx.Path(pos) {
		if p, ok := n.(*ast.MultiLinePattern); ok {
			pat = p
		}
	}
	return pat
}
