// Copyright © 2024 The ELPS authors

package ast

// Visitor has one method per node kind.  Adding a node kind adds a method
// here, so every Visitor implementation fails to compile until it handles
// the new kind.
type Visitor interface {
	VisitFile(*File)
	VisitPackage(*Package)
	VisitImport(*Import)
	VisitGlobal(*Global)
	VisitFunction(*Function)
	VisitParameter(*Parameter)
	VisitRule(*Rule)
	VisitAttribute(*Attribute)
	VisitWhen(*When)
	VisitThen(*Then)
	VisitCondition(*Condition)
	VisitMultiLinePattern(*MultiLinePattern)
	VisitQuery(*Query)
	VisitDeclare(*Declare)
	VisitDeclareField(*DeclareField)
}

func (n *File) Accept(v Visitor)             { v.VisitFile(n) }
func (n *Package) Accept(v Visitor)          { v.VisitPackage(n) }
func (n *Import) Accept(v Visitor)           { v.VisitImport(n) }
func (n *Global) Accept(v Visitor)           { v.VisitGlobal(n) }
func (n *Function) Accept(v Visitor)         { v.VisitFunction(n) }
func (n *Parameter) Accept(v Visitor)        { v.VisitParameter(n) }
func (n *Rule) Accept(v Visitor)             { v.VisitRule(n) }
func (n *Attribute) Accept(v Visitor)        { v.VisitAttribute(n) }
func (n *When) Accept(v Visitor)             { v.VisitWhen(n) }
func (n *Then) Accept(v Visitor)             { v.VisitThen(n) }
func (n *Condition) Accept(v Visitor)        { v.VisitCondition(n) }
func (n *MultiLinePattern) Accept(v Visitor) { v.VisitMultiLinePattern(n) }
func (n *Query) Accept(v Visitor)            { v.VisitQuery(n) }
func (n *Declare) Accept(v Visitor)          { v.VisitDeclare(n) }
func (n *DeclareField) Accept(v Visitor)     { v.VisitDeclareField(n) }

// Inspect traverses the tree rooted at n depth-first in source order.  If
// fn returns false the children of the node are skipped.
func Inspect(n Node, fn func(Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children() {
		Inspect(c, fn)
	}
}
