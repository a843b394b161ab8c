// Copyright © 2024 The ELPS authors

package ast

import (
	"sort"

	"github.com/luthersystems/drl/parser/position"
)

// File is the root of a parsed document.
type File struct {
	Range   position.Range `json:"range" yaml:"range"`
	Name    string         `json:"name,omitempty" yaml:"name,omitempty"`
	Package *Package       `json:"package,omitempty" yaml:"package,omitempty"`
	// Attributes are package level attributes such as dialect.
	Attributes []*Attribute `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Imports    []*Import    `json:"imports,omitempty" yaml:"imports,omitempty"`
	Globals    []*Global    `json:"globals,omitempty" yaml:"globals,omitempty"`
	Functions  []*Function  `json:"functions,omitempty" yaml:"functions,omitempty"`
	Declares   []*Declare   `json:"declares,omitempty" yaml:"declares,omitempty"`
	Queries    []*Query     `json:"queries,omitempty" yaml:"queries,omitempty"`
	Rules      []*Rule      `json:"rules,omitempty" yaml:"rules,omitempty"`
}

// Package is a package declaration.
type Package struct {
	Range position.Range `json:"range" yaml:"range"`
	Name  *Ident         `json:"name" yaml:"name"`
}

// Import is an import declaration.  Form is empty for a type import and
// otherwise one of function, static or accumulate.
type Import struct {
	Range    position.Range `json:"range" yaml:"range"`
	Form     string         `json:"kind,omitempty" yaml:"kind,omitempty"`
	Path     *Ident         `json:"path" yaml:"path"`
	Wildcard bool           `json:"wildcard,omitempty" yaml:"wildcard,omitempty"`
	// Alias is the accumulate function name of an accumulate import.
	Alias *Ident `json:"alias,omitempty" yaml:"alias,omitempty"`
}

// Global declares a named global variable.
type Global struct {
	Range position.Range `json:"range" yaml:"range"`
	Type  string         `json:"type" yaml:"type"`
	Name  *Ident         `json:"name" yaml:"name"`
}

// Function is a DRL function declaration.  The body is kept as raw text.
type Function struct {
	Range      position.Range `json:"range" yaml:"range"`
	ReturnType string         `json:"returnType" yaml:"returnType"`
	Name       *Ident         `json:"name" yaml:"name"`
	Params     []*Parameter   `json:"params,omitempty" yaml:"params,omitempty"`
	Body       string         `json:"body" yaml:"body"`
	BodyRange  position.Range `json:"bodyRange" yaml:"bodyRange"`
	// Names are the unqualified identifiers of the body.
	Names []*Ident `json:"names,omitempty" yaml:"names,omitempty"`
}

// Parameter is a typed parameter of a function or query.
type Parameter struct {
	Range position.Range `json:"range" yaml:"range"`
	Type  string         `json:"type" yaml:"type"`
	Name  *Ident         `json:"name" yaml:"name"`
}

// Rule is a rule declaration.  When is nil if the rule has no when section
// and Then is nil if the then section is missing.  Terminated reports
// whether the closing end keyword was found.
type Rule struct {
	Range      position.Range `json:"range" yaml:"range"`
	Name       *Ident         `json:"name" yaml:"name"`
	Quoted     bool           `json:"quoted,omitempty" yaml:"quoted,omitempty"`
	Extends    *Ident         `json:"extends,omitempty" yaml:"extends,omitempty"`
	Attributes []*Attribute   `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	When       *When          `json:"when,omitempty" yaml:"when,omitempty"`
	Then       *Then          `json:"then,omitempty" yaml:"then,omitempty"`
	Terminated bool           `json:"terminated" yaml:"terminated"`
}

// Attribute is a rule attribute such as salience or no-loop.  Value is the
// raw text following the name on the same line.  Known is false for names
// outside the DRL attribute set.
type Attribute struct {
	Range      position.Range `json:"range" yaml:"range"`
	Name       *Ident         `json:"name" yaml:"name"`
	Value      string         `json:"value,omitempty" yaml:"value,omitempty"`
	ValueRange position.Range `json:"valueRange" yaml:"valueRange"`
	Known      bool           `json:"known" yaml:"known"`
}

// When is the condition section of a rule or the body of a query.
type When struct {
	Range      position.Range `json:"range" yaml:"range"`
	Conditions []*Condition   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

// Then is the action section of a rule.  Text is the raw action code and
// Refs holds every variable token found in it.  Names holds the
// unqualified identifiers of the action code, which may name globals or
// functions.
type Then struct {
	Range     position.Range `json:"range" yaml:"range"`
	Text      string         `json:"text" yaml:"text"`
	TextRange position.Range `json:"textRange" yaml:"textRange"`
	Refs      []*Ident       `json:"refs,omitempty" yaml:"refs,omitempty"`
	Names     []*Ident       `json:"names,omitempty" yaml:"names,omitempty"`
}

// Condition is one element of a condition list.  Exactly one of the
// following shapes is populated:
//
//   - a fact pattern: FactType with optional Binding and Constraints,
//     optionally followed by a from clause (From or Source);
//   - a combinator: Pattern, optionally bound;
//   - a parenthesised group: Nested, joined by their Connective.
type Condition struct {
	Range      position.Range `json:"range" yaml:"range"`
	Connective string         `json:"connective,omitempty" yaml:"connective,omitempty"`
	Binding    *Ident         `json:"binding,omitempty" yaml:"binding,omitempty"`

	FactType         *Ident         `json:"factType,omitempty" yaml:"factType,omitempty"`
	Constraints      string         `json:"constraints,omitempty" yaml:"constraints,omitempty"`
	ConstraintsRange position.Range `json:"constraintsRange" yaml:"constraintsRange"`
	// FieldBindings are variables bound inside the constraints, $v : field.
	FieldBindings []*Ident `json:"fieldBindings,omitempty" yaml:"fieldBindings,omitempty"`
	// Refs are variables used, not bound, inside the condition.
	Refs []*Ident `json:"refs,omitempty" yaml:"refs,omitempty"`
	// Names are unqualified identifiers in the constraints and from clause.
	Names []*Ident `json:"names,omitempty" yaml:"names,omitempty"`

	From      string            `json:"from,omitempty" yaml:"from,omitempty"`
	FromRange position.Range    `json:"fromRange" yaml:"fromRange"`
	Source    *MultiLinePattern `json:"source,omitempty" yaml:"source,omitempty"`

	Pattern *MultiLinePattern `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Nested  []*Condition      `json:"nested,omitempty" yaml:"nested,omitempty"`
}

// Bindings returns the pattern binding followed by the field bindings.
func (c *Condition) Bindings() []*Ident {
	var ids []*Ident
	if c.Binding != nil {
		ids = append(ids, c.Binding)
	}
	return append(ids, c.FieldBindings...)
}

// MultiLinePattern is a combinator applied to a bracketed body which may
// span many lines.  Complete is true only when every bracket opened in the
// body was closed.  HasBody is false when nothing followed the keyword.
type MultiLinePattern struct {
	Range        position.Range `json:"range" yaml:"range"`
	Keyword      PatternType    `json:"keyword" yaml:"keyword"`
	KeywordRange position.Range `json:"keywordRange" yaml:"keywordRange"`
	Depth        int            `json:"depth" yaml:"depth"`
	Complete     bool           `json:"complete" yaml:"complete"`
	HasBody      bool           `json:"hasBody" yaml:"hasBody"`
	Brackets     []BracketPair  `json:"brackets,omitempty" yaml:"brackets,omitempty"`
	Body         string         `json:"body" yaml:"body"`
	BodyRange    position.Range `json:"bodyRange" yaml:"bodyRange"`
	Conditions   []*Condition   `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	// Bindings are result variables bound by accumulate functions.
	Bindings []*Ident `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	// Refs are variables used in raw regions of the body (eval
	// expressions, accumulate actions).
	Refs  []*Ident `json:"refs,omitempty" yaml:"refs,omitempty"`
	Names []*Ident `json:"names,omitempty" yaml:"names,omitempty"`
	// Unscoped are bindings found in raw regions that have no clear
	// owning pattern.  They are reported, never resolved.
	Unscoped []*Ident `json:"unscoped,omitempty" yaml:"unscoped,omitempty"`
}

// NestedPatterns returns the combinator patterns reachable through the
// pattern's conditions without passing through another pattern.
func (p *MultiLinePattern) NestedPatterns() []*MultiLinePattern {
	var out []*MultiLinePattern
	var visit func(conds []*Condition)
	visit = func(conds []*Condition) {
		for _, c := range conds {
			if c.Pattern != nil {
				out = append(out, c.Pattern)
			}
			if c.Source != nil {
				out = append(out, c.Source)
			}
			visit(c.Nested)
		}
	}
	visit(p.Conditions)
	return out
}

// Query is a named query with parameters and a condition body.
type Query struct {
	Range      position.Range `json:"range" yaml:"range"`
	Name       *Ident         `json:"name" yaml:"name"`
	Params     []*Parameter   `json:"params,omitempty" yaml:"params,omitempty"`
	When       *When          `json:"when,omitempty" yaml:"when,omitempty"`
	Terminated bool           `json:"terminated" yaml:"terminated"`
}

// Declare is a type declaration.  Form is empty, trait or enum.
type Declare struct {
	Range       position.Range  `json:"range" yaml:"range"`
	Form        string          `json:"kind,omitempty" yaml:"kind,omitempty"`
	Name        *Ident          `json:"name" yaml:"name"`
	Extends     *Ident          `json:"extends,omitempty" yaml:"extends,omitempty"`
	Annotations []string        `json:"annotations,omitempty" yaml:"annotations,omitempty"`
	Fields      []*DeclareField `json:"fields,omitempty" yaml:"fields,omitempty"`
	Terminated  bool            `json:"terminated" yaml:"terminated"`
}

// DeclareField is a field of a declared type.
type DeclareField struct {
	Range       position.Range `json:"range" yaml:"range"`
	Name        *Ident         `json:"name" yaml:"name"`
	Type        string         `json:"type" yaml:"type"`
	Annotations []string       `json:"annotations,omitempty" yaml:"annotations,omitempty"`
}

func (*File) Kind() NodeKind             { return KindFile }
func (*Package) Kind() NodeKind          { return KindPackage }
func (*Import) Kind() NodeKind           { return KindImport }
func (*Global) Kind() NodeKind           { return KindGlobal }
func (*Function) Kind() NodeKind         { return KindFunction }
func (*Parameter) Kind() NodeKind        { return KindParameter }
func (*Rule) Kind() NodeKind             { return KindRule }
func (*Attribute) Kind() NodeKind        { return KindAttribute }
func (*When) Kind() NodeKind             { return KindWhen }
func (*Then) Kind() NodeKind             { return KindThen }
func (*Condition) Kind() NodeKind        { return KindCondition }
func (*MultiLinePattern) Kind() NodeKind { return KindMultiLinePattern }
func (*Query) Kind() NodeKind            { return KindQuery }
func (*Declare) Kind() NodeKind          { return KindDeclare }
func (*DeclareField) Kind() NodeKind     { return KindDeclareField }

func (n *File) Span() position.Range             { return n.Range }
func (n *Package) Span() position.Range          { return n.Range }
func (n *Import) Span() position.Range           { return n.Range }
func (n *Global) Span() position.Range           { return n.Range }
func (n *Function) Span() position.Range         { return n.Range }
func (n *Parameter) Span() position.Range        { return n.Range }
func (n *Rule) Span() position.Range             { return n.Range }
func (n *Attribute) Span() position.Range        { return n.Range }
func (n *When) Span() position.Range             { return n.Range }
func (n *Then) Span() position.Range             { return n.Range }
func (n *Condition) Span() position.Range        { return n.Range }
func (n *MultiLinePattern) Span() position.Range { return n.Range }
func (n *Query) Span() position.Range            { return n.Range }
func (n *Declare) Span() position.Range          { return n.Range }
func (n *DeclareField) Span() position.Range     { return n.Range }

func (*File) node()             {}
func (*Package) node()          {}
func (*Import) node()           {}
func (*Global) node()           {}
func (*Function) node()         {}
func (*Parameter) node()        {}
func (*Rule) node()             {}
func (*Attribute) node()        {}
func (*When) node()             {}
func (*Then) node()             {}
func (*Condition) node()        {}
func (*MultiLinePattern) node() {}
func (*Query) node()            {}
func (*Declare) node()          {}
func (*DeclareField) node()     {}

func (n *File) Children() []Node {
	var out []Node
	if n.Package != nil {
		out = append(out, n.Package)
	}
	for _, x := range n.Attributes {
		out = append(out, x)
	}
	for _, x := range n.Imports {
		out = append(out, x)
	}
	for _, x := range n.Globals {
		out = append(out, x)
	}
	for _, x := range n.Functions {
		out = append(out, x)
	}
	for _, x := range n.Declares {
		out = append(out, x)
	}
	for _, x := range n.Queries {
		out = append(out, x)
	}
	for _, x := range n.Rules {
		out = append(out, x)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Span().Start.Before(out[j].Span().Start)
	})
	return out
}

func (*Package) Children() []Node   { return nil }
func (*Import) Children() []Node    { return nil }
func (*Global) Children() []Node    { return nil }
func (*Parameter) Children() []Node { return nil }
func (*Attribute) Children() []Node { return nil }
func (*Then) Children() []Node      { return nil }

func (*DeclareField) Children() []Node { return nil }

func (n *Function) Children() []Node {
	out := make([]Node, 0, len(n.Params))
	for _, p := range n.Params {
		out = append(out, p)
	}
	return out
}

func (n *Rule) Children() []Node {
	var out []Node
	for _, a := range n.Attributes {
		out = append(out, a)
	}
	if n.When != nil {
		out = append(out, n.When)
	}
	if n.Then != nil {
		out = append(out, n.Then)
	}
	return out
}

func (n *When) Children() []Node {
	return conditionNodes(n.Conditions)
}

func (n *Condition) Children() []Node {
	var out []Node
	if n.Pattern != nil {
		out = append(out, n.Pattern)
	}
	out = append(out, conditionNodes(n.Nested)...)
	if n.Source != nil {
		out = append(out, n.Source)
	}
	return out
}

func (n *MultiLinePattern) Children() []Node {
	return conditionNodes(n.Conditions)
}

func (n *Query) Children() []Node {
	var out []Node
	for _, p := range n.Params {
		out = append(out, p)
	}
	if n.When != nil {
		out = append(out, n.When)
	}
	return out
}

func (n *Declare) Children() []Node {
	out := make([]Node, 0, len(n.Fields))
	for _, f := range n.Fields {
		out = append(out, f)
	}
	return out
}

func conditionNodes(conds []*Condition) []Node {
	out := make([]Node, 0, len(conds))
	for _, c := range conds {
		out = append(out, c)
	}
	return out
}
