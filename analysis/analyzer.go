// Copyright © 2024 The ELPS authors

package analysis

import (
	"sort"

	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
)

type analyzer struct {
	root   *Scope
	result *Result
	cfg    *Config
	file   *ast.File
	pkg    string

	// topLevel maps a namespace qualified name to its first declaration.
	topLevel map[string]*Symbol
	// byName maps rule names to the first rule declaring them.
	byName map[string]*ast.Rule
	// decls maps each rule or query to the variables visible in it,
	// including those inherited through extends.
	decls map[ast.Node]map[string]*Symbol
}

// body holds the state collected while walking the conditions of one rule
// or query.
type body struct {
	scope *Scope
	decls map[string]*Symbol
	refs  []use
	names []use
}

type use struct {
	id   *ast.Ident
	node ast.Node
}

// namespace returns the name space key of kind.  Rules and queries share
// a name space.
func namespace(kind SymbolKind) string {
	switch kind {
	case SymRule, SymQuery:
		return "rule:"
	default:
		return kind.String() + ":"
	}
}

// prescan registers all top-level declarations so that rules can refer to
// globals and functions declared anywhere in the file.
func (a *analyzer) prescan(file *ast.File) {
	if file.Package != nil && file.Package.Name != nil {
		a.pkg = file.Package.Name.Name
	}
	for _, ext := range a.cfg.ExtraGlobals {
		if ext.Package != a.pkg || ext.File == a.cfg.Filename {
			continue
		}
		key := namespace(ext.Kind) + ext.Name
		if _, ok := a.topLevel[key]; ok {
			continue
		}
		a.topLevel[key] = &Symbol{
			Name:     ext.Name,
			Kind:     ext.Kind,
			Range:    ext.Range,
			Type:     ext.Type,
			External: true,
			File:     ext.File,
		}
	}

	for _, g := range file.Globals {
		if g.Name == nil {
			continue
		}
		a.declareTop(&Symbol{Name: g.Name.Name, Kind: SymGlobal, Range: g.Name.Range, Node: g, Type: g.Type})
	}
	for _, fn := range file.Functions {
		if fn.Name == nil {
			continue
		}
		a.declareTop(&Symbol{Name: fn.Name.Name, Kind: SymFunction, Range: fn.Name.Range, Node: fn, Type: fn.ReturnType})
	}
	for _, d := range file.Declares {
		if d.Name == nil {
			continue
		}
		a.declareTop(&Symbol{Name: d.Name.Name, Kind: SymType, Range: d.Name.Range, Node: d, Type: d.Form})
	}

	// Rules and queries share a name space, so the first declaration in
	// source order wins whichever kind it is.
	var named []*Symbol
	for _, q := range file.Queries {
		if q.Name != nil {
			named = append(named, &Symbol{Name: q.Name.Name, Kind: SymQuery, Range: q.Name.Range, Node: q})
		}
	}
	for _, r := range file.Rules {
		if r.Name == nil {
			continue
		}
		named = append(named, &Symbol{Name: r.Name.Name, Kind: SymRule, Range: r.Name.Range, Node: r})
		if _, ok := a.byName[r.Name.Name]; !ok {
			a.byName[r.Name.Name] = r
		}
	}
	sort.SliceStable(named, func(i, j int) bool {
		return named[i].Range.Start.Before(named[j].Range.Start)
	})
	for _, sym := range named {
		a.declareTop(sym)
	}
}

// declareTop records a package level declaration.  Globals and functions
// are also defined in the file scope, where actions resolve them.
func (a *analyzer) declareTop(sym *Symbol) {
	a.result.Symbols = append(a.result.Symbols, sym)
	key := namespace(sym.Kind) + sym.Name
	if first, ok := a.topLevel[key]; ok {
		sym.Scope = a.root
		sym.duplicate = true
		a.result.Duplicates = append(a.result.Duplicates, &Duplicate{Symbol: sym, First: first})
		return
	}
	a.topLevel[key] = sym
	switch sym.Kind {
	case SymGlobal, SymFunction:
		if prev := a.root.LookupLocal(sym.Name); prev == nil || prev.Kind == SymBuiltin {
			a.root.Define(sym)
			return
		}
	}
	sym.Scope = a.root
}

// analyzeRule collects the variables of rule r and resolves their uses.
// Rules are analyzed at most once, so a parent named by extends may be
// analyzed before its child regardless of declaration order.
func (a *analyzer) analyzeRule(r *ast.Rule) *Scope {
	if s, ok := a.result.rules[r]; ok {
		return s
	}
	b := &body{
		scope: NewScope(ScopeRule, a.root, r),
		decls: make(map[string]*Symbol),
	}
	a.result.rules[r] = b.scope
	a.decls[r] = b.decls

	if r.Extends != nil {
		parent := a.byName[r.Extends.Name]
		switch {
		case parent == nil:
			a.result.Parents = append(a.result.Parents, &UnknownParent{Rule: r, Parent: r.Extends})
		case parent != r:
			a.analyzeRule(parent)
			for name, sym := range a.decls[parent] {
				b.decls[name] = sym
			}
		}
	}

	if r.When != nil {
		a.collect(b, b.scope, r.When.Conditions)
	}
	a.resolveConditions(b)

	if r.Then == nil {
		return b.scope
	}
	for _, ref := range r.Then.Refs {
		if sym := a.resolveVariable(b, ref.Name); sym != nil {
			a.addRef(sym, ref.Range, r.Then)
			continue
		}
		a.result.Unresolved = append(a.result.Unresolved, &UnresolvedRef{
			Name:  ref.Name,
			Range: ref.Range,
			Rule:  r,
		})
	}
	for _, id := range r.Then.Names {
		a.resolveName(b.scope, id, r.Then)
	}
	return b.scope
}

// analyzeQuery collects the parameters and variables of query q.  Query
// variables form the query's result so they are never reported unused.
func (a *analyzer) analyzeQuery(q *ast.Query) {
	b := &body{
		scope: NewScope(ScopeQuery, a.root, q),
		decls: make(map[string]*Symbol),
	}
	a.decls[q] = b.decls
	for _, p := range q.Params {
		if p.Name == nil {
			continue
		}
		sym := &Symbol{Name: p.Name.Name, Kind: SymParameter, Range: p.Name.Range, Node: p, Type: p.Type}
		a.result.Symbols = append(a.result.Symbols, sym)
		if first, ok := b.decls[sym.Name]; ok {
			sym.Scope = b.scope
			sym.duplicate = true
			a.result.Duplicates = append(a.result.Duplicates, &Duplicate{Symbol: sym, First: first})
			continue
		}
		b.scope.Define(sym)
		b.decls[sym.Name] = sym
	}
	if q.When != nil {
		a.collect(b, b.scope, q.When.Conditions)
	}
	a.resolveConditions(b)
}

// collect declares the bindings of conds and queues their uses.  Each
// combinator pattern opens a child scope.
func (a *analyzer) collect(b *body, scope *Scope, conds []*ast.Condition) {
	for _, c := range conds {
		if c.Binding != nil {
			a.bind(b, scope, c.Binding, SymBinding, c, conditionType(c))
		}
		for _, id := range c.FieldBindings {
			a.bind(b, scope, id, SymFieldBinding, c, "")
		}
		for _, id := range c.Refs {
			b.refs = append(b.refs, use{id, c})
		}
		for _, id := range c.Names {
			b.names = append(b.names, use{id, c})
		}
		a.collect(b, scope, c.Nested)
		if c.Pattern != nil {
			a.collectPattern(b, scope, c.Pattern)
		}
		if c.Source != nil {
			a.collectPattern(b, scope, c.Source)
		}
	}
}

func (a *analyzer) collectPattern(b *body, parent *Scope, p *ast.MultiLinePattern) {
	scope := NewScope(ScopePattern, parent, p)
	a.collect(b, scope, p.Conditions)
	for _, id := range p.Bindings {
		a.bind(b, scope, id, SymResultBinding, p, "")
	}
	for _, id := range p.Refs {
		b.refs = append(b.refs, use{id, p})
	}
	for _, id := range p.Names {
		b.names = append(b.names, use{id, p})
	}
	for _, id := range p.Unscoped {
		a.result.Unscoped = append(a.result.Unscoped, &UnscopedBinding{
			Name:    id.Name,
			Range:   id.Range,
			Pattern: p,
		})
	}
}

func conditionType(c *ast.Condition) string {
	switch {
	case c.FactType != nil:
		return c.FactType.Name
	case c.Pattern != nil:
		return string(c.Pattern.Keyword)
	}
	return ""
}

// bind declares a variable.  A unification binding ($v := field) of a
// variable already declared is a use of that variable.  Any other
// redeclaration, including one of an inherited variable, is a duplicate.
func (a *analyzer) bind(b *body, scope *Scope, id *ast.Ident, kind SymbolKind, node ast.Node, typ string) {
	first, declared := b.decls[id.Name]
	if declared && id.Unify {
		a.addRef(first, id.Range, node)
		return
	}
	sym := &Symbol{Name: id.Name, Kind: kind, Range: id.Range, Node: node, Type: typ}
	a.result.Symbols = append(a.result.Symbols, sym)
	if declared {
		sym.Scope = scope
		sym.duplicate = true
		a.result.Duplicates = append(a.result.Duplicates, &Duplicate{Symbol: sym, First: first})
		return
	}
	scope.Define(sym)
	b.decls[id.Name] = sym
}

// resolveConditions resolves the uses queued while collecting conditions.
// Variables used in conditions may be declared by a later pattern, and an
// unknown name there may be a fact field, so nothing is reported.
func (a *analyzer) resolveConditions(b *body) {
	for _, u := range b.refs {
		if sym := a.resolveVariable(b, u.id.Name); sym != nil {
			a.addRef(sym, u.id.Range, u.node)
		}
	}
	for _, u := range b.names {
		a.resolveName(b.scope, u.id, u.node)
	}
}

// resolveVariable looks a variable up in the rule, then among the globals,
// then among the builtins.
func (a *analyzer) resolveVariable(b *body, name string) *Symbol {
	if sym := b.decls[name]; sym != nil {
		return sym
	}
	if sym := a.root.LookupLocal(name); sym != nil && sym.Kind == SymGlobal {
		return sym
	}
	return lookupBuiltin(a.root, name)
}

// resolveName records a use of a global, function, builtin or query
// parameter named by id.  Other names are fields or Java identifiers.
func (a *analyzer) resolveName(scope *Scope, id *ast.Ident, node ast.Node) {
	sym := scope.Lookup(id.Name)
	if sym == nil {
		return
	}
	switch sym.Kind {
	case SymGlobal, SymFunction, SymBuiltin, SymParameter:
		a.addRef(sym, id.Range, node)
	}
}

func (a *analyzer) addRef(sym *Symbol, rng position.Range, node ast.Node) {
	sym.References++
	a.result.References = append(a.result.References, &Reference{
		Symbol: sym,
		Range:  rng,
		Node:   node,
	})
}

// resolveFunctions records the globals and functions used by function
// bodies.
func (a *analyzer) resolveFunctions(file *ast.File) {
	for _, fn := range file.Functions {
		scope := a.root
		if len(fn.Params) > 0 {
			scope = NewScope(ScopeFunction, a.root, fn)
			for _, p := range fn.Params {
				if p.Name != nil {
					scope.Define(&Symbol{Name: p.Name.Name, Kind: SymParameter, Range: p.Name.Range, Node: p, Type: p.Type})
				}
			}
		}
		for _, id := range fn.Names {
			a.resolveName(scope, id, fn)
		}
	}
}
