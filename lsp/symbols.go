// Copyright © 2024 The ELPS authors

package lsp

import (
	"sort"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol request.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	sem := doc.analyze(s.analysisConfig(doc.URI))
	return documentSymbols(doc.Result().File, sem), nil
}

// documentSymbols lists the declarations of f in source order.  Rules
// carry their variables as children and declared types their fields.
func documentSymbols(f *ast.File, sem *analysis.Result) []protocol.DocumentSymbol {
	var symbols []protocol.DocumentSymbol
	add := func(name *ast.Ident, full position.Range, kind protocol.SymbolKind, detail string, children []protocol.DocumentSymbol) {
		if name == nil {
			return
		}
		sym := protocol.DocumentSymbol{
			Name:           name.Name,
			Kind:           kind,
			Range:          toLSPRange(full),
			SelectionRange: toLSPRange(name.Range),
			Children:       children,
		}
		if detail != "" {
			sym.Detail = &detail
		}
		symbols = append(symbols, sym)
	}

	for _, g := range f.Globals {
		add(g.Name, g.Range, protocol.SymbolKindVariable, g.Type, nil)
	}
	for _, fn := range f.Functions {
		add(fn.Name, fn.Range, protocol.SymbolKindFunction, fn.ReturnType, nil)
	}
	for _, d := range f.Declares {
		var fields []protocol.DocumentSymbol
		for _, fld := range d.Fields {
			if fld.Name == nil {
				continue
			}
			typ := fld.Type
			fields = append(fields, protocol.DocumentSymbol{
				Name:           fld.Name.Name,
				Detail:         &typ,
				Kind:           protocol.SymbolKindField,
				Range:          toLSPRange(fld.Range),
				SelectionRange: toLSPRange(fld.Name.Range),
			})
		}
		add(d.Name, d.Range, protocol.SymbolKindClass, d.Form, fields)
	}
	for _, q := range f.Queries {
		add(q.Name, q.Range, protocol.SymbolKindInterface, "query", nil)
	}
	for _, r := range f.Rules {
		detail := ""
		if r.Extends != nil {
			detail = "extends " + r.Extends.Name
		}
		add(r.Name, r.Range, protocol.SymbolKindEvent, detail, variableSymbols(sem.RuleScope(r)))
	}

	sort.SliceStable(symbols, func(i, j int) bool {
		a, b := symbols[i].Range.Start, symbols[j].Range.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Character < b.Character
	})
	return symbols
}

// variableSymbols lists the variables declared in scope in source order.
func variableSymbols(scope *analysis.Scope) []protocol.DocumentSymbol {
	if scope == nil {
		return nil
	}
	vars := scope.Variables()
	sort.Slice(vars, func(i, j int) bool { return vars[i].Range.Start.Before(vars[j].Range.Start) })
	var out []protocol.DocumentSymbol
	for _, v := range vars {
		if v.Scope == nil || v.Scope.Rule() != scope.Rule() {
			continue // inherited from the parent rule
		}
		sym := protocol.DocumentSymbol{
			Name:           v.Name,
			Kind:           protocol.SymbolKindVariable,
			Range:          toLSPRange(v.Range),
			SelectionRange: toLSPRange(v.Range),
		}
		if v.Type != "" {
			typ := v.Type
			sym.Detail = &typ
		}
		out = append(out, sym)
	}
	return out
}
