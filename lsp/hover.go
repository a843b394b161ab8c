// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/ast"
	"github.com/luthersystems/drl/parser/position"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	pos := fromLSPPosition(params.Position)
	file := doc.Result().File

	if a := attributeAt(file, pos); a != nil {
		if spec, ok := ast.LookupAttribute(a.Name.Name); ok {
			return hover(buildAttributeHover(spec), a.Name.Range), nil
		}
		return nil, nil
	}

	sem := doc.analyze(s.analysisConfig(doc.URI))
	sym := sem.SymbolAt(pos)
	if sym == nil {
		return nil, nil
	}
	return hover(buildSymbolHover(sym), position.Range{}), nil
}

func hover(content string, r position.Range) *protocol.Hover {
	h := &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: content,
		},
	}
	if !r.IsZero() {
		lr := toLSPRange(r)
		h.Range = &lr
	}
	return h
}

// attributeAt returns the attribute whose name covers pos, or nil.
func attributeAt(f *ast.File, pos position.Position) *ast.Attribute {
	attrs := append([]*ast.Attribute(nil), f.Attributes...)
	for _, r := range f.Rules {
		attrs = append(attrs, r.Attributes...)
	}
	for _, a := range attrs {
		if a.Name != nil && a.Name.Range.Contains(pos) {
			return a
		}
	}
	return nil
}

// buildAttributeHover builds Markdown hover text for a rule attribute.
func buildAttributeHover(spec ast.AttributeSpec) string {
	return fmt.Sprintf("**attribute** `%s` (%s)\n\n%s", spec.Name, spec.Kind, spec.Doc)
}

// buildSymbolHover builds Markdown hover text for a symbol.
func buildSymbolHover(sym *analysis.Symbol) string {
	var sb strings.Builder

	// Header: **kind** `name`
	fmt.Fprintf(&sb, "**%s** `%s`", symbolKindLabel(sym.Kind), sym.Name)

	if sym.Type != "" {
		fmt.Fprintf(&sb, "\n\n```drl\n%s : %s\n```", sym.Name, sym.Type)
	}
	if sym.DocString != "" {
		fmt.Fprintf(&sb, "\n\n%s", sym.DocString)
	}

	switch {
	case sym.External:
		fmt.Fprintf(&sb, "\n\n*Declared in %s:%s*", sym.File, sym.Range.Start)
	case sym.Kind == analysis.SymBuiltin:
	default:
		where := ""
		if r := sym.Scope.Rule(); r != nil && r.Name != nil {
			where = fmt.Sprintf(" in rule %q", r.Name.Name)
		}
		fmt.Fprintf(&sb, "\n\n*Declared at %s%s, used %d times*", sym.Range.Start, where, sym.References)
	}
	return sb.String()
}

func symbolKindLabel(kind analysis.SymbolKind) string {
	switch kind {
	case analysis.SymBinding:
		return "pattern binding"
	case analysis.SymFieldBinding:
		return "field binding"
	case analysis.SymResultBinding:
		return "accumulate result"
	case analysis.SymParameter:
		return "parameter"
	case analysis.SymGlobal:
		return "global"
	case analysis.SymFunction:
		return "function"
	case analysis.SymRule:
		return "rule"
	case analysis.SymQuery:
		return "query"
	case analysis.SymType:
		return "type"
	case analysis.SymBuiltin:
		return "builtin"
	default:
		return "symbol"
	}
}
