// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/analysis"
)

// textDocumentReferences handles the textDocument/references request.
// Only references within the document are returned.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	sem := doc.analyze(s.analysisConfig(doc.URI))
	sym := sem.SymbolAt(fromLSPPosition(params.Position))
	if sym == nil {
		return nil, nil
	}

	var locs []protocol.Location
	if params.Context.IncludeDeclaration && !sym.External && sym.Kind != analysis.SymBuiltin {
		locs = append(locs, protocol.Location{URI: params.TextDocument.URI, Range: toLSPRange(sym.Range)})
	}
	for _, ref := range sem.ReferencesTo(sym) {
		locs = append(locs, protocol.Location{URI: params.TextDocument.URI, Range: toLSPRange(ref.Range)})
	}
	return locs, nil
}
