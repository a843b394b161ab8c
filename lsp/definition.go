// Copyright © 2024 The ELPS authors

package lsp

import (
	"path/filepath"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/analysis"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	sem := doc.analyze(s.analysisConfig(doc.URI))
	sym := sem.SymbolAt(fromLSPPosition(params.Position))
	if sym == nil || sym.Kind == analysis.SymBuiltin {
		// Builtins have no navigable source.
		return nil, nil
	}
	return protocol.Location{
		URI:   s.resolveURI(params.TextDocument.URI, sym),
		Range: toLSPRange(sym.Range),
	}, nil
}

// resolveURI returns the URI of the document declaring sym.
func (s *Server) resolveURI(currentURI string, sym *analysis.Symbol) string {
	if !sym.External || sym.File == "" || sym.File == uriToPath(currentURI) {
		return currentURI
	}
	path := sym.File
	if !filepath.IsAbs(path) && s.rootPath != "" {
		path = filepath.Join(s.rootPath, path)
	}
	return pathToURI(path)
}
