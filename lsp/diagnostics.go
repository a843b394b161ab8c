// Copyright © 2024 The ELPS authors

package lsp

import (
	"time"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/diagnostic"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.validateAndPublish(doc)
	return nil
}

// textDocumentDidChange handles the textDocument/didChange notification.
func (s *Server) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.captureNotify(ctx)
	// With full sync, the last content change is the complete document.
	var content string
	for _, change := range params.ContentChanges {
		switch c := change.(type) {
		case protocol.TextDocumentContentChangeEventWhole:
			content = c.Text
		case protocol.TextDocumentContentChangeEvent:
			content = c.Text
		}
	}

	doc := s.docs.Change(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		content,
	)

	// Debounce: delay validation to avoid thrashing during rapid edits.
	uri := doc.URI
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
	}
	s.debounce[uri] = time.AfterFunc(s.delay, func() {
		defer func() { _ = recover() }() // don't crash the server on validation panic
		if d := s.docs.Get(uri); d != nil {
			s.validateAndPublish(d)
		}
	})
	s.debounceMu.Unlock()
	return nil
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	// Cancel any pending debounce and publish immediately.
	s.cancelDebounce(params.TextDocument.URI)
	if doc := s.docs.Get(params.TextDocument.URI); doc != nil {
		s.validateAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.cancelDebounce(params.TextDocument.URI)

	// Clear diagnostics for the closed file.
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

func (s *Server) cancelDebounce(uri string) {
	s.debounceMu.Lock()
	if t, ok := s.debounce[uri]; ok {
		t.Stop()
		delete(s.debounce, uri)
	}
	s.debounceMu.Unlock()
}

// validateAndPublish validates a document and publishes the resulting
// diagnostics to the client.
func (s *Server) validateAndPublish(doc *Document) {
	s.ensureWorkspaceIndex()
	diags := doc.diagnostics(s.linter(), s.settings)

	out := make([]protocol.Diagnostic, 0, len(diags))
	for _, d := range diags {
		out = append(out, convertDiagnostic(doc.URI, d))
	}
	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Diagnostics: out,
	})
}

// convertDiagnostic converts a diagnostic to an LSP Diagnostic.  Notes
// become related information at the diagnostic's own range.
func convertDiagnostic(uri string, d diagnostic.Diagnostic) protocol.Diagnostic {
	sev := mapSeverity(d.Severity)
	source := "drl"
	if d.Source != "" {
		source = "drl-" + d.Source
	}
	out := protocol.Diagnostic{
		Range:    toLSPRange(d.Range),
		Severity: &sev,
		Source:   &source,
		Message:  d.Message,
	}
	if d.Code != "" {
		out.Code = &protocol.IntegerOrString{Value: d.Code}
	}
	for _, n := range d.Notes {
		out.RelatedInformation = append(out.RelatedInformation, protocol.DiagnosticRelatedInformation{
			Location: protocol.Location{URI: uri, Range: out.Range},
			Message:  n,
		})
	}
	return out
}

// mapSeverity converts a diagnostic severity to an LSP severity.
func mapSeverity(sev diagnostic.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case diagnostic.SeverityError:
		return protocol.DiagnosticSeverityError
	case diagnostic.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case diagnostic.SeverityInformation:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}
