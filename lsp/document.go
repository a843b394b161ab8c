// Copyright © 2024 The ELPS authors

package lsp

import (
	"context"
	"sort"
	"sync"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/diagnostic"
	"github.com/luthersystems/drl/lint"
	"github.com/luthersystems/drl/parser"
)

// Document represents an open text document tracked by the LSP server.
// The parse result and everything derived from it belong to Version and
// are discarded together when the version changes.
type Document struct {
	mu      sync.Mutex
	URI     string
	Version int32
	Content string

	result    *parser.Result
	diags     []diagnostic.Diagnostic
	validated bool
	semantics *analysis.Result
}

func newDocument(uri string, version int32, content string) *Document {
	return &Document{
		URI:     uri,
		Version: version,
		Content: content,
		result:  parser.Parse(uriToPath(uri), content),
	}
}

// Result returns the parse result of the current version.
func (d *Document) Result() *parser.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.result
}

// diagnostics returns the validation diagnostics of the current version,
// computing them with l on first use.
func (d *Document) diagnostics(l *lint.Linter, settings lint.Settings) []diagnostic.Diagnostic {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.validated {
		d.diags = l.Validate(context.Background(), d.result, settings)
		d.validated = true
	}
	return d.diags
}

// analyze returns the semantic analysis of the current version.
func (d *Document) analyze(cfg *analysis.Config) *analysis.Result {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.semantics == nil {
		d.semantics = analysis.Analyze(d.result.File, cfg)
	}
	return d.semantics
}

// invalidate drops the results derived from the workspace configuration.
func (d *Document) invalidate() {
	d.mu.Lock()
	d.diags = nil
	d.validated = false
	d.semantics = nil
	d.mu.Unlock()
}

// DocumentStore manages open documents with thread-safe access.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

// NewDocumentStore creates an empty document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]*Document)}
}

// Open adds a document to the store and parses it.
func (s *DocumentStore) Open(uri string, version int32, content string) *Document {
	doc := newDocument(uri, version, content)
	s.mu.Lock()
	s.docs[uri] = doc
	s.mu.Unlock()
	return doc
}

// Change replaces a document's content (full sync).  The cached results
// are kept when version and content are unchanged and rebuilt otherwise.
func (s *DocumentStore) Change(uri string, version int32, content string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if doc, ok := s.docs[uri]; ok {
		doc.mu.Lock()
		same := doc.Version == version && doc.Content == content
		doc.mu.Unlock()
		if same {
			return doc
		}
	}
	doc := newDocument(uri, version, content)
	s.docs[uri] = doc
	return doc
}

// Close removes a document from the store.
func (s *DocumentStore) Close(uri string) {
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
}

// Get retrieves a document by URI. Returns nil if not found.
func (s *DocumentStore) Get(uri string) *Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.docs[uri]
}

// All returns the open documents ordered by URI.
func (s *DocumentStore) All() []*Document {
	s.mu.RLock()
	docs := make([]*Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()
	sort.Slice(docs, func(i, j int) bool { return docs[i].URI < docs[j].URI })
	return docs
}
