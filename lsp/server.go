// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for DRL.
// It publishes validation diagnostics and provides document symbols,
// folding ranges, hover, go-to-definition and references for variables.
package lsp

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/tliron/commonlog"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"

	"github.com/luthersystems/drl/analysis"
	"github.com/luthersystems/drl/lint"
)

const serverName = "drl-lsp"

const defaultDebounce = 300 * time.Millisecond

// Server is the DRL language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	rootURI  string
	rootPath string
	log      commonlog.Logger

	// Workspace analysis configuration built on first use.
	analysisCfg   *analysis.Config
	analysisCfgMu sync.RWMutex
	indexOnce     sync.Once

	analyzers []*lint.Analyzer
	settings  lint.Settings
	builtins  []string

	// Pending validations of changed documents, by URI.
	debounceMu sync.Mutex
	debounce   map[string]*time.Timer
	delay      time.Duration

	// Notify function of the most recent request.
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn terminates the process on exit; tests replace it.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithSettings selects the validation phases and the diagnostic limit.
func WithSettings(settings lint.Settings) Option {
	return func(s *Server) { s.settings = settings }
}

// WithAnalyzers replaces the default set of checks.
func WithAnalyzers(analyzers []*lint.Analyzer) Option {
	return func(s *Server) { s.analyzers = analyzers }
}

// WithBuiltins declares extra context variables available in rule
// actions.
func WithBuiltins(names []string) Option {
	return func(s *Server) { s.builtins = names }
}

// WithDebounce sets the delay between the last change to a document and
// its validation.
func WithDebounce(d time.Duration) Option {
	return func(s *Server) { s.delay = d }
}

// New creates a new DRL LSP server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:      NewDocumentStore(),
		log:       commonlog.GetLogger(serverName),
		analyzers: lint.DefaultAnalyzers(),
		settings:  lint.DefaultSettings(),
		debounce:  make(map[string]*time.Timer),
		delay:     defaultDebounce,
		exitFn:    os.Exit,
	}
	for _, o := range opts {
		o(s)
	}

	s.handler = protocol.Handler{
		Initialize:  s.initialize,
		Initialized: s.initialized,
		Shutdown:    s.shutdown,
		Exit:        s.exit,
		SetTrace:    s.setTrace,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentFoldingRange:   s.textDocumentFoldingRange,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio serves a single client over stdin and stdout.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP serves clients connecting to addr.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize records the workspace root and advertises full document sync.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)

	if params.RootURI != nil {
		s.rootURI = *params.RootURI
		s.rootPath = uriToPath(s.rootURI)
	} else if params.RootPath != nil {
		s.rootPath = *params.RootPath
		s.rootURI = pathToURI(s.rootPath)
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Documents are always revalidated from their full text.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	version := "0.1.0"
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// initialized builds the workspace index once the client is ready and
// revalidates the documents opened in the meantime.
func (s *Server) initialized(ctx *glsp.Context, _ *protocol.InitializedParams) error {
	s.captureNotify(ctx)
	go func() {
		defer func() { _ = recover() }() // don't crash the server on scan panic
		s.ensureWorkspaceIndex()
		s.revalidateOpenDocuments()
	}()
	return nil
}

// shutdown stops pending validations.
func (s *Server) shutdown(_ *glsp.Context) error {
	s.debounceMu.Lock()
	for _, t := range s.debounce {
		t.Stop()
	}
	s.debounce = make(map[string]*time.Timer)
	s.debounceMu.Unlock()

	return nil
}

// exit terminates the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace accepts $/setTrace, which some clients send unconditionally.
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureWorkspaceIndex guarantees the workspace index is built at least
// once.  It is safe to call from any goroutine.
func (s *Server) ensureWorkspaceIndex() {
	s.indexOnce.Do(s.buildWorkspaceIndex)
}

// buildWorkspaceIndex scans the workspace root for declarations in other
// files, so duplicate rule names across the package are reported.
func (s *Server) buildWorkspaceIndex() {
	cfg := &analysis.Config{Builtins: s.builtins}
	if s.rootPath != "" {
		syms, err := analysis.ScanWorkspace(context.Background(), s.rootPath)
		if err != nil {
			s.log.Warningf("scanning workspace %s: %v", s.rootPath, err)
		} else {
			s.log.Infof("indexed %d declarations in %s", len(syms), s.rootPath)
			cfg.ExtraGlobals = syms
		}
	}

	s.analysisCfgMu.Lock()
	s.analysisCfg = cfg
	s.analysisCfgMu.Unlock()
}

// revalidateOpenDocuments drops the cached diagnostics of every open
// document and publishes them again with the current workspace config.
func (s *Server) revalidateOpenDocuments() {
	for _, doc := range s.docs.All() {
		doc.invalidate()
		s.validateAndPublish(doc)
	}
}

// linter returns a linter configured with the workspace declarations.
func (s *Server) linter() *lint.Linter {
	s.analysisCfgMu.RLock()
	cfg := s.analysisCfg
	s.analysisCfgMu.RUnlock()
	return &lint.Linter{Analyzers: s.analyzers, Analysis: cfg}
}

// analysisConfig returns a copy of the workspace analysis config with the
// filename set for the given document.
func (s *Server) analysisConfig(uri string) *analysis.Config {
	s.ensureWorkspaceIndex()
	s.analysisCfgMu.RLock()
	base := s.analysisCfg
	s.analysisCfgMu.RUnlock()

	cfg := &analysis.Config{Filename: uriToPath(uri)}
	if base != nil {
		cfg.ExtraGlobals = base.ExtraGlobals
		cfg.Builtins = base.Builtins
	}
	return cfg
}

// captureNotify remembers ctx.Notify so that debounced validations can
// publish after the request has returned.
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

func (s *Server) sendNotification(method string, params any) {
	s.notifyMu.Lock()
	fn := s.notify
	s.notifyMu.Unlock()
	if fn != nil {
		fn(method, params)
	}
}

func boolPtr(b bool) *bool {
	return &b
}
