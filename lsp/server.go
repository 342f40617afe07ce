// Copyright © 2024 The ELPS authors

// Package lsp implements a Language Server Protocol server for tinylisp.
// It provides diagnostics, hover, go-to-definition, references, completion,
// document symbols, folding, signature help, rename and formatting support.
// Clients configure lint checks and formatting through Settings.
package lsp

import (
	"os"
	"sync"

	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/lint"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	glspserver "github.com/tliron/glsp/server"

	protocol "github.com/tliron/glsp/protocol_3_16"
)

const serverName = "tinylisp-lsp"

// Server is the tinylisp language server.
type Server struct {
	handler  protocol.Handler
	glspSrv  *glspserver.Server
	docs     *DocumentStore
	builtins map[string]*analysis.Symbol
	env      *lisp.LEnv
	log      logrus.FieldLogger

	// Client settings and the linter they select.  A linter given with
	// WithLinter is kept regardless of the requested checks.
	settingsMu  sync.Mutex
	config      Settings
	linter      *lint.Linter
	fixedLinter bool

	// Analysis of edited documents waiting for typing to pause.
	pending *debouncer

	// Context for sending notifications (captured from latest request).
	notifyMu sync.Mutex
	notify   glsp.NotifyFunc

	// exitFn is called on the LSP exit notification. Defaults to os.Exit.
	// Overridable for testing.
	exitFn func(int)
}

// Option configures the LSP server.
type Option func(*Server)

// WithEnv makes the names bound in env's root scope known to the server, in
// addition to the builtins.
func WithEnv(env *lisp.LEnv) Option {
	return func(s *Server) { s.env = env }
}

// WithLinter replaces the checks run when diagnostics are published.
func WithLinter(l *lint.Linter) Option {
	return func(s *Server) {
		s.linter = l
		s.fixedLinter = true
	}
}

// WithSettings sets the settings in effect until the client sends its own.
func WithSettings(c Settings) Option {
	return func(s *Server) { s.config = c }
}

// WithLogger sets the logger for server events.
func WithLogger(log logrus.FieldLogger) Option {
	return func(s *Server) { s.log = log }
}

// New creates a new language server.
func New(opts ...Option) *Server {
	s := &Server{
		docs:     NewDocumentStore(),
		pending:  newDebouncer(),
		exitFn:   os.Exit,
		log:      logrus.StandardLogger(),
	}
	for _, o := range opts {
		o(s)
	}
	s.builtins = analysis.Builtins(s.env)
	if s.fixedLinter {
		s.linter.Builtins = s.builtins
	} else if err := s.applySettings(s.config); err != nil {
		s.log.WithError(err).Warn("ignoring settings")
		_ = s.applySettings(Settings{})
	}

	s.handler = protocol.Handler{
		Initialize: s.initialize,
		Shutdown:   s.shutdown,
		Exit:       s.exit,
		SetTrace:   s.setTrace,

		WorkspaceDidChangeConfiguration: s.workspaceDidChangeConfiguration,

		TextDocumentDidOpen:   s.textDocumentDidOpen,
		TextDocumentDidChange: s.textDocumentDidChange,
		TextDocumentDidSave:   s.textDocumentDidSave,
		TextDocumentDidClose:  s.textDocumentDidClose,

		TextDocumentHover:          s.textDocumentHover,
		TextDocumentDefinition:     s.textDocumentDefinition,
		TextDocumentCompletion:     s.textDocumentCompletion,
		TextDocumentReferences:     s.textDocumentReferences,
		TextDocumentDocumentSymbol: s.textDocumentDocumentSymbol,
		TextDocumentRename:         s.textDocumentRename,
		TextDocumentPrepareRename:  s.textDocumentPrepareRename,
		TextDocumentFoldingRange:   s.textDocumentFoldingRange,
		TextDocumentSignatureHelp:  s.textDocumentSignatureHelp,
		TextDocumentFormatting:     s.textDocumentFormatting,
	}

	s.glspSrv = glspserver.NewServer(&s.handler, serverName, false)
	return s
}

// RunStdio starts the server using stdio transport.
func (s *Server) RunStdio() error {
	return s.glspSrv.RunStdio()
}

// RunTCP starts the server listening on the given address.
func (s *Server) RunTCP(addr string) error {
	return s.glspSrv.RunTCP(addr)
}

// initialize handles the LSP initialize request.
func (s *Server) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	s.captureNotify(ctx)
	if params.ClientInfo != nil {
		s.log.WithField("client", params.ClientInfo.Name).Info("initialize")
	}
	if params.InitializationOptions != nil {
		c, err := decodeSettings(params.InitializationOptions)
		if err == nil {
			err = s.applySettings(c)
		}
		if err != nil {
			s.log.WithError(err).Warn("ignoring initialization options")
		}
	}

	capabilities := s.handler.CreateServerCapabilities()

	// Override text document sync to full.
	syncKind := protocol.TextDocumentSyncKindFull
	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    &syncKind,
		Save:      &protocol.SaveOptions{IncludeText: boolPtr(false)},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"("},
	}

	capabilities.RenameProvider = &protocol.RenameOptions{
		PrepareProvider: boolPtr(true),
	}

	capabilities.SignatureHelpProvider = &protocol.SignatureHelpOptions{
		TriggerCharacters:   []string{" "},
		RetriggerCharacters: []string{" ", ")"},
	}

	version := lisp.Version
	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    serverName,
			Version: &version,
		},
	}, nil
}

// shutdown handles the LSP shutdown request.  Pending analysis is dropped.
func (s *Server) shutdown(_ *glsp.Context) error {
	n := s.pending.stop()
	s.log.WithField("pending", n).Info("shutdown")
	return nil
}

// exit handles the LSP exit notification by terminating the process.
func (s *Server) exit(_ *glsp.Context) error {
	s.exitFn(0)
	return nil
}

// setTrace handles the $/setTrace notification (required by some clients).
func (s *Server) setTrace(_ *glsp.Context, _ *protocol.SetTraceParams) error {
	return nil
}

// ensureIndex ensures the document has a current index and returns it.
func (s *Server) ensureIndex(doc *Document) *analysis.Index {
	doc.mu.Lock()
	defer doc.mu.Unlock()
	if doc.index == nil {
		doc.analyze(s.builtins)
	}
	return doc.index
}

// captureNotify stores the notification function from the context for
// async use (e.g., publishing diagnostics after a debounce).
func (s *Server) captureNotify(ctx *glsp.Context) {
	s.notifyMu.Lock()
	s.notify = ctx.Notify
	s.notifyMu.Unlock()
}

// sendNotification sends a notification to the client.
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

func strPtr(s string) *string {
	return &s
}
