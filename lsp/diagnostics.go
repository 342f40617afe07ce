// Copyright © 2024 The ELPS authors

package lsp

import (
	"time"

	"github.com/luthersystems/tinylisp/lint"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/sirupsen/logrus"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

const (
	debounceDelay    = 300 * time.Millisecond
	diagnosticSource = "tinylisp"
)

// textDocumentDidOpen handles the textDocument/didOpen notification.
func (s *Server) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.captureNotify(ctx)
	doc := s.docs.Open(
		params.TextDocument.URI,
		int32(params.TextDocument.Version),
		params.TextDocument.Text,
	)
	s.analyzeAndPublish(doc)
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

	uri := doc.URI
	s.pending.schedule(uri, s.settings().debounce(), func() {
		defer s.recoverAnalysis(uri)
		if d := s.docs.Get(uri); d != nil {
			s.analyzeAndPublish(d)
		}
	})
	return nil
}

// recoverAnalysis keeps a panic in deferred analysis from taking down the
// server.
func (s *Server) recoverAnalysis(uri string) {
	if r := recover(); r != nil {
		s.log.WithFields(logrus.Fields{"uri": uri, "panic": r}).Error("analysis failed")
	}
}

// textDocumentDidSave handles the textDocument/didSave notification.
func (s *Server) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.captureNotify(ctx)
	s.pending.cancel(params.TextDocument.URI)

	doc := s.docs.Get(params.TextDocument.URI)
	if doc != nil {
		s.analyzeAndPublish(doc)
	}
	return nil
}

// textDocumentDidClose handles the textDocument/didClose notification.
func (s *Server) textDocumentDidClose(_ *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.pending.cancel(params.TextDocument.URI)

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})

	s.docs.Close(params.TextDocument.URI)
	return nil
}

// analyzeAndPublish indexes a document and publishes parse errors and lint
// findings to the client.
func (s *Server) analyzeAndPublish(doc *Document) {
	idx := s.ensureIndex(doc)

	doc.mu.Lock()
	parseErrs := doc.parseErrs
	forms := doc.forms
	uri := doc.URI
	doc.mu.Unlock()

	diags := []protocol.Diagnostic{}
	for _, err := range parseErrs {
		diags = append(diags, convertParseError(err))
	}
	lintDiags, err := s.currentLinter().LintForms(uriToPath(uri), forms, idx)
	if err != nil {
		s.log.WithError(err).WithField("uri", uri).Warn("lint failed")
	}
	for _, d := range lintDiags {
		diags = append(diags, convertLintDiagnostic(d))
	}
	s.log.WithFields(logrus.Fields{
		"uri":         uri,
		"diagnostics": len(diags),
	}).Debug("publish diagnostics")

	s.sendNotification(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diags,
	})
}

// convertLintDiagnostic converts a lint.Diagnostic to an LSP Diagnostic
// covering the first character of its position.
func convertLintDiagnostic(d lint.Diagnostic) protocol.Diagnostic {
	var rng protocol.Range
	if d.Pos.Line > 0 {
		rng = toLSPRange(&token.Location{File: d.Pos.File, Line: d.Pos.Line, Col: d.Pos.Col}, 1)
	}
	return protocol.Diagnostic{
		Range:    rng,
		Severity: severity(mapLintSeverity(d.Severity)),
		Source:   strPtr(diagnosticSource),
		Code:     &protocol.IntegerOrString{Value: d.Analyzer},
		Message:  d.Message,
	}
}

// mapLintSeverity converts a lint.Severity to a protocol.DiagnosticSeverity.
func mapLintSeverity(sev lint.Severity) protocol.DiagnosticSeverity {
	switch sev {
	case lint.SeverityError:
		return protocol.DiagnosticSeverityError
	case lint.SeverityWarning:
		return protocol.DiagnosticSeverityWarning
	case lint.SeverityInfo:
		return protocol.DiagnosticSeverityInformation
	default:
		return protocol.DiagnosticSeverityWarning
	}
}

func severity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity {
	return &s
}

// convertParseError converts a reader error to an LSP diagnostic coded by
// its condition.  The message keeps the location the error carries.
func convertParseError(err error) protocol.Diagnostic {
	d := protocol.Diagnostic{
		Severity: severity(protocol.DiagnosticSeverityError),
		Source:   strPtr(diagnosticSource),
		Message:  err.Error(),
	}
	lerr, ok := lisp.GoError(err)
	if !ok {
		return d
	}
	d.Code = &protocol.IntegerOrString{Value: string(lerr.Condition)}
	if lerr.Source != nil && lerr.Source.Line > 0 {
		d.Range = toLSPRange(lerr.Source, 1)
	}
	return d
}
