// Copyright © 2024 The ELPS authors

package cmd

import (
	"io"
	"os"

	"github.com/luthersystems/tinylisp/diagnostic"
	"github.com/luthersystems/tinylisp/lint"
	"github.com/luthersystems/tinylisp/repl"
)

// newRenderer returns a renderer that reads snippets of named sources from
// sources before falling back to the file system.
func newRenderer(sources map[string]string) *diagnostic.Renderer {
	return &diagnostic.Renderer{
		Color: colorMode(),
		SourceReader: func(name string) ([]byte, error) {
			if text, ok := sources[name]; ok {
				return []byte(text), nil
			}
			return os.ReadFile(name) //nolint:gosec // reads user-specified source files for display
		},
	}
}

// renderError renders an error from the reader or evaluator to w.
func renderError(w io.Writer, err error, sources map[string]string) {
	_ = newRenderer(sources).Render(w, repl.ErrorDiagnostic(err))
}

// lintDiagToDiagnostic converts a lint.Diagnostic to a diagnostic.Diagnostic.
func lintDiagToDiagnostic(ld lint.Diagnostic) diagnostic.Diagnostic {
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityWarning,
		Code:     ld.Analyzer,
		Message:  ld.Message,
	}
	switch ld.Severity {
	case lint.SeverityError:
		d.Severity = diagnostic.SeverityError
	case lint.SeverityInfo:
		d.Severity = diagnostic.SeverityNote
	}
	if ld.Pos.Line > 0 {
		d.Spans = append(d.Spans, diagnostic.Span{
			File: ld.Pos.File,
			Line: ld.Pos.Line,
			Col:  ld.Pos.Col,
		})
	}
	d.Notes = append(d.Notes, ld.Notes...)
	return d
}

// renderLintDiagnostics renders lint diagnostics to w.
func renderLintDiagnostics(w io.Writer, diags []lint.Diagnostic, sources map[string]string) {
	ds := make([]diagnostic.Diagnostic, 0, len(diags))
	for _, ld := range diags {
		ds = append(ds, lintDiagToDiagnostic(ld))
	}
	_ = newRenderer(sources).RenderAll(w, ds)
}
