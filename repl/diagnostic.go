// Copyright © 2024 The ELPS authors

package repl

import (
	"io"

	"github.com/luthersystems/tinylisp/diagnostic"
	"github.com/luthersystems/tinylisp/lisp"
)

// renderError renders err using the diagnostic renderer.  The renderer
// reads the source snippet of REPL input from the session buffer.
func renderError(w io.Writer, r *diagnostic.Renderer, err error) {
	_ = r.Render(w, ErrorDiagnostic(err))
}

// ErrorDiagnostic converts an error returned by a reader or the evaluator to
// a Diagnostic for display.  Call frames become notes, innermost first.
func ErrorDiagnostic(err error) diagnostic.Diagnostic {
	lerr, ok := lisp.GoError(err)
	if !ok {
		return diagnostic.Diagnostic{
			Severity: diagnostic.SeverityError,
			Message:  err.Error(),
		}
	}
	d := diagnostic.Diagnostic{
		Severity: diagnostic.SeverityError,
		Code:     string(lerr.Condition),
		Message:  lerr.ErrorMessage(),
	}

	if src := lerr.Source; src != nil && src.Pos >= 0 {
		span := diagnostic.Span{
			File: src.File,
			Line: src.Line,
			Col:  src.Col,
		}
		// Prefer physical path for reading source
		if src.Path != "" {
			span.File = src.Path
		}
		d.Spans = append(d.Spans, span)
	}

	if stack := lerr.Stack; stack != nil {
		for i := len(stack.Frames) - 1; i >= 0; i-- {
			frame := &stack.Frames[i]
			loc := "unknown"
			if frame.Source != nil && frame.Source.Pos >= 0 {
				loc = frame.Source.String()
			}
			d.Notes = append(d.Notes, "in "+frame.Name+" at "+loc)
		}
	}
	return d
}
