// Copyright © 2024 The ELPS authors

// Package diagnostic renders errors and lint findings as annotated source
// snippets for terminal output.  It does not depend on the lisp package;
// callers convert their errors to a Diagnostic.
package diagnostic

// Severity indicates the severity level of a diagnostic.
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityNote
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityNote:
		return "note"
	default:
		return "unknown"
	}
}

// Span marks an expression in a source file.
type Span struct {
	File string // path for reading source; display name if unreadable
	Line int    // 1-based line number
	Col  int    // 1-based start column, counted in runes

	// EndCol is the 1-based column of the last marked rune.  When zero the
	// whole expression starting at Col is marked: an atom, or a list up to
	// its closing paren (or the end of the line when the list continues on
	// later lines).
	EndCol int

	Label string // text shown after the underline
}

// Diagnostic is a single error, warning or note.  Code names the error
// condition or lint check and is shown next to the severity.
type Diagnostic struct {
	Severity Severity
	Code     string
	Message  string
	Spans    []Span
	Notes    []string // "= note:" lines, e.g. call stack frames
}
