// Copyright © 2024 The ELPS authors

// Package lint provides static analysis for tinylisp source files.
//
// The linter is modeled after go vet: each check is an independent Analyzer
// that receives the parsed forms of a file and reports diagnostics.  The
// framework handles parsing, running analyzers, collecting results, and
// formatting output.
package lint

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
)

// Severity ranks lint findings.  Higher values are less severe.
type Severity int

const (
	severityUnset Severity = iota // analyzer default
	SeverityError
	SeverityWarning
	SeverityInfo
)

var severityNames = map[Severity]string{
	SeverityError:   "error",
	SeverityWarning: "warning",
	SeverityInfo:    "info",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSeverity returns the severity called name.
func ParseSeverity(name string) (Severity, error) {
	for s, n := range severityNames {
		if n == name {
			return s, nil
		}
	}
	return severityUnset, fmt.Errorf("unknown severity: %q", name)
}

// MarshalJSON writes the severity name.  An unset severity is a warning.
func (s Severity) MarshalJSON() ([]byte, error) {
	if s == severityUnset {
		s = SeverityWarning
	}
	return json.Marshal(s.String())
}

func (s *Severity) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// Analyzer defines a single lint check.
type Analyzer struct {
	// Name is a short identifier for this check (e.g. "if-arity").
	Name string

	// Doc is a human-readable description. The first line is a short summary.
	Doc string

	// Severity is the default severity for diagnostics from this analyzer.
	Severity Severity

	// Run executes the check. It should call pass.Report() for each finding.
	Run func(pass *Pass) error
}

// Pass provides context to a running analyzer.
type Pass struct {
	// Analyzer is the currently running check.
	Analyzer *Analyzer

	// Filename is the source file being analyzed.
	Filename string

	// Exprs are the top-level parsed expressions.
	Exprs []*lisp.LVal

	// Semantics holds the scope and reference index of Exprs.
	Semantics *analysis.Index

	diagnostics []Diagnostic
}

// Report records a diagnostic finding.
func (p *Pass) Report(d Diagnostic) {
	d.Analyzer = p.Analyzer.Name
	if d.Severity == severityUnset {
		d.Severity = p.Analyzer.Severity
	}
	p.diagnostics = append(p.diagnostics, d)
}

// Reportf is a convenience for reporting a diagnostic at a position.
func (p *Pass) Reportf(source *token.Location, format string, args ...interface{}) {
	d := Diagnostic{
		Message: fmt.Sprintf(format, args...),
	}
	if source != nil && source.Pos >= 0 {
		d.Pos = Position{File: source.File, Line: source.Line, Col: source.Col}
	}
	p.Report(d)
}

// Diagnostic is a single reported problem.
type Diagnostic struct {
	// Pos is the source location of the problem.
	Pos Position `json:"pos"`

	// Message is a human-readable description of the problem.
	Message string `json:"message"`

	// Analyzer is the name of the check that found this problem.
	Analyzer string `json:"analyzer"`

	// Severity is the severity level of the diagnostic.
	Severity Severity `json:"severity"`

	// Notes are optional hint text lines for the user.
	Notes []string `json:"notes,omitempty"`
}

// Position identifies a location in source code.
type Position struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Col  int    `json:"col,omitempty"`
}

// String returns the position in file:line:col format.
func (p Position) String() string {
	if p.Line == 0 {
		return p.File
	}
	if p.Col > 0 {
		return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Col)
	}
	return fmt.Sprintf("%s:%d", p.File, p.Line)
}

// String returns the diagnostic in go vet style, "file:line:col: message
// (analyzer)", followed by its notes.
func (d Diagnostic) String() string {
	s := fmt.Sprintf("%s: %s (%s)", d.Pos, d.Message, d.Analyzer)
	for _, n := range d.Notes {
		s += "\n  = note: " + n
	}
	return s
}

// Linter runs a set of analyzers over source files.
type Linter struct {
	Analyzers []*Analyzer

	// Builtins are the names bound before a file is evaluated.  When nil the
	// default builtins are used.
	Builtins map[string]*analysis.Symbol

	// Severities overrides the severity of findings by analyzer name.
	Severities map[string]Severity

	// MinSeverity drops findings less severe than it.  Zero keeps all.
	MinSeverity Severity
}

// LintFile parses and analyzes a single source file and returns all
// diagnostics.  The first parse error is returned as an error.
func (l *Linter) LintFile(source []byte, filename string) ([]Diagnostic, error) {
	f := analysis.ParseFile(filename, string(source))
	if len(f.ParseErrs) > 0 {
		return nil, f.ParseErrs[0]
	}
	return l.LintForms(filename, f.Forms, f.Analyze(l.Builtins))
}

// LintForms runs the analyzers over forms that have already been parsed and
// indexed.  Findings are ordered by position.
func (l *Linter) LintForms(filename string, exprs []*lisp.LVal, semantics *analysis.Index) ([]Diagnostic, error) {
	if semantics == nil {
		semantics = analysis.Analyze(exprs, nil, l.Builtins)
	}
	var all []Diagnostic
	for _, analyzer := range l.Analyzers {
		pass := &Pass{
			Analyzer:  analyzer,
			Filename:  filename,
			Exprs:     exprs,
			Semantics: semantics,
		}
		if err := analyzer.Run(pass); err != nil {
			return nil, fmt.Errorf("%s: analyzer %s: %w", filename, analyzer.Name, err)
		}
		for _, d := range pass.diagnostics {
			if d.Pos.File == "" {
				d.Pos.File = filename
			}
			if sev, ok := l.Severities[d.Analyzer]; ok {
				d.Severity = sev
			}
			if l.MinSeverity != severityUnset && d.Severity > l.MinSeverity {
				continue
			}
			all = append(all, d)
		}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Pos.less(all[j].Pos)
	})
	return all, nil
}

func (p Position) less(q Position) bool {
	if p.File != q.File {
		return p.File < q.File
	}
	if p.Line != q.Line {
		return p.Line < q.Line
	}
	return p.Col < q.Col
}

// Summary describes the number of findings of each severity, as in
// "3 problems (1 error, 2 warnings)".
func Summary(diags []Diagnostic) string {
	if len(diags) == 0 {
		return "no problems"
	}
	counts := make(map[Severity]int)
	for _, d := range diags {
		sev := d.Severity
		if sev == severityUnset {
			sev = SeverityWarning
		}
		counts[sev]++
	}
	var parts []string
	for _, sev := range []Severity{SeverityError, SeverityWarning, SeverityInfo} {
		if n := counts[sev]; n > 0 {
			parts = append(parts, plural(n, sev.String()))
		}
	}
	return fmt.Sprintf("%s (%s)", plural(len(diags), "problem"), strings.Join(parts, ", "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	if noun == "info" {
		return fmt.Sprintf("%d %s", n, noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// FormatText writes diagnostics in go vet text format.
func FormatText(w io.Writer, diags []Diagnostic) {
	for _, d := range diags {
		fmt.Fprintln(w, d.String()) //nolint:errcheck // best-effort output to writer
	}
}

// FormatJSON writes diagnostics as JSON.
func FormatJSON(w io.Writer, diags []Diagnostic) error {
	if diags == nil {
		diags = []Diagnostic{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(diags)
}

// DefaultAnalyzers returns the built-in set of lint checks.
func DefaultAnalyzers() []*Analyzer {
	return []*Analyzer{
		AnalyzerDefStructure,
		AnalyzerFnStructure,
		AnalyzerIfArity,
		AnalyzerBuiltinArity,
		AnalyzerSpecialRedefinition,
		AnalyzerConstantCondition,
		AnalyzerUndefinedSymbol,
		AnalyzerCallArity,
	}
}

// SelectAnalyzers returns the default analyzers named in names.  An empty
// list selects all of them.
func SelectAnalyzers(names []string) ([]*Analyzer, error) {
	all := DefaultAnalyzers()
	if len(names) == 0 {
		return all, nil
	}
	byName := make(map[string]*Analyzer, len(all))
	for _, a := range all {
		byName[a.Name] = a
	}
	var selected []*Analyzer
	for _, name := range names {
		a, ok := byName[name]
		if !ok {
			return nil, fmt.Errorf("unknown analyzer: %q", name)
		}
		selected = append(selected, a)
	}
	return selected, nil
}

// AnalyzerNames returns the names of the default analyzers.
func AnalyzerNames() []string {
	var names []string
	for _, a := range DefaultAnalyzers() {
		names = append(names, a.Name)
	}
	return names
}

// AnalyzerDoc returns one line per default analyzer with the first line of
// its documentation.
func AnalyzerDoc() string {
	var b strings.Builder
	for _, a := range DefaultAnalyzers() {
		summary, _, _ := strings.Cut(a.Doc, "\n")
		fmt.Fprintf(&b, "  %-22s %s\n", a.Name, summary)
	}
	return b.String()
}
