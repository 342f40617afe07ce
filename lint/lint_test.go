// Copyright © 2024 The ELPS authors

package lint

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lintSource runs all default analyzers on the given source and returns diagnostics.
func lintSource(t *testing.T, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: DefaultAnalyzers()}
	diags, err := l.LintFile([]byte(source), "test.lisp")
	require.NoError(t, err)
	return diags
}

// lintCheck runs a single analyzer on the given source.
func lintCheck(t *testing.T, analyzer *Analyzer, source string) []Diagnostic {
	t.Helper()
	l := &Linter{Analyzers: []*Analyzer{analyzer}}
	diags, err := l.LintFile([]byte(source), "test.lisp")
	require.NoError(t, err)
	return diags
}

func messages(diags []Diagnostic) []string {
	var msgs []string
	for _, d := range diags {
		msgs = append(msgs, d.Message)
	}
	return msgs
}

// assertHasDiag checks that at least one diagnostic contains the given substring.
func assertHasDiag(t *testing.T, diags []Diagnostic, substr string) {
	t.Helper()
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			return
		}
	}
	t.Errorf("expected diagnostic containing %q, got: %v", substr, messages(diags))
}

func TestCleanProgram(t *testing.T) {
	source := `(def double (fn (x) (+ x x)))
(def abs (fn (x) (if (< x 0) (- x) x)))
(double (abs -3))`
	assert.Empty(t, lintSource(t, source))
}

func TestParseError(t *testing.T) {
	l := &Linter{Analyzers: DefaultAnalyzers()}
	_, err := l.LintFile([]byte("(def x 1))"), "test.lisp")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected token )")
}

func TestDefStructure(t *testing.T) {
	diags := lintCheck(t, AnalyzerDefStructure, "(def)\n(def x)\n(def 1 2)\n(def x 1 2)\n(def y 1)")
	assert.Equal(t, []string{
		"def requires a symbol and a value (got 0 arguments)",
		"def requires a symbol and a value (got 1 arguments)",
		"def name must be a symbol, got number",
		"def requires a symbol and a value (got 3 arguments)",
	}, messages(diags))
	assert.Equal(t, Position{File: "test.lisp", Line: 3, Col: 6}, diags[2].Pos)
	assert.Equal(t, SeverityError, diags[0].Severity)
	assert.Equal(t, "def-structure", diags[0].Analyzer)
}

func TestFnStructure(t *testing.T) {
	diags := lintCheck(t, AnalyzerFnStructure, "(fn (x))\n(fn x x)\n(fn (a 1) a)\n(fn (a a) a)")
	assert.Equal(t, []string{
		"fn requires a parameter list and a body (got 1 arguments)",
		"fn parameters must be a list, got symbol",
		"fn parameter 2 must be a symbol, got number",
		"duplicate fn parameter a",
	}, messages(diags))
	assert.Equal(t, SeverityWarning, diags[3].Severity)
	assert.Equal(t, 4, diags[3].Pos.Line)
	assert.Equal(t, 8, diags[3].Pos.Col)
}

func TestIfArity(t *testing.T) {
	diags := lintCheck(t, AnalyzerIfArity, "(if true 1)\n(if true 1 2 3)\n(if true 1 2)")
	require.Len(t, diags, 2)
	assertHasDiag(t, diags, "got too few (2)")
	assertHasDiag(t, diags, "got too many (4)")
}

func TestBuiltinArity(t *testing.T) {
	diags := lintCheck(t, AnalyzerBuiltinArity, "(-)\n(+ 1 true)\n(< false 2)\n(- 1)")
	assert.Equal(t, []string{
		"- requires at least 1 argument",
		"argument 2 of + is a boolean, not a number",
		"argument 1 of < is a boolean, not a number",
	}, messages(diags))
}

func TestBuiltinArityRebound(t *testing.T) {
	diags := lintCheck(t, AnalyzerBuiltinArity, "(def - (fn (x) x))\n(-)")
	assert.Empty(t, diags)
}

func TestSpecialRedefinition(t *testing.T) {
	diags := lintCheck(t, AnalyzerSpecialRedefinition, "(def if 1)\n(def + 1)")
	assert.Equal(t, []string{"def of special operator if has no effect on calls"}, messages(diags))
	assert.Equal(t, SeverityWarning, diags[0].Severity)
}

func TestConstantCondition(t *testing.T) {
	diags := lintCheck(t, AnalyzerConstantCondition, "(if true 1 2)\n(if 0 1 2)\n(if (< 1 2) 1 2)")
	require.Len(t, diags, 2)
	assert.Equal(t, "if test is always true", diags[0].Message)
	assert.Equal(t, SeverityInfo, diags[0].Severity)
	assert.Equal(t, "if test must be a boolean, got number", diags[1].Message)
	assert.Equal(t, SeverityError, diags[1].Severity)
}

func TestUndefinedSymbol(t *testing.T) {
	diags := lintCheck(t, AnalyzerUndefinedSymbol, "(def x 1)\n(+ x y)\n(def f (fn (a) b))")
	require.Len(t, diags, 1)
	assert.Equal(t, "unbound symbol: y", diags[0].Message)
	assert.Equal(t, Position{File: "test.lisp", Line: 2, Col: 6}, diags[0].Pos)
}

func TestUndefinedSymbolExtraBuiltins(t *testing.T) {
	env, err := lisp.NewSession()
	require.NoError(t, err)
	env.Define("pi", lisp.Number(3.14))
	l := &Linter{Analyzers: []*Analyzer{AnalyzerUndefinedSymbol}}
	l.Builtins = analysis.Builtins(env)
	diags, err := l.LintFile([]byte("(+ pi 1)"), "test.lisp")
	require.NoError(t, err)
	assert.Empty(t, diags)
}

func TestCallArity(t *testing.T) {
	source := `(def add (fn (a b) (+ a b)))
(add 1)
(add 1 2)
(def twice (fn (x) x))
(def twice 2)
(twice 1 2 3)`
	diags := lintCheck(t, AnalyzerCallArity, source)
	assert.Equal(t, []string{"add expects 2 arguments (got 1)"}, messages(diags))
	assert.Equal(t, 2, diags[0].Pos.Line)
}

func TestDiagnosticsSorted(t *testing.T) {
	diags := lintSource(t, "(+ nope 1)\n(if true 1)\n(def)")
	require.Len(t, diags, 4)
	for i := 1; i < len(diags); i++ {
		assert.LessOrEqual(t, diags[i-1].Pos.Line, diags[i].Pos.Line)
	}
}

func TestSelectAnalyzers(t *testing.T) {
	all, err := SelectAnalyzers(nil)
	require.NoError(t, err)
	assert.Len(t, all, len(DefaultAnalyzers()))

	some, err := SelectAnalyzers([]string{"if-arity", "call-arity"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Same(t, AnalyzerIfArity, some[0])

	_, err = SelectAnalyzers([]string{"nope"})
	assert.EqualError(t, err, `unknown analyzer: "nope"`)
}

func TestAnalyzerDocs(t *testing.T) {
	names := make(map[string]bool)
	for _, a := range DefaultAnalyzers() {
		assert.NotEmpty(t, a.Doc, a.Name)
		assert.NotEqual(t, severityUnset, a.Severity, a.Name)
		assert.False(t, names[a.Name], "duplicate analyzer %s", a.Name)
		names[a.Name] = true
	}
}

func TestFormatText(t *testing.T) {
	var buf bytes.Buffer
	FormatText(&buf, []Diagnostic{{
		Pos:      Position{File: "a.lisp", Line: 2, Col: 3},
		Message:  "oops",
		Analyzer: "if-arity",
		Notes:    []string{"hint"},
	}})
	assert.Equal(t, "a.lisp:2:3: oops (if-arity)\n  = note: hint\n", buf.String())
}

func TestFormatJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, FormatJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	diags := []Diagnostic{{Pos: Position{File: "a.lisp", Line: 1}, Message: "m", Analyzer: "x"}}
	require.NoError(t, FormatJSON(&buf, diags))
	var decoded []Diagnostic
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 1)
	assert.Equal(t, SeverityWarning, decoded[0].Severity)
	assert.Equal(t, "a.lisp:1", decoded[0].Pos.String())
}

func TestSeverityJSON(t *testing.T) {
	var s Severity
	assert.Error(t, json.Unmarshal([]byte(`"fatal"`), &s))
	require.NoError(t, json.Unmarshal([]byte(`"info"`), &s))
	assert.Equal(t, SeverityInfo, s)
	assert.Equal(t, "unknown", Severity(42).String())

	sev, err := ParseSeverity("error")
	require.NoError(t, err)
	assert.Equal(t, SeverityError, sev)
	_, err = ParseSeverity("")
	assert.EqualError(t, err, `unknown severity: ""`)
}

func TestSeverityOverrides(t *testing.T) {
	src := "(if 1 2 3)\n(+ y 1)\n(if true 1 2)\n"
	l := &Linter{
		Analyzers:  []*Analyzer{AnalyzerUndefinedSymbol, AnalyzerConstantCondition},
		Severities: map[string]Severity{"undefined-symbol": SeverityError},
	}
	diags, err := l.LintFile([]byte(src), "test.lisp")
	require.NoError(t, err)
	require.Len(t, diags, 3)
	assert.Equal(t, SeverityError, diags[1].Severity)
	assert.Equal(t, "3 problems (2 errors, 1 info)", Summary(diags))

	l.MinSeverity = SeverityWarning
	diags, err = l.LintFile([]byte(src), "test.lisp")
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "2 problems (2 errors)", Summary(diags))
	assert.Equal(t, "no problems", Summary(nil))
	assert.Equal(t, "1 problem (1 warning)", Summary([]Diagnostic{{}}))
}

func TestAnalyzerNamesAndDoc(t *testing.T) {
	names := AnalyzerNames()
	assert.Contains(t, names, "undefined-symbol")
	doc := AnalyzerDoc()
	assert.Equal(t, len(names), strings.Count(doc, "\n"))
	assert.Contains(t, doc, "  if-arity               Check that `if` has exactly 3 arguments")
}
