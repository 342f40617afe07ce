// Copyright © 2024 The ELPS authors

// Package lisptest runs tables of lisp expressions against fresh sessions.
package lisptest

import (
	"bytes"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser"
)

// TestSequence is a sequence of lisp programs which are evaluated
// sequentially in one session.  When Cond is set the program must fail with
// that condition and Result is ignored.
type TestSequence []struct {
	Expr   string         // a lisp program
	Result string         // the evaluated result
	Cond   lisp.Condition // the expected error condition
}

// TestSuite is a set of named TestSequences
type TestSuite []struct {
	Name string
	TestSequence
}

// NewSession returns a session for tests.  Runtime output and log entries
// are written to the test log.
func NewSession(t testing.TB, config ...lisp.Config) *lisp.LEnv {
	base := []lisp.Config{
		lisp.WithMaximumStackHeight(25000),
		lisp.WithReader(parser.NewReader()),
		lisp.WithStderr(NewLogger(t)),
		lisp.WithLogger(NewRuntimeLogger(t)),
	}
	env, err := lisp.NewSession(append(base, config...)...)
	if err != nil {
		t.Fatalf("failed to initialize lisp session: %v", err)
	}
	return env
}

// RunTestSuite runs each TestSequence in tests on an isolated session.
func RunTestSuite(t *testing.T, tests TestSuite, config ...lisp.Config) {
	for i, test := range tests {
		t.Run(test.Name, func(t *testing.T) {
			env := NewSession(t, config...)
			for j, expr := range test.TestSequence {
				v, err := env.EvaluateProgramNamed("test", expr.Expr)
				if expr.Cond != "" {
					if err == nil {
						t.Errorf("test %d %q: expr %d: expected %s error (got %v)", i, test.Name, j, expr.Cond, v)
					} else if !errors.Is(err, expr.Cond) {
						t.Errorf("test %d %q: expr %d: expected %s error (got %v)", i, test.Name, j, expr.Cond, err)
					}
					continue
				}
				if err != nil {
					LispError(t, err)
					continue
				}
				if v.String() != expr.Result {
					t.Errorf("test %d %q: expr %d: expected result %s (got %s)", i, test.Name, j, expr.Result, v)
				}
			}
		})
	}
}

// LispError reports err, with a stack trace when one is available.
func LispError(t testing.TB, err error) {
	lerr, ok := lisp.GoError(err)
	if !ok {
		t.Error(err)
		return
	}
	var buf bytes.Buffer
	_, ioerr := lerr.WriteTrace(&buf)
	if ioerr != nil {
		t.Errorf("io error: %v", ioerr)
		t.Error(err)
		return
	}
	t.Error(buf.String())
}

// BenchmarkParse returns a benchmark that reads source with readers from r.
func BenchmarkParse(source string, r func() lisp.Reader) func(*testing.B) {
	return func(b *testing.B) {
		b.SetBytes(int64(len(source)))
		for i := 0; i < b.N; i++ {
			_, err := r().Read("benchmark", strings.NewReader(source))
			if err != nil {
				b.Fatalf("Parse failure: %v", err)
			}
		}
	}
}

// RunBenchmark runs a standard benchmark that evaluates source in a new
// session on each iteration.
func RunBenchmark(b *testing.B, source string, config ...lisp.Config) {
	b.StopTimer()
	for i := 0; i < b.N; i++ {
		env := NewSession(b, config...)
		b.StartTimer()
		_, err := env.EvaluateProgramNamed("benchmark", source)
		b.StopTimer()
		if err != nil {
			b.Fatal(err)
		}
	}
}

// NestedProgram returns a single arithmetic form nested depth levels deep.
//
//	NestedProgram(2) == "(+ 1 (+ 1 1))"
func NestedProgram(depth int) string {
	var buf strings.Builder
	for i := 0; i < depth; i++ {
		buf.WriteString("(+ 1 ")
	}
	buf.WriteString("1")
	buf.WriteString(strings.Repeat(")", depth))
	return buf.String()
}

// FlatProgram returns a program defining n variables.
func FlatProgram(n int) string {
	var buf strings.Builder
	for i := 0; i < n; i++ {
		buf.WriteString("(def x")
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(" (- ")
		buf.WriteString(strconv.Itoa(i))
		buf.WriteString(" 1))\n")
	}
	return buf.String()
}
