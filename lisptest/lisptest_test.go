// Copyright © 2024 The ELPS authors

package lisptest

import (
	"fmt"
	"testing"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratedPrograms(t *testing.T) {
	env := NewSession(t)
	v, err := env.EvaluateProgram(NestedProgram(10))
	require.NoError(t, err)
	assert.Equal(t, "11", v.String())

	assert.Equal(t, "(+ 1 (+ 1 1))", NestedProgram(2))

	_, err = env.EvaluateProgram(FlatProgram(3))
	require.NoError(t, err)
	x, ok := env.Lookup("x2")
	require.True(t, ok)
	assert.Equal(t, "1", x.String())
}

func TestRunTestSuite(t *testing.T) {
	RunTestSuite(t, TestSuite{
		{"self", TestSequence{
			{"(+ 1 1)", "2", ""},
			{"nope", "", lisp.CondUnboundSymbol},
		}},
	})
}

type recordingTB struct {
	testing.TB
	lines []string
}

func (r *recordingTB) Helper() {}

func (r *recordingTB) Log(args ...any) {
	r.lines = append(r.lines, fmt.Sprint(args...))
}

func TestLogger(t *testing.T) {
	rec := &recordingTB{TB: t}
	l := NewLogger(rec)
	_, err := l.Write([]byte("one\ntw"))
	require.NoError(t, err)
	_, err = l.Write([]byte("o\nthree"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, rec.lines)
	l.Flush()
	assert.Equal(t, []string{"one", "two", "three"}, rec.lines)
	l.Flush()
	assert.Len(t, rec.lines, 3)

	rec.lines = nil
	NewRuntimeLogger(rec).WithField("depth", 2).Warn("call")
	assert.Equal(t, []string{`level=warning msg=call depth=2`}, rec.lines)
}

func BenchmarkNested(b *testing.B) {
	RunBenchmark(b, NestedProgram(256))
}
