// Copyright © 2024 The ELPS authors

package profiler

import (
	"regexp"
	"testing"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/stretchr/testify/assert"
)

func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		name     string
		label    string
		expected string
	}{
		{
			name:     "empty",
			label:    "",
			expected: "",
		},
		{
			name:     "normal",
			label:    "Add-It",
			expected: "Add-It",
		},
		{
			name:     "punctuation",
			label:    "user-exists?",
			expected: "user-exists?",
		},
		{
			name:     "spaces",
			label:    "Add  It",
			expected: "Add_It",
		},
		{
			name:     "underscores",
			label:    "add__it now",
			expected: "add_it_now",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			actual := sanitizeLabel(tc.label)
			assert.Equal(t, tc.expected, actual, "sanitizeLabel(%s)", tc.label)
		})
	}
}

func TestFunLabelers(t *testing.T) {
	rt := lisp.StandardRuntime()
	p := &profiler{runtime: rt, enabled: true}
	fun := lisp.Lambda(lisp.List(nil), lisp.Number(1), nil)
	fun.Source = &token.Location{File: "main.lisp", Pos: 10, Line: 3, Col: 2}

	assert.NoError(t, rt.Stack.Push(nil, "f"))
	pretty, orig := p.prettyFunName(fun)
	assert.Equal(t, "f", pretty)
	assert.Equal(t, "f", orig)

	WithSourceLabeler()(p)
	pretty, orig = p.prettyFunName(fun)
	assert.Equal(t, "f@main.lisp:3", pretty)
	assert.Equal(t, "f", orig)

	// Builtins have no source so they keep their name.
	pretty, _ = p.prettyFunName(lisp.Fun("+", nil))
	assert.Equal(t, "f", pretty)

	WithLabels(map[string]string{"f": "my func"})(p)
	pretty, _ = p.prettyFunName(fun)
	assert.Equal(t, "my_func", pretty)

	pretty, orig = p.prettyFunName(lisp.Number(1))
	assert.Equal(t, "", pretty)
	assert.Equal(t, "", orig)
}

func TestSkipFilters(t *testing.T) {
	rt := lisp.StandardRuntime()
	p := &profiler{runtime: rt}
	fun := lisp.Lambda(lisp.List(nil), lisp.Number(1), nil)
	assert.True(t, p.skipTrace(fun), "disabled")

	p.enabled = true
	assert.False(t, p.skipTrace(fun))
	assert.True(t, p.skipTrace(lisp.Symbol("f")))

	WithLambdaFilter()(p)
	assert.False(t, p.skipTrace(fun))
	assert.True(t, p.skipTrace(lisp.Fun("+", nil)))

	assert.NoError(t, rt.Stack.Push(nil, "trace-me"))
	WithNameFilter(regexp.MustCompile(`^trace-`))(p)
	assert.False(t, p.skipTrace(lisp.Fun("+", nil)))
	assert.NoError(t, rt.Stack.Push(nil, "other"))
	assert.True(t, p.skipTrace(fun))
}
