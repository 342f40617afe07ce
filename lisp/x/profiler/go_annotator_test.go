// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/lisp/x/profiler"
	"github.com/luthersystems/tinylisp/lisptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPprofAnnotator(t *testing.T) {
	env := lisptest.NewSession(t)
	ppa := profiler.NewPprofAnnotator(env.Runtime, nil)
	require.NoError(t, ppa.Enable())
	assert.Error(t, ppa.Enable(), "already enabled")
	runTestProgram(t, env)
	assert.NoError(t, ppa.Complete())

	ppa = profiler.NewPprofAnnotator(env.Runtime, context.Background(), profiler.WithLambdaFilter())
	require.NoError(t, ppa.Enable())
	runTestProgram(t, env)
	assert.NoError(t, ppa.Complete())
}

func TestPprofAnnotatorLabels(t *testing.T) {
	env := lisptest.NewSession(t)
	type seen struct{ function, source string }
	var calls []seen
	var ppa interface{ Context() context.Context }
	p := profiler.NewPprofAnnotator(env.Runtime, context.Background(),
		profiler.WithSkipFilter(func(name string, fun *lisp.LVal) bool {
			if name == "+" {
				fn, _ := pprof.Label(ppa.Context(), "tinylisp.function")
				src, _ := pprof.Label(ppa.Context(), "tinylisp.source")
				calls = append(calls, seen{fn, src})
			}
			return false
		}))
	ppa = p
	require.NoError(t, p.Enable())
	runTestProgram(t, env)
	require.NoError(t, p.Complete())

	// + is only applied by add-it, which is defined on line 1.
	assert.Equal(t, []seen{{"add-it", "test.lisp:1"}}, calls)
	_, ok := pprof.Label(p.Context(), "tinylisp.function")
	assert.False(t, ok)
}
