// Copyright © 2024 The ELPS authors

package lisp_test

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/lisptest"
	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	env := lisptest.NewSession(t)
	_, err := env.EvaluateProgramNamed("test", "(+ 1\n  nope)")
	require.Error(t, err)
	assert.Equal(t, "test:2:3: unbound-symbol: unbound symbol: nope", err.Error())

	lerr, ok := lisp.GoError(err)
	require.True(t, ok)
	assert.Equal(t, lisp.CondUnboundSymbol, lerr.Condition)
	assert.Equal(t, "unbound symbol: nope", lerr.ErrorMessage())
	assert.False(t, errors.Is(err, lisp.CondTypeMismatch))
}

func TestErrorStack(t *testing.T) {
	env := lisptest.NewSession(t)
	_, err := env.EvaluateProgramNamed("test", "(def f (fn (a) (+ a true)))")
	require.NoError(t, err)
	_, err = env.EvaluateProgramNamed("test", "(f 1)")
	require.Error(t, err)
	lerr, ok := lisp.GoError(err)
	require.True(t, ok)
	assert.Equal(t, "+", lerr.FunName())
	require.Len(t, lerr.Stack.Frames, 2)
	assert.Equal(t, "f", lerr.Stack.Frames[0].Name)

	var buf bytes.Buffer
	_, err = lerr.WriteTrace(&buf)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "type-mismatch")
	assert.Contains(t, buf.String(), "Stack Trace [2 frames -- entrypoint last]:")
	assert.Contains(t, buf.String(), "height 1: test:1:16: +")
}

func TestParseErrorIncomplete(t *testing.T) {
	loc := &token.Location{File: "test", Pos: 0, Line: 1, Col: 1}
	err := lisp.ParseError(loc, true, "unclosed (")
	assert.True(t, errors.Is(err, lisp.CondParseError))
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
	assert.True(t, lisp.IsIncomplete(err))
	assert.Equal(t, "test:1:1: parse-error: unclosed (", err.Error())

	err = lisp.ParseError(nil, false, "no tokens provided")
	assert.False(t, lisp.IsIncomplete(err))
	assert.Equal(t, "parse-error: no tokens provided", err.Error())
}

func TestErrorWrapping(t *testing.T) {
	err := &lisp.ErrorVal{Condition: lisp.CondStackOverflow, Err: &lisp.StackOverflowError{Height: 3}}
	assert.Equal(t, "stack-overflow: stack height exceeded maximum: 3", err.Error())
	var serr *lisp.StackOverflowError
	assert.True(t, errors.As(err, &serr))
	assert.Equal(t, 3, serr.Height)
	_, ok := lisp.GoError(io.EOF)
	assert.False(t, ok)
}
