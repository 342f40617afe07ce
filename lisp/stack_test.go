// Copyright © 2024 The ELPS authors

package lisp

import (
	"bytes"
	"testing"

	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallStack(t *testing.T) {
	s := &CallStack{MaxHeight: 2}
	assert.Nil(t, s.Top())
	require.NoError(t, s.Push(&token.Location{File: "a", Line: 1, Col: 1}, "f"))
	require.NoError(t, s.Push(nil, "g"))
	err := s.Push(nil, "h")
	require.Error(t, err)
	assert.Equal(t, &StackOverflowError{Height: 3}, err)

	cp := s.Copy()
	assert.Equal(t, 2, cp.Height())
	assert.Equal(t, "g", s.Pop().Name)
	assert.Equal(t, 2, cp.Height())
	assert.Equal(t, "f", s.Top().Name)

	var buf bytes.Buffer
	_, err = cp.DebugPrint(&buf)
	require.NoError(t, err)
	assert.Equal(t, "Stack Trace [2 frames -- entrypoint last]:\n  height 1: g\n  height 0: a:1:1: f\n", buf.String())

	s.Pop()
	assert.Panics(t, func() { s.Pop() })
}
