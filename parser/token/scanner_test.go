// Copyright © 2024 The ELPS authors

package token

import (
	"testing"
	"unicode"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScannerLocations(t *testing.T) {
	s := NewScanner("test", "ab\n cd")
	require.Equal(t, 2, s.AcceptSeq(unicode.IsLetter))
	tok := s.EmitToken(ATOM)
	assert.Equal(t, "ab", tok.Text)
	assert.Equal(t, &Location{File: "test", Pos: 0, Line: 1, Col: 1}, tok.Source)

	assert.Equal(t, 2, s.AcceptSeqSpace())
	s.Ignore()
	require.Equal(t, 2, s.AcceptSeq(unicode.IsLetter))
	tok = s.EmitToken(ATOM)
	assert.Equal(t, "cd", tok.Text)
	assert.Equal(t, &Location{File: "test", Pos: 4, Line: 2, Col: 2}, tok.Source)
	assert.True(t, s.EOF())
}

func TestScannerMultibyte(t *testing.T) {
	s := NewScanner("test", "λx y")
	s.AcceptSeq(func(c rune) bool { return !unicode.IsSpace(c) })
	tok := s.EmitToken(ATOM)
	assert.Equal(t, "λx", tok.Text)
	assert.Equal(t, 'x', s.Rune())
	s.AcceptSeqSpace()
	s.Ignore()
	assert.Equal(t, 4, s.LocStart().Col)
	assert.Equal(t, 4, s.LocStart().Pos)
}

func TestScannerPeekEOF(t *testing.T) {
	s := NewScanner("test", "")
	_, ok := s.Peek()
	assert.False(t, ok)
	assert.False(t, s.Accept(func(rune) bool { return true }))
	assert.True(t, s.EOF())
}
