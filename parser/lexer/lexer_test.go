// Copyright © 2024 The ELPS authors

package lexer

import (
	"strings"
	"testing"

	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/stretchr/testify/assert"
)

func TestTokenizeStrings(t *testing.T) {
	tests := []struct {
		input  string
		tokens []string
	}{
		{``, nil},
		{`   `, nil},
		{`abc`, []string{"abc"}},
		{`(+ 1 2)`, []string{"(", "+", "1", "2", ")"}},
		{`((a))`, []string{"(", "(", "a", ")", ")"}},
		{`(def x 5)`, []string{"(", "def", "x", "5", ")"}},
		{"(<=\t1\n2)", []string{"(", "<=", "1", "2", ")"}},
		{`)(`, []string{")", "("}},
		{`-3.5e2 true`, []string{"-3.5e2", "true"}},
		{`a)b(c`, []string{"a", ")", "b", "(", "c"}},
	}
	for i, test := range tests {
		toks := TokenizeStrings(test.input)
		if len(test.tokens) == 0 {
			assert.Empty(t, toks, "test %d: %q", i, test.input)
			continue
		}
		assert.Equal(t, test.tokens, toks, "test %d: %q", i, test.input)
	}
}

// Splitting on whitespace after padding parentheses yields the same tokens.
func TestTokenizeMatchesPaddedSplit(t *testing.T) {
	inputs := []string{
		`(+ 1 2 3)`,
		`(def add (fn (a b) (+ a b)))(add 1 2)`,
		"  (if (< 1 2)\n  1\n  2) ",
		`((fn (x) x) 7)`,
	}
	for _, in := range inputs {
		padded := strings.NewReplacer("(", " ( ", ")", " ) ").Replace(in)
		assert.Equal(t, strings.Fields(padded), TokenizeStrings(in), in)
	}
}

func TestTokenizeLocations(t *testing.T) {
	toks := Tokenize("test", "(+ 1\n  22)")
	if assert.Len(t, toks, 5) {
		assert.Equal(t, token.PAREN_L, toks[0].Type)
		assert.Equal(t, token.ATOM, toks[1].Type)
		assert.Equal(t, token.PAREN_R, toks[4].Type)
		assert.Equal(t, "test:2:3", toks[3].Source.String())
		assert.Equal(t, "22", toks[3].Text)
		assert.Equal(t, 9, toks[4].Source.Pos)
	}
}

func TestReadTokenEOF(t *testing.T) {
	lex := New(token.NewScanner("test", "x"))
	assert.Equal(t, token.ATOM, lex.ReadToken().Type)
	assert.Equal(t, token.EOF, lex.ReadToken().Type)
	assert.Equal(t, token.EOF, lex.ReadToken().Type)
}
