// Copyright © 2024 The ELPS authors

package lexer

import (
	"unicode"

	"github.com/luthersystems/tinylisp/parser/token"
)

// Lexer splits program text into tokens.  Each parenthesis is its own token
// and every other maximal run of non-whitespace runes is an ATOM.  The lexer
// performs no validation; malformed programs are rejected by the parser.
type Lexer struct {
	scanner *token.Scanner
}

// New returns a Lexer reading from s.
func New(s *token.Scanner) *Lexer {
	return &Lexer{scanner: s}
}

// ReadToken returns the next token in the stream.  At the end of the text
// ReadToken returns an EOF token and will continue to do so.
func (lex *Lexer) ReadToken() *token.Token {
	lex.scanner.AcceptSeqSpace()
	lex.scanner.Ignore()
	if !lex.scanner.Accept(anyRune) {
		return lex.scanner.EmitToken(token.EOF)
	}
	switch lex.scanner.Rune() {
	case '(':
		return lex.scanner.EmitToken(token.PAREN_L)
	case ')':
		return lex.scanner.EmitToken(token.PAREN_R)
	default:
		lex.scanner.AcceptSeq(isAtom)
		return lex.scanner.EmitToken(token.ATOM)
	}
}

// Tokenize returns all tokens in text, excluding the trailing EOF token.
func Tokenize(name string, text string) []*token.Token {
	lex := New(token.NewScanner(name, text))
	var toks []*token.Token
	for {
		tok := lex.ReadToken()
		if tok.Type == token.EOF {
			return toks
		}
		toks = append(toks, tok)
	}
}

// TokenizeStrings returns the text of every token in text.
//
//	TokenizeStrings("(+ 1 2)") == []string{"(", "+", "1", "2", ")"}
func TokenizeStrings(text string) []string {
	toks := Tokenize("", text)
	strs := make([]string, len(toks))
	for i := range toks {
		strs[i] = toks[i].Text
	}
	return strs
}

func anyRune(rune) bool {
	return true
}

func isAtom(c rune) bool {
	return c != '(' && c != ')' && !unicode.IsSpace(c)
}
