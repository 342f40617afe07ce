// Copyright © 2024 The ELPS authors

package rdparser

import (
	"io"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/lexer"
	"github.com/luthersystems/tinylisp/parser/token"
)

type reader struct {
}

// NewReader returns a lisp.Reader to use in a lisp.Runtime.
func NewReader() lisp.Reader {
	return &reader{}
}

// Read implements lisp.Reader.
func (*reader) Read(name string, r io.Reader) (*lisp.LVal, error) {
	text, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(lexer.Tokenize(name, string(text)))
}

// Parser is a recursive descent parser over a slice of tokens.  The cursor
// only moves forward.
type Parser struct {
	toks []*token.Token
	pos  int
}

// New initializes and returns a Parser that reads toks.
func New(toks []*token.Token) *Parser {
	return &Parser{toks: toks}
}

// Parse returns the program in toks as a single List holding every
// top-level form.
func Parse(toks []*token.Token) (*lisp.LVal, error) {
	return New(toks).ParseProgram()
}

// ParseProgram parses all remaining tokens as the contents of one implicit
// outer list.  An empty program is an error.
func (p *Parser) ParseProgram() (*lisp.LVal, error) {
	if p.pos >= len(p.toks) {
		return nil, lisp.ParseError(nil, false, "no tokens provided")
	}
	prog, err := p.parseList(nil)
	if err != nil {
		return nil, err
	}
	return prog, nil
}

// Pos returns the index of the next token to be parsed.
func (p *Parser) Pos() int {
	return p.pos
}

// parseList accumulates expressions until the list opened by open is closed.
// At the top level open is nil and the list ends with the token stream.
func (p *Parser) parseList(open *token.Token) (*lisp.LVal, error) {
	var cells []*lisp.LVal
	for p.pos < len(p.toks) {
		tok := p.toks[p.pos]
		p.pos++
		switch tok.Type {
		case token.PAREN_L:
			sub, err := p.parseList(tok)
			if err != nil {
				return nil, err
			}
			cells = append(cells, sub)
		case token.PAREN_R:
			if open == nil {
				return nil, lisp.ParseError(tok.Source, false, "unexpected token )")
			}
			if len(cells) == 0 {
				return nil, lisp.ParseError(open.Source, false, "empty list () is not allowed")
			}
			return p.list(open, cells), nil
		default:
			cells = append(cells, lisp.Atom(tok.Text, tok.Source))
		}
	}
	if open != nil {
		return nil, lisp.ParseError(open.Source, true, "unclosed (")
	}
	return p.list(p.toks[0], cells), nil
}

func (p *Parser) list(start *token.Token, cells []*lisp.LVal) *lisp.LVal {
	v := lisp.List(cells)
	if start != nil && start.Source != nil {
		v.Source = start.Source
	}
	return v
}
