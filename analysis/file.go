// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/lexer"
	"github.com/luthersystems/tinylisp/parser/rdparser"
	"github.com/luthersystems/tinylisp/parser/token"
)

// File is a parsed source file.  Each top-level form is parsed separately so
// that one malformed form does not hide the others.
type File struct {
	Name      string
	Tokens    []*token.Token
	Forms     []*lisp.LVal
	CloseOf   map[int]*token.Location // keyed by the byte offset of "("
	ParseErrs []error
}

// ParseFile tokenizes and parses text.
func ParseFile(name, text string) *File {
	f := &File{Name: name}
	f.Tokens = lexer.Tokenize(name, text)
	f.CloseOf = MatchParens(f.Tokens)
	for _, group := range TopLevelGroups(f.Tokens) {
		prog, err := rdparser.Parse(group)
		if err != nil {
			f.ParseErrs = append(f.ParseErrs, err)
			continue
		}
		f.Forms = append(f.Forms, prog.Cells...)
	}
	return f
}

// Analyze indexes the forms of f.
func (f *File) Analyze(builtins map[string]*Symbol) *Index {
	return Analyze(f.Forms, f.CloseOf, builtins)
}

// MatchParens maps each "(" to its matching ")".
func MatchParens(toks []*token.Token) map[int]*token.Location {
	closeOf := make(map[int]*token.Location)
	var open []*token.Token
	for _, tok := range toks {
		switch tok.Type {
		case token.PAREN_L:
			open = append(open, tok)
		case token.PAREN_R:
			if len(open) == 0 {
				continue
			}
			closeOf[open[len(open)-1].Source.Pos] = tok.Source
			open = open[:len(open)-1]
		}
	}
	return closeOf
}

// TopLevelGroups splits toks into the tokens of each top-level form.  A
// stray ")" forms a group by itself.
func TopLevelGroups(toks []*token.Token) [][]*token.Token {
	var groups [][]*token.Token
	depth := 0
	start := 0
	for i, tok := range toks {
		switch tok.Type {
		case token.PAREN_L:
			depth++
		case token.PAREN_R:
			depth--
		}
		if depth <= 0 {
			groups = append(groups, toks[start:i+1])
			start = i + 1
			depth = 0
		}
	}
	if start < len(toks) {
		groups = append(groups, toks[start:])
	}
	return groups
}
