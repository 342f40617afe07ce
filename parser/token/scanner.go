// Copyright © 2024 The ELPS authors

package token

import (
	"unicode"
	"unicode/utf8"
)

// Scanner walks program text one rune at a time and emits tokens spanning
// the runes accepted since the previous token.  Line and column numbers are
// tracked so every token can report where it began.
type Scanner struct {
	file string
	path string
	text string

	start     int // byte offset where the current token begins
	startLine int
	startCol  int

	next int // byte offset of the next rune to scan
	line int
	col  int // column of the next rune

	c rune // last rune accepted
}

// NewScanner returns a Scanner over text.  The name identifies the source in
// token locations.
func NewScanner(file string, text string) *Scanner {
	s := &Scanner{
		file: file,
		text: text,
		line: 1,
		col:  1,
	}
	s.Ignore()
	return s
}

// SetPath associates a physical location (e.g. filesystem path) with s.
func (s *Scanner) SetPath(path string) {
	s.path = path
}

// EOF returns true when all text has been scanned.
func (s *Scanner) EOF() bool {
	return s.next >= len(s.text)
}

// Rune returns the most recently accepted rune.
func (s *Scanner) Rune() rune {
	return s.c
}

// Peek returns the next rune without accepting it.  The second return value
// is false at the end of the text.
func (s *Scanner) Peek() (rune, bool) {
	if s.EOF() {
		return 0, false
	}
	c, _ := utf8.DecodeRuneInString(s.text[s.next:])
	return c, true
}

// Accept scans the next rune if fn returns true for it.
func (s *Scanner) Accept(fn func(rune) bool) bool {
	c, ok := s.Peek()
	if !ok || !fn(c) {
		return false
	}
	_, n := utf8.DecodeRuneInString(s.text[s.next:])
	s.next += n
	s.c = c
	if c == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return true
}

// AcceptSeq accepts runes for as long as fn returns true and reports how many
// were accepted.
func (s *Scanner) AcceptSeq(fn func(rune) bool) int {
	var n int
	for s.Accept(fn) {
		n++
	}
	return n
}

// AcceptSeqSpace skips over a run of unicode whitespace.
func (s *Scanner) AcceptSeqSpace() int {
	return s.AcceptSeq(unicode.IsSpace)
}

// Text returns the text accepted since the last call to EmitToken or Ignore.
func (s *Scanner) Text() string {
	return s.text[s.start:s.next]
}

// EmitToken returns a token containing the text accepted since the last call
// to EmitToken or Ignore.
func (s *Scanner) EmitToken(typ Type) *Token {
	tok := &Token{
		Type:   typ,
		Text:   s.Text(),
		Source: s.LocStart(),
	}
	s.Ignore()
	return tok
}

// Ignore discards the text accepted since the last call to EmitToken or
// Ignore.
func (s *Scanner) Ignore() {
	s.start = s.next
	s.startLine = s.line
	s.startCol = s.col
}

// LocStart returns the location of the first rune of the current token.
func (s *Scanner) LocStart() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.start,
		Line: s.startLine,
		Col:  s.startCol,
	}
}

// Loc returns the location of the next rune to be scanned.
func (s *Scanner) Loc() *Location {
	return &Location{
		File: s.file,
		Path: s.path,
		Pos:  s.next,
		Line: s.line,
		Col:  s.col,
	}
}
