// Copyright © 2024 The ELPS authors

package analysis

import "github.com/luthersystems/tinylisp/parser/token"

// Scope is the region of a document in which a set of names is bound.  The
// root scope holds top-level definitions.  Every fn form opens a child scope
// for its parameters.
type Scope struct {
	Parent   *Scope
	Start    *token.Location // opening parenthesis, nil for the root
	End      *token.Location // closing parenthesis, nil if unbounded
	Symbols  map[string]*Symbol
	Children []*Scope
}

// NewScope creates a scope nested in parent, which may be nil.
func NewScope(parent *Scope, start, end *token.Location) *Scope {
	s := &Scope{
		Parent:  parent,
		Start:   start,
		End:     end,
		Symbols: make(map[string]*Symbol),
	}
	if parent != nil {
		parent.Children = append(parent.Children, s)
	}
	return s
}

// Lookup finds name in s or its ancestors.
func (s *Scope) Lookup(name string) *Symbol {
	for ; s != nil; s = s.Parent {
		if sym, ok := s.Symbols[name]; ok {
			return sym
		}
	}
	return nil
}

// Contains reports whether the 1-based position lies within s.
func (s *Scope) Contains(line, col int) bool {
	if s.Start != nil && Before(line, col, s.Start.Line, s.Start.Col) {
		return false
	}
	if s.End != nil && Before(s.End.Line, s.End.Col, line, col) {
		return false
	}
	return true
}

// Before reports whether position 1 precedes position 2.
func Before(line1, col1, line2, col2 int) bool {
	return line1 < line2 || line1 == line2 && col1 < col2
}
