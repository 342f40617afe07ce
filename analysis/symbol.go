// Copyright © 2024 The ELPS authors

package analysis

import (
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
)

// SymbolKind classifies a symbol definition.
type SymbolKind int

const (
	SymVariable  SymbolKind = iota // def of a non-function value
	SymFunction                    // def of an fn form
	SymParameter                   // lambda parameter
	SymBuiltin                     // builtin function
	SymSpecialOp                   // def, fn, if
)

func (k SymbolKind) String() string {
	switch k {
	case SymVariable:
		return "variable"
	case SymFunction:
		return "function"
	case SymParameter:
		return "parameter"
	case SymBuiltin:
		return "builtin"
	case SymSpecialOp:
		return "special operator"
	default:
		return "symbol"
	}
}

// Symbol is a binding.  Builtins and special operators have no Source.
type Symbol struct {
	Name      string
	Kind      SymbolKind
	Source    *token.Location
	Params    []string // nil for values that are not functions
	DocString string
	Scope     *Scope
}

// Reference records a resolved symbol usage.
type Reference struct {
	Symbol *Symbol
	Source *token.Location
}

// UnresolvedRef records a top-level symbol usage that could not be
// resolved.
type UnresolvedRef struct {
	Name   string
	Source *token.Location
	Node   *lisp.LVal
}

// LocContains reports whether the 1-based position falls within the atom
// name beginning at loc.
func LocContains(loc *token.Location, name string, line, col int) bool {
	if loc == nil || loc.Pos < 0 || loc.Line != line || loc.Col == 0 {
		return false
	}
	return col >= loc.Col && col < loc.Col+len([]rune(name))
}
