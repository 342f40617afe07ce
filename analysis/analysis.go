// Copyright © 2024 The ELPS authors

// Package analysis provides scope-aware semantic analysis for tinylisp
// source.
//
// The analyzer builds a scope tree from parsed expressions, resolves symbol
// references, and identifies unresolved symbols.  It backs the lint checks
// and the language server.
package analysis

import (
	"sort"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
)

// Index is the result of analyzing the forms of a document.
type Index struct {
	Root       *Scope
	Symbols    []*Symbol // bindings made in the document
	References []*Reference
	Unresolved []*UnresolvedRef
	Builtins   map[string]*Symbol
}

// Analyze indexes forms.  The ends of fn scopes are looked up in closeOf by
// the byte offset of their opening parenthesis.  Malformed special forms are
// walked as far as their shape allows; reporting them is left to lint.
func Analyze(forms []*lisp.LVal, closeOf map[int]*token.Location, builtins map[string]*Symbol) *Index {
	if builtins == nil {
		builtins = Builtins(nil)
	}
	idx := &Index{
		Root:     NewScope(nil, nil, nil),
		Builtins: builtins,
	}
	a := &analyzer{idx: idx, closeOf: closeOf}
	// Top-level definitions are visible throughout the document.
	for _, form := range forms {
		name, value, ok := defForm(form)
		if !ok {
			continue
		}
		if _, dup := idx.Root.Symbols[name.Str]; !dup {
			a.define(idx.Root, name, value)
		}
	}
	for _, form := range forms {
		a.walk(form, idx.Root)
	}
	return idx
}

type analyzer struct {
	idx     *Index
	closeOf map[int]*token.Location
}

func defForm(v *lisp.LVal) (name *lisp.LVal, value *lisp.LVal, ok bool) {
	if v.Type != lisp.LList || len(v.Cells) != 3 || !IsHead(v, "def") {
		return nil, nil, false
	}
	if v.Cells[1].Type != lisp.LSymbol {
		return nil, nil, false
	}
	return v.Cells[1], v.Cells[2], true
}

// IsHead reports whether v is a list whose first element is the symbol name.
func IsHead(v *lisp.LVal, name string) bool {
	return v.Type == lisp.LList && len(v.Cells) > 0 && v.Cells[0].Type == lisp.LSymbol && v.Cells[0].Str == name
}

// define binds name in scope unless scope already binds it, in which case
// the definition is recorded as a reference to the existing symbol.
func (a *analyzer) define(scope *Scope, name *lisp.LVal, value *lisp.LVal) *Symbol {
	if sym, ok := scope.Symbols[name.Str]; ok {
		if sym.Source != name.Source {
			a.reference(sym, name.Source)
		}
		return sym
	}
	sym := &Symbol{
		Name:   name.Str,
		Kind:   SymVariable,
		Source: name.Source,
		Scope:  scope,
	}
	if value != nil && IsHead(value, "fn") && len(value.Cells) == 3 {
		sym.Kind = SymFunction
		sym.Params = lambdaParams(value.Cells[1])
	}
	scope.Symbols[name.Str] = sym
	a.idx.Symbols = append(a.idx.Symbols, sym)
	return sym
}

func lambdaParams(params *lisp.LVal) []string {
	if params == nil || params.Type != lisp.LList {
		return nil
	}
	names := make([]string, 0, len(params.Cells))
	for _, p := range params.Cells {
		names = append(names, p.String())
	}
	return names
}

func (a *analyzer) reference(sym *Symbol, src *token.Location) {
	if sym == nil {
		return
	}
	a.idx.References = append(a.idx.References, &Reference{Symbol: sym, Source: src})
}

func (a *analyzer) walk(v *lisp.LVal, scope *Scope) {
	switch v.Type {
	case lisp.LSymbol:
		a.resolve(v, scope)
	case lisp.LList:
		a.walkList(v, scope)
	}
}

func (a *analyzer) resolve(v *lisp.LVal, scope *Scope) {
	if sym := scope.Lookup(v.Str); sym != nil {
		a.reference(sym, v.Source)
		return
	}
	if sym, ok := a.idx.Builtins[v.Str]; ok {
		a.reference(sym, v.Source)
		return
	}
	// Inside a function body free names resolve against the caller's
	// bindings, so only top-level uses are unresolved.
	if scope == a.idx.Root {
		a.idx.Unresolved = append(a.idx.Unresolved, &UnresolvedRef{Name: v.Str, Source: v.Source, Node: v})
	}
}

func (a *analyzer) walkList(v *lisp.LVal, scope *Scope) {
	if len(v.Cells) == 0 {
		return
	}
	head := v.Cells[0]
	if head.Type != lisp.LSymbol {
		a.walkCells(v.Cells, scope)
		return
	}
	switch head.Str {
	case "def":
		a.reference(a.idx.Builtins["def"], head.Source)
		if len(v.Cells) != 3 || v.Cells[1].Type != lisp.LSymbol {
			a.walkCells(v.Cells[1:], scope)
			return
		}
		a.define(scope, v.Cells[1], v.Cells[2])
		a.walk(v.Cells[2], scope)
	case "fn":
		a.reference(a.idx.Builtins["fn"], head.Source)
		if len(v.Cells) != 3 {
			return
		}
		params := v.Cells[1]
		inner := NewScope(scope, v.Source, a.closeOf[v.Source.Pos])
		if params.Type == lisp.LList {
			for _, p := range params.Cells {
				if p.Type != lisp.LSymbol {
					continue
				}
				sym := &Symbol{Name: p.Str, Kind: SymParameter, Source: p.Source, Scope: inner}
				inner.Symbols[p.Str] = sym
				a.idx.Symbols = append(a.idx.Symbols, sym)
			}
		}
		a.walk(v.Cells[2], inner)
	case "if":
		a.reference(a.idx.Builtins["if"], head.Source)
		a.walkCells(v.Cells[1:], scope)
	default:
		a.walkCells(v.Cells, scope)
	}
}

func (a *analyzer) walkCells(cells []*lisp.LVal, scope *Scope) {
	for _, c := range cells {
		a.walk(c, scope)
	}
}

// ScopeAt returns the innermost scope containing the 1-based position.
func (idx *Index) ScopeAt(line, col int) *Scope {
	scope := idx.Root
	for {
		var next *Scope
		for _, child := range scope.Children {
			if child.Contains(line, col) {
				next = child
			}
		}
		if next == nil {
			return scope
		}
		scope = next
	}
}

// Visible returns the symbols visible from scope, including builtins, sorted
// by name.  Inner bindings hide outer ones.
func (idx *Index) Visible(scope *Scope) []*Symbol {
	seen := make(map[string]bool)
	var result []*Symbol
	add := func(sym *Symbol) {
		if !seen[sym.Name] {
			seen[sym.Name] = true
			result = append(result, sym)
		}
	}
	for s := scope; s != nil; s = s.Parent {
		for _, sym := range s.Symbols {
			add(sym)
		}
	}
	for _, sym := range idx.Builtins {
		add(sym)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// SymbolAt returns the symbol at the 1-based position along with the
// reference that was hit, if any.
func (idx *Index) SymbolAt(line, col int) (*Symbol, *Reference) {
	if idx == nil {
		return nil, nil
	}
	for _, ref := range idx.References {
		if LocContains(ref.Source, ref.Symbol.Name, line, col) {
			return ref.Symbol, ref
		}
	}
	for _, sym := range idx.Symbols {
		if LocContains(sym.Source, sym.Name, line, col) {
			return sym, nil
		}
	}
	return nil, nil
}

// Lookup finds the symbol name resolves to at the 1-based position.
func (idx *Index) Lookup(name string, line, col int) *Symbol {
	if sym := idx.ScopeAt(line, col).Lookup(name); sym != nil {
		return sym
	}
	return idx.Builtins[name]
}

// ReferencesTo returns the references to sym, in source order.
func (idx *Index) ReferencesTo(sym *Symbol) []*Reference {
	var refs []*Reference
	for _, ref := range idx.References {
		if ref.Symbol == sym {
			refs = append(refs, ref)
		}
	}
	return refs
}
