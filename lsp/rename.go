// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"

	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/lexer"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentPrepareRename validates that the symbol under the cursor
// is renameable and returns its range.
func (s *Server) textDocumentPrepareRename(_ *glsp.Context, params *protocol.PrepareRenameParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	idx := s.ensureIndex(doc)

	sym, ref := idx.SymbolAt(int(params.Position.Line)+1, int(params.Position.Character)+1)
	if sym == nil || !renameable(sym) {
		// A null result tells the client the position cannot be renamed.
		return nil, nil
	}
	loc := sym.Source
	if ref != nil {
		loc = ref.Source
	}
	return &protocol.RangeWithPlaceholder{
		Range:       toLSPRange(loc, nameWidth(sym.Name)),
		Placeholder: sym.Name,
	}, nil
}

// textDocumentRename handles the textDocument/rename request.
func (s *Server) textDocumentRename(_ *glsp.Context, params *protocol.RenameParams) (*protocol.WorkspaceEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, fmt.Errorf("document not found")
	}
	idx := s.ensureIndex(doc)

	sym, _ := idx.SymbolAt(int(params.Position.Line)+1, int(params.Position.Character)+1)
	if sym == nil {
		return nil, fmt.Errorf("no symbol at position")
	}
	if !renameable(sym) {
		return nil, fmt.Errorf("cannot rename %s: %s", sym.Kind, sym.Name)
	}
	if err := validSymbolName(params.NewName, idx); err != nil {
		return nil, err
	}

	uri := params.TextDocument.URI
	width := nameWidth(sym.Name)
	edits := []protocol.TextEdit{{
		Range:   toLSPRange(sym.Source, width),
		NewText: params.NewName,
	}}
	for _, ref := range referencesTo(idx, sym) {
		edits = append(edits, protocol.TextEdit{
			Range:   toLSPRange(ref.Source, width),
			NewText: params.NewName,
		})
	}
	return &protocol.WorkspaceEdit{
		Changes: map[protocol.DocumentUri][]protocol.TextEdit{uri: edits},
	}, nil
}

func renameable(sym *analysis.Symbol) bool {
	return sym.Kind != analysis.SymBuiltin && sym.Kind != analysis.SymSpecialOp && sym.Source != nil && sym.Source.Line > 0
}

// validSymbolName checks that name reads back as a single symbol that does
// not collide with a special operator.
func validSymbolName(name string, idx *analysis.Index) error {
	toks := lexer.TokenizeStrings(name)
	if len(toks) != 1 || toks[0] != name {
		return fmt.Errorf("invalid symbol name: %q", name)
	}
	if v := lisp.Atom(name, nil); v.Type != lisp.LSymbol {
		return fmt.Errorf("invalid symbol name: %q reads as a %v", name, v.Type)
	}
	if sym, ok := idx.Builtins[name]; ok && sym.Kind == analysis.SymSpecialOp {
		return fmt.Errorf("cannot rename to special operator: %s", name)
	}
	return nil
}
