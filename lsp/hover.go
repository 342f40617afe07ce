// Copyright © 2024 The ELPS authors

package lsp

import (
	"fmt"
	"strings"

	"github.com/luthersystems/tinylisp/analysis"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentHover handles the textDocument/hover request.
func (s *Server) textDocumentHover(_ *glsp.Context, params *protocol.HoverParams) (*protocol.Hover, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	idx := s.ensureIndex(doc)

	sym := s.symbolAtPosition(doc, idx, params.Position)
	if sym == nil {
		return nil, nil
	}
	return &protocol.Hover{
		Contents: protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: buildHoverContent(sym),
		},
	}, nil
}

// buildHoverContent builds Markdown hover text for a symbol.
func buildHoverContent(sym *analysis.Symbol) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s** `%s`", sym.Kind, sym.Name)
	if sym.Params != nil {
		fmt.Fprintf(&sb, "\n\n```lisp\n%s\n```", formatSignature(sym))
	}
	if sym.DocString != "" {
		fmt.Fprintf(&sb, "\n\n%s", sym.DocString)
	}
	if sym.Source != nil && sym.Source.Line > 0 {
		fmt.Fprintf(&sb, "\n\n*Defined at %s*", sym.Source)
	}
	return sb.String()
}

// symbolAtPosition resolves the symbol under a 0-based LSP position.  Atoms
// the index did not record, such as those in unparsable forms, are looked up
// by name.
func (s *Server) symbolAtPosition(doc *Document, idx *analysis.Index, pos protocol.Position) *analysis.Symbol {
	line := int(pos.Line) + 1
	col := int(pos.Character) + 1
	if sym, _ := idx.SymbolAt(line, col); sym != nil {
		return sym
	}
	doc.mu.Lock()
	word := wordAtPosition(doc.Content, int(pos.Line), int(pos.Character))
	doc.mu.Unlock()
	if word == "" {
		return nil
	}
	return idx.Lookup(word, line, col)
}
