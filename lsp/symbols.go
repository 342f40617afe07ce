// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDocumentSymbol handles the textDocument/documentSymbol
// request.  Top-level definitions are reported in source order.
func (s *Server) textDocumentDocumentSymbol(_ *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	idx := s.ensureIndex(doc)

	result := []protocol.DocumentSymbol{}
	for _, sym := range idx.Symbols {
		if sym.Scope != idx.Root {
			continue
		}
		rng := toLSPRange(sym.Source, nameWidth(sym.Name))
		ds := protocol.DocumentSymbol{
			Name:           sym.Name,
			Kind:           mapSymbolKind(sym.Kind),
			Range:          rng,
			SelectionRange: rng,
		}
		if sym.Params != nil {
			ds.Detail = strPtr(formatSignature(sym))
		}
		result = append(result, ds)
	}
	return result, nil
}
