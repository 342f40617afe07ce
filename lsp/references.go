// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/luthersystems/tinylisp/analysis"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentReferences handles the textDocument/references request.
func (s *Server) textDocumentReferences(_ *glsp.Context, params *protocol.ReferenceParams) ([]protocol.Location, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	idx := s.ensureIndex(doc)

	sym := s.symbolAtPosition(doc, idx, params.Position)
	if sym == nil {
		return nil, nil
	}

	uri := params.TextDocument.URI
	var locs []protocol.Location
	if params.Context.IncludeDeclaration && sym.Source != nil && sym.Source.Line > 0 {
		locs = append(locs, protocol.Location{
			URI:   uri,
			Range: toLSPRange(sym.Source, nameWidth(sym.Name)),
		})
	}
	for _, ref := range referencesTo(idx, sym) {
		locs = append(locs, protocol.Location{
			URI:   uri,
			Range: toLSPRange(ref.Source, nameWidth(sym.Name)),
		})
	}
	return locs, nil
}

// referencesTo returns the located references to sym.
func referencesTo(idx *analysis.Index, sym *analysis.Symbol) []*analysis.Reference {
	var refs []*analysis.Reference
	for _, ref := range idx.References {
		if ref.Symbol != sym || ref.Source == nil || ref.Source.Line == 0 {
			continue
		}
		refs = append(refs, ref)
	}
	return refs
}
