// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentDefinition handles the textDocument/definition request.
func (s *Server) textDocumentDefinition(_ *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	idx := s.ensureIndex(doc)

	sym := s.symbolAtPosition(doc, idx, params.Position)
	if sym == nil || sym.Source == nil || sym.Source.Line == 0 {
		// Builtins have no definition site in the document.
		return nil, nil
	}
	return protocol.Location{
		URI:   params.TextDocument.URI,
		Range: toLSPRange(sym.Source, nameWidth(sym.Name)),
	}, nil
}
