// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentFoldingRange handles the textDocument/foldingRange request.
// It returns a range for each list that spans more than one line.
func (s *Server) textDocumentFoldingRange(_ *glsp.Context, params *protocol.FoldingRangeParams) ([]protocol.FoldingRange, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	toks := doc.tokens
	closeOf := doc.closeOf
	doc.mu.Unlock()

	ranges := []protocol.FoldingRange{}
	kind := string(protocol.FoldingRangeKindRegion)
	for _, tok := range toks {
		if tok.Type != token.PAREN_L {
			continue
		}
		end, ok := closeOf[tok.Source.Pos]
		if !ok || end.Line <= tok.Source.Line {
			continue
		}
		ranges = append(ranges, protocol.FoldingRange{
			StartLine: safeUint(tok.Source.Line - 1),
			EndLine:   safeUint(end.Line - 1),
			Kind:      &kind,
		})
	}
	return ranges, nil
}
