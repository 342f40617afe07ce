// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentCompletion handles the textDocument/completion request.  It
// offers every name visible at the cursor that begins with the partially
// typed atom.
func (s *Server) textDocumentCompletion(_ *glsp.Context, params *protocol.CompletionParams) (any, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	idx := s.ensureIndex(doc)

	doc.mu.Lock()
	prefix := prefixAtPosition(doc.Content, int(params.Position.Line), int(params.Position.Character))
	doc.mu.Unlock()

	scope := idx.ScopeAt(int(params.Position.Line)+1, int(params.Position.Character)+1)
	items := []protocol.CompletionItem{}
	for _, sym := range idx.Visible(scope) {
		if !strings.HasPrefix(sym.Name, prefix) {
			continue
		}
		kind := mapCompletionItemKind(sym.Kind)
		item := protocol.CompletionItem{
			Label: sym.Name,
			Kind:  &kind,
		}
		if sym.Params != nil {
			item.Detail = strPtr(formatSignature(sym))
		} else {
			item.Detail = strPtr(sym.Kind.String())
		}
		if sym.DocString != "" {
			item.Documentation = protocol.MarkupContent{
				Kind:  protocol.MarkupKindMarkdown,
				Value: sym.DocString,
			}
		}
		items = append(items, item)
	}
	return protocol.CompletionList{
		IsIncomplete: false,
		Items:        items,
	}, nil
}
