// Copyright © 2024 The ELPS authors

package lsp

import (
	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentSignatureHelp handles textDocument/signatureHelp requests.
// It finds the innermost call enclosing the cursor and highlights the
// parameter being typed.
func (s *Server) textDocumentSignatureHelp(_ *glsp.Context, params *protocol.SignatureHelpParams) (*protocol.SignatureHelp, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}
	idx := s.ensureIndex(doc)

	doc.mu.Lock()
	toks := doc.tokens
	doc.mu.Unlock()

	line := int(params.Position.Line) + 1
	col := int(params.Position.Character) + 1
	call, ok := enclosingCall(toks, line, col)
	if !ok {
		return nil, nil
	}
	sym := idx.Lookup(call.name, line, col)
	if sym == nil || sym.Params == nil {
		return nil, nil
	}
	return buildSignatureHelp(sym, call.arg()), nil
}

type openCall struct {
	name     string
	started  int  // arguments begun before the cursor
	touching bool // the cursor touches the end of the last argument
}

// arg returns the 0-based index of the argument at the cursor.
func (c openCall) arg() int {
	if c.touching {
		return c.started - 1
	}
	return c.started
}

// enclosingCall scans the tokens before the 1-based cursor position and
// returns the innermost unclosed list whose head is an atom.
func enclosingCall(toks []*token.Token, line, col int) (openCall, bool) {
	var stack []openCall
	var heads []bool // whether the list on the stack has seen its head
	for _, tok := range toks {
		src := tok.Source
		if !analysis.Before(src.Line, src.Col, line, col) {
			break
		}
		n := len(stack)
		switch tok.Type {
		case token.PAREN_L:
			if n > 0 {
				if heads[n-1] {
					stack[n-1].started++
				}
				heads[n-1] = true
				stack[n-1].touching = false
			}
			stack = append(stack, openCall{})
			heads = append(heads, false)
		case token.PAREN_R:
			if n > 0 {
				stack = stack[:n-1]
				heads = heads[:n-1]
			}
		case token.ATOM:
			if n == 0 {
				continue
			}
			if !heads[n-1] {
				heads[n-1] = true
				stack[n-1].name = tok.Text
				continue
			}
			stack[n-1].started++
			stack[n-1].touching = src.Line == line && src.Col+nameWidth(tok.Text) >= col
		}
	}
	if len(stack) == 0 || stack[len(stack)-1].name == "" {
		return openCall{}, false
	}
	return stack[len(stack)-1], true
}

// buildSignatureHelp renders the signature of sym with the parameter for
// argument argIdx active.  A parameter following the variadic marker
// receives every remaining argument.
func buildSignatureHelp(sym *analysis.Symbol, argIdx int) *protocol.SignatureHelp {
	sig := protocol.SignatureInformation{Label: formatSignature(sym)}
	if sym.DocString != "" {
		sig.Documentation = protocol.MarkupContent{
			Kind:  protocol.MarkupKindMarkdown,
			Value: sym.DocString,
		}
	}
	// Parameter labels are offsets into the signature label.
	offset := nameWidth("(" + sym.Name + " ")
	active := -1
	variadic := false
	positional := 0
	for _, p := range sym.Params {
		w := nameWidth(p)
		if p == lisp.VarArgSymbol {
			variadic = true
			offset += w + 1
			continue
		}
		if active < 0 && (variadic || positional == argIdx) {
			active = len(sig.Parameters)
		}
		sig.Parameters = append(sig.Parameters, protocol.ParameterInformation{
			Label: []protocol.UInteger{safeUint(offset), safeUint(offset + w)},
		})
		positional++
		offset += w + 1
	}
	activeSig := protocol.UInteger(0)
	help := &protocol.SignatureHelp{
		Signatures:      []protocol.SignatureInformation{sig},
		ActiveSignature: &activeSig,
	}
	if active >= 0 {
		a := safeUint(active)
		help.ActiveParameter = &a
	}
	return help
}
