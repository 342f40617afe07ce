// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/tinylisp/formatter"
	"github.com/pmezard/go-difflib/difflib"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// textDocumentFormatting handles textDocument/formatting requests.  The
// edits replace only the lines the formatter changed.  No edits are
// returned when the document is already formatted or does not parse.
func (s *Server) textDocumentFormatting(_ *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	doc := s.docs.Get(params.TextDocument.URI)
	if doc == nil {
		return nil, nil
	}

	doc.mu.Lock()
	content := doc.Content
	uri := doc.URI
	doc.mu.Unlock()

	if content == "" {
		return nil, nil
	}

	cfg := s.formatConfig()
	if !s.settings().hasIndentSize() {
		if n := optionInt(params.Options, "tabSize"); n > 0 {
			cfg.IndentSize = n
		}
	}

	formatted, err := formatter.FormatFile([]byte(content), uriToPath(uri), cfg)
	if err != nil {
		// Incomplete code is common while editing and is already reported
		// as a diagnostic.
		return nil, nil
	}
	return lineEdits(content, string(formatted)), nil
}

// lineEdits returns the edits turning before into after, one per run of
// changed lines.
func lineEdits(before, after string) []protocol.TextEdit {
	if before == after {
		return nil
	}
	a := strings.SplitAfter(before, "\n")
	b := strings.SplitAfter(after, "\n")
	lineStart := func(i int) protocol.Position {
		if i >= len(a) {
			return endPosition(before)
		}
		return protocol.Position{Line: safeUint(i)}
	}
	var edits []protocol.TextEdit
	for _, op := range difflib.NewMatcher(a, b).GetOpCodes() {
		if op.Tag == 'e' {
			continue
		}
		edits = append(edits, protocol.TextEdit{
			Range: protocol.Range{
				Start: lineStart(op.I1),
				End:   lineStart(op.I2),
			},
			NewText: strings.Join(b[op.J1:op.J2], ""),
		})
	}
	return edits
}

func optionInt(opts protocol.FormattingOptions, key string) int {
	switch v := opts[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case protocol.UInteger:
		return int(v)
	}
	return 0
}

// endPosition returns the position just past the last character of s.
func endPosition(s string) protocol.Position {
	lines := strings.Count(s, "\n")
	last := s[strings.LastIndex(s, "\n")+1:]
	return protocol.Position{
		Line:      safeUint(lines),
		Character: safeUint(utf8.RuneCountInString(last)),
	}
}
