// Copyright © 2024 The ELPS authors

package lsp

import (
	"strings"
	"unicode"

	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/parser/token"
	protocol "github.com/tliron/glsp/protocol_3_16"
)

// toLSPPosition converts a 1-based source location to a 0-based LSP
// position.  Columns count runes.
func toLSPPosition(loc *token.Location) protocol.Position {
	line := loc.Line
	col := loc.Col
	if line > 0 {
		line--
	}
	if col > 0 {
		col--
	}
	return protocol.Position{
		Line:      safeUint(line),
		Character: safeUint(col),
	}
}

// safeUint converts a non-negative int to protocol.UInteger, clamping
// negative values to zero.
func safeUint(n int) protocol.UInteger {
	if n < 0 {
		return 0
	}
	return protocol.UInteger(n) // #nosec G115 -- line/col are always small positive ints
}

// toLSPRange returns the range of the atom of width runes beginning at loc.
func toLSPRange(loc *token.Location, width int) protocol.Range {
	start := toLSPPosition(loc)
	return protocol.Range{
		Start: start,
		End: protocol.Position{
			Line:      start.Line,
			Character: start.Character + safeUint(width),
		},
	}
}

func nameWidth(name string) int {
	return len([]rune(name))
}

// wordAtPosition extracts the atom at the given 0-based LSP position from
// the document content. The cursor can be inside or at the end of a word;
// in both cases the full word is returned.
func wordAtPosition(content string, line, col int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	ln := []rune(lines[line])
	if col < 0 || col > len(ln) {
		return ""
	}
	// Scan backwards from cursor.
	start := col
	for start > 0 && isAtomRune(ln[start-1]) {
		start--
	}
	// Scan forwards from cursor.
	end := col
	for end < len(ln) && isAtomRune(ln[end]) {
		end++
	}
	return string(ln[start:end])
}

// prefixAtPosition returns the part of the atom before the cursor.
func prefixAtPosition(content string, line, col int) string {
	lines := strings.Split(content, "\n")
	if line < 0 || line >= len(lines) {
		return ""
	}
	ln := []rune(lines[line])
	if col < 0 || col > len(ln) {
		return ""
	}
	start := col
	for start > 0 && isAtomRune(ln[start-1]) {
		start--
	}
	return string(ln[start:col])
}

func isAtomRune(c rune) bool {
	return c != '(' && c != ')' && !unicode.IsSpace(c)
}

// mapSymbolKind converts a SymbolKind to an LSP SymbolKind.
func mapSymbolKind(kind analysis.SymbolKind) protocol.SymbolKind {
	switch kind {
	case analysis.SymFunction, analysis.SymBuiltin:
		return protocol.SymbolKindFunction
	case analysis.SymSpecialOp:
		return protocol.SymbolKindOperator
	default:
		return protocol.SymbolKindVariable
	}
}

// mapCompletionItemKind converts a SymbolKind to an LSP CompletionItemKind.
func mapCompletionItemKind(kind analysis.SymbolKind) protocol.CompletionItemKind {
	switch kind {
	case analysis.SymFunction, analysis.SymBuiltin:
		return protocol.CompletionItemKindFunction
	case analysis.SymSpecialOp:
		return protocol.CompletionItemKindKeyword
	default:
		return protocol.CompletionItemKindVariable
	}
}

// formatSignature renders a call pattern such as (f x y).
func formatSignature(sym *analysis.Symbol) string {
	if len(sym.Params) == 0 {
		return "(" + sym.Name + ")"
	}
	return "(" + sym.Name + " " + strings.Join(sym.Params, " ") + ")"
}

// uriToPath converts a file:// URI to a filesystem path.
func uriToPath(uri string) string {
	if path, ok := strings.CutPrefix(uri, "file://"); ok {
		return path
	}
	return uri
}
