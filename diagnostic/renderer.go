// Copyright © 2024 The ELPS authors

package diagnostic

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"unicode"
)

const tabWidth = 4

// Renderer formats diagnostics as annotated source snippets.
type Renderer struct {
	// Color controls ANSI color output. Default is ColorAuto.
	Color ColorMode

	// SourceReader reads source file contents. If nil, os.ReadFile is used.
	SourceReader func(string) ([]byte, error)
}

// Render writes a single diagnostic to w.
func (r *Renderer) Render(w io.Writer, d Diagnostic) error {
	return r.RenderAll(w, []Diagnostic{d})
}

// RenderAll writes all diagnostics to w separated by blank lines.  Each
// source file is read at most once.
func (r *Renderer) RenderAll(w io.Writer, diags []Diagnostic) error {
	s := &snippets{
		r:     r,
		p:     choosePalette(r.Color, fileFromWriter(w)),
		lines: make(map[string][]string),
	}
	var b strings.Builder
	for i, d := range diags {
		if i > 0 {
			b.WriteByte('\n')
		}
		s.write(&b, d)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// snippets holds the state of one RenderAll call.
type snippets struct {
	r     *Renderer
	p     palette
	lines map[string][]string // source lines by file; nil when unreadable
}

func (s *snippets) write(b *strings.Builder, d Diagnostic) {
	p := s.p
	color, name := p.boldRed, d.Severity.String()
	switch d.Severity {
	case SeverityWarning:
		color = p.yellow
	case SeverityNote:
		color = p.boldCyan
	}
	if d.Code != "" {
		name += "[" + d.Code + "]"
	}
	fmt.Fprintf(b, "%s%s%s%s: %s%s%s\n", color, p.bold, name, p.reset, p.bold, d.Message, p.reset)

	// All spans share a gutter wide enough for the largest line number.
	width := 1
	for _, span := range d.Spans {
		if n := len(strconv.Itoa(span.Line)); n > width {
			width = n
		}
	}
	gutter := strings.Repeat(" ", width)
	for _, span := range d.Spans {
		s.writeSpan(b, span, gutter)
	}
	for _, note := range d.Notes {
		fmt.Fprintf(b, "%s  %s=%s note: %s\n", gutter, p.boldCyan, p.reset, note)
	}
}

func (s *snippets) writeSpan(b *strings.Builder, span Span, gutter string) {
	p := s.p
	fmt.Fprintf(b, "%s %s-->%s %s\n", gutter, p.boldBlue, p.reset, spanLocation(span))

	source, ok := s.line(span.File, span.Line)
	if !ok {
		fmt.Fprintf(b, "%s  %s|%s\n", gutter, p.boldBlue, p.reset)
		return
	}
	bar := func() {
		fmt.Fprintf(b, " %s%s |%s", p.boldBlue, gutter, p.reset)
	}

	bar()
	b.WriteByte('\n')
	num := strconv.Itoa(span.Line)
	fmt.Fprintf(b, " %s%*s |%s  %s\n", p.boldBlue, len(gutter), num, p.reset, expandTabs(source))

	runes := []rune(source)
	col := span.Col
	if col <= 0 {
		col = 1
	}
	end := span.EndCol
	if end <= 0 {
		end = exprEnd(runes, col)
	}
	if end < col {
		end = col
	}
	prefix := runes
	if col-1 < len(runes) {
		prefix = runes[:col-1]
	}
	bar()
	fmt.Fprintf(b, "  %s%s%s%s", strings.Repeat(" ", displayWidth(prefix)), p.boldRed, strings.Repeat("^", end-col+1), p.reset)
	if span.Label != "" {
		fmt.Fprintf(b, " %s%s%s", p.boldRed, span.Label, p.reset)
	}
	b.WriteByte('\n')
	bar()
	b.WriteByte('\n')
}

func spanLocation(span Span) string {
	switch {
	case span.Line <= 0:
		return span.File
	case span.Col <= 0:
		return fmt.Sprintf("%s:%d", span.File, span.Line)
	default:
		return fmt.Sprintf("%s:%d:%d", span.File, span.Line, span.Col)
	}
}

// line returns the 1-based line n of file.
func (s *snippets) line(file string, n int) (string, bool) {
	if n <= 0 || file == "" || file == "<native code>" {
		return "", false
	}
	lines, seen := s.lines[file]
	if !seen {
		read := s.r.SourceReader
		if read == nil {
			read = os.ReadFile
		}
		if data, err := read(file); err == nil {
			lines = strings.Split(strings.ReplaceAll(string(data), "\r\n", "\n"), "\n")
		}
		s.lines[file] = lines
	}
	if n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

// exprEnd returns the column of the last rune of the expression beginning at
// col.  A list ends at its matching paren, or at the last non-space rune of
// the line when it is not closed on this line.
func exprEnd(runes []rune, col int) int {
	if col <= 0 || col > len(runes) {
		return col
	}
	if runes[col-1] == '(' {
		depth := 0
		for i := col - 1; i < len(runes); i++ {
			switch runes[i] {
			case '(':
				depth++
			case ')':
				depth--
				if depth == 0 {
					return i + 1
				}
			}
		}
		end := len(runes)
		for end > col && unicode.IsSpace(runes[end-1]) {
			end--
		}
		return end
	}
	end := col - 1
	for end < len(runes) && !unicode.IsSpace(runes[end]) && runes[end] != '(' && runes[end] != ')' {
		end++
	}
	if end == col-1 {
		return col
	}
	return end
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}

// displayWidth returns the number of terminal columns runes occupy.
func displayWidth(runes []rune) int {
	w := 0
	for _, ch := range runes {
		if ch == '\t' {
			w += tabWidth
		} else {
			w++
		}
	}
	return w
}

// fileFromWriter returns the *os.File behind w for terminal detection, or
// nil.
func fileFromWriter(w io.Writer) *os.File {
	if f, ok := w.(*os.File); ok {
		return f
	}
	return nil
}
