// Copyright © 2024 The ELPS authors

package formatter

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
)

type printer struct {
	buf   bytes.Buffer
	cfg   *Config
	col   int  // current column (0-indexed)
	atBOL bool // at beginning of line (nothing written on current line)

	text    map[int]string          // atom text keyed by byte offset
	closeOf map[int]*token.Location // closing paren keyed by byte offset of "("
}

func newPrinter(cfg *Config, f *analysis.File) *printer {
	p := &printer{
		cfg:     cfg,
		atBOL:   true,
		text:    make(map[int]string),
		closeOf: f.CloseOf,
	}
	for _, tok := range f.Tokens {
		if tok.Type == token.ATOM {
			p.text[tok.Source.Pos] = tok.Text
		}
	}
	return p
}

// writeTopLevel writes a sequence of top-level expressions.
func (p *printer) writeTopLevel(exprs []*lisp.LVal) {
	for i, expr := range exprs {
		if i > 0 {
			for j := 0; j < p.blankLinesBetween(exprs[i-1], expr); j++ {
				p.newline()
			}
		}
		p.writeExpr(expr)
		p.newline()
	}
}

// endLine returns the line holding the last character of v.
func (p *printer) endLine(v *lisp.LVal) int {
	if v.Type == lisp.LList {
		if end, ok := p.closeOf[v.Source.Pos]; ok {
			return end.Line
		}
	}
	return v.Source.Line
}

// newlineBetween returns true if next began on a later line than prev ended
// in the source.
func (p *printer) newlineBetween(prev, next *lisp.LVal) bool {
	return next.Source.Line > p.endLine(prev)
}

// blankLinesBetween returns the number of blank lines separating prev and
// next, clamped to the configured maximum.
func (p *printer) blankLinesBetween(prev, next *lisp.LVal) int {
	n := next.Source.Line - p.endLine(prev) - 1
	if n < 0 {
		return 0
	}
	if n > p.cfg.MaxBlankLines {
		n = p.cfg.MaxBlankLines
	}
	return n
}

// writeExpr dispatches to the appropriate printer for a node type.
func (p *printer) writeExpr(v *lisp.LVal) {
	if v.Type == lisp.LList {
		p.writeList(v)
		return
	}
	p.writeAtom(v)
}

// writeAtom writes a symbol, number or boolean using its original text.
func (p *printer) writeAtom(v *lisp.LVal) {
	if text, ok := p.text[v.Source.Pos]; ok {
		p.writeString(text)
		return
	}
	switch v.Type {
	case lisp.LNumber:
		p.writeString(strconv.FormatFloat(v.Num, 'g', -1, 64))
	case lisp.LBool:
		p.writeString(strconv.FormatBool(v.Bool))
	default:
		p.writeString(v.Str)
	}
}

// writeList writes a list.  A list headed by a symbol is a call or special
// form and is indented by the rule for its head.  Other lists are data and
// align their elements just inside the bracket.
func (p *printer) writeList(v *lisp.LVal) {
	p.writeString("(")
	bracketCol := p.col - 1 // column of the opening bracket

	// For data lists, preserve first-child-on-new-line.
	isCall := v.Cells[0].Type == lisp.LSymbol
	if !isCall && v.Cells[0].Source.Line > v.Source.Line {
		p.newline()
		p.writeIndent(bracketCol + 1)
	}
	p.writeExpr(v.Cells[0])
	firstArgCol := p.col + 1 // column where the first arg would go (after space)

	rule := &IndentRule{Style: IndentAlign}
	if isCall {
		rule = p.cfg.RuleFor(v.Cells[0].Str)
	} else {
		firstArgCol = bracketCol + 1
	}

	// When the first argument wraps to a new line, fall back to body indent
	// to avoid rightward drift from long form names.
	if isCall && len(v.Cells) > 1 && p.newlineBetween(v.Cells[0], v.Cells[1]) {
		if rule.Style == IndentAlign {
			rule = &IndentRule{Style: IndentBody}
		}
	}

	for i := 1; i < len(v.Cells); i++ {
		child := v.Cells[i]
		onNewLine := p.newlineBetween(v.Cells[i-1], child)
		childIndent := p.computeChildIndent(rule, i, firstArgCol, bracketCol, onNewLine)
		if onNewLine {
			p.newline()
			for j := 0; j < p.blankLinesBetween(v.Cells[i-1], child); j++ {
				p.newline()
			}
			p.writeIndent(childIndent)
		} else {
			p.writeString(" ")
		}
		p.writeExpr(child)
	}

	last := v.Cells[len(v.Cells)-1]
	if end, ok := p.closeOf[v.Source.Pos]; ok && end.Line > p.endLine(last) {
		p.newline()
		p.writeIndent(p.computeChildIndent(rule, len(v.Cells), firstArgCol, bracketCol, true))
	}
	p.writeString(")")
}

// computeChildIndent determines the indentation for child at index i.
// For IndentSpecial header args, if the child wraps to a new line, body indent
// is used instead of first-arg alignment to avoid rightward drift.
func (p *printer) computeChildIndent(rule *IndentRule, childIdx int, firstArgCol int, bracketCol int, onNewLine bool) int {
	switch rule.Style {
	case IndentBody:
		return bracketCol + p.cfg.IndentSize
	case IndentSpecial:
		if childIdx <= rule.HeaderArgs {
			if onNewLine {
				return bracketCol + p.cfg.IndentSize
			}
			return firstArgCol
		}
		return bracketCol + p.cfg.IndentSize
	default: // IndentAlign
		return firstArgCol
	}
}

// writeIndent writes spaces to reach the desired column.
func (p *printer) writeIndent(col int) {
	if !p.atBOL {
		return
	}
	p.buf.WriteString(strings.Repeat(" ", col))
	p.col = col
	p.atBOL = false
}

// writeString writes s, which never holds a newline, updating column
// tracking.  Columns count runes.
func (p *printer) writeString(s string) {
	if p.atBOL && s != "" {
		p.atBOL = false
	}
	p.buf.WriteString(s)
	p.col += utf8.RuneCountInString(s)
}

// newline writes a newline and marks beginning of line.
func (p *printer) newline() {
	p.buf.WriteByte('\n')
	p.col = 0
	p.atBOL = true
}
