// Copyright © 2024 The ELPS authors

/*
Package regexparser provides a lisp reader built from parser combinators.

	expr := '(' <expr>+ ')' | <atom>
	atom := /[^()\t\n\v\f\r\x{85}\p{Z}]+/

Whitespace is every rune unicode.IsSpace reports, as in rdparser, and atoms
are classified the same way, so both readers build identical programs from
valid source.
*/
package regexparser

import (
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
	parsec "github.com/prataprc/goparsec"
)

// NewReader returns a lisp.Reader.
func NewReader() lisp.Reader {
	return &parsecReader{}
}

type parsecReader struct{}

func (p *parsecReader) Read(name string, r io.Reader) (*lisp.LVal, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseProgram(name, b)
}

// spaceClass matches the runes of unicode.IsSpace: the ASCII controls, NEL
// and the Unicode separator categories.
const spaceClass = `\t\n\v\f\r\x{85}\p{Z}`

var (
	wsPattern   = `^[` + spaceClass + `]+`
	atomPattern = `[^()` + spaceClass + `]+`
)

const (
	nodeInvalid nodeType = iota
	nodeTerm
	nodeList
	nodeListUnmatched
)

var nodeTypeStrings = []string{
	nodeInvalid:       "INVALID",
	nodeTerm:          "TERM",
	nodeList:          "LIST",
	nodeListUnmatched: "LISTOPENUNMATCHED",
}

type nodeType uint

func (t nodeType) String() string {
	if int(t) >= len(nodeTypeStrings) {
		return "INVALID"
	}
	return nodeTypeStrings[t]
}

// ParseProgram parses every form in text and returns them wrapped in a
// single outer list.
func ParseProgram(name string, text []byte) (*lisp.LVal, error) {
	lines := newLineIndex(name, text)
	s := parsec.NewScanner(text).SetWSPattern(wsPattern)
	parser := newParsecParser(lines)

	var cells []*lisp.LVal
	root, s := parser(s)
	for root != nil {
		v, err := getLVal(root)
		if err != nil {
			return nil, err
		}
		cells = append(cells, v)
		root, s = parser(s)
	}
	_, s = s.SkipWS()
	if !s.Endof() {
		loc := lines.location(s.GetCursor())
		return nil, lisp.ParseError(loc, false, "unexpected token )")
	}
	if len(cells) == 0 {
		return nil, lisp.ParseError(nil, false, "no tokens provided")
	}
	prog := lisp.List(cells)
	prog.Source = cells[0].Source
	return prog, nil
}

func newParsecParser(lines *lineIndex) parsec.Parser {
	openP := parsec.Atom("(", "OPENP")
	closeP := parsec.Atom(")", "CLOSEP")
	atom := parsec.Token(atomPattern, "ATOM")

	var expr parsec.Parser // forward declaration allows for recursive parsing
	exprList := parsec.Kleene(nil, &expr)
	list := parsec.And(lines.astNode(nodeList), openP, exprList, closeP)
	listOUnmatched := parsec.And(lines.astNode(nodeListUnmatched), openP, exprList, parsec.End())
	term := parsec.OrdChoice(lines.astNode(nodeTerm), atom)
	expr = parsec.OrdChoice(nil,
		term,
		list,
		// Error matching cases come last because they have the lowest
		// precedence.
		listOUnmatched,
	)
	return expr
}

func (lines *lineIndex) astNode(t nodeType) parsec.Nodify {
	return func(nodes []parsec.ParsecNode) parsec.ParsecNode {
		return lines.newAST(t, nodes)
	}
}

func (lines *lineIndex) newAST(typ nodeType, nodes []parsec.ParsecNode) parsec.ParsecNode {
	nodes, ok := cleanParsecNodeList(nodes)
	if !ok {
		// There is an error in the first position.
		return nodes[0]
	}
	if len(nodes) == 0 {
		return fmt.Errorf("empty %s node", typ)
	}
	switch typ {
	case nodeTerm:
		term := nodes[0].(*parsec.Terminal)
		return lisp.Atom(term.GetValue(), lines.location(term.GetPosition()))
	case nodeListUnmatched:
		open := nodes[0].(*parsec.Terminal)
		return lisp.ParseError(lines.location(open.GetPosition()), true, "unclosed (")
	case nodeList:
		open := nodes[0].(*parsec.Terminal)
		loc := lines.location(open.GetPosition())
		// We don't want terminal parsec nodes '(' and ')'
		cells := make([]*lisp.LVal, 0, len(nodes)-2)
		for _, c := range nodes {
			switch c := c.(type) {
			case *lisp.LVal:
				cells = append(cells, c)
			}
		}
		if len(cells) == 0 {
			return lisp.ParseError(loc, false, "empty list () is not allowed")
		}
		lval := lisp.List(cells)
		lval.Source = loc
		return lval
	default:
		panic(fmt.Sprintf("unknown nodeType: %s (%d)", typ, typ))
	}
}

func cleanParsecNodeList(lis []parsec.ParsecNode) ([]parsec.ParsecNode, bool) {
	var nodes []parsec.ParsecNode
	for _, n := range lis {
		switch node := n.(type) {
		case error:
			nodes = []parsec.ParsecNode{node}
			return nodes, false
		case []parsec.ParsecNode:
			clean, ok := cleanParsecNodeList(node)
			if !ok {
				return clean, false
			}
			nodes = append(nodes, clean...)
		case nil:
		default:
			nodes = append(nodes, node)
		}
	}
	return nodes, true
}

func getLVal(root parsec.ParsecNode) (*lisp.LVal, error) {
	nodes, ok := cleanParsecNodeList([]parsec.ParsecNode{root})
	if !ok {
		return nil, nodes[0].(error)
	}
	if len(nodes) != 1 {
		return nil, fmt.Errorf("unexpected parse tree with %d roots", len(nodes))
	}
	lval, ok := nodes[0].(*lisp.LVal)
	if !ok {
		return nil, fmt.Errorf("unexpected parse node: %T", nodes[0])
	}
	return lval, nil
}

// lineIndex converts byte offsets reported by parsec into source locations.
type lineIndex struct {
	name  string
	text  []byte
	start []int // byte offset of the first byte of each line
}

func newLineIndex(name string, text []byte) *lineIndex {
	lines := &lineIndex{name: name, text: text, start: []int{0}}
	for i, b := range text {
		if b == '\n' {
			lines.start = append(lines.start, i+1)
		}
	}
	return lines
}

func (lines *lineIndex) location(pos int) *token.Location {
	line := 0
	for line+1 < len(lines.start) && lines.start[line+1] <= pos {
		line++
	}
	col := 1 + utf8.RuneCount(lines.text[lines.start[line]:pos])
	return &token.Location{
		File: lines.name,
		Pos:  pos,
		Line: line + 1,
		Col:  col,
	}
}
