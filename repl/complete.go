// Copyright © 2024 The ELPS authors

package repl

import (
	"sort"
	"strings"
	"unicode"

	"github.com/luthersystems/tinylisp/lisp"
)

// symbolCompleter implements readline.AutoCompleter over the names bound in
// the session.  Special operators are offered only at the head of a list
// since they are not values.
type symbolCompleter struct {
	env *lisp.LEnv
}

func (c *symbolCompleter) Do(line []rune, pos int) ([][]rune, int) {
	start := wordStart(line, pos)
	prefix := string(line[start:pos])
	if prefix == "" || looksNumeric(prefix) {
		return nil, 0
	}
	head := start > 0 && line[start-1] == '('
	names := c.candidates(prefix, head)
	if len(names) == 0 {
		return nil, 0
	}
	suffixes := make([][]rune, len(names))
	for i, name := range names {
		suffixes[i] = []rune(strings.TrimPrefix(name, prefix))
	}
	return suffixes, len([]rune(prefix))
}

// wordStart returns the index of the first rune of the atom ending at pos.
func wordStart(line []rune, pos int) int {
	start := pos
	for start > 0 {
		r := line[start-1]
		if r == '(' || r == ')' || unicode.IsSpace(r) {
			break
		}
		start--
	}
	return start
}

func looksNumeric(s string) bool {
	s = strings.TrimLeft(s, "+-.")
	return s != "" && unicode.IsDigit(rune(s[0]))
}

func (c *symbolCompleter) candidates(prefix string, head bool) []string {
	set := make(map[string]struct{})
	add := func(name string) {
		if strings.HasPrefix(name, prefix) {
			set[name] = struct{}{}
		}
	}
	for _, name := range c.env.Root().Names() {
		add(name)
	}
	if head {
		for _, op := range lisp.DefaultSpecialOps() {
			add(op.Name())
		}
	}
	add(lisp.TrueSymbol)
	add(lisp.FalseSymbol)

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
