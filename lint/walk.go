// Copyright © 2024 The ELPS authors

package lint

import "github.com/luthersystems/tinylisp/lisp"

// Walk calls fn for every node in the tree, depth-first.
// parent is nil for top-level expressions.
func Walk(exprs []*lisp.LVal, fn func(node *lisp.LVal, parent *lisp.LVal, depth int)) {
	for _, expr := range exprs {
		walkNode(expr, nil, 0, fn)
	}
}

func walkNode(node *lisp.LVal, parent *lisp.LVal, depth int, fn func(*lisp.LVal, *lisp.LVal, int)) {
	if node == nil {
		return
	}
	fn(node, parent, depth)
	for _, child := range node.Cells {
		walkNode(child, node, depth+1, fn)
	}
}

// WalkLists calls fn for every non-empty list in the tree.  Every such list
// is a potential function call or special form.
func WalkLists(exprs []*lisp.LVal, fn func(list *lisp.LVal, depth int)) {
	Walk(exprs, func(node *lisp.LVal, _ *lisp.LVal, depth int) {
		if node.Type == lisp.LList && len(node.Cells) > 0 {
			fn(node, depth)
		}
	})
}

// HeadSymbol returns the symbol name at the head of a list, or "".
func HeadSymbol(list *lisp.LVal) string {
	if list.Type != lisp.LList || len(list.Cells) == 0 {
		return ""
	}
	head := list.Cells[0]
	if head.Type == lisp.LSymbol {
		return head.Str
	}
	return ""
}

// ArgCount returns the number of arguments in a list (excluding the head).
func ArgCount(list *lisp.LVal) int {
	if len(list.Cells) <= 1 {
		return 0
	}
	return len(list.Cells) - 1
}

// UserDefined returns the set of names bound anywhere in the source by def
// or as lambda parameters.  The result is file-global, not scope-aware, so it
// may suppress a valid finding but never produces a false positive.
func UserDefined(exprs []*lisp.LVal) map[string]bool {
	defs := make(map[string]bool)
	WalkLists(exprs, func(list *lisp.LVal, depth int) {
		switch HeadSymbol(list) {
		case "def":
			if ArgCount(list) >= 1 && list.Cells[1].Type == lisp.LSymbol {
				defs[list.Cells[1].Str] = true
			}
		case "fn":
			if ArgCount(list) >= 1 && list.Cells[1].Type == lisp.LList {
				for _, p := range list.Cells[1].Cells {
					if p.Type == lisp.LSymbol {
						defs[p.Str] = true
					}
				}
			}
		}
	})
	return defs
}

// SourceOf returns the best source location for a node.
// Prefers the node's own source, falls back to first child's source.
func SourceOf(v *lisp.LVal) *lisp.LVal {
	if v.Source != nil && v.Source.Line > 0 {
		return v
	}
	if len(v.Cells) > 0 && v.Cells[0].Source != nil {
		return v.Cells[0]
	}
	return v
}
