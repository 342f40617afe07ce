// Copyright © 2024 The ELPS authors

package lint

import (
	"github.com/luthersystems/tinylisp/analysis"
	"github.com/luthersystems/tinylisp/lisp"
)

// AnalyzerDefStructure checks for malformed `def` forms.
var AnalyzerDefStructure = &Analyzer{
	Name:     "def-structure",
	Doc:      "Check for malformed `def` forms.\n\nA `def` takes exactly a symbol and one expression.  Anything else fails when it is evaluated.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			if HeadSymbol(list) != "def" {
				return
			}
			src := SourceOf(list)
			argc := ArgCount(list)
			if argc != 2 {
				pass.Reportf(src.Source, "def requires a symbol and a value (got %d arguments)", argc)
				return
			}
			if name := list.Cells[1]; name.Type != lisp.LSymbol {
				pass.Reportf(SourceOf(name).Source, "def name must be a symbol, got %s", name.Type)
			}
		})
		return nil
	},
}

// AnalyzerFnStructure checks for malformed `fn` forms.
var AnalyzerFnStructure = &Analyzer{
	Name:     "fn-structure",
	Doc:      "Check for malformed `fn` forms.\n\nAn `fn` takes a list of parameter symbols and a single body expression.  A parameter named twice is reported as a warning because only the last argument bound to it is visible.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			if HeadSymbol(list) != "fn" {
				return
			}
			src := SourceOf(list)
			argc := ArgCount(list)
			if argc != 2 {
				pass.Reportf(src.Source, "fn requires a parameter list and a body (got %d arguments)", argc)
				return
			}
			params := list.Cells[1]
			if params.Type != lisp.LList {
				pass.Reportf(SourceOf(params).Source, "fn parameters must be a list, got %s", params.Type)
				return
			}
			seen := make(map[string]bool)
			for i, p := range params.Cells {
				if p.Type != lisp.LSymbol {
					pass.Reportf(p.Source, "fn parameter %d must be a symbol, got %s", i+1, p.Type)
					continue
				}
				if seen[p.Str] {
					pass.Report(Diagnostic{
						Pos:      position(p),
						Message:  "duplicate fn parameter " + p.Str,
						Severity: SeverityWarning,
					})
				}
				seen[p.Str] = true
			}
		})
		return nil
	},
}

// AnalyzerIfArity checks that `if` has exactly 3 arguments (condition, then, else).
var AnalyzerIfArity = &Analyzer{
	Name:     "if-arity",
	Doc:      "Check that `if` has exactly 3 arguments: condition, then-branch, else-branch.\n\nThere is no one-armed `if`.  A missing or extra branch fails when the form is evaluated.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			if HeadSymbol(list) != "if" {
				return
			}
			argc := ArgCount(list)
			if argc == 3 {
				return
			}
			src := SourceOf(list)
			if argc < 3 {
				pass.Reportf(src.Source, "if requires 3 arguments (condition, then, else), got too few (%d)", argc)
			} else {
				pass.Reportf(src.Source, "if requires 3 arguments (condition, then, else), got too many (%d)", argc)
			}
		})
		return nil
	},
}

var numericBuiltins = map[string]bool{
	"+": true, "-": true, "<": true, ">": true, "<=": true, ">=": true,
}

// AnalyzerBuiltinArity checks calls to builtin functions that cannot
// succeed.
var AnalyzerBuiltinArity = &Analyzer{
	Name:     "builtin-arity",
	Doc:      "Check calls to builtin functions that always fail.\n\n`-` needs at least one argument and every arithmetic and comparison builtin rejects boolean literals.  Names the file rebinds are skipped.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		userDefs := UserDefined(pass.Exprs)
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			head := HeadSymbol(list)
			if !numericBuiltins[head] || userDefs[head] {
				return
			}
			if head == "-" && ArgCount(list) == 0 {
				pass.Reportf(SourceOf(list).Source, "- requires at least 1 argument")
				return
			}
			for i, arg := range list.Cells[1:] {
				if arg.Type == lisp.LBool {
					pass.Reportf(arg.Source, "argument %d of %s is a boolean, not a number", i+1, head)
				}
			}
		})
		return nil
	},
}

// AnalyzerSpecialRedefinition warns when def binds the name of a special
// operator.
var AnalyzerSpecialRedefinition = &Analyzer{
	Name:     "special-redefinition",
	Doc:      "Warn when `def` binds the name of a special operator.\n\nSpecial operators are recognized before the head of a list is evaluated, so the new binding is never called.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			if HeadSymbol(list) != "def" || ArgCount(list) < 1 {
				return
			}
			name := list.Cells[1]
			if name.Type == lisp.LSymbol && analysis.IsSpecialOp(name.Str) {
				pass.Reportf(name.Source, "def of special operator %s has no effect on calls", name.Str)
			}
		})
		return nil
	},
}

// AnalyzerConstantCondition reports `if` forms whose test is a literal.
var AnalyzerConstantCondition = &Analyzer{
	Name:     "constant-condition",
	Doc:      "Report `if` forms whose test is a literal.\n\nA boolean literal makes one branch unreachable.  A number literal is never a boolean and always fails.",
	Severity: SeverityInfo,
	Run: func(pass *Pass) error {
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			if HeadSymbol(list) != "if" || ArgCount(list) < 1 {
				return
			}
			test := list.Cells[1]
			switch test.Type {
			case lisp.LBool:
				pass.Reportf(test.Source, "if test is always %t", test.Bool)
			case lisp.LNumber:
				pass.Report(Diagnostic{
					Pos:      position(test),
					Message:  "if test must be a boolean, got number",
					Severity: SeverityError,
				})
			}
		})
		return nil
	},
}

// AnalyzerUndefinedSymbol reports top-level uses of names that nothing in
// the file or the builtins binds.
var AnalyzerUndefinedSymbol = &Analyzer{
	Name:     "undefined-symbol",
	Doc:      "Report top-level uses of unbound symbols.\n\nFree names inside function bodies are not reported because a caller may bind them.",
	Severity: SeverityWarning,
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		for _, u := range pass.Semantics.Unresolved {
			pass.Reportf(u.Source, "unbound symbol: %s", u.Name)
		}
		return nil
	},
}

// AnalyzerCallArity checks calls to functions defined once at the top level
// against the number of parameters they declare.
var AnalyzerCallArity = &Analyzer{
	Name:     "call-arity",
	Doc:      "Check the argument count of calls to functions defined in the file.\n\nOnly names bound exactly once by a top-level `def` of an `fn` form are checked.",
	Severity: SeverityError,
	Run: func(pass *Pass) error {
		if pass.Semantics == nil {
			return nil
		}
		defs := make(map[string]int)
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			if HeadSymbol(list) == "def" && ArgCount(list) >= 1 && list.Cells[1].Type == lisp.LSymbol {
				defs[list.Cells[1].Str]++
			}
		})
		WalkLists(pass.Exprs, func(list *lisp.LVal, depth int) {
			head := list.Cells[0]
			if head.Type != lisp.LSymbol || head.Source == nil {
				return
			}
			sym, ref := pass.Semantics.SymbolAt(head.Source.Line, head.Source.Col)
			if ref == nil || sym.Kind != analysis.SymFunction || sym.Scope != pass.Semantics.Root {
				return
			}
			if defs[sym.Name] != 1 {
				return
			}
			if argc := ArgCount(list); argc != len(sym.Params) {
				pass.Reportf(head.Source, "%s expects %d arguments (got %d)", sym.Name, len(sym.Params), argc)
			}
		})
		return nil
	},
}

func position(v *lisp.LVal) Position {
	src := SourceOf(v).Source
	if src == nil || src.Pos < 0 {
		return Position{}
	}
	return Position{File: src.File, Line: src.Line, Col: src.Col}
}
