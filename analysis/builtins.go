// Copyright © 2024 The ELPS authors

package analysis

import "github.com/luthersystems/tinylisp/lisp"

// Builtins returns symbols for the builtin functions and special operators,
// including any extra names bound in env.
func Builtins(env *lisp.LEnv) map[string]*Symbol {
	syms := make(map[string]*Symbol)
	for _, op := range lisp.DefaultSpecialOps() {
		syms[op.Name()] = builtinSymbol(op, SymSpecialOp)
	}
	for _, fn := range lisp.DefaultBuiltins() {
		syms[fn.Name()] = builtinSymbol(fn, SymBuiltin)
	}
	if env == nil {
		return syms
	}
	for _, name := range env.Root().Names() {
		if _, ok := syms[name]; ok {
			continue
		}
		v, _ := env.Root().Lookup(name)
		sym := &Symbol{Name: name, Kind: SymVariable}
		if v.IsFunction() {
			sym.Kind = SymBuiltin
			sym.Params = lambdaParams(v.Params())
		}
		syms[name] = sym
	}
	return syms
}

func builtinSymbol(fn lisp.LBuiltinDef, kind SymbolKind) *Symbol {
	params := []string{}
	for _, p := range fn.Formals().Cells {
		params = append(params, p.Str)
	}
	return &Symbol{
		Name:      fn.Name(),
		Kind:      kind,
		Params:    params,
		DocString: fn.Docstring(),
	}
}

// IsSpecialOp reports whether name is handled by the evaluator before its
// head is resolved.
func IsSpecialOp(name string) bool {
	for _, op := range lisp.DefaultSpecialOps() {
		if op.Name() == name {
			return true
		}
	}
	return false
}
