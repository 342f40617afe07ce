// Copyright © 2024 The ELPS authors

package lisp

import "github.com/sirupsen/logrus"

// Special operators receive their arguments unevaluated.  They are
// recognized by the name of the head symbol of a list before the head is
// evaluated, so they cannot be shadowed by definitions.
var langSpecialOps = []*langBuiltin{
	{"def", Formals("symbol", "expr"), opDef,
		`Evaluates expr and binds the result to symbol in the current
		scope, replacing any binding the current scope already holds.
		Returns the symbol.  Nothing is bound if expr fails.`},
	{"fn", Formals("params", "body"), opFn,
		`Returns a function.  Params is a list of symbols and body is a
		single expression.  Neither is evaluated until the function is
		applied, at which point the number of arguments must match the
		number of params exactly.`},
	{"if", Formals("test", "then", "else"), opIf,
		`Evaluates test, which must produce a boolean, and then evaluates
		and returns then when test is true or else when it is false.  The
		branch not taken is never evaluated.`},
}

// specialOps indexes langSpecialOps by name.  It is filled by init because
// the operators themselves reach the evaluator, which consults it.
var specialOps map[string]*langBuiltin

func init() {
	specialOps = make(map[string]*langBuiltin, len(langSpecialOps))
	for _, op := range langSpecialOps {
		specialOps[op.name] = op
	}
}

// DefaultSpecialOps returns the special operators recognized by the
// evaluator.
func DefaultSpecialOps() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langSpecialOps))
	for i := range langSpecialOps {
		ops[i] = langSpecialOps[i]
	}
	return ops
}

// specialOp returns the special operator named by head, if there is one in
// env's runtime.
func (env *LEnv) specialOp(head *LVal) *langBuiltin {
	if head.Type != LSymbol {
		return nil
	}
	op, ok := specialOps[head.Str]
	if !ok || (op.name == "if" && env.Runtime.EagerIf) {
		return nil
	}
	return op
}

func opDef(env *LEnv, args []*LVal) (*LVal, error) {
	if len(args) == 0 {
		return nil, env.Errorf(CondArityError, "no symbol given")
	}
	sym := args[0]
	if sym.Type != LSymbol {
		return nil, env.Errorf(CondTypeMismatch, "first argument is not a symbol: %v", sym.Type)
	}
	if len(args) == 1 {
		return nil, env.Errorf(CondArityError, "no value given for %s", sym.Str)
	}
	if len(args) > 2 {
		return nil, env.Errorf(CondArityError, "only one value may follow the symbol (got %d)", len(args)-1)
	}
	v, err := env.Eval(args[1])
	if err != nil {
		return nil, err
	}
	env.Define(sym.Str, v)
	env.Runtime.Logger.WithFields(logrus.Fields{
		"symbol": sym.Str,
		"type":   v.Type.String(),
		"scope":  env.ID,
	}).Debug("def")
	return sym, nil
}

func opFn(env *LEnv, args []*LVal) (*LVal, error) {
	if len(args) != 2 {
		return nil, env.Errorf(CondArityError, "two arguments expected (got %d)", len(args))
	}
	fun := Lambda(args[0], args[1], env)
	fun.Source = env.Loc
	return fun, nil
}

func opIf(env *LEnv, args []*LVal) (*LVal, error) {
	if len(args) != 3 {
		return nil, env.Errorf(CondArityError, "three arguments expected (got %d)", len(args))
	}
	test, err := env.Eval(args[0])
	if err != nil {
		return nil, err
	}
	if test.Type != LBool {
		return nil, env.Errorf(CondTypeMismatch, "test is not a boolean: %v", test.Type)
	}
	if test.Bool {
		return env.Eval(args[1])
	}
	return env.Eval(args[2])
}
