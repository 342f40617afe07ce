// Copyright © 2024 The ELPS authors

package lisp

import (
	"strings"
)

// VarArgSymbol marks the formal parameter that collects remaining arguments
// in builtin documentation.
const VarArgSymbol = "&rest"

// LBuiltinDef is a built-in function or special form.
type LBuiltinDef interface {
	Name() string
	Formals() *LVal
	Eval(env *LEnv, args []*LVal) (*LVal, error)
	Docstring() string
}

type langBuiltin struct {
	name    string
	formals *LVal
	fun     LBuiltin
	docs    string
}

func (fun *langBuiltin) Name() string {
	return fun.name
}

func (fun *langBuiltin) Formals() *LVal {
	return fun.formals
}

func (fun *langBuiltin) Eval(env *LEnv, args []*LVal) (*LVal, error) {
	return fun.fun(env, args)
}

func (fun *langBuiltin) Docstring() string {
	return builtinDocstring(fun.docs)
}

// Formals returns a list of parameter symbols for builtin documentation.
func Formals(argSymbols ...string) *LVal {
	cells := make([]*LVal, len(argSymbols))
	for i, name := range argSymbols {
		cells[i] = Symbol(name)
	}
	return List(cells)
}

// builtinDocstring removes the source indentation from a docstring literal.
func builtinDocstring(docs string) string {
	lines := strings.Split(strings.TrimSpace(docs), "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	return strings.Join(lines, "\n")
}

var langBuiltins = []*langBuiltin{
	{"+", Formals(VarArgSymbol, "x"), builtinAdd,
		`Returns the sum of its arguments.  With no arguments the sum is 0.`},
	{"-", Formals("x", VarArgSymbol, "y"), builtinSub,
		`Returns the first argument minus the sum of the remaining
		arguments.  At least one argument is required.`},
	{"<", Formals(VarArgSymbol, "x"), builtinLT,
		`Returns true if each argument is strictly less than the one
		following it.  Vacuously true for fewer than two arguments.`},
	{">", Formals(VarArgSymbol, "x"), builtinGT,
		`Returns true if each argument is strictly greater than the one
		following it.  Vacuously true for fewer than two arguments.`},
	{"<=", Formals(VarArgSymbol, "x"), builtinLEq,
		`Returns true if each argument is less than or equal to the one
		following it.  Vacuously true for fewer than two arguments.`},
	{">=", Formals(VarArgSymbol, "x"), builtinGEq,
		`Returns true if each argument is greater than or equal to the one
		following it.  Vacuously true for fewer than two arguments.`},
}

var eagerIfBuiltin = &langBuiltin{"if", Formals("test", "then", "else"), builtinIf,
	`Returns then if test is true and else otherwise.  Test must be a
	boolean.  As an ordinary function both branches are evaluated
	before one is returned.`}

// DefaultBuiltins returns the default set of LBuiltinDefs added to LEnv
// objects when LEnv.AddBuiltins is called without arguments.
func DefaultBuiltins() []LBuiltinDef {
	ops := make([]LBuiltinDef, len(langBuiltins))
	for i := range langBuiltins {
		ops[i] = langBuiltins[i]
	}
	return ops
}

func builtinAdd(env *LEnv, args []*LVal) (*LVal, error) {
	err := checkNumeric(env, args)
	if err != nil {
		return nil, err
	}
	sum := 0.0
	for _, c := range args {
		sum += c.Num
	}
	return Number(sum), nil
}

func builtinSub(env *LEnv, args []*LVal) (*LVal, error) {
	if len(args) == 0 {
		return nil, env.Errorf(CondArityError, "at least one argument expected")
	}
	err := checkNumeric(env, args)
	if err != nil {
		return nil, err
	}
	rest := 0.0
	for _, c := range args[1:] {
		rest += c.Num
	}
	return Number(args[0].Num - rest), nil
}

func builtinLT(env *LEnv, args []*LVal) (*LVal, error) {
	return compareChain(env, args, func(a, b float64) bool { return a < b })
}

func builtinGT(env *LEnv, args []*LVal) (*LVal, error) {
	return compareChain(env, args, func(a, b float64) bool { return a > b })
}

func builtinLEq(env *LEnv, args []*LVal) (*LVal, error) {
	return compareChain(env, args, func(a, b float64) bool { return a <= b })
}

func builtinGEq(env *LEnv, args []*LVal) (*LVal, error) {
	return compareChain(env, args, func(a, b float64) bool { return a >= b })
}

func builtinIf(env *LEnv, args []*LVal) (*LVal, error) {
	if len(args) != 3 {
		return nil, env.Errorf(CondArityError, "three arguments expected (got %d)", len(args))
	}
	if args[0].Type != LBool {
		return nil, env.Errorf(CondTypeMismatch, "test is not a boolean: %v", args[0].Type)
	}
	if args[0].Bool {
		return args[1], nil
	}
	return args[2], nil
}

// compareChain checks every consecutive pair of args with ok.  All arguments
// are type checked before any comparison is made.
func compareChain(env *LEnv, args []*LVal, ok func(a, b float64) bool) (*LVal, error) {
	err := checkNumeric(env, args)
	if err != nil {
		return nil, err
	}
	for i := 1; i < len(args); i++ {
		if !ok(args[i-1].Num, args[i].Num) {
			return Bool(false), nil
		}
	}
	return Bool(true), nil
}

func checkNumeric(env *LEnv, args []*LVal) error {
	for i, c := range args {
		if c.Type != LNumber {
			return env.Errorf(CondTypeMismatch, "argument %d is not a number: %v", i, c.Type)
		}
	}
	return nil
}
