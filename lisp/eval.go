// Copyright © 2024 The ELPS authors

package lisp

import (
	"github.com/sirupsen/logrus"
)

// Eval evaluates v in the context (scope) of env and returns the resulting
// LVal.  Eval does not modify v.
func (env *LEnv) Eval(v *LVal) (*LVal, error) {
	if v.Source != nil && v.Source.Pos >= 0 {
		env.Loc = v.Source
	}
	switch v.Type {
	case LSymbol:
		val, ok := env.Get(v)
		if !ok {
			return nil, env.Errorf(CondUnboundSymbol, "unbound symbol: %v", v.Str)
		}
		return val, nil
	case LNumber, LBool:
		return v, nil
	case LList:
		return env.EvalList(v)
	case LFun, LLambda:
		return nil, env.Errorf(CondUnexpectedValueKind, "unexpected function expression")
	default:
		return nil, env.Errorf(CondUnexpectedValueKind, "invalid value: %v", v.Type)
	}
}

// EvalList evaluates the list s.  A list headed by the name of a special
// operator is handed to that operator unevaluated.  Otherwise the head is
// evaluated and, when it is a function, applied to the evaluated remaining
// elements.  A list whose head is not a function evaluates to a new list of
// every element's value.
func (env *LEnv) EvalList(s *LVal) (*LVal, error) {
	if s.Type != LList {
		return nil, env.Errorf(CondTypeMismatch, "not a list: %v", s.Type)
	}
	if len(s.Cells) == 0 {
		return nil, env.Errorf(CondEmptyList, "no item found in list")
	}
	head := s.Cells[0]
	if op := env.specialOp(head); op != nil {
		return env.SpecialOpCall(op, s.Cells[1:])
	}
	fun, err := env.Eval(head)
	if err != nil {
		return nil, err
	}
	args, err := env.evalCells(s.Cells[1:])
	if err != nil {
		return nil, err
	}
	switch fun.Type {
	case LFun, LLambda:
		env.Loc = s.Source
		return env.FunCall(funName(head), fun, args)
	default:
		cells := make([]*LVal, 0, len(s.Cells))
		cells = append(cells, fun)
		cells = append(cells, args...)
		lst := List(cells)
		lst.Source = s.Source
		return lst, nil
	}
}

func (env *LEnv) evalCells(cells []*LVal) ([]*LVal, error) {
	vals := make([]*LVal, len(cells))
	for i := range cells {
		v, err := env.Eval(cells[i])
		if err != nil {
			return nil, err
		}
		vals[i] = v
	}
	return vals, nil
}

// SpecialOpCall invokes special operator op with unevaluated args.
func (env *LEnv) SpecialOpCall(op LBuiltinDef, args []*LVal) (*LVal, error) {
	err := env.Runtime.Stack.Push(env.Loc, op.Name())
	if err != nil {
		return nil, env.stackError(err)
	}
	defer env.Runtime.Stack.Pop()
	return op.Eval(env, args)
}

// FunCall applies fun to evaluated args.  The name is recorded in the call
// stack before the profiler observes the call, so profilers find it in the
// top frame.
func (env *LEnv) FunCall(name string, fun *LVal, args []*LVal) (_ *LVal, err error) {
	if !fun.IsFunction() {
		return nil, env.Errorf(CondTypeMismatch, "not a function: %v", fun.Type)
	}
	if name == "" {
		name = fun.Str
	}
	if name == "" {
		name = "lambda"
	}
	if perr := env.Runtime.Stack.Push(env.Loc, name); perr != nil {
		return nil, env.stackError(perr)
	}
	defer env.Runtime.Stack.Pop()
	if p := env.Runtime.Profiler; p != nil && p.IsEnabled() {
		end := p.Start(fun)
		defer func() { end(err) }()
	}

	if fun.Type == LFun {
		return fun.Builtin(env, args)
	}
	return env.applyLambda(fun, args)
}

func (env *LEnv) applyLambda(fun *LVal, args []*LVal) (*LVal, error) {
	params := fun.Params()
	if params.Type != LList {
		return nil, env.Errorf(CondTypeMismatch, "lambda parameters are not a list: %v", params.Type)
	}
	for _, p := range params.Cells {
		if p.Type != LSymbol {
			return nil, env.Errorf(CondTypeMismatch, "lambda parameter is not a symbol: %v", p.Type)
		}
	}
	if len(params.Cells) != len(args) {
		return nil, env.Errorf(CondArityError, "expected %d arguments (got %d)", len(params.Cells), len(args))
	}
	parent := env
	if env.Runtime.Scoping == LexicalScope && fun.Env != nil {
		parent = fun.Env
	}
	scope := NewEnv(parent)
	for i, p := range params.Cells {
		scope.Define(p.Str, args[i])
	}
	if env.Runtime.Logger.IsLevelEnabled(logrus.DebugLevel) {
		env.Runtime.Logger.WithFields(logrus.Fields{
			"params": params.String(),
			"args":   len(args),
			"scope":  scope.ID,
			"depth":  scope.Depth(),
		}).Debug("apply lambda")
	}
	return scope.Eval(fun.Body())
}

func (env *LEnv) stackError(err error) *ErrorVal {
	lerr := env.Errorf(CondStackOverflow, "%v", err)
	lerr.Err = err
	return lerr
}

func funName(head *LVal) string {
	if head.Type == LSymbol {
		return head.Str
	}
	return ""
}
