// Copyright © 2024 The ELPS authors

package lisp

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/luthersystems/tinylisp/parser/token"
	"github.com/sirupsen/logrus"
)

// Reader parses program text.  A Reader returns the whole program as a single
// implicit List containing each top-level form.
type Reader interface {
	Read(name string, r io.Reader) (*LVal, error)
}

// LEnv is a lisp environment, a single scope in a chain of scopes.
type LEnv struct {
	Loc     *token.Location
	Scope   map[string]*LVal
	Parent  *LEnv
	Runtime *Runtime
	ID      uint
}

// NewSession creates the root environment for a new session and installs
// the builtin functions.  Configs are applied before builtins are installed
// so they may influence which builtins exist.
func NewSession(config ...Config) (*LEnv, error) {
	env := NewEnvRuntime(nil)
	for _, fn := range config {
		err := fn(env)
		if err != nil {
			return nil, err
		}
	}
	env.AddBuiltins()
	env.Runtime.Logger.WithFields(logrus.Fields{
		"scoping":  env.Runtime.Scoping.String(),
		"eager-if": env.Runtime.EagerIf,
		"builtins": len(env.Scope),
	}).Debug("session created")
	return env, nil
}

// NewEnvRuntime initializes a root LEnv that uses rt.  When rt is nil
// StandardRuntime() is called to create a new Runtime for the returned LEnv.
func NewEnvRuntime(rt *Runtime) *LEnv {
	if rt == nil {
		rt = StandardRuntime()
	}
	return &LEnv{
		ID:      rt.GenEnvID(),
		Loc:     nativeSource(),
		Scope:   make(map[string]*LVal),
		Runtime: rt,
	}
}

// NewEnv returns a new scope whose lookups fall back to parent.  A nil parent
// creates a root scope with a standard runtime.
func NewEnv(parent *LEnv) *LEnv {
	if parent == nil {
		return NewEnvRuntime(nil)
	}
	return &LEnv{
		ID:      parent.Runtime.GenEnvID(),
		Loc:     parent.Loc,
		Scope:   make(map[string]*LVal),
		Parent:  parent,
		Runtime: parent.Runtime,
	}
}

// Get looks up symbol k in env and then in each parent scope in turn.  The
// second return value is false if no scope binds k.
func (env *LEnv) Get(k *LVal) (*LVal, bool) {
	if k.Type != LSymbol {
		return nil, false
	}
	return env.Lookup(k.Str)
}

// Lookup is like Get but takes a name.
func (env *LEnv) Lookup(name string) (*LVal, bool) {
	for ; env != nil; env = env.Parent {
		v, ok := env.Scope[name]
		if ok {
			return v, true
		}
	}
	return nil, false
}

// Put binds symbol k to v in env's own scope, never a parent scope.  An
// existing binding in env is replaced.
func (env *LEnv) Put(k, v *LVal) error {
	if k.Type != LSymbol {
		return env.Errorf(CondTypeMismatch, "key is not a symbol: %v", k.Type)
	}
	env.Define(k.Str, v)
	return nil
}

// Define binds name to v in env's own scope.
func (env *LEnv) Define(name string, v *LVal) {
	env.Scope[name] = v
}

// Root returns the outermost scope of the chain containing env.
func (env *LEnv) Root() *LEnv {
	for env.Parent != nil {
		env = env.Parent
	}
	return env
}

// Names returns the sorted set of names visible from env.
func (env *LEnv) Names() []string {
	seen := make(map[string]bool)
	var names []string
	for e := env; e != nil; e = e.Parent {
		for k := range e.Scope {
			if !seen[k] {
				seen[k] = true
				names = append(names, k)
			}
		}
	}
	sort.Strings(names)
	return names
}

// Depth returns the number of scopes between env and the root.
func (env *LEnv) Depth() int {
	n := 0
	for e := env.Parent; e != nil; e = e.Parent {
		n++
	}
	return n
}

// AddBuiltins binds the given funs to their names in env.  When called with
// no arguments AddBuiltins adds the DefaultBuiltins to env.
func (env *LEnv) AddBuiltins(funs ...LBuiltinDef) {
	if len(funs) == 0 {
		funs = DefaultBuiltins()
		if env.Runtime.EagerIf {
			funs = append(funs, eagerIfBuiltin)
		}
	}
	for _, f := range funs {
		if _, exists := env.Scope[f.Name()]; exists {
			panic("symbol already defined: " + f.Name())
		}
		env.Define(f.Name(), Fun(f.Name(), f.Eval))
	}
}

// Errorf returns an ErrorVal with the given condition, located at the
// expression currently being evaluated and carrying a copy of the call stack.
func (env *LEnv) Errorf(cond Condition, format string, v ...interface{}) *ErrorVal {
	return &ErrorVal{
		Condition: cond,
		Message:   fmt.Sprintf(format, v...),
		Source:    env.Loc,
		Stack:     env.Runtime.Stack.Copy(),
	}
}

// EvaluateProgram reads source with the runtime's Reader and evaluates it in
// env.  See EvaluateProgram.  A runtime without a Reader fails with
// CondNoReader.
func (env *LEnv) EvaluateProgram(source string) (*LVal, error) {
	return env.EvaluateProgramNamed("", source)
}

// EvaluateProgramNamed is like EvaluateProgram but names the source for
// error locations.
func (env *LEnv) EvaluateProgramNamed(name string, source string) (*LVal, error) {
	if env.Runtime.Reader == nil {
		return nil, env.Errorf(CondNoReader, "no reader for environment runtime; create the session with WithReader or parser.NewSession")
	}
	prog, err := env.Runtime.Reader.Read(name, strings.NewReader(source))
	if err != nil {
		return nil, err
	}
	if prog.Type == LList && len(prog.Cells) == 1 {
		return env.Eval(prog.Cells[0])
	}
	return env.Eval(prog)
}

// EvaluateProgram parses source and evaluates it in session.  When the
// program consists of a single top-level form that form is evaluated
// directly.  A program with several forms is evaluated as one list whose
// head is the first form, which for ordinary programs produces a data list of
// every form's value.
//
// The session must have a Reader.  The readers live in package parser, so
// sessions for EvaluateProgram are usually made with parser.NewSession.
func EvaluateProgram(source string, session *LEnv) (*LVal, error) {
	return session.EvaluateProgram(source)
}
