// Copyright © 2024 The ELPS authors

package lisp

import (
	"io"
	"os"
	"sync/atomic"

	"github.com/sirupsen/logrus"
)

// Scoping selects the parent scope of a lambda application.
type Scoping uint8

const (
	// DynamicScope makes the caller's scope the parent of a lambda's
	// parameter scope.  Free variables in a lambda body resolve against the
	// bindings visible where the lambda is called.
	DynamicScope Scoping = iota
	// LexicalScope makes the scope in which the lambda was created the
	// parent of its parameter scope.
	LexicalScope
)

var scopingStrings = []string{
	DynamicScope: "dynamic",
	LexicalScope: "lexical",
}

func (s Scoping) String() string {
	if int(s) >= len(scopingStrings) {
		return "invalid"
	}
	return scopingStrings[s]
}

// Runtime is an object underlying a tree of LEnv values.  It is responsible
// for holding shared session state, generating identifiers, and writing
// debugging output to a stream (typically os.Stderr).
type Runtime struct {
	Stderr   io.Writer
	Stack    *CallStack
	Reader   Reader
	Profiler Profiler
	Logger   *logrus.Logger
	Scoping  Scoping
	// EagerIf installs if as an ordinary builtin which receives both of its
	// branches already evaluated.
	EagerIf bool
	numenv  atomicCounter
}

// StandardRuntime returns a new Runtime with Stderr set to os.Stderr and a
// logger that only reports warnings.
func StandardRuntime() *Runtime {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	return &Runtime{
		Stderr: os.Stderr,
		Stack:  &CallStack{},
		Logger: logger,
	}
}

// GenEnvID returns an identifier unique within the runtime.
func (r *Runtime) GenEnvID() uint {
	return r.numenv.Add(1)
}

type atomicCounter uint64

func (c *atomicCounter) Add(n uint) uint {
	return uint(atomic.AddUint64((*uint64)(c), uint64(n)))
}
