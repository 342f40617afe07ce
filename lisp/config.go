// Copyright © 2024 The ELPS authors

package lisp

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Config is a function that configures a root environment or its runtime.
type Config func(env *LEnv) error

// WithMaximumStackHeight returns a Config that will prevent an execution
// environment from allowing the call stack height to exceed n.  Evaluation
// fails with a stack-overflow error instead.
func WithMaximumStackHeight(n int) Config {
	return func(env *LEnv) error {
		env.Runtime.Stack.MaxHeight = n
		return nil
	}
}

// WithReader returns a Config that makes environments use r to parse source
// streams.  There is no default Reader for an environment.
func WithReader(r Reader) Config {
	return func(env *LEnv) error {
		env.Runtime.Reader = r
		return nil
	}
}

// WithStderr returns a Config that makes environments write debugging output
// to w instead of the default, os.Stderr.  The runtime logger writes to w as
// well.
func WithStderr(w io.Writer) Config {
	return func(env *LEnv) error {
		env.Runtime.Stderr = w
		env.Runtime.Logger.SetOutput(w)
		return nil
	}
}

// WithLogger returns a Config that replaces the runtime logger.
func WithLogger(logger *logrus.Logger) Config {
	return func(env *LEnv) error {
		env.Runtime.Logger = logger
		return nil
	}
}

// WithScoping returns a Config that selects how lambda bodies resolve free
// variables.
func WithScoping(s Scoping) Config {
	return func(env *LEnv) error {
		env.Runtime.Scoping = s
		return nil
	}
}

// WithEagerIf returns a Config that makes if an ordinary function.  Both
// branches are evaluated before one of them is selected.
func WithEagerIf() Config {
	return func(env *LEnv) error {
		env.Runtime.EagerIf = true
		return nil
	}
}

// WithProfiler returns a Config that attaches p to the runtime.  The profiler
// must be enabled separately.
func WithProfiler(p Profiler) Config {
	return func(env *LEnv) error {
		env.Runtime.Profiler = p
		return nil
	}
}
