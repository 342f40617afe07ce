// Copyright © 2024 The ELPS authors

package profiler

import (
	"regexp"

	"github.com/luthersystems/tinylisp/lisp"
)

// SkipFilter returns true for calls which should not be traced.  The name is
// the one the function was called by.
type SkipFilter func(name string, fun *lisp.LVal) bool

func defaultSkipFilter(fun *lisp.LVal) bool {
	switch fun.Type {
	case lisp.LFun, lisp.LLambda:
		return false
	default:
		return true
	}
}

// WithLambdaFilter skips builtin functions so that only user defined
// functions are traced.
func WithLambdaFilter() Option {
	return WithSkipFilter(func(_ string, fun *lisp.LVal) bool {
		return fun.Type != lisp.LLambda
	})
}

// WithNameFilter only traces calls whose function name matches re.
func WithNameFilter(re *regexp.Regexp) Option {
	return WithSkipFilter(func(name string, _ *lisp.LVal) bool {
		return !re.MatchString(name)
	})
}

// WithSkipFilter sets the filter for tracing spans.
func WithSkipFilter(skipFilter SkipFilter) Option {
	return func(p *profiler) {
		p.skipFilter = skipFilter
	}
}
