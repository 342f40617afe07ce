// Copyright © 2024 The ELPS authors

package profiler

import (
	"fmt"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/token"
)

// profiler is a minimal lisp.Profiler
type profiler struct {
	runtime    *lisp.Runtime
	enabled    bool
	skipFilter SkipFilter
	funLabeler FunLabeler
}

var _ lisp.Profiler = &profiler{}

func (p *profiler) IsEnabled() bool {
	return p.enabled
}

type Option func(*profiler)

func (p *profiler) applyConfigs(opts ...Option) {
	for _, opt := range opts {
		opt(p)
	}
}

func (p *profiler) Enable() error {
	if p.enabled {
		return fmt.Errorf("profiler already enabled")
	}
	p.enabled = true
	return nil
}

func (p *profiler) Complete() error {
	return nil
}

func (p *profiler) Start(fun *lisp.LVal) func(error) {
	return ignoreEnd
}

func ignoreEnd(error) {}

// defaultFunName returns the name fun was called by.  The evaluator pushes a
// call frame before a profiler sees the call, so the name is on top of the
// stack.
func defaultFunName(runtime *lisp.Runtime, fun *lisp.LVal) string {
	if !fun.IsFunction() {
		return ""
	}
	if top := runtime.Stack.Top(); top != nil && top.Name != "" {
		return top.Name
	}
	if fun.Str != "" {
		return fun.Str
	}
	return "lambda"
}

// prettyFunName returns a pretty name and original name for a fun. If there is
// no pretty name, then the pretty name is the original name.
func (p *profiler) prettyFunName(fun *lisp.LVal) (string, string) {
	origLabel := defaultFunName(p.runtime, fun)
	if origLabel == "" {
		return "", ""
	}
	prettyLabel := origLabel
	if p.funLabeler != nil {
		prettyLabel = p.funLabeler(origLabel, fun)
	}
	if prettyLabel == "" {
		prettyLabel = origLabel
	}

	return prettyLabel, origLabel
}

// skipTrace is a helper function to decide whether to skip tracing.
func (p *profiler) skipTrace(v *lisp.LVal) bool {
	if !p.enabled || defaultSkipFilter(v) {
		return true
	}
	return p.skipFilter != nil && p.skipFilter(defaultFunName(p.runtime, v), v)
}

// getSourceLoc returns the location a lambda was created at.  Builtins have
// no source location.
func getSourceLoc(fun *lisp.LVal) *token.Location {
	if fun.Source == nil || fun.Source.Pos < 0 {
		return nil
	}
	return fun.Source
}

func getSource(fun *lisp.LVal) (string, int) {
	if loc := getSourceLoc(fun); loc != nil {
		return loc.File, loc.Line
	}
	return "no-source", 0
}
