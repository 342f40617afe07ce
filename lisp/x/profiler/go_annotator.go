// Copyright © 2024 The ELPS authors

package profiler

import (
	"context"
	"runtime/pprof"
	"strconv"

	"github.com/luthersystems/tinylisp/lisp"
)

// pprof label keys.
const (
	labelFunction = "tinylisp.function"
	labelSource   = "tinylisp.source"
)

// This profiler type labels goroutine samples with the function being
// applied and where it was defined.  It does not start pprof itself.  The
// pprof sampling rate is fixed at 100Hz so short programs produce few
// samples.
type pprofAnnotator struct {
	profiler
	ctx     context.Context
	parents []context.Context
}

var _ lisp.Profiler = &pprofAnnotator{}

// NewPprofAnnotator returns a profiler that labels goroutine samples with
// the function being applied.  Labels are added to those of parentContext.
func NewPprofAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) *pprofAnnotator {
	p := &pprofAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		ctx: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *pprofAnnotator) Enable() error {
	if p.ctx == nil {
		p.ctx = context.Background()
	}
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

// Context returns the context holding the labels of the innermost traced
// application.
func (p *pprofAnnotator) Context() context.Context {
	return p.ctx
}

func (p *pprofAnnotator) Complete() error {
	if len(p.parents) > 0 {
		p.ctx = p.parents[0]
		p.parents = nil
	}
	pprof.SetGoroutineLabels(context.Background())
	return nil
}

func (p *pprofAnnotator) Start(fun *lisp.LVal) func(error) {
	if p.skipTrace(fun) {
		return ignoreEnd
	}
	label, _ := p.prettyFunName(fun)
	source := "builtin"
	if file, line := getSource(fun); line > 0 {
		source = file + ":" + strconv.Itoa(line)
	}
	p.parents = append(p.parents, p.ctx)
	p.ctx = pprof.WithLabels(p.ctx, pprof.Labels(labelFunction, label, labelSource, source))
	// The evaluator runs on the calling goroutine, so its labels are
	// replaced rather than wrapped with pprof.Do.
	pprof.SetGoroutineLabels(p.ctx)
	return func(error) {
		p.ctx = p.parents[len(p.parents)-1]
		p.parents = p.parents[:len(p.parents)-1]
		pprof.SetGoroutineLabels(p.ctx)
	}
}
