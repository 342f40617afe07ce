// Copyright © 2024 The ELPS authors

package profiler

import (
	"context"
	"errors"

	"github.com/golang-collections/collections/stack"
	"github.com/luthersystems/tinylisp/lisp"
	"go.opencensus.io/trace"
)

type ocAnnotator struct {
	profiler
	ctx     context.Context
	parents *stack.Stack
}

var _ lisp.Profiler = &ocAnnotator{}

// NewOpenCensusAnnotator returns a profiler which records an opencensus span
// for every function application.  Span names are prefixed with the kind of
// function applied.
func NewOpenCensusAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) *ocAnnotator {
	p := &ocAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		ctx:     parentContext,
		parents: stack.New(),
	}
	p.profiler.applyConfigs(opts...)
	return p
}

// EnableWithContext enables the profiler with spans rooted in ctx.
func (p *ocAnnotator) EnableWithContext(ctx context.Context) error {
	if ctx == nil {
		return errors.New("set a context to use this function")
	}
	p.ctx = ctx
	return p.Enable()
}

func (p *ocAnnotator) Enable() error {
	if p.ctx == nil {
		return errors.New("we can only append spans to a context that is linked to opencensus")
	}
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

// Complete ends spans left open by an application that never returned.
func (p *ocAnnotator) Complete() error {
	for p.parents.Len() > 0 {
		if span := trace.FromContext(p.ctx); span != nil {
			span.End()
		}
		p.ctx = p.parents.Pop().(context.Context)
	}
	return nil
}

func (p *ocAnnotator) Start(fun *lisp.LVal) func(error) {
	if p.skipTrace(fun) {
		return ignoreEnd
	}
	label, _ := p.prettyFunName(fun)
	p.parents.Push(p.ctx)
	ctx, span := trace.StartSpan(p.ctx, fun.Type.String()+":"+label)
	p.ctx = ctx
	file, line := getSource(fun)
	span.AddAttributes(
		trace.StringAttribute("file", file),
		trace.Int64Attribute("line", int64(line)),
	)
	return func(err error) {
		if err != nil {
			status := trace.Status{Code: trace.StatusCodeUnknown, Message: err.Error()}
			if lerr, ok := lisp.GoError(err); ok {
				span.AddAttributes(trace.StringAttribute("condition", string(lerr.Condition)))
				if lerr.Condition == lisp.CondArityError || lerr.Condition == lisp.CondTypeMismatch {
					status.Code = trace.StatusCodeInvalidArgument
				}
			}
			span.SetStatus(status)
		}
		span.End()
		p.ctx = p.parents.Pop().(context.Context)
	}
}
