// Copyright © 2024 The ELPS authors

package profiler

import (
	"context"
	"errors"

	"github.com/luthersystems/tinylisp/lisp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
)

type contextKey string

const (
	// ContextOpenTelemetryTracerKey looks up a parent tracer name from a context key.
	ContextOpenTelemetryTracerKey contextKey = "otelParentTracer"

	defaultTracerName = "tinylisp"

	// Span attribute keys.
	attrCallSite  = attribute.Key("tinylisp.call_site")
	attrDepth     = attribute.Key("tinylisp.stack_depth")
	attrCondition = attribute.Key("tinylisp.condition")
)

var _ lisp.Profiler = &otelAnnotator{}

type otelAnnotator struct {
	profiler
	tracer  trace.Tracer
	ctx     context.Context
	parents []context.Context
}

// NewOpenTelemetryAnnotator returns a profiler which records a span for
// every function application.  Spans are children of the span in
// parentContext.  A failed application sets an error status on its span
// along with the condition of the error.
func NewOpenTelemetryAnnotator(runtime *lisp.Runtime, parentContext context.Context, opts ...Option) *otelAnnotator {
	p := &otelAnnotator{
		profiler: profiler{
			runtime: runtime,
		},
		ctx: parentContext,
	}
	p.profiler.applyConfigs(opts...)
	return p
}

func (p *otelAnnotator) Enable() error {
	if p.ctx == nil {
		return errors.New("we can only append spans to a context that is linked to opentelemetry")
	}
	name, ok := p.ctx.Value(ContextOpenTelemetryTracerKey).(string)
	if !ok {
		name = defaultTracerName
	}
	p.tracer = otel.GetTracerProvider().Tracer(name)
	p.runtime.Profiler = p
	return p.profiler.Enable()
}

// Complete ends spans left open by an application that never returned.
func (p *otelAnnotator) Complete() error {
	for len(p.parents) > 0 {
		trace.SpanFromContext(p.ctx).End()
		p.pop()
	}
	return nil
}

func (p *otelAnnotator) pop() {
	p.ctx = p.parents[len(p.parents)-1]
	p.parents = p.parents[:len(p.parents)-1]
}

func (p *otelAnnotator) Start(fun *lisp.LVal) func(error) {
	if p.skipTrace(fun) {
		return ignoreEnd
	}
	label, name := p.prettyFunName(fun)
	p.parents = append(p.parents, p.ctx)
	ctx, span := p.tracer.Start(p.ctx, label,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(p.codeAttributes(fun, name)...))
	p.ctx = ctx
	return func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			if lerr, ok := lisp.GoError(err); ok {
				span.SetAttributes(attrCondition.String(string(lerr.Condition)))
			}
		}
		span.End()
		p.pop()
	}
}

func (p *otelAnnotator) codeAttributes(fun *lisp.LVal, funName string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		semconv.CodeNamespace(fun.Type.String()),
		semconv.CodeFunction(funName),
		attrDepth.Int(len(p.runtime.Stack.Frames)),
	}
	if loc := getSourceLoc(fun); loc != nil {
		attrs = append(attrs,
			semconv.CodeFilepath(loc.File),
			semconv.CodeLineNumber(loc.Line),
			semconv.CodeColumn(loc.Col),
		)
	}
	if top := p.runtime.Stack.Top(); top != nil && top.Source != nil && top.Source.Pos >= 0 {
		attrs = append(attrs, attrCallSite.String(top.Source.String()))
	}
	return attrs
}
