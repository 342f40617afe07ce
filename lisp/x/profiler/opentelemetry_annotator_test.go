// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"context"
	"testing"

	"github.com/luthersystems/tinylisp/lisp/x/profiler"
	"github.com/luthersystems/tinylisp/lisptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	exporter := tracetest.NewInMemoryExporter()

	tp := trace.NewTracerProvider(
		trace.WithSyncer(exporter),
		trace.WithSampler(trace.AlwaysSample()),
	)
	t.Cleanup(func() {
		err := tp.Shutdown(context.Background())
		assert.NoError(t, err, "TracerProvider shutdown")
	})
	otel.SetTracerProvider(tp)
	return exporter
}

func spanAttr(attrs []attribute.KeyValue, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range attrs {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestNewOpenTelemetryAnnotator(t *testing.T) {
	exporter := newTestTracer(t)

	env := lisptest.NewSession(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	assert.Same(t, ppa, env.Runtime.Profiler)
	runTestProgram(t, env)
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Len(t, spans, 10)
	names := make(map[string]int)
	for _, s := range spans {
		names[s.Name]++
	}
	assert.Equal(t, map[string]int{"recurse-it": 3, "add-it": 1, "+": 1, "<": 3, "-": 2}, names)

	// Spans end innermost first.
	assert.Equal(t, "<", spans[0].Name)
	var addIt tracetest.SpanStub
	for _, s := range spans {
		if s.Name == "add-it" {
			addIt = s
		}
	}
	fn, ok := spanAttr(addIt.Attributes, "code.function")
	require.True(t, ok)
	assert.Equal(t, "add-it", fn.AsString())
	file, ok := spanAttr(addIt.Attributes, "code.filepath")
	require.True(t, ok)
	assert.Equal(t, "test.lisp", file.AsString())
	line, ok := spanAttr(addIt.Attributes, "code.lineno")
	require.True(t, ok)
	assert.EqualValues(t, 1, line.AsInt64())
}

func TestNewOpenTelemetryAnnotatorSkip(t *testing.T) {
	exporter := newTestTracer(t)

	env := lisptest.NewSession(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background(),
		profiler.WithLambdaFilter(),
		profiler.WithLabels(map[string]string{"add-it": " Add  It "}))
	require.NoError(t, ppa.Enable())
	runTestProgram(t, env)
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Len(t, spans, 4, "Expected selective spans")
	assert.Equal(t, "Add_It", spans[0].Name, "Expected custom label")
	assert.Equal(t, "recurse-it", spans[1].Name)
	assert.Equal(t, spans[2].SpanContext.SpanID(), spans[1].Parent.SpanID())
	assert.Equal(t, spans[3].SpanContext.SpanID(), spans[2].Parent.SpanID())
	assert.False(t, spans[3].Parent.IsValid())
}

func TestOpenTelemetryAnnotatorNoContext(t *testing.T) {
	env := lisptest.NewSession(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, nil)
	assert.Error(t, ppa.Enable())
	assert.False(t, ppa.IsEnabled())

	_, err := env.EvaluateProgram("(+ 1 2)")
	assert.NoError(t, err)
}

func TestOpenTelemetryAnnotatorError(t *testing.T) {
	exporter := newTestTracer(t)

	env := lisptest.NewSession(t)
	ppa := profiler.NewOpenTelemetryAnnotator(env.Runtime, context.Background())
	require.NoError(t, ppa.Enable())
	_, err := env.EvaluateProgramNamed("test.lisp", "(def f (fn (x) (+ x true)))")
	require.NoError(t, err)
	_, err = env.EvaluateProgramNamed("test.lisp", "(f 1)")
	require.Error(t, err)
	assert.NoError(t, ppa.Complete())

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	for _, s := range spans {
		assert.Equal(t, codes.Error, s.Status.Code, s.Name)
		cond, ok := spanAttr(s.Attributes, "tinylisp.condition")
		require.True(t, ok, s.Name)
		assert.Equal(t, "type-mismatch", cond.AsString())
		require.Len(t, s.Events, 1, s.Name)
		assert.Equal(t, "exception", s.Events[0].Name)
	}
	depth, ok := spanAttr(spans[0].Attributes, "tinylisp.stack_depth")
	require.True(t, ok)
	assert.EqualValues(t, 2, depth.AsInt64())
}
