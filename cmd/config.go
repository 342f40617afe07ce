// Copyright © 2024 The ELPS authors

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/luthersystems/tinylisp/diagnostic"
	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/lisp/x/profiler"
	"github.com/luthersystems/tinylisp/parser"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"go.opencensus.io/trace"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Configuration keys.  Each is also a persistent flag of the root command
// and may be set from the environment as TINYLISP_<KEY>, with dashes
// replaced by underscores.
const (
	keyColor     = "color"
	keyReader    = "reader"
	keyScoping   = "scoping"
	keyEagerIf   = "eager-if"
	keyMaxDepth  = "max-depth"
	keyLogLevel  = "log-level"
	keyTrace     = "trace"
	keyTraceFile = "trace-file"
	keyPrompt    = "prompt"
)

const (
	defaultMaxDepth      = 10000
	defaultCallgrindFile = "callgrind.out"
)

var envKeyReplacer = strings.NewReplacer("-", "_")

func colorMode() diagnostic.ColorMode {
	return diagnostic.ParseColorMode(viper.GetString(keyColor))
}

func parseScoping(s string) (lisp.Scoping, error) {
	switch strings.ToLower(s) {
	case "", lisp.DynamicScope.String():
		return lisp.DynamicScope, nil
	case lisp.LexicalScope.String():
		return lisp.LexicalScope, nil
	default:
		return 0, fmt.Errorf("unknown scoping: %q", s)
	}
}

// newLogger returns the runtime logger writing to w at the configured
// level.
func newLogger(w io.Writer) (*logrus.Logger, error) {
	level := viper.GetString(keyLogLevel)
	if level == "" {
		level = logrus.WarnLevel.String()
	}
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	return logger, nil
}

// sessionConfigs translates the configuration into options for
// lisp.NewSession.
func sessionConfigs(stderr io.Writer) ([]lisp.Config, error) {
	reader, err := parser.NewReaderKind(viper.GetString(keyReader))
	if err != nil {
		return nil, err
	}
	scoping, err := parseScoping(viper.GetString(keyScoping))
	if err != nil {
		return nil, err
	}
	logger, err := newLogger(stderr)
	if err != nil {
		return nil, err
	}
	maxDepth := viper.GetInt(keyMaxDepth)
	if maxDepth <= 0 {
		maxDepth = defaultMaxDepth
	}
	configs := []lisp.Config{
		lisp.WithReader(reader),
		lisp.WithLogger(logger),
		lisp.WithStderr(stderr),
		lisp.WithScoping(scoping),
		lisp.WithMaximumStackHeight(maxDepth),
	}
	if viper.GetBool(keyEagerIf) {
		configs = append(configs, lisp.WithEagerIf())
	}
	return configs, nil
}

// newSession creates a session from the configuration.
func newSession(stderr io.Writer) (*lisp.LEnv, error) {
	configs, err := sessionConfigs(stderr)
	if err != nil {
		return nil, err
	}
	return lisp.NewSession(configs...)
}

// startTrace attaches the configured profiler to env.  The returned
// function completes the trace and must be called once evaluation is done.
func startTrace(env *lisp.LEnv, stderr io.Writer) (func() error, error) {
	kind := viper.GetString(keyTrace)
	if kind == "" {
		return func() error { return nil }, nil
	}
	out, err := traceOutput(kind, stderr)
	if err != nil {
		return nil, err
	}
	switch kind {
	case "callgrind":
		p := profiler.NewCallgrindProfiler(env.Runtime)
		if err := p.SetOutput(out); err != nil {
			return nil, err
		}
		if err := p.Enable(); err != nil {
			return nil, err
		}
		return p.Complete, nil
	case "otel":
		return startOpenTelemetry(env, out)
	case "opencensus":
		return startOpenCensus(env, out)
	case "pprof":
		p := profiler.NewPprofAnnotator(env.Runtime, context.Background())
		if err := p.Enable(); err != nil {
			return nil, err
		}
		return func() error {
			err := p.Complete()
			if cerr := out.Close(); err == nil {
				err = cerr
			}
			return err
		}, nil
	default:
		_ = out.Close()
		return nil, fmt.Errorf("unknown trace kind: %q", kind)
	}
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func traceOutput(kind string, stderr io.Writer) (io.WriteCloser, error) {
	path := viper.GetString(keyTraceFile)
	if path == "" && kind == "callgrind" {
		path = defaultCallgrindFile
	}
	if path == "" {
		return nopCloser{stderr}, nil
	}
	return os.Create(path) //#nosec G304
}

// spanLogger writes finished spans as structured log entries.
func spanLogger(w io.Writer) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)
	return logger
}

type otelLogExporter struct {
	log *logrus.Logger
}

var _ sdktrace.SpanExporter = (*otelLogExporter)(nil)

func (e *otelLogExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	for _, s := range spans {
		fields := logrus.Fields{
			"trace_id": s.SpanContext().TraceID().String(),
			"span_id":  s.SpanContext().SpanID().String(),
			"duration": s.EndTime().Sub(s.StartTime()).String(),
		}
		if s.Parent().IsValid() {
			fields["parent_id"] = s.Parent().SpanID().String()
		}
		for _, attr := range s.Attributes() {
			fields[string(attr.Key)] = attr.Value.Emit()
		}
		e.log.WithFields(fields).Info(s.Name())
	}
	return nil
}

func (e *otelLogExporter) Shutdown(context.Context) error {
	return nil
}

func startOpenTelemetry(env *lisp.LEnv, out io.WriteCloser) (func() error, error) {
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(&otelLogExporter{log: spanLogger(out)}),
	)
	otel.SetTracerProvider(tp)
	ctx, span := tp.Tracer("tinylisp").Start(context.Background(), "evaluate")
	p := profiler.NewOpenTelemetryAnnotator(env.Runtime, ctx)
	if err := p.Enable(); err != nil {
		span.End()
		_ = tp.Shutdown(ctx)
		return nil, err
	}
	return func() error {
		err := p.Complete()
		span.End()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := tp.Shutdown(shutdownCtx); err == nil {
			err = serr
		}
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}

type ocLogExporter struct {
	log *logrus.Logger
}

var _ trace.Exporter = (*ocLogExporter)(nil)

func (e *ocLogExporter) ExportSpan(s *trace.SpanData) {
	fields := logrus.Fields{
		"trace_id": s.TraceID.String(),
		"span_id":  s.SpanID.String(),
		"duration": s.EndTime.Sub(s.StartTime).String(),
	}
	if s.ParentSpanID != (trace.SpanID{}) {
		fields["parent_id"] = s.ParentSpanID.String()
	}
	for k, v := range s.Attributes {
		fields[k] = v
	}
	e.log.WithFields(fields).Info(s.Name)
}

func startOpenCensus(env *lisp.LEnv, out io.WriteCloser) (func() error, error) {
	exporter := &ocLogExporter{log: spanLogger(out)}
	trace.RegisterExporter(exporter)
	ctx, span := trace.StartSpan(context.Background(), "evaluate",
		trace.WithSampler(trace.AlwaysSample()))
	p := profiler.NewOpenCensusAnnotator(env.Runtime, ctx,
		profiler.WithSourceLabeler())
	if err := p.Enable(); err != nil {
		span.End()
		trace.UnregisterExporter(exporter)
		return nil, err
	}
	return func() error {
		err := p.Complete()
		span.End()
		trace.UnregisterExporter(exporter)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		return err
	}, nil
}
