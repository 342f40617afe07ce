// Copyright © 2024 The ELPS authors

package profiler

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/luthersystems/tinylisp/lisp"
)

// FunLabeler provides an alternative name for a function label in the trace.
type FunLabeler func(name string, fun *lisp.LVal) string

// WithLabels labels spans for the named functions using labels.  Functions
// without an entry keep their name.
func WithLabels(labels map[string]string) Option {
	clean := make(map[string]string, len(labels))
	for name, label := range labels {
		clean[name] = sanitizeLabel(strings.TrimSpace(label))
	}
	return WithFunLabeler(func(name string, _ *lisp.LVal) string {
		return clean[name]
	})
}

// WithSourceLabeler labels lambda spans with the location of their
// definition, as in f@main.lisp:3.
func WithSourceLabeler() Option {
	return WithFunLabeler(sourceFunLabeler)
}

// WithFunLabeler sets the labeler for tracing spans.
func WithFunLabeler(funLabeler FunLabeler) Option {
	return func(p *profiler) {
		p.funLabeler = funLabeler
	}
}

var (
	sanitizeRegExp   = regexp.MustCompile(`[\s_]+`)
	validLabelRegExp = regexp.MustCompile(`[[:graph:]]*`)
)

func sanitizeLabel(userLabel string) string {
	if userLabel == "" {
		return ""
	}

	// Replace spaces with underscores
	userLabel = sanitizeRegExp.ReplaceAllString(userLabel, "_")

	// Find the first valid label match
	matches := validLabelRegExp.FindStringSubmatch(userLabel)
	if len(matches) > 0 {
		return matches[0]
	}

	return ""
}

func sourceFunLabeler(name string, fun *lisp.LVal) string {
	loc := getSourceLoc(fun)
	if loc == nil {
		return ""
	}
	return fmt.Sprintf("%s@%s:%d", name, loc.File, loc.Line)
}
