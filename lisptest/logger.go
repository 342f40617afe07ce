// Copyright © 2024 The ELPS authors

package lisptest

import (
	"bytes"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
)

// Logger writes each complete line it receives to a test log.  A partial
// last line is held until the next newline or Flush.
type Logger struct {
	t       testing.TB
	mu      sync.Mutex
	pending []byte
}

var _ io.Writer = (*Logger)(nil)

// NewLogger returns a Logger for t that flushes when the test ends.
func NewLogger(t testing.TB) *Logger {
	l := &Logger{t: t}
	t.Cleanup(l.Flush)
	return l
}

func (l *Logger) Write(b []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.pending = append(l.pending, b...)
	for {
		line, rest, ok := bytes.Cut(l.pending, []byte{'\n'})
		if !ok {
			return len(b), nil
		}
		l.t.Helper()
		l.t.Log(string(line))
		l.pending = rest
	}
}

// Flush logs any partial line.
func (l *Logger) Flush() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.pending) > 0 {
		l.t.Log(string(l.pending))
		l.pending = nil
	}
}

// NewRuntimeLogger returns a runtime logger whose entries appear in the log
// of t.  Debug entries are kept only under go test -v.
func NewRuntimeLogger(t testing.TB) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(NewLogger(t))
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true, DisableColors: true})
	logger.SetLevel(logrus.WarnLevel)
	if testing.Verbose() {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}
