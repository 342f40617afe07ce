// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/luthersystems/tinylisp/lisp/x/profiler"
	"github.com/luthersystems/tinylisp/lisptest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeBuffer struct {
	bytes.Buffer
	closed bool
}

func (b *closeBuffer) Close() error {
	b.closed = true
	return nil
}

func TestNewCallgrind(t *testing.T) {
	env := lisptest.NewSession(t)
	p := profiler.NewCallgrindProfiler(env.Runtime)
	assert.Error(t, p.Enable(), "no output")

	out := &closeBuffer{}
	require.NoError(t, p.SetOutput(out))
	require.NoError(t, p.Enable())
	assert.Error(t, p.SetOutput(out))
	runTestProgram(t, env)
	require.NoError(t, p.Complete())

	assert.True(t, out.closed)
	prof := out.String()
	assert.Contains(t, prof, "creator: tinylisp")
	assert.Contains(t, prof, "events: Time_(ns) Memory_(bytes)")
	assert.Contains(t, prof, ") add-it\n")
	assert.Contains(t, prof, ") recurse-it\n")
	assert.Contains(t, prof, ") test.lisp\n")
	assert.Contains(t, prof, ") ENTRYPOINT\n")
	assert.Contains(t, prof, "\ntotals: ")
	assert.Equal(t, 1, strings.Count(prof, ") recurse-it\n"), "names are compressed")

	// recurse-it calls itself twice, add-it once and < three times.
	assert.Contains(t, prof, "calls=2 2\n")
	assert.Contains(t, prof, "calls=1 1\n")
	assert.Contains(t, prof, "calls=3 0\n")
	assert.Error(t, p.Complete())
}

func TestCallgrindSetFile(t *testing.T) {
	env := lisptest.NewSession(t)
	p := profiler.NewCallgrindProfiler(env.Runtime, profiler.WithSourceLabeler())
	require.NoError(t, p.SetFile(filepath.Join(t.TempDir(), "callgrind.out")))
	require.NoError(t, p.Enable())
	runTestProgram(t, env)
	require.NoError(t, p.Complete())
}
