// Copyright © 2024 The ELPS authors

package lsp

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDebouncerCoalesces(t *testing.T) {
	d := newDebouncer()
	var runs atomic.Int32
	for i := 0; i < 5; i++ {
		d.schedule("a", 20*time.Millisecond, func() { runs.Add(1) })
	}
	assert.Equal(t, 1, d.pending())
	assert.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	assert.Eventually(t, func() bool { return d.pending() == 0 }, time.Second, 5*time.Millisecond)
	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(1), runs.Load())
}

func TestDebouncerCancel(t *testing.T) {
	d := newDebouncer()
	var runs atomic.Int32
	d.schedule("a", time.Hour, func() { runs.Add(1) })
	d.schedule("b", time.Hour, func() { runs.Add(1) })
	assert.True(t, d.cancel("a"))
	assert.False(t, d.cancel("a"))
	assert.Equal(t, 1, d.stop())
	assert.Equal(t, 0, d.pending())
	assert.Equal(t, int32(0), runs.Load())
}
