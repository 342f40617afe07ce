// Copyright © 2024 The ELPS authors

package lsp

import (
	"sync"
	"time"
)

// debouncer runs work for a document once edits to it have paused.
type debouncer struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

func newDebouncer() *debouncer {
	return &debouncer{timers: make(map[string]*time.Timer)}
}

// schedule runs fn after delay unless key is scheduled or cancelled again
// first.
func (d *debouncer) schedule(key string, delay time.Duration, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if t, ok := d.timers[key]; ok {
		t.Stop()
	}
	var t *time.Timer
	t = time.AfterFunc(delay, func() {
		d.mu.Lock()
		current := d.timers[key] == t
		if current {
			delete(d.timers, key)
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
	d.timers[key] = t
}

// cancel drops pending work for key and reports whether there was any.
func (d *debouncer) cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.timers[key]
	if ok {
		t.Stop()
		delete(d.timers, key)
	}
	return ok
}

// stop drops all pending work and returns how much there was.
func (d *debouncer) stop() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := len(d.timers)
	for key, t := range d.timers {
		t.Stop()
		delete(d.timers, key)
	}
	return n
}

func (d *debouncer) pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}
