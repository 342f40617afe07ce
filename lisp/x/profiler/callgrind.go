// Copyright © 2024 The ELPS authors

package profiler

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/luthersystems/tinylisp/lisp"
)

// A profiler implementation that builds Callgrind files which can be opened
// in KCacheGrind or QCacheGrind.  Costs are aggregated per function while the
// program runs and the profile is written by Complete.  Each function has a
// self cost (time and allocated bytes not spent in callees) and one call
// edge per callee holding the call count and inclusive cost.
type callgrindProfiler struct {
	profiler
	sync.Mutex
	writer io.WriteCloser
	funs   map[funKey]*funCost
	order  []funKey
	stack  []*callFrame
}

var _ lisp.Profiler = &callgrindProfiler{}

// funKey identifies a profiled function.  Builtins have no file.
type funKey struct {
	file string
	name string
}

type funCost struct {
	line    int
	selfNs  int64
	selfMem uint64
	callees map[funKey]*callCost
	order   []funKey
}

type callCost struct {
	count int
	line  int // line of the callee's definition
	ns    int64
	mem   uint64
}

type callFrame struct {
	key      funKey
	start    time.Time
	startMem uint64
	childNs  int64
	childMem uint64
}

const entrypoint = "ENTRYPOINT"

// NewCallgrindProfiler returns a profiler that writes a Callgrind profile of
// runtime.  An output must be set before the profiler is enabled.
func NewCallgrindProfiler(runtime *lisp.Runtime, opts ...Option) *callgrindProfiler {
	p := new(callgrindProfiler)
	p.runtime = runtime
	runtime.Profiler = p

	p.applyConfigs(opts...)
	return p
}

// SetFile creates filename and directs the profile to it.
func (p *callgrindProfiler) SetFile(filename string) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	f, err := os.Create(filename) //#nosec G304
	if err != nil {
		return err
	}
	p.writer = f
	return nil
}

// SetOutput directs the profile to w, which is closed by Complete.
func (p *callgrindProfiler) SetOutput(w io.WriteCloser) error {
	p.Lock()
	defer p.Unlock()
	if p.enabled {
		return errors.New("profiler already enabled")
	}
	p.writer = w
	return nil
}

func (p *callgrindProfiler) Enable() error {
	p.Lock()
	if p.writer == nil {
		p.Unlock()
		return errors.New("no output set in profiler")
	}
	p.funs = make(map[funKey]*funCost)
	p.order = nil
	p.stack = nil
	p.push(funKey{file: "-", name: entrypoint}, 0)
	p.Unlock()
	return p.profiler.Enable()
}

func (p *callgrindProfiler) Start(fun *lisp.LVal) func(error) {
	if p.skipTrace(fun) {
		return ignoreEnd
	}
	name, _ := p.prettyFunName(fun)
	file, line := "", 0
	if loc := getSourceLoc(fun); loc != nil {
		file, line = loc.File, loc.Line
	}
	key := funKey{file: file, name: name}
	p.Lock()
	p.push(key, line)
	p.Unlock()
	return func(error) {
		p.Lock()
		defer p.Unlock()
		p.pop()
	}
}

func (p *callgrindProfiler) push(key funKey, line int) {
	if _, ok := p.funs[key]; !ok {
		p.funs[key] = &funCost{line: line, callees: make(map[funKey]*callCost)}
		p.order = append(p.order, key)
	}
	p.stack = append(p.stack, &callFrame{
		key:      key,
		start:    time.Now(),
		startMem: totalAlloc(),
	})
}

// pop ends the innermost call, charging its self cost to its function and
// its inclusive cost to the call edge from its caller.
func (p *callgrindProfiler) pop() *callFrame {
	if len(p.stack) == 0 {
		return nil
	}
	frame := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]

	ns := time.Since(frame.start).Nanoseconds()
	if ns <= 0 {
		ns = 1
	}
	mem := totalAlloc() - frame.startMem
	cost := p.funs[frame.key]
	cost.selfNs += ns - frame.childNs
	if mem > frame.childMem {
		cost.selfMem += mem - frame.childMem
	}

	if len(p.stack) > 0 {
		parent := p.stack[len(p.stack)-1]
		parent.childNs += ns
		parent.childMem += mem
		caller := p.funs[parent.key]
		edge, ok := caller.callees[frame.key]
		if !ok {
			edge = &callCost{line: cost.line}
			caller.callees[frame.key] = edge
			caller.order = append(caller.order, frame.key)
		}
		edge.count++
		edge.ns += ns
		edge.mem += mem
	}
	return frame
}

// Complete ends every open call, writes the profile and closes the output.
func (p *callgrindProfiler) Complete() error {
	p.Lock()
	defer p.Unlock()
	if !p.enabled {
		return errors.New("profiler not enabled")
	}
	p.enabled = false
	for len(p.stack) > 0 {
		p.pop()
	}
	err := p.write()
	if cerr := p.writer.Close(); err == nil {
		err = cerr
	}
	return err
}

func (p *callgrindProfiler) write() error {
	w := bufio.NewWriter(p.writer)
	fmt.Fprintf(w, "version: 1\ncreator: tinylisp %s (Go %s)\n", lisp.Version, runtime.Version())
	fmt.Fprintf(w, "cmd: Eval\npart: 1\npositions: line\n\n")
	fmt.Fprintf(w, "events: Time_(ns) Memory_(bytes)\n\n")

	names := newCompressor()
	files := newCompressor()
	var totalNs int64
	var totalMem uint64
	for _, key := range p.order {
		cost := p.funs[key]
		totalNs += cost.selfNs
		totalMem += cost.selfMem
		fmt.Fprintf(w, "fl=%s\nfn=%s\n", files.ref(key.file), names.ref(key.name))
		fmt.Fprintf(w, "%d %d %d\n", cost.line, cost.selfNs, cost.selfMem)
		for _, callee := range cost.order {
			edge := cost.callees[callee]
			fmt.Fprintf(w, "cfl=%s\ncfn=%s\n", files.ref(callee.file), names.ref(callee.name))
			fmt.Fprintf(w, "calls=%d %d\n", edge.count, edge.line)
			fmt.Fprintf(w, "%d %d %d\n", cost.line, edge.ns, edge.mem)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "totals: %d %d\n", totalNs, totalMem)
	return w.Flush()
}

// compressor implements callgrind name compression: the first use of a
// name is written as "(id) name" and later uses as "(id)".
type compressor struct {
	ids map[string]int
}

func newCompressor() *compressor {
	return &compressor{ids: make(map[string]int)}
}

func (c *compressor) ref(name string) string {
	if name == "" {
		name = "builtin"
	}
	if id, ok := c.ids[name]; ok {
		return fmt.Sprintf("(%d)", id)
	}
	id := len(c.ids) + 1
	c.ids[name] = id
	return fmt.Sprintf("(%d) %s", id, name)
}

func totalAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.TotalAlloc
}
