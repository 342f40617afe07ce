// Copyright © 2024 The ELPS authors

package lisp

// Version is reported by the command line tools and in profiler output.
const Version = "1.0"

// Profiler observes function applications.
type Profiler interface {
	// IsEnabled returns true if the profiler is recording.
	IsEnabled() bool
	// Enable starts recording.
	Enable() error
	// Complete ends the profiling session and flushes any output.
	Complete() error
	// Start marks the beginning of an application of fun.  The returned
	// function marks its end and receives the error the application
	// returned, if any.
	Start(fun *LVal) func(err error)
}
