// Copyright © 2024 The ELPS authors

package lisp

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/luthersystems/tinylisp/parser/token"
)

// ErrorVal is the error type returned by every failed read or evaluation.
// It records the condition, the location of the offending expression and a
// copy of the call stack at the time the error was created.
type ErrorVal struct {
	Condition Condition
	Message   string
	Source    *token.Location
	Stack     *CallStack
	// Err is an underlying cause, if any.
	Err error
}

// Error implements the error interface.  The condition name precedes the
// message, and the source location precedes both when it is known.
func (e *ErrorVal) Error() string {
	if e.Source != nil && e.Source.Pos >= 0 {
		return fmt.Sprintf("%s: %s", e.Source, e.baseMessage())
	}
	return e.baseMessage()
}

func (e *ErrorVal) baseMessage() string {
	msg := e.ErrorMessage()
	if msg == "" {
		return string(e.Condition)
	}
	return fmt.Sprintf("%s: %s", e.Condition, msg)
}

// ErrorMessage returns the message without location or condition.
func (e *ErrorVal) ErrorMessage() string {
	if e.Message == "" && e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// FunName returns the name of the function on the top of the call stack when
// the error occurred.
func (e *ErrorVal) FunName() string {
	top := e.Stack.Top()
	if top == nil {
		return ""
	}
	return top.Name
}

// Unwrap returns the underlying cause of e.
func (e *ErrorVal) Unwrap() error {
	return e.Err
}

// Is reports whether target is the Condition of e.
func (e *ErrorVal) Is(target error) bool {
	c, ok := target.(Condition)
	return ok && c == e.Condition
}

// WriteTrace writes the error and a stack trace to w
func (e *ErrorVal) WriteTrace(w io.Writer) (int, error) {
	bw := bufio.NewWriter(w)
	var n int
	var err error
	wrote := func(_n int, _err error) bool {
		n += _n
		err = _err
		return err == nil
	}
	if !wrote(bw.WriteString(e.Error())) {
		return n, err
	}
	if !wrote(bw.WriteString("\n")) {
		return n, err
	}
	if e.Stack != nil && len(e.Stack.Frames) > 0 {
		if !wrote(e.Stack.DebugPrint(bw)) {
			return n, err
		}
	}
	return n, bw.Flush()
}

// Errorf returns an ErrorVal with the given condition and no associated
// stack or location.  Readers use Errorf because they run outside of any
// environment.
func Errorf(cond Condition, format string, v ...interface{}) *ErrorVal {
	return &ErrorVal{
		Condition: cond,
		Message:   fmt.Sprintf(format, v...),
	}
}

// ParseError returns a parse-error at loc.  When incomplete is true the error
// also matches io.ErrUnexpectedEOF, signaling that more input could complete
// the program.
func ParseError(loc *token.Location, incomplete bool, format string, v ...interface{}) *ErrorVal {
	e := Errorf(CondParseError, format, v...)
	e.Source = loc
	if incomplete {
		e.Err = io.ErrUnexpectedEOF
	}
	return e
}

// IsIncomplete returns true if err was caused by a program which ended before
// all of its lists were closed.
func IsIncomplete(err error) bool {
	return errors.Is(err, io.ErrUnexpectedEOF)
}

// GoError returns err as an *ErrorVal if possible.
func GoError(err error) (*ErrorVal, bool) {
	var lerr *ErrorVal
	if errors.As(err, &lerr) {
		return lerr, true
	}
	return nil, false
}
