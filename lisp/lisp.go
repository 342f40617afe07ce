// Copyright © 2024 The ELPS authors

package lisp

import (
	"bytes"
	"errors"
	"strconv"

	"github.com/luthersystems/tinylisp/parser/token"
)

// LType is the type of an LVal
type LType uint

// Possible LType values.  The set is closed; the evaluator switches over
// every variant.
const (
	// LInvalid (0) is not a valid lisp type.
	LInvalid LType = iota
	// LSymbol values store the symbol name in LVal.Str.
	LSymbol
	// LNumber values store a float64 in LVal.Num.
	LNumber
	// LBool values store their truth value in LVal.Bool.
	LBool
	// LList values store their elements in LVal.Cells.  A list is both a
	// program form and first class data.
	LList
	// LFun values are native Go functions stored in LVal.Builtin.  LVal.Str
	// holds the name the function was installed under.
	LFun
	// LLambda values are user defined functions.  They use the following
	// fields:
	//		LVal.Cells[0]  the unevaluated parameter form
	//		LVal.Cells[1]  the unevaluated body form
	//		LVal.Env       the scope active when the lambda was created
	LLambda
)

var lvalTypeStrings = []string{
	LInvalid: "INVALID",
	LSymbol:  "symbol",
	LNumber:  "number",
	LBool:    "boolean",
	LList:    "list",
	LFun:     "function",
	LLambda:  "lambda",
}

func (t LType) String() string {
	if t >= LType(len(lvalTypeStrings)) {
		return lvalTypeStrings[LInvalid]
	}
	return lvalTypeStrings[t]
}

// LBuiltin is a function implemented in Go.  Arguments are evaluated before
// the builtin is called.
type LBuiltin func(env *LEnv, args []*LVal) (*LVal, error)

// LVal is a lisp value.  LVals are never modified after construction;
// evaluation produces new values or new bindings.
type LVal struct {
	// Source is the value's originating location in source code.  The
	// reference may be shared by multiple LVals.
	Source *token.Location

	// Str used by LSymbol values and as the name of LFun values.
	Str string

	// Cells holds list elements and lambda forms.
	Cells []*LVal

	// Type is the variant held by the value.
	Type LType

	Num  float64
	Bool bool

	// Builtin is the native implementation of an LFun.
	Builtin LBuiltin

	// Env is the defining scope of an LLambda.
	Env *LEnv
}

// Symbol returns an LVal representing the symbol s
func Symbol(s string) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LSymbol,
		Str:    s,
	}
}

// Number returns an LVal representing the number x.
func Number(x float64) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LNumber,
		Num:    x,
	}
}

// Bool returns an LVal with truth value b.
func Bool(b bool) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LBool,
		Bool:   b,
	}
}

// List returns an LVal containing cells.  The provided slice is used as
// backing storage and is not copied.
func List(cells []*LVal) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LList,
		Cells:  cells,
	}
}

// Fun returns an LVal wrapping the native function fn under the given name.
func Fun(name string, fn LBuiltin) *LVal {
	return &LVal{
		Source:  nativeSource(),
		Type:    LFun,
		Str:     name,
		Builtin: fn,
	}
}

// Lambda returns a user defined function with the given parameter and body
// forms, created in env.
func Lambda(params *LVal, body *LVal, env *LEnv) *LVal {
	return &LVal{
		Source: nativeSource(),
		Type:   LLambda,
		Cells:  []*LVal{params, body},
		Env:    env,
	}
}

// Atom classifies the text of a single token.  The literals true and false
// are booleans, text that parses as a 64-bit float is a number, and anything
// else is a symbol.  Numbers out of float range become infinities.
func Atom(text string, loc *token.Location) *LVal {
	var v *LVal
	switch text {
	case TrueSymbol:
		v = Bool(true)
	case FalseSymbol:
		v = Bool(false)
	default:
		x, err := strconv.ParseFloat(text, 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			v = Symbol(text)
		} else {
			v = Number(x)
		}
	}
	if loc != nil {
		v.Source = loc
	}
	return v
}

// Literal symbols for the two boolean values.
const (
	TrueSymbol  = "true"
	FalseSymbol = "false"
)

// Len returns the number of cells in a list.
func (v *LVal) Len() int {
	if v.Type != LList {
		return 0
	}
	return len(v.Cells)
}

// IsFunction returns true for builtin and user defined functions.
func (v *LVal) IsFunction() bool {
	return v.Type == LFun || v.Type == LLambda
}

// Params returns the parameter form of a lambda.
func (v *LVal) Params() *LVal {
	if v.Type != LLambda {
		return nil
	}
	return v.Cells[0]
}

// Body returns the body form of a lambda.
func (v *LVal) Body() *LVal {
	if v.Type != LLambda {
		return nil
	}
	return v.Cells[1]
}

// Equal returns true if v and other are structurally equal.  Functions are
// only equal to themselves.
func Equal(v, other *LVal) bool {
	if v == other {
		return true
	}
	if v == nil || other == nil || v.Type != other.Type {
		return false
	}
	switch v.Type {
	case LSymbol:
		return v.Str == other.Str
	case LNumber:
		return v.Num == other.Num
	case LBool:
		return v.Bool == other.Bool
	case LList:
		if len(v.Cells) != len(other.Cells) {
			return false
		}
		for i := range v.Cells {
			if !Equal(v.Cells[i], other.Cells[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// String returns the canonical text of v.  Lists print in brackets with
// comma separated elements, booleans and functions print as tagged forms.
//
//	(1 (a true))  =>  [1, [a, Bool(true)]]
func (v *LVal) String() string {
	if v == nil {
		return "<nil>"
	}
	switch v.Type {
	case LSymbol:
		return v.Str
	case LNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case LBool:
		return "Bool(" + strconv.FormatBool(v.Bool) + ")"
	case LList:
		return exprString(v.Cells)
	case LFun:
		return "Func(<fn>)"
	case LLambda:
		return "Lambda(" + v.Cells[0].String() + ", " + v.Cells[1].String() + ")"
	default:
		return "#<" + v.Type.String() + ">"
	}
}

func exprString(cells []*LVal) string {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, c := range cells {
		if i > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(c.String())
	}
	buf.WriteString("]")
	return buf.String()
}

var defaultSourceLocation = &token.Location{
	File: "<native code>",
	Pos:  -1,
}

func nativeSource() *token.Location {
	return defaultSourceLocation
}
