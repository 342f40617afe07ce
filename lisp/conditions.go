// Copyright © 2024 The ELPS authors

package lisp

// Condition classifies an ErrorVal.  Condition names are stable API for
// programmatic error handling in the REPL, the language server and embedding
// programs.  A Condition is itself an error so that it can be used as a
// target for errors.Is.
//
//	if errors.Is(err, lisp.CondArityError) { ... }
type Condition string

func (c Condition) Error() string {
	return string(c)
}

// Error condition names.
const (
	CondParseError          Condition = "parse-error"
	CondUnboundSymbol       Condition = "unbound-symbol"
	CondTypeMismatch        Condition = "type-mismatch"
	CondArityError          Condition = "arity-error"
	CondEmptyList           Condition = "empty-list"
	CondUnexpectedValueKind Condition = "unexpected-value-kind"
	CondStackOverflow       Condition = "stack-overflow"
	CondNoReader            Condition = "no-reader"
)
