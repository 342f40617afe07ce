// Copyright © 2024 The ELPS authors

package parser

import (
	"fmt"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/luthersystems/tinylisp/parser/rdparser"
	"github.com/luthersystems/tinylisp/parser/regexparser"
)

// Reader kinds accepted by NewReaderKind.
const (
	ReaderRD     = "rd"
	ReaderParsec = "parsec"
)

// NewReader returns the default lisp.Reader, a recursive descent parser.
func NewReader() lisp.Reader {
	return rdparser.NewReader()
}

// NewSession returns a lisp session reading programs with the default
// reader.  Configs are applied after the reader is set, so WithReader may
// still replace it.
func NewSession(config ...lisp.Config) (*lisp.LEnv, error) {
	return lisp.NewSession(append([]lisp.Config{lisp.WithReader(NewReader())}, config...)...)
}

// NewReaderKind returns the lisp.Reader named by kind.  An empty kind selects
// the default reader.
func NewReaderKind(kind string) (lisp.Reader, error) {
	switch kind {
	case "", ReaderRD:
		return rdparser.NewReader(), nil
	case ReaderParsec:
		return regexparser.NewReader(), nil
	default:
		return nil, fmt.Errorf("unknown reader: %q", kind)
	}
}
