// Copyright © 2024 The ELPS authors

package rdparser_test

import (
	"testing"

	"github.com/luthersystems/tinylisp/lisptest"
	"github.com/luthersystems/tinylisp/parser/rdparser"
)

func BenchmarkParser(b *testing.B) {
	b.Run("nested", lisptest.BenchmarkParse(lisptest.NestedProgram(64), rdparser.NewReader))
	b.Run("flat", lisptest.BenchmarkParse(lisptest.FlatProgram(512), rdparser.NewReader))
}
