// Copyright © 2024 The ELPS authors

package regexparser_test

import (
	"testing"

	"github.com/luthersystems/tinylisp/lisptest"
	"github.com/luthersystems/tinylisp/parser/regexparser"
)

func BenchmarkParser(b *testing.B) {
	b.Run("nested", lisptest.BenchmarkParse(lisptest.NestedProgram(64), regexparser.NewReader))
	b.Run("flat", lisptest.BenchmarkParse(lisptest.FlatProgram(512), regexparser.NewReader))
}
