// Copyright © 2024 The ELPS authors

package profiler_test

import (
	"testing"

	"github.com/luthersystems/tinylisp/lisp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testProgram makes ten function applications: three of recurse-it, one of
// add-it, and six of builtins.
var testProgram = []string{
	`(def add-it (fn (x y) (+ x y)))`,
	`(def recurse-it
		(fn (x)
			(if (< x 4)
				(add-it x 3)
				(recurse-it (- x 1)))))`,
	`(recurse-it 5)`,
}

func runTestProgram(t *testing.T, env *lisp.LEnv) {
	t.Helper()
	var v *lisp.LVal
	var err error
	for _, src := range testProgram {
		v, err = env.EvaluateProgramNamed("test.lisp", src)
		require.NoError(t, err, src)
	}
	assert.Equal(t, "6", v.String())
}
