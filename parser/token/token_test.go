// Copyright © 2024 The ELPS authors

package token

import (
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeString(t *testing.T) {
	used := make(map[string]bool)
	for tok := Type(0); tok < numTokenTypes; tok++ {
		str := tok.String()
		if str == "" {
			t.Errorf("token type %x has empty string value", tok)
			continue
		}
		if used[str] {
			t.Errorf("token type string used twice: %v", tok)
		}
		used[str] = true
	}
	assert.Equal(t, "invalid", Type(99).String())
}

func TestLocationString(t *testing.T) {
	assert.Equal(t, "test", (&Location{File: "test", Pos: -1}).String())
	assert.Equal(t, "test[4]", (&Location{File: "test", Pos: 4}).String())
	assert.Equal(t, "test:2", (&Location{File: "test", Pos: 4, Line: 2}).String())
	assert.Equal(t, "test:2:3", (&Location{File: "test", Pos: 4, Line: 2, Col: 3}).String())
}

func TestLocationError(t *testing.T) {
	err := &LocationError{Err: io.ErrUnexpectedEOF, Source: &Location{File: "x", Line: 1, Col: 5}}
	assert.Equal(t, "x:1:5: unexpected EOF", err.Error())
	assert.True(t, errors.Is(err, io.ErrUnexpectedEOF))
}
