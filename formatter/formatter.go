// Copyright © 2024 The ELPS authors

// Package formatter provides source code formatting for tinylisp files.
// Source is parsed form by form and the tree is printed again with
// normalized spacing and indentation.  Line breaks between elements and
// blank lines between forms are kept from the source, and atoms are written
// with their original text.
package formatter

import (
	"strings"

	"github.com/luthersystems/tinylisp/analysis"
)

// Format formats tinylisp source code. If cfg is nil, DefaultConfig() is used.
func Format(source []byte, cfg *Config) ([]byte, error) {
	return FormatFile(source, "<stdin>", cfg)
}

// FormatFile formats tinylisp source code, using filename for error messages.
// The first parse error in source is returned.
func FormatFile(source []byte, filename string, cfg *Config) ([]byte, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	f := analysis.ParseFile(filename, string(source))
	if len(f.ParseErrs) > 0 {
		return nil, f.ParseErrs[0]
	}

	pr := newPrinter(cfg, f)
	pr.writeTopLevel(f.Forms)

	result := pr.buf.String()

	// Ensure exactly one trailing newline (if there's any content)
	if len(result) > 0 {
		result = strings.TrimRight(result, "\n") + "\n"
	}

	return []byte(result), nil
}
